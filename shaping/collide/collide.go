/*
Package collide finds overlapping glyphs in shaped text.

A [Detector] places the glyphs of a shaped buffer, pairs them up according
to its [Options], and reports a [Collision] for every pair whose inked
outlines share area. Candidate pairs are found by intersecting bounding
boxes; the overlap itself is measured by rasterizing both glyphs over the
intersection.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package collide

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/rect"
)

// tracer traces with key 'fontqa.collide'
func tracer() tracing.Trace {
	return tracing.Select("fontqa.collide")
}

// Options select which glyph pairs are checked.
type Options struct {
	Bases            bool    // check base glyphs against each other
	Marks            bool    // check marks against each other
	Faraway          bool    // check glyphs which are not neighbours in the buffer
	AdjacentClusters bool    // check neighbouring glyphs from different clusters
	Cursive          bool    // neighbouring bases are expected to connect; do not report them
	Area             float64 // minimum overlap, in percent of the smaller glyph's ink
	Scale            float64 // raster pixels per font unit
}

// DefaultOptions are used when a test suite does not configure the detector.
func DefaultOptions() Options {
	return Options{
		Bases:            true,
		Marks:            true,
		Faraway:          true,
		AdjacentClusters: true,
		Scale:            0.1,
	}
}

// ParseOptions reads detector options from a configuration block as found in
// test suites, e.g. {"marks": true, "area": 5}. Missing keys keep their
// default values.
func ParseOptions(block map[string]any) (Options, error) {
	opts := DefaultOptions()
	flags := map[string]*bool{
		"bases":             &opts.Bases,
		"marks":             &opts.Marks,
		"faraway":           &opts.Faraway,
		"adjacent_clusters": &opts.AdjacentClusters,
		"cursive":           &opts.Cursive,
	}
	numbers := map[string]*float64{
		"area":  &opts.Area,
		"scale": &opts.Scale,
	}
	for key, v := range block {
		if p, ok := flags[key]; ok {
			b, err := asBool(v)
			if err != nil {
				return opts, fmt.Errorf("collision option %s: %w", key, err)
			}
			*p = b
			continue
		}
		if p, ok := numbers[key]; ok {
			f, ok := v.(float64)
			if !ok {
				if i, isInt := v.(int); isInt {
					f, ok = float64(i), true
				}
			}
			if !ok || f < 0 {
				return opts, fmt.Errorf("collision option %s: expected a non-negative number, got %v", key, v)
			}
			*p = f
			continue
		}
		tracer().Debugf("ignoring unknown collision option %q", key)
	}
	if opts.Scale <= 0 || opts.Scale > 1 {
		return opts, fmt.Errorf("collision option scale must be in (0,1], is %g", opts.Scale)
	}
	return opts, nil
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case float64:
		return b != 0, nil
	case int:
		return b != 0, nil
	}
	return false, fmt.Errorf("expected a boolean, got %v", v)
}

// Glyph is a glyph of a shaped buffer placed on the page.
type Glyph struct {
	shaper.Glyph
	Index  int          // position in the buffer
	Origin shaper.Point // pen position including offsets, font units, y up
	Box    rect.Rect    // ink box, placed
	Ink    bool         // false for blank glyphs
	Mark   bool         // GDEF class is mark

	outline sfnt.Segments // nil if the outline is not available
}

// Collision is an overlap between two glyphs.
type Collision struct {
	Glyph1, Glyph2 string
	Index1, Index2 int
	Area           float64 // overlap in percent of the smaller glyph's ink
}

// Signature identifies the glyph pair, e.g. "f/quoteright".
func (c Collision) Signature() string {
	return c.Glyph1 + "/" + c.Glyph2
}

// Signatures returns the sorted, distinct signatures of collisions.
func Signatures(collisions []Collision) []string {
	seen := make(map[string]bool)
	var sigs []string
	for _, c := range collisions {
		if s := c.Signature(); !seen[s] {
			seen[s] = true
			sigs = append(sigs, s)
		}
	}
	sort.Strings(sigs)
	return sigs
}

// Detector finds glyph collisions for one font. Like the font it is bound to,
// a detector must not be shared between goroutines.
type Detector struct {
	font *shaper.Font
	opts Options
	ink  map[shaper.GID]int // cached ink pixel counts
}

// New creates a detector for a font.
func New(font *shaper.Font, opts Options) *Detector {
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}
	return &Detector{font: font, opts: opts, ink: make(map[shaper.GID]int)}
}

// Options returns the options of the detector.
func (d *Detector) Options() Options {
	return d.opts
}

// Place computes glyph positions and ink boxes for a shaped buffer.
func (d *Detector) Place(buf shaper.Buffer) []Glyph {
	origins := buf.Origins()
	glyphs := make([]Glyph, len(buf))
	for i, g := range buf {
		pg := Glyph{Glyph: g, Index: i, Origin: origins[i], Mark: d.font.IsMark(g.GID)}
		if box, ok := d.font.InkBox(g.GID); ok {
			pg.Ink = true
			pg.Box = rect.Rect{
				LLx: box.LLx + float64(pg.Origin.X),
				LLy: box.LLy + float64(pg.Origin.Y),
				URx: box.URx + float64(pg.Origin.X),
				URy: box.URy + float64(pg.Origin.Y),
			}
		}
		if segs, err := d.font.Outline(g.GID); err == nil {
			pg.outline = segs
		}
		glyphs[i] = pg
	}
	return glyphs
}

// Collisions returns the colliding glyph pairs among placed glyphs, ordered
// by buffer position.
func (d *Detector) Collisions(glyphs []Glyph) []Collision {
	var collisions []Collision
	for i := range glyphs {
		for j := i + 1; j < len(glyphs); j++ {
			a, b := &glyphs[i], &glyphs[j]
			if !a.Ink || !b.Ink || !d.considers(a, b) {
				continue
			}
			inter, ok := intersection(a.Box, b.Box)
			if !ok {
				continue
			}
			area := d.overlap(a, b, inter)
			if area <= 0 || area < d.opts.Area {
				continue
			}
			tracer().Debugf("collision %s/%s at %d,%d: %.1f%%", a.Name, b.Name, i, j, area)
			collisions = append(collisions, Collision{
				Glyph1: a.Name, Glyph2: b.Name,
				Index1: i, Index2: j,
				Area: area,
			})
		}
	}
	return collisions
}

// Check places the glyphs of buf and finds their collisions.
func (d *Detector) Check(buf shaper.Buffer) ([]Glyph, []Collision) {
	glyphs := d.Place(buf)
	return glyphs, d.Collisions(glyphs)
}

// considers decides by glyph class and distance whether a pair is checked.
func (d *Detector) considers(a, b *Glyph) bool {
	adjacent := b.Index-a.Index == 1
	if !adjacent && !d.opts.Faraway {
		return false
	}
	if adjacent && a.Cluster != b.Cluster && !d.opts.AdjacentClusters {
		return false
	}
	switch {
	case a.Mark && b.Mark:
		return d.opts.Marks
	case !a.Mark && !b.Mark:
		if !d.opts.Bases {
			return false
		}
		return !(adjacent && d.opts.Cursive)
	}
	// a mark and a base: the mark is supposed to touch its own base
	return a.Cluster != b.Cluster
}

func intersection(a, b rect.Rect) (rect.Rect, bool) {
	r := rect.Rect{
		LLx: math.Max(a.LLx, b.LLx),
		LLy: math.Max(a.LLy, b.LLy),
		URx: math.Min(a.URx, b.URx),
		URy: math.Min(a.URy, b.URy),
	}
	return r, r.LLx < r.URx && r.LLy < r.URy
}

// overlap measures the shared ink of a and b within inter, in percent of the
// smaller glyph's ink. Without outlines, intersecting boxes count as a full
// overlap.
func (d *Detector) overlap(a, b *Glyph, inter rect.Rect) float64 {
	if a.outline == nil || b.outline == nil {
		return 100
	}
	ma := d.rasterize(a, inter)
	mb := d.rasterize(b, inter)
	shared := 0
	for i := range ma.Pix {
		if ma.Pix[i] > 0x80 && mb.Pix[i] > 0x80 {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	smaller := min(d.inkPixels(a), d.inkPixels(b))
	if smaller == 0 {
		return 100
	}
	return math.Min(100, 100*float64(shared)/float64(smaller))
}

// inkPixels counts the pixels a glyph covers at the detector's scale.
func (d *Detector) inkPixels(g *Glyph) int {
	if n, ok := d.ink[g.GID]; ok {
		return n
	}
	m := d.rasterize(g, g.Box)
	n := 0
	for _, p := range m.Pix {
		if p > 0x80 {
			n++
		}
	}
	d.ink[g.GID] = n
	return n
}

// rasterize draws g's outline into an alpha mask covering area.
func (d *Detector) rasterize(g *Glyph, area rect.Rect) *image.Alpha {
	s := d.opts.Scale
	w := max(1, int(math.Ceil((area.URx-area.LLx)*s)))
	h := max(1, int(math.Ceil((area.URy-area.LLy)*s)))
	// outline points are y-down relative to the origin; raster y grows
	// downwards from area's top edge
	tx := func(x int32) float32 {
		return float32((float64(g.Origin.X) + float64(x)/64 - area.LLx) * s)
	}
	ty := func(y int32) float32 {
		return float32((area.URy - float64(g.Origin.Y) + float64(y)/64) * s)
	}
	z := vector.NewRasterizer(w, h)
	open := false
	for _, seg := range g.outline {
		a := seg.Args
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(tx(int32(a[0].X)), ty(int32(a[0].Y)))
			open = true
		case sfnt.SegmentOpLineTo:
			z.LineTo(tx(int32(a[0].X)), ty(int32(a[0].Y)))
		case sfnt.SegmentOpQuadTo:
			z.QuadTo(tx(int32(a[0].X)), ty(int32(a[0].Y)),
				tx(int32(a[1].X)), ty(int32(a[1].Y)))
		case sfnt.SegmentOpCubeTo:
			z.CubeTo(tx(int32(a[0].X)), ty(int32(a[0].Y)),
				tx(int32(a[1].X)), ty(int32(a[1].Y)),
				tx(int32(a[2].X)), ty(int32(a[2].Y)))
		}
	}
	if open {
		z.ClosePath()
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// ErrNothingToDraw is returned by DrawOverlaps for empty buffers.
var ErrNothingToDraw = errors.New("no glyphs to draw")

// DrawOverlaps renders buf as SVG, painting the glyphs involved in a
// collision red.
func (d *Detector) DrawOverlaps(buf shaper.Buffer, collisions []Collision) (string, error) {
	if len(buf) == 0 {
		return "", ErrNothingToDraw
	}
	colliding := make(map[int]bool)
	for _, c := range collisions {
		colliding[c.Index1] = true
		colliding[c.Index2] = true
	}
	return d.font.BufferToSVGStyled(buf, func(i int) string {
		if colliding[i] {
			return "red"
		}
		return "black"
	})
}

// Describe summarizes collisions as "a/b, c/d".
func Describe(collisions []Collision) string {
	return strings.Join(Signatures(collisions), ", ")
}
