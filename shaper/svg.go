package shaper

import (
	"errors"
	"fmt"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/rect"
)

// ErrNoOutlines is returned by drawing operations for fonts whose outlines
// could not be decoded.
var ErrNoOutlines = errors.New("glyph outlines not available")

// Outline returns the outline of a glyph in font units. Segment coordinates
// are 26.6 fixed point with the y-axis pointing down, relative to the glyph
// origin.
func (f *Font) Outline(gid GID) (sfnt.Segments, error) {
	if f.outlines == nil {
		return nil, ErrNoOutlines
	}
	ppem := fixed.I(f.UnitsPerEm())
	segs, err := f.outlines.LoadGlyph(&f.sbuf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("glyph %d: %w", gid, err)
	}
	// segs is only valid until the next call using f.sbuf
	return append(sfnt.Segments(nil), segs...), nil
}

// FillAdvances sets the horizontal advances of buf from the font's metrics
// if no glyph in buf carries an advance. This is the case for buffers parsed
// from glyph-name-only serializations.
func (f *Font) FillAdvances(buf Buffer) {
	if f.outlines == nil {
		return
	}
	for _, g := range buf {
		if g.XAdvance != 0 || g.YAdvance != 0 {
			return
		}
	}
	ppem := fixed.I(f.UnitsPerEm())
	for i := range buf {
		adv, err := f.outlines.GlyphAdvance(&f.sbuf, sfnt.GlyphIndex(buf[i].GID), ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		buf[i].XAdvance = int32(adv.Round())
	}
}

// GlyphPath returns the SVG path data of a glyph placed with its origin at
// (x, y) in font units, y pointing up. The path is in SVG coordinates, with
// SVG y being the negated font y.
func (f *Font) GlyphPath(gid GID, x, y float64) (string, error) {
	segs, err := f.Outline(gid)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	pt := func(p fixed.Point26_6) {
		fmt.Fprintf(&b, " %s %s", num(x+float64(p.X)/64), num(float64(p.Y)/64-y))
	}
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if b.Len() > 0 {
				b.WriteString("Z")
			}
			b.WriteString("M")
			pt(s.Args[0])
		case sfnt.SegmentOpLineTo:
			b.WriteString("L")
			pt(s.Args[0])
		case sfnt.SegmentOpQuadTo:
			b.WriteString("Q")
			pt(s.Args[0])
			pt(s.Args[1])
		case sfnt.SegmentOpCubeTo:
			b.WriteString("C")
			pt(s.Args[0])
			pt(s.Args[1])
			pt(s.Args[2])
		}
	}
	if b.Len() > 0 {
		b.WriteString("Z")
	}
	return b.String(), nil
}

// union extends r to cover other. An empty r takes the value of other.
func union(r *rect.Rect, other rect.Rect) {
	if r.IsZero() {
		*r = other
		return
	}
	r.LLx = min(r.LLx, other.LLx)
	r.LLy = min(r.LLy, other.LLy)
	r.URx = max(r.URx, other.URx)
	r.URy = max(r.URy, other.URy)
}

// num formats a coordinate compactly.
func num(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// BufferToSVG renders the glyphs of a shaped buffer as an SVG document.
func (f *Font) BufferToSVG(buf Buffer) (string, error) {
	return f.BufferToSVGStyled(buf, nil)
}

// BufferToSVGStyled is like [Font.BufferToSVG] but lets fill choose the
// fill colour of each glyph by buffer index. A nil fill paints all glyphs
// black.
func (f *Font) BufferToSVGStyled(buf Buffer, fill func(i int) string) (string, error) {
	if f.outlines == nil {
		return "", ErrNoOutlines
	}
	origins := buf.Origins()
	var bbox rect.Rect
	var paths strings.Builder
	for i, g := range buf {
		o := origins[i]
		if ink, ok := f.InkBox(g.GID); ok {
			ink.LLx += float64(o.X)
			ink.URx += float64(o.X)
			ink.LLy += float64(o.Y)
			ink.URy += float64(o.Y)
			union(&bbox, ink)
		}
		d, err := f.GlyphPath(g.GID, float64(o.X), float64(o.Y))
		if err != nil {
			return "", err
		}
		if d == "" {
			continue
		}
		color := "black"
		if fill != nil {
			color = fill(i)
		}
		fmt.Fprintf(&paths, "<path d=\"%s\" fill=\"%s\"/>\n", d, color)
	}
	// the advance box keeps blank buffers visible
	advX, _ := buf.Advance()
	adv := rect.Rect{URx: float64(advX), LLy: float64(-f.UnitsPerEm()) / 4, URy: float64(f.UnitsPerEm()) * 3 / 4}
	union(&bbox, adv)
	var b strings.Builder
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"%s %s %s %s\">\n",
		num(bbox.LLx), num(-bbox.URy), num(bbox.URx-bbox.LLx), num(bbox.URy-bbox.LLy))
	b.WriteString(paths.String())
	b.WriteString("</svg>\n")
	return b.String(), nil
}
