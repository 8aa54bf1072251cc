/*
Package shaper wraps a binary font and a text-shaping engine.

A [Font] shapes UTF-8 text into a [Buffer] of positioned glyphs and knows how
to name and draw its glyphs. Buffers are compared in serialized form, either
as glyph names only ("a|b|c") or in the HarfBuzz text format including
clusters and positions.

A Font keeps parser state between calls and must not be shared between
goroutines.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package shaper

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/geom/rect"
	sfntnames "seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyph"
)

// tracer traces with key 'fontqa.shaper'
func tracer() tracing.Trace {
	return tracing.Select("fontqa.shaper")
}

// GID is a glyph index.
type GID uint32

// NOTDEF is the glyph index of ".notdef".
const NOTDEF = GID(0)

// Font is a loaded font file prepared for shaping.
//
// Internally a Font holds several views of the same binary: a go-text face
// used by the shaping engine, a glyph-name and glyph-class view and an outline
// view for drawing. Only the face is mandatory; if one of the other views
// cannot be decoded, glyph names fall back to "gid<N>" and drawing is
// unavailable.
type Font struct {
	Path   string // file path, as given when loading
	Binary []byte // raw font data

	face     *font.Face
	tables   map[ot.Tag]bool
	named    *sfntnames.Font
	outlines *sfnt.Font
	sbuf     sfnt.Buffer
	engine   Engine
	byName   map[string]GID
}

// Option configures a Font at load time.
type Option func(*Font)

// WithEngine sets the shaping engine used when shaping parameters do not name
// one explicitly.
func WithEngine(e Engine) Option {
	return func(f *Font) {
		f.engine = e
	}
}

// LoadFont loads an OpenType font (TTF or OTF) from a file.
func LoadFont(path string, opts ...Option) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFont(path, data, opts...)
}

// ParseFont prepares an OpenType font from memory. path is used to identify
// the font; only its base name is significant for test selection.
func ParseFont(path string, data []byte, opts ...Option) (*Font, error) {
	f := &Font{Path: path, Binary: data}
	for _, opt := range opts {
		opt(f)
	}
	ld, err := ot.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot parse font %s: %w", path, err)
	}
	f.tables = make(map[ot.Tag]bool)
	for _, tag := range ld.Tables() {
		f.tables[tag] = true
	}
	ft, err := font.NewFont(ld)
	if err != nil {
		return nil, fmt.Errorf("cannot parse font %s: %w", path, err)
	}
	f.face = font.NewFace(ft)
	if f.outlines, err = sfnt.Parse(data); err != nil {
		tracer().Infof("font %s: outlines unavailable: %v", f.Basename(), err)
		f.outlines = nil
	}
	if f.named, err = readNamed(data); err != nil {
		tracer().Infof("font %s: glyph names unavailable: %v", f.Basename(), err)
		f.named = nil
	}
	if f.engine == nil {
		f.engine = defaultEngine()
	}
	tracer().Debugf("loaded font %s with %d glyphs", f.Basename(), f.NumGlyphs())
	return f, nil
}

// readNamed decodes the glyph-name view and fills in names missing from the
// font. The decoder panics on some outline formats it does not support.
func readNamed(data []byte) (named *sfntnames.Font, err error) {
	defer func() {
		if r := recover(); r != nil {
			named, err = nil, fmt.Errorf("unsupported font structure: %v", r)
		}
	}()
	if named, err = sfntnames.Read(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	named.EnsureGlyphNames()
	return named, nil
}

// Basename is the file name of the font without directories.
func (f *Font) Basename() string {
	return filepath.Base(f.Path)
}

// Face returns the go-text face used for shaping.
func (f *Font) Face() *font.Face {
	return f.face
}

// Engine returns the default shaping engine of this font.
func (f *Font) Engine() Engine {
	return f.engine
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	switch {
	case f.named != nil:
		return f.named.NumGlyphs()
	case f.outlines != nil:
		return f.outlines.NumGlyphs()
	}
	return 0
}

// UnitsPerEm returns the design units per em.
func (f *Font) UnitsPerEm() int {
	if f.named != nil && f.named.UnitsPerEm > 0 {
		return int(f.named.UnitsPerEm)
	}
	if f.outlines != nil {
		return int(f.outlines.UnitsPerEm())
	}
	return 1000
}

// FamilyName returns the font family name, if known.
func (f *Font) FamilyName() string {
	if f.named != nil {
		return f.named.FamilyName
	}
	return ""
}

// GlyphName returns the name of a glyph. Glyphs without a name in the font
// are called "gid<N>".
func (f *Font) GlyphName(gid GID) string {
	if int(gid) >= f.NumGlyphs() {
		return fmt.Sprintf("gid%d", gid)
	}
	if f.named != nil {
		if name := f.named.GlyphName(glyph.ID(gid)); name != "" {
			return name
		}
	}
	if f.outlines != nil {
		if name, err := f.outlines.GlyphName(&f.sbuf, sfnt.GlyphIndex(gid)); err == nil && name != "" {
			return name
		}
	}
	return fmt.Sprintf("gid%d", gid)
}

// GlyphID is the inverse of [Font.GlyphName].
func (f *Font) GlyphID(name string) (GID, bool) {
	if f.byName == nil {
		n := f.NumGlyphs()
		f.byName = make(map[string]GID, n)
		for i := range n {
			gid := GID(i)
			f.byName[f.GlyphName(gid)] = gid
		}
	}
	gid, ok := f.byName[name]
	return gid, ok
}

// IsMark reports whether the GDEF table classifies a glyph as a mark.
func (f *Font) IsMark(gid GID) bool {
	if f.named == nil || f.named.Gdef == nil {
		return false
	}
	return f.named.Gdef.IsMark(glyph.ID(gid))
}

// IsVariable reports whether the font has an 'fvar' table.
func (f *Font) IsVariable() bool {
	return f.HasTable("fvar")
}

// HasTable reports whether the font's table directory lists tag, e.g. "GSUB".
// Tags which are not four bytes long are never present.
func (f *Font) HasTable(tag string) bool {
	if len(tag) != 4 {
		return false
	}
	return f.tables[ot.MustNewTag(tag)]
}

// Tables returns the tags of all tables of the font, sorted.
func (f *Font) Tables() []string {
	tags := make([]string, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag.String())
	}
	sort.Strings(tags)
	return tags
}

// InkBox returns the bounding box of a glyph's outline in font units, with
// the y-axis pointing up. ok is false for glyphs without ink.
func (f *Font) InkBox(gid GID) (box rect.Rect, ok bool) {
	if segs, err := f.Outline(gid); err == nil {
		if len(segs) == 0 {
			return rect.Rect{}, false
		}
		b := segs.Bounds()
		// sfnt segments are y-down
		return rect.Rect{
			LLx: float64(b.Min.X) / 64,
			LLy: -float64(b.Max.Y) / 64,
			URx: float64(b.Max.X) / 64,
			URy: -float64(b.Min.Y) / 64,
		}, true
	}
	if f.named == nil || int(gid) >= f.named.NumGlyphs() {
		return rect.Rect{}, false
	}
	bb := f.named.GlyphBBox(glyph.ID(gid))
	if bb.IsZero() {
		return rect.Rect{}, false
	}
	return rect.Rect{
		LLx: float64(bb.LLx),
		LLy: float64(bb.LLy),
		URx: float64(bb.URx),
		URy: float64(bb.URy),
	}, true
}
