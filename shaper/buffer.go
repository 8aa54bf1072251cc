package shaper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Glyph is a positioned glyph of a shaped text. Positions are in font units.
type Glyph struct {
	GID      GID
	Name     string
	Cluster  int // index of the first input character of the cluster
	XAdvance int32
	YAdvance int32
	XOffset  int32
	YOffset  int32
}

// Buffer is the output of shaping: glyphs in visual order.
type Buffer []Glyph

// Names returns the glyph names of a buffer, in order.
func (buf Buffer) Names() []string {
	names := make([]string, len(buf))
	for i, g := range buf {
		names[i] = g.Name
	}
	return names
}

// Advance returns the summed advances of the buffer.
func (buf Buffer) Advance() (x, y int32) {
	for _, g := range buf {
		x += g.XAdvance
		y += g.YAdvance
	}
	return
}

// Point is a position in font units, y-axis pointing up.
type Point struct {
	X, Y int32
}

// Origins returns the pen position of every glyph including its offset,
// starting at (0,0).
func (buf Buffer) Origins() []Point {
	pts := make([]Point, len(buf))
	var penX, penY int32
	for i, g := range buf {
		pts[i] = Point{X: penX + g.XOffset, Y: penY + g.YOffset}
		penX += g.XAdvance
		penY += g.YAdvance
	}
	return pts
}

// SerializeMode selects the serialization format of a buffer.
type SerializeMode int

const (
	// GlyphsOnly serializes glyph names joined by '|'.
	GlyphsOnly SerializeMode = iota
	// Full adds clusters, offsets and advances in HarfBuzz text format.
	Full
)

func (m SerializeMode) String() string {
	if m == Full {
		return "full"
	}
	return "glyphs-only"
}

// Serialize renders a buffer as a string for exact comparison.
//
// In Full mode each glyph is written as
//
//	name=cluster@xoffset,yoffset+xadvance,yadvance
//
// where the offset part is present only for non-zero offsets and the
// y-advance only if it is non-zero.
func Serialize(buf Buffer, mode SerializeMode) string {
	var b strings.Builder
	for i, g := range buf {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(g.Name)
		if mode == GlyphsOnly {
			continue
		}
		fmt.Fprintf(&b, "=%d", g.Cluster)
		if g.XOffset != 0 || g.YOffset != 0 {
			fmt.Fprintf(&b, "@%d,%d", g.XOffset, g.YOffset)
		}
		fmt.Fprintf(&b, "+%d", g.XAdvance)
		if g.YAdvance != 0 {
			fmt.Fprintf(&b, ",%d", g.YAdvance)
		}
	}
	return b.String()
}

var serializedGlyph = regexp.MustCompile(
	`^([^=@+]+)(?:=(\d+))?(?:@(-?\d+),(-?\d+))?(?:\+(-?\d+)(?:,(-?\d+))?)?$`)

// ParseSerialized reads a buffer back from either serialization format.
// Surrounding brackets, as written by HarfBuzz tools, are accepted. Glyph IDs
// are not set; use [Font.ResolveNames] to look them up.
func ParseSerialized(s string) (Buffer, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return Buffer{}, nil
	}
	parts := strings.Split(s, "|")
	buf := make(Buffer, len(parts))
	for i, part := range parts {
		m := serializedGlyph.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, fmt.Errorf("cannot parse glyph %d: %q", i, part)
		}
		g := Glyph{Name: m[1]}
		g.Cluster = atoi(m[2])
		g.XOffset, g.YOffset = int32(atoi(m[3])), int32(atoi(m[4]))
		g.XAdvance, g.YAdvance = int32(atoi(m[5])), int32(atoi(m[6]))
		buf[i] = g
	}
	return buf, nil
}

// atoi for strings already validated by the pattern; empty is zero.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ResolveNames sets the glyph IDs of buf from glyph names. Glyph names
// unknown to the font are reported as an error, and their glyphs are set to
// .notdef. Glyphs without an advance get the font's default advance.
func (f *Font) ResolveNames(buf Buffer) error {
	var unknown []string
	for i := range buf {
		gid, ok := f.GlyphID(buf[i].Name)
		if !ok {
			unknown = append(unknown, buf[i].Name)
			gid = NOTDEF
		}
		buf[i].GID = gid
	}
	f.FillAdvances(buf)
	if len(unknown) > 0 {
		return fmt.Errorf("font %s has no glyphs named %s", f.Basename(), strings.Join(unknown, ", "))
	}
	return nil
}
