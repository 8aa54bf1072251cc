package collide

import (
	"strings"
	"testing"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	gidSpace = shaper.GID(3)
	gidA     = shaper.GID(36)
	gidV     = shaper.GID(57)
)

func loadFont(t *testing.T) *shaper.Font {
	t.Helper()
	f, err := shaper.ParseFont("GoRegular.ttf", goregular.TTF)
	require.NoError(t, err)
	return f
}

func glyph(f *shaper.Font, gid shaper.GID, cluster int, advance int32) shaper.Glyph {
	return shaper.Glyph{GID: gid, Name: f.GlyphName(gid), Cluster: cluster, XAdvance: advance}
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)

	opts, err = ParseOptions(map[string]any{
		"bases": false, "cursive": true, "area": 5.0, "adjacent_clusters": 0.0, "color": "red",
	})
	require.NoError(t, err)
	assert.False(t, opts.Bases)
	assert.True(t, opts.Cursive)
	assert.False(t, opts.AdjacentClusters)
	assert.True(t, opts.Marks)
	assert.Equal(t, 5.0, opts.Area)

	_, err = ParseOptions(map[string]any{"marks": "yes"})
	assert.Error(t, err)
	_, err = ParseOptions(map[string]any{"area": -1.0})
	assert.Error(t, err)
	_, err = ParseOptions(map[string]any{"scale": 2.0})
	assert.Error(t, err)
}

func TestOverlappingGlyphsCollide(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.collide")
	defer teardown()
	//
	f := loadFont(t)
	d := New(f, DefaultOptions())
	buf := shaper.Buffer{glyph(f, gidA, 0, 0), glyph(f, gidV, 1, 1366)}
	glyphs, collisions := d.Check(buf)
	require.Len(t, glyphs, 2)
	require.Len(t, collisions, 1)
	c := collisions[0]
	assert.Equal(t, "A/V", c.Signature())
	assert.Equal(t, 0, c.Index1)
	assert.Equal(t, 1, c.Index2)
	assert.Greater(t, c.Area, 0.0)
	assert.LessOrEqual(t, c.Area, 100.0)
}

func TestDistantGlyphsDoNotCollide(t *testing.T) {
	f := loadFont(t)
	d := New(f, DefaultOptions())
	buf := shaper.Buffer{glyph(f, gidA, 0, 3000), glyph(f, gidV, 1, 1366)}
	_, collisions := d.Check(buf)
	assert.Empty(t, collisions)
}

func TestBlankGlyphsAreIgnored(t *testing.T) {
	f := loadFont(t)
	d := New(f, DefaultOptions())
	buf := shaper.Buffer{glyph(f, gidSpace, 0, 0), glyph(f, gidA, 1, 1366)}
	glyphs, collisions := d.Check(buf)
	assert.False(t, glyphs[0].Ink)
	assert.True(t, glyphs[1].Ink)
	assert.Empty(t, collisions)
}

func TestPairSelection(t *testing.T) {
	f := loadFont(t)
	// glyphs 0 and 2 sit on top of each other, separated by a blank
	faraway := shaper.Buffer{glyph(f, gidA, 0, 0), glyph(f, gidSpace, 1, 0), glyph(f, gidA, 2, 1366)}
	opts := DefaultOptions()
	_, collisions := New(f, opts).Check(faraway)
	assert.Len(t, collisions, 1)
	opts.Faraway = false
	_, collisions = New(f, opts).Check(faraway)
	assert.Empty(t, collisions)

	adjacent := shaper.Buffer{glyph(f, gidA, 0, 0), glyph(f, gidA, 1, 1366)}
	opts = DefaultOptions()
	opts.Cursive = true
	_, collisions = New(f, opts).Check(adjacent)
	assert.Empty(t, collisions, "cursive connections are expected")

	opts = DefaultOptions()
	opts.AdjacentClusters = false
	_, collisions = New(f, opts).Check(adjacent)
	assert.Empty(t, collisions)
	sameCluster := shaper.Buffer{glyph(f, gidA, 0, 0), glyph(f, gidA, 0, 1366)}
	_, collisions = New(f, opts).Check(sameCluster)
	assert.Len(t, collisions, 1)

	opts = DefaultOptions()
	opts.Bases = false
	_, collisions = New(f, opts).Check(adjacent)
	assert.Empty(t, collisions)

	opts = DefaultOptions()
	opts.Area = 101
	_, collisions = New(f, opts).Check(adjacent)
	assert.Empty(t, collisions)
}

func TestMarkRules(t *testing.T) {
	d := New(nil, DefaultOptions())
	base := &Glyph{Index: 0, Glyph: shaper.Glyph{Cluster: 0}}
	mark := &Glyph{Index: 1, Glyph: shaper.Glyph{Cluster: 0}, Mark: true}
	otherMark := &Glyph{Index: 2, Glyph: shaper.Glyph{Cluster: 0}, Mark: true}
	foreignMark := &Glyph{Index: 1, Glyph: shaper.Glyph{Cluster: 1}, Mark: true}
	assert.False(t, d.considers(base, mark), "a mark may touch its own base")
	assert.True(t, d.considers(base, foreignMark))
	assert.True(t, d.considers(mark, otherMark))
	d.opts.Marks = false
	assert.False(t, d.considers(mark, otherMark))
}

func TestSignatures(t *testing.T) {
	collisions := []Collision{
		{Glyph1: "f", Glyph2: "quoteright"},
		{Glyph1: "A", Glyph2: "V"},
		{Glyph1: "f", Glyph2: "quoteright"},
	}
	assert.Equal(t, []string{"A/V", "f/quoteright"}, Signatures(collisions))
	assert.Equal(t, "A/V, f/quoteright", Describe(collisions))
}

func TestDrawOverlaps(t *testing.T) {
	f := loadFont(t)
	d := New(f, DefaultOptions())
	buf := shaper.Buffer{glyph(f, gidA, 0, 0), glyph(f, gidV, 1, 3000), glyph(f, gidA, 2, 1366)}
	_, collisions := d.Check(buf)
	svg, err := d.DrawOverlaps(buf, collisions)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(svg, `fill="red"`))
	assert.Equal(t, 1, strings.Count(svg, `fill="black"`))
	_, err = d.DrawOverlaps(nil, nil)
	assert.ErrorIs(t, err, ErrNothingToDraw)
}
