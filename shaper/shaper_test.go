package shaper

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func loadGoRegular(t *testing.T, opts ...Option) *Font {
	t.Helper()
	f, err := ParseFont("testdata/GoRegular.ttf", goregular.TTF, opts...)
	require.NoError(t, err)
	return f
}

func TestSerialize(t *testing.T) {
	buf := Buffer{
		{Name: "A", Cluster: 0, XAdvance: 1366},
		{Name: "acutecomb", Cluster: 0, XOffset: -500, YOffset: 120},
		{Name: "V", Cluster: 1, XAdvance: 1366, YAdvance: 10},
	}
	assert.Equal(t, "A|acutecomb|V", Serialize(buf, GlyphsOnly))
	assert.Equal(t, "A=0+1366|acutecomb=0@-500,120+0|V=1+1366,10", Serialize(buf, Full))
	assert.Equal(t, "", Serialize(nil, Full))
}

func TestParseSerialized(t *testing.T) {
	buf, err := ParseSerialized("[A=0+1366|acutecomb=0@-500,120+0|V=1+1366,10]")
	require.NoError(t, err)
	want := Buffer{
		{Name: "A", Cluster: 0, XAdvance: 1366},
		{Name: "acutecomb", Cluster: 0, XOffset: -500, YOffset: 120},
		{Name: "V", Cluster: 1, XAdvance: 1366, YAdvance: 10},
	}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Errorf("parsed buffer mismatch (-want +got):\n%s", diff)
	}
	buf, err = ParseSerialized("A|V")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "V"}, buf.Names())
	assert.Equal(t, "A|V", Serialize(buf, GlyphsOnly))
	_, err = ParseSerialized("A|=3")
	assert.Error(t, err)
	buf, err = ParseSerialized("  ")
	require.NoError(t, err)
	assert.Empty(t, buf)
}

func TestOrigins(t *testing.T) {
	buf := Buffer{
		{XAdvance: 100},
		{XOffset: -50, YOffset: 20},
		{XAdvance: 80},
	}
	assert.Equal(t, []Point{{0, 0}, {50, 20}, {100, 0}}, buf.Origins())
	x, y := buf.Advance()
	assert.Equal(t, int32(180), x)
	assert.Equal(t, int32(0), y)
}

func TestParamsString(t *testing.T) {
	p := Params{
		Script:     "Arab",
		Features:   map[string]bool{"liga": false, "kern": true},
		Variations: map[string]float64{"wght": 700},
	}
	assert.Equal(t, "script=Arab features=+kern,-liga variations=wght=700", p.String())
	assert.Equal(t, "", Params{}.String())
}

func TestParseFeatureList(t *testing.T) {
	features, err := ParseFeatureList("+liga,-kern smcp=1 ss01=0")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"liga": true, "kern": false, "smcp": true, "ss01": false}, features)
	_, err = ParseFeatureList("toolong")
	assert.Error(t, err)
	_, err = ParseFeatureList("liga=x")
	assert.Error(t, err)
}

func TestLookupEngine(t *testing.T) {
	for _, name := range []string{"harfbuzz", "ot", "HarfBuzz"} {
		e, err := LookupEngine(name)
		require.NoError(t, err, name)
		assert.Equal(t, HarfBuzzEngineName, e.Name())
	}
	_, err := LookupEngine("coretext")
	assert.True(t, errors.Is(err, ErrEngineUnavailable))
}

func TestFontViews(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.shaper")
	defer teardown()
	//
	f := loadGoRegular(t)
	assert.Equal(t, "GoRegular.ttf", f.Basename())
	assert.Equal(t, 712, f.NumGlyphs())
	assert.Equal(t, 2048, f.UnitsPerEm())
	assert.Equal(t, "A", f.GlyphName(36))
	assert.Equal(t, ".notdef", f.GlyphName(NOTDEF))
	assert.Equal(t, "gid9999", f.GlyphName(9999))
	gid, ok := f.GlyphID("V")
	require.True(t, ok)
	assert.Equal(t, GID(57), gid)
	_, ok = f.GlyphID("no-such-glyph")
	assert.False(t, ok)
	assert.False(t, f.IsVariable())
	assert.False(t, f.IsMark(36))
}

func TestTableDirectory(t *testing.T) {
	f := loadGoRegular(t)
	tables := f.Tables()
	assert.Subset(t, tables, []string{"cmap", "glyf", "head", "hmtx", "loca", "maxp"})
	assert.IsIncreasing(t, tables)
	assert.True(t, f.HasTable("glyf"))
	assert.False(t, f.HasTable("fvar"))
	assert.False(t, f.HasTable("CFF2"))
	assert.False(t, f.HasTable("toolong"))
}

func TestInkBox(t *testing.T) {
	f := loadGoRegular(t)
	box, ok := f.InkBox(36) // 'A'
	require.True(t, ok)
	assert.Greater(t, box.URx, box.LLx)
	assert.Greater(t, box.URy, 1000.0) // cap height is above the baseline
	assert.GreaterOrEqual(t, box.LLy, -1.0)
	_, ok = f.InkBox(3) // space
	assert.False(t, ok)
}

func TestShapeWithHarfBuzz(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.shaper")
	defer teardown()
	//
	f := loadGoRegular(t)
	buf, err := f.Shape("AV", Params{})
	require.NoError(t, err)
	assert.Equal(t, "A|V", Serialize(buf, GlyphsOnly))
	assert.Equal(t, "A=0+1366|V=1+1366", Serialize(buf, Full))
	buf, err = f.Shape("A\ue000", Params{Direction: "LTR", Language: "en", Script: "Latn"})
	require.NoError(t, err)
	assert.Equal(t, "A|.notdef", Serialize(buf, GlyphsOnly))
	_, err = f.Shape("AV", Params{Direction: "sideways"})
	assert.Error(t, err)
	_, err = f.Shape("AV", Params{Shaper: "coretext"})
	assert.True(t, errors.Is(err, ErrEngineUnavailable))
}

type upperEngine struct{}

func (upperEngine) Name() string { return "upper" }
func (upperEngine) Shape(f *Font, text string, p Params) (Buffer, error) {
	var buf Buffer
	for i, r := range strings.ToUpper(text) {
		gid, _ := f.GlyphID(string(r))
		buf = append(buf, Glyph{GID: gid, Name: f.GlyphName(gid), Cluster: i, XAdvance: 1000})
	}
	return buf, nil
}

func TestWithEngine(t *testing.T) {
	f := loadGoRegular(t, WithEngine(upperEngine{}))
	assert.Equal(t, "upper", f.Engine().Name())
	buf, err := f.Shape("av", Params{})
	require.NoError(t, err)
	assert.Equal(t, "A|V", Serialize(buf, GlyphsOnly))
	buf, err = f.Shape("av", Params{Shaper: "ot"})
	require.NoError(t, err)
	assert.Equal(t, "a|v", Serialize(buf, GlyphsOnly))
}

func TestResolveNames(t *testing.T) {
	f := loadGoRegular(t)
	buf, err := ParseSerialized("A|V")
	require.NoError(t, err)
	require.NoError(t, f.ResolveNames(buf))
	assert.Equal(t, GID(36), buf[0].GID)
	assert.Equal(t, int32(1366), buf[1].XAdvance)
	buf, _ = ParseSerialized("A|nonexistent")
	err = f.ResolveNames(buf)
	assert.Error(t, err)
	assert.Equal(t, NOTDEF, buf[1].GID)
}

func TestBufferToSVG(t *testing.T) {
	f := loadGoRegular(t)
	buf, err := f.Shape("AV", Params{})
	require.NoError(t, err)
	svg, err := f.BufferToSVG(buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.Equal(t, 2, strings.Count(svg, "<path "))
	assert.Contains(t, svg, "viewBox=")
	path, err := f.GlyphPath(36, 0, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "M"))
	assert.True(t, strings.HasSuffix(path, "Z"))
	red, err := f.BufferToSVGStyled(buf, func(i int) string {
		if i == 1 {
			return "red"
		}
		return "black"
	})
	require.NoError(t, err)
	assert.Contains(t, red, `fill="red"`)
}
