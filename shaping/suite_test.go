package shaping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSuite(t *testing.T, doc string) *Suite {
	t.Helper()
	s, err := ParseSuite("test.json", []byte(doc))
	require.NoError(t, err)
	return s
}

func TestParseSuiteErrors(t *testing.T) {
	_, err := ParseSuite("a.json", []byte(`{"tests": [`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
	_, err = ParseSuite("a.json", []byte(`{"configuration": {}}`))
	assert.ErrorIs(t, err, ErrMissingTests)
	_, err = ParseSuite("a.json", []byte(`{"tests": "AV"}`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.NotErrorIs(t, err, ErrMissingTests)
	_, err = ParseSuite("a.json", []byte(`{"tests": ["AV", 3]}`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
	_, err = ParseSuite("a.json", []byte(`{"tests": null}`))
	assert.ErrorIs(t, err, ErrMissingTests)
	_, err = ParseSuite("a.json", []byte(`{"configuration": {"forbidden_glyphs": 3}, "tests": []}`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestParseSuite(t *testing.T) {
	s := parseSuite(t, `{
		"configuration": {
			"forbidden_glyphs": [".notdef"],
			"ingredients": {"Marks": "[\u0300-\u0302]"}
		},
		"tests": [
			{"input": "AV", "note": "kerning", "exclude": ["Bold.ttf"]},
			{"input": "fi", "only": "Regular.ttf"},
			{"note": "no input"}
		]
	}`)
	assert.Equal(t, "test.json", s.Name())
	assert.Equal(t, []string{".notdef"}, s.Configuration.ForbiddenGlyphs)
	assert.True(t, s.Configuration.Has("forbidden_glyphs"))
	assert.False(t, s.Configuration.Has("collidoscope"))
	assert.Len(t, s.Configuration.Ingredients, 1)
	require.Len(t, s.Tests, 3)

	in, err := s.Tests[0].Input()
	require.NoError(t, err)
	assert.Equal(t, "AV", in)
	assert.Equal(t, "kerning", s.Tests[0].Note())
	assert.Equal(t, []string{"Regular.ttf"}, s.Tests[1].Only())
	_, err = s.Tests[2].Input()
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, "test #3", s.Tests[2].Label())
}

func TestExcludeAndOnly(t *testing.T) {
	s := parseSuite(t, `{"tests": [
		{"input": "a", "exclude": ["Foo-Regular.ttf"]},
		{"input": "b", "only": ["Foo-Bold.ttf"]},
		{"input": "c", "only": []},
		{"input": "d", "exclude": ["Foo-Regular.ttf"], "only": ["Foo-Regular.ttf"]}
	]}`)
	assert.False(t, s.Tests[0].AppliesTo("Foo-Regular.ttf"))
	assert.True(t, s.Tests[0].AppliesTo("Foo-Bold.ttf"))
	assert.False(t, s.Tests[1].AppliesTo("Foo-Regular.ttf"))
	assert.True(t, s.Tests[1].AppliesTo("Foo-Bold.ttf"))
	assert.False(t, s.Tests[2].AppliesTo("Foo-Regular.ttf"), "an empty only list matches no font")
	assert.False(t, s.Tests[2].AppliesTo("Foo-Bold.ttf"))
	assert.False(t, s.Tests[3].AppliesTo("Foo-Regular.ttf"), "exclude wins over only")
}

func TestExpectation(t *testing.T) {
	s := parseSuite(t, `{"tests": [
		{"input": "x", "expectation": "A|B|C"},
		{"input": "x", "expectation": {"Bold.ttf": "X|Y", "default": "X|Z"}},
		{"input": "x", "expectation": {"Bold.ttf": "X|Y"}},
		{"input": "x", "expectation": 42}
	]}`)
	exp, err := s.Tests[0].Expectation()
	require.NoError(t, err)
	assert.Equal(t, Literal("A|B|C"), exp)

	exp, err = s.Tests[1].Expectation()
	require.NoError(t, err)
	got, err := exp.For("Bold.ttf")
	require.NoError(t, err)
	assert.Equal(t, "X|Y", got)
	got, err = exp.For("Regular.ttf")
	require.NoError(t, err)
	assert.Equal(t, "X|Z", got)

	exp, err = s.Tests[2].Expectation()
	require.NoError(t, err)
	_, err = exp.For("Regular.ttf")
	assert.ErrorIs(t, err, ErrNoExpectation)

	_, err = s.Tests[3].Expectation()
	assert.Error(t, err)
}

func TestResolveParams(t *testing.T) {
	s := parseSuite(t, `{
		"configuration": {"defaults": {"script": "Arab", "features": {"liga": false}}},
		"tests": [
			{"input": "x"},
			{"input": "y", "script": "Latn", "direction": "rtl", "features": {"kern": 1}, "variations": {"wght": 700}},
			{"input": "z", "features": {"kern": "on"}}
		]
	}`)
	p, err := ResolveParams(s.Tests[0], s.Configuration)
	require.NoError(t, err)
	assert.Equal(t, "Arab", p.Script)
	assert.Equal(t, "", p.Language)
	assert.Equal(t, map[string]bool{"liga": false}, p.Features)
	assert.NotNil(t, p.Variations)
	assert.Empty(t, p.Variations)

	p, err = ResolveParams(s.Tests[1], s.Configuration)
	require.NoError(t, err)
	assert.Equal(t, shaper.Params{
		Script:     "Latn",
		Direction:  "rtl",
		Features:   map[string]bool{"kern": true},
		Variations: map[string]float64{"wght": 700},
	}, p)

	_, err = ResolveParams(s.Tests[2], s.Configuration)
	assert.Error(t, err)
}

func TestInputTypeAndAllowedCollisions(t *testing.T) {
	s := parseSuite(t, `{
		"configuration": {"defaults": {"input_type": "pattern", "allowedcollisions": ["A/V"]}},
		"tests": [
			{"input": "x"},
			{"input": "y", "input_type": "string", "allowedcollisions": ["f/i"]}
		]
	}`)
	assert.Equal(t, PatternInput, InputType(s.Tests[0], s.Configuration))
	assert.Equal(t, []string{"A/V"}, AllowedCollisions(s.Tests[0], s.Configuration))
	assert.Equal(t, "string", InputType(s.Tests[1], s.Configuration))
	assert.Equal(t, []string{"f/i"}, AllowedCollisions(s.Tests[1], Configuration{}))
	assert.Equal(t, "string", InputType(s.Tests[1], Configuration{}))
}

func TestLoadSuites(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.shaping")
	defer teardown()
	//
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"tests": []}`)
	writeFile(t, dir, "a.json", `{"tests": [{"input": "x"}]}`)
	writeFile(t, dir, "c.json", `not json`)
	writeFile(t, dir, "notes.txt", `ignored`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	var names []string
	var errs []error
	for s, err := range LoadSuites(dir) {
		names = append(names, s.Name())
		errs = append(errs, err)
	}
	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, names)
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], ErrInvalidJSON)

	for _, err := range LoadSuites(filepath.Join(dir, "missing")) {
		assert.ErrorIs(t, err, ErrUnreadableDir)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
