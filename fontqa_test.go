package fontqa

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaping"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	writeFile(t, profile, "com.google.fonts/check/shaping:\n  test_directory: qa/shaping\n")

	cfg, err := LoadProfile(profile, "")
	require.NoError(t, err)
	d, ok := cfg.String(shaping.ConfigSection, shaping.TestDirectoryKey)
	assert.True(t, ok)
	assert.Equal(t, "qa/shaping", d)

	cfg, err = LoadProfile(profile, "elsewhere")
	require.NoError(t, err)
	d, _ = cfg.String(shaping.ConfigSection, shaping.TestDirectoryKey)
	assert.Equal(t, "elsewhere", d)

	cfg, err = LoadProfile("", "")
	require.NoError(t, err)
	assert.Empty(t, cfg)

	_, err = LoadProfile(filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err)
}

func TestCheckFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa")
	defer teardown()
	//
	dir := t.TempDir()
	fontfile := filepath.Join(dir, "GoRegular.ttf")
	require.NoError(t, os.WriteFile(fontfile, goregular.TTF, 0o644))
	tests := filepath.Join(dir, "tests")
	require.NoError(t, os.Mkdir(tests, 0o755))
	writeFile(t, filepath.Join(tests, "latin.json"), `{
		"configuration": {"forbidden_glyphs": [".notdef"]},
		"tests": [
			{"input": "AV", "expectation": "A|V"},
			{"input": "AV", "expectation": {"Other.ttf": "A|V", "default": "A=0+1366|V=1+1366"}}
		]
	}`)
	cfg, err := LoadProfile("", tests)
	require.NoError(t, err)

	reg := DefaultRegistry()
	require.Len(t, reg.Checks(), 3)
	reports := CheckFonts(cfg, []string{fontfile, filepath.Join(dir, "missing.ttf")}, reg.Checks())
	require.Len(t, reports, 2)

	ok := reports[0]
	require.NoError(t, ok.Err)
	require.Len(t, ok.Results, 3)
	byID := make(map[string]check.CheckResult)
	for _, cr := range ok.Results {
		byID[cr.CheckID] = cr
		assert.Equal(t, "GoRegular.ttf", cr.Font)
	}
	assert.Equal(t, check.PASS, byID[shaping.RegressionCheckID].Worst())
	assert.Equal(t, check.PASS, byID[shaping.ForbiddenCheckID].Worst())
	assert.Equal(t, check.SKIP, byID[shaping.CollidesCheckID].Worst(), "no collidoscope configured")
	assert.Equal(t, check.SKIP, ok.Worst())

	assert.Error(t, reports[1].Err)
	assert.Equal(t, check.ERROR, reports[1].Worst())
}
