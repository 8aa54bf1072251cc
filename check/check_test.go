package check

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOrder(t *testing.T) {
	assert.Less(t, int(PASS), int(SKIP))
	assert.Less(t, int(WARN), int(FAIL))
	assert.Less(t, int(FAIL), int(ERROR))
	assert.Equal(t, "FAIL", FAIL.String())
	s, err := ParseStatus("WARN")
	require.NoError(t, err)
	assert.Equal(t, WARN, s)
	_, err = ParseStatus("BOGUS")
	assert.Error(t, err)
}

func TestWorst(t *testing.T) {
	assert.Equal(t, PASS, Worst(nil))
	results := []Result{
		Pass("ok", "fine"),
		Skip("no-tests", "nothing to do"),
		Fail("bad", "broken %d", 3),
		Warn("meh", "hmm"),
	}
	assert.Equal(t, FAIL, Worst(results))
	assert.Equal(t, "broken 3", results[2].Message.Text)
}

func TestConditionsAreMemoized(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.check")
	defer teardown()
	//
	c := NewConditions()
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}
	for range 3 {
		v, err := Condition(c, "answer", compute)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, c.Has("answer"))
}

func TestConditionErrorsAreMemoized(t *testing.T) {
	c := NewConditions()
	calls := 0
	boom := errors.New("boom")
	for range 2 {
		_, err := Condition(c, "broken", func() (string, error) {
			calls++
			return "", boom
		})
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 1, calls)
}

func TestNestedConditions(t *testing.T) {
	c := NewConditions()
	inner := func() (int, error) { return 2, nil }
	outer, err := Condition(c, "outer", func() (int, error) {
		v, err := Condition(c, "inner", inner)
		return v * 10, err
	})
	require.NoError(t, err)
	assert.Equal(t, 20, outer)
}

func TestConditionTypeMismatch(t *testing.T) {
	c := NewConditions()
	_, err := Condition(c, "x", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = Condition(c, "x", func() (string, error) { return "", nil })
	assert.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	yml := []byte(`
com.google.fonts/check/shaping:
  test_directory: qa/shaping_tests
not-a-section: 3
`)
	cfg, err := ParseConfig(yml)
	require.NoError(t, err)
	dir, ok := cfg.String("com.google.fonts/check/shaping", "test_directory")
	require.True(t, ok)
	assert.Equal(t, "qa/shaping_tests", dir)
	_, ok = cfg["not-a-section"]
	assert.False(t, ok)

	js := []byte(`{"com.google.fonts/check/shaping": {"test_directory": "tests"}}`)
	cfg, err = ParseConfig(js)
	require.NoError(t, err)
	dir, _ = cfg.String("com.google.fonts/check/shaping", "test_directory")
	assert.Equal(t, "tests", dir)
}

func TestLoadConfigAndSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a:\n  b: c\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	v, ok := cfg.Lookup("a", "b")
	require.True(t, ok)
	assert.Equal(t, "c", v)
	cfg.Set("x", "y", 1)
	v, ok = cfg.Lookup("x", "y")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	var empty Config
	_, ok = empty.Lookup("a", "b")
	assert.False(t, ok)
}

type fakeCheck struct {
	id      string
	results []Result
	panics  bool
}

func (f fakeCheck) ID() string          { return f.id }
func (f fakeCheck) Description() string { return "fake" }
func (f fakeCheck) Run(Config, *Target) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		if f.panics {
			panic("kaputt")
		}
		for _, r := range f.results {
			if !yield(r) {
				return
			}
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		fakeCheck{id: "com.example/a", results: []Result{Pass("ok", "fine")}},
		fakeCheck{id: "com.example/b", panics: true},
	)
	require.Error(t, r.Register(fakeCheck{id: "com.example/a"}))
	require.Error(t, r.Register(nil))
	_, ok := r.Lookup("com.example/b")
	assert.True(t, ok)
	assert.Len(t, r.Select("/a"), 1)
	assert.Len(t, r.Select(), 2)
}
