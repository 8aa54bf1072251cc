package shaping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrInvalidJSON is returned for test files which are not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrMissingTests is returned for test files without a "tests" array.
	ErrMissingTests = errors.New("JSON file must have a 'tests' key")
	// ErrMissingInput flags a test case without "input".
	ErrMissingInput = errors.New("test is missing an 'input' key")
	// ErrNoExpectation flags a per-font expectation with neither an entry for
	// the font nor a "default".
	ErrNoExpectation = errors.New("no expectation for font")
	// ErrUnreadableDir is returned if the test directory cannot be listed.
	ErrUnreadableDir = errors.New("cannot read test directory")
)

// object is a JSON object whose values are decoded on demand.
type object map[string]json.RawMessage

func (o object) has(key string) bool {
	v, ok := o[key]
	return ok && !isNull(v)
}

func (o object) decode(key string, v any) error {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// Suite is a parsed shaping test file.
type Suite struct {
	Path          string
	Configuration Configuration
	Tests         []TestCase
}

// Name is the file name of the suite without directories.
func (s *Suite) Name() string {
	return filepath.Base(s.Path)
}

// Configuration is the suite-level "configuration" block.
type Configuration struct {
	Defaults        object            // fallback values for test keys
	ForbiddenGlyphs []string          // glyph names which must never appear
	Collidoscope    map[string]any    // collision detector options; nil if absent
	Ingredients     map[string]string // pattern ingredients

	raw object
}

// Has reports whether the configuration contains key.
func (c Configuration) Has(key string) bool {
	return c.raw.has(key)
}

// Default decodes configuration.defaults[key] into v. found is false if there
// is no such default.
func (c Configuration) Default(key string, v any) (found bool, err error) {
	if !c.Defaults.has(key) {
		return false, nil
	}
	return true, c.Defaults.decode(key, v)
}

// TestCase is one entry of a suite's "tests" array. The raw JSON object is
// kept, as test filters depend on which keys are present.
type TestCase struct {
	Index int // position within the suite
	raw   object
}

// Has reports whether the test case contains key with a non-null value.
func (t TestCase) Has(key string) bool {
	return t.raw.has(key)
}

// Decode decodes the value of key into v. Missing keys leave v untouched.
func (t TestCase) Decode(key string, v any) error {
	return t.raw.decode(key, v)
}

// Input is the text to shape, or a recipe for pattern tests.
func (t TestCase) Input() (string, error) {
	if !t.Has("input") {
		return "", ErrMissingInput
	}
	var s string
	if err := t.Decode("input", &s); err != nil {
		return "", err
	}
	return s, nil
}

// Note is the free-text annotation of the test.
func (t TestCase) Note() string {
	var s string
	_ = t.Decode("note", &s)
	return s
}

func (t TestCase) stringList(key string) []string {
	var l []string
	if err := t.Decode(key, &l); err != nil {
		var s string // a single name is accepted as well
		if t.Decode(key, &s) == nil && s != "" {
			return []string{s}
		}
	}
	return l
}

// Exclude lists the fonts this test does not apply to.
func (t TestCase) Exclude() []string {
	return t.stringList("exclude")
}

// Only lists the fonts this test is restricted to. A test carrying an empty
// list applies to no font.
func (t TestCase) Only() []string {
	return t.stringList("only")
}

// AppliesTo evaluates the exclude and only lists for a font file name.
func (t TestCase) AppliesTo(basename string) bool {
	for _, ex := range t.Exclude() {
		if ex == basename {
			return false
		}
	}
	if !t.Has("only") {
		return true
	}
	for _, name := range t.Only() {
		if name == basename {
			return true
		}
	}
	return false
}

// Expectation returns the expected serialized output of a regression test.
func (t TestCase) Expectation() (Expectation, error) {
	raw, ok := t.raw["expectation"]
	if !ok || isNull(raw) {
		return nil, errors.New("test has no expectation")
	}
	var literal string
	if err := json.Unmarshal(raw, &literal); err == nil {
		return Literal(literal), nil
	}
	var perFont map[string]string
	if err := json.Unmarshal(raw, &perFont); err != nil {
		return nil, fmt.Errorf("expectation must be a string or a mapping of font names to strings: %w", err)
	}
	return PerFont(perFont), nil
}

// Label is a short description of the test for reports and traces.
func (t TestCase) Label() string {
	if in, err := t.Input(); err == nil {
		return in
	}
	return fmt.Sprintf("test #%d", t.Index+1)
}

// --- Expectations ----------------------------------------------------------

// Expectation is the expected output of a regression test: either a
// [Literal] or a [PerFont] mapping.
type Expectation interface {
	// For selects the expected serialization for a font file name.
	For(basename string) (string, error)
}

// Literal is an expectation shared by all fonts.
type Literal string

// For returns the literal.
func (l Literal) For(string) (string, error) {
	return string(l), nil
}

// PerFont maps font file names to expectations, with an optional "default"
// entry for all other fonts.
type PerFont map[string]string

// DefaultKey is the PerFont entry used for fonts without an entry of their
// own.
const DefaultKey = "default"

// For returns the entry for basename, falling back to the default entry.
func (p PerFont) For(basename string) (string, error) {
	if s, ok := p[basename]; ok {
		return s, nil
	}
	if s, ok := p[DefaultKey]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w %s and no %q entry", ErrNoExpectation, basename, DefaultKey)
}

// --- Loading ---------------------------------------------------------------

// SuiteFiles lists the *.json files in dir, sorted by name. Subdirectories are
// not searched.
func SuiteFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadSuite reads and parses one test file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSuite(path, data)
}

// ParseSuite parses a test file from memory. Errors wrap [ErrInvalidJSON] or
// [ErrMissingTests].
func ParseSuite(path string, data []byte) (*Suite, error) {
	var doc object
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	s := &Suite{Path: path}
	var conf object
	if err := doc.decode("configuration", &conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	var err error
	if s.Configuration, err = parseConfiguration(conf); err != nil {
		return nil, err
	}
	var tests []object
	if !doc.has("tests") {
		return nil, ErrMissingTests
	}
	if err := doc.decode("tests", &tests); err != nil {
		return nil, fmt.Errorf("%w: 'tests' must be an array of objects: %v", ErrInvalidJSON, err)
	}
	s.Tests = make([]TestCase, len(tests))
	for i, raw := range tests {
		s.Tests[i] = TestCase{Index: i, raw: raw}
	}
	return s, nil
}

func parseConfiguration(raw object) (Configuration, error) {
	c := Configuration{raw: raw}
	if raw == nil {
		return c, nil
	}
	decode := func(key string, v any) error {
		if err := raw.decode(key, v); err != nil {
			return fmt.Errorf("%w: configuration: %v", ErrInvalidJSON, err)
		}
		return nil
	}
	if err := decode("defaults", &c.Defaults); err != nil {
		return c, err
	}
	if err := decode("forbidden_glyphs", &c.ForbiddenGlyphs); err != nil {
		return c, err
	}
	if err := decode("collidoscope", &c.Collidoscope); err != nil {
		return c, err
	}
	if err := decode("ingredients", &c.Ingredients); err != nil {
		return c, err
	}
	return c, nil
}

// LoadSuites lazily loads the test files of dir. A file which cannot be
// loaded is yielded with an error and a suite carrying only its path; the
// sequence continues with the next file. If dir cannot be listed, a single
// error wrapping [ErrUnreadableDir] is yielded.
func LoadSuites(dir string) iter.Seq2[*Suite, error] {
	return func(yield func(*Suite, error) bool) {
		paths, err := SuiteFiles(dir)
		if err != nil {
			yield(&Suite{Path: dir}, fmt.Errorf("%w: %v", ErrUnreadableDir, err))
			return
		}
		for _, path := range paths {
			s, err := LoadSuite(path)
			if err != nil {
				s = &Suite{Path: path}
			}
			if !yield(s, err) {
				return
			}
		}
	}
}
