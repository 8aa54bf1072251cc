package check

import (
	"fmt"
	"sync"

	"github.com/npillmayer/fontqa/shaper"
)

// Conditions memoizes derived facts about a font.
//
// Every condition is computed at most once per Conditions instance; errors are
// memoized as well, so a failing computation is not retried by later checks.
type Conditions struct {
	mu     sync.Mutex
	values map[string]conditionValue
}

type conditionValue struct {
	value any
	err   error
}

// NewConditions creates an empty condition cache.
func NewConditions() *Conditions {
	return &Conditions{values: make(map[string]conditionValue)}
}

// Get returns the memoized value of condition name, calling compute on first
// access.
func (c *Conditions) Get(name string, compute func() (any, error)) (any, error) {
	c.mu.Lock()
	if v, ok := c.values[name]; ok {
		c.mu.Unlock()
		return v.value, v.err
	}
	c.mu.Unlock()
	// compute may itself depend on other conditions, so it runs unlocked
	tracer().Debugf("computing condition %q", name)
	v, err := compute()
	c.mu.Lock()
	defer c.mu.Unlock()
	if first, ok := c.values[name]; ok {
		return first.value, first.err
	}
	c.values[name] = conditionValue{value: v, err: err}
	return v, err
}

// Has reports whether condition name has been computed already.
func (c *Conditions) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[name]
	return ok
}

// Condition is a typed accessor for [Conditions.Get].
func Condition[T any](c *Conditions, name string, compute func() (T, error)) (T, error) {
	v, err := c.Get(name, func() (any, error) {
		return compute()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("condition %q has type %T, not %T", name, v, zero)
	}
	return t, nil
}

// --- Built-in conditions ---------------------------------------------------

// Basename is the file name of the target font, without directories.
// Test suites refer to fonts by this name.
func Basename(t *Target) string {
	name, _ := Condition(t.Conditions, "basename", func() (string, error) {
		return t.Font.Basename(), nil
	})
	return name
}

// IsVariable reports whether the target font has an 'fvar' table.
func IsVariable(t *Target) bool {
	v, _ := Condition(t.Conditions, "is_variable", func() (bool, error) {
		return t.Font.IsVariable(), nil
	})
	return v
}

// GlyphNames is the set of glyph names of the target font.
func GlyphNames(t *Target) map[string]bool {
	names, _ := Condition(t.Conditions, "glyph_names", func() (map[string]bool, error) {
		n := t.Font.NumGlyphs()
		set := make(map[string]bool, n)
		for gid := range n {
			set[t.Font.GlyphName(shaper.GID(gid))] = true
		}
		return set, nil
	})
	return names
}
