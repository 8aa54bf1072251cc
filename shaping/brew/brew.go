/*
Package brew expands compact string recipes into all the strings they
describe.

A recipe is a sequence of whitespace-separated terms. A term is one of

	Name          an ingredient, looked up in the ingredients table
	[a-z\u0300]  a character class with ranges and \uXXXX escapes
	( … | … )     a group of alternatives
	ক             any other word, taken literally

and may carry a quantifier: ? (optional), * (zero to two times),
+ (one or two times), {n} or {m,n}. Alternatives may also be separated by |
at the top level. Ingredients are recipes themselves, so they may refer to
other ingredients; cyclic references are an error.

Words which look like identifiers (ASCII letters, digits and underscores)
must name an ingredient. This catches typos in recipes which would otherwise
silently generate the misspelled word.

Example, with ingredients Consonant = "[क-ह]" and Halant = "्":

	Consonant Halant Consonant

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package brew

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontqa.brew'
func tracer() tracing.Trace {
	return tracing.Select("fontqa.brew")
}

// DefaultMaxStrings limits the number of strings a brewer generates.
const DefaultMaxStrings = 10000

// Unbounded quantifiers are expanded up to this many repetitions.
const maxRepeat = 2

var (
	// ErrUnknownIngredient flags an identifier in a recipe which is not in the
	// ingredients table.
	ErrUnknownIngredient = errors.New("unknown ingredient")
	// ErrTooManyStrings is returned if a recipe expands to more strings than
	// permitted.
	ErrTooManyStrings = errors.New("recipe expands to too many strings")
	// ErrRecipeSyntax flags malformed recipes.
	ErrRecipeSyntax = errors.New("recipe syntax error")
	// ErrCyclicIngredient flags ingredients which refer to themselves.
	ErrCyclicIngredient = errors.New("cyclic ingredient")
)

// Brewer generates strings from a recipe.
type Brewer struct {
	Recipe      string
	Ingredients map[string]string
	MaxStrings  int // 0 means DefaultMaxStrings

	root     node
	compiled map[string]node
}

// New compiles a recipe with an ingredients table.
func New(recipe string, ingredients map[string]string) (*Brewer, error) {
	if strings.TrimSpace(recipe) == "" {
		return nil, fmt.Errorf("%w: empty recipe", ErrRecipeSyntax)
	}
	b := &Brewer{
		Recipe:      recipe,
		Ingredients: ingredients,
		compiled:    make(map[string]node),
	}
	root, err := b.compile(recipe, nil)
	if err != nil {
		return nil, err
	}
	b.root = root
	return b, nil
}

// GenerateAll returns every string the recipe describes, without duplicates
// and in a deterministic order.
func (b *Brewer) GenerateAll() ([]string, error) {
	limit := b.MaxStrings
	if limit <= 0 {
		limit = DefaultMaxStrings
	}
	out, err := b.root.expand(limit)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", b.Recipe, err)
	}
	tracer().Debugf("recipe %q brewed %d strings", b.Recipe, len(out))
	return out, nil
}

// IngredientNames returns the names of the ingredients, sorted.
func (b *Brewer) IngredientNames() []string {
	names := make([]string, 0, len(b.Ingredients))
	for name := range b.Ingredients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// compile parses a recipe, resolving ingredient references. active holds
// the ingredients currently being compiled, for cycle detection.
func (b *Brewer) compile(recipe string, active []string) (node, error) {
	p := &parser{input: []rune(recipe), resolve: func(name string) (node, bool, error) {
		return b.ingredient(name, active)
	}}
	n, err := p.parseAlternatives()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorf("unexpected %q", string(p.peek()))
	}
	return n, nil
}

func (b *Brewer) ingredient(name string, active []string) (node, bool, error) {
	value, ok := b.Ingredients[name]
	if !ok {
		return nil, false, nil
	}
	for _, a := range active {
		if a == name {
			return nil, true, fmt.Errorf("%w: %s", ErrCyclicIngredient,
				strings.Join(append(active, name), " → "))
		}
	}
	if n, ok := b.compiled[name]; ok {
		return n, true, nil
	}
	n, err := b.compile(value, append(slices.Clip(active), name))
	if err != nil {
		return nil, true, fmt.Errorf("ingredient %s: %w", name, err)
	}
	b.compiled[name] = n
	return n, true, nil
}

// --- Expansion -------------------------------------------------------------

type node interface {
	expand(limit int) ([]string, error)
}

type literal string

func (l literal) expand(int) ([]string, error) {
	return []string{string(l)}, nil
}

type class []rune

func (c class) expand(limit int) ([]string, error) {
	if len(c) > limit {
		return nil, fmt.Errorf("%w: class has %d characters", ErrTooManyStrings, len(c))
	}
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = string(r)
	}
	return out, nil
}

type sequence []node

func (s sequence) expand(limit int) ([]string, error) {
	acc := []string{""}
	for _, n := range s {
		strs, err := n.expand(limit)
		if err != nil {
			return nil, err
		}
		if acc, err = product(acc, strs, limit); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

type alternatives []node

func (a alternatives) expand(limit int) ([]string, error) {
	var out []string
	for _, n := range a {
		strs, err := n.expand(limit)
		if err != nil {
			return nil, err
		}
		out = append(out, strs...)
	}
	out = dedup(out)
	if len(out) > limit {
		return nil, fmt.Errorf("%w: more than %d", ErrTooManyStrings, limit)
	}
	return out, nil
}

type repeat struct {
	n        node
	min, max int
}

func (r repeat) expand(limit int) ([]string, error) {
	strs, err := r.n.expand(limit)
	if err != nil {
		return nil, err
	}
	if len(strs) == 0 || (len(strs) == 1 && strs[0] == "") {
		return []string{""}, nil // repetitions add nothing
	}
	if r.min > limit {
		return nil, fmt.Errorf("%w: repetition count %d", ErrTooManyStrings, r.min)
	}
	var out []string
	seen := make(map[string]bool)
	acc := []string{""}
	for k := 0; k <= r.max; k++ {
		if k > 0 {
			if acc, err = product(acc, strs, limit); err != nil {
				return nil, err
			}
		}
		if k < r.min {
			continue
		}
		for _, s := range acc {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		// every round adds at least one longer string
		if len(out) > limit {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyStrings, limit)
		}
	}
	return out, nil
}

func product(prefixes, suffixes []string, limit int) ([]string, error) {
	if len(prefixes)*len(suffixes) > limit {
		return nil, fmt.Errorf("%w: more than %d", ErrTooManyStrings, limit)
	}
	out := make([]string, 0, len(prefixes)*len(suffixes))
	for _, p := range prefixes {
		for _, s := range suffixes {
			out = append(out, p+s)
		}
	}
	return dedup(out), nil
}

// dedup removes duplicates, keeping the first occurrence.
func dedup(strs []string) []string {
	seen := make(map[string]bool, len(strs))
	out := strs[:0]
	for _, s := range strs {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
