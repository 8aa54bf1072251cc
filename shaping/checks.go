/*
Package shaping runs suites of shaping tests against a font.

Shaping tests are authored as JSON files in a test directory, configured for
a check profile in section "com.google.fonts/check/shaping" with key
"test_directory". Each file holds a configuration block and a list of
tests:

	{
	  "configuration": {
	    "defaults": { "script": "Arab" },
	    "forbidden_glyphs": [ ".notdef" ],
	    "ingredients": { "Consonant": "[ب-ت]" }
	  },
	  "tests": [
	    { "input": "AV", "expectation": "A|V" },
	    { "input": "Consonant{2}", "input_type": "pattern" }
	  ]
	}

Three checks share the same [Run] loop over test files and differ in the
[Comparator] they plug in: regression tests compare shaped output to a
stored expectation, forbidden-glyph tests look for glyphs which must never
be produced, and collision tests look for overlapping glyph outlines. Every
test file yields one PASS or one FAIL carrying a Markdown report with
inline SVG renderings.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package shaping

import (
	"iter"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontqa.shaping'
func tracer() tracing.Trace {
	return tracing.Select("fontqa.shaping")
}

// IDs of the shaping checks.
const (
	RegressionCheckID = "com.google.fonts/check/shaping/regression"
	ForbiddenCheckID  = "com.google.fonts/check/shaping/forbidden"
	CollidesCheckID   = "com.google.fonts/check/shaping/collides"
)

// ShapingCheck is a check running shaping test suites with one comparator.
type ShapingCheck struct {
	id, description string
	cmp             Comparator
}

var _ check.Check = (*ShapingCheck)(nil)

func (c *ShapingCheck) ID() string          { return c.id }
func (c *ShapingCheck) Description() string { return c.description }

// Comparator returns the comparator the check runs.
func (c *ShapingCheck) Comparator() Comparator { return c.cmp }

func (c *ShapingCheck) Run(cfg check.Config, target *check.Target) iter.Seq[check.Result] {
	return Run(cfg, target, c.cmp)
}

// Checks returns the shaping checks in a fixed order: regression, forbidden
// glyphs, collisions.
func Checks() []check.Check {
	return []check.Check{
		&ShapingCheck{
			id:          RegressionCheckID,
			description: "Check that texts shape as per expectation.",
			cmp:         RegressionComparator{},
		},
		&ShapingCheck{
			id:          ForbiddenCheckID,
			description: "Check that no forbidden glyphs are found while shaping.",
			cmp:         ForbiddenComparator{},
		},
		&ShapingCheck{
			id:          CollidesCheckID,
			description: "Check that no collisions are found while shaping.",
			cmp:         CollisionComparator{},
		},
	}
}

// Register adds the shaping checks to a registry.
func Register(reg *check.Registry) error {
	for _, c := range Checks() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
