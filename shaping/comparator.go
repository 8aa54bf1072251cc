package shaping

import (
	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/fontqa/shaping/collide"
)

// Kind identifies one of the comparison strategies.
type Kind int

const (
	Regression Kind = iota // shaped output must equal an expectation
	Forbidden              // shaped output must not contain forbidden glyphs
	Collision              // shaped glyphs must not overlap
)

func (k Kind) String() string {
	switch k {
	case Regression:
		return "regression"
	case Forbidden:
		return "forbidden"
	case Collision:
		return "collides"
	}
	return "unknown"
}

// Comparator is the behaviour the runner injects per kind of shaping test.
type Comparator interface {
	Kind() Kind
	// Applies selects the tests of a suite this comparator evaluates.
	Applies(test TestCase, conf Configuration) bool
	// Prepare is called once per suite file before its tests are evaluated.
	// Its result is handed to every call of Evaluate for that file.
	Prepare(font *shaper.Font, conf Configuration) (any, error)
	// Evaluate runs one test. Mismatches are returned as failures; an error
	// means the test could not be evaluated.
	Evaluate(font *shaper.Font, test TestCase, conf Configuration, prepared any) ([]Failure, error)
	// Report turns the failures of one suite file into a single result.
	Report(font *shaper.Font, suite *Suite, failures []Failure) check.Result
}

// Failure is a recorded divergence of one test. It is one of
// *RegressionFailure, *ForbiddenFailure, *CollisionFailure or *TestError.
type Failure interface {
	Case() TestCase
	failure()
}

// RegressionFailure records a shaped output different from the expectation.
type RegressionFailure struct {
	Test     TestCase
	Expected string
	Got      string
	Buffer   shaper.Buffer
	Mode     shaper.SerializeMode
}

// ForbiddenFailure records a forbidden glyph in the output for Text.
type ForbiddenFailure struct {
	Test   TestCase
	Text   string
	Glyph  string
	Buffer shaper.Buffer
}

// CollisionFailure records glyph collisions not allowed by the test.
type CollisionFailure struct {
	Test       TestCase
	Text       string
	Collisions []collide.Collision
	Drawing    string // SVG, empty if it could not be drawn
	Buffer     shaper.Buffer
}

// TestError records a test which could not be evaluated, e.g. because of
// invalid shaping parameters. It is reported like a failure.
type TestError struct {
	Test TestCase
	Text string
	Err  error
}

func (f *RegressionFailure) Case() TestCase { return f.Test }
func (f *ForbiddenFailure) Case() TestCase  { return f.Test }
func (f *CollisionFailure) Case() TestCase  { return f.Test }
func (f *TestError) Case() TestCase         { return f.Test }

func (*RegressionFailure) failure() {}
func (*ForbiddenFailure) failure()  {}
func (*CollisionFailure) failure()  {}
func (*TestError) failure()         {}
