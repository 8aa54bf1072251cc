package shaping

import (
	"strings"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaper"
)

// SerializationFor decides how shaped output is serialized before comparing
// it to expected. An expectation containing a '+' carries advances, so the
// output is serialized with positions; otherwise only glyph names are
// compared.
func SerializationFor(expected string) shaper.SerializeMode {
	if strings.Contains(expected, "+") {
		return shaper.Full
	}
	return shaper.GlyphsOnly
}

// RegressionComparator compares shaped output to the expectation stored in a
// test.
type RegressionComparator struct{}

var _ Comparator = RegressionComparator{}

func (RegressionComparator) Kind() Kind { return Regression }

// Applies selects tests with an expectation.
func (RegressionComparator) Applies(test TestCase, _ Configuration) bool {
	return test.Has("expectation")
}

func (RegressionComparator) Prepare(*shaper.Font, Configuration) (any, error) {
	return nil, nil
}

// Evaluate shapes the input of test and compares its serialization to the
// expectation for the font. The comparison is exact.
func (RegressionComparator) Evaluate(font *shaper.Font, test TestCase, conf Configuration, _ any) ([]Failure, error) {
	exp, err := test.Expectation()
	if err != nil {
		return nil, err
	}
	expected, err := exp.For(font.Basename())
	if err != nil {
		return nil, err
	}
	text, err := test.Input()
	if err != nil {
		return nil, err
	}
	params, err := ResolveParams(test, conf)
	if err != nil {
		return nil, err
	}
	buf, err := font.Shape(text, params)
	if err != nil {
		return nil, err
	}
	mode := SerializationFor(expected)
	got := shaper.Serialize(buf, mode)
	if got == expected {
		return nil, nil
	}
	tracer().Debugf("%q: expected %s, got %s", text, expected, got)
	return []Failure{&RegressionFailure{
		Test:     test,
		Expected: expected,
		Got:      got,
		Buffer:   buf,
		Mode:     mode,
	}}, nil
}

func (RegressionComparator) Report(font *shaper.Font, suite *Suite, failures []Failure) check.Result {
	return regressionReport(font, suite, failures)
}
