package shaping

import (
	"fmt"
	"slices"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/fontqa/shaping/brew"
)

// PatternInput is the input type of tests whose input is a recipe.
const PatternInput = "pattern"

// inputStrings returns the texts a test shapes: its input, or all strings
// brewed from it for pattern tests.
func inputStrings(test TestCase, conf Configuration) ([]string, error) {
	input, err := test.Input()
	if err != nil {
		return nil, err
	}
	if InputType(test, conf) != PatternInput {
		return []string{input}, nil
	}
	b, err := brew.New(input, conf.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", input, err)
	}
	return b.GenerateAll()
}

// ForbiddenComparator reports glyphs from configuration.forbidden_glyphs
// appearing in shaped output.
type ForbiddenComparator struct{}

var _ Comparator = ForbiddenComparator{}

func (ForbiddenComparator) Kind() Kind { return Forbidden }

// Applies selects every test of a suite which declares forbidden glyphs.
func (ForbiddenComparator) Applies(_ TestCase, conf Configuration) bool {
	return conf.Has("forbidden_glyphs")
}

func (ForbiddenComparator) Prepare(*shaper.Font, Configuration) (any, error) {
	return nil, nil
}

// Evaluate records one failure per shaped string and forbidden glyph found.
func (ForbiddenComparator) Evaluate(font *shaper.Font, test TestCase, conf Configuration, _ any) ([]Failure, error) {
	texts, err := inputStrings(test, conf)
	if err != nil {
		return nil, err
	}
	params, err := ResolveParams(test, conf)
	if err != nil {
		return nil, err
	}
	var failures []Failure
	for _, text := range texts {
		buf, err := font.Shape(text, params)
		if err != nil {
			return failures, err
		}
		names := buf.Names()
		for _, forbidden := range conf.ForbiddenGlyphs {
			if slices.Contains(names, forbidden) {
				tracer().Debugf("%q produced forbidden glyph %s", text, forbidden)
				failures = append(failures, &ForbiddenFailure{
					Test:   test,
					Text:   text,
					Glyph:  forbidden,
					Buffer: buf,
				})
			}
		}
	}
	return failures, nil
}

func (ForbiddenComparator) Report(font *shaper.Font, suite *Suite, failures []Failure) check.Result {
	return forbiddenReport(font, suite, failures)
}
