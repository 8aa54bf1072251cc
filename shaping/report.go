package shaping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/fontqa/shaping/collide"
	"github.com/pmezard/go-difflib/difflib"
)

// fixSVG makes an SVG document display inline in a Markdown report.
func fixSVG(svg string) string {
	svg = strings.Replace(svg, "<svg", `<svg style="height:100px;margin:10px;"`, 1)
	return strings.ReplaceAll(svg, "\n", " ")
}

// renderSVG draws buf, returning an empty string if the font has no
// outlines to draw.
func renderSVG(font *shaper.Font, buf shaper.Buffer) string {
	if font == nil || len(buf) == 0 {
		return ""
	}
	svg, err := font.BufferToSVG(buf)
	if err != nil {
		tracer().Debugf("no SVG for buffer: %v", err)
		return ""
	}
	return fixSVG(svg)
}

// describe starts a report bullet: what happened, the test's input and note,
// and the shaping parameters set by the test.
func describe(what, text string, test TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* %s: %s", what, text)
	if note := test.Note(); note != "" {
		fmt.Fprintf(&b, " (%s)", note)
	}
	appendix := paramsAppendix(test)
	for _, key := range reportKeys {
		v, ok := appendix[key]
		if !ok {
			continue
		}
		js, err := json.Marshal(v)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n  - %s: `%s`", key, js)
	}
	return b.String()
}

// lineDiff is a unified diff of two serialized buffers, one glyph per line.
func lineDiff(expected, got string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.ReplaceAll(expected, "|", "\n")),
		B:        difflib.SplitLines(strings.ReplaceAll(got, "|", "\n")),
		FromFile: "Expected",
		ToFile:   "Got",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

// testErrorItem reports a test which could not be evaluated.
func testErrorItem(f *TestError) string {
	return describe("Test could not be run", f.Text, f.Test) + fmt.Sprintf("\n\n  %v", f.Err)
}

// tally summarizes failures for a report header, e.g. " (2 failures, 1 test
// could not be run)". Test errors are counted separately from mismatches.
func tally(failures []Failure) string {
	var n, errs int
	for _, f := range failures {
		if _, ok := f.(*TestError); ok {
			errs++
		} else {
			n++
		}
	}
	var parts []string
	switch {
	case n == 1:
		parts = append(parts, "1 failure")
	case n > 1:
		parts = append(parts, fmt.Sprintf("%d failures", n))
	}
	switch {
	case errs == 1:
		parts = append(parts, "1 test could not be run")
	case errs > 1:
		parts = append(parts, fmt.Sprintf("%d tests could not be run", errs))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// assemble joins a header and report items into the single FAIL message of
// a suite.
func assemble(code, header string, items []string) check.Result {
	parts := append([]string{header}, items...)
	return check.Fail(code, "%s", strings.Join(parts, "\n\n"))
}

func regressionReport(font *shaper.Font, suite *Suite, failures []Failure) check.Result {
	var items []string
	for _, f := range failures {
		switch f := f.(type) {
		case *RegressionFailure:
			items = append(items, regressionItem(font, f))
		case *TestError:
			items = append(items, testErrorItem(f))
		}
	}
	header := fmt.Sprintf("%s: Expected and actual shaping not matching%s", suite.Name(), tally(failures))
	return assemble(CodeRegression, header, items)
}

func regressionItem(font *shaper.Font, f *RegressionFailure) string {
	input, _ := f.Test.Input()
	var b strings.Builder
	b.WriteString(describe("Shaping did not match", input, f.Test))
	if diff := lineDiff(f.Expected, f.Got); diff != "" {
		fmt.Fprintf(&b, "\n\n```diff\n%s```", diff)
	}
	fmt.Fprintf(&b, "\n\nExpected: `%s`\n\nGot: `%s`", f.Expected, f.Got)
	if svg := renderSVG(font, f.Buffer); svg != "" {
		fmt.Fprintf(&b, "\n\nGot: %s", svg)
	}
	if svg := expectedSVG(font, f.Expected); svg != "" {
		fmt.Fprintf(&b, "\n\nExpected: %s", svg)
	}
	return b.String()
}

// expectedSVG draws a serialized expectation. Glyph names the font does not
// know are drawn as .notdef.
func expectedSVG(font *shaper.Font, expected string) string {
	if font == nil {
		return ""
	}
	buf, err := shaper.ParseSerialized(expected)
	if err != nil {
		tracer().Debugf("cannot draw expectation: %v", err)
		return ""
	}
	if err := font.ResolveNames(buf); err != nil {
		tracer().Debugf("drawing expectation: %v", err)
	}
	return renderSVG(font, buf)
}

func forbiddenReport(font *shaper.Font, suite *Suite, failures []Failure) check.Result {
	var items []string
	for _, f := range failures {
		switch f := f.(type) {
		case *ForbiddenFailure:
			item := fmt.Sprintf("* %s produced '%s'", f.Text, f.Glyph)
			if note := f.Test.Note(); note != "" {
				item += fmt.Sprintf(" (%s)", note)
			}
			if svg := renderSVG(font, f.Buffer); svg != "" {
				item += "\n\n" + svg
			}
			items = append(items, item)
		case *TestError:
			items = append(items, testErrorItem(f))
		}
	}
	header := fmt.Sprintf("%s: Forbidden glyphs found while shaping%s", suite.Name(), tally(failures))
	return assemble(CodeForbidden, header, items)
}

// collisionReport lists each set of colliding glyph pairs once, with the
// first text that produced it.
func collisionReport(_ *shaper.Font, suite *Suite, failures []Failure) check.Result {
	var items []string
	seen := make(map[string]bool)
	count := 0
	for _, f := range failures {
		switch f := f.(type) {
		case *CollisionFailure:
			count++
			bumps := collide.Signatures(f.Collisions)
			key := strings.Join(bumps, ",")
			if seen[key] {
				tracer().Debugf("collisions %s already reported", key)
				continue
			}
			seen[key] = true
			item := fmt.Sprintf("* %s in string '%s'", key, f.Text)
			if note := f.Test.Note(); note != "" {
				item += fmt.Sprintf(" (%s)", note)
			}
			if f.Drawing != "" {
				item += ":\n\n" + fixSVG(f.Drawing)
			}
			items = append(items, item)
		case *TestError:
			items = append(items, testErrorItem(f))
		}
	}
	header := fmt.Sprintf("%s: %d collisions found while shaping", suite.Name(), count)
	return assemble(CodeCollides, header, items)
}
