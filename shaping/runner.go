package shaping

import (
	"errors"
	"iter"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaper"
)

// Result codes of the shaping checks.
const (
	CodeNoDir             = "no-dir"
	CodeNoTestsFound      = "no-tests-found"
	CodeNoApplicableTests = "no-applicable-tests"
	CodeInvalidJSON       = "shaping-invalid-json"
	CodeMissingTests      = "shaping-missing-tests"
	CodeMissingInput      = "shaping-missing-input"
	CodeInvalidConfig     = "shaping-invalid-config"
	CodePass              = "shaping-pass"
	CodeRegression        = "shaping-regression"
	CodeForbidden         = "shaping-forbidden"
	CodeCollides          = "shaping-collides"
	CodeEngineUnavailable = "engine-unavailable"
	CodeUnreadableDir     = "unreadable-dir"
)

// ConfigSection is the profile configuration section of the shaping checks,
// and TestDirectoryKey the key naming the directory of test files.
const (
	ConfigSection    = "com.google.fonts/check/shaping"
	TestDirectoryKey = "test_directory"
)

// Run drives comparator cmp over all test files configured in cfg, for the
// font of target.
//
// Every file yields at most one result: PASS if its tests ran without
// failure, FAIL with an aggregated report otherwise. A broken file yields a
// FAIL and the run continues with the next file. If nothing ran at all, a
// single SKIP tells why. A requested shaping engine which is not available
// stops the run with an ERROR.
func Run(cfg check.Config, target *check.Target, cmp Comparator) iter.Seq[check.Result] {
	return func(yield func(check.Result) bool) {
		dir, ok := cfg.String(ConfigSection, TestDirectoryKey)
		if !ok || dir == "" {
			yield(check.Skip(CodeNoDir, "Shaping test directory not defined in configuration file"))
			return
		}
		r := &run{target: target, cmp: cmp, basename: check.Basename(target)}
		files, verdicts := 0, 0
		for suite, err := range LoadSuites(dir) {
			if errors.Is(err, ErrUnreadableDir) {
				yield(check.Error(CodeUnreadableDir, "%s: %v", dir, err))
				return
			}
			files++
			res, ok, stop := r.file(suite, err)
			if !ok {
				continue
			}
			verdicts++
			if !yield(res) || stop {
				return
			}
		}
		switch {
		case files == 0:
			yield(check.Skip(CodeNoTestsFound, "No test files found in %s", dir))
		case r.ran == 0 && verdicts == 0:
			yield(check.Skip(CodeNoApplicableTests, "No applicable %s tests ran", cmp.Kind()))
		}
	}
}

// run carries the state of one Run across test files.
type run struct {
	target   *check.Target
	cmp      Comparator
	basename string
	ran      int // tests evaluated in all files
}

// file processes one test file. ok is false if the file contributes no
// verdict; stop is set for environment errors which end the whole run.
func (r *run) file(suite *Suite, loadErr error) (res check.Result, ok, stop bool) {
	name := suite.Name()
	switch {
	case errors.Is(loadErr, ErrInvalidJSON):
		tracer().Errorf("%s: %v", name, loadErr)
		return check.Fail(CodeInvalidJSON, "%s: Invalid JSON: %v.", name, loadErr), true, false
	case errors.Is(loadErr, ErrMissingTests):
		tracer().Errorf("%s: %v", name, loadErr)
		return check.Fail(CodeMissingTests, "%s: %v.", name, loadErr), true, false
	case loadErr != nil:
		tracer().Errorf("%s: %v", name, loadErr)
		return check.Fail(CodeInvalidJSON, "%s: cannot read test file: %v", name, loadErr), true, false
	}
	font := r.target.Font
	conf := suite.Configuration
	prepared, err := r.cmp.Prepare(font, conf)
	if err != nil {
		return check.Fail(CodeInvalidConfig, "%s: %v", name, err), true, false
	}
	var failures []Failure
	ran := 0
	for _, test := range suite.Tests {
		if !r.cmp.Applies(test, conf) {
			continue
		}
		if !test.Has("input") {
			tracer().Errorf("%s: test #%d has no input", name, test.Index+1)
			return check.Fail(CodeMissingInput, "%s: test #%d: %v.", name, test.Index+1, ErrMissingInput), true, false
		}
		if !test.AppliesTo(r.basename) {
			tracer().Debugf("%s: test %q does not apply to %s", name, test.Label(), r.basename)
			continue
		}
		ran++
		f, err := r.cmp.Evaluate(font, test, conf, prepared)
		if errors.Is(err, shaper.ErrEngineUnavailable) {
			return check.Error(CodeEngineUnavailable,
				"%s: %v. Select one of the compiled-in engines with the 'shaper' key.", name, err), true, true
		}
		if err != nil {
			tracer().Infof("%s: test %q: %v", name, test.Label(), err)
			f = append(f, &TestError{Test: test, Text: test.Label(), Err: err})
		}
		failures = append(failures, f...)
	}
	r.ran += ran
	tracer().Infof("%s: %d %s tests ran, %d failures", name, ran, r.cmp.Kind(), len(failures))
	switch {
	case ran == 0:
		return check.Result{}, false, false
	case len(failures) == 0:
		return check.Pass(CodePass, "%s: no %s problems detected in %d tests", name, r.cmp.Kind(), ran), true, false
	}
	return r.cmp.Report(font, suite, failures), true, false
}
