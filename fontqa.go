/*
Package fontqa runs quality checks against OpenType fonts.

The checks of this module concentrate on shaping: suites of test strings,
authored as JSON files next to a font project, are shaped with the font
and compared to expected glyph sequences, searched for forbidden glyphs,
and searched for colliding glyph outlines. See package shaping for the
test file format and package check for the contract between checks and
the code running them.

A font run is configured by a profile, a YAML or JSON file mapping check
IDs to settings:

	com.google.fonts/check/shaping:
	  test_directory: qa/shaping_tests

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package fontqa

import (
	"sync"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/fontqa/shaping"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontqa'
func tracer() tracing.Trace {
	return tracing.Select("fontqa")
}

// DefaultRegistry returns a registry holding all checks of this module.
func DefaultRegistry() *check.Registry {
	return check.NewRegistry(shaping.Checks()...)
}

// LoadProfile reads a profile configuration. A non-empty testDir overrides
// the shaping test directory of the profile. An empty path yields an empty
// profile.
func LoadProfile(path, testDir string) (check.Config, error) {
	cfg := check.Config{}
	if path != "" {
		var err error
		if cfg, err = check.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if testDir != "" {
		cfg.Set(shaping.ConfigSection, shaping.TestDirectoryKey, testDir)
	}
	return cfg, nil
}

// FontReport holds the results of all checks run against one font file.
type FontReport struct {
	Path    string
	Err     error // font could not be loaded
	Results []check.CheckResult
}

// Worst is the most severe status of the report. A font which could not be
// loaded counts as ERROR.
func (r FontReport) Worst() check.Status {
	if r.Err != nil {
		return check.ERROR
	}
	worst := check.PASS
	for _, cr := range r.Results {
		worst = max(worst, cr.Worst())
	}
	return worst
}

// CheckFont loads a font file and runs checks against it.
func CheckFont(cfg check.Config, path string, checks []check.Check, opts ...shaper.Option) FontReport {
	report := FontReport{Path: path}
	f, err := shaper.LoadFont(path, opts...)
	if err != nil {
		tracer().Errorf("cannot load %s: %v", path, err)
		report.Err = err
		return report
	}
	report.Results = check.Run(cfg, check.NewTarget(f), checks)
	return report
}

// CheckFonts runs checks against several font files concurrently, one
// goroutine per font. Reports are returned in the order of paths.
func CheckFonts(cfg check.Config, paths []string, checks []check.Check, opts ...shaper.Option) []FontReport {
	reports := make([]FontReport, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = CheckFont(cfg, path, checks, opts...)
		}()
	}
	wg.Wait()
	tracer().Infof("checked %d fonts", len(paths))
	return reports
}
