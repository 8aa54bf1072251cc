package check

import (
	"fmt"
	"strings"
)

// Registry is an ordered collection of checks.
type Registry struct {
	checks []Check
	index  map[string]int
}

// NewRegistry creates a registry holding checks, in order.
// It panics on duplicate check IDs.
func NewRegistry(checks ...Check) *Registry {
	r := &Registry{index: make(map[string]int)}
	for _, c := range checks {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register appends a check. Check IDs must be unique.
func (r *Registry) Register(c Check) error {
	if c == nil {
		return fmt.Errorf("cannot register nil check")
	}
	if _, dup := r.index[c.ID()]; dup {
		return fmt.Errorf("check %q registered twice", c.ID())
	}
	r.index[c.ID()] = len(r.checks)
	r.checks = append(r.checks, c)
	return nil
}

// Checks returns the registered checks in registration order.
func (r *Registry) Checks() []Check {
	return append([]Check(nil), r.checks...)
}

// Lookup finds a check by ID.
func (r *Registry) Lookup(id string) (Check, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.checks[i], true
}

// Select returns the checks whose ID contains one of the given fragments.
// Without fragments, all checks are selected.
func (r *Registry) Select(fragments ...string) []Check {
	if len(fragments) == 0 {
		return r.Checks()
	}
	var sel []Check
	for _, c := range r.checks {
		for _, f := range fragments {
			if f != "" && strings.Contains(c.ID(), f) {
				sel = append(sel, c)
				break
			}
		}
	}
	return sel
}

// CheckResult collects the results of one check for one font.
type CheckResult struct {
	CheckID string
	Font    string
	Results []Result
}

// Worst returns the most severe status of the collected results.
func (cr CheckResult) Worst() Status {
	return Worst(cr.Results)
}

// Run executes checks sequentially against target. A panicking check is
// reported with a single ERROR result and does not stop the other checks.
func Run(cfg Config, target *Target, checks []Check) []CheckResult {
	out := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		cr := CheckResult{CheckID: c.ID(), Font: Basename(target)}
		cr.Results = collect(cfg, target, c)
		tracer().Infof("%s on %s: %s", cr.CheckID, cr.Font, cr.Worst())
		out = append(out, cr)
	}
	return out
}

func collect(cfg Config, target *Target, c Check) (results []Result) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("check %s failed internally: %v", c.ID(), r)
			results = append(results, Error("internal-error", "check failed internally: %v", r))
		}
	}()
	for r := range c.Run(cfg, target) {
		results = append(results, r)
	}
	return results
}
