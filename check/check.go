/*
Package check defines the contract between font checks and the code running
them.

A check receives the profile configuration and a target font and produces a
lazy sequence of results. Each result carries a [Status] and a [Message]
with a machine-readable code. Derived facts about a font which are shared
between checks ("conditions") are memoized per target in [Conditions].

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package check

import (
	"fmt"
	"iter"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontqa.check'
func tracer() tracing.Trace {
	return tracing.Select("fontqa.check")
}

// Status is the verdict of a single check result.
//
// Statuses are ordered by severity, PASS being the least severe. ERROR is
// reserved for problems of the environment (e.g., a shaping engine that is not
// available) and never signals a defect of the font itself.
type Status int8

const (
	PASS Status = iota
	SKIP
	INFO
	WARN
	FAIL
	ERROR
)

var statusNames = [...]string{"PASS", "SKIP", "INFO", "WARN", "FAIL", "ERROR"}

func (s Status) String() string {
	if s < PASS || s > ERROR {
		return fmt.Sprintf("Status(%d)", int8(s))
	}
	return statusNames[s]
}

// ParseStatus is the inverse of [Status.String].
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return PASS, fmt.Errorf("unknown check status %q", s)
}

// Message is the payload of a result: a short code identifying the kind of
// outcome and a Markdown-flavoured text for humans. Text may embed inline SVG.
type Message struct {
	Code string
	Text string
}

func (m Message) String() string {
	if m.Code == "" {
		return m.Text
	}
	return fmt.Sprintf("%s [code: %s]", m.Text, m.Code)
}

// Result is one (Status, Message) pair produced by a check.
type Result struct {
	Status  Status
	Message Message
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}

// Pass creates a PASS result.
func Pass(code, format string, args ...any) Result {
	return newResult(PASS, code, format, args...)
}

// Skip creates a SKIP result. Skips tell that a check did not apply.
func Skip(code, format string, args ...any) Result {
	return newResult(SKIP, code, format, args...)
}

// Info creates an INFO result.
func Info(code, format string, args ...any) Result {
	return newResult(INFO, code, format, args...)
}

// Warn creates a WARN result.
func Warn(code, format string, args ...any) Result {
	return newResult(WARN, code, format, args...)
}

// Fail creates a FAIL result.
func Fail(code, format string, args ...any) Result {
	return newResult(FAIL, code, format, args...)
}

// Error creates an ERROR result.
func Error(code, format string, args ...any) Result {
	return newResult(ERROR, code, format, args...)
}

func newResult(status Status, code, format string, args ...any) Result {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return Result{Status: status, Message: Message{Code: code, Text: text}}
}

// Check is a single font check.
//
// Run must not retain cfg or target after the returned sequence has been
// consumed. Results are produced lazily; a consumer may stop early.
type Check interface {
	ID() string
	Description() string
	Run(cfg Config, target *Target) iter.Seq[Result]
}

// Target is the font under test together with its memoized conditions.
//
// A target binds one loaded font; it must not be shared between goroutines
// running checks concurrently.
type Target struct {
	Font       *shaper.Font
	Conditions *Conditions
}

// NewTarget wraps a font for a check run.
func NewTarget(f *shaper.Font) *Target {
	return &Target{Font: f, Conditions: NewConditions()}
}

// Worst returns the most severe status of a sequence of results.
// An empty sequence counts as PASS.
func Worst(results []Result) Status {
	worst := PASS
	for _, r := range results {
		if r.Status > worst {
			worst = r.Status
		}
	}
	return worst
}
