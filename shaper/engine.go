package shaper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrEngineUnavailable is returned when shaping parameters request an engine
// which is not compiled into this program. It signals a setup problem, not a
// font defect.
var ErrEngineUnavailable = errors.New("shaping engine not available")

// Engine shapes text with a font.
type Engine interface {
	Name() string
	Shape(f *Font, text string, p Params) (Buffer, error)
}

// Params selects how a text is shaped. Empty values let the engine guess
// (script and direction from the text) or use its defaults.
type Params struct {
	Script     string             // ISO 15924 script tag, e.g. "Arab"
	Language   string             // BCP 47 language tag, e.g. "ar"
	Direction  string             // LTR, RTL, TTB or BTT
	Features   map[string]bool    // OpenType feature tag → on/off
	Variations map[string]float64 // axis tag → design coordinate
	Shaper     string             // engine name; empty selects the font's default
}

// String formats parameters for diagnostics, omitting unset values.
func (p Params) String() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("script", p.Script)
	add("language", p.Language)
	add("direction", p.Direction)
	if len(p.Features) > 0 {
		add("features", formatFeatures(p.Features))
	}
	if len(p.Variations) > 0 {
		add("variations", formatVariations(p.Variations))
	}
	add("shaper", p.Shaper)
	return strings.Join(parts, " ")
}

func formatFeatures(features map[string]bool) string {
	tags := sortedKeys(features)
	out := make([]string, len(tags))
	for i, tag := range tags {
		if features[tag] {
			out[i] = "+" + tag
		} else {
			out[i] = "-" + tag
		}
	}
	return strings.Join(out, ",")
}

func formatVariations(variations map[string]float64) string {
	tags := sortedKeys(variations)
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = fmt.Sprintf("%s=%g", tag, variations[tag])
	}
	return strings.Join(out, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Engine registry -------------------------------------------------------

var engines = struct {
	sync.RWMutex
	byName map[string]Engine
}{byName: make(map[string]Engine)}

// RegisterEngine makes an engine selectable by its name and by aliases.
// Later registrations replace earlier ones.
func RegisterEngine(e Engine, aliases ...string) {
	engines.Lock()
	defer engines.Unlock()
	engines.byName[strings.ToLower(e.Name())] = e
	for _, a := range aliases {
		engines.byName[strings.ToLower(a)] = e
	}
}

// LookupEngine finds a registered engine by name.
func LookupEngine(name string) (Engine, error) {
	engines.RLock()
	defer engines.RUnlock()
	if e, ok := engines.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q (compiled-in engines: %s)", ErrEngineUnavailable, name,
		strings.Join(engineNames(), ", "))
}

func engineNames() []string {
	return sortedKeys(engines.byName)
}

func defaultEngine() Engine {
	e, err := LookupEngine(HarfBuzzEngineName)
	if err != nil {
		panic(err) // registered in init
	}
	return e
}

// Shape shapes text with p. The engine named in p.Shaper is used if set,
// otherwise the font's default engine.
func (f *Font) Shape(text string, p Params) (Buffer, error) {
	e := f.engine
	if p.Shaper != "" {
		var err error
		if e, err = LookupEngine(p.Shaper); err != nil {
			return nil, err
		}
	}
	buf, err := e.Shape(f, text, p)
	if err != nil {
		return nil, fmt.Errorf("shaping %q with %s: %w", text, e.Name(), err)
	}
	tracer().Debugf("shaped %q [%s] -> %s", text, p, Serialize(buf, GlyphsOnly))
	return buf, nil
}
