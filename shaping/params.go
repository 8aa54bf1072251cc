package shaping

import (
	"fmt"

	"github.com/npillmayer/fontqa/shaper"
)

// reportKeys are the shaping parameters listed in failure reports, in order.
var reportKeys = []string{"script", "language", "direction", "features", "variations"}

// lookup decodes key from the test if present there, otherwise from the
// suite's defaults. found is false if neither has the key, leaving v
// untouched.
func lookup(test TestCase, conf Configuration, key string, v any) (found bool, err error) {
	if test.Has(key) {
		if err := test.Decode(key, v); err != nil {
			return true, err
		}
		return true, nil
	}
	return conf.Default(key, v)
}

// ResolveParams computes the shaping parameters of a test. Every parameter is
// taken from the test if set there, else from configuration.defaults, else it
// stays unset. Unset variations are the empty map.
func ResolveParams(test TestCase, conf Configuration) (shaper.Params, error) {
	var p shaper.Params
	for key, dst := range map[string]*string{
		"script":    &p.Script,
		"language":  &p.Language,
		"direction": &p.Direction,
		"shaper":    &p.Shaper,
	} {
		if _, err := lookup(test, conf, key, dst); err != nil {
			return p, fmt.Errorf("shaping parameter %s: %w", key, err)
		}
	}
	var features map[string]any
	if _, err := lookup(test, conf, "features", &features); err != nil {
		return p, fmt.Errorf("shaping parameter features: %w", err)
	}
	if len(features) > 0 {
		p.Features = make(map[string]bool, len(features))
		for tag, v := range features {
			on, err := featureValue(v)
			if err != nil {
				return p, fmt.Errorf("feature %s: %w", tag, err)
			}
			p.Features[tag] = on
		}
	}
	p.Variations = map[string]float64{}
	if _, err := lookup(test, conf, "variations", &p.Variations); err != nil {
		return p, fmt.Errorf("shaping parameter variations: %w", err)
	}
	if p.Variations == nil {
		p.Variations = map[string]float64{}
	}
	return p, nil
}

// featureValue accepts booleans and the integers used by HarfBuzz feature
// strings.
func featureValue(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	}
	return false, fmt.Errorf("expected true/false or a number, got %v", v)
}

// InputType is "pattern" for tests whose input is a recipe, and "string"
// otherwise. The type may be set as a default for the whole suite.
func InputType(test TestCase, conf Configuration) string {
	t := "string"
	if _, err := lookup(test, conf, "input_type", &t); err != nil || t == "" {
		return "string"
	}
	return t
}

// AllowedCollisions lists the collision signatures a test accepts, falling
// back to the suite's defaults.
func AllowedCollisions(test TestCase, conf Configuration) []string {
	var allowed []string
	_, _ = lookup(test, conf, "allowedcollisions", &allowed)
	return allowed
}

// paramsAppendix lists the shaping keys present in the test itself, for
// reports.
func paramsAppendix(test TestCase) map[string]any {
	out := make(map[string]any)
	for _, key := range reportKeys {
		if !test.Has(key) {
			continue
		}
		var v any
		if err := test.Decode(key, &v); err == nil {
			out[key] = v
		}
	}
	return out
}
