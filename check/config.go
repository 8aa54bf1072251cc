package check

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the profile configuration handed to every check.
//
// It maps a check ID (or a check family ID such as
// "com.google.fonts/check/shaping") to a section of key/value settings.
type Config map[string]map[string]any

// LoadConfig reads a profile configuration file. YAML and JSON are accepted.
// Top-level entries which are not mappings are ignored.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes a profile configuration from YAML or JSON bytes.
func ParseConfig(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("profile configuration: %w", err)
	}
	cfg := make(Config, len(raw))
	for section, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			tracer().Debugf("configuration entry %q is not a section, ignored", section)
			continue
		}
		cfg[section] = m
	}
	return cfg, nil
}

// Lookup returns the value for key in section.
func (c Config) Lookup(section, key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c[section]
	if !ok {
		return nil, false
	}
	v, ok := s[key]
	return v, ok
}

// String returns the value for key in section if it is a string.
func (c Config) String(section, key string) (string, bool) {
	v, ok := c.Lookup(section, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores a value, creating the section if needed.
func (c Config) Set(section, key string, value any) {
	s, ok := c[section]
	if !ok {
		s = make(map[string]any)
		c[section] = s
	}
	s[key] = value
}
