package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/fontqa/shaping/brew"
	"github.com/thatisuday/commando"
	"gopkg.in/yaml.v3"
)

func runBrewCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	recipe := strings.TrimSpace(args["recipe"].Value)
	ingredients, err := readIngredients(flagString(flags, "ingredients"))
	if err != nil {
		fatalf("%v", err)
	}
	b, err := brew.New(recipe, ingredients)
	if err != nil {
		fatalf("%v", err)
	}
	b.MaxStrings = mustFlagInt(flags, "max")
	strs, err := b.GenerateAll()
	if err != nil {
		fatalf("%v", err)
	}
	withCodepoints := mustFlagBool(flags, "codepoints")
	for _, s := range strs {
		if !withCodepoints {
			fmt.Println(s)
			continue
		}
		cps := make([]string, 0, len(s))
		for _, r := range s {
			cps = append(cps, fmt.Sprintf("U+%04X", r))
		}
		fmt.Printf("%s\t%s\n", s, strings.Join(cps, " "))
	}
}

// readIngredients reads ingredients either from the configuration block of
// a shaping test file or from a flat name-to-recipe mapping. YAML being a
// superset of JSON, both formats are accepted.
func readIngredients(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var testFile struct {
		Configuration struct {
			Ingredients map[string]string `yaml:"ingredients"`
		} `yaml:"configuration"`
	}
	if err := yaml.Unmarshal(data, &testFile); err == nil && testFile.Configuration.Ingredients != nil {
		return testFile.Configuration.Ingredients, nil
	}
	var flat map[string]string
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("%s: no ingredients found: %w", path, err)
	}
	return flat, nil
}
