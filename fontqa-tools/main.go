package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("fontqa-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for running shaping checks against fonts and authoring shaping tests.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("check").
		SetDescription("Run the shaping checks against one or more fonts.").
		SetShortDescription("check fonts").
		AddArgument("fonts...", "font files (variadic argument parts joined by comma by commando)", "").
		AddFlag("profile,p", "profile configuration file (YAML or JSON)", commando.String, "-").
		AddFlag("tests,t", "shaping test directory, overrides the profile", commando.String, "-").
		AddFlag("select,s", "run only checks whose ID contains one of these comma separated fragments", commando.String, "-").
		AddFlag("svg", "keep inline SVG in reports", commando.Bool, nil).
		AddFlag("trace", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runCheckCommand)

	commando.
		Register("shape").
		SetDescription("Shape text with a font and print the serialized glyph buffer.").
		SetShortDescription("shape text").
		AddArgument("font", "OpenType font file path", "").
		AddArgument("text...", "text to shape (variadic argument parts joined by comma by commando)", "").
		AddFlag("script,s", "script (ISO 15924, e.g. Latn, Arab, Deva)", commando.String, "-").
		AddFlag("lang,l", "language tag (BCP 47, e.g. en, ar, hi)", commando.String, "-").
		AddFlag("direction,d", "direction: ltr|rtl|ttb|btt", commando.String, "-").
		AddFlag("features,f", "feature list (e.g. +liga,-kern,smcp=1)", commando.String, "-").
		AddFlag("variations,v", "variation coordinates (e.g. wght=700,wdth=80)", commando.String, "-").
		AddFlag("shaper", "shaping engine", commando.String, "-").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0627,U+0644)", commando.String, "-").
		AddFlag("glyphs-only,g", "print glyph names only", commando.Bool, nil).
		SetAction(runShapeCommand)

	commando.
		Register("view").
		SetDescription("Shape text and render the glyphs to an SVG or PNG image.").
		SetShortDescription("shape to image").
		AddArgument("font", "OpenType font file path", "").
		AddArgument("text...", "text to shape before rendering", "").
		AddFlag("script,s", "script (ISO 15924, e.g. Latn, Arab, Deva)", commando.String, "-").
		AddFlag("lang,l", "language tag (BCP 47, e.g. en, ar, hi)", commando.String, "-").
		AddFlag("direction,d", "direction: ltr|rtl|ttb|btt", commando.String, "-").
		AddFlag("features,f", "feature list (e.g. +liga,-kern,smcp=1)", commando.String, "-").
		AddFlag("variations,v", "variation coordinates (e.g. wght=700,wdth=80)", commando.String, "-").
		AddFlag("shaper", "shaping engine", commando.String, "-").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0627,U+0644)", commando.String, "-").
		AddFlag("output,o", "output file; the extension selects SVG or PNG", commando.String, "fontqa-view.svg").
		AddFlag("collisions,C", "paint colliding glyphs red", commando.Bool, nil).
		AddFlag("show-bboxes,B", "draw ink boxes (PNG only)", commando.Bool, nil).
		AddFlag("ppem,p", "render scale in pixels-per-em (PNG only)", commando.Int, 96).
		AddFlag("width,W", "image width in pixels (PNG only)", commando.Int, 480).
		AddFlag("height,H", "image height in pixels (PNG only)", commando.Int, 160).
		SetAction(runViewCommand)

	commando.
		Register("brew").
		SetDescription("Expand a pattern recipe into test strings.").
		SetShortDescription("expand a pattern").
		AddArgument("recipe...", "recipe (variadic argument parts joined by comma by commando)", "").
		AddFlag("ingredients,i", "shaping test file or YAML/JSON mapping holding the ingredients", commando.String, "-").
		AddFlag("max,m", "maximum number of strings (0 uses default)", commando.Int, 0).
		AddFlag("codepoints,c", "print code points next to each string", commando.Bool, nil).
		SetAction(runBrewCommand)

	commando.
		Register("font").
		SetDescription("Print information about a font as seen by the checks.").
		SetShortDescription("font information").
		AddArgument("font", "OpenType font file path", "").
		AddFlag("glyphs,g", "list glyph names", commando.Bool, nil).
		SetAction(runFontCommand)

	commando.Parse(nil)
}

// setupTracing routes all fontqa traces to the Go logger.
func setupTracing(level string) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.fontqa":         level,
		"trace.fontqa.check":   level,
		"trace.fontqa.shaper":  level,
		"trace.fontqa.shaping": level,
		"trace.fontqa.brew":    level,
		"trace.fontqa.collide": level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

// --- Parsing flags and arguments -------------------------------------------

// flagString returns a string flag; "-" stands for unset.
func flagString(flags map[string]commando.FlagValue, name string) string {
	s, err := flags[name].GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	if s = strings.TrimSpace(s); s == "-" {
		return ""
	}
	return s
}

func mustFlagInt(flags map[string]commando.FlagValue, name string) int {
	n, err := flags[name].GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flags map[string]commando.FlagValue, name string) bool {
	b, err := flags[name].GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

// shapingParams collects shaping parameters from the flags shared by the
// shape and view commands.
func shapingParams(flags map[string]commando.FlagValue) (shaper.Params, error) {
	p := shaper.Params{
		Script:    flagString(flags, "script"),
		Language:  flagString(flags, "lang"),
		Direction: flagString(flags, "direction"),
		Shaper:    flagString(flags, "shaper"),
	}
	var err error
	if p.Features, err = shaper.ParseFeatureList(flagString(flags, "features")); err != nil {
		return p, err
	}
	if p.Variations, err = parseVariations(flagString(flags, "variations")); err != nil {
		return p, err
	}
	return p, nil
}

// parseVariations reads "wght=700,wdth=80".
func parseVariations(spec string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, item := range splitCSVSpace(spec) {
		tag, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("variation %q: expected tag=value", item)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("variation %q: %w", item, err)
		}
		out[strings.TrimSpace(tag)] = v
	}
	return out, nil
}

func parseShapeInput(textArg commando.ArgValue, flags map[string]commando.FlagValue) (string, error) {
	if cp := flagString(flags, "codepoints"); cp != "" {
		runes, err := parseCodepoints(cp)
		if err != nil {
			return "", err
		}
		return string(runes), nil
	}
	return textArg.Value, nil
}

func parseCodepoints(spec string) ([]rune, error) {
	parts := splitCSVSpace(spec)
	out := make([]rune, 0, len(parts))
	for _, p := range parts {
		r, err := parseCodepointToken(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepointToken(token string) (rune, error) {
	if token = strings.TrimSpace(token); token == "" {
		return 0, errors.New("empty codepoint token")
	}
	hex := token
	for _, prefix := range []string{"U+", "u+", "0x", "0X"} {
		if h, ok := strings.CutPrefix(hex, prefix); ok {
			hex = h
			break
		}
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", token, err)
	}
	if u > 0x10FFFF || (u >= 0xD800 && u <= 0xDFFF) {
		return 0, fmt.Errorf("codepoint %q is not a Unicode scalar value", token)
	}
	return rune(u), nil
}

func splitCSVSpace(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func mustLoadFont(args map[string]commando.ArgValue) *shaper.Font {
	path := strings.TrimSpace(args["font"].Value)
	if path == "" {
		fatalf("font path is required")
	}
	f, err := shaper.LoadFont(path)
	if err != nil {
		fatalf("cannot load font %s: %v", path, err)
	}
	return f
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "fontqa-tools: "+format+"\n", args...)
	os.Exit(1)
}
