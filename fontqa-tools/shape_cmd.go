package main

import (
	"fmt"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/thatisuday/commando"
)

func runShapeCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args)
	buf := mustShape(f, args, flags)
	mode := shaper.Full
	if mustFlagBool(flags, "glyphs-only") {
		mode = shaper.GlyphsOnly
	}
	fmt.Println("[" + shaper.Serialize(buf, mode) + "]")
}

// mustShape shapes the text argument with the shaping flags.
func mustShape(f *shaper.Font, args map[string]commando.ArgValue, flags map[string]commando.FlagValue) shaper.Buffer {
	params, err := shapingParams(flags)
	if err != nil {
		fatalf("%v", err)
	}
	input, err := parseShapeInput(args["text"], flags)
	if err != nil {
		fatalf("%v", err)
	}
	if input == "" {
		fatalf("input text is empty")
	}
	buf, err := f.Shape(input, params)
	if err != nil {
		fatalf("shape failed: %v", err)
	}
	return buf
}
