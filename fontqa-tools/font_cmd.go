package main

import (
	"fmt"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args)
	fmt.Printf("Path: %s\n", args["font"].Value)
	if family := f.FamilyName(); family != "" {
		fmt.Printf("Family: %s\n", family)
	}
	fmt.Printf("Units per em: %d\n", f.UnitsPerEm())
	fmt.Printf("Glyphs: %d\n", f.NumGlyphs())
	fmt.Printf("Variable: %v\n", f.IsVariable())
	fmt.Printf("Shaper: %s\n", f.Engine().Name())
	if !mustFlagBool(flags, "glyphs") {
		return
	}
	rows := [][]string{{"GID", "Name", "Mark", "Ink box"}}
	for gid := range shaper.GID(f.NumGlyphs()) {
		box := "-"
		if b, ok := f.InkBox(gid); ok {
			box = fmt.Sprintf("%.0f %.0f %.0f %.0f", b.LLx, b.LLy, b.URx, b.URy)
		}
		mark := ""
		if f.IsMark(gid) {
			mark = "yes"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", gid), f.GlyphName(gid), mark, box})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
