package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	switch strings.ToLower(topic) {
	case "shape", "text", "script", "lang", "dir", "features", "params":
		pterm.Info.Println("Shaping")
		pterm.Println(`
	shape <text>         shape text with the current parameters
	script <tag>         set the script, e.g. Latn, Arab ('script' alone unsets)
	lang <tag>           set the language, e.g. ur
	dir <ltr|rtl|...>    set the direction
	features <list>      set features, e.g. +liga,-kern,ss01
	variations <list>    set variation coordinates, e.g. wght=700
	shaper <engine>      select a shaping engine
	params               show the current parameters
	reset                reset all parameters
	`)
	case "brew", "ingredient", "ingredients", "pattern":
		pterm.Info.Println("Patterns")
		pterm.Println(`
	ingredient Name=recipe   define an ingredient, e.g. Vowel=[aeiou]
	ingredient               list ingredients
	brew <recipe>            expand a recipe, e.g. Vowel [\u0300-\u0302]

	Recipes are whitespace separated terms: ingredient names, character
	classes [..], groups (a | b) and literal words, each with an optional
	quantifier ? * + {n} {m,n}.
	If a font is loaded, every string is shaped.
	`)
	case "collide", "collisions", "names", "svg":
		pterm.Info.Println("Inspecting the last result")
		pterm.Println(`
	names                list characters and glyphs of the last result
	collide [options]    check for collisions, e.g. collide area=20,marks=false
	svg <file>           write the last result as SVG
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	font <path>          load a font ('font' alone shows the current one)
	shape, script, lang, dir, features, variations, shaper, params, reset
	names, collide, svg
	ingredient, brew
	quit

	Separate several commands by ';'. 'help <command>' shows details.
	`)
	}
}
