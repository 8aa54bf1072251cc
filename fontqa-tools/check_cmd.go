package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/npillmayer/fontqa"
	"github.com/npillmayer/fontqa/check"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runCheckCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flagString(flags, "trace"))
	fonts := splitCSVSpace(args["fonts"].Value)
	if len(fonts) == 0 {
		fatalf("at least one font file is required")
	}
	cfg, err := fontqa.LoadProfile(flagString(flags, "profile"), flagString(flags, "tests"))
	if err != nil {
		fatalf("%v", err)
	}
	reg := fontqa.DefaultRegistry()
	checks := reg.Select(splitCSVSpace(flagString(flags, "select"))...)
	if len(checks) == 0 {
		fatalf("no checks selected")
	}
	keepSVG := mustFlagBool(flags, "svg")

	worst := check.PASS
	for _, report := range fontqa.CheckFonts(cfg, fonts, checks) {
		printFontReport(report, keepSVG)
		worst = max(worst, report.Worst())
	}
	if worst >= check.FAIL {
		os.Exit(1)
	}
}

func printFontReport(report fontqa.FontReport, keepSVG bool) {
	pterm.Println()
	pterm.Println("Font " + report.Path)
	if report.Err != nil {
		pterm.Error.Println(report.Err)
		return
	}
	summary := [][]string{{"Check", "Results", "Worst"}}
	for _, cr := range report.Results {
		for _, r := range cr.Results {
			printResult(cr.CheckID, r, keepSVG)
		}
		summary = append(summary, []string{cr.CheckID, fmt.Sprintf("%d", len(cr.Results)), cr.Worst().String()})
	}
	pterm.DefaultTable.WithHasHeader().WithData(summary).Render()
}

var inlineSVG = regexp.MustCompile(`<svg[^>]*>.*?</svg>`)

func printResult(checkID string, r check.Result, keepSVG bool) {
	text := r.Message.Text
	if !keepSVG {
		text = inlineSVG.ReplaceAllString(text, "[svg]")
	}
	line := fmt.Sprintf("%s: %s [%s]", checkID, text, r.Message.Code)
	switch r.Status {
	case check.PASS:
		pterm.Success.Println(line)
	case check.SKIP, check.INFO:
		pterm.Info.Println(line)
	case check.WARN:
		pterm.Warning.Println(line)
	default:
		pterm.Error.Println(strings.TrimSpace(r.Status.String() + " " + line))
	}
}
