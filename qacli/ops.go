package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/fontqa/shaping/brew"
	"github.com/npillmayer/fontqa/shaping/collide"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

var (
	errNoFont   = errors.New("no font loaded, use 'font <path>'")
	errNoBuffer = errors.New("nothing shaped yet, use 'shape <text>'")
	errNoArg    = errors.New("command needs an argument")
)

func fontOp(intp *Intp, op *Op) (error, bool) {
	if op.noArg() {
		if intp.font == nil {
			return errNoFont, false
		}
		pterm.Printf("%s: family %q, %d glyphs, %d units per em\n", intp.font.Path,
			intp.font.FamilyName(), intp.font.NumGlyphs(), intp.font.UnitsPerEm())
		return nil, false
	}
	return intp.loadFont(op.arg), false
}

// shapeOp shapes its argument, or re-shapes the last text if there is none.
func shapeOp(intp *Intp, op *Op) (error, bool) {
	if intp.font == nil {
		return errNoFont, false
	}
	text := op.arg
	if text == "" {
		if text = intp.text; text == "" {
			return errNoArg, false
		}
	}
	buf, err := intp.font.Shape(text, intp.params)
	if err != nil {
		return err, false
	}
	intp.text, intp.buf = text, buf
	pterm.Println("[" + shaper.Serialize(buf, shaper.Full) + "]")
	return nil, false
}

func scriptOp(intp *Intp, op *Op) (error, bool) {
	intp.params.Script = op.arg
	return nil, false
}

func langOp(intp *Intp, op *Op) (error, bool) {
	intp.params.Language = op.arg
	return nil, false
}

func dirOp(intp *Intp, op *Op) (error, bool) {
	switch strings.ToLower(op.arg) {
	case "", "ltr", "rtl", "ttb", "btt":
		intp.params.Direction = strings.ToUpper(op.arg)
		return nil, false
	}
	return fmt.Errorf("invalid direction %q", op.arg), false
}

func featuresOp(intp *Intp, op *Op) (error, bool) {
	features, err := shaper.ParseFeatureList(op.arg)
	if err != nil {
		return err, false
	}
	intp.params.Features = features
	return nil, false
}

func variationsOp(intp *Intp, op *Op) (error, bool) {
	variations := make(map[string]float64)
	for item := range strings.FieldsSeq(strings.ReplaceAll(op.arg, ",", " ")) {
		tag, value, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("variation %q: expected tag=value", item), false
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("variation %q: %w", item, err), false
		}
		variations[tag] = v
	}
	intp.params.Variations = variations
	return nil, false
}

func engineOp(intp *Intp, op *Op) (error, bool) {
	if op.arg != "" {
		if _, err := shaper.LookupEngine(op.arg); err != nil {
			return err, false
		}
	}
	intp.params.Shaper = op.arg
	return nil, false
}

func paramsOp(intp *Intp, op *Op) (error, bool) {
	p := intp.params.String()
	if p == "" {
		p = "defaults"
	}
	pterm.Printf("shaping parameters: %s\n", p)
	return nil, false
}

func resetOp(intp *Intp, op *Op) (error, bool) {
	intp.params = shaper.Params{}
	return nil, false
}

// namesOp lists the characters of the last text and the glyphs they were
// shaped to.
func namesOp(intp *Intp, op *Op) (error, bool) {
	if intp.buf == nil {
		return errNoBuffer, false
	}
	chars := [][]string{{"Index", "Char", "Code point", "Name"}}
	for i, r := range []rune(intp.text) {
		chars = append(chars, []string{
			strconv.Itoa(i), string(r), fmt.Sprintf("U+%04X", r), runenames.Name(r),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(chars).Render()
	glyphs := [][]string{{"Glyph", "Name", "Cluster", "Advance", "Offset"}}
	for _, g := range intp.buf {
		glyphs = append(glyphs, []string{
			strconv.Itoa(int(g.GID)), g.Name, strconv.Itoa(g.Cluster),
			fmt.Sprintf("%d,%d", g.XAdvance, g.YAdvance),
			fmt.Sprintf("%d,%d", g.XOffset, g.YOffset),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(glyphs).Render()
	return nil, false
}

// collideOp checks the last shaping result for collisions. An optional
// argument holds collidoscope settings such as "area=20,marks=false".
func collideOp(intp *Intp, op *Op) (error, bool) {
	if intp.buf == nil {
		return errNoBuffer, false
	}
	opts, err := collisionOptions(op.arg)
	if err != nil {
		return err, false
	}
	d := collide.New(intp.font, opts)
	_, collisions := d.Check(intp.buf)
	if len(collisions) == 0 {
		pterm.Success.Println("no collisions")
		return nil, false
	}
	pterm.Warning.Printf("%d collisions: %s\n", len(collisions), collide.Describe(collisions))
	return nil, false
}

func collisionOptions(spec string) (collide.Options, error) {
	if spec == "" {
		return collide.DefaultOptions(), nil
	}
	block := make(map[string]any)
	for item := range strings.FieldsSeq(strings.ReplaceAll(spec, ",", " ")) {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return collide.Options{}, fmt.Errorf("collidoscope option %q: expected key=value", item)
		}
		if v == "true" || v == "false" {
			block[k] = v == "true"
		} else if n, err := strconv.ParseFloat(v, 64); err == nil {
			block[k] = n
		} else {
			return collide.Options{}, fmt.Errorf("collidoscope option %q: invalid value", item)
		}
	}
	return collide.ParseOptions(block)
}

// ingredientOp defines a named ingredient "Name=recipe", or lists all
// ingredients.
func ingredientOp(intp *Intp, op *Op) (error, bool) {
	if op.noArg() {
		for name, recipe := range intp.ingredients {
			pterm.Printf("%s = %s\n", name, recipe)
		}
		return nil, false
	}
	name, recipe, ok := strings.Cut(op.arg, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return errors.New("expected ingredient as Name=recipe"), false
	}
	intp.ingredients[strings.TrimSpace(name)] = strings.TrimSpace(recipe)
	return nil, false
}

// brewOp expands a recipe and, with a font loaded, shapes every string.
func brewOp(intp *Intp, op *Op) (error, bool) {
	if op.noArg() {
		return errNoArg, false
	}
	b, err := brew.New(op.arg, intp.ingredients)
	if err != nil {
		return err, false
	}
	strs, err := b.GenerateAll()
	if err != nil {
		return err, false
	}
	for _, s := range strs {
		if intp.font == nil {
			pterm.Println(s)
			continue
		}
		buf, err := intp.font.Shape(s, intp.params)
		if err != nil {
			return err, false
		}
		pterm.Printf("%s\t[%s]\n", s, shaper.Serialize(buf, shaper.GlyphsOnly))
	}
	pterm.Info.Printf("%d strings\n", len(strs))
	return nil, false
}

func svgOp(intp *Intp, op *Op) (error, bool) {
	if intp.buf == nil {
		return errNoBuffer, false
	}
	if op.noArg() {
		return errNoArg, false
	}
	svg, err := intp.font.BufferToSVG(intp.buf)
	if err != nil {
		return err, false
	}
	if err := os.WriteFile(op.arg, []byte(svg), 0o644); err != nil {
		return err, false
	}
	pterm.Info.Printf("wrote %s\n", op.arg)
	return nil, false
}
