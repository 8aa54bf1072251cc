package shaper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/harfbuzz"
	"github.com/go-text/typesetting/language"
	xlanguage "golang.org/x/text/language"
)

// HarfBuzzEngineName is the name of the default engine. It is also selected
// by the names "ot" and "harfbuzz", as used for HarfBuzz shaper lists.
const HarfBuzzEngineName = "harfbuzz"

func init() {
	RegisterEngine(harfbuzzEngine{}, "ot", "hb")
}

// harfbuzzEngine shapes with the go-text port of HarfBuzz.
type harfbuzzEngine struct{}

func (harfbuzzEngine) Name() string {
	return HarfBuzzEngineName
}

func (harfbuzzEngine) Shape(f *Font, text string, p Params) (Buffer, error) {
	face := f.Face()
	vars, err := variationsFor(p.Variations)
	if err != nil {
		return nil, err
	}
	face.SetVariations(vars)
	features, err := featuresFor(p.Features)
	if err != nil {
		return nil, err
	}
	hbFont := harfbuzz.NewFont(face)
	buf := harfbuzz.NewBuffer()
	runes := []rune(text)
	buf.AddRunes(runes, 0, -1)
	if p.Direction != "" {
		dir, err := parseDirection(p.Direction)
		if err != nil {
			return nil, err
		}
		buf.Props.Direction = dir
	}
	if p.Script != "" {
		if len(strings.TrimSpace(p.Script)) != 4 {
			return nil, fmt.Errorf("invalid script %q", p.Script)
		}
		script, err := language.ParseScript(strings.TrimSpace(p.Script))
		if err != nil {
			return nil, fmt.Errorf("invalid script %q: %w", p.Script, err)
		}
		buf.Props.Script = script
	}
	if p.Language != "" {
		tag, err := xlanguage.Parse(p.Language)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", p.Language, err)
		}
		buf.Props.Language = language.NewLanguage(tag.String())
	}
	buf.GuessSegmentProperties()
	buf.Shape(hbFont, features)

	out := make(Buffer, len(buf.Info))
	for i, info := range buf.Info {
		pos := buf.Pos[i]
		gid := GID(info.Glyph)
		out[i] = Glyph{
			GID:      gid,
			Name:     f.GlyphName(gid),
			Cluster:  info.Cluster,
			XAdvance: int32(pos.XAdvance),
			YAdvance: int32(pos.YAdvance),
			XOffset:  int32(pos.XOffset),
			YOffset:  int32(pos.YOffset),
		}
	}
	return out, nil
}

func parseDirection(s string) (harfbuzz.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ltr", "left-to-right":
		return harfbuzz.LeftToRight, nil
	case "rtl", "right-to-left":
		return harfbuzz.RightToLeft, nil
	case "ttb", "top-to-bottom":
		return harfbuzz.TopToBottom, nil
	case "btt", "bottom-to-top":
		return harfbuzz.BottomToTop, nil
	}
	return harfbuzz.LeftToRight, fmt.Errorf("invalid direction %q (expected ltr|rtl|ttb|btt)", s)
}

func featuresFor(features map[string]bool) ([]harfbuzz.Feature, error) {
	if len(features) == 0 {
		return nil, nil
	}
	out := make([]harfbuzz.Feature, 0, len(features))
	for _, tag := range sortedKeys(features) {
		if len(tag) != 4 {
			return nil, fmt.Errorf("feature tag %q is not 4 characters", tag)
		}
		value := 0
		if features[tag] {
			value = 1
		}
		feat, err := harfbuzz.ParseFeature(fmt.Sprintf("%s=%d", tag, value))
		if err != nil {
			return nil, fmt.Errorf("invalid feature %q: %w", tag, err)
		}
		out = append(out, feat)
	}
	return out, nil
}

func variationsFor(variations map[string]float64) ([]font.Variation, error) {
	out := make([]font.Variation, 0, len(variations))
	for _, tag := range sortedKeys(variations) {
		if len(tag) != 4 {
			return nil, fmt.Errorf("axis tag %q is not 4 characters", tag)
		}
		out = append(out, font.Variation{
			Tag:   ot.MustNewTag(tag),
			Value: float32(variations[tag]),
		})
	}
	return out, nil
}

// ParseFeatureList parses a comma- or space-separated feature list as used on
// command lines, e.g. "+liga,-kern,smcp=1". A bare tag switches a feature on.
func ParseFeatureList(spec string) (map[string]bool, error) {
	out := make(map[string]bool)
	items := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ' ' })
	for _, item := range items {
		on := true
		if strings.HasPrefix(item, "+") {
			item = strings.TrimPrefix(item, "+")
		} else if strings.HasPrefix(item, "-") {
			item = strings.TrimPrefix(item, "-")
			on = false
		}
		tag, value, hasEq := strings.Cut(item, "=")
		if len(tag) != 4 {
			return nil, fmt.Errorf("invalid feature tag %q", tag)
		}
		if hasEq {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid feature value %q in %q", value, item)
			}
			on = n != 0
		}
		out[tag] = on
	}
	return out, nil
}
