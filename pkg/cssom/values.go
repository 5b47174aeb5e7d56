package cssom

import "strings"

// ValueKind discriminates the typed CSS value union.
type ValueKind int

const (
	KindLengthPx ValueKind = iota
	KindPercent
	KindViewportW
	KindViewportH
	KindEm
	KindRem
	KindColor
	KindKeyword
	KindNumber
	KindAuto
	KindNone
)

// Color is an 8-bit RGBA color resolved from the named five-color
// palette or a #RRGGBB literal, per spec §4.3 step 3 / spec §6's "colors
// are 8-bit RGBA." The grammar itself has no alpha syntax, so every
// parsed color is fully opaque (A: 255).
type Color struct {
	R, G, B, A uint8
}

// Value is the typed union every parsed declaration value resolves to.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind    ValueKind
	Number  float64 // LengthPx, Percent (0-100), ViewportW/H, Em, Rem, Number
	Color   Color
	Keyword string
}

var namedPalette = map[string]Color{
	"red":   {255, 0, 0, 255},
	"green": {0, 128, 0, 255},
	"blue":  {0, 0, 255, 255},
	"black": {0, 0, 0, 255},
	"white": {255, 255, 255, 255},
}

// ParseColorValue accepts the named five-color palette and #RRGGBB. No
// other forms, per spec §4.3 step 3.
func ParseColorValue(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedPalette[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		r, ok1 := hexByte(s[1:3])
		g, ok2 := hexByte(s[3:5])
		b, ok3 := hexByte(s[5:7])
		if ok1 && ok2 && ok3 {
			return Color{r, g, b, 255}, true
		}
	}
	return Color{}, false
}

func hexByte(s string) (uint8, bool) {
	var v int
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= int(c - '0')
		case c >= 'a' && c <= 'f':
			v |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= int(c-'A') + 10
		default:
			return 0, false
		}
	}
	return uint8(v), true
}

// ParseLengthValue accepts <number>(px|em|rem|%|vw|vh) and the keyword
// auto, per spec §4.3 step 3.
func ParseLengthValue(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "auto" {
		return Value{Kind: KindAuto}, true
	}
	if s == "none" {
		return Value{Kind: KindNone}, true
	}

	lex := NewLexer(s)
	tok := lex.Next()
	switch tok.Kind {
	case TokDimension:
		switch tok.Unit {
		case "px":
			return Value{Kind: KindLengthPx, Number: tok.Value}, true
		case "em":
			return Value{Kind: KindEm, Number: tok.Value}, true
		case "rem":
			return Value{Kind: KindRem, Number: tok.Value}, true
		case "vw":
			return Value{Kind: KindViewportW, Number: tok.Value}, true
		case "vh":
			return Value{Kind: KindViewportH, Number: tok.Value}, true
		}
		return Value{}, false
	case TokPercentage:
		return Value{Kind: KindPercent, Number: tok.Value}, true
	case TokNumber:
		// Bare zero is the one unitless length CSS allows; be lenient the
		// way the teacher's ParseLength is (it trims an optional "px").
		return Value{Kind: KindLengthPx, Number: tok.Value}, true
	}
	return Value{}, false
}

// ParseDeclarationValue parses a declaration's value string for property,
// dispatching to the length or color grammar, or falling back to a bare
// keyword/number for properties with no dedicated grammar (e.g.
// display, flex-direction, font-family, text-align).
func ParseDeclarationValue(property, raw string) (Value, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case isLengthProperty(property):
		return ParseLengthValue(raw)
	case isColorProperty(property):
		c, ok := ParseColorValue(raw)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: KindColor, Color: c}, true
	default:
		if v, ok := ParseLengthValue(raw); ok {
			return v, true
		}
		return Value{Kind: KindKeyword, Keyword: raw}, true
	}
}

var lengthProperties = map[string]bool{
	"width": true, "height": true, "font-size": true, "line-height": true,
	"margin-top": true, "margin-right": true, "margin-bottom": true, "margin-left": true,
	"padding-top": true, "padding-right": true, "padding-bottom": true, "padding-left": true,
	"border-top-width": true, "border-right-width": true,
	"border-bottom-width": true, "border-left-width": true,
}

func isLengthProperty(p string) bool { return lengthProperties[p] }

var colorProperties = map[string]bool{
	"color": true, "background-color": true, "border-color": true,
}

func isColorProperty(p string) bool { return colorProperties[p] }

// ExpandShorthand expands margin/padding/background into longhands,
// per spec §4.3 step 3. Non-shorthand properties pass through unchanged.
// Grounded on the teacher's expandShorthand/expandBoxProperty in
// pkg/css/style.go, rewritten to standard 1/2/3/4-value box expansion
// (the teacher's own 2-value case swaps right/left, which is a bug this
// version corrects since spec mandates "the standard 1/2/3/4-value
// rules").
func ExpandShorthand(property, value string) map[string]string {
	switch property {
	case "margin":
		return expandBox("margin", value)
	case "padding":
		return expandBox("padding", value)
	case "background":
		for _, part := range strings.Fields(value) {
			if _, ok := ParseColorValue(part); ok {
				return map[string]string{"background-color": part}
			}
		}
		return nil
	default:
		return map[string]string{property: value}
	}
}

func expandBox(prefix, value string) map[string]string {
	parts := strings.Fields(value)
	out := make(map[string]string, 4)
	switch len(parts) {
	case 1:
		out[prefix+"-top"] = parts[0]
		out[prefix+"-right"] = parts[0]
		out[prefix+"-bottom"] = parts[0]
		out[prefix+"-left"] = parts[0]
	case 2:
		out[prefix+"-top"] = parts[0]
		out[prefix+"-bottom"] = parts[0]
		out[prefix+"-left"] = parts[1]
		out[prefix+"-right"] = parts[1]
	case 3:
		out[prefix+"-top"] = parts[0]
		out[prefix+"-left"] = parts[1]
		out[prefix+"-right"] = parts[1]
		out[prefix+"-bottom"] = parts[2]
	case 4:
		out[prefix+"-top"] = parts[0]
		out[prefix+"-right"] = parts[1]
		out[prefix+"-bottom"] = parts[2]
		out[prefix+"-left"] = parts[3]
	default:
		return nil
	}
	return out
}
