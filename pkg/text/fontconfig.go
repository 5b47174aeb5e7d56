// Package text wraps github.com/go-text/typesetting behind the shaping
// contract the Layout Coupling Layer drives: a pre-shaped buffer per text
// node, reflowed against a candidate width and reporting its bounding
// size, adapted from the teacher's pkg/text/measure.go font-resolution
// logic and generalized from ad hoc bold/italic bools to a StyledNode's
// inherited font-family/font-size/line-height/color.
package text

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FontConfig holds paths to the font files available to the shaper.
type FontConfig struct {
	Regular    string
	Bold       string
	Monospace  string
	MonoBold   string
}

// defaultFontsDir locates the bundled fonts directory relative to the
// running executable, falling back to the compile-time source location —
// the same two-step lookup the teacher uses so a built binary need not
// carry its working directory along with it.
func defaultFontsDir() string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "..", "fonts")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "fonts")
}

// DefaultFontConfig returns a FontConfig pointing at the bundled
// Atkinson Hyperlegible faces, mirroring the teacher's default set minus
// the italic/Ahem faces this spec's font-family grammar never selects.
func DefaultFontConfig() FontConfig {
	dir := defaultFontsDir()
	return FontConfig{
		Regular:   filepath.Join(dir, "AtkinsonHyperlegible-Regular.ttf"),
		Bold:      filepath.Join(dir, "AtkinsonHyperlegible-Bold.ttf"),
		Monospace: filepath.Join(dir, "AtkinsonHyperlegibleMono-Regular.otf"),
		MonoBold:  filepath.Join(dir, "AtkinsonHyperlegibleMono-Bold.otf"),
	}
}

// ResolvePath picks a font file for the given computed font-family and
// font-weight keyword, generalizing the teacher's FontPath precedence
// (mono beats proportional, bold beats regular within each family).
func (fc FontConfig) ResolvePath(fontFamily, fontWeight string) string {
	mono := isMonospaceFamily(fontFamily)
	bold := isBoldWeight(fontWeight)

	if mono {
		if bold && fc.MonoBold != "" {
			return fc.MonoBold
		}
		if fc.Monospace != "" {
			return fc.Monospace
		}
	}
	if bold && fc.Bold != "" {
		return fc.Bold
	}
	return fc.Regular
}

func isMonospaceFamily(family string) bool {
	f := strings.ToLower(strings.TrimSpace(family))
	return f == "monospace" || strings.Contains(f, "mono")
}

func isBoldWeight(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	if w == "bold" {
		return true
	}
	switch w {
	case "700", "800", "900", "bolder":
		return true
	}
	return false
}
