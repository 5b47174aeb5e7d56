package text

import (
	"os"
	"testing"
)

func TestSplitWordsPreservesLeadingSpace(t *testing.T) {
	words, leading := splitWords(" more text")
	if !leading {
		t.Fatal("expected leadingSpace = true")
	}
	if len(words) != 2 || words[0] != "more" || words[1] != "text" {
		t.Fatalf("unexpected split: %v", words)
	}
}

func TestSplitWordsNoLeadingSpace(t *testing.T) {
	words, leading := splitWords("hello world")
	if leading {
		t.Fatal("expected leadingSpace = false")
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %v", words)
	}
}

func TestSplitWordsEmpty(t *testing.T) {
	words, leading := splitWords("")
	if words != nil || leading {
		t.Fatalf("expected nil/false for empty input, got %v/%v", words, leading)
	}
}

func TestResolvePathPrefersMonospace(t *testing.T) {
	cfg := FontConfig{Regular: "regular.ttf", Bold: "bold.ttf", Monospace: "mono.ttf", MonoBold: "monobold.ttf"}
	if got := cfg.ResolvePath("monospace", "normal"); got != "mono.ttf" {
		t.Errorf("expected mono.ttf, got %s", got)
	}
	if got := cfg.ResolvePath("Menlo, monospace", "bold"); got != "monobold.ttf" {
		t.Errorf("expected monobold.ttf, got %s", got)
	}
	if got := cfg.ResolvePath("sans-serif", "bold"); got != "bold.ttf" {
		t.Errorf("expected bold.ttf, got %s", got)
	}
	if got := cfg.ResolvePath("sans-serif", "normal"); got != "regular.ttf" {
		t.Errorf("expected regular.ttf, got %s", got)
	}
}

func TestIsBoldWeightAcceptsNumericWeights(t *testing.T) {
	for _, w := range []string{"bold", "700", "900", "bolder"} {
		if !isBoldWeight(w) {
			t.Errorf("expected %q to be bold", w)
		}
	}
	for _, w := range []string{"normal", "400", ""} {
		if isBoldWeight(w) {
			t.Errorf("expected %q to not be bold", w)
		}
	}
}

// requireBundledFont skips shaping tests that need a real parsed font when
// the bundled font assets aren't present in this checkout (they ship as a
// separate asset bundle, not source).
func requireBundledFont(t *testing.T) FontConfig {
	t.Helper()
	cfg := DefaultFontConfig()
	if _, err := os.Stat(cfg.Regular); err != nil {
		t.Skipf("bundled font assets not present at %s", cfg.Regular)
	}
	return cfg
}

func TestShapeUntilScrollWrapsAtWidth(t *testing.T) {
	cfg := requireBundledFont(t)
	buf, err := NewShapedBuffer("the quick brown fox jumps", "sans-serif", "normal", 16, 20, Color{}, cfg)
	if err != nil {
		t.Fatalf("NewShapedBuffer: %v", err)
	}
	buf.SetSize(60)
	maxWidth, lines := buf.ShapeUntilScroll()
	if len(lines) < 2 {
		t.Fatalf("expected wrapping to produce multiple lines, got %d", len(lines))
	}
	if float64(maxWidth) <= 0 {
		t.Fatalf("expected positive maxLineWidth, got %v", maxWidth)
	}
	for _, l := range lines {
		if l.Width > float64(60)+1 {
			t.Errorf("line %q width %v exceeds wrap width 60", l.Text, l.Width)
		}
	}
}

func TestShapeUntilScrollSingleLineWhenWide(t *testing.T) {
	cfg := requireBundledFont(t)
	buf, err := NewShapedBuffer("hi", "sans-serif", "normal", 16, 20, Color{}, cfg)
	if err != nil {
		t.Fatalf("NewShapedBuffer: %v", err)
	}
	buf.SetSize(1000)
	_, lines := buf.ShapeUntilScroll()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}
