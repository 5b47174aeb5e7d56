package layout

import (
	"os"
	"testing"

	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/text"
)

// requireBundledFont skips a test when the bundled font assets aren't
// present in this checkout (they ship as a binary asset bundle, not
// source — see pkg/text's own shaper_test.go).
func requireBundledFont(t *testing.T) text.FontConfig {
	t.Helper()
	cfg := text.DefaultFontConfig()
	if _, err := os.Stat(cfg.Regular); err != nil {
		t.Skipf("bundled font assets not present at %s", cfg.Regular)
	}
	return cfg
}

func TestMeasureLeafShapesExactlyOncePerCycle(t *testing.T) {
	cfg := requireBundledFont(t)
	doc, styled := styledTree(t, `<p>hello there world</p>`)
	tm := NewTextMeasurer(doc, cfg)
	tm.ShapeCount = make(map[dom.NodeID]int)

	tree := BuildTree(doc, styled, 300, 200, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 300, Height: 200})

	for id, count := range tm.ShapeCount {
		if count != 1 {
			t.Errorf("node %+v shaped %d times, want exactly 1", id, count)
		}
	}
	if len(tm.ShapeCount) == 0 {
		t.Fatal("expected at least one text leaf to be measured")
	}
}

func TestMeasureLeafReportsHeightAsLineCountTimesLineHeight(t *testing.T) {
	cfg := requireBundledFont(t)
	doc, styled := styledTree(t, `<style>p{font-size:16px;line-height:20px}</style><p>a very long run of text that will need to wrap across several lines</p>`)
	tm := NewTextMeasurer(doc, cfg)
	tree := BuildTree(doc, styled, 60, 600, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 60, Height: 600})

	textLeaf := tree.Children[1].Children[0]
	if textLeaf.H <= 20 {
		t.Errorf("expected wrapped text to span more than one 20px line, got height %v", textLeaf.H)
	}
}
