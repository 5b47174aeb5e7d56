package layout

import (
	"testing"

	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/text"
)

func TestFinalizeExtractsPositionedLinesKeyedByNodeID(t *testing.T) {
	cfg := requireBundledFont(t)
	doc, styled := styledTree(t, `<style>p{color:#ff0000;font-size:16px}</style><p>hi</p>`)
	tm := NewTextMeasurer(doc, cfg)
	tree := BuildTree(doc, styled, 300, 200, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 300, Height: 200})

	cache := Finalize(doc, styled, tree, tm)

	p := findElement(styled, doc, "p")
	var textNodeID dom.NodeID
	if len(p.Children) == 1 {
		textNodeID = p.Children[0].Node
	}

	layout, ok := cache.Text[textNodeID]
	if !ok {
		t.Fatalf("expected a TextLayout entry for the text node")
	}
	if len(layout.Lines) == 0 {
		t.Fatalf("expected at least one positioned line")
	}
	if layout.Color.R != 255 {
		t.Errorf("expected inherited color red, got %+v", layout.Color)
	}
	if layout.FontSizePx != 16 {
		t.Errorf("expected font-size 16px, got %v", layout.FontSizePx)
	}
}

func TestFinalizeRecordsNoTextLayoutWithoutTextNodes(t *testing.T) {
	doc, styled := styledTree(t, `<div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 100, 100, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 100, Height: 100})

	cache := Finalize(doc, styled, tree, tm)
	if len(cache.Text) != 0 {
		t.Errorf("expected no text layouts for a div with no text content, got %d", len(cache.Text))
	}
}
