package layout

import (
	"testing"

	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/htmlparse"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/text"
)

func styledTree(t *testing.T, html string) (*dom.Document, *cssom.StyledNode) {
	t.Helper()
	doc, err := htmlparse.ParseString(html, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	var css string
	if len(doc.StyleTexts) > 0 {
		css = doc.StyleTexts[0]
	}
	sheet := cssom.Compile(css, nil)
	return doc, cssom.Cascade(doc, sheet, doc.Root)
}

func findElement(styled *cssom.StyledNode, doc *dom.Document, tag string) *cssom.StyledNode {
	var found *cssom.StyledNode
	var walk func(*cssom.StyledNode)
	walk = func(s *cssom.StyledNode) {
		if found != nil {
			return
		}
		if n, ok := doc.Node(s.Node); ok && n.Kind == dom.KindElement && doc.Atoms.String(n.TagName) == tag {
			found = s
			return
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(styled)
	return found
}

func TestBuildTreeMapsDisplayNoneToSolverDisplayNone(t *testing.T) {
	doc, styled := styledTree(t, `<style>#hidden{display:none}</style><div id="hidden">gone</div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)

	// The root's children are the <style> element and the <div>; the
	// div's flexsolver.Node should carry DisplayNone.
	if len(tree.Children) != 2 || tree.Children[1].Display != flexsolver.DisplayNone {
		t.Fatalf("expected the div's solver node to be DisplayNone, got %+v", tree)
	}
}

func TestBuildTreeMapsRowFlexDirection(t *testing.T) {
	doc, styled := styledTree(t, `<style>div{display:flex;flex-direction:row}</style><div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)
	if len(tree.Children) != 2 || tree.Children[1].Direction != flexsolver.Row {
		t.Fatalf("expected row direction, got %+v", tree.Children)
	}
}

func TestBuildTreeDefaultsNonFlexToColumn(t *testing.T) {
	doc, styled := styledTree(t, `<div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)
	if len(tree.Children) != 1 || tree.Children[0].Direction != flexsolver.Column {
		t.Fatalf("expected column (block-stacking) default, got %+v", tree.Children)
	}
}

func TestBuildTreeResolvesPxWidth(t *testing.T) {
	doc, styled := styledTree(t, `<style>div{width:100px;height:50px}</style><div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)
	div := tree.Children[1]
	w, ok := div.Width.Resolve(9999)
	if !ok || w != 100 {
		t.Errorf("expected width 100px, got %v ok=%v", w, ok)
	}
}

func TestBuildTreeResolvesEmWidthAgainstFontSize(t *testing.T) {
	doc, styled := styledTree(t, `<style>div{font-size:20px;width:2em}</style><div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)
	div := tree.Children[1]
	w, ok := div.Width.Resolve(9999)
	if !ok || w != 40 {
		t.Errorf("expected 2em at font-size 20px to resolve to 40px, got %v ok=%v", w, ok)
	}
}

func TestBuildTreeResolvesRemWidthAgainstRootFontSize(t *testing.T) {
	doc, styled := styledTree(t, `<style>div{width:2rem}</style><div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)
	div := tree.Children[1]
	w, ok := div.Width.Resolve(9999)
	if !ok || w != 32 {
		t.Errorf("expected 2rem at the 16px root default to resolve to 32px, got %v ok=%v", w, ok)
	}
}

func TestBuildTreeLeavesPercentWidthSymbolic(t *testing.T) {
	doc, styled := styledTree(t, `<style>div{width:50%}</style><div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)
	div := tree.Children[1]
	w, ok := div.Width.Resolve(200)
	if !ok || w != 100 {
		t.Errorf("expected 50%% of 200 = 100, got %v ok=%v", w, ok)
	}
}

func TestBuildTreeMarginLonghands(t *testing.T) {
	doc, styled := styledTree(t, `<style>div{margin-top:5px;margin-left:10px}</style><div></div>`)
	tm := NewTextMeasurer(doc, text.DefaultFontConfig())
	tree := BuildTree(doc, styled, 800, 600, tm)
	div := tree.Children[1]
	if div.Margin.Top != 5 || div.Margin.Left != 10 {
		t.Errorf("expected margin top=5 left=10, got %+v", div.Margin)
	}
}
