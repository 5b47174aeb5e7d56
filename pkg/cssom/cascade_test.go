package cssom

import (
	"testing"

	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/htmlparse"
)

func TestSimpleCascadeClassBeatsTag(t *testing.T) {
	doc, err := htmlparse.ParseString(`<style>p{color:#ff0000} .x{color:#00ff00}</style><p class="x">hi</p>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	sheet := Compile(doc.StyleTexts[0], nil)
	styled := Cascade(doc, sheet, doc.Root)

	p := findFirstElement(t, doc, styled, "p")
	color, ok := p.Properties.Get("color")
	if !ok || color.Kind != KindColor {
		t.Fatalf("expected p to have a computed color, got %+v ok=%v", color, ok)
	}
	if color.Color != (Color{0, 255, 0, 255}) {
		t.Errorf("expected class .x (specificity beats tag p) to win: got %+v", color.Color)
	}
}

func TestChildVsDescendantCombinatorTieBreak(t *testing.T) {
	css := `div>span{color:red} div span{color:blue}`
	doc, err := htmlparse.ParseString(`<div><span>A</span><p><span>B</span></p></div>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	sheet := Compile(css, nil)
	styled := Cascade(doc, sheet, doc.Root)

	spans := findAllElements(styled, doc, "span")
	if len(spans) != 2 {
		t.Fatalf("expected 2 <span> elements, got %d", len(spans))
	}
	spanA, spanB := spans[0], spans[1]

	colorA, _ := spanA.Properties.Get("color")
	colorB, _ := spanB.Properties.Get("color")
	if colorA.Color != (Color{255, 0, 0, 255}) {
		t.Errorf("span A: expected red (child combinator wins the specificity tie), got %+v", colorA.Color)
	}
	if colorB.Color != (Color{0, 0, 255, 255}) {
		t.Errorf("span B: expected blue (only descendant selector matches), got %+v", colorB.Color)
	}
}

func TestInlineStyleWinsOverStylesheet(t *testing.T) {
	doc, err := htmlparse.ParseString(`<style>p{color:red}</style><p style="color: blue">hi</p>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	sheet := Compile(doc.StyleTexts[0], nil)
	styled := Cascade(doc, sheet, doc.Root)
	p := findFirstElement(t, doc, styled, "p")
	color, _ := p.Properties.Get("color")
	if color.Color != (Color{0, 0, 255, 255}) {
		t.Errorf("expected inline style to win, got %+v", color.Color)
	}
}

func TestNoOwnDeclarationsReusesParentPropertySet(t *testing.T) {
	doc, err := htmlparse.ParseString(`<style>div{color:red}</style><div><span>plain</span></div>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	sheet := Compile(doc.StyleTexts[0], nil)
	styled := Cascade(doc, sheet, doc.Root)
	div := findFirstElement(t, doc, styled, "div")
	if len(div.Children) != 1 {
		t.Fatalf("expected div to have one styled child")
	}
	span := div.Children[0]
	if span.Properties != div.Properties {
		t.Errorf("span with no own declarations should reuse div's PropertySet pointer directly")
	}
}

func TestMarginShorthandExpandsFourValue(t *testing.T) {
	decls := ParseDeclarationBlock("margin: 1px 2px 3px 4px", nil)
	want := map[string]float64{
		"margin-top": 1, "margin-right": 2, "margin-bottom": 3, "margin-left": 4,
	}
	got := map[string]float64{}
	for _, d := range decls {
		got[d.Property] = d.Value.Number
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func findFirstElement(t *testing.T, doc *dom.Document, styled *StyledNode, tag string) *StyledNode {
	t.Helper()
	all := findAllElements(styled, doc, tag)
	if len(all) == 0 {
		t.Fatalf("no <%s> found", tag)
	}
	return all[0]
}

func findAllElements(styled *StyledNode, doc *dom.Document, tag string) []*StyledNode {
	var out []*StyledNode
	var walk func(*StyledNode)
	walk = func(s *StyledNode) {
		if n, ok := doc.Node(s.Node); ok && n.Kind == dom.KindElement && doc.Atoms.String(n.TagName) == tag {
			out = append(out, s)
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(styled)
	return out
}
