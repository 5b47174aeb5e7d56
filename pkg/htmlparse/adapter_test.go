package htmlparse

import (
	"testing"

	"github.com/inoda-engine/browser/pkg/dom"
)

func firstElementChild(t *testing.T, doc *dom.Document, parent dom.NodeID) dom.NodeID {
	t.Helper()
	n, ok := doc.Node(parent)
	if !ok {
		t.Fatalf("parent handle invalid")
	}
	return n.FirstChild
}

func TestParseBasicTree(t *testing.T) {
	doc, err := ParseString(`<div id="a"><span>hello</span></div>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	div := firstElementChild(t, doc, doc.Root)
	dn, ok := doc.Node(div)
	if !ok || doc.Atoms.String(dn.TagName) != "div" {
		t.Fatalf("expected first child to be <div>")
	}
	if got, ok := doc.GetAttribute(div, "id"); !ok || got != "a" {
		t.Errorf("expected id=a, got %q ok=%v", got, ok)
	}
	span := dn.FirstChild
	sn, ok := doc.Node(span)
	if !ok || doc.Atoms.String(sn.TagName) != "span" {
		t.Fatalf("expected div's child to be <span>")
	}
	text, ok := doc.Node(sn.FirstChild)
	if !ok || text.Kind != dom.KindText || text.Text != "hello" {
		t.Errorf("expected span's child to be text 'hello', got %+v", text)
	}
}

func TestParsePreservesWhitespaceOnlyText(t *testing.T) {
	doc, err := ParseString(`<p>a</p> <p>b</p>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	root, _ := doc.Node(doc.Root)
	firstP, _ := doc.Node(root.FirstChild)
	whitespace, ok := doc.Node(firstP.NextSibling)
	if !ok || whitespace.Kind != dom.KindText || whitespace.Text != " " {
		t.Fatalf("expected preserved whitespace-only text node between <p> siblings, got %+v ok=%v", whitespace, ok)
	}
}

func TestParseImplicitlyClosesOpenP(t *testing.T) {
	doc, err := ParseString(`<p>one<div>two</div></p>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	root, _ := doc.Node(doc.Root)
	p, _ := doc.Node(root.FirstChild)
	if doc.Atoms.String(p.TagName) != "p" {
		t.Fatalf("expected first root child to be <p>")
	}
	// The <div> should have closed the <p> and become root's second child,
	// a sibling of <p>, not a descendant.
	div, ok := doc.Node(p.NextSibling)
	if !ok || doc.Atoms.String(div.TagName) != "div" {
		t.Fatalf("expected <div> to be a sibling of <p> after implicit closure, got %+v ok=%v", div, ok)
	}
}

func TestParseLiClosesSiblingLi(t *testing.T) {
	doc, err := ParseString(`<ul><li>one<li>two</ul>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	root, _ := doc.Node(doc.Root)
	ul, _ := doc.Node(root.FirstChild)
	firstLi, ok := doc.Node(ul.FirstChild)
	if !ok || doc.Atoms.String(firstLi.TagName) != "li" {
		t.Fatalf("expected <ul>'s first child to be <li>")
	}
	secondLi, ok := doc.Node(firstLi.NextSibling)
	if !ok || doc.Atoms.String(secondLi.TagName) != "li" {
		t.Fatalf("expected second <li> to be a sibling of the first, not nested inside it")
	}
	if secondLi.Parent != root.FirstChild {
		t.Errorf("second <li> should be parented directly under <ul>")
	}
}

func TestParseAccumulatesStyleAndScriptText(t *testing.T) {
	doc, err := ParseString(`<style>div{color:red}</style><script>var x = 1 < 2;</script><p>hi</p>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(doc.StyleTexts) != 1 || doc.StyleTexts[0] != "div{color:red}" {
		t.Errorf("expected style text captured, got %#v", doc.StyleTexts)
	}
	if len(doc.Scripts) != 1 {
		t.Fatalf("expected one script entry, got %#v", doc.Scripts)
	}
	root, _ := doc.Node(doc.Root)
	styleEl, ok := doc.Node(root.FirstChild)
	if !ok {
		t.Fatalf("expected a <style> element as the first child")
	}
	scriptEl, ok := doc.Node(styleEl.NextSibling)
	if !ok {
		t.Fatalf("expected a <script> element after <style>")
	}
	if styleEl.FirstChild != (dom.NodeID{}) || scriptEl.FirstChild != (dom.NodeID{}) {
		t.Errorf("style/script content must not become DOM children; expected empty <style> and <script> elements, got %+v, %+v", styleEl, scriptEl)
	}
	third, ok := doc.Node(scriptEl.NextSibling)
	if !ok || doc.Atoms.String(third.TagName) != "p" {
		t.Errorf("expected the element after <style> and <script> to be <p>, got %+v", third)
	}
}

func TestParseVoidElementDoesNotBecomeParent(t *testing.T) {
	doc, err := ParseString(`<div><br><span>after</span></div>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	root, _ := doc.Node(doc.Root)
	div, _ := doc.Node(root.FirstChild)
	br, ok := doc.Node(div.FirstChild)
	if !ok || doc.Atoms.String(br.TagName) != "br" {
		t.Fatalf("expected <br> as div's first child")
	}
	span, ok := doc.Node(br.NextSibling)
	if !ok || doc.Atoms.String(span.TagName) != "span" {
		t.Fatalf("expected <span> to be a sibling of <br>, not its child (void elements can't be parents)")
	}
}

func TestParseUnmatchedEndTagIgnored(t *testing.T) {
	doc, err := ParseString(`<div>hi</span></div>`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	root, _ := doc.Node(doc.Root)
	div, ok := doc.Node(root.FirstChild)
	if !ok || doc.Atoms.String(div.TagName) != "div" {
		t.Fatalf("parse should tolerate the stray </span> and keep <div> intact")
	}
}
