package render

import (
	"os"
	"testing"

	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/htmlparse"
	"github.com/inoda-engine/browser/pkg/layout"
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

func requireBundledFont(t *testing.T) text.FontConfig {
	t.Helper()
	cfg := text.DefaultFontConfig()
	if _, err := os.Stat(cfg.Regular); err != nil {
		t.Skipf("bundled font assets not present at %s", cfg.Regular)
	}
	return cfg
}

type call struct {
	kind  string // "fill", "stroke", "glyphs"
	color Color
}

type fakeBackend struct {
	calls []call
}

func (f *fakeBackend) FillRect(rect Rect, color Color) {
	f.calls = append(f.calls, call{kind: "fill", color: color})
}

func (f *fakeBackend) StrokeRect(rect Rect, color Color, width float64) {
	f.calls = append(f.calls, call{kind: "stroke", color: color})
}

func (f *fakeBackend) DrawGlyphs(run GlyphRun, color Color, fontSizePx float64) {
	f.calls = append(f.calls, call{kind: "glyphs", color: color})
}

func TestWalkPaintsBlockBeforeInlineAtSameZIndex(t *testing.T) {
	cfg := requireBundledFont(t)
	doc, styled := styledTree(t, `<style>div{background-color:#0000ff}span{display:inline;background-color:#00ff00}</style><div><span>hi</span></div>`)
	tm := layout.NewTextMeasurer(doc, cfg)
	tree := layout.BuildTree(doc, styled, 300, 200, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 300, Height: 200})
	cache := layout.Finalize(doc, styled, tree, tm)

	backend := &fakeBackend{}
	Walk(doc, styled, tree, cache, backend)

	if len(backend.calls) < 2 {
		t.Fatalf("expected at least 2 paint calls, got %d: %+v", len(backend.calls), backend.calls)
	}
	// The block-level div's background must be queued (and thus issued)
	// before the inline span's background at the same z-index.
	var divIdx, spanIdx = -1, -1
	for i, c := range backend.calls {
		if c.kind != "fill" {
			continue
		}
		if c.color == (Color{B: 255, A: 255}) && divIdx == -1 {
			divIdx = i
		}
		if c.color == (Color{G: 255, A: 255}) && spanIdx == -1 {
			spanIdx = i
		}
	}
	if divIdx == -1 || spanIdx == -1 {
		t.Fatalf("expected both fill colors present, got %+v", backend.calls)
	}
	if divIdx > spanIdx {
		t.Errorf("expected block-level div to paint before inline span, got div at %d, span at %d", divIdx, spanIdx)
	}
}

func TestWalkRespectsExplicitZIndexOverPaintLevel(t *testing.T) {
	cfg := requireBundledFont(t)
	doc, styled := styledTree(t, `<style>div{background-color:#0000ff;z-index:5}span{background-color:#00ff00}</style><div><span>hi</span></div>`)
	tm := layout.NewTextMeasurer(doc, cfg)
	tree := layout.BuildTree(doc, styled, 300, 200, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 300, Height: 200})
	cache := layout.Finalize(doc, styled, tree, tm)

	backend := &fakeBackend{}
	Walk(doc, styled, tree, cache, backend)

	var divIdx, spanIdx = -1, -1
	for i, c := range backend.calls {
		if c.kind != "fill" {
			continue
		}
		if c.color == (Color{B: 255, A: 255}) {
			divIdx = i
		}
		if c.color == (Color{G: 255, A: 255}) {
			spanIdx = i
		}
	}
	if divIdx == -1 || spanIdx == -1 {
		t.Fatalf("expected both fill colors present, got %+v", backend.calls)
	}
	if divIdx < spanIdx {
		t.Errorf("expected z-index:5 div to paint after the default-z-index span, got div at %d, span at %d", divIdx, spanIdx)
	}
}

func TestWalkForwardsTextLayoutAsGlyphRuns(t *testing.T) {
	cfg := requireBundledFont(t)
	doc, styled := styledTree(t, `<p>hello</p>`)
	tm := layout.NewTextMeasurer(doc, cfg)
	tree := layout.BuildTree(doc, styled, 300, 200, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 300, Height: 200})
	cache := layout.Finalize(doc, styled, tree, tm)

	backend := &fakeBackend{}
	Walk(doc, styled, tree, cache, backend)

	found := false
	for _, c := range backend.calls {
		if c.kind == "glyphs" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected at least one DrawGlyphs call for the paragraph's text, got %+v", backend.calls)
	}
}

func TestDrawTextLayoutForwardsEachLine(t *testing.T) {
	tl := layout.TextLayout{
		Color:      text.Color{R: 10, G: 20, B: 30, A: 255},
		FontSizePx: 16,
		Lines: []layout.PositionedLine{
			{X: 0, Y: 0, Text: "line one"},
			{X: 0, Y: 20, Text: "line two"},
		},
	}
	backend := &fakeBackend{}
	TextLayoutDrawer{}.DrawTextLayout(backend, tl)

	if len(backend.calls) != 2 {
		t.Fatalf("expected 2 DrawGlyphs calls, got %d", len(backend.calls))
	}
	for _, c := range backend.calls {
		if c.kind != "glyphs" {
			t.Errorf("expected a glyphs call, got %q", c.kind)
		}
		if c.color != (Color{R: 10, G: 20, B: 30, A: 255}) {
			t.Errorf("expected forwarded color, got %+v", c.color)
		}
	}
}
