// Package render is the Render Walker (spec §4.6): it drives an abstract
// drawing backend from a styled tree and its solved flexsolver tree,
// walked in lockstep the same way pkg/layout's finalize pass does.
package render

import (
	"sort"

	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/layout"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/text"
)

// Color is the Render Walker's own RGBA quad, per spec §6's "colors are
// 8-bit RGBA." Backends never need to import cssom or text to implement
// Backend — Walk converts at the boundary, the same "external
// collaborator only sees plain types" discipline pkg/layout/flexsolver
// and pkg/text follow.
type Color struct {
	R, G, B, A uint8
}

// Rect is an axis-aligned box in layout pixels.
type Rect struct {
	X, Y, W, H float64
}

// GlyphRun is one positioned line's glyphs, pen-origin-relative metrics
// preserved rather than re-stringified (spec §4.5/§4.6). Text carries the
// line's own source text alongside the glyph metrics for backends whose
// drawing API only accepts strings (e.g. GGBackend); backends able to
// paint by glyph index directly should prefer Glyphs.
type GlyphRun struct {
	X, Y   float64
	Text   string
	Glyphs []text.ShapedGlyph
}

// Backend is the abstract drawing sink spec §4.6 names: fill_rect,
// stroke_rect, draw_glyphs.
type Backend interface {
	FillRect(rect Rect, color Color)
	StrokeRect(rect Rect, color Color, width float64)
	DrawGlyphs(run GlyphRun, color Color, fontSizePx float64)
}

// TextLayoutDrawer is the "default draw_text_layout convenience method"
// spec §4.6 describes, provided via embedding: any Backend that embeds
// TextLayoutDrawer gets DrawTextLayout for free, iterating a text node's
// lines and forwarding each to its own DrawGlyphs.
type TextLayoutDrawer struct{}

// DrawTextLayout iterates tl's positioned lines and forwards each as one
// DrawGlyphs call.
func (TextLayoutDrawer) DrawTextLayout(b Backend, tl layout.TextLayout) {
	color := Color{R: tl.Color.R, G: tl.Color.G, B: tl.Color.B, A: tl.Color.A}
	for _, line := range tl.Lines {
		b.DrawGlyphs(GlyphRun{X: line.X, Y: line.Y, Text: line.Text, Glyphs: line.Glyphs}, color, tl.FontSizePx)
	}
}

// drawCommand is one queued paint operation, ordered by (z-index, paint
// level, DFS order) before it's issued to the backend — z-index/paint-
// level stacking isn't named in the distilled spec, but it's a natural
// corollary of "traverses ... in lockstep" and the teacher already
// paints in this order (see DESIGN.md).
type drawCommand struct {
	zIndex     int
	paintLevel int
	seq        int
	paint      func()
}

// Walk traverses styled and solved in lockstep and issues fill/stroke/
// glyph-run calls to backend in paint order (spec §4.6).
func Walk(doc *dom.Document, styled *cssom.StyledNode, solved *flexsolver.Node, cache *layout.LayoutCache, backend Backend) {
	var commands []drawCommand
	seq := 0
	collect(doc, styled, solved, cache, backend, &commands, &seq)

	sort.SliceStable(commands, func(i, j int) bool {
		if commands[i].zIndex != commands[j].zIndex {
			return commands[i].zIndex < commands[j].zIndex
		}
		if commands[i].paintLevel != commands[j].paintLevel {
			return commands[i].paintLevel < commands[j].paintLevel
		}
		return commands[i].seq < commands[j].seq
	})
	for _, c := range commands {
		c.paint()
	}
}

func collect(doc *dom.Document, styled *cssom.StyledNode, solved *flexsolver.Node, cache *layout.LayoutCache, backend Backend, out *[]drawCommand, seq *int) {
	if styled == nil || solved == nil {
		return
	}

	n, ok := doc.Node(styled.Node)
	if !ok {
		return
	}

	switch n.Kind {
	case dom.KindElement:
		z := zIndexOf(styled.Properties)
		level := paintLevelOf(styled.Properties)
		rect := Rect{X: solved.X, Y: solved.Y, W: solved.W, H: solved.H}

		if bg, ok := styled.Properties.Get("background-color"); ok && bg.Kind == cssom.KindColor && bg.Color.A != 0 {
			c := colorFrom(bg)
			*seq++
			*out = append(*out, drawCommand{zIndex: z, paintLevel: level, seq: *seq, paint: func() {
				backend.FillRect(rect, c)
			}})
		}
		if bc, ok := styled.Properties.Get("border-color"); ok && bc.Kind == cssom.KindColor {
			c := colorFrom(bc)
			*seq++
			*out = append(*out, drawCommand{zIndex: z, paintLevel: level, seq: *seq, paint: func() {
				backend.StrokeRect(rect, c, 1)
			}})
		}

	case dom.KindText:
		if tl, found := cache.Text[styled.Node]; found {
			z := zIndexOf(styled.Properties)
			level := 2 // text paints as inline content, CSS 2.1 Appendix E.
			drawer := TextLayoutDrawer{}
			*seq++
			*out = append(*out, drawCommand{zIndex: z, paintLevel: level, seq: *seq, paint: func() {
				drawer.DrawTextLayout(backend, tl)
			}})
		}
	}

	for i, child := range styled.Children {
		if i >= len(solved.Children) {
			break
		}
		collect(doc, child, solved.Children[i], cache, backend, out, seq)
	}
}

func zIndexOf(props *cssom.PropertySet) int {
	v, ok := props.Get("z-index")
	if !ok || v.Kind != cssom.KindLengthPx {
		return 0
	}
	return int(v.Number)
}

// paintLevelOf mirrors the teacher's paintLevel: block content paints
// before inline content within the same z-index (CSS 2.1 Appendix E,
// minus the float level spec's Non-goals exclude).
func paintLevelOf(props *cssom.PropertySet) int {
	v, ok := props.Get("display")
	if ok && v.Kind == cssom.KindKeyword && (v.Keyword == "inline" || v.Keyword == "inline-block") {
		return 1
	}
	return 0
}

func colorFrom(v cssom.Value) Color {
	return Color{R: v.Color.R, G: v.Color.G, B: v.Color.B, A: v.Color.A}
}
