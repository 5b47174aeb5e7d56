package layout

import (
	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/text"
)

// PositionedLine is one text leaf's line, already placed at absolute
// layout coordinates, with its glyph metrics preserved rather than
// re-stringified (spec §4.5's finalize-pass requirement).
type PositionedLine struct {
	X, Y   float64
	Text   string
	Glyphs []text.ShapedGlyph
	Width  float64
}

// TextLayout is one text node's finalized draw instructions: its
// positioned lines plus the inherited paint attributes the Render
// Walker's draw_glyphs call needs (spec §4.6: "with the inherited color
// and font-size").
type TextLayout struct {
	Lines      []PositionedLine
	Color      text.Color
	FontSizePx float64
}

// LayoutCache holds every text node's finalized layout, keyed by the
// styled node's source dom.NodeID rather than by pointer identity — a
// styled tree is rebuilt fresh every cycle, so dom.NodeID is the only
// identity that survives from one cycle's cascade to this cycle's
// render (spec §4.5's closing paragraph).
type LayoutCache struct {
	Text map[dom.NodeID]TextLayout
}

// Finalize walks the styled tree and its solved flexsolver tree in
// lockstep (the two share identical shape and child order, since
// BuildTree produces exactly one flexsolver.Node per StyledNode),
// extracting every text leaf's positioned glyph runs into a LayoutCache
// for the Render Walker.
func Finalize(doc *dom.Document, styled *cssom.StyledNode, solved *flexsolver.Node, tm *TextMeasurer) *LayoutCache {
	cache := &LayoutCache{Text: make(map[dom.NodeID]TextLayout)}
	finalizeNode(doc, styled, solved, tm, cache)
	return cache
}

func finalizeNode(doc *dom.Document, styled *cssom.StyledNode, solver *flexsolver.Node, tm *TextMeasurer, cache *LayoutCache) {
	if styled == nil || solver == nil {
		return
	}

	n, ok := doc.Node(styled.Node)
	if ok && n.Kind == dom.KindText {
		if buf, found := tm.Buffer(styled.Node); found {
			cache.Text[styled.Node] = buildTextLayout(buf, solver)
		}
	}

	for i, child := range styled.Children {
		if i >= len(solver.Children) {
			break
		}
		finalizeNode(doc, child, solver.Children[i], tm, cache)
	}
}

func buildTextLayout(buf *text.ShapedBuffer, solver *flexsolver.Node) TextLayout {
	lines := buf.Lines()
	positioned := make([]PositionedLine, len(lines))
	for i, l := range lines {
		positioned[i] = PositionedLine{
			X:      solver.X,
			Y:      solver.Y + float64(i)*buf.LineHeightPx(),
			Text:   l.Text,
			Glyphs: l.Glyphs,
			Width:  l.Width,
		}
	}
	return TextLayout{
		Lines:      positioned,
		Color:      buf.Color(),
		FontSizePx: buf.FontSizePx(),
	}
}
