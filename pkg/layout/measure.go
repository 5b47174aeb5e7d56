package layout

import (
	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/text"
)

// TextMeasurer owns the one pre-shaped text.ShapedBuffer created per text
// node during a layout cycle's pre-pass (spec §4.5), and hands BuildTree
// the flexsolver.MeasureFunc closures that rewrap those buffers against
// whatever width the solver offers each leaf.
type TextMeasurer struct {
	doc   *dom.Document
	fonts text.FontConfig

	buffers map[dom.NodeID]*text.ShapedBuffer

	// ShapeCount is a test-only hook backing the testable property "shape
	// invoked exactly once per node per cycle" — left nil in production
	// use, set to a fresh map by tests before a cycle runs.
	ShapeCount map[dom.NodeID]int
}

// NewTextMeasurer creates a measurer scoped to one layout cycle. A fresh
// TextMeasurer must be built for every cycle: it caches one buffer per
// text node it sees, and stale buffers from a rebuilt styled tree
// (different dom.NodeID identities are still valid, but stale colors/
// sizes from a previous cascade must not leak forward).
func NewTextMeasurer(doc *dom.Document, fonts text.FontConfig) *TextMeasurer {
	return &TextMeasurer{doc: doc, fonts: fonts, buffers: make(map[dom.NodeID]*text.ShapedBuffer)}
}

// Buffer returns the pre-shaped buffer built for a text node during this
// cycle's pre-pass, for the finalize pass to read positioned lines back
// out of after Solve returns.
func (tm *TextMeasurer) Buffer(id dom.NodeID) (*text.ShapedBuffer, bool) {
	b, ok := tm.buffers[id]
	return b, ok
}

// measureLeaf pre-shapes id's text content against its inherited
// font-family/font-weight/color and its already-resolved font-size, and
// returns the closure flexsolver.Node.Measure invokes with a candidate
// available width (spec §4.5 steps 1-3: set_size, shape_until_scroll,
// report (max_line_width, num_lines*line_height)).
func (tm *TextMeasurer) measureLeaf(id dom.NodeID, props *cssom.PropertySet, fontSizePx float64) flexsolver.MeasureFunc {
	n, ok := tm.doc.Node(id)
	if !ok || n.Kind != dom.KindText {
		return nil
	}

	fontFamily := keywordProp(props, "font-family", "sans-serif")
	fontWeight := keywordProp(props, "font-weight", "normal")
	lineHeightPx := lineHeightPxFor(props, fontSizePx)
	color := colorFor(props, "color")

	buf, err := text.NewShapedBuffer(n.Text, fontFamily, fontWeight, fontSizePx, lineHeightPx, color, tm.fonts)
	if err != nil {
		// A leaf that fails to shape (missing font asset) reports zero
		// size rather than aborting the whole cycle.
		return func(float64) flexsolver.Size { return flexsolver.Size{} }
	}
	tm.buffers[id] = buf

	return func(availableWidth float64) flexsolver.Size {
		if tm.ShapeCount != nil {
			tm.ShapeCount[id]++
		}
		buf.SetSize(float32(availableWidth))
		maxWidth, lines := buf.ShapeUntilScroll()
		return flexsolver.Size{
			Width:  float64(maxWidth),
			Height: float64(len(lines)) * lineHeightPx,
		}
	}
}

func lineHeightPxFor(props *cssom.PropertySet, fontSizePx float64) float64 {
	v, ok := props.Get("line-height")
	if !ok {
		return fontSizePx * defaultLineHeightRatio
	}
	switch v.Kind {
	case cssom.KindLengthPx:
		return v.Number
	case cssom.KindNumber:
		return v.Number * fontSizePx
	case cssom.KindPercent:
		return v.Number / 100 * fontSizePx
	case cssom.KindEm:
		return v.Number * fontSizePx
	default:
		return fontSizePx * defaultLineHeightRatio
	}
}

func keywordProp(props *cssom.PropertySet, property, fallback string) string {
	v, ok := props.Get(property)
	if !ok || v.Kind != cssom.KindKeyword || v.Keyword == "" {
		return fallback
	}
	return v.Keyword
}

func colorFor(props *cssom.PropertySet, property string) text.Color {
	v, ok := props.Get(property)
	if !ok || v.Kind != cssom.KindColor {
		return text.Color{A: 255} // opaque black, the CSS initial value for `color`.
	}
	return text.Color{R: v.Color.R, G: v.Color.G, B: v.Color.B, A: v.Color.A}
}
