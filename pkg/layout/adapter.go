// Package layout is the coupling layer between the Style Cascade Engine's
// styled tree and the Flex/Grid geometric solver in pkg/layout/flexsolver,
// treated the way spec §4.5 treats it: an external collaborator this
// package only calls Solve/Node/Size on, never reaching into its
// internals — the way original_source's compute_layout only calls
// taffy::TaffyTree methods.
package layout

import (
	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
)

// defaultFontSizePx is the root font-size fallback when no rule sets one,
// matching the common browser UA default.
const defaultFontSizePx = 16.0

// defaultLineHeightRatio approximates "normal" line-height as spec's
// scope has no font-metrics-derived line-height computation.
const defaultLineHeightRatio = 1.2

// BuildTree walks a cascaded styled tree and produces the flexsolver.Node
// tree the solver lays out, per spec §4.5's per-element mapping table.
// tm supplies the text pre-pass: exactly one text.ShapedBuffer is created
// per text node encountered here (spec: "shaping runs exactly once per
// text node per layout cycle").
func BuildTree(doc *dom.Document, styled *cssom.StyledNode, vw, vh float64, tm *TextMeasurer) *flexsolver.Node {
	if styled == nil {
		return nil
	}
	return buildNode(doc, styled, nil, vw, vh, defaultFontSizePx, defaultFontSizePx, tm)
}

func buildNode(doc *dom.Document, styled *cssom.StyledNode, parentProps *cssom.PropertySet, vw, vh, parentFontSizePx, rootFontSizePx float64, tm *TextMeasurer) *flexsolver.Node {
	n, ok := doc.Node(styled.Node)
	if !ok {
		return nil
	}

	fontSizePx := resolveFontSizePx(styled.Properties, parentProps, parentFontSizePx, rootFontSizePx)

	if n.Kind == dom.KindText {
		return &flexsolver.Node{
			Measure: tm.measureLeaf(styled.Node, styled.Properties, fontSizePx),
		}
	}

	node := &flexsolver.Node{}
	if n.Kind == dom.KindElement {
		display := displayFor(styled.Properties)
		node.Display = display
		node.Direction = directionFor(styled.Properties, display)
		node.Width = dimensionFor(styled.Properties, "width", fontSizePx, rootFontSizePx, vw, vh)
		node.Height = dimensionFor(styled.Properties, "height", fontSizePx, rootFontSizePx, vw, vh)
		node.Margin = flexsolver.Edges{
			Top:    edgePx(styled.Properties, "margin-top", fontSizePx, rootFontSizePx, vw, vh),
			Right:  edgePx(styled.Properties, "margin-right", fontSizePx, rootFontSizePx, vw, vh),
			Bottom: edgePx(styled.Properties, "margin-bottom", fontSizePx, rootFontSizePx, vw, vh),
			Left:   edgePx(styled.Properties, "margin-left", fontSizePx, rootFontSizePx, vw, vh),
		}
		node.Padding = flexsolver.Edges{
			Top:    edgePx(styled.Properties, "padding-top", fontSizePx, rootFontSizePx, vw, vh),
			Right:  edgePx(styled.Properties, "padding-right", fontSizePx, rootFontSizePx, vw, vh),
			Bottom: edgePx(styled.Properties, "padding-bottom", fontSizePx, rootFontSizePx, vw, vh),
			Left:   edgePx(styled.Properties, "padding-left", fontSizePx, rootFontSizePx, vw, vh),
		}
		node.Border = flexsolver.Edges{
			Top:    edgePx(styled.Properties, "border-top-width", fontSizePx, rootFontSizePx, vw, vh),
			Right:  edgePx(styled.Properties, "border-right-width", fontSizePx, rootFontSizePx, vw, vh),
			Bottom: edgePx(styled.Properties, "border-bottom-width", fontSizePx, rootFontSizePx, vw, vh),
			Left:   edgePx(styled.Properties, "border-left-width", fontSizePx, rootFontSizePx, vw, vh),
		}
	} else {
		// KindRoot: no declared box of its own; behaves as an auto-sized
		// column container filling the viewport (flexsolver.Solve resolves
		// an Auto root dimension against the viewport it's given).
		node.Direction = flexsolver.Column
	}

	for _, child := range styled.Children {
		if c := buildNode(doc, child, styled.Properties, vw, vh, fontSizePx, rootFontSizePx, tm); c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

// resolveFontSizePx computes this node's own font-size in pixels. When its
// PropertySet is pointer-identical to what it inherited (the cascade's
// no-own-declarations fast path), nothing about font-size changed and the
// parent's already-resolved pixel value is reused directly rather than
// re-resolving the same typed Value against a (potentially wrong) chain —
// this is what keeps em/rem compounding correct without re-walking
// ancestors: a Value is only ever resolved relative to the element that
// actually carries its own declaration for it.
func resolveFontSizePx(props, parentProps *cssom.PropertySet, parentFontSizePx, rootFontSizePx float64) float64 {
	if props == parentProps {
		return parentFontSizePx
	}
	v, ok := props.Get("font-size")
	if !ok {
		return parentFontSizePx
	}
	switch v.Kind {
	case cssom.KindLengthPx:
		return v.Number
	case cssom.KindEm, cssom.KindPercent:
		return v.Number / percentDivisor(v.Kind) * parentFontSizePx
	case cssom.KindRem:
		return v.Number * rootFontSizePx
	default:
		return parentFontSizePx
	}
}

func percentDivisor(k cssom.ValueKind) float64 {
	if k == cssom.KindPercent {
		return 100
	}
	return 1
}

func displayFor(props *cssom.PropertySet) flexsolver.Display {
	v, ok := props.Get("display")
	if !ok || v.Kind != cssom.KindKeyword {
		return flexsolver.DisplayFlex // block-stacking default
	}
	switch v.Keyword {
	case "none":
		return flexsolver.DisplayNone
	case "grid":
		return flexsolver.DisplayGrid
	case "flex", "block", "inline", "inline-block":
		// inline/inline-block map to block, a documented known limitation.
		return flexsolver.DisplayFlex
	default:
		return flexsolver.DisplayFlex
	}
}

func directionFor(props *cssom.PropertySet, display flexsolver.Display) flexsolver.Direction {
	if display != flexsolver.DisplayFlex && display != flexsolver.DisplayGrid {
		return flexsolver.Column
	}
	v, ok := props.Get("flex-direction")
	if ok && v.Kind == cssom.KindKeyword && v.Keyword == "row" {
		return flexsolver.Row
	}
	return flexsolver.Column
}

// dimensionFor resolves a width/height property to a flexsolver.Dimension.
// Percent stays symbolic (the solver resolves it against the containing
// block it actually gets at layout time); px/em/rem/vw/vh are resolved to
// pixels immediately since the Adapter already has everything they need.
func dimensionFor(props *cssom.PropertySet, property string, fontSizePx, rootFontSizePx, vw, vh float64) flexsolver.Dimension {
	v, ok := props.Get(property)
	if !ok || v.Kind == cssom.KindAuto {
		return flexsolver.Auto()
	}
	switch v.Kind {
	case cssom.KindLengthPx:
		return flexsolver.Px(v.Number)
	case cssom.KindPercent:
		return flexsolver.Percent(v.Number)
	case cssom.KindEm:
		return flexsolver.Px(v.Number * fontSizePx)
	case cssom.KindRem:
		return flexsolver.Px(v.Number * rootFontSizePx)
	case cssom.KindViewportW:
		return flexsolver.Px(v.Number / 100 * vw)
	case cssom.KindViewportH:
		return flexsolver.Px(v.Number / 100 * vh)
	default:
		return flexsolver.Auto()
	}
}

// edgePx resolves a margin/padding/border-width longhand to pixels.
// flexsolver.Edges carries plain floats (no percent/auto concept — margin
// centering via "auto" is a known limitation this minimal solver doesn't
// implement), so auto and percent both resolve to 0 here.
func edgePx(props *cssom.PropertySet, property string, fontSizePx, rootFontSizePx, vw, vh float64) float64 {
	v, ok := props.Get(property)
	if !ok {
		return 0
	}
	switch v.Kind {
	case cssom.KindLengthPx:
		return v.Number
	case cssom.KindEm:
		return v.Number * fontSizePx
	case cssom.KindRem:
		return v.Number * rootFontSizePx
	case cssom.KindViewportW:
		return v.Number / 100 * vw
	case cssom.KindViewportH:
		return v.Number / 100 * vh
	default: // Auto, Percent, Keyword, None
		return 0
	}
}
