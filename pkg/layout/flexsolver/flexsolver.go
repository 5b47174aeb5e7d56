// Package flexsolver is a small, self-contained Flexbox geometry solver.
// pkg/layout treats it as an external collaborator — calling only Solve
// and the Node/Size types below — the way the rest of the engine drives
// any other vendored layout library. No Go port of a Flex/Grid solver
// (the role Rust's taffy plays in original_source) exists anywhere in
// the retrieved example pack, so this is adapted from the teacher's own
// pkg/layout/layout_flex.go (layoutFlex/createFlexItems/distributeMainAxis
// /alignCrossAxis) rather than a third-party dependency: it is scoped
// down to what spec §4.5 actually needs (no flex-grow/shrink, no
// wrapping, no order property — those are explicit teacher features
// this spec's Flex/Grid coupling never asks for).
package flexsolver

// Direction is the flex container's main axis.
type Direction int

const (
	Row Direction = iota
	Column
)

// Display selects how a node's children are laid out.
type Display int

const (
	DisplayFlex Display = iota
	DisplayGrid
	DisplayNone
)

// Size is a resolved width/height pair in layout pixels.
type Size struct {
	Width, Height float64
}

// Edges is a four-sided box edge (margin, padding, or border width), all
// already resolved to pixels by the Adapter before Solve runs.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// MeasureFunc is a leaf's intrinsic-size callback — the hook the Layout
// Coupling Layer's text pre-pass plugs a shaped text buffer into (spec
// §4.5: "reports the resulting bounding size as (max_line_width,
// num_lines*line_height)"). availableWidth is the space Solve currently
// has for this leaf; Solve calls Measure at most once per leaf per Solve
// call.
type MeasureFunc func(availableWidth float64) Size

// Node is one element (or text leaf) in the tree Solve lays out.
type Node struct {
	Display   Display
	Direction Direction
	Width     Dimension
	Height    Dimension
	Margin    Edges
	Padding   Edges
	Border    Edges
	Measure   MeasureFunc // non-nil only for leaves (text nodes)
	Children  []*Node

	// Result, populated by Solve.
	X, Y, W, H float64
}

// DimensionKind discriminates a resolved-or-not width/height value.
type DimensionKind int

const (
	DimAuto DimensionKind = iota
	DimPx
	DimPercent
)

// Dimension is a width or height as the Adapter resolved it: either a
// fixed pixel value, a percentage of the containing block, or auto.
type Dimension struct {
	Kind  DimensionKind
	Value float64 // pixels for DimPx, 0-100 for DimPercent
}

func Px(v float64) Dimension      { return Dimension{Kind: DimPx, Value: v} }
func Percent(v float64) Dimension { return Dimension{Kind: DimPercent, Value: v} }
func Auto() Dimension             { return Dimension{Kind: DimAuto} }

// Resolve reports the pixel value d resolves to against containing (the
// containing block's extent along the same axis), and whether d had a
// definite size at all (false for Auto) — exported for the Layout
// Adapter's tests to assert against without duplicating the resolution
// rules.
func (d Dimension) Resolve(containing float64) (float64, bool) {
	return d.resolve(containing)
}

func (d Dimension) resolve(containing float64) (float64, bool) {
	switch d.Kind {
	case DimPx:
		return d.Value, true
	case DimPercent:
		return containing * d.Value / 100, true
	default:
		return 0, false
	}
}

// Solve lays out root within the given viewport, filling in X/Y/W/H on
// root and every descendant. Non-flex block elements arrive with
// Direction: Column (the Adapter's block-stacking approximation), so
// this single solver body serves both display:flex and display:block.
func Solve(root *Node, viewport Size) {
	w, ok := root.Width.resolve(viewport.Width)
	if !ok {
		w = viewport.Width
	}
	h, ok := root.Height.resolve(viewport.Height)
	if !ok {
		h = viewport.Height
	}
	layoutNode(root, 0, 0, w, h)
}

func layoutNode(n *Node, x, y, w, h float64) {
	n.X, n.Y = x, y
	n.W, n.H = w, h

	if n.Display == DisplayNone {
		n.W, n.H = 0, 0
		return
	}

	contentX := x + n.Border.Left + n.Padding.Left
	contentY := y + n.Border.Top + n.Padding.Top
	contentW := w - n.Border.Left - n.Border.Right - n.Padding.Left - n.Padding.Right
	contentH := h - n.Border.Top - n.Border.Bottom - n.Padding.Top - n.Padding.Bottom
	if contentW < 0 {
		contentW = 0
	}
	if contentH < 0 {
		contentH = 0
	}

	if n.Measure != nil {
		size := n.Measure(contentW)
		n.W = size.Width + n.Border.Left + n.Border.Right + n.Padding.Left + n.Padding.Right
		n.H = size.Height + n.Border.Top + n.Border.Bottom + n.Padding.Top + n.Padding.Bottom
		return
	}

	visible := visibleChildren(n.Children)
	if len(visible) == 0 {
		return
	}

	isRow := n.Direction == Row
	mainAvailable, crossAvailable := contentW, contentH
	if !isRow {
		mainAvailable, crossAvailable = contentH, contentW
	}
	layoutMainAxis(visible, contentX, contentY, mainAvailable, crossAvailable, isRow)

	// Non-flex (block-stacking) containers grow to fit their content
	// height when the Adapter didn't give them an explicit height.
	if n.Height.Kind == DimAuto {
		n.H = measuredExtent(visible, n.Direction) + n.Border.Top + n.Border.Bottom + n.Padding.Top + n.Padding.Bottom
	}
}

func visibleChildren(children []*Node) []*Node {
	var out []*Node
	for _, c := range children {
		if c.Display != DisplayNone {
			out = append(out, c)
		}
	}
	return out
}

// layoutMainAxis places children one after another along the main axis,
// each occupying the full cross-axis extent unless it specifies its own
// size. No flex-grow/shrink distribution: every child is sized to its
// own Width/Height (or measured intrinsic size), then stacked.
func layoutMainAxis(children []*Node, x, y, mainAvailable, crossAvailable float64, isRow bool) {
	cursor := 0.0
	for _, c := range children {
		mainMarginBefore, mainMarginAfter := axisMargins(c, isRow)
		crossMarginBefore, crossMarginAfter := axisMargins(c, !isRow)

		mainDim, crossDim := c.Width, c.Height
		if !isRow {
			mainDim, crossDim = c.Height, c.Width
		}

		crossSize, crossResolved := crossDim.resolve(crossAvailable)
		if !crossResolved {
			crossSize = crossAvailable - crossMarginBefore - crossMarginAfter
			if crossSize < 0 {
				crossSize = 0
			}
		}

		childX, childY := x, y
		if isRow {
			childX += cursor + mainMarginBefore
			childY += crossMarginBefore
		} else {
			childY += cursor + mainMarginBefore
			childX += crossMarginBefore
		}

		mainSize, mainResolved := mainDim.resolve(mainAvailable)
		remaining := mainAvailable - cursor - mainMarginBefore - mainMarginAfter

		if !mainResolved && c.Measure != nil {
			// An auto-sized leaf is measured exactly once here rather
			// than deferred to layoutNode, which would otherwise
			// invoke Measure a second time to size the box (spec §8:
			// "shape is invoked exactly once per layout cycle per
			// text node"). Measure's parameter is always a horizontal
			// extent, so it comes from the main axis's remaining
			// space when this container is row-direction, or from
			// the leaf's own resolved cross width when it's
			// column-direction (block stacking) — whichever axis is
			// horizontal for this container.
			outerWidth := remaining
			if !isRow {
				outerWidth = crossSize
			}
			contentW := outerWidth - c.Border.Left - c.Border.Right - c.Padding.Left - c.Padding.Right
			if contentW < 0 {
				contentW = 0
			}
			layoutLeaf(c, childX, childY, c.Measure(contentW))
		} else {
			if !mainResolved {
				mainSize = intrinsicMainSize(remaining)
			}
			childW, childH := mainSize, crossSize
			if !isRow {
				childW, childH = crossSize, mainSize
			}
			layoutNode(c, childX, childY, childW, childH)
		}

		mainExtent := c.W
		if !isRow {
			mainExtent = c.H
		}
		cursor += mainMarginBefore + mainExtent + mainMarginAfter
	}
}

// layoutLeaf positions and sizes a leaf from a content size already
// obtained from a single Measure call, the way layoutNode's own leaf
// branch would from an available width.
func layoutLeaf(n *Node, x, y float64, size Size) {
	n.X, n.Y = x, y
	n.W = size.Width + n.Border.Left + n.Border.Right + n.Padding.Left + n.Padding.Right
	n.H = size.Height + n.Border.Top + n.Border.Bottom + n.Padding.Top + n.Padding.Bottom
}

func axisMargins(n *Node, isRow bool) (before, after float64) {
	if isRow {
		return n.Margin.Left, n.Margin.Right
	}
	return n.Margin.Top, n.Margin.Bottom
}

// intrinsicMainSize is a container-only fallback for a child with no
// explicit main-axis size: it defaults to filling the remaining
// available space (the block-stacking approximation spec §4.5
// describes for non-flex elements). Leaves are measured directly by
// layoutMainAxis instead, since Measure's available-width parameter
// depends on which axis is horizontal for the container.
func intrinsicMainSize(available float64) float64 {
	if available < 0 {
		return 0
	}
	return available
}

func measuredExtent(children []*Node, direction Direction) float64 {
	total := 0.0
	for _, c := range children {
		if direction == Row {
			if c.H+c.Margin.Top+c.Margin.Bottom > total {
				total = c.H + c.Margin.Top + c.Margin.Bottom
			}
		} else {
			total += c.H + c.Margin.Top + c.Margin.Bottom
		}
	}
	return total
}
