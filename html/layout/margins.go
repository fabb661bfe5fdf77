package layout

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/utils"
)

// computeEfficientMargins computes the vertical margins of the boxes
// of the subtree after collapsing (EMargin), bottom-up.
// The adjoining margins of a box and of its first (last) in-flow child
// collapse into the margin of the box, and the margins of an empty box
// collapse through it, into its top margin.
//
// Empty blocks which have no visible effect are removed from the flow.
//
// The pass only depends on the loaded sizes, so that running it again
// gives the same result.
func (ctx *layoutContext) computeEfficientMargins(id BoxID) {
	b := ctx.box(id)
	for _, c := range b.Children {
		if ctx.box(c).Kind != bo.Text {
			ctx.computeEfficientMargins(c)
		}
	}

	b.EMargin.Top, b.EMargin.Bottom = b.Margin.Top, b.Margin.Bottom
	switch b.Kind {
	case bo.Viewport, bo.Inline, bo.Text, bo.TableCell, bo.TableRow, bo.TableRowGroup,
		bo.TableColumn, bo.TableColumnGroup:
		return
	}

	if ctx.containsInFlowBlocks(id) {
		ctx.dropEmptyBlocks(id)

		firstSeparated := false
		var mbottom Fl
		for _, c := range b.Children {
			cb := ctx.box(c)
			if !cb.Kind.IsBlock() || !cb.IsInFlow() {
				continue
			}
			boxempty := ctx.marginsAdjoin(c)
			// until a separated box is found, the top margin collapses
			if !firstSeparated && !ctx.separatedFromTop(id) {
				b.EMargin.Top = utils.MaxF(b.EMargin.Top, cb.EMargin.Top)
			}
			if boxempty {
				// margins adjoin: both top or bottom may be used
				mbottom = utils.Maxs(mbottom, cb.EMargin.Top, cb.EMargin.Bottom)
			} else {
				mbottom = cb.EMargin.Bottom
				firstSeparated = true
			}
		}
		if mbottom > b.EMargin.Bottom && !ctx.separatedFromBottom(id) {
			b.EMargin.Bottom = mbottom
		}
	}

	// an empty box collapses to a single margin
	if ctx.marginsAdjoin(id) {
		b.EMargin.Top = utils.MaxF(b.EMargin.Top, b.EMargin.Bottom)
		b.EMargin.Bottom = 0
	}
}

// dropEmptyBlocks marks as not displayed the in-flow children of `id`
// which are empty, do not clear floats, and contain no floating or
// positioned box.
func (ctx *layoutContext) dropEmptyBlocks(id BoxID) {
	for _, c := range ctx.box(id).Children {
		cb := ctx.box(c)
		if cb.Kind != bo.Block || !cb.IsInFlow() || c == ctx.tree.RootElement {
			continue
		}
		if cb.Style.Clear != pr.ClearNone || !ctx.marginsAdjoin(c) || ctx.affectsDisplay(c) {
			continue
		}
		cb.Displayed = false
	}
}

// affectsDisplay returns true if the box contains something to lay out.
func (ctx *layoutContext) affectsDisplay(id BoxID) bool {
	for _, c := range ctx.box(id).Children {
		cb := ctx.box(c)
		if !cb.Displayed {
			continue
		}
		if cb.IsOutOfFlow() {
			return true
		}
		if cb.Kind == bo.Text {
			if !ctx.tree.IsWhitespace(c) {
				return true
			}
			continue
		}
		if cb.Kind != bo.Block && cb.Kind != bo.Inline {
			return true
		}
		if ctx.affectsDisplay(c) {
			return true
		}
	}
	return false
}

// marginsAdjoin returns true if the top and bottom margins of the box
// are adjoining: nothing separates them.
func (ctx *layoutContext) marginsAdjoin(id BoxID) bool {
	b := ctx.box(id)
	if !b.Displayed {
		return true
	}
	switch b.Kind {
	case bo.Text:
		return ctx.tree.IsWhitespace(id)
	case bo.InlineReplaced, bo.BlockReplaced, bo.InlineBlock, bo.Table:
		return false
	}
	st := ctx.state(id)
	if b.Padding.Top > 0 || b.Padding.Bottom > 0 || b.Border.Top > 0 || b.Border.Bottom > 0 {
		return false
	}
	if st.minSize.Height > 0 {
		return false
	}
	if st.hset {
		return b.Content.Height == 0
	}
	for _, c := range b.Children {
		if ctx.box(c).IsOutOfFlow() {
			continue
		}
		if !ctx.marginsAdjoin(c) {
			return false
		}
	}
	return true
}

// establishesContext returns true for the boxes starting a new block
// formatting context, whose margins never collapse with their content.
func (ctx *layoutContext) establishesContext(id BoxID) bool {
	b := ctx.box(id)
	if b.IsFloating() || b.IsPositioned() || b.Style.Overflow != pr.OverflowVisible {
		return true
	}
	switch b.Kind {
	case bo.Viewport, bo.InlineBlock, bo.Table, bo.TableCell, bo.TableCaption:
		return true
	}
	return false
}

func (ctx *layoutContext) separatedFromTop(id BoxID) bool {
	b := ctx.box(id)
	return b.Border.Top > 0 || b.Padding.Top > 0 || id == ctx.tree.RootElement || ctx.establishesContext(id)
}

func (ctx *layoutContext) separatedFromBottom(id BoxID) bool {
	b := ctx.box(id)
	return b.Border.Bottom > 0 || b.Padding.Bottom > 0 || id == ctx.tree.RootElement || ctx.establishesContext(id)
}

// collapsedMarginHeight returns the height of two collapsed margins.
func collapsedMarginHeight(m1, m2 Fl) Fl {
	switch {
	case m1 >= 0 && m2 >= 0:
		return utils.MaxF(m1, m2)
	case m1 < 0 && m2 < 0:
		return utils.MinF(m1, m2)
	default:
		return m1 + m2
	}
}
