package layout

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/utils"
)

// initSizes loads the sizes of the subtree rooted at `id`, top-down,
// so that the containing blocks are sized before their content.
func (ctx *layoutContext) initSizes(id BoxID) {
	b := ctx.box(id)
	if b.Kind == bo.Viewport {
		b.Content = bo.Size{Width: ctx.opts.ViewportWidth, Height: ctx.opts.ViewportHeight}
		st := ctx.state(id)
		st.wset, st.hset, st.fixedWidth = true, true, true
		st.minSize, st.maxSize = bo.Size{}, bo.Size{Width: -1, Height: -1}
	} else {
		ctx.loadSizes(id, false)
	}
	for _, c := range b.Children {
		ctx.initSizes(c)
	}
	if b.Kind == bo.Table {
		for _, c := range b.Table.Columns {
			ctx.initSizes(c)
		}
	}
}

// updateSizes recomputes the sizes of the box after a change of its
// containing block, keeping the collapsed vertical margins.
func (ctx *layoutContext) updateSizes(id BoxID) {
	if ctx.box(id).Kind == bo.Viewport {
		return
	}
	ctx.loadSizes(id, true)
}

// containingSize returns the dimensions used to resolve the percentages
// of the box, and whether the height of the containing block is fixed.
// Positioned boxes use the padding box of their containing block.
func (ctx *layoutContext) containingSize(id BoxID) (w, h Fl, fixedHeight bool) {
	b := ctx.box(id)
	if b.Cblock == bo.NoBox {
		return ctx.opts.ViewportWidth, ctx.opts.ViewportHeight, true
	}
	cb := ctx.box(b.Cblock)
	w, h = cb.Content.Width, cb.Content.Height
	if b.IsPositioned() {
		w += cb.Padding.Horizontal()
		h += cb.Padding.Vertical()
	}
	cst := ctx.state(b.Cblock)
	return w, h, cst.hset || cb.Kind == bo.Viewport
}

// loadSizes resolves the edges and the dimensions of the box from its style.
// In update mode, the computed vertical margins are kept, as well as the
// content dimensions which are not defined by the containing block.
func (ctx *layoutContext) loadSizes(id BoxID, update bool) {
	b := ctx.box(id)
	switch b.Kind {
	case bo.Text, bo.TableColumn, bo.TableColumnGroup:
		return
	}
	st := ctx.state(id)
	style := b.Style
	dec := ctx.decoder(id)
	contw, conth, cbFixedHeight := ctx.containingSize(id)

	b.Border = style.BorderWidth
	b.Padding = dec.Edges(style.Padding, contw)

	// offsets of positioned boxes
	if style.Position != pr.PositionStatic {
		st.topset = !style.Offsets.Top.IsAuto()
		st.rightset = !style.Offsets.Right.IsAuto()
		st.bottomset = !style.Offsets.Bottom.IsAuto()
		st.leftset = !style.Offsets.Left.IsAuto()
		b.Coords = pr.LengthSet{
			Top:    dec.Length(style.Offsets.Top, 0, conth),
			Right:  dec.Length(style.Offsets.Right, 0, contw),
			Bottom: dec.Length(style.Offsets.Bottom, 0, conth),
			Left:   dec.Length(style.Offsets.Left, 0, contw),
		}
	}

	// min and max sizes
	st.minSize.Width = dec.Length(style.MinWidth, 0, contw)
	st.maxSize.Width = -1
	if !style.MaxWidth.IsNone() {
		st.maxSize.Width = dec.Length(style.MaxWidth, -1, contw)
	}
	st.minSize.Height, st.maxSize.Height = 0, -1
	if !style.MinHeight.IsPercentage() || cbFixedHeight {
		st.minSize.Height = dec.Length(style.MinHeight, 0, conth)
	}
	if !style.MaxHeight.IsNone() && (!style.MaxHeight.IsPercentage() || cbFixedHeight) {
		st.maxSize.Height = dec.Length(style.MaxHeight, -1, conth)
	}
	if st.maxSize.Width != -1 && st.maxSize.Width < st.minSize.Width {
		st.maxSize.Width = st.minSize.Width
	}
	if st.maxSize.Height != -1 && st.maxSize.Height < st.minSize.Height {
		st.maxSize.Height = st.minSize.Height
	}

	if b.Kind.IsReplaced() {
		ctx.loadReplacedSizes(id, contw, conth, cbFixedHeight)
	} else {
		width := ctx.declaredWidth(id)
		ctx.computeWidths(id, width, true, contw, update)
		if st.maxSize.Width != -1 && b.Content.Width > st.maxSize.Width {
			ctx.computeWidths(id, pr.PxDim(st.maxSize.Width), false, contw, update)
		}
		if b.Content.Width < st.minSize.Width {
			ctx.computeWidths(id, pr.PxDim(st.minSize.Width), false, contw, update)
		}

		height := style.Height
		if height.IsPercentage() && !cbFixedHeight {
			height = pr.AutoDim
		}
		ctx.computeHeights(id, height, true, contw, conth, update)
		if st.maxSize.Height != -1 && b.Content.Height > st.maxSize.Height {
			ctx.computeHeights(id, pr.PxDim(st.maxSize.Height), false, contw, conth, update)
		}
		if b.Content.Height < st.minSize.Height {
			ctx.computeHeights(id, pr.PxDim(st.minSize.Height), false, contw, conth, update)
		}
	}

	if b.Kind.IsInlineLevel() && b.Kind != bo.InlineBlock && b.Kind != bo.InlineReplaced {
		// vertical margins of inline boxes do not apply
		b.Margin.Top, b.Margin.Bottom = 0, 0
	}

	switch b.Kind {
	case bo.InlineBlock, bo.Table:
		st.fixedWidth = st.wset
	default:
		st.fixedWidth = st.wset || b.IsInFlow() ||
			(b.IsPositioned() && !style.Margin.Left.IsAuto() && !style.Margin.Right.IsAuto() && st.leftset && st.rightset)
	}

	if update {
		b.EMargin.Left, b.EMargin.Right = b.Margin.Left, b.Margin.Right
	} else {
		b.EMargin = b.Margin
	}
}

// declaredWidth returns the specified width, where the HTML width
// attribute of tables, cells and columns is used as a fallback.
func (ctx *layoutContext) declaredWidth(id BoxID) pr.Dimension {
	b := ctx.box(id)
	width := b.Style.Width
	if width.IsAuto() && b.Element != nil && b.Pseudo == "" && hasWidthAttr(b.Kind) {
		if d, ok := pr.ParseDimension(b.Element.Get("width"), true); ok && d.IsLength() {
			if d.Unit == pr.Scalar {
				d.Unit = pr.Px
			}
			width = d
		}
	}
	return width
}

func hasWidthAttr(k bo.Kind) bool {
	switch k {
	case bo.Table, bo.TableCell, bo.TableColumn, bo.TableColumnGroup:
		return true
	}
	return false
}

func (ctx *layoutContext) computeWidths(id BoxID, width pr.Dimension, exact bool, contw Fl, update bool) {
	if ctx.box(id).IsPositioned() {
		ctx.computeWidthsAbsolute(id, width, exact, contw, update)
	} else {
		ctx.computeWidthsInFlow(id, width, exact, contw, update)
	}
}

func (ctx *layoutContext) computeHeights(id BoxID, height pr.Dimension, exact bool, contw, conth Fl, update bool) {
	if ctx.box(id).IsPositioned() {
		ctx.computeHeightsAbsolute(id, height, exact, contw, conth, update)
	} else {
		ctx.computeHeightsInFlow(id, height, exact, contw, conth, update)
	}
}

// canIncreaseWidth returns true for boxes whose width may grow beyond
// the available space (table cells).
func (ctx *layoutContext) canIncreaseWidth(id BoxID) bool {
	return id != bo.NoBox && ctx.box(id).Kind == bo.TableCell
}

func (ctx *layoutContext) computeWidthsInFlow(id BoxID, width pr.Dimension, exact bool, contw Fl, update bool) {
	b, st := ctx.box(id), ctx.state(id)
	style := b.Style
	dec := ctx.decoder(id)
	contw += st.widthAdjust

	mleftauto, mrightauto := style.Margin.Left.IsAuto(), style.Margin.Right.IsAuto()
	b.Margin.Left = dec.Length(style.Margin.Left, 0, contw)
	b.Margin.Right = dec.Length(style.Margin.Right, 0, contw)
	deco := b.Border.Horizontal() + b.Padding.Horizontal()
	blockInFlow := b.Kind.IsBlock() && b.IsInFlow()

	if width.IsAuto() {
		if exact {
			st.wset, st.wrelative = false, false
		}
		if b.Kind.IsBlock() && (!update || b.IsInFlow()) {
			b.Content.Width = utils.MaxF(0, contw-b.Margin.Horizontal()-deco)
		}
	} else {
		if exact {
			st.wset = true
			st.wrelative = width.IsPercentage()
		}
		b.Content.Width = dec.Length(width, 0, contw)
		if blockInFlow {
			rest := contw - b.Content.Width - deco
			switch {
			case mleftauto && mrightauto:
				if rest >= 0 {
					b.Margin.Left = rest / 2
					b.Margin.Right = rest - b.Margin.Left
				} else {
					b.Margin.Left = 0
					b.Margin.Right = rest
				}
			case mleftauto:
				b.Margin.Left = rest - b.Margin.Right
			default: // over constrained: the right margin is adjusted
				b.Margin.Right = rest - b.Margin.Left
				if b.Margin.Right < 0 && ctx.canIncreaseWidth(b.Cblock) {
					b.Margin.Right = 0
				}
			}
		}
	}
	st.declMargin.Left, st.declMargin.Right = b.Margin.Left, b.Margin.Right
}

func (ctx *layoutContext) computeWidthsAbsolute(id BoxID, width pr.Dimension, exact bool, contw Fl, update bool) {
	b, st := ctx.box(id), ctx.state(id)
	style := b.Style
	dec := ctx.decoder(id)

	auto := width.IsAuto()
	mleftauto, mrightauto := style.Margin.Left.IsAuto(), style.Margin.Right.IsAuto()
	b.Margin.Left = dec.Length(style.Margin.Left, 0, contw)
	b.Margin.Right = dec.Length(style.Margin.Right, 0, contw)
	deco := b.Border.Horizontal() + b.Padding.Horizontal()

	if auto {
		if exact {
			st.wset, st.wrelative = false, false
		}
		if !update {
			b.Content.Width = utils.MaxF(0, contw-b.Margin.Horizontal()-deco)
		}
	} else {
		if exact {
			st.wset = true
			st.wrelative = width.IsPercentage()
		}
		b.Content.Width = dec.Length(width, 0, contw)
	}

	// auto margins are only resolved when the width and both offsets are set
	if !auto && st.leftset && st.rightset {
		rest := contw - b.Coords.Left - b.Coords.Right - b.Content.Width - deco
		switch {
		case mleftauto && mrightauto:
			b.Margin.Left = rest / 2
			b.Margin.Right = rest - b.Margin.Left
		case mleftauto:
			b.Margin.Left = rest - b.Margin.Right
		case mrightauto:
			b.Margin.Right = rest - b.Margin.Left
		}
	}

	total := func() Fl { return b.Margin.Horizontal() + deco + b.Content.Width }
	switch {
	case !st.leftset && !st.rightset:
		st.leftstatic = true
		b.Coords.Left = 0
		b.Coords.Right = contw - b.Coords.Left - total()
	case !st.leftset:
		st.leftstatic = false
		b.Coords.Left = contw - b.Coords.Right - total()
	case !st.rightset:
		st.leftstatic = false
		b.Coords.Right = contw - b.Coords.Left - total()
	default:
		st.leftstatic = false
		if auto {
			b.Content.Width = utils.MaxF(0, contw-b.Coords.Left-b.Coords.Right-b.Margin.Horizontal()-deco)
		} else {
			b.Coords.Right = contw - b.Coords.Left - total()
		}
	}
	st.declMargin.Left, st.declMargin.Right = b.Margin.Left, b.Margin.Right
}

func (ctx *layoutContext) computeHeightsInFlow(id BoxID, height pr.Dimension, exact bool, contw, conth Fl, update bool) {
	b, st := ctx.box(id), ctx.state(id)
	dec := ctx.decoder(id)
	if height.IsAuto() {
		if exact {
			st.hset = false
		}
		if !update {
			b.Content.Height = 0
		}
	} else {
		if exact {
			st.hset = true
		}
		b.Content.Height = dec.Length(height, 0, conth)
	}
	// vertical margins are relative to the width of the containing block
	b.Margin.Top = dec.Length(b.Style.Margin.Top, 0, contw)
	b.Margin.Bottom = dec.Length(b.Style.Margin.Bottom, 0, contw)
	st.declMargin.Top, st.declMargin.Bottom = b.Margin.Top, b.Margin.Bottom
}

func (ctx *layoutContext) computeHeightsAbsolute(id BoxID, height pr.Dimension, exact bool, contw, conth Fl, update bool) {
	b, st := ctx.box(id), ctx.state(id)
	style := b.Style
	dec := ctx.decoder(id)

	auto := height.IsAuto()
	mtopauto, mbottomauto := style.Margin.Top.IsAuto(), style.Margin.Bottom.IsAuto()
	b.Margin.Top = dec.Length(style.Margin.Top, 0, contw)
	b.Margin.Bottom = dec.Length(style.Margin.Bottom, 0, contw)
	deco := b.Border.Vertical() + b.Padding.Vertical()

	if auto {
		if exact {
			st.hset = false
		}
		if !update {
			b.Content.Height = 0
		}
	} else {
		if exact {
			st.hset = true
		}
		b.Content.Height = dec.Length(height, 0, conth)
	}

	if !auto && st.topset && st.bottomset {
		rest := conth - b.Coords.Top - b.Coords.Bottom - b.Content.Height - deco
		switch {
		case mtopauto && mbottomauto:
			b.Margin.Top = rest / 2
			b.Margin.Bottom = rest - b.Margin.Top
		case mtopauto:
			b.Margin.Top = rest - b.Margin.Bottom
		case mbottomauto:
			b.Margin.Bottom = rest - b.Margin.Top
		}
	}

	margin := b.Margin
	if update {
		margin = b.EMargin
	}
	total := func() Fl { return margin.Vertical() + deco + b.Content.Height }
	switch {
	case !st.topset && !st.bottomset:
		st.topstatic = true
		b.Coords.Top = 0
		b.Coords.Bottom = conth - b.Coords.Top - total()
	case !st.topset:
		st.topstatic = false
		b.Coords.Top = conth - b.Coords.Bottom - total()
	case !st.bottomset:
		st.topstatic = false
		b.Coords.Bottom = conth - b.Coords.Top - total()
	default:
		st.topstatic = false
		if auto {
			b.Content.Height = utils.MaxF(0, conth-b.Coords.Top-b.Coords.Bottom-margin.Vertical()-deco)
			if exact {
				st.hset = true
			}
		} else {
			b.Coords.Bottom = conth - b.Coords.Top - total()
		}
	}
	st.declMargin.Top, st.declMargin.Bottom = b.Margin.Top, b.Margin.Bottom
}

// setContentWidth applies the min and max widths.
func (ctx *layoutContext) setContentWidth(id BoxID, w Fl) {
	b, st := ctx.box(id), ctx.state(id)
	if st.maxSize.Width != -1 && w > st.maxSize.Width {
		w = st.maxSize.Width
	}
	if w < st.minSize.Width {
		w = st.minSize.Width
	}
	b.Content.Width = w
}

// setContentHeight applies the min and max heights.
func (ctx *layoutContext) setContentHeight(id BoxID, h Fl) {
	b, st := ctx.box(id), ctx.state(id)
	if st.maxSize.Height != -1 && h > st.maxSize.Height {
		h = st.maxSize.Height
	}
	if h < st.minSize.Height {
		h = st.minSize.Height
	}
	b.Content.Height = h
}

// totalWidth returns the width of the margin box.
func (ctx *layoutContext) totalWidth(id BoxID) Fl {
	b := ctx.box(id)
	return b.EMargin.Horizontal() + b.Border.Horizontal() + b.Padding.Horizontal() + b.Content.Width
}

// totalHeight returns the height of the margin box. The margins of
// an empty block collapse through it; the vertical margins of inline
// boxes are ignored.
func (ctx *layoutContext) totalHeight(id BoxID) Fl {
	b := ctx.box(id)
	inner := b.Border.Vertical() + b.Padding.Vertical() + b.Content.Height
	if b.Kind == bo.Inline {
		return inner
	}
	if inner == 0 {
		return utils.MaxF(b.EMargin.Top, b.EMargin.Bottom)
	}
	return b.EMargin.Vertical() + inner
}

// setSize updates the dimensions of the bounds from the content and edges.
func (ctx *layoutContext) setSize(id BoxID) {
	b := ctx.box(id)
	b.Bounds.Width = ctx.totalWidth(id)
	b.Bounds.Height = ctx.totalHeight(id)
}

// availableContentWidth returns the width available for the content,
// given the available width of the box.
func (ctx *layoutContext) availableContentWidth(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	w := st.availWidth - b.EMargin.Horizontal() - b.Border.Horizontal() - b.Padding.Horizontal()
	if st.maxSize.Width != -1 && w > st.maxSize.Width {
		w = st.maxSize.Width
	}
	return w
}

// minimalContentWidthLimit is the lower bound of the content width of a
// box whose width is computed from its content.
func (ctx *layoutContext) minimalContentWidthLimit(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	switch {
	case st.wset:
		return b.Content.Width
	case st.minSize.Width > 0:
		return st.minSize.Width
	default:
		return 0
	}
}

// clampWidth applies the min and max widths of the box.
func (st *boxState) clampWidth(w Fl) Fl {
	if st.maxSize.Width != -1 && w > st.maxSize.Width {
		w = st.maxSize.Width
	}
	if w < st.minSize.Width {
		w = st.minSize.Width
	}
	return w
}

// decorations returns the horizontal margins, borders and paddings.
func (ctx *layoutContext) decorations(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	return st.declMargin.Horizontal() + b.Border.Horizontal() + b.Padding.Horizontal()
}

// minimalWidth returns the narrowest width of the margin box, which is
// the width of its widest unbreakable content.
func (ctx *layoutContext) minimalWidth(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	if !b.Displayed {
		return 0
	}
	switch b.Kind {
	case bo.Text:
		return ctx.textMinimalWidth(id)
	case bo.Inline:
		return ctx.inlineMinimalWidth(b.Flow, b.Style) + ctx.decorations(id)
	case bo.InlineReplaced, bo.BlockReplaced:
		return ctx.totalWidth(id)
	case bo.Table:
		return ctx.tableMinimalWidth(id)
	}
	var w Fl
	if st.wset && !st.wrelative {
		w = b.Content.Width
	} else {
		w = ctx.minimalContentWidth(id)
	}
	return st.clampWidth(w) + ctx.decorations(id)
}

// maximalWidth returns the width of the margin box when no line
// is broken.
func (ctx *layoutContext) maximalWidth(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	if !b.Displayed {
		return 0
	}
	switch b.Kind {
	case bo.Text:
		return ctx.textMaximalWidth(id)
	case bo.Inline:
		return ctx.inlineMaximalWidth(b.Flow, b.Style) + ctx.decorations(id)
	case bo.InlineReplaced, bo.BlockReplaced:
		return ctx.totalWidth(id)
	case bo.Table:
		return ctx.tableMaximalWidth(id)
	}
	var w Fl
	if st.wset && !st.wrelative {
		w = b.Content.Width
	} else {
		w = ctx.maximalContentWidth(id)
	}
	return st.clampWidth(w) + ctx.decorations(id)
}

// minimalDecorationWidth returns the minimal width of the box, not
// considering its content.
func (ctx *layoutContext) minimalDecorationWidth(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	var w Fl
	if st.wset {
		w = b.Content.Width
	}
	return st.clampWidth(w) + ctx.decorations(id)
}

func (ctx *layoutContext) containsInFlowBlocks(id BoxID) bool {
	for _, c := range ctx.box(id).Flow {
		if cb := ctx.box(c); cb.Kind.IsBlock() && !cb.IsOutOfFlow() {
			return true
		}
	}
	return false
}

func (ctx *layoutContext) minimalContentWidth(id BoxID) Fl {
	b := ctx.box(id)
	if !ctx.containsInFlowBlocks(id) {
		return ctx.inlineMinimalWidth(b.Flow, b.Style)
	}
	var max Fl
	for _, c := range b.Flow {
		cb := ctx.box(c)
		if !cb.Displayed || cb.IsPositioned() {
			continue
		}
		max = utils.MaxF(max, ctx.minimalWidth(c))
	}
	return max
}

func (ctx *layoutContext) maximalContentWidth(id BoxID) Fl {
	b := ctx.box(id)
	if !ctx.containsInFlowBlocks(id) {
		return ctx.inlineMaximalWidth(b.Flow, b.Style)
	}
	var max, sum Fl
	for _, c := range b.Flow {
		cb := ctx.box(c)
		if !cb.Displayed || cb.IsPositioned() {
			continue
		}
		w := ctx.maximalWidth(c)
		if cb.IsFloating() {
			sum += w
		} else {
			max = utils.Maxs(max, w, sum)
			sum = 0
		}
	}
	return utils.MaxF(max, sum)
}

// inlineMinimalWidth returns the widest sequence of inline content which
// cannot be broken. Floats inside inline content must fit as well.
func (ctx *layoutContext) inlineMinimalWidth(children []BoxID, style *pr.Style) Fl {
	wraps := style.WhiteSpace.AllowsWrapping()
	var max, sum Fl
	for _, c := range children {
		cb := ctx.box(c)
		if !cb.Displayed || cb.IsPositioned() {
			continue
		}
		if cb.IsFloating() {
			max = utils.MaxF(max, ctx.minimalWidth(c))
			continue
		}
		if wraps && ctx.canSplitBefore(c) {
			max, sum = utils.MaxF(max, sum), 0
		}
		if cb.Kind == bo.Text && wraps && ctx.textContainsBreak(c) {
			// the first and last words join the neighbours
			first, last := ctx.textEdgeWords(c)
			max = utils.Maxs(max, sum+first, ctx.textMinimalWidth(c))
			sum = last
		} else {
			sum += ctx.minimalWidth(c)
		}
		if wraps && ctx.canSplitAfter(c) {
			max, sum = utils.MaxF(max, sum), 0
		}
	}
	return utils.MaxF(max, sum)
}

// inlineMaximalWidth returns the width of the widest line of the content,
// when only the preserved line breaks are used.
func (ctx *layoutContext) inlineMaximalWidth(children []BoxID, style *pr.Style) Fl {
	var max, sum Fl
	for _, c := range children {
		cb := ctx.box(c)
		if !cb.Displayed || cb.IsPositioned() {
			continue
		}
		if cb.Kind == bo.Text && !cb.Style.WhiteSpace.CollapsesLines() {
			lines := ctx.textLines(c)
			if len(lines) > 1 {
				f := ctx.state(c).font
				max = utils.MaxF(max, sum+ctx.fonts.Width(f, lines[0]))
				for _, l := range lines[1 : len(lines)-1] {
					max = utils.MaxF(max, ctx.fonts.Width(f, l))
				}
				sum = ctx.fonts.Width(f, lines[len(lines)-1])
				continue
			}
		}
		sum += ctx.maximalWidth(c)
	}
	return utils.MaxF(max, sum)
}
