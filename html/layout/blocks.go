package layout

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/utils"
)

// Layout of block-level and block-container boxes.

// blockStatus is the state of the layout of the children of a block.
type blockStatus struct {
	inlineWidth Fl // width of the inline content preceding a float on its line
	y           Fl // current position
	maxw        Fl // width of the widest box found
	maxh        Fl // height of the highest box on the line

	firstSeparated, lastSeparated BoxID // first and last boxes separating the margins
	lastInFlow                    BoxID // last in-flow box
}

func newBlockStatus() blockStatus {
	return blockStatus{firstSeparated: bo.NoBox, lastSeparated: bo.NoBox, lastInFlow: bo.NoBox}
}

// doLayout lays out the box `id` in the available width `availw`.
// It returns false if nothing could be placed. If `force` is true,
// at least some content is placed even if it overflows. `linestart`
// is true for inline boxes placed at the start of a line.
func (ctx *layoutContext) doLayout(id BoxID, availw Fl, force, linestart bool) bool {
	b := ctx.box(id)
	if !b.Displayed {
		ctx.hide(id)
		return true
	}
	if traceMode {
		traceLogger.Dump(b.String())
	}
	switch b.Kind {
	case bo.Text:
		return ctx.layoutText(id, availw, force, linestart)
	case bo.Inline:
		return ctx.layoutInlineBox(id, availw, force, linestart)
	case bo.InlineReplaced, bo.BlockReplaced:
		return ctx.layoutReplaced(id, availw, force)
	case bo.InlineBlock:
		ctx.ownFloats(id)
		ctx.layoutBlock(id, availw)
		ctx.state(id).baseline = ctx.inlineBlockBaseline(id)
		return force || b.Bounds.Width <= availw
	case bo.Table:
		ctx.layoutTable(id, availw)
		return true
	default:
		ctx.layoutBlock(id, availw)
		return true
	}
}

// hide gives an empty geometry to a box which is not displayed.
func (ctx *layoutContext) hide(id BoxID) {
	b := ctx.box(id)
	b.Content = bo.Size{}
	b.Bounds.Width, b.Bounds.Height = 0, 0
	ctx.state(id).collapsed = true
}

// inlineBlockBaseline returns the baseline of an inline-block: the
// baseline of its last line, or its bottom margin edge.
func (ctx *layoutContext) inlineBlockBaseline(id BoxID) Fl {
	b := ctx.box(id)
	if b.Style.Overflow == pr.OverflowVisible {
		if y, ok := ctx.lineBaseline(id, true); ok {
			return utils.MinF(b.ContentY()+y, b.Bounds.Height)
		}
	}
	return b.Bounds.Height
}

// layoutBlock lays out a block container and its content.
func (ctx *layoutContext) layoutBlock(id BoxID, availw Fl) {
	b, st := ctx.box(id), ctx.state(id)
	if !b.Displayed {
		ctx.hide(id)
		return
	}
	if b.Kind != bo.TableCell {
		ctx.updateSizes(id)
	}
	if st.fleft == nil {
		ctx.ownFloats(id)
	}
	ctx.clearSplitted(id)

	if !st.fixedWidth { // shrink-to-fit
		min := utils.MaxF(ctx.minimalContentWidthLimit(id), ctx.minimalContentWidth(id))
		max := ctx.maximalContentWidth(id)
		availcont := availw - b.EMargin.Horizontal() - b.Border.Horizontal() - b.Padding.Horizontal()
		pref := utils.MaxF(utils.MinF(utils.MaxF(min, availcont), max), min)
		ctx.setContentWidth(id, pref)
	}
	st.availWidth = availw
	st.firstLine, st.lastLine = nil, nil

	if ctx.containsInFlowBlocks(id) {
		ctx.layoutBlocks(id)
	} else {
		ctx.layoutInline(id)
	}

	if b.Kind == bo.ListItem && b.ListItem != nil {
		if y, ok := ctx.lineBaseline(id, false); ok {
			b.ListItem.Baseline = y
		} else {
			b.ListItem.Baseline = st.metrics.Ascent
		}
	}
}

// clearSplitted removes the remainders of split boxes created by a
// previous layout, and restores the content of the split boxes.
func (ctx *layoutContext) clearSplitted(id BoxID) {
	b := ctx.box(id)
	flow := b.Flow[:0]
	for _, c := range b.Flow {
		if ctx.box(c).Splitted {
			continue
		}
		flow = append(flow, c)
		ctx.restoreFlow(c)
	}
	b.Flow = flow
}

// layoutBlocks lays out the block children of a box, collapsing
// their vertical margins.
func (ctx *layoutContext) layoutBlocks(id BoxID) {
	b, st := ctx.box(id), ctx.state(id)
	wlimit := ctx.availableContentWidth(id)
	stat := newBlockStatus()
	var mtop, mbottom Fl // accumulated margins
	for _, c := range b.Flow {
		cb := ctx.box(c)
		if !cb.Displayed {
			ctx.hide(c)
			continue
		}
		nexty := stat.y
		clearance := ctx.clearY(id, c, &stat)
		switch {
		case cb.IsInFlow():
			boxempty := ctx.marginsAdjoin(c)
			// the border edge of the parent or of the last placed box
			borderY := stat.y
			if stat.lastInFlow != bo.NoBox {
				borderY -= ctx.box(stat.lastInFlow).EMargin.Bottom
			}
			mtop = utils.MaxF(mtop, cb.EMargin.Top)
			if stat.firstSeparated == bo.NoBox && ctx.separatedFromTop(id) {
				borderY += mtop
			}
			if stat.firstSeparated != bo.NoBox {
				if clearance {
					borderY += mtop + mbottom
				} else {
					borderY += collapsedMarginHeight(mtop, mbottom)
				}
			}
			stat.lastInFlow = c
			if !boxempty {
				if stat.firstSeparated == bo.NoBox {
					stat.firstSeparated = c
				}
				stat.lastSeparated = c
				mtop = 0
				mbottom = cb.EMargin.Bottom
			}
			if stat.lastSeparated != bo.NoBox {
				mbottom = utils.MaxF(mbottom, cb.EMargin.Bottom)
			}
			stat.y = borderY - cb.EMargin.Top
			ctx.layoutBlockInFlow(id, c, wlimit, &stat)
			nexty = stat.y
		case cb.IsFloating():
			ctx.layoutBlockFloating(id, c, wlimit, &stat)
		default:
			ctx.layoutBlockPositioned(id, c)
		}
		stat.y = nexty
	}

	if !ctx.separatedFromBottom(id) {
		stat.y -= mbottom
	}
	if !st.hset {
		if ctx.encloseFloats(id) {
			if mfy := ctx.floatHeight(id) - st.floatY; mfy > stat.y {
				stat.y = mfy
			}
		}
		ctx.setContentHeight(id, stat.y)
		ctx.updatePositionedSizes(id)
	}
	ctx.setSize(id)
}

// clearY moves the position below the floats cleared by `c`, returning
// true if the position changed.
func (ctx *layoutContext) clearY(id, c BoxID, stat *blockStatus) bool {
	st := ctx.state(id)
	var ny Fl
	switch ctx.box(c).Style.Clear {
	case pr.ClearLeft:
		ny = st.fleft.maxY() - st.floatY
	case pr.ClearRight:
		ny = st.fright.maxY() - st.floatY
	case pr.ClearBoth:
		ny = utils.MaxF(st.fleft.maxY(), st.fright.maxY()) - st.floatY
	default:
		return false
	}
	if stat.y < ny {
		stat.y = ny
		return true
	}
	return false
}

// encloseFloats returns true if the height of the box includes
// the floats it contains.
func (ctx *layoutContext) encloseFloats(id BoxID) bool {
	b := ctx.box(id)
	if b.Style.Overflow != pr.OverflowVisible || b.IsOutOfFlow() {
		return true
	}
	switch b.Kind {
	case bo.Viewport, bo.InlineBlock, bo.TableCell, bo.TableCaption:
		return true
	}
	return false
}

// mayOverlapFloats returns true for the in-flow boxes whose border box
// may overlap the floats of the formatting context.
func (ctx *layoutContext) mayOverlapFloats(id BoxID) bool {
	b := ctx.box(id)
	if b.Style.Overflow != pr.OverflowVisible {
		return false
	}
	return b.Kind != bo.Table && b.Kind != bo.BlockReplaced
}

// relativeOffset returns the offset of a relatively positioned box.
func (ctx *layoutContext) relativeOffset(id BoxID) (dx, dy Fl) {
	b, st := ctx.box(id), ctx.state(id)
	if b.Style.Position != pr.PositionRelative {
		return 0, 0
	}
	if st.leftset {
		dx = b.Coords.Left
	} else if st.rightset {
		dx = -b.Coords.Right
	}
	if st.topset {
		dy = b.Coords.Top
	} else if st.bottomset {
		dy = -b.Coords.Bottom
	}
	return dx, dy
}

func (ctx *layoutContext) layoutBlockInFlow(id, c BoxID, wlimit Fl, stat *blockStatus) {
	if !ctx.mayOverlapFloats(c) {
		ctx.layoutBlockInFlowAvoidFloats(id, c, wlimit, stat)
		return
	}
	st, cb, cst := ctx.state(id), ctx.box(c), ctx.state(c)
	cst.widthAdjust = 0

	// position of the content box of the child in the float lists
	xl := st.floatXl + cb.EMargin.Left + cb.Border.Left + cb.Padding.Left
	xr := st.floatXr + cb.EMargin.Right + cb.Border.Right + cb.Padding.Right
	fy := st.floatY + cb.EMargin.Top + cb.Border.Top + cb.Padding.Top
	dx, dy := ctx.relativeOffset(c)
	xl += dx
	xr -= dx
	fy += dy
	ctx.setFloats(c, st.fleft, st.fright, utils.MaxF(0, xl), utils.MaxF(0, xr), stat.y+fy)

	cb.Bounds.X, cb.Bounds.Y = 0, stat.y
	ctx.doLayout(c, wlimit, true, true)
	stat.y += cb.Bounds.Height
	stat.maxw = utils.MaxF(stat.maxw, cb.Bounds.Width)
}

// layoutBlockInFlowAvoidFloats places a box establishing its own
// formatting context next to the floats, or below them when it
// does not fit.
func (ctx *layoutContext) layoutBlockInFlowAvoidFloats(id, c BoxID, wlimit Fl, stat *blockStatus) {
	st, cb, cst := ctx.state(id), ctx.box(c), ctx.state(c)
	minw := ctx.minimalDecorationWidth(c)
	limits := func(fy Fl) (Fl, Fl) {
		return utils.MaxF(0, st.fleft.width(fy)-st.floatXl), utils.MaxF(0, st.fright.width(fy)-st.floatXr)
	}
	starty := stat.y
	fy := stat.y + st.floatY

	place := func(flx, frx Fl) {
		stat.y = fy - st.floatY
		if stat.y > starty { // the top margin is not needed below the floats
			stat.y = utils.MaxF(starty, stat.y-cb.EMargin.Top)
		}
		ctx.ownFloats(c)
		cb.Bounds.X, cb.Bounds.Y = flx, stat.y
		cst.widthAdjust = -flx - frx
		ctx.doLayout(c, wlimit-flx-frx, true, true)
	}

	for {
		flx, frx := limits(fy)
		// skip the positions too narrow for the box
		for (flx > 0 || frx > 0) && minw > wlimit-flx-frx {
			if ny := nextFloatY(st.fleft, st.fright, fy); ny != -1 {
				fy = ny
			} else {
				fy += utils.Maxs(stat.maxh, st.lineHeight, 1)
			}
			flx, frx = limits(fy)
		}
		place(flx, frx)

		// the floats below may narrow the space
		flx2, frx2 := ctx.computeFloatLimits(id, fy, fy+cb.Bounds.Height, flx, frx)
		if flx2 == flx && frx2 == frx {
			break
		}
		if minw <= wlimit-flx2-frx2 {
			place(flx2, frx2)
			break
		}
		ny := nextFloatY(st.fleft, st.fright, fy)
		if ny == -1 {
			break
		}
		fy = ny
	}

	stat.y += cb.Bounds.Height
	stat.maxw = utils.MaxF(stat.maxw, cb.Bounds.Width)
}

// layoutBlockFloating places a floating box as high as possible
// on its side, below the previous floats.
func (ctx *layoutContext) layoutBlockFloating(id, c BoxID, wlimit Fl, stat *blockStatus) {
	st, cb, cst := ctx.state(id), ctx.box(c), ctx.state(c)
	ctx.ownFloats(c)
	ctx.doLayout(c, wlimit, true, true)

	f, of := st.fleft, st.fright // lists of this side and of the opposite side
	floatX, oFloatX := st.floatXl, st.floatXr
	if cb.Style.Float == pr.FloatRight {
		f, of = of, f
		floatX, oFloatX = oFloatX, floatX
	}
	sideWidth := func(l *floatList, fy, offset Fl) Fl {
		x := l.width(fy)
		if x < offset {
			x = offset // stay in the containing box if it is narrower
		}
		if x == 0 && offset < 0 {
			x = offset
		}
		return x
	}

	fy := utils.MaxF(stat.y+st.floatY, f.lastY()) // not above the last float
	fx, ofx := sideWidth(f, fy, floatX), sideWidth(of, fy, oFloatX)
	for (fx > floatX || ofx > oFloatX || stat.inlineWidth > 0) &&
		stat.inlineWidth+fx-floatX+ofx-oFloatX+cb.Bounds.Width > wlimit {
		if ny := nextFloatY(f, of, fy); ny != -1 {
			fy = ny
		} else {
			fy += utils.Maxs(stat.maxh, st.lineHeight, 1)
		}
		fx, ofx = sideWidth(f, fy, floatX), sideWidth(of, fy, oFloatX)
		stat.inlineWidth = 0 // the current line is not considered below
	}

	cst.floatX = fx
	cb.Bounds.X, cb.Bounds.Y = fx, fy
	f.add(c)

	floatw := ctx.maxFloatWidth(id, fy, fy+cb.Bounds.Height)
	stat.maxw = utils.MinF(utils.MaxF(stat.maxw, floatw), wlimit)
}

// layoutBlockPositioned lays out an absolutely positioned box,
// in its own formatting context. Its position is computed by
// the positioning pass.
func (ctx *layoutContext) layoutBlockPositioned(id, c BoxID) {
	cst := ctx.state(c)
	cb := ctx.box(c)
	wlimit, _, _ := ctx.containingSize(c)
	if cst.leftset {
		wlimit -= cb.Coords.Left
	}
	if cst.rightset {
		wlimit -= cb.Coords.Right
	}
	ctx.ownFloats(c)
	ctx.doLayout(c, wlimit, true, true)
}

// updatePositionedSizes updates the positioned boxes whose containing
// block is `id`, once its height is known.
func (ctx *layoutContext) updatePositionedSizes(id BoxID) {
	for _, c := range ctx.box(id).Children {
		cb := ctx.box(c)
		if cb.Cblock != id || !cb.IsPositioned() {
			continue
		}
		ctx.updateSizes(c)
		ctx.setSize(c)
	}
}

// layoutViewport lays out the content of the viewport, which grows
// to the minimal width of the content.
func (ctx *layoutContext) layoutViewport() {
	id := ctx.tree.Root()
	b, st := ctx.box(id), ctx.state(id)
	ctx.ownFloats(id)
	ctx.clearSplitted(id)
	b.Content.Width = utils.MaxF(ctx.opts.ViewportWidth, ctx.minimalContentWidth(id))
	st.availWidth = b.Content.Width
	if ctx.containsInFlowBlocks(id) {
		ctx.layoutBlocks(id)
	} else {
		ctx.layoutInline(id)
	}
	ctx.updatePositionedSizes(id)
	b.Bounds = bo.Rect{Width: ctx.totalWidth(id), Height: ctx.totalHeight(id)}
}
