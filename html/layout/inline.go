package layout

import (
	"strings"

	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/text"
	"github.com/benoitkugler/cssbox/utils"
)

// lineBox stores the vertical metrics of a line of inline content.
// The extents are measured from the baseline of the line.
type lineBox struct {
	start, end int // range of the line in the working children of the block
	y          Fl  // top of the line, in the content box of the block

	width       Fl // width of the content of the line
	left, right Fl // space taken by the floats

	above, below Fl // extent of the aligned boxes around the baseline
	maxAligned   Fl // height of the boxes aligned with the top or bottom of the line
	fromBottom   Fl // height of the boxes aligned with the bottom of the line

	used bool // some non collapsed box is on the line
}

// newLineBox returns a line starting with the strut of the box `id`.
func (ctx *layoutContext) newLineBox(id BoxID, start int, y Fl) *lineBox {
	st := ctx.state(id)
	hl := (st.lineHeight - st.metrics.Height()) / 2
	return &lineBox{
		start: start, y: y,
		above: st.metrics.Ascent + hl,
		below: st.metrics.Descent + hl,
	}
}

// height returns the total height of the line, zero for
// lines with no content.
func (l *lineBox) height() Fl {
	if !l.used {
		return 0
	}
	return utils.MaxF(l.above+l.below, l.maxAligned)
}

// baseline returns the offset of the baseline from the top of the line.
func (l *lineBox) baseline() Fl {
	return l.above + utils.MaxF(0, l.fromBottom-(l.above+l.below))
}

// valign returns the vertical alignment of an inline-level box.
// Text boxes are aligned on the baseline of their parent.
func (ctx *layoutContext) valign(id BoxID) pr.VerticalAlign {
	b := ctx.box(id)
	if b.Kind == bo.Text {
		return pr.VerticalAlign{Kind: pr.VAlignBaseline}
	}
	return b.Style.VerticalAlign
}

// lineExtents returns the space required by the box above and below
// its baseline.
func (ctx *layoutContext) lineExtents(id BoxID) (above, below Fl) {
	b, st := ctx.box(id), ctx.state(id)
	switch b.Kind {
	case bo.Text:
		hl := (ctx.lineHeight(id) - st.metrics.Height()) / 2
		return st.metrics.Ascent + hl, st.metrics.Descent + hl
	case bo.Inline:
		return st.above, st.below
	default:
		return st.baseline, b.Bounds.Height - st.baseline
	}
}

// baselineOffset returns the distance between the top of the margin
// box and the baseline of the box.
func (ctx *layoutContext) baselineOffset(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	switch b.Kind {
	case bo.Text:
		return st.metrics.Ascent
	case bo.Inline:
		return b.Border.Top + b.Padding.Top + st.metrics.Ascent
	default:
		return st.baseline
	}
}

// baselineShift returns the vertical offset of the baseline of the box
// from the baseline of its parent, positive downwards.
func (ctx *layoutContext) baselineShift(id BoxID) Fl {
	b := ctx.box(id)
	va := ctx.valign(id)
	if va.Kind == pr.VAlignBaseline || b.Parent == bo.NoBox {
		return 0
	}
	pst := ctx.state(b.Parent)
	a, d := ctx.lineExtents(id)
	switch va.Kind {
	case pr.VAlignMiddle:
		return (a-d)/2 - pst.metrics.XHeight/2
	case pr.VAlignSub:
		return 0.3 * pst.lineHeight
	case pr.VAlignSuper:
		return -0.3 * pst.lineHeight
	case pr.VAlignTextTop:
		return a - pst.metrics.Ascent
	case pr.VAlignTextBottom:
		return pst.metrics.Descent - d
	case pr.VAlignLength:
		return -ctx.decoder(id).Length(va.Length, 0, ctx.lineHeight(id))
	}
	return 0
}

// considerBox updates the metrics of the line with a box placed on it.
func (ctx *layoutContext) considerBox(l *lineBox, id BoxID) {
	b, st := ctx.box(id), ctx.state(id)
	if !b.Displayed || b.Kind.IsBlock() || st.collapsed {
		return
	}
	l.used = true
	a, d := ctx.lineExtents(id)
	switch ctx.valign(id).Kind {
	case pr.VAlignTop:
		l.maxAligned = utils.MaxF(l.maxAligned, a+d)
	case pr.VAlignBottom:
		l.maxAligned = utils.MaxF(l.maxAligned, a+d)
		l.fromBottom = utils.MaxF(l.fromBottom, a+d)
	default:
		dif := ctx.baselineShift(id)
		l.above = utils.MaxF(l.above, a-dif)
		l.below = utils.MaxF(l.below, d+dif)
	}
	if b.Kind == bo.Inline && st.curline != nil {
		// nested boxes aligned with the line
		l.maxAligned = utils.MaxF(l.maxAligned, st.curline.maxAligned)
		l.fromBottom = utils.MaxF(l.fromBottom, st.curline.fromBottom)
	}
}

// lineOffset returns the top of the margin box of `id`, relative
// to the top of the line.
func (ctx *layoutContext) lineOffset(l *lineBox, id BoxID) Fl {
	a, d := ctx.lineExtents(id)
	bl := ctx.baselineOffset(id)
	switch ctx.valign(id).Kind {
	case pr.VAlignTop:
		return a - bl
	case pr.VAlignBottom:
		return l.height() - d - bl
	default:
		return l.baseline() + ctx.baselineShift(id) - bl
	}
}

// alignNested places the descendants of the inline box `id` aligned
// with the top or the bottom of the line. `contentTop` is the top of
// the content box of `id`, relative to the line.
func (ctx *layoutContext) alignNested(l *lineBox, id BoxID, contentTop Fl) {
	for _, c := range ctx.box(id).Flow {
		cb := ctx.box(c)
		if !cb.Displayed || cb.Kind.IsBlock() {
			continue
		}
		ctx.state(c).line = l
		switch ctx.valign(c).Kind {
		case pr.VAlignTop, pr.VAlignBottom:
			cb.Bounds.Y = ctx.lineOffset(l, c) - contentTop
		}
		if cb.Kind == bo.Inline {
			ctx.alignNested(l, c, contentTop+cb.Bounds.Y+cb.Border.Top+cb.Padding.Top)
		}
	}
}

// ------------------------------- text -------------------------------

// layoutText places as much of the text as possible in `availw`,
// storing the remaining text in a new box (Rest).
func (ctx *layoutContext) layoutText(id BoxID, availw Fl, force, linestart bool) bool {
	b, st := ctx.box(id), ctx.state(id)
	t := b.Text
	if !st.textStarted {
		st.textStarted, st.textStart = true, t.Start
	}
	t.Start, t.End = st.textStart, t.OrigEnd
	b.Rest = bo.NoBox
	st.lineBreakStop = false
	st.availWidth = availw

	collapse := b.Style.WhiteSpace.CollapsesSpaces()
	wrap := b.Style.WhiteSpace.AllowsWrapping()
	wlimit := availw
	full := t.Text[t.Start:t.OrigEnd]
	empty := strings.TrimLeft(full, " ") == "" && collapse

	end := t.OrigEnd
	lbPos := -1
	split, allow := false, false
	if i := strings.IndexByte(full, text.LineBreak); i != -1 {
		lbPos = t.Start + i
		end = lbPos
		split, allow = true, true
	}

	var w Fl
	if !empty || !linestart {
		if (linestart || st.ignoreInitialWS) && collapse {
			for t.Start < end && t.Text[t.Start] == ' ' {
				t.Start++
			}
		}
		for {
			w = ctx.fonts.Width(st.font, t.Text[t.Start:end])
			if w <= wlimit {
				break
			}
			if empty { // only spaces: nothing is placed
				w, split = 0, false
				end = t.Start
				break
			}
			wordEnd := strings.LastIndexByte(t.Text[:end], ' ')
			for wordEnd > 0 && t.Text[wordEnd-1] == ' ' {
				wordEnd--
			}
			if wordEnd <= t.Start || !wrap {
				if !force {
					end, w = t.Start, 0
					split, allow = false, false
				} else {
					split = true
				}
				break
			}
			end, split = wordEnd, true
		}
	} else {
		end = t.Start
	}
	t.End = end
	st.lineBreakStop = lbPos != -1 && end == lbPos
	st.collapsed = t.End == t.Start && !st.lineBreakStop

	if split {
		start := t.End
		for start < t.OrigEnd && ((collapse && t.Text[start] == ' ') || t.Text[start] == text.LineBreak) {
			if t.Text[start] == text.LineBreak {
				start++
				break
			}
			start++
		}
		if start < t.OrigEnd {
			rest := ctx.clone(id)
			rst := ctx.state(rest)
			rst.textStarted, rst.textStart = true, start
			rst.ignoreInitialWS = false
			rb := ctx.box(rest)
			rb.Text.Start, rb.Text.End = start, t.OrigEnd
			b.Rest = rest
		}
	}

	b.Content.Width = w
	b.Content.Height = 0
	if !st.collapsed {
		b.Content.Height = st.metrics.Height()
	}
	b.Bounds.Width, b.Bounds.Height = b.Content.Width, b.Content.Height
	t.Baseline = st.metrics.Ascent
	return t.End > t.Start || empty || allow
}

// textContent returns the text which may be laid out by the box.
func (ctx *layoutContext) textContent(id BoxID) string {
	t := ctx.box(id).Text
	return t.Text[t.Start:t.OrigEnd]
}

func (ctx *layoutContext) textMinimalWidth(id BoxID) Fl {
	b, st := ctx.box(id), ctx.state(id)
	s := ctx.textContent(id)
	if b.Style.WhiteSpace.AllowsWrapping() {
		return text.LongestWord(ctx.fonts, st.font, s)
	}
	return text.LongestLine(ctx.fonts, st.font, s)
}

func (ctx *layoutContext) textMaximalWidth(id BoxID) Fl {
	return text.LongestLine(ctx.fonts, ctx.state(id).font, ctx.textContent(id))
}

// textContainsBreak returns true if the text may be broken inside.
func (ctx *layoutContext) textContainsBreak(id BoxID) bool {
	return strings.ContainsAny(strings.Trim(ctx.textContent(id), " "), " \n")
}

// textEdgeWords returns the width of the first and last words of the text,
// which join the neighbour boxes when there is no space between them.
func (ctx *layoutContext) textEdgeWords(id BoxID) (first, last Fl) {
	st := ctx.state(id)
	s := ctx.textContent(id)
	i := strings.IndexAny(s, " \n")
	j := strings.LastIndexAny(s, " \n")
	if i == -1 {
		w := ctx.fonts.Width(st.font, s)
		return w, w
	}
	return ctx.fonts.Width(st.font, s[:i]), ctx.fonts.Width(st.font, s[j+1:])
}

func (ctx *layoutContext) textLines(id BoxID) []string {
	return strings.Split(ctx.textContent(id), string(text.LineBreak))
}

// canSplitBefore returns true if a line break is allowed before the box.
func (ctx *layoutContext) canSplitBefore(id BoxID) bool {
	b := ctx.box(id)
	switch b.Kind {
	case bo.Text:
		t := b.Text
		start := t.Start
		if st := ctx.state(id); st.textStarted {
			start = st.textStart
		}
		if !b.Style.WhiteSpace.AllowsWrapping() || start >= t.OrigEnd {
			return false
		}
		return t.Text[start] == ' ' || (start > 0 && t.Text[start-1] == ' ')
	case bo.Inline:
		for _, c := range b.Flow {
			if cb := ctx.box(c); cb.Displayed && !cb.Kind.IsBlock() {
				return ctx.canSplitBefore(c)
			}
		}
		return false
	}
	return true
}

// canSplitAfter returns true if a line break is allowed after the box.
func (ctx *layoutContext) canSplitAfter(id BoxID) bool {
	b := ctx.box(id)
	switch b.Kind {
	case bo.Text:
		t := b.Text
		if !b.Style.WhiteSpace.AllowsWrapping() || t.End <= t.Start {
			return false
		}
		return t.Text[t.End-1] == ' ' || (t.End < len(t.Text) && t.Text[t.End] == ' ')
	case bo.Inline:
		for i := len(b.Flow) - 1; i >= 0; i-- {
			if cb := ctx.box(b.Flow[i]); cb.Displayed && !cb.Kind.IsBlock() {
				return ctx.canSplitAfter(b.Flow[i])
			}
		}
		return false
	}
	return true
}

// ---------------------------- inline boxes ----------------------------

// restoreFlow resets the working children of an inline box and the
// range of its text, as they were before the previous layout.
func (ctx *layoutContext) restoreFlow(id BoxID) {
	b, st := ctx.box(id), ctx.state(id)
	switch b.Kind {
	case bo.Text:
		if st.textStarted {
			b.Text.Start = st.textStart
		}
		b.Text.End = b.Text.OrigEnd
		b.Rest = bo.NoBox
	case bo.Inline:
		if st.fullFlow == nil {
			st.fullFlow = append([]BoxID(nil), b.Flow...)
		} else {
			b.Flow = append(b.Flow[:0], st.fullFlow...)
		}
		b.Rest = bo.NoBox
		for _, c := range b.Flow {
			ctx.restoreFlow(c)
		}
	}
}

// layoutInlineBox places the children of an inline box on one line.
// The children which do not fit are moved to a new box (Rest).
func (ctx *layoutContext) layoutInlineBox(id BoxID, availw Fl, force, linestart bool) bool {
	b, st := ctx.box(id), ctx.state(id)
	ctx.restoreFlow(id)
	st.availWidth = availw
	st.lineBreakStop = false
	wlimit := ctx.availableContentWidth(id)

	flow := b.Flow
	var x Fl
	ret := true
	lastbreak := 0
	lastwhite := st.ignoreInitialWS
	for i, c := range flow {
		cb, cst := ctx.box(c), ctx.state(c)
		if ctx.canSplitBefore(c) {
			lastbreak = i
		}
		f := force && (i == 0 || lastbreak == 0)
		cst.ignoreInitialWS = lastwhite
		fit := ctx.doLayout(c, wlimit-x, f, linestart && i == 0)
		if !fit {
			if lastbreak == 0 { // nothing placed
				ret = false
				break
			}
			rest := ctx.clone(id)
			ctx.box(rest).Flow = append([]BoxID(nil), flow[lastbreak:]...)
			b.Flow = flow[:lastbreak]
			b.Rest = rest
			break
		}
		cb.Bounds.X = x
		x += cb.Bounds.Width
		st.lineBreakStop = cst.lineBreakStop
		if cb.Rest != bo.NoBox || (cst.lineBreakStop && i+1 < len(flow)) {
			rest := ctx.clone(id)
			var restFlow []BoxID
			if cb.Rest != bo.NoBox {
				restFlow = append(restFlow, cb.Rest)
			}
			ctx.box(rest).Flow = append(restFlow, flow[i+1:]...)
			b.Flow = flow[:i+1]
			b.Rest = rest
			break
		}
		if ctx.canSplitAfter(c) {
			lastbreak = i + 1
		}
		lastwhite = cb.CollapsesSpaces() && ctx.tree.EndsWithWhitespace(c)
	}

	b.Content.Width = x
	b.Content.Height = st.metrics.Height()

	// line metrics of the content, relative to the baseline of the box
	curline := ctx.newLineBox(id, 0, 0)
	collapsed := b.Border.Horizontal()+b.Padding.Horizontal()+b.EMargin.Horizontal() == 0
	for _, c := range b.Flow {
		ctx.considerBox(curline, c)
		if cb := ctx.box(c); cb.Displayed && !cb.Kind.IsBlock() && !ctx.state(c).collapsed {
			collapsed = false
		}
	}
	st.curline = curline
	st.above, st.below = curline.above, curline.below
	st.collapsed = collapsed

	// align the children on the baseline
	for _, c := range b.Flow {
		cb := ctx.box(c)
		if !cb.Displayed || cb.Kind.IsBlock() {
			continue
		}
		cb.Bounds.Y = st.metrics.Ascent + ctx.baselineShift(c) - ctx.baselineOffset(c)
	}

	ctx.setSize(id)
	return ret
}

// ------------------------- lines of a block -------------------------

// layoutInline lays out the inline content of a block in lines,
// wrapping around the floats of the formatting context.
func (ctx *layoutContext) layoutInline(id BoxID) {
	b, st := ctx.box(id), ctx.state(id)
	x1, x2 := ctx.floatLimits(id, 0)
	wlimit := ctx.availableContentWidth(id)
	// available space if there were no floats
	minx1, minx2 := utils.MaxF(0, -st.floatXl), utils.MaxF(0, -st.floatXr)

	x := x1
	var y, maxw Fl
	lnstr, lastbreak := 0, 0
	someinflow, lastwhite := false, false
	curline := ctx.newLineBox(id, 0, 0)
	lines := []*lineBox{curline}

	for i := 0; i < len(b.Flow); i++ {
		c := b.Flow[i]
		cb, cst := ctx.box(c), ctx.state(c)

		if cb.Kind.IsBlock() { // floating or positioned
			if !cb.IsOutOfFlow() {
				ctx.hide(c)
				continue
			}
			stat := blockStatus{inlineWidth: x - x1, y: y}
			atstart := x <= x1
			ctx.clearY(id, c, &stat)
			if cb.IsFloating() {
				ctx.layoutBlockFloating(id, c, wlimit, &stat)
				// the content already on the line is moved after a left float
				if cb.Style.Float == pr.FloatLeft && stat.inlineWidth > 0 && curline.start < i {
					for j := curline.start; j < i; j++ {
						if pb := ctx.box(b.Flow[j]); !pb.Kind.IsBlock() {
							pb.Bounds.X += cb.Bounds.Width
						}
					}
					x += cb.Bounds.Width
				}
			} else {
				ctx.layoutBlockPositioned(id, c)
			}
			x1, x2 = ctx.floatLimits(id, y)
			if atstart && x < x1 {
				x = x1
			}
			continue
		}

		if ctx.canSplitBefore(c) {
			lastbreak = i
		}
		someinflow = true
		for split := true; split; {
			split = false
			space := wlimit - x1 - x2
			narrowed := x1 > minx1 || x2 > minx2
			// force at the start of the line or when the line cannot be broken,
			// unless a line below is wider
			f := (x == x1 || lastbreak == lnstr || !b.Style.WhiteSpace.AllowsWrapping()) && !narrowed
			cst.ignoreInitialWS = lastwhite
			fit := false
			if space >= inflowSpaceThreshold || !narrowed {
				fit = ctx.doLayout(c, wlimit-x-x2, f, x == x1)
			}
			if fit {
				cb.Bounds.X = x
				x += cb.Bounds.Width
				ctx.considerBox(curline, c)
			}
			over := x > wlimit-x2
			linebreak := cst.lineBreakStop

			if !fit && narrowed && (x == x1 || lastbreak == lnstr) {
				// no space next to the floats: try below
				maxw = utils.MaxF(maxw, x)
				step := st.lineHeight
				if step <= 0 {
					step = 1
				}
				y += step
				curline.y = y
				x1, x2 = ctx.floatLimits(id, y)
				x = x1
				split = true
			} else if (!fit && lastbreak > lnstr) || (fit && (over || linebreak || cb.Rest != bo.NoBox)) {
				curline.width = x - x1
				curline.left, curline.right = x1, x2
				maxw = utils.MaxF(maxw, x)
				y += curline.height()
				x1, x2 = ctx.floatLimits(id, y)
				x = x1
				if !fit { // try again on the new line
					lnstr = i
					split = true
				} else {
					if cb.Rest != bo.NoBox {
						b.Flow = insertAt(b.Flow, i+1, cb.Rest)
					}
					lnstr = i + 1
				}
				curline.end = lnstr
				curline = ctx.newLineBox(id, lnstr, y)
				lines = append(lines, curline)
			}
			lastwhite = cb.CollapsesSpaces() && ctx.tree.EndsWithWhitespace(c)
		}
		if ctx.canSplitAfter(c) {
			lastbreak = i + 1
		}
	}
	if someinflow {
		maxw = utils.MaxF(maxw, x)
	}

	if !st.hset {
		y += curline.height()
		if ctx.encloseFloats(id) {
			if mfy := ctx.floatHeight(id) - st.floatY; mfy > y {
				y = mfy
			}
		}
		ctx.setContentHeight(id, y)
		ctx.updatePositionedSizes(id)
	}
	ctx.setSize(id)

	curline.width = x - x1
	curline.left, curline.right = x1, x2
	curline.end = len(b.Flow)
	st.firstLine, st.lastLine = nil, nil
	for _, line := range lines {
		ctx.alignLineHorizontally(id, line)
		ctx.alignLineVertically(id, line)
		if line.used {
			if st.firstLine == nil {
				st.firstLine = line
			}
			st.lastLine = line
		}
	}
}

func insertAt(list []BoxID, i int, id BoxID) []BoxID {
	list = append(list, bo.NoBox)
	copy(list[i+1:], list[i:])
	list[i] = id
	return list
}

func (ctx *layoutContext) alignLineHorizontally(id BoxID, line *lineBox) {
	b := ctx.box(id)
	dif := b.Content.Width - line.left - line.right - line.width
	if dif <= 0 {
		return
	}
	switch b.Style.TextAlign {
	case pr.TextAlignRight:
	case pr.TextAlignCenter:
		dif /= 2
	default: // justify is not supported
		return
	}
	for _, c := range b.Flow[line.start:line.end] {
		if cb := ctx.box(c); !cb.Kind.IsBlock() {
			cb.Bounds.X += dif
		}
	}
}

func (ctx *layoutContext) alignLineVertically(id BoxID, line *lineBox) {
	b := ctx.box(id)
	for _, c := range b.Flow[line.start:line.end] {
		cb := ctx.box(c)
		if cb.Kind.IsBlock() || !cb.Displayed {
			continue
		}
		y := ctx.lineOffset(line, c)
		cb.Bounds.Y = line.y + y
		ctx.state(c).line = line
		if cb.Kind == bo.Inline {
			ctx.alignNested(line, c, y+cb.Border.Top+cb.Padding.Top)
		}
	}
}

// lineBaseline returns the baseline of the first (or last) line of
// the box, relative to the top of its content box.
func (ctx *layoutContext) lineBaseline(id BoxID, last bool) (Fl, bool) {
	b, st := ctx.box(id), ctx.state(id)
	if !b.Displayed {
		return 0, false
	}
	line := st.firstLine
	if last {
		line = st.lastLine
	}
	if line != nil {
		return line.y + line.baseline(), true
	}
	flow := b.Flow
	for k := range flow {
		i := k
		if last {
			i = len(flow) - 1 - k
		}
		c := flow[i]
		cb := ctx.box(c)
		if !cb.Kind.IsBlock() || !cb.IsInFlow() || cb.Kind == bo.Table {
			continue
		}
		if y, ok := ctx.lineBaseline(c, last); ok {
			return cb.Bounds.Y + cb.ContentY() + y, true
		}
	}
	return 0, false
}
