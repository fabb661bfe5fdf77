package layout

import (
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/utils"
)

// floatList stores the floating boxes of one side of a block
// formatting context. The geometry of the floats is expressed
// relative to the content box of the owner, the horizontal offset
// being measured from the edge of the side of the list.
type floatList struct {
	ctx    *layoutContext
	owner  BoxID
	floats []BoxID

	bottomBox BoxID // bottom-most box
	lastBox   BoxID // last box inserted: new boxes are not placed above it
}

func (ctx *layoutContext) newFloatList(owner BoxID) *floatList {
	return &floatList{ctx: ctx, owner: owner, bottomBox: bo.NoBox, lastBox: bo.NoBox}
}

// rect returns the geometry of the float in the list coordinates.
func (l *floatList) rect(id BoxID) (x, y, w, h Fl) {
	b := l.ctx.box(id)
	return l.ctx.state(id).floatX, b.Bounds.Y, b.Bounds.Width, b.Bounds.Height
}

func (l *floatList) add(id BoxID) {
	l.ctx.state(id).ownerList = l
	l.floats = append(l.floats, id)
	_, y, _, h := l.rect(id)
	if y+h > l.maxY() {
		l.bottomBox = id
	}
	if y > l.lastY() {
		l.lastBox = id
	}
}

// maxY returns the bottom of the lowest float.
func (l *floatList) maxY() Fl {
	if l.bottomBox == bo.NoBox {
		return 0
	}
	_, y, _, h := l.rect(l.bottomBox)
	return y + h
}

// lastY returns the top of the last float.
func (l *floatList) lastY() Fl {
	if l.lastBox == bo.NoBox {
		return 0
	}
	_, y, _, _ := l.rect(l.lastBox)
	return y
}

// width returns the space taken by the floats at the ordinate `y`.
func (l *floatList) width(y Fl) Fl {
	var maxx Fl
	for _, id := range l.floats {
		fx, fy, fw, fh := l.rect(id)
		if fy <= y && fy+fh > y {
			maxx = utils.MaxF(maxx, fx+fw)
		}
	}
	return maxx
}

// nextY returns the bottom of the widest float at `y`, or -1
// if there is no float at `y`.
func (l *floatList) nextY(y Fl) Fl {
	var maxx Fl
	nexty := Fl(-1)
	for _, id := range l.floats {
		fx, fy, fw, fh := l.rect(id)
		if fy <= y && fy+fh > y {
			if wx := fx + fw; wx > maxx {
				maxx = wx
				nexty = fy + fh
			}
		}
	}
	return nexty
}

// maxYFor returns the bottom of the lowest visible float
// whose containing block is inside `box`.
func (l *floatList) maxYFor(box BoxID) Fl {
	var maxy Fl
	for _, id := range l.floats {
		if !l.ctx.box(id).Visible || !l.ctx.isInside(l.ctx.box(id).Cblock, box, l.owner) {
			continue
		}
		_, fy, _, fh := l.rect(id)
		maxy = utils.MaxF(maxy, fy+fh)
	}
	return maxy
}

// isInside returns true if `id` is `ancestor` or one of its descendants,
// walking the containing blocks up to `limit`.
func (ctx *layoutContext) isInside(id, ancestor, limit BoxID) bool {
	for id != bo.NoBox {
		if id == ancestor {
			return true
		}
		if id == limit {
			return false
		}
		id = ctx.box(id).Cblock
	}
	return false
}

// nextFloatY returns the first ordinate below `y` where the floats
// of `left` or `right` change, or -1.
func nextFloatY(left, right *floatList, y Fl) Fl {
	fy1, fy2 := left.nextY(y), right.nextY(y)
	switch {
	case fy1 == -1:
		return fy2
	case fy2 == -1:
		return fy1
	default:
		return utils.MinF(fy1, fy2)
	}
}

// setFloats shares the float lists of the formatting context with the box,
// located at (floatXl, floatY) from the list owner.
func (ctx *layoutContext) setFloats(id BoxID, left, right *floatList, floatXl, floatXr, floatY Fl) {
	st := ctx.state(id)
	st.fleft, st.fright = left, right
	st.floatXl, st.floatXr, st.floatY = floatXl, floatXr, floatY
}

// ownFloats gives the box its own formatting context.
func (ctx *layoutContext) ownFloats(id BoxID) {
	ctx.setFloats(id, ctx.newFloatList(id), ctx.newFloatList(id), 0, 0, 0)
}

// floatLimits returns the space taken by the floats on each side at `y`
// (relative to the content box of `id`).
func (ctx *layoutContext) floatLimits(id BoxID, y Fl) (x1, x2 Fl) {
	st := ctx.state(id)
	x1 = utils.MaxF(0, st.fleft.width(y+st.floatY)-st.floatXl)
	x2 = utils.MaxF(0, st.fright.width(y+st.floatY)-st.floatXr)
	return x1, x2
}

// floatHeight returns the bottom of the floats contained in the box,
// in the coordinates of the list owner.
func (ctx *layoutContext) floatHeight(id BoxID) Fl {
	st := ctx.state(id)
	if st.fleft == nil || st.fright == nil {
		return 0
	}
	return utils.MaxF(st.fleft.maxYFor(id), st.fright.maxYFor(id))
}

// maxFloatWidth returns the maximum space taken by the floats between
// y1 and y2.
func (ctx *layoutContext) maxFloatWidth(id BoxID, y1, y2 Fl) Fl {
	st := ctx.state(id)
	var ret Fl
	for fy := y1; fy < y2; {
		ret = utils.MaxF(ret, st.fleft.width(fy)+st.fright.width(fy))
		nexty := nextFloatY(st.fleft, st.fright, fy)
		if nexty == -1 {
			break
		}
		fy = nexty
	}
	return ret
}

// computeFloatLimits widens the limits (flx, frx) to the space taken
// by the floats between y1 and y2.
func (ctx *layoutContext) computeFloatLimits(id BoxID, y1, y2, flx, frx Fl) (Fl, Fl) {
	st := ctx.state(id)
	for fy := y1; fy < y2; {
		nexty := nextFloatY(st.fleft, st.fright, fy)
		if nexty == -1 {
			break
		}
		fy = nexty
		if fy < y2 {
			flx = utils.MaxF(flx, st.fleft.width(fy)-st.floatXl)
			frx = utils.MaxF(frx, st.fright.width(fy)-st.floatXr)
		}
	}
	return flx, frx
}
