package layout

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/utils"
)

// absolutePositions converts the box-local positions computed by the
// layout into absolute coordinates, then grows the viewport to enclose
// every displayed box and computes the clipping rectangles.
func (ctx *layoutContext) absolutePositions() {
	root := ctx.tree.Root()
	ctx.usedStatic = false
	ctx.absPosition(root, 0, 0)
	if ctx.usedStatic {
		// the reference boxes of the static positions now have their
		// final position: repeat with the resolved offsets
		ctx.absPosition(root, 0, 0)
	}
	ctx.growViewport()

	clear(ctx.clips) // computed with the initial viewport
	for id := range ctx.tree.Boxes {
		ctx.clip(BoxID(id))
	}
}

// absPosition sets the absolute bounds of `id` and of its descendants.
// (originX, originY) is the absolute content origin of the flow parent.
func (ctx *layoutContext) absPosition(id BoxID, originX, originY Fl) {
	b, st := ctx.box(id), ctx.state(id)
	if !b.Displayed {
		return
	}
	if b.Kind == bo.TableColumn || b.Kind == bo.TableColumnGroup {
		return
	}

	x, y := originX+b.Bounds.X, originY+b.Bounds.Y
	switch {
	case b.Kind == bo.Viewport:
		x, y = b.Bounds.X, b.Bounds.Y
	case b.IsFloating() && st.ownerList != nil:
		owner := ctx.box(st.ownerList.owner)
		if b.Style.Float == pr.FloatRight {
			x = owner.AbsContentX() + owner.Content.Width - b.Bounds.Width - st.floatX
		} else {
			x = owner.AbsContentX() + st.floatX
		}
		y = owner.AbsContentY() + b.Bounds.Y
	case b.IsPositioned():
		if st.topstatic || st.leftstatic {
			ctx.updateStaticPosition(id)
		}
		pad := ctx.box(b.Cblock).PaddingBox()
		x, y = pad.X+b.Coords.Left, pad.Y+b.Coords.Top
	default:
		dx, dy := ctx.relativeOffset(id)
		x, y = x+dx, y+dy
	}
	b.AbsBounds = bo.Rect{X: x, Y: y, Width: b.Bounds.Width, Height: b.Bounds.Height}

	cx, cy := b.AbsContentX(), b.AbsContentY()
	if b.Kind == bo.TableCell {
		cy += st.coffset
	}
	for _, c := range b.Flow {
		ctx.absPosition(c, cx, cy)
	}
}

// updateStaticPosition resolves the offsets of a positioned box which
// are not specified: the box is placed below the last in-flow box
// preceding it, or at the content corner of its parent.
func (ctx *layoutContext) updateStaticPosition(id BoxID) {
	b, st := ctx.box(id), ctx.state(id)
	ctx.usedStatic = true
	pad := ctx.box(b.Cblock).PaddingBox()

	var x, y Fl
	switch {
	case b.AbsReference != bo.NoBox && ctx.box(b.AbsReference).Displayed:
		ref := ctx.box(b.AbsReference).AbsBounds
		x, y = ref.X, ref.Y+ref.Height
	case b.DOMParent != bo.NoBox && ctx.box(b.DOMParent).Displayed:
		parent := ctx.box(b.DOMParent)
		x, y = parent.AbsContentX(), parent.AbsContentY()
	default:
		cb := ctx.box(b.Cblock)
		x, y = pad.X+cb.Padding.Left, pad.Y+cb.Padding.Top
	}
	if st.topstatic {
		b.Coords.Top = y - pad.Y
	}
	if st.leftstatic {
		b.Coords.Left = x - pad.X
	}
}

// growViewport enlarges the viewport to enclose the displayed boxes.
// The boxes clipped by an ancestor only count for their visible part.
func (ctx *layoutContext) growViewport() {
	root := ctx.tree.Root()
	vp := ctx.box(root)
	maxx, maxy := vp.AbsBounds.X+vp.AbsBounds.Width, vp.AbsBounds.Y+vp.AbsBounds.Height
	for id, b := range ctx.tree.Boxes {
		if BoxID(id) == root || b == nil || !b.Displayed || b.Kind == bo.Text && b.Text.Start == b.Text.End {
			continue
		}
		switch b.Kind {
		case bo.TableColumn, bo.TableColumnGroup:
			continue
		}
		r := b.AbsBounds
		if b.ClipBlock != root && b.ClipBlock != bo.NoBox {
			r = r.Intersect(ctx.clip(b.ClipBlock))
			if r.IsEmpty() {
				continue
			}
		}
		maxx = utils.MaxF(maxx, r.X+r.Width)
		maxy = utils.MaxF(maxy, r.Y+r.Height)
	}
	vp.Content.Width = utils.MaxF(vp.Content.Width, maxx-vp.AbsBounds.X)
	vp.Content.Height = utils.MaxF(vp.Content.Height, maxy-vp.AbsBounds.Y)
	ctx.setSize(root)
	vp.AbsBounds.Width, vp.AbsBounds.Height = vp.Bounds.Width, vp.Bounds.Height
}

// clip returns the clipping rectangle of the box: the padding box
// of its clipping block, narrowed by the clipping ancestors.
// The result is stored in the Clip field of the box.
func (ctx *layoutContext) clip(id BoxID) bo.Rect {
	if r, ok := ctx.clips[id]; ok {
		return r
	}
	b := ctx.box(id)
	var r bo.Rect
	if id == ctx.tree.Root() || b.ClipBlock == bo.NoBox || b.ClipBlock == id {
		r = ctx.box(ctx.tree.Root()).AbsBounds
	} else {
		r = ctx.box(b.ClipBlock).PaddingBox()
		if b.ClipBlock != ctx.tree.Root() {
			r = r.Intersect(ctx.clip(b.ClipBlock))
		}
	}
	ctx.clips[id] = r
	b.Clip = r
	return r
}
