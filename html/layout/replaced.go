package layout

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/images"
	"github.com/benoitkugler/cssbox/utils"
)

// size of a replaced content without intrinsic dimensions
const placeholderSize = images.PlaceholderSize

// intrinsicSizes returns the intrinsic dimensions of the content of a
// replaced box, using the placeholder size when nothing is known.
func (ctx *layoutContext) intrinsicSizes(id BoxID) (w, h, ratio Fl, hasW, hasH, hasRatio bool) {
	r := ctx.box(id).Replaced
	if r != nil && r.Content != nil {
		w, hasW = r.Content.IntrinsicWidth()
		h, hasH = r.Content.IntrinsicHeight()
		ratio, hasRatio = r.Content.IntrinsicRatio()
	}
	if !hasW && !hasH && !hasRatio {
		return placeholderSize, placeholderSize, 1, true, true, true
	}
	if !hasRatio && hasW && hasH && h > 0 {
		ratio, hasRatio = w/h, true
	}
	return w, h, ratio, hasW, hasH, hasRatio
}

// loadReplacedSizes resolves the dimensions of a replaced box: the CSS
// width and height take precedence over the HTML attributes, and
// a missing dimension is deduced from the intrinsic ratio.
func (ctx *layoutContext) loadReplacedSizes(id BoxID, contw, conth Fl, cbFixedHeight bool) {
	b, st := ctx.box(id), ctx.state(id)
	dec := ctx.decoder(id)
	r := b.Replaced

	var (
		w, h       Fl
		wset, hset bool
	)
	if width := b.Style.Width; !width.IsAuto() {
		w, wset = dec.Length(width, 0, contw), true
	} else if r != nil && r.AttrWidth >= 0 {
		w, wset = r.AttrWidth, true
	}
	if height := b.Style.Height; !height.IsAuto() && (!height.IsPercentage() || cbFixedHeight) {
		h, hset = dec.Length(height, 0, conth), true
	} else if r != nil && r.AttrHeight >= 0 {
		h, hset = r.AttrHeight, true
	}

	iw, ih, ratio, hasW, hasH, hasRatio := ctx.intrinsicSizes(id)
	switch {
	case wset && hset:
	case wset:
		if hasRatio && ratio > 0 {
			h = w / ratio
		} else if hasH {
			h = ih
		}
	case hset:
		if hasRatio {
			w = h * ratio
		} else if hasW {
			w = iw
		}
	default:
		switch {
		case hasW && hasH:
			w, h = iw, ih
		case hasW && hasRatio && ratio > 0:
			w, h = iw, iw/ratio
		case hasH && hasRatio:
			w, h = ih*ratio, ih
		default:
			w, h = iw, ih
		}
	}

	w = st.clampWidth(w)
	if st.maxSize.Height != -1 && h > st.maxSize.Height {
		h = st.maxSize.Height
	}
	h = utils.MaxF(h, st.minSize.Height)

	ctx.computeWidths(id, pr.PxDim(w), true, contw, false)
	ctx.computeHeights(id, pr.PxDim(h), true, contw, conth, false)
}

// layoutReplaced sizes the box, which fits if its width is
// not larger than the available width.
func (ctx *layoutContext) layoutReplaced(id BoxID, availw Fl, force bool) bool {
	b, st := ctx.box(id), ctx.state(id)
	st.availWidth = availw
	ctx.setSize(id)
	st.baseline = b.Bounds.Height
	st.collapsed = false
	return force || b.Bounds.Width <= availw
}
