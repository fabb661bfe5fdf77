// Package backend defines the painting interface of a laid out document.
//
// The document package walks the box tree and calls the methods of a
// Renderer; the concrete output format (raster image, SVG stream) is
// unknown to the layout.
package backend

import (
	"image"

	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/matrix"
	"github.com/benoitkugler/cssbox/text"
	"github.com/benoitkugler/cssbox/utils"
)

type Fl = utils.Fl

// Rect is an axis aligned rectangle.
type Rect struct {
	X, Y, Width, Height Fl
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the intersection of r and other, which
// may be empty.
func (r Rect) Intersect(other Rect) Rect {
	x0, y0 := utils.MaxF(r.X, other.X), utils.MaxF(r.Y, other.Y)
	x1 := utils.MinF(r.X+r.Width, other.X+other.Width)
	y1 := utils.MinF(r.Y+r.Height, other.Y+other.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Canvas is the set of primitives used by replaced content
// (images, placeholders) to draw themselves.
type Canvas interface {
	FillRect(r Rect, c pr.Color)
	StrokeRect(r Rect, c pr.Color, lineWidth Fl)
	// DrawImage draws `img` scaled into `dst`.
	DrawImage(img image.Image, dst Rect)
}

// Drawable is content able to paint itself in a rectangle.
type Drawable interface {
	Draw(c Canvas, dst Rect)
}

// Border is one side of a border.
type Border struct {
	Width Fl
	Style pr.BorderStyle
	Color pr.Color
}

// Background describes the background and the borders
// of an element, in absolute coordinates.
type Background struct {
	BorderBox  Rect
	PaddingBox Rect
	Clip       Rect

	Color pr.Color
	Image Drawable // optional background image, painted in the padding box

	Borders [4]Border // indexed by pr.SideTop, ...
}

// TextRun is a piece of text to draw on one line.
type TextRun struct {
	X, Y     Fl // top left corner
	Baseline Fl // absolute ordinate of the baseline
	Width    Fl
	Height   Fl
	Clip     Rect

	Text       string
	Font       text.Font
	Color      pr.Color
	Decoration pr.TextDecoration
}

// Replaced is a replaced content (such as an image) to draw in its content box.
type Replaced struct {
	ContentBox Rect
	Clip       Rect
	Content    Drawable
}

// Marker is a list item marker drawn as a glyph (disc, circle or square).
type Marker struct {
	Box   Rect
	Kind  pr.ListStyleType
	Color pr.Color
}

// Element brackets the painting of an element content.
type Element struct {
	Tag string
	// Transform is applied to every drawing issued before the matching
	// FinishElementContents.
	Transform matrix.Transform
}

// Renderer receives the painting operations of a laid out document,
// in painting order.
type Renderer interface {
	StartElementContents(e Element)
	RenderElementBackground(b Background)
	RenderTextContent(t TextRun)
	RenderReplacedContent(r Replaced)
	RenderMarker(m Marker)
	FinishElementContents(e Element)
}
