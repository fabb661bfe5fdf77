// Package raster paints documents into bitmaps, using fogleman/gg.
package raster

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/benoitkugler/cssbox/backend"
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/html/document"
	"github.com/benoitkugler/cssbox/matrix"
	"github.com/benoitkugler/cssbox/text"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

type Fl = backend.Fl

var (
	_ backend.Renderer = (*Output)(nil)
	_ backend.Canvas   = (*Output)(nil)
)

// Output is a bitmap receiving the painting operations of a document.
type Output struct {
	dc    *gg.Context
	fonts text.FontConfiguration
}

// New returns a white bitmap of the given size.
func New(width, height int, fonts text.FontConfiguration) *Output {
	if fonts == nil {
		fonts = text.NewGoFonts()
	}
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return &Output{dc: dc, fonts: fonts}
}

// Render paints `doc` into a new bitmap with the size of its canvas.
func Render(doc *document.Document) *Output {
	w, h := int(math.Ceil(float64(doc.Width))), int(math.Ceil(float64(doc.Height)))
	out := New(w, h, doc.Fonts())
	doc.Paint(out)
	return out
}

// Image returns the painted bitmap.
func (o *Output) Image() image.Image { return o.dc.Image() }

// WritePNG encodes the bitmap in PNG format.
func (o *Output) WritePNG(w io.Writer) error {
	if err := o.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

func (o *Output) setColor(c pr.Color) {
	o.dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

// clipTo restricts the following drawings to `r`, until
// the matching restore. It returns false if nothing is visible.
func (o *Output) clipTo(r backend.Rect) bool {
	if r.IsEmpty() {
		return false
	}
	o.dc.Push()
	o.dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
	o.dc.Clip()
	return true
}

func (o *Output) restore() { o.dc.Pop() }

// applyTransform decomposes `t` into translation, rotation, shear
// and scaling, which are the primitives exposed by gg.
func (o *Output) applyTransform(t matrix.Transform) {
	a, b, c, d := float64(t.A), float64(t.B), float64(t.C), float64(t.D)
	o.dc.Translate(float64(t.E), float64(t.F))
	sx := math.Hypot(a, b)
	if sx == 0 {
		o.dc.Scale(0, 0)
		return
	}
	sy := (a*d - b*c) / sx
	o.dc.Rotate(math.Atan2(b, a))
	if sy != 0 {
		o.dc.Shear((a*c+b*d)/sx/sy, 0)
	}
	o.dc.Scale(sx, sy)
}

func (o *Output) StartElementContents(e backend.Element) {
	o.dc.Push()
	if !e.Transform.IsIdentity() {
		o.applyTransform(e.Transform)
	}
}

func (o *Output) FinishElementContents(backend.Element) { o.dc.Pop() }

func (o *Output) FillRect(r backend.Rect, c pr.Color) {
	if c.IsTransparent() {
		return
	}
	o.setColor(c)
	o.dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
	o.dc.Fill()
}

func (o *Output) StrokeRect(r backend.Rect, c pr.Color, lineWidth Fl) {
	o.setColor(c)
	o.dc.SetLineWidth(float64(lineWidth))
	// strokes are centered on the path
	inset := float64(lineWidth) / 2
	o.dc.DrawRectangle(float64(r.X)+inset, float64(r.Y)+inset, float64(r.Width)-2*inset, float64(r.Height)-2*inset)
	o.dc.Stroke()
}

func (o *Output) DrawImage(img image.Image, dst backend.Rect) {
	w, h := int(math.Round(float64(dst.Width))), int(math.Round(float64(dst.Height)))
	if w <= 0 || h <= 0 {
		return
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		img = imaging.Resize(img, w, h, imaging.Linear)
	}
	o.dc.DrawImage(img, int(math.Round(float64(dst.X))), int(math.Round(float64(dst.Y))))
}

// sized is implemented by the images with intrinsic dimensions.
type sized interface {
	IntrinsicWidth() (Fl, bool)
	IntrinsicHeight() (Fl, bool)
}

func (o *Output) RenderElementBackground(bg backend.Background) {
	if !o.clipTo(bg.Clip) {
		return
	}
	defer o.restore()

	// the color extends under the borders
	o.FillRect(bg.BorderBox, bg.Color)
	if bg.Image != nil {
		o.drawBackgroundImage(bg.Image, bg.PaddingBox)
	}
	o.drawBorders(bg.BorderBox, bg.PaddingBox, bg.Borders)
}

// drawBackgroundImage repeats the image from the top left
// corner of the padding box.
func (o *Output) drawBackgroundImage(img backend.Drawable, area backend.Rect) {
	if area.IsEmpty() {
		return
	}
	s, ok := img.(sized)
	if !ok {
		img.Draw(o, area)
		return
	}
	w, okW := s.IntrinsicWidth()
	h, okH := s.IntrinsicHeight()
	if !okW || !okH || w <= 0 || h <= 0 {
		img.Draw(o, area)
		return
	}
	o.dc.Push()
	defer o.dc.Pop()
	o.dc.DrawRectangle(float64(area.X), float64(area.Y), float64(area.Width), float64(area.Height))
	o.dc.Clip()
	for y := area.Y; y < area.Y+area.Height; y += h {
		for x := area.X; x < area.X+area.Width; x += w {
			img.Draw(o, backend.Rect{X: x, Y: y, Width: w, Height: h})
		}
	}
}

// drawBorders fills each side as the trapezoid between the
// border box and the padding box.
func (o *Output) drawBorders(outer, inner backend.Rect, borders [4]backend.Border) {
	ox0, oy0 := float64(outer.X), float64(outer.Y)
	ox1, oy1 := ox0+float64(outer.Width), oy0+float64(outer.Height)
	ix0, iy0 := float64(inner.X), float64(inner.Y)
	ix1, iy1 := ix0+float64(inner.Width), iy0+float64(inner.Height)
	quads := [4][4][2]float64{
		pr.SideTop:    {{ox0, oy0}, {ox1, oy0}, {ix1, iy0}, {ix0, iy0}},
		pr.SideRight:  {{ox1, oy0}, {ox1, oy1}, {ix1, iy1}, {ix1, iy0}},
		pr.SideBottom: {{ox0, oy1}, {ox1, oy1}, {ix1, iy1}, {ix0, iy1}},
		pr.SideLeft:   {{ox0, oy0}, {ox0, oy1}, {ix0, iy1}, {ix0, iy0}},
	}
	for side, border := range borders {
		if border.Width <= 0 || border.Color.IsTransparent() {
			continue
		}
		o.setColor(border.Color)
		switch border.Style {
		case pr.BorderNone, pr.BorderHidden:
		case pr.BorderDashed, pr.BorderDotted:
			o.drawDashedSide(quads[side], float64(border.Width), border.Style)
		case pr.BorderDouble:
			o.drawDoubleSide(side, quads[side], float64(border.Width))
		default:
			q := quads[side]
			o.dc.MoveTo(q[0][0], q[0][1])
			for _, p := range q[1:] {
				o.dc.LineTo(p[0], p[1])
			}
			o.dc.ClosePath()
			o.dc.Fill()
		}
	}
}

// drawDashedSide strokes the middle line of the side.
func (o *Output) drawDashedSide(q [4][2]float64, width float64, style pr.BorderStyle) {
	o.dc.SetLineWidth(width)
	if style == pr.BorderDotted {
		o.dc.SetDash(width, width)
	} else {
		o.dc.SetDash(3*width, 3*width)
	}
	x0, y0 := (q[0][0]+q[3][0])/2, (q[0][1]+q[3][1])/2
	x1, y1 := (q[1][0]+q[2][0])/2, (q[1][1]+q[2][1])/2
	o.dc.DrawLine(x0, y0, x1, y1)
	o.dc.Stroke()
	o.dc.SetDash()
}

// drawDoubleSide draws two lines, each a third of the width.
func (o *Output) drawDoubleSide(side int, q [4][2]float64, width float64) {
	third := width / 3
	x0, y0, x1, y1 := q[0][0], q[0][1], q[1][0], q[1][1]
	switch side {
	case pr.SideTop:
		o.dc.DrawRectangle(x0, y0, x1-x0, third)
		o.dc.DrawRectangle(x0, y0+2*third, x1-x0, third)
	case pr.SideBottom:
		o.dc.DrawRectangle(x0, y0-third, x1-x0, third)
		o.dc.DrawRectangle(x0, y0-width, x1-x0, third)
	case pr.SideLeft:
		o.dc.DrawRectangle(x0, y0, third, y1-y0)
		o.dc.DrawRectangle(x0+2*third, y0, third, y1-y0)
	case pr.SideRight:
		o.dc.DrawRectangle(x0-third, y0, third, y1-y0)
		o.dc.DrawRectangle(x0-width, y0, third, y1-y0)
	}
	o.dc.Fill()
}

func (o *Output) RenderTextContent(t backend.TextRun) {
	if t.Color.IsTransparent() || !o.clipTo(t.Clip) {
		return
	}
	defer o.restore()

	o.setColor(t.Color)
	o.dc.SetFontFace(o.fonts.Face(t.Font))
	o.dc.DrawString(t.Text, float64(t.X), float64(t.Baseline))

	if t.Decoration == 0 {
		return
	}
	thickness := math.Max(1, float64(t.Font.Size)/15)
	x0, x1 := float64(t.X), float64(t.X+t.Width)
	line := func(y float64) {
		o.dc.DrawRectangle(x0, y, x1-x0, thickness)
		o.dc.Fill()
	}
	if t.Decoration&pr.Underline != 0 {
		line(float64(t.Baseline) + thickness)
	}
	if t.Decoration&pr.Overline != 0 {
		line(float64(t.Y))
	}
	if t.Decoration&pr.LineThrough != 0 {
		xHeight := float64(o.fonts.Metrics(t.Font).XHeight)
		line(float64(t.Baseline) - xHeight/2 - thickness/2)
	}
}

func (o *Output) RenderReplacedContent(r backend.Replaced) {
	if r.Content == nil || !o.clipTo(r.Clip) {
		return
	}
	defer o.restore()
	r.Content.Draw(o, r.ContentBox)
}

func (o *Output) RenderMarker(m backend.Marker) {
	o.setColor(m.Color)
	x, y := float64(m.Box.X), float64(m.Box.Y)
	w, h := float64(m.Box.Width), float64(m.Box.Height)
	switch m.Kind {
	case pr.ListStyleDisc:
		o.dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
		o.dc.Fill()
	case pr.ListStyleCircle:
		o.dc.SetLineWidth(1)
		o.dc.DrawEllipse(x+w/2, y+h/2, w/2-0.5, h/2-0.5)
		o.dc.Stroke()
	case pr.ListStyleSquare:
		o.dc.DrawRectangle(x, y, w, h)
		o.dc.Fill()
	}
}
