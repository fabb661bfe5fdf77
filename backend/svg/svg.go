// Package svg writes the painting operations of a document
// as an SVG image.
package svg

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/benoitkugler/cssbox/backend"
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/html/document"
	"github.com/benoitkugler/cssbox/logger"
)

type Fl = backend.Fl

var (
	_ backend.Renderer = (*Output)(nil)
	_ backend.Canvas   = (*Output)(nil)
)

// Output builds an SVG document.
type Output struct {
	doc   *etree.Document
	defs  *etree.Element
	stack []*etree.Element // current <g> elements

	clips map[backend.Rect]string // clip path ids
}

// New returns an empty image of the given size.
func New(width, height Fl) *Output {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	root.CreateAttr("width", format(width))
	root.CreateAttr("height", format(height))
	root.CreateAttr("viewBox", fmt.Sprintf("0 0 %s %s", format(width), format(height)))
	defs := root.CreateElement("defs")
	return &Output{doc: doc, defs: defs, stack: []*etree.Element{root}, clips: map[backend.Rect]string{}}
}

// Render paints `doc` into a new SVG image.
func Render(doc *document.Document) *Output {
	out := New(doc.Width, doc.Height)
	doc.Paint(out)
	return out
}

// WriteTo writes the indented XML document.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	o.doc.Indent(2)
	n, err := o.doc.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("writing svg: %w", err)
	}
	return n, nil
}

// Root returns the <svg> element.
func (o *Output) Root() *etree.Element { return o.doc.Root() }

func format(v Fl) string { return strconv.FormatFloat(float64(v), 'f', -1, 32) }

func colorAttr(c pr.Color) (value, opacity string) {
	value = c.Hex()
	if c.A != 255 {
		opacity = strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64)
	}
	return value, opacity
}

func (o *Output) current() *etree.Element { return o.stack[len(o.stack)-1] }

// clipID returns the id of the clip path for `r`, created on demand.
func (o *Output) clipID(r backend.Rect) string {
	if id, ok := o.clips[r]; ok {
		return id
	}
	id := "clip" + strconv.Itoa(len(o.clips)+1)
	cp := o.defs.CreateElement("clipPath")
	cp.CreateAttr("id", id)
	setRect(cp.CreateElement("rect"), r)
	o.clips[r] = id
	return id
}

// clipped returns a group clipped by `r`, or nil if nothing is visible.
func (o *Output) clipped(r backend.Rect) *etree.Element {
	if r.IsEmpty() {
		return nil
	}
	g := o.current().CreateElement("g")
	g.CreateAttr("clip-path", "url(#"+o.clipID(r)+")")
	return g
}

func setRect(el *etree.Element, r backend.Rect) {
	el.CreateAttr("x", format(r.X))
	el.CreateAttr("y", format(r.Y))
	el.CreateAttr("width", format(r.Width))
	el.CreateAttr("height", format(r.Height))
}

func setFill(el *etree.Element, c pr.Color) {
	value, opacity := colorAttr(c)
	el.CreateAttr("fill", value)
	if opacity != "" {
		el.CreateAttr("fill-opacity", opacity)
	}
}

func setStroke(el *etree.Element, c pr.Color, width Fl) {
	value, opacity := colorAttr(c)
	el.CreateAttr("fill", "none")
	el.CreateAttr("stroke", value)
	el.CreateAttr("stroke-width", format(width))
	if opacity != "" {
		el.CreateAttr("stroke-opacity", opacity)
	}
}

func (o *Output) StartElementContents(e backend.Element) {
	g := o.current().CreateElement("g")
	g.CreateAttr("class", e.Tag)
	if t := e.Transform; !t.IsIdentity() {
		g.CreateAttr("transform", fmt.Sprintf("matrix(%s %s %s %s %s %s)",
			format(t.A), format(t.B), format(t.C), format(t.D), format(t.E), format(t.F)))
	}
	o.stack = append(o.stack, g)
}

func (o *Output) FinishElementContents(backend.Element) {
	if len(o.stack) > 1 {
		o.stack = o.stack[:len(o.stack)-1]
	}
}

// the Canvas methods draw into the current group

func (o *Output) FillRect(r backend.Rect, c pr.Color) {
	if c.IsTransparent() || r.IsEmpty() {
		return
	}
	rect := o.current().CreateElement("rect")
	setRect(rect, r)
	setFill(rect, c)
}

func (o *Output) StrokeRect(r backend.Rect, c pr.Color, lineWidth Fl) {
	rect := o.current().CreateElement("rect")
	inset := lineWidth / 2
	setRect(rect, backend.Rect{X: r.X + inset, Y: r.Y + inset, Width: r.Width - lineWidth, Height: r.Height - lineWidth})
	setStroke(rect, c, lineWidth)
}

// DrawImage embeds `img` as a PNG data URL.
func (o *Output) DrawImage(img image.Image, dst backend.Rect) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.WarningLogger.Printf("Failed to encode image: %s", err)
		return
	}
	el := o.current().CreateElement("image")
	setRect(el, dst)
	el.CreateAttr("preserveAspectRatio", "none")
	el.CreateAttr("href", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// withGroup runs `draw` with `g` as current group.
func (o *Output) withGroup(g *etree.Element, draw func()) {
	o.stack = append(o.stack, g)
	draw()
	o.stack = o.stack[:len(o.stack)-1]
}

func (o *Output) RenderElementBackground(bg backend.Background) {
	g := o.clipped(bg.Clip)
	if g == nil {
		return
	}
	o.withGroup(g, func() {
		o.FillRect(bg.BorderBox, bg.Color)
		if bg.Image != nil {
			bg.Image.Draw(o, bg.PaddingBox)
		}
		o.drawBorders(bg.BorderBox, bg.PaddingBox, bg.Borders)
	})
}

func (o *Output) drawBorders(outer, inner backend.Rect, borders [4]backend.Border) {
	ox1, oy1 := outer.X+outer.Width, outer.Y+outer.Height
	ix1, iy1 := inner.X+inner.Width, inner.Y+inner.Height
	quads := [4][4][2]Fl{
		pr.SideTop:    {{outer.X, outer.Y}, {ox1, outer.Y}, {ix1, inner.Y}, {inner.X, inner.Y}},
		pr.SideRight:  {{ox1, outer.Y}, {ox1, oy1}, {ix1, iy1}, {ix1, inner.Y}},
		pr.SideBottom: {{outer.X, oy1}, {ox1, oy1}, {ix1, iy1}, {inner.X, iy1}},
		pr.SideLeft:   {{outer.X, outer.Y}, {outer.X, oy1}, {inner.X, iy1}, {inner.X, inner.Y}},
	}
	for side, border := range borders {
		if border.Width <= 0 || border.Color.IsTransparent() {
			continue
		}
		q := quads[side]
		switch border.Style {
		case pr.BorderNone, pr.BorderHidden:
		case pr.BorderDashed, pr.BorderDotted:
			line := o.current().CreateElement("line")
			line.CreateAttr("x1", format((q[0][0]+q[3][0])/2))
			line.CreateAttr("y1", format((q[0][1]+q[3][1])/2))
			line.CreateAttr("x2", format((q[1][0]+q[2][0])/2))
			line.CreateAttr("y2", format((q[1][1]+q[2][1])/2))
			setStroke(line, border.Color, border.Width)
			dash := border.Width
			if border.Style == pr.BorderDashed {
				dash *= 3
			}
			line.CreateAttr("stroke-dasharray", format(dash))
		default:
			points := make([]string, len(q))
			for i, p := range q {
				points[i] = format(p[0]) + "," + format(p[1])
			}
			poly := o.current().CreateElement("polygon")
			poly.CreateAttr("points", strings.Join(points, " "))
			setFill(poly, border.Color)
		}
	}
}

func (o *Output) RenderTextContent(t backend.TextRun) {
	if t.Color.IsTransparent() {
		return
	}
	g := o.clipped(t.Clip)
	if g == nil {
		return
	}
	el := g.CreateElement("text")
	el.CreateAttr("x", format(t.X))
	el.CreateAttr("y", format(t.Baseline))
	el.CreateAttr("font-family", t.Font.Family)
	el.CreateAttr("font-size", format(t.Font.Size))
	if t.Font.Bold {
		el.CreateAttr("font-weight", "bold")
	}
	if t.Font.Italic {
		el.CreateAttr("font-style", "italic")
	}
	if t.Decoration != 0 {
		var decorations []string
		if t.Decoration&pr.Underline != 0 {
			decorations = append(decorations, "underline")
		}
		if t.Decoration&pr.Overline != 0 {
			decorations = append(decorations, "overline")
		}
		if t.Decoration&pr.LineThrough != 0 {
			decorations = append(decorations, "line-through")
		}
		el.CreateAttr("text-decoration", strings.Join(decorations, " "))
	}
	el.CreateAttr("xml:space", "preserve")
	setFill(el, t.Color)
	el.SetText(t.Text)
}

func (o *Output) RenderReplacedContent(r backend.Replaced) {
	if r.Content == nil {
		return
	}
	g := o.clipped(r.Clip)
	if g == nil {
		return
	}
	o.withGroup(g, func() { r.Content.Draw(o, r.ContentBox) })
}

func (o *Output) RenderMarker(m backend.Marker) {
	switch m.Kind {
	case pr.ListStyleDisc, pr.ListStyleCircle:
		el := o.current().CreateElement("ellipse")
		el.CreateAttr("cx", format(m.Box.X+m.Box.Width/2))
		el.CreateAttr("cy", format(m.Box.Y+m.Box.Height/2))
		if m.Kind == pr.ListStyleDisc {
			el.CreateAttr("rx", format(m.Box.Width/2))
			el.CreateAttr("ry", format(m.Box.Height/2))
			setFill(el, m.Color)
		} else {
			el.CreateAttr("rx", format(m.Box.Width/2-0.5))
			el.CreateAttr("ry", format(m.Box.Height/2-0.5))
			setStroke(el, m.Color, 1)
		}
	case pr.ListStyleSquare:
		el := o.current().CreateElement("rect")
		setRect(el, m.Box)
		setFill(el, m.Color)
	}
}
