package tracer

import (
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/cssbox/backend"
)

// implements a logging backend, used for debugging

var _ backend.Renderer = &Drawer{}

// Drawer prints the painting operations it receives, indented
// by element nesting.
type Drawer struct {
	out    io.Writer
	indent int
}

// NewDrawer writes to `out`.
func NewDrawer(out io.Writer) *Drawer { return &Drawer{out: out} }

func (dr Drawer) printf(f string, args ...interface{}) {
	fmt.Fprintf(dr.out, strings.Repeat("  ", dr.indent)+f+"\n", args...)
}

func formatRect(r backend.Rect) string {
	return fmt.Sprintf("(%s, %s, %s, %s)", FormatFloat(r.X), FormatFloat(r.Y), FormatFloat(r.Width), FormatFloat(r.Height))
}

func (dr *Drawer) StartElementContents(e backend.Element) {
	if e.Transform.IsIdentity() {
		dr.printf("<%s>", e.Tag)
	} else {
		dr.printf("<%s> transform %v", e.Tag, e.Transform)
	}
	dr.indent++
}

func (dr *Drawer) FinishElementContents(e backend.Element) {
	dr.indent--
	dr.printf("</%s>", e.Tag)
}

func (dr Drawer) RenderElementBackground(b backend.Background) {
	dr.printf("Background %s color %v", formatRect(b.BorderBox), b.Color)
}

func (dr Drawer) RenderTextContent(t backend.TextRun) {
	dr.printf("Text %q at %s baseline %s", t.Text, formatRect(backend.Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}), FormatFloat(t.Baseline))
}

func (dr Drawer) RenderReplacedContent(r backend.Replaced) {
	dr.printf("Replaced %s", formatRect(r.ContentBox))
}

func (dr Drawer) RenderMarker(m backend.Marker) {
	dr.printf("Marker %d %s", m.Kind, formatRect(m.Box))
}
