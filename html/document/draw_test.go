package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benoitkugler/cssbox/backend"
	"github.com/benoitkugler/cssbox/config"
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/html/tree"
	"github.com/benoitkugler/cssbox/text"
	tu "github.com/benoitkugler/cssbox/utils/testutils"
	"github.com/benoitkugler/cssbox/utils/testutils/tracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseCSS = `<style>html { font-size: 13px; line-height: 1 } body { margin: 0 }</style>`

var (
	red  = pr.Color{R: 255, A: 255}
	lime = pr.Color{G: 255, A: 255}
	blue = pr.Color{B: 255, A: 255}
)

func renderHTML(t *testing.T, content string, extensions bool) *Document {
	t.Helper()
	doc, err := tree.NewHTML([]byte(baseCSS+content), "", nil)
	require.NoError(t, err)
	return Render(doc, Options{ViewportWidth: 200, ViewportHeight: 100, HTMLExtensions: extensions, Fonts: text.FixedFonts{}})
}

type op struct {
	kind  string // start, finish, bg, text, replaced, marker
	tag   string
	color pr.Color
	text  string
	box   backend.Rect
	run   backend.TextRun
	mark  backend.Marker
}

// recorder stores the painting operations.
type recorder struct{ ops []op }

func (r *recorder) StartElementContents(e backend.Element) {
	r.ops = append(r.ops, op{kind: "start", tag: e.Tag})
}

func (r *recorder) FinishElementContents(e backend.Element) {
	r.ops = append(r.ops, op{kind: "finish", tag: e.Tag})
}

func (r *recorder) RenderElementBackground(b backend.Background) {
	r.ops = append(r.ops, op{kind: "bg", color: b.Color, box: b.BorderBox})
}

func (r *recorder) RenderTextContent(t backend.TextRun) {
	r.ops = append(r.ops, op{kind: "text", text: t.Text, run: t, color: t.Color})
}

func (r *recorder) RenderReplacedContent(rp backend.Replaced) {
	r.ops = append(r.ops, op{kind: "replaced", box: rp.ContentBox})
}

func (r *recorder) RenderMarker(m backend.Marker) {
	r.ops = append(r.ops, op{kind: "marker", box: m.Box, mark: m})
}

// summary returns a compact description of the operations.
func (r *recorder) summary() []string {
	var out []string
	for _, o := range r.ops {
		switch o.kind {
		case "start", "finish":
			out = append(out, o.kind+" "+o.tag)
		case "bg":
			out = append(out, "bg "+o.color.Hex())
		case "text":
			out = append(out, "text "+strings.TrimSpace(o.text))
		default:
			out = append(out, o.kind)
		}
	}
	return out
}

func (r *recorder) filter(kind string) []op {
	var out []op
	for _, o := range r.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func paint(d *Document) *recorder {
	var r recorder
	d.Paint(&r)
	return &r
}

func findBox(t *testing.T, d *Document, id string) *bo.Box {
	t.Helper()
	for _, b := range d.Tree.Boxes {
		if b != nil && b.Element != nil && b.Pseudo == "" && b.Element.Get("id") == id {
			return b
		}
	}
	t.Fatalf("no box for #%s", id)
	return nil
}

func TestPaintOrder(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<div style="background:red;height:10px"></div>`+
		`<div style="float:left;background:blue;width:5px;height:5px"></div>`+
		`<div style="position:relative;background:lime">x</div>`, true)
	assert.Equal(t, []string{
		"start viewport",
		"bg #ff0000",
		"start div", "bg #0000ff", "finish div",
		"start div", "bg #00ff00", "text x", "finish div",
		"finish viewport",
	}, paint(d).summary())
}

func TestPaintInlineBlockAtomically(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<p>a <span style="display:inline-block;background:red">b</span> c</p>`, true)
	assert.Equal(t, []string{
		"start viewport",
		"text a",
		"start span", "bg #ff0000", "text b", "finish span",
		"text c",
		"finish viewport",
	}, paint(d).summary())
}

func TestCanvasBackground(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<body style="background:red"><div style="height:10px"></div></body>`, true)
	assert.Equal(t, red, d.Background)
	bgs := paint(d).filter("bg")
	// the body background is only painted on the canvas
	require.Len(t, bgs, 1)
	assert.Equal(t, backend.Rect{Width: 200, Height: 100}, bgs[0].box)

	d = renderHTML(t, `<body style="background:red"><div style="height:10px"></div></body>`, false)
	assert.True(t, d.Background.IsTransparent())
	bgs = paint(d).filter("bg")
	require.Len(t, bgs, 1)
	assert.Equal(t, Fl(10), bgs[0].box.Height)

	d = renderHTML(t, `<html style="background:blue"><body style="background:red">x</body></html>`, true)
	assert.Equal(t, blue, d.Background)
	assert.Equal(t, []string{"start viewport", "bg #0000ff", "bg #ff0000", "text x", "finish viewport"}, paint(d).summary())
}

func TestVisibilityHidden(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<div style="visibility:hidden;background:red">hidden <span style="visibility:visible">shown</span></div>`, true)
	r := paint(d)
	assert.Empty(t, r.filter("bg"))
	texts := r.filter("text")
	require.Len(t, texts, 1)
	assert.Equal(t, "shown", texts[0].text)
	// hidden content still takes space
	assert.Equal(t, Fl(7*7), texts[0].run.X)
}

func TestListMarkers(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<ul style="margin:0"><li id=g>a</li></ul><ol style="margin:0"><li id=n1>a</li><li id=n2>b</li></ol>`, true)
	r := paint(d)

	markers := r.filter("marker")
	require.Len(t, markers, 1)
	g := findBox(t, d, "g")
	assert.Equal(t, pr.ListStyleDisc, markers[0].mark.Kind)
	assert.InDelta(t, g.AbsContentX()-1.2*13, markers[0].box.X, 1e-4)
	assert.InDelta(t, g.AbsContentY()+11-0.6*13, markers[0].box.Y, 1e-4)
	assert.InDelta(t, 0.6*13, markers[0].box.Width, 1e-4)

	var numbers []op
	for _, o := range r.filter("text") {
		if strings.HasSuffix(o.text, ". ") {
			numbers = append(numbers, o)
		}
	}
	require.Len(t, numbers, 2)
	for i, id := range []string{"n1", "n2"} {
		li := findBox(t, d, id)
		run := numbers[i].run
		assert.Equal(t, markerText(pr.ListStyleDecimal, i+1), run.Text)
		assert.Equal(t, Fl(21), run.Width)
		assert.Equal(t, li.AbsContentX(), run.X+run.Width)
		assert.Equal(t, li.AbsContentY()+11, run.Baseline)
	}
}

func TestMarkerText(t *testing.T) {
	assert.Equal(t, "3. ", markerText(pr.ListStyleDecimal, 3))
	assert.Equal(t, "IV. ", markerText(pr.ListStyleUpperRoman, 4))
	assert.Equal(t, "xii. ", markerText(pr.ListStyleLowerRoman, 12))
	assert.Equal(t, "b. ", markerText(pr.ListStyleLowerAlpha, 2))
	assert.Equal(t, "AB. ", markerText(pr.ListStyleUpperAlpha, 28))
}

func TestCellBackgroundFallback(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, data := range []struct {
		source string
		colors []pr.Color
	}{
		{`<table><colgroup style="background:blue"><col></colgroup>` +
			`<tr style="background:red"><td>a</td><td style="background:lime">b</td></tr></table>`, []pr.Color{red, lime}},
		{`<table><col style="background:blue"><tr><td>a</td></tr></table>`, []pr.Color{blue}},
		{`<table><colgroup style="background:blue"><col></colgroup><tr><td>a</td></tr></table>`, []pr.Color{blue}},
		{`<table><tbody style="background:lime"><tr><td>a</td></tr></tbody></table>`, []pr.Color{lime}},
	} {
		var colors []pr.Color
		for _, o := range paint(renderHTML(t, data.source, true)).filter("bg") {
			colors = append(colors, o.color)
		}
		assert.Equal(t, data.colors, colors, data.source)
	}
}

func TestTransform(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<div style="height:10px"></div><div style="transform:translate(5px, 6px);width:20px;height:20px">x</div>`, true)
	var buf bytes.Buffer
	d.Paint(tracer.NewDrawer(&buf))
	out := buf.String()
	assert.Contains(t, out, "<div> transform")
	assert.Contains(t, out, `Text "x"`)
}

func TestReplacedPainted(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<p><img alt="i" width=30 height=10></p>`, true)
	rs := paint(d).filter("replaced")
	require.Len(t, rs, 1)
	assert.Equal(t, Fl(30), rs[0].box.Width)
	assert.Equal(t, Fl(10), rs[0].box.Height)
}

func TestRelayout(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	d := renderHTML(t, `<div style="height:10px"></div>`, true)
	assert.Equal(t, Fl(200), d.Width)
	d.Layout(300, 50)
	assert.Equal(t, Fl(300), d.Width)
	assert.Equal(t, Fl(50), d.Height)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Fonts.Fixed = true
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, Fl(cfg.Viewport.Width), opts.ViewportWidth)
	assert.Equal(t, cfg.HTML.Extensions, opts.HTMLExtensions)
	assert.Equal(t, text.FixedFonts{}, opts.Fonts)
}
