package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/benoitkugler/cssbox/backend"
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/html/document"
	"github.com/benoitkugler/cssbox/html/tree"
	"github.com/benoitkugler/cssbox/matrix"
	"github.com/benoitkugler/cssbox/text"
	tu "github.com/benoitkugler/cssbox/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseCSS = `<style>html { font-size: 13px; line-height: 1 } body { margin: 0 }</style>`

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func renderImage(t *testing.T, content string, width, height Fl) image.Image {
	t.Helper()
	doc, err := tree.NewHTML([]byte(baseCSS+content), "", nil)
	require.NoError(t, err)
	d := document.Render(doc, document.Options{ViewportWidth: width, ViewportHeight: height, HTMLExtensions: true, Fonts: text.FixedFonts{}})
	return Render(d).Image()
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestBackgroundsAndBorders(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	img := renderImage(t, `<div style="background:red;width:10px;height:10px"></div>`+
		`<div style="border:2px solid blue;width:6px;height:6px"></div>`, 50, 50)
	assert.Equal(t, image.Rect(0, 0, 50, 50), img.Bounds())
	assert.Equal(t, red, pixel(img, 5, 5))
	assert.Equal(t, white, pixel(img, 15, 5))
	assert.Equal(t, blue, pixel(img, 0, 10))
	assert.Equal(t, blue, pixel(img, 9, 19))
	assert.Equal(t, white, pixel(img, 5, 15))
}

func TestTransformedElement(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	img := renderImage(t, `<div style="width:10px;height:10px;background:red;transform:translate(20px, 0)"></div>`, 50, 50)
	assert.Equal(t, white, pixel(img, 5, 5))
	assert.Equal(t, red, pixel(img, 25, 5))
}

func TestOverflowClipping(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	img := renderImage(t, `<div style="overflow:hidden;width:10px;height:10px">`+
		`<div style="background:red;width:30px;height:30px"></div></div>`, 50, 50)
	assert.Equal(t, red, pixel(img, 5, 5))
	assert.Equal(t, white, pixel(img, 15, 5))
	assert.Equal(t, white, pixel(img, 5, 15))
}

func TestTextIsDrawn(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	img := renderImage(t, `<p style="margin:0">MMMM</p>`, 50, 20)
	inked := 0
	for y := 0; y < 13; y++ {
		for x := 0; x < 28; x++ {
			if pixel(img, x, y) != white {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 10)
	assert.Equal(t, white, pixel(img, 40, 5))
}

func TestListMarker(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	img := renderImage(t, `<ul style="margin:0;padding-left:40px"><li>a</li></ul>`, 100, 20)
	// the disc is centered 1.2em - 0.3em left of the content box
	cx, cy := 40-0.9*13, 11-0.3*13
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, pixel(img, int(cx), int(cy)))
}

func TestApplyTransform(t *testing.T) {
	for _, m := range []matrix.Transform{
		matrix.Translation(3, 4),
		matrix.Scaling(2, 3),
		matrix.Rotation(0.5),
		matrix.Mul(matrix.Skew(0.3, 0), matrix.Scaling(2, 1)),
		matrix.Mul(matrix.Translation(1, 2), matrix.Mul(matrix.Rotation(1), matrix.Skew(0.2, 0.1))),
	} {
		out := New(10, 10, text.FixedFonts{})
		out.applyTransform(m)
		x, y := out.dc.TransformPoint(1, 2)
		assert.InDelta(t, m.A*1+m.C*2+m.E, x, 1e-4)
		assert.InDelta(t, m.B*1+m.D*2+m.F, y, 1e-4)
	}
}

func TestWritePNG(t *testing.T) {
	out := New(12, 7, text.FixedFonts{})
	out.FillRect(backend.Rect{Width: 6, Height: 7}, pr.Color{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, out.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 7), img.Bounds())
	assert.Equal(t, red, pixel(img, 2, 2))
	assert.Equal(t, white, pixel(img, 8, 2))
}

func TestDrawImageScaled(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.SetNRGBA(0, 0, blue)
	src.SetNRGBA(1, 0, blue)
	src.SetNRGBA(0, 1, blue)
	src.SetNRGBA(1, 1, blue)
	out := New(20, 20, text.FixedFonts{})
	out.DrawImage(src, backend.Rect{X: 4, Y: 4, Width: 8, Height: 8})
	assert.Equal(t, blue, pixel(out.Image(), 8, 8))
	assert.Equal(t, white, pixel(out.Image(), 14, 14))
}
