package tracer

import (
	"bytes"
	"testing"

	"github.com/benoitkugler/cssbox/backend"
	"github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/matrix"
)

func TestDumpTree(t *testing.T) {
	tree := &boxes.Tree{Boxes: []*boxes.Box{
		{Kind: boxes.Viewport, Bounds: backend.Rect{Width: 100, Height: 50}, Flow: []boxes.BoxID{1}},
		{Kind: boxes.Block, Bounds: backend.Rect{X: 8, Y: 8.04, Width: 84, Height: 10}},
	}}
	var buf bytes.Buffer
	NewTracerWriter(&buf).DumpTree(tree, 0, "after layout")

	exp := "after layout\n" +
		tree.Box(0).String() + ": 0 0 100 50\n" +
		" " + tree.Box(1).String() + ": 8 8 84 10\n\n"
	if got := buf.String(); got != exp {
		t.Fatalf("expected\n%s\ngot\n%s", exp, got)
	}
}

func TestDrawer(t *testing.T) {
	var buf bytes.Buffer
	dr := NewDrawer(&buf)
	dr.StartElementContents(backend.Element{Tag: "div", Transform: matrix.Identity()})
	dr.RenderTextContent(backend.TextRun{Text: "a", X: 1, Y: 2, Width: 7, Height: 13, Baseline: 12.5})
	dr.FinishElementContents(backend.Element{Tag: "div"})

	exp := "<div>\n" +
		"  Text \"a\" at (1, 2, 7, 13) baseline 12.5\n" +
		"</div>\n"
	if got := buf.String(); got != exp {
		t.Fatalf("expected\n%s\ngot\n%s", exp, got)
	}
}
