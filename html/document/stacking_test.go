package document

import (
	"testing"

	tu "github.com/benoitkugler/cssbox/utils/testutils"
)

// Test CSS stacking contexts.

type serializedStacking struct {
	tag           string
	blockAndCells []string
	floats        []serializedStacking
	zeroZs        []serializedStacking
}

func serializeStacking(d *Document, context StackingContext) serializedStacking {
	out := serializedStacking{
		tag: d.Tree.Box(context.box).Tag(),
	}
	for _, b := range context.blocksAndCells {
		out.blockAndCells = append(out.blockAndCells, d.Tree.Box(b).Tag())
	}
	for _, c := range context.floats {
		out.floats = append(out.floats, serializeStacking(d, c))
	}
	for _, c := range context.zeroZContexts {
		out.zeroZs = append(out.zeroZs, serializeStacking(d, c))
	}
	return out
}

func TestNested(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, data := range []struct {
		source   string
		contexts serializedStacking
	}{
		{
			`<p id=lorem>x</p><div style="position: relative"><p id=lipsum>y</p></div>`,
			serializedStacking{
				"html", []string{"body", "p"}, nil, []serializedStacking{
					{"div", []string{"p"}, nil, nil},
				},
			},
		},
		{
			`<div style="position: relative"><p style="position: relative">x</p></div>`,
			serializedStacking{
				"html", []string{"body"}, nil, []serializedStacking{
					{"div", nil, nil, []serializedStacking{
						{"p", nil, nil, nil},
					}},
				},
			},
		},
		{
			`<div style="float: left"><p style="transform: scale(2)">x</p></div><ul><li>a</li></ul>`,
			serializedStacking{
				"html", []string{"body", "ul", "li"}, []serializedStacking{
					{"div", nil, nil, []serializedStacking{
						{"p", nil, nil, nil},
					}},
				}, nil,
			},
		},
	} {
		d := renderHTML(t, data.source, true)
		html := d.Tree.RootElement
		tu.AssertEqual(t, serializeStacking(d, NewStackingContext(d.Tree, html)), data.contexts)
	}
}
