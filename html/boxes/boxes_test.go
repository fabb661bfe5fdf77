package boxes

import (
	"strconv"
	"strings"
	"testing"

	"github.com/benoitkugler/cssbox/html/tree"
	"github.com/benoitkugler/cssbox/images"
	tu "github.com/benoitkugler/cssbox/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, content string) *Tree {
	t.Helper()
	doc, err := tree.NewHTML([]byte(content), "", nil)
	require.NoError(t, err)
	styles := tree.NewStyleFor(doc, true)
	return Build(doc.Root, styles, nil, Options{HTMLExtensions: true, BaseURL: doc.BaseUrl})
}

// serialize returns a compact description of the box `id`:
// text boxes are quoted, other boxes are written tag:Kind[children].
func serialize(tr *Tree, id BoxID) string {
	b := tr.Box(id)
	if b.Kind == Text {
		return strconv.Quote(b.Text.Content())
	}
	s := b.Tag() + ":" + b.Kind.String()
	if len(b.Children) == 0 {
		return s
	}
	children := make([]string, len(b.Children))
	for i, c := range b.Children {
		children[i] = serialize(tr, c)
	}
	return s + "[" + strings.Join(children, " ") + "]"
}

func bodyOf(t *testing.T, tr *Tree) BoxID {
	t.Helper()
	require.NotEqual(t, NoBox, tr.RootElement)
	for _, c := range tr.Box(tr.RootElement).Children {
		if tr.Box(c).Tag() == "body" {
			return c
		}
	}
	t.Fatal("missing body box")
	return NoBox
}

// assertBody checks the serialized children of the body box.
func assertBody(t *testing.T, tr *Tree, expected ...string) {
	t.Helper()
	body := tr.Box(bodyOf(t, tr))
	var got []string
	for _, c := range body.Children {
		got = append(got, serialize(tr, c))
	}
	assert.Equal(t, expected, got)
}

func TestBoxTree(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<p>Lorem <em>ipsum</em></p>`)
	assert.Equal(t, Viewport, tr.Box(tr.Root()).Kind)
	assert.Equal(t, []BoxID{tr.RootElement}, tr.Box(tr.Root()).Children)
	assert.Equal(t, "html:Block", strings.SplitN(serialize(tr, tr.RootElement), "[", 2)[0])
	assertBody(t, tr, `p:Block["Lorem " em:Inline["ipsum"]]`)
}

func TestContainingBlocks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `
	<div id="pos" style="position: relative">
		<p><span id="abs" style="position: absolute">a</span></p>
		<section style="overflow: hidden"><em>b</em></section>
	</div>`)
	var pos, abs, p, section, em BoxID
	tr.Walk(tr.Root(), func(id BoxID, b *Box) bool {
		if b.Element == nil {
			return true
		}
		switch {
		case b.Element.Get("id") == "pos":
			pos = id
		case b.Element.Get("id") == "abs":
			abs = id
		case b.Tag() == "p":
			p = id
		case b.Tag() == "section":
			section = id
		case b.Tag() == "em":
			em = id
		}
		return true
	})
	// the absolute box is blockified, and moved to its containing block
	assert.Equal(t, Block, tr.Box(abs).Kind)
	assert.Equal(t, pos, tr.Box(abs).Cblock)
	assert.Equal(t, pos, tr.Box(abs).Parent)
	assert.NotContains(t, tr.Box(p).Children, abs)
	// first in-flow content of <p>: the static position is the start of <p>
	assert.Equal(t, NoBox, tr.Box(abs).AbsReference)
	assert.Equal(t, p, tr.Box(abs).DOMParent)

	assert.Equal(t, section, tr.Box(em).Cblock)
	assert.Equal(t, section, tr.Box(em).ClipBlock)
	assert.Equal(t, tr.Root(), tr.Box(p).ClipBlock)
}

func TestInlineSplitByBlock(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<div>Hello <em>World <p>Block</p> after</em> end</div>`)
	assertBody(t, tr,
		`div:Block[anon:Block["Hello " em:Inline["World"]] p:Block["Block"] anon:Block[em:Inline[" after"] " end"]]`)

	div := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	first := tr.Box(div.Children[0]).Children[1]
	second := tr.Box(div.Children[2]).Children[0]
	assert.Equal(t, second, tr.Box(first).NextTwin)
	assert.Equal(t, first, tr.Box(second).PrevTwin)
	assert.Equal(t, NoBox, tr.Box(first).PrevTwin)
	assert.Equal(t, NoBox, tr.Box(second).NextTwin)
	assert.Same(t, tr.Box(first).Element, tr.Box(second).Element)
}

func TestWhitespaceCollapsing(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<p>a <span> </span> b</p>
		<div>
			<p>c</p>
			d   e
		</div>
		<pre>  f  </pre>`)
	assertBody(t, tr,
		`p:Block["a " " b"]`,
		`div:Block[p:Block["c"] anon:Block[" d e"]]`,
		`pre:Block["  f  "]`,
	)
}

func TestFloatsInInline(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<div>text <span><b style="float: left">F</b> more</span></div>`)
	assertBody(t, tr, `div:Block["text " b:Block["F"] span:Inline[" more"]]`)

	div := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	float := tr.Box(div.Children[1])
	assert.True(t, float.IsFloating())
	assert.False(t, float.IsInFlow())
	assert.Equal(t, div.Children[0], float.AbsReference)
	assert.Equal(t, div.Children[2], float.DOMParent)
}

func TestDisplayNone(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<p style="display: none">x <em>y</em></p><p>z</p>`)
	assertBody(t, tr, `p:Block["z"]`)
}

func TestPseudoElements(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<style>
		p::before { content: "a" }
		p::after { content: "b" }
		span::before { content: "<" }
		span::after { content: ">" }
	</style>
	<p>x</p>
	<div><span>y<p>z</p>w</span></div>`)
	assertBody(t, tr,
		`p:Block[p::before:Inline["a"] "x" p::after:Inline["b"]]`,
		`div:Block[anon:Block[span:Inline[span::before:Inline["<"] "y"]] `+
			`p:Block[p::before:Inline["a"] "z" p::after:Inline["b"]] `+
			`anon:Block[span:Inline["w" span::after:Inline[">"]]]]`,
	)
}

func TestLineBreak(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<p>a<br>b</p>`)
	assertBody(t, tr, `p:Block["a" br:Inline[br::before:Inline["\n"]] "b"]`)
}

func TestListItems(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<ol><li>a</li><li>b</li><p>c</p><li>d</li></ol>`)
	ol := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	var numbers []int
	for _, c := range ol.Children {
		if b := tr.Box(c); b.Kind == ListItem {
			numbers = append(numbers, b.ListItem.Number)
		}
	}
	assert.Equal(t, []int{1, 2, 3}, numbers)
}

func TestImages(t *testing.T) {
	logs := tu.CaptureLogs()

	tr := build(t, `<p><img src="missing.png" alt="x" width=30 height=abc><img style="display: block" src="b.png"></p>`)
	assertBody(t, tr, `p:Block[anon:Block[img:InlineReplaced] img:BlockReplaced]`)

	p := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	img := tr.Box(tr.Box(p.Children[0]).Children[0])
	assert.Equal(t, Fl(30), img.Replaced.AttrWidth)
	assert.Equal(t, Fl(-1), img.Replaced.AttrHeight)
	assert.Equal(t, images.Placeholder{Alt: "x"}, img.Replaced.Content)

	logs.AssertLogs(t, `Invalid height attribute "abc"`)
}

func TestImagesWithoutExtensions(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	doc, err := tree.NewHTML([]byte(`<p><img src="a.png">a</p>`), "", nil)
	require.NoError(t, err)
	tr := Build(doc.Root, tree.NewStyleFor(doc, true), nil, Options{})
	assertBody(t, tr, `p:Block[img:Inline "a"]`)
}

func TestTableStructure(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<table>
		<caption>C</caption>
		<colgroup span=2></colgroup>
		<col span=3>
		<thead><tr><td>h</td></tr></thead>
		<tfoot><tr><td>f</td></tr></tfoot>
		<tbody><tr><td>b</td></tr></tbody>
	</table>`)
	table := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	require.Equal(t, Table, table.Kind)
	data := table.Table
	assert.Equal(t, TableCaption, tr.Box(data.Caption).Kind)
	assert.Len(t, data.Columns, 5)
	for _, col := range data.Columns {
		assert.False(t, tr.Box(col).Displayed)
	}
	require.Len(t, data.Bodies, 1)
	assert.Equal(t, []BoxID{data.Header, data.Bodies[0], data.Footer}, data.Groups())
	assert.Equal(t, `tbody:TableRowGroup[tr:TableRow[td:TableCell["f"]]]`, serialize(tr, data.Footer))
}

// cellPositions returns the column of each cell, row by row.
func cellPositions(tr *Tree, group BoxID) (columns, colspans, rowspans [][]int) {
	for _, row := range tr.Box(group).Group.Rows {
		var cols, cs, rs []int
		for _, cell := range tr.Box(row).Row.Cells {
			c := tr.Box(cell).Cell
			cols = append(cols, c.Column)
			cs = append(cs, c.Colspan)
			rs = append(rs, c.Rowspan)
		}
		columns = append(columns, cols)
		colspans = append(colspans, cs)
		rowspans = append(rowspans, rs)
	}
	return
}

func TestColspanRowspan(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	// +---+---+---+
	// | A | B | C | X
	// +---+---+---+
	// | D |     E | X
	// +---+---+   +---+
	// |  F ...|   | G |   <-- overlap
	// +---+---+---+---+
	// | H | X   X   X
	// +---+---+
	// | I | J | X   X
	// +---+---+
	tr := build(t, `<table>
		<tr><td>A<td>B<td>C
		<tr><td>D<td colspan=2 rowspan=2>E
		<tr><td colspan=2>F<td>G
		<tr><td>H
		<tr><td>I<td>J
	</table>`)
	table := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	group := table.Table.Bodies[0]

	columns, colspans, rowspans := cellPositions(tr, group)
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 1}, {0, 3}, {0}, {0, 1}}, columns)
	assert.Equal(t, [][]int{{1, 1, 1}, {1, 2}, {2, 1}, {1}, {1, 1}}, colspans)
	assert.Equal(t, [][]int{{1, 1, 1}, {1, 2}, {1, 1}, {1}, {1, 1}}, rowspans)

	data := tr.Box(group).Group
	assert.Equal(t, 4, data.NumCols)
	// the first placed cell keeps the overlapping slot
	e := tr.Box(data.Rows[1]).Row.Cells[1]
	f := tr.Box(data.Rows[2]).Row.Cells[0]
	assert.Equal(t, e, data.Grid[1][2])
	assert.Equal(t, f, data.Grid[0][2])
	assert.Equal(t, NoBox, data.Grid[3][0])

	// each slot references a cell covering it
	for c, column := range data.Grid {
		for r, cellID := range column {
			if cellID == NoBox {
				continue
			}
			cell := tr.Box(cellID).Cell
			assert.True(t, cell.Column <= c && c < cell.Column+cell.Colspan)
			assert.True(t, cell.Row <= r && r < cell.Row+cell.Rowspan)
		}
	}
}

func TestSpanAttributes(t *testing.T) {
	logs := tu.CaptureLogs()

	tr := build(t, `<table>
		<tr><td rowspan=5>A<td colspan=abc>B<td colspan=0>C
		<tr><td>D
	</table>`)
	logs.AssertLogs(t,
		`Invalid colspan attribute "abc"`,
		`Invalid colspan attribute "0"`,
		"Rowspan 5 of cell at row 0 exceeds the 2 rows",
	)

	table := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	columns, colspans, rowspans := cellPositions(tr, table.Table.Bodies[0])
	assert.Equal(t, [][]int{{0, 1, 2}, {1}}, columns)
	assert.Equal(t, [][]int{{1, 1, 1}, {1}}, colspans)
	assert.Equal(t, [][]int{{2, 1, 1}, {1}}, rowspans)
}

func TestAnonymousTableParts(t *testing.T) {
	logs := tu.CaptureLogs()

	tr := build(t, `<div style="display: table-cell">x</div>`)
	logs.AssertLogs(t, "Missing TableRow parent for the TableCell children")
	assertBody(t, tr, `anon:Table[anon:TableRowGroup[anon:TableRow[div:TableCell["x"]]]]`)

	table := tr.Box(tr.Box(bodyOf(t, tr)).Children[0])
	assert.Len(t, table.Table.Bodies, 1)
}

func TestAnonymousCells(t *testing.T) {
	logs := tu.CaptureLogs()

	tr := build(t, `<div style="display: table-row"><span>a</span><div style="display: table-cell">b</div></div>`)
	row := NoBox
	tr.Walk(tr.Root(), func(id BoxID, b *Box) bool {
		if b.Kind == TableRow {
			row = id
		}
		return true
	})
	require.NotEqual(t, NoBox, row)
	assert.Equal(t, `div:TableRow[anon:TableCell[span:Inline["a"]] div:TableCell["b"]]`, serialize(tr, row))
	for _, cell := range tr.Box(row).Row.Cells {
		assert.Equal(t, row, tr.Box(cell).Cell.OwnerRow)
	}
	// the anonymous group is not reported again
	logs.AssertLogs(t, "Missing TableRowGroup parent for the TableRow children")
}

func TestResetFlow(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := build(t, `<p>Lorem ipsum <em>dolor</em></p>`)
	n := len(tr.Boxes)
	p := tr.Box(bodyOf(t, tr))
	p = tr.Box(p.Children[0])
	assert.Equal(t, p.Children, p.Flow)

	text := tr.Box(p.Children[0])
	rest := tr.Clone(p.Children[0])
	text.Text.End = 6
	tr.Box(rest).Text.Start = 6
	text.Rest = rest
	p.Flow = append(p.Flow, rest)
	assert.Equal(t, "Lorem ", text.Text.Content())
	assert.Equal(t, "ipsum ", tr.Box(rest).Text.Content())

	tr.Reset()
	assert.Len(t, tr.Boxes, n)
	assert.Equal(t, p.Children, p.Flow)
	assert.Equal(t, "Lorem ipsum ", text.Text.Content())
	assert.Equal(t, NoBox, text.Rest)
}
