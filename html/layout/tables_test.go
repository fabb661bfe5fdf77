package layout

import (
	"testing"

	bo "github.com/benoitkugler/cssbox/html/boxes"
	tu "github.com/benoitkugler/cssbox/utils/testutils"
	"github.com/stretchr/testify/assert"
)

func TestTableAbsoluteColumns(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := layoutHTML(t, `<table id=t style="border-spacing:0"><tr>`+
		`<td id=a style="padding:0;width:30px;height:10px"></td>`+
		`<td id=b style="padding:0;width:50px;height:10px"></td>`+
		`</tr></table>`, 200, 100)

	assert.Equal(t, rect(0, 0, 30, 10), find(t, tr, "a").BorderBox())
	assert.Equal(t, rect(30, 0, 50, 10), find(t, tr, "b").BorderBox())
	assert.Equal(t, bo.Size{Width: 80, Height: 10}, find(t, tr, "t").Content)
}

func TestTableSpacingAndColspan(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := layoutHTML(t, `<table id=t style="border-spacing:2px">`+
		`<tr><td id=s colspan=2 style="padding:0;height:10px"></td></tr>`+
		`<tr><td id=a style="padding:0;width:20px;height:10px"></td><td id=b style="padding:0;width:20px;height:10px"></td></tr>`+
		`</table>`, 200, 100)

	assert.Equal(t, rect(2, 2, 42, 10), find(t, tr, "s").BorderBox())
	assert.Equal(t, rect(2, 14, 20, 10), find(t, tr, "a").BorderBox())
	assert.Equal(t, rect(24, 14, 20, 10), find(t, tr, "b").BorderBox())
	assert.Equal(t, bo.Size{Width: 46, Height: 26}, find(t, tr, "t").Content)
}

func TestTablePercentColumns(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := layoutHTML(t, `<table style="width:100px;border-spacing:0"><tr>`+
		`<td id=a style="width:25%;padding:0"></td><td id=b style="padding:0"></td>`+
		`</tr></table>`, 200, 100)

	a, b := find(t, tr, "a"), find(t, tr, "b")
	assert.Equal(t, Fl(25), a.BorderBox().Width)
	assert.Equal(t, Fl(25), b.BorderBox().X)
	assert.Equal(t, Fl(75), b.BorderBox().Width)
}

func TestTableRowspan(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := layoutHTML(t, `<table style="border-spacing:0">`+
		`<tr><td id=r rowspan=2 style="padding:0;height:50px;width:10px"></td><td id=a style="padding:0;height:10px;width:10px"></td></tr>`+
		`<tr><td id=b style="padding:0;height:10px;width:10px"></td></tr>`+
		`</table>`, 200, 100)

	r, a, b := find(t, tr, "r"), find(t, tr, "a"), find(t, tr, "b")
	assert.Equal(t, rect(0, 0, 10, 50), r.BorderBox())
	assert.Equal(t, Fl(0), a.BorderBox().Y)
	assert.Equal(t, Fl(10), b.BorderBox().Y)
	// the last row takes the remaining height of the spanning cell
	assert.Equal(t, Fl(40), tr.Box(b.Parent).Content.Height)
}

func TestCellVerticalAlign(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := layoutHTML(t, `<table style="border-spacing:0"><tr>`+
		`<td style="padding:0;height:40px;width:10px"></td>`+
		`<td style="padding:0;vertical-align:bottom;width:20px"><div id=d style="height:10px"></div></td>`+
		`<td style="padding:0;vertical-align:middle;width:20px"><div id=m style="height:10px"></div></td>`+
		`</tr></table>`, 200, 100)

	assert.Equal(t, Fl(30), find(t, tr, "d").AbsBounds.Y)
	assert.Equal(t, Fl(15), find(t, tr, "m").AbsBounds.Y)
}

func TestTableCaption(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := layoutHTML(t, `<table id=t style="border-spacing:0"><caption id=c style="height:7px"></caption>`+
		`<tr><td id=a style="padding:0;width:30px;height:10px"></td></tr></table>`, 200, 100)

	assert.Equal(t, Fl(0), find(t, tr, "c").AbsBounds.Y)
	assert.Equal(t, Fl(7), find(t, tr, "a").BorderBox().Y)
	assert.Equal(t, Fl(17), find(t, tr, "t").Content.Height)

	tr = layoutHTML(t, `<table id=t style="border-spacing:0;caption-side:bottom"><caption id=c style="height:7px"></caption>`+
		`<tr><td id=a style="padding:0;width:30px;height:10px"></td></tr></table>`, 200, 100)
	assert.Equal(t, Fl(10), find(t, tr, "c").AbsBounds.Y)
	assert.Equal(t, Fl(0), find(t, tr, "a").BorderBox().Y)
}

func TestShareWidth(t *testing.T) {
	cols := []tableColumn{{min: 10, max: 30}, {min: 0, max: 10}}
	ptrs := []*tableColumn{&cols[0], &cols[1]}
	weight := func(c *tableColumn) Fl { return c.max }

	used := shareWidth(ptrs, 20, weight)
	assert.Equal(t, Fl(20), used)
	assert.Equal(t, Fl(15), cols[0].width)
	assert.Equal(t, Fl(5), cols[1].width)

	// the first column is kept at its minimum
	used = shareWidth(ptrs, 12, weight)
	assert.Equal(t, Fl(12), used)
	assert.Equal(t, Fl(10), cols[0].width)
	assert.Equal(t, Fl(2), cols[1].width)

	// no weight: equal shares
	cols = []tableColumn{{}, {}}
	shareWidth([]*tableColumn{&cols[0], &cols[1]}, 30, weight)
	assert.Equal(t, Fl(15), cols[0].width)
	assert.Equal(t, Fl(15), cols[1].width)
}

func TestColumnsFillTable(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	tr := layoutHTML(t, `<table id=t style="width:300px;border-spacing:3px"><tr>`+
		`<td id=a>short</td><td id=b style="width:20%">some longer text</td><td id=c style="width:40px">x</td>`+
		`</tr><tr><td colspan=2>spanning cell</td><td>y</td></tr></table>`, 400, 100)

	var sum Fl
	for _, id := range []string{"a", "b", "c"} {
		sum += find(t, tr, id).BorderBox().Width
	}
	// the columns and the spacing fill the declared width
	assert.InDelta(t, 300, sum+4*3, 0.001)
	assert.Equal(t, Fl(300), find(t, tr, "t").Content.Width)
	assert.InDelta(t, 0.2*288, find(t, tr, "b").BorderBox().Width, 0.001)
	// the declared width includes the padding of the cell
	assert.Equal(t, Fl(42), find(t, tr, "c").BorderBox().Width)
}
