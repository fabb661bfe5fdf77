package boxes

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/logger"
)

// normalize inserts the anonymous boxes required around the
// children of `id`.
func (b *builder) normalize(id BoxID) {
	box := b.tree.Box(id)
	switch box.Kind {
	case Table, TableRowGroup, TableRow:
		// their content is wrapped by organize
	default:
		if box.Kind.IsBlockContainer() && b.containsInFlowBlocks(id) {
			b.createAnonymousBlocks(id)
		}
	}
	// table cells require a row parent
	b.wrapTableParts(id, TableCell, pr.DisplayTableRow,
		pr.DisplayTableRow)
	// table rows require a group parent
	b.wrapTableParts(id, TableRow, pr.DisplayTableRowGroup,
		pr.DisplayTableRowGroup, pr.DisplayTableHeaderGroup, pr.DisplayTableFooterGroup)
	// table columns require a table parent
	b.wrapTableParts(id, TableColumn, pr.DisplayTable,
		pr.DisplayTable, pr.DisplayInlineTable, pr.DisplayTableColumnGroup)
	// table row groups require a table parent
	b.wrapTableParts(id, TableRowGroup, pr.DisplayTable,
		pr.DisplayTable, pr.DisplayInlineTable)
}

func (b *builder) containsInFlowBlocks(id BoxID) bool {
	for _, c := range b.tree.Box(id).Children {
		if cb := b.tree.Box(c); cb.Kind.IsBlock() && cb.IsInFlow() {
			return true
		}
	}
	return false
}

// anonymousBox creates a box inheriting from `parent`, wrapping `child`.
func (b *builder) anonymousBox(parent, child BoxID, display pr.Display) BoxID {
	p, c := b.tree.Box(parent), b.tree.Box(child)
	box := &Box{
		Kind:      kindOf(display),
		Anonymous: true,
		Style:     p.Style.AnonymousChild(display),
		Parent:    parent,
		Cblock:    c.Cblock,
		ClipBlock: c.ClipBlock,
		Displayed: true,
		Visible:   p.Style.Visibility == pr.VisibilityVisible,
	}
	b.addPayload(box)
	return b.newBox(box)
}

// createAnonymousBlocks wraps each run of inline content of a block
// containing blocks into an anonymous block. White space at the
// start of the runs is dropped.
func (b *builder) createAnonymousBlocks(id BoxID) {
	box := b.tree.Box(id)
	var (
		nest []BoxID
		adiv = NoBox
	)
	finish := func() {
		if adiv != NoBox {
			b.normalize(adiv)
			b.removeTrailingWhitespaces(adiv)
		}
		adiv = NoBox
	}
	for _, child := range box.Children {
		cb := b.tree.Box(child)
		if cb.Kind.IsBlock() {
			finish()
			nest = append(nest, child)
			continue
		}
		if adiv == NoBox && b.tree.IsWhitespace(child) {
			continue
		}
		if adiv == NoBox {
			adiv = b.anonymousBox(id, child, pr.DisplayBlock)
			nest = append(nest, adiv)
		}
		b.appendChild(adiv, child)
	}
	finish()
	b.tree.Box(id).Children = nest
}

// wrapTableParts wraps the runs of children of kind `kind` into an
// anonymous box with display `wrapper`, unless the display of the box
// `id` is one of `allowed`.
func (b *builder) wrapTableParts(id BoxID, kind Kind, wrapper pr.Display, allowed ...pr.Display) {
	box := b.tree.Box(id)
	for _, d := range allowed {
		if box.Style.Display == d {
			return
		}
	}
	var (
		nest           []BoxID
		adiv           = NoBox
		needed, report bool
	)
	for _, child := range box.Children {
		cb := b.tree.Box(child)
		if cb.Kind != kind {
			adiv = NoBox
			nest = append(nest, child)
			continue
		}
		needed = true
		// wrappers created by a previous pass are not reported again
		report = report || !cb.Anonymous
		if adiv == NoBox {
			adiv = b.anonymousBox(id, child, wrapper)
			nest = append(nest, adiv)
		}
		b.appendChild(adiv, child)
		cb.Cblock = adiv
	}
	if !needed {
		return
	}
	if report {
		logger.WarningLogger.Printf("Missing %s parent for the %s children of %s: anonymous box inserted",
			kindOf(wrapper), kind, box)
	}
	b.tree.Box(id).Children = nest
}

// organize walks the tree once it is built, numbering the list
// items and resolving the structure of the tables.
func (b *builder) organize(id BoxID) {
	box := b.tree.Box(id)
	for _, c := range box.Children {
		b.organize(c)
	}
	number := 0
	for _, c := range box.Children {
		if cb := b.tree.Box(c); cb.Kind == ListItem {
			number++
			cb.ListItem.Number = number
		}
	}
	switch box.Kind {
	case TableRow:
		b.organizeRow(id)
	case TableRowGroup:
		b.organizeGroup(id)
	case TableColumnGroup:
		b.organizeColumnGroup(id)
	case Table:
		b.organizeTable(id)
	}
}

// organizeRow collects the cells of a row, wrapping the other
// content into anonymous cells.
func (b *builder) organizeRow(id BoxID) {
	row := b.tree.Box(id)
	var (
		nest     []BoxID
		anonCell = NoBox
	)
	row.Row.Cells = row.Row.Cells[:0]
	for _, child := range row.Children {
		cb := b.tree.Box(child)
		if cb.Kind == TableCell {
			anonCell = NoBox
			nest = append(nest, child)
			continue
		}
		if anonCell == NoBox {
			anonCell = b.anonymousBox(id, child, pr.DisplayTableCell)
			b.tree.Box(anonCell).Cblock = id
			nest = append(nest, anonCell)
		}
		b.appendChild(anonCell, child)
		cb.Cblock = anonCell
	}
	row.Children = nest
	for _, child := range nest {
		cell := b.tree.Box(child)
		if cell.Anonymous && b.containsInFlowBlocks(child) {
			b.createAnonymousBlocks(child)
		}
		cell.Cell.OwnerRow = id
		row.Row.Cells = append(row.Row.Cells, child)
	}
}

// organizeGroup collects the rows of a group, then resolves
// the position of its cells.
func (b *builder) organizeGroup(id BoxID) {
	group := b.tree.Box(id)
	var (
		nest    []BoxID
		anonRow = NoBox
	)
	for _, child := range group.Children {
		cb := b.tree.Box(child)
		if cb.Kind == TableRow {
			if anonRow != NoBox {
				b.organizeRow(anonRow)
				anonRow = NoBox
			}
			nest = append(nest, child)
			continue
		}
		if anonRow == NoBox {
			anonRow = b.anonymousBox(id, child, pr.DisplayTableRow)
			b.tree.Box(anonRow).Cblock = id
			nest = append(nest, anonRow)
		}
		b.appendChild(anonRow, child)
	}
	if anonRow != NoBox {
		b.organizeRow(anonRow)
	}
	group.Children = nest
	group.Group.Rows = append(group.Group.Rows[:0], nest...)
	b.resolveGrid(id)
}

// resolveGrid assigns a column and a row to each cell of the group,
// with a greedy row-major scan: each cell takes the first column
// not covered by a cell of a previous row.
// Row spans exceeding the last row are truncated.
func (b *builder) resolveGrid(id BoxID) {
	group := b.tree.Box(id).Group
	nRows := len(group.Rows)
	occupied := make([][]bool, nRows) // [row][column]
	isOccupied := func(row, col int) bool {
		return col < len(occupied[row]) && occupied[row][col]
	}
	numCols := 0
	for r, rowID := range group.Rows {
		col := 0
		for _, cellID := range b.tree.Box(rowID).Row.Cells {
			cell := b.tree.Box(cellID).Cell
			for isOccupied(r, col) {
				col++
			}
			if r+cell.Rowspan > nRows {
				logger.WarningLogger.Printf("Rowspan %d of cell at row %d exceeds the %d rows of the group: truncated",
					cell.Rowspan, r, nRows)
				cell.Rowspan = nRows - r
			}
			cell.Column, cell.Row = col, r
			for nr := r; nr < r+cell.Rowspan; nr++ {
				for len(occupied[nr]) < col+cell.Colspan {
					occupied[nr] = append(occupied[nr], false)
				}
				for c := col; c < col+cell.Colspan; c++ {
					occupied[nr][c] = true
				}
			}
			col += cell.Colspan
			if col > numCols {
				numCols = col
			}
		}
	}

	group.NumCols = numCols
	group.Grid = make([][]BoxID, numCols)
	for c := range group.Grid {
		group.Grid[c] = make([]BoxID, nRows)
		for r := range group.Grid[c] {
			group.Grid[c][r] = NoBox
		}
	}
	// slots covered by two cells belong to the first one
	for _, rowID := range group.Rows {
		for _, cellID := range b.tree.Box(rowID).Row.Cells {
			cell := b.tree.Box(cellID).Cell
			for c := cell.Column; c < cell.Column+cell.Colspan; c++ {
				for r := cell.Row; r < cell.Row+cell.Rowspan; r++ {
					if group.Grid[c][r] == NoBox {
						group.Grid[c][r] = cellID
					}
				}
			}
		}
	}
}

// organizeColumnGroup lists the columns of a group: its <col>
// children, or the group itself repeated `span` times.
func (b *builder) organizeColumnGroup(id BoxID) {
	group := b.tree.Box(id)
	group.Displayed = false
	var cols []BoxID
	for _, child := range group.Children {
		if b.tree.Box(child).Kind == TableColumn {
			cols = append(cols, b.expandColumn(child)...)
		}
	}
	if len(cols) == 0 {
		cols = b.expandColumn(id)
	}
	group.Column.Columns = cols
}

// expandColumn returns `id` and span-1 copies.
func (b *builder) expandColumn(id BoxID) []BoxID {
	out := []BoxID{id}
	for i := 1; i < b.tree.Box(id).Column.Span; i++ {
		out = append(out, b.tree.Clone(id))
	}
	return out
}

// organizeTable sorts the children of a table into caption, header,
// footer, bodies and columns. The remaining content is wrapped into an
// anonymous body.
func (b *builder) organizeTable(id BoxID) {
	table := b.tree.Box(id)
	data := table.Table
	anonBody := NoBox
	var stray []BoxID
	for _, child := range table.Children {
		cb := b.tree.Box(child)
		switch {
		case cb.Kind == TableCaption && data.Caption == NoBox:
			data.Caption = child
		case cb.Kind == TableRowGroup && cb.Style.Display == pr.DisplayTableHeaderGroup && data.Header == NoBox:
			data.Header = child
		case cb.Kind == TableRowGroup && cb.Style.Display == pr.DisplayTableFooterGroup && data.Footer == NoBox:
			data.Footer = child
		case cb.Kind == TableRowGroup:
			data.Bodies = append(data.Bodies, child)
		case cb.Kind == TableColumn:
			data.Columns = append(data.Columns, b.expandColumn(child)...)
		case cb.Kind == TableColumnGroup:
			data.Columns = append(data.Columns, cb.Column.Columns...)
		case cb.IsOutOfFlow():
			// laid out by the table containing block
		default:
			if b.tree.IsWhitespace(child) {
				continue
			}
			stray = append(stray, child)
		}
	}
	if len(stray) != 0 {
		anonBody = b.anonymousBox(id, stray[0], pr.DisplayTableRowGroup)
		b.tree.Box(anonBody).Cblock = id
		for _, child := range stray {
			b.appendChild(anonBody, child)
		}
		b.organizeGroup(anonBody)
		data.Bodies = append(data.Bodies, anonBody)
		table.Children = append(removeAll(table.Children, stray), anonBody)
	}
}

func removeAll(list, toRemove []BoxID) []BoxID {
	var out []BoxID
	for _, id := range list {
		remove := false
		for _, r := range toRemove {
			if r == id {
				remove = true
				break
			}
		}
		if !remove {
			out = append(out, id)
		}
	}
	return out
}
