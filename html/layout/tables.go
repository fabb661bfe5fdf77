package layout

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/utils"
)

// Layout of tables: column widths, row groups, rows and cells.
//
// The column widths follow the automatic algorithm: each column gets
// a minimal and a maximal width from its cells, and possibly a declared
// width (absolute or percentage). The widths are then distributed in
// three passes: the percentage columns first, then the absolute ones,
// and finally the columns without declared width.

type tableColumn struct {
	min, max Fl // computed from the cells
	width    Fl // final width

	wset      bool // width declared by a column or a cell
	wrelative bool // declared as a percentage
	percent   Fl
	abswidth  Fl
}

type tableLayout struct {
	columns []tableColumn
}

// gridWidth returns the width of the columns and of the spacing
// between them.
func (tl *tableLayout) gridWidth(spacing Fl) Fl {
	if len(tl.columns) == 0 {
		return 0
	}
	w := spacing
	for _, col := range tl.columns {
		w += col.width + spacing
	}
	return w
}

// columnX returns the left edge of each column, and the right edge
// of the grid as last element.
func (tl *tableLayout) columnX(spacing Fl) []Fl {
	out := make([]Fl, len(tl.columns)+1)
	x := spacing
	for i, col := range tl.columns {
		out[i] = x
		x += col.width + spacing
	}
	out[len(tl.columns)] = x
	return out
}

// constrain records the width declared for the column.
func (col *tableColumn) constrain(width pr.Dimension, length Fl) {
	switch {
	case width.IsPercentage():
		if width.Value > 0 {
			col.wset, col.wrelative = true, true
			col.percent = utils.MaxF(col.percent, width.Value)
		}
	case width.IsLength():
		col.wset = true
		col.abswidth = utils.MaxF(col.abswidth, length)
	}
}

// tableColumns computes the statistics of the columns of the table `id`.
// They only depend on the loaded sizes, and are computed once.
func (ctx *layoutContext) tableColumns(id BoxID) *tableLayout {
	if tl, ok := ctx.tables[id]; ok {
		return tl
	}
	data := ctx.box(id).Table
	groups := data.Groups()
	n := len(data.Columns)
	for _, g := range groups {
		if gb := ctx.box(g); gb.Displayed {
			n = max(n, gb.Group.NumCols)
		}
	}
	tl := &tableLayout{columns: make([]tableColumn, n)}

	// widths given by the column elements
	for i, c := range data.Columns {
		width := ctx.declaredWidth(c)
		tl.columns[i].constrain(width, ctx.decoder(c).Length(width, 0, 0))
	}

	// widths required by the cells
	for _, g := range groups {
		gb := ctx.box(g)
		if !gb.Displayed {
			continue
		}
		gd := gb.Group
		for c := 0; c < gd.NumCols; c++ {
			for r := range gd.Rows {
				cell := gd.Grid[c][r]
				if cell == bo.NoBox {
					continue
				}
				cellBox := ctx.box(cell)
				cd := cellBox.Cell
				if cd.Column != c || cd.Row != r || !cellBox.Displayed {
					continue // covered by a spanning cell
				}
				span := min(cd.Colspan, n-c)
				cmin := ctx.cellMinimalWidth(cell) / Fl(span)
				cmax := ctx.cellMaximalWidth(cell) / Fl(span)
				for k := c; k < c+span; k++ {
					col := &tl.columns[k]
					col.min = utils.MaxF(col.min, cmin)
					col.max = utils.MaxF(col.max, cmax)
				}
				if span == 1 {
					width := ctx.declaredWidth(cell)
					deco := cellBox.Border.Horizontal() + cellBox.Padding.Horizontal()
					tl.columns[c].constrain(width, ctx.decoder(cell).Length(width, 0, 0)+deco)
				}
			}
		}
	}

	for i := range tl.columns {
		col := &tl.columns[i]
		col.max = utils.MaxF(col.max, col.min)
		col.width = col.min
	}
	ctx.tables[id] = tl
	return tl
}

// cellMinimalWidth ignores the declared width of the cell, which
// is handled by the column.
func (ctx *layoutContext) cellMinimalWidth(id BoxID) Fl {
	b := ctx.box(id)
	return ctx.minimalContentWidth(id) + b.Border.Horizontal() + b.Padding.Horizontal()
}

func (ctx *layoutContext) cellMaximalWidth(id BoxID) Fl {
	b := ctx.box(id)
	return ctx.maximalContentWidth(id) + b.Border.Horizontal() + b.Padding.Horizontal()
}

// declaredTableWidth returns the absolute width declared for the table.
func (ctx *layoutContext) declaredTableWidth(id BoxID) (Fl, bool) {
	width := ctx.declaredWidth(id)
	if !width.IsLength() || width.IsPercentage() {
		return 0, false
	}
	return ctx.decoder(id).Length(width, 0, 0), true
}

func (ctx *layoutContext) tableMinimalWidth(id BoxID) Fl {
	b := ctx.box(id)
	tl := ctx.tableColumns(id)
	var w Fl
	if n := len(tl.columns); n > 0 {
		w = Fl(n+1) * b.Style.BorderSpacing
		for _, col := range tl.columns {
			w += col.min
		}
	}
	if c := b.Table.Caption; c != bo.NoBox {
		w = utils.MaxF(w, ctx.minimalWidth(c))
	}
	if dw, ok := ctx.declaredTableWidth(id); ok {
		w = utils.MaxF(w, dw)
	}
	return w + ctx.decorations(id)
}

func (ctx *layoutContext) tableMaximalWidth(id BoxID) Fl {
	b := ctx.box(id)
	if dw, ok := ctx.declaredTableWidth(id); ok {
		return utils.MaxF(dw+ctx.decorations(id), ctx.tableMinimalWidth(id))
	}
	tl := ctx.tableColumns(id)
	var w Fl
	if n := len(tl.columns); n > 0 {
		w = Fl(n+1) * b.Style.BorderSpacing
		for _, col := range tl.columns {
			if col.wset && !col.wrelative {
				w += utils.MaxF(col.abswidth, col.min)
			} else {
				w += col.max
			}
		}
	}
	if c := b.Table.Caption; c != bo.NoBox {
		w = utils.MaxF(w, ctx.minimalWidth(c))
	}
	return w + ctx.decorations(id)
}

// distributeColumns computes the final width of the columns, given the
// width available for the content of the table.
func (ctx *layoutContext) distributeColumns(id BoxID, tl *tableLayout, wlimit Fl) {
	b, st := ctx.box(id), ctx.state(id)
	n := len(tl.columns)
	if n == 0 {
		return
	}
	spacing := Fl(n+1) * b.Style.BorderSpacing
	wlimit -= spacing

	var (
		mintotalw, sumperc, totalwperc, sumabs, sumnonemax Fl
		perc, abs, none                                     []*tableColumn
	)
	for i := range tl.columns {
		col := &tl.columns[i]
		col.width = col.min
		mintotalw += col.min
		switch {
		case col.wrelative:
			perc = append(perc, col)
			sumperc += col.percent
			totalwperc = utils.MaxF(totalwperc, col.max*100/col.percent)
		case col.wset:
			abs = append(abs, col)
			sumabs += utils.MaxF(col.abswidth, col.min)
		default:
			none = append(none, col)
			sumnonemax += col.max
		}
	}

	// target width of the columns
	totalwperc = utils.MinF(totalwperc, wlimit)
	totalwabs := wlimit
	if sumperc < 100 {
		totalwabs = (sumabs + sumnonemax) * 100 / (100 - sumperc)
	}
	totalw := utils.MaxF(totalwperc, totalwabs)
	if st.wset {
		totalw = b.Content.Width - spacing
	} else if totalw > wlimit {
		totalw = wlimit
	}
	totalw = utils.MaxF(totalw, mintotalw)

	remain, remainmin := totalw, mintotalw
	for _, col := range perc {
		remainmin -= col.min
		w := col.percent * totalw / 100
		w = utils.MinF(w, remain-remainmin)
		col.width = utils.MaxF(w, col.min)
		remain -= col.width
	}

	if len(abs) != 0 {
		if len(none) == 0 && sumabs > 0 { // the absolute columns take all the space
			remain -= shareWidth(abs, remain, func(col *tableColumn) Fl { return utils.MaxF(col.abswidth, col.min) })
		} else {
			for _, col := range abs {
				col.width = utils.MaxF(col.abswidth, col.min)
				remain -= col.width
			}
		}
	}

	if len(none) != 0 {
		shareWidth(none, remain, func(col *tableColumn) Fl { return col.max })
	}
}

// shareWidth distributes `budget` to the columns in proportion to
// `weight`, never below their minimal width. It returns the width used.
func shareWidth(cols []*tableColumn, budget Fl, weight func(*tableColumn) Fl) Fl {
	free := append([]*tableColumn(nil), cols...)
	var used Fl
	for len(free) != 0 {
		var sum Fl
		for _, col := range free {
			sum += weight(col)
		}
		shares := make([]Fl, len(free))
		for i, col := range free {
			if sum <= 0 {
				shares[i] = budget / Fl(len(free))
			} else {
				shares[i] = weight(col) * budget / sum
			}
		}
		// the columns below their minimum get it, and the others share the rest
		var next []*tableColumn
		for i, col := range free {
			if shares[i] < col.min {
				col.width = col.min
				budget -= col.min
				used += col.min
			} else {
				next = append(next, col)
			}
		}
		if len(next) == len(free) {
			for i, col := range free {
				col.width = shares[i]
				used += col.width
			}
			break
		}
		free = next
	}
	return used
}

// layoutTable lays out the table in the available width.
func (ctx *layoutContext) layoutTable(id BoxID, availw Fl) {
	b, st := ctx.box(id), ctx.state(id)
	ctx.updateSizes(id)
	if st.fleft == nil {
		ctx.ownFloats(id)
	}
	st.availWidth = availw
	spacing := b.Style.BorderSpacing

	tl := ctx.tableColumns(id)
	ctx.distributeColumns(id, tl, ctx.availableContentWidth(id))
	gridw := tl.gridWidth(spacing)

	caption := b.Table.Caption
	if caption != bo.NoBox && !ctx.box(caption).Displayed {
		caption = bo.NoBox
	}
	contentw := gridw
	if caption != bo.NoBox {
		contentw = utils.MaxF(contentw, ctx.minimalWidth(caption))
	}
	if st.wset {
		contentw = utils.MaxF(contentw, b.Content.Width)
	}
	b.Content.Width = contentw
	ctx.resolveTableMargins(id)

	var y Fl
	captionTop := caption != bo.NoBox && b.Style.CaptionSide == pr.CaptionTop
	if caption != bo.NoBox {
		ctx.ownFloats(caption)
		ctx.layoutBlock(caption, contentw)
		ctx.box(caption).Bounds.X = 0
	}
	if captionTop {
		ctx.box(caption).Bounds.Y = 0
		y += ctx.box(caption).Bounds.Height
	}
	for _, g := range b.Table.Groups() {
		gb := ctx.box(g)
		if !gb.Displayed {
			ctx.hide(g)
			continue
		}
		ctx.layoutGroup(g, tl, spacing, gridw)
		gb.Bounds.X, gb.Bounds.Y = 0, y
		y += gb.Bounds.Height
	}
	if caption != bo.NoBox && !captionTop {
		ctx.box(caption).Bounds.Y = y
		y += ctx.box(caption).Bounds.Height
	}

	if st.hset {
		y = utils.MaxF(y, b.Content.Height)
	}
	ctx.setContentHeight(id, y)

	// boxes taken out of the flow of the table content
	for _, c := range b.Flow {
		cb := ctx.box(c)
		switch {
		case cb.IsPositioned():
			ctx.layoutBlockPositioned(id, c)
		case cb.IsFloating():
			ctx.ownFloats(c)
			ctx.doLayout(c, contentw, true, true)
			cb.Bounds.X, cb.Bounds.Y = 0, 0
		}
	}
	ctx.updatePositionedSizes(id)
	ctx.setSize(id)
}

// resolveTableMargins computes the auto horizontal margins of an
// in-flow table, once its width is known.
func (ctx *layoutContext) resolveTableMargins(id BoxID) {
	b, st := ctx.box(id), ctx.state(id)
	if !b.IsInFlow() {
		return
	}
	lauto, rauto := b.Style.Margin.Left.IsAuto(), b.Style.Margin.Right.IsAuto()
	if !lauto && !rauto {
		return
	}
	rest := st.availWidth - b.Border.Horizontal() - b.Padding.Horizontal() - b.Content.Width
	switch {
	case lauto && rauto:
		rest = utils.MaxF(0, rest)
		b.Margin.Left = rest / 2
		b.Margin.Right = rest - b.Margin.Left
	case lauto:
		b.Margin.Left = rest - b.Margin.Right
	default:
		b.Margin.Right = rest - b.Margin.Left
	}
	b.EMargin.Left, b.EMargin.Right = b.Margin.Left, b.Margin.Right
}

// layoutGroup lays out the rows of a row group. The height of a row is
// the height of its highest cell; cells spanning several rows are
// stretched once their last row is laid out.
func (ctx *layoutContext) layoutGroup(id BoxID, tl *tableLayout, spacing, gridw Fl) {
	gb := ctx.box(id)
	gd := gb.Group
	colX := tl.columnX(spacing)
	ncols := min(gd.NumCols, len(tl.columns))
	rowY := make([]Fl, len(gd.Rows))

	cellWidth := func(c, span int) Fl {
		end := min(c+span, len(tl.columns))
		return colX[end] - spacing - colX[c]
	}

	y := spacing
	for r, rowID := range gd.Rows {
		row := ctx.box(rowID)
		rowY[r] = y
		var maxh Fl
		for c := 0; c < ncols; c++ {
			cell := gd.Grid[c][r]
			if cell == bo.NoBox {
				continue
			}
			cellBox := ctx.box(cell)
			cd := cellBox.Cell
			if cd.Column != c || !cellBox.Displayed {
				continue
			}
			if cd.Row == r {
				ctx.layoutCell(cell, cellWidth(c, cd.Colspan))
				cellBox.Bounds.X, cellBox.Bounds.Y = colX[c], 0
				if cd.Rowspan == 1 {
					maxh = utils.MaxF(maxh, cellBox.Bounds.Height)
				}
			}
			if cd.Rowspan > 1 && r == cd.Row+cd.Rowspan-1 {
				// the last row of the cell contains what remains
				maxh = utils.MaxF(maxh, cellBox.Bounds.Height-(y-rowY[cd.Row]))
			}
		}
		if ctx.state(rowID).hset {
			maxh = utils.MaxF(maxh, row.Content.Height)
		}

		// stretch the cells ending on this row
		for c := 0; c < ncols; c++ {
			cell := gd.Grid[c][r]
			if cell == bo.NoBox {
				continue
			}
			cellBox := ctx.box(cell)
			cd := cellBox.Cell
			if cd.Column != c || !cellBox.Displayed || r != cd.Row+cd.Rowspan-1 {
				continue
			}
			ctx.setCellHeight(cell, y+maxh-rowY[cd.Row])
		}

		row.Bounds.X, row.Bounds.Y = 0, y
		row.Content = bo.Size{Width: gridw, Height: maxh}
		row.Margin, row.EMargin, row.Padding = pr.LengthSet{}, pr.LengthSet{}, pr.LengthSet{}
		row.Border = pr.LengthSet{}
		ctx.setSize(rowID)
		y += maxh + spacing
	}
	if len(gd.Rows) == 0 {
		y = 0
	}
	gb.Content = bo.Size{Width: gridw, Height: y}
	gb.Margin, gb.EMargin, gb.Padding, gb.Border = pr.LengthSet{}, pr.LengthSet{}, pr.LengthSet{}, pr.LengthSet{}
	ctx.setSize(id)
}

// layoutCell lays out a cell with the given border box width.
func (ctx *layoutContext) layoutCell(id BoxID, width Fl) {
	b, st := ctx.box(id), ctx.state(id)
	b.Margin, b.EMargin = pr.LengthSet{}, pr.LengthSet{}
	b.Content.Width = utils.MaxF(0, width-b.Border.Horizontal()-b.Padding.Horizontal())
	st.coffset = 0
	ctx.ownFloats(id)
	ctx.layoutBlock(id, width)
}

// setCellHeight stretches the cell to the height of its rows, moving
// its content according to its vertical alignment.
func (ctx *layoutContext) setCellHeight(id BoxID, height Fl) {
	b, st := ctx.box(id), ctx.state(id)
	inner := height - b.Border.Vertical() - b.Padding.Vertical()
	if laid := b.Content.Height; inner > laid {
		switch b.Style.VerticalAlign.Kind {
		case pr.VAlignMiddle:
			st.coffset = (inner - laid) / 2
		case pr.VAlignBottom:
			st.coffset = inner - laid
		}
		b.Content.Height = inner
	}
	ctx.setSize(id)
}
