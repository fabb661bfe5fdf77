package document

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/cssbox/backend"
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/images"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/matrix"
	"github.com/benoitkugler/cssbox/text"
	"github.com/benoitkugler/cssbox/utils"
)

// Paint sends the painting operations of the document to `r`,
// in the CSS painting order: for each stacking context, the
// background of its box, the backgrounds of the in-flow blocks,
// the floats, the inline content and finally the positioned boxes.
func (d *Document) Paint(r backend.Renderer) {
	logger.ProgressLogger.Println("Step 6 - Painting the boxes")
	p := painter{doc: d, tree: d.Tree, r: r}
	p.paintContext(NewStackingContext(d.Tree, d.Tree.Root()))
}

type painter struct {
	doc  *Document
	tree *bo.Tree
	r    backend.Renderer
}

func (p *painter) box(id BoxID) *bo.Box { return p.tree.Box(id) }

func (p *painter) paintContext(sc StackingContext) {
	b := p.box(sc.box)
	e := backend.Element{Tag: b.Tag(), Transform: p.transform(b)}
	if b.Kind == bo.Viewport {
		e.Tag = "viewport"
	}
	p.r.StartElementContents(e)

	p.paintBackground(sc.box)
	for _, id := range sc.blocksAndCells {
		p.paintBackground(id)
	}
	for _, f := range sc.floats {
		p.paintContext(f)
	}
	if b.Kind.IsReplaced() {
		p.paintReplaced(sc.box)
	}
	p.paintInlines(sc.box)
	for _, c := range sc.zeroZContexts {
		p.paintContext(c)
	}

	p.r.FinishElementContents(e)
}

func (p *painter) transform(b *bo.Box) matrix.Transform {
	if len(b.Style.Transform) == 0 || b.Kind == bo.Inline || b.Kind == bo.Viewport {
		return matrix.Identity()
	}
	m := p.doc.opts.Fonts.Metrics(text.FontOf(b.Style))
	dec := pr.NewDecoder(b.Style.FontSize, m.XHeight)
	bb := b.BorderBox()
	return matrix.FromCSS(b.Style.Transform, b.Style.TransformOrigin, dec, bb.X, bb.Y, bb.Width, bb.Height)
}

// paintInlines paints the line content of `id` and of its
// descendants, including the list markers, in tree order.
func (p *painter) paintInlines(id BoxID) {
	if b := p.box(id); b.Kind == bo.ListItem {
		p.paintMarker(id)
	}
	for _, c := range p.box(id).Flow {
		cb := p.box(c)
		if !cb.Displayed {
			continue
		}
		switch layerOf(cb) {
		case layerInline:
			p.paintContext(NewStackingContext(p.tree, c))
			continue
		case layerFloat, layerPositioned:
			continue
		}
		switch cb.Kind {
		case bo.Text:
			p.paintText(c)
		case bo.Inline:
			p.paintBackground(c)
			p.paintInlines(c)
		case bo.InlineReplaced:
			p.paintBackground(c)
			p.paintReplaced(c)
		case bo.BlockReplaced:
			p.paintReplaced(c)
		case bo.TableColumn, bo.TableColumnGroup:
		default:
			p.paintInlines(c)
		}
	}
}

func borders(b *bo.Box) (out [4]backend.Border) {
	widths := [4]Fl{pr.SideTop: b.Border.Top, pr.SideRight: b.Border.Right, pr.SideBottom: b.Border.Bottom, pr.SideLeft: b.Border.Left}
	for i, w := range widths {
		out[i] = backend.Border{Width: w, Style: b.Style.BorderStyle[i], Color: b.Style.BorderColor[i]}
	}
	return out
}

func (p *painter) paintBackground(id BoxID) {
	b := p.box(id)
	switch b.Kind {
	case bo.Viewport:
		p.paintCanvas(b)
		return
	case bo.TableRow, bo.TableRowGroup, bo.TableColumn, bo.TableColumnGroup:
		// painted behind the cells
		return
	}
	if !b.Visible {
		return
	}

	bg := backend.Background{
		BorderBox:  b.BorderBox(),
		PaddingBox: b.PaddingBox(),
		Clip:       b.Clip,
		Borders:    borders(b),
	}
	if id != p.doc.canvasSource {
		style := b.Style
		if b.Kind == bo.TableCell {
			style = p.cellBackground(id)
		}
		bg.Color = style.BackgroundColor
		bg.Image = p.backgroundImage(style.BackgroundImage)
	}

	hasBorder := false
	for _, border := range bg.Borders {
		if border.Width > 0 && !border.Color.IsTransparent() {
			hasBorder = true
		}
	}
	if bg.Color.IsTransparent() && bg.Image == nil && !hasBorder {
		return
	}
	p.r.RenderElementBackground(bg)
}

// paintCanvas fills the viewport with the background of the root
// element (or of the body).
func (p *painter) paintCanvas(vp *bo.Box) {
	bg := backend.Background{BorderBox: vp.AbsBounds, PaddingBox: vp.AbsBounds, Clip: vp.AbsBounds, Color: p.doc.Background}
	if src := p.doc.canvasSource; src != bo.NoBox {
		bg.Image = p.backgroundImage(p.box(src).Style.BackgroundImage)
	}
	if bg.Color.IsTransparent() && bg.Image == nil {
		return
	}
	p.r.RenderElementBackground(bg)
}

func (p *painter) backgroundImage(url string) backend.Drawable {
	if url == "" || !p.doc.opts.LoadBackgrounds {
		return nil
	}
	img := p.doc.images.Load(utils.ResolveUrl(p.doc.html.BaseUrl, url), "")
	if _, failed := img.(images.Placeholder); failed {
		return nil
	}
	return img
}

// cellBackground returns the style providing the background of
// a cell: the cell, its row, its column (or column group), then
// its row group.
func (p *painter) cellBackground(id BoxID) *pr.Style {
	cell := p.box(id)
	hasBackground := func(b *bo.Box) bool {
		return !b.Style.BackgroundColor.IsTransparent() || b.Style.BackgroundImage != ""
	}
	if hasBackground(cell) || cell.Cell == nil {
		return cell.Style
	}
	candidates := make([]BoxID, 0, 4)
	row := cell.Cell.OwnerRow
	if row == bo.NoBox {
		row = cell.Parent
	}
	var group, table BoxID = bo.NoBox, bo.NoBox
	if row != bo.NoBox {
		candidates = append(candidates, row)
		group = p.box(row).Parent
	}
	if group != bo.NoBox {
		table = p.box(group).Parent
	}
	if table != bo.NoBox && p.box(table).Table != nil {
		if cols := p.box(table).Table.Columns; cell.Cell.Column < len(cols) {
			col := cols[cell.Cell.Column]
			candidates = append(candidates, col)
			if parent := p.box(col).Parent; parent != bo.NoBox && p.box(parent).Kind == bo.TableColumnGroup {
				candidates = append(candidates, parent)
			}
		}
	}
	if group != bo.NoBox {
		candidates = append(candidates, group)
	}
	for _, c := range candidates {
		if b := p.box(c); hasBackground(b) {
			return b.Style
		}
	}
	return cell.Style
}

func (p *painter) paintText(id BoxID) {
	b := p.box(id)
	content := b.Text.Content()
	if !b.Visible || strings.TrimSpace(content) == "" {
		return
	}
	p.r.RenderTextContent(backend.TextRun{
		X:          b.AbsBounds.X,
		Y:          b.AbsBounds.Y,
		Baseline:   b.AbsBounds.Y + b.Text.Baseline,
		Width:      b.AbsBounds.Width,
		Height:     b.AbsBounds.Height,
		Clip:       b.Clip,
		Text:       content,
		Font:       text.FontOf(b.Style),
		Color:      b.Style.Color,
		Decoration: b.Style.TextDecoration,
	})
}

func (p *painter) paintReplaced(id BoxID) {
	b := p.box(id)
	if !b.Visible || b.Replaced == nil || b.Replaced.Content == nil {
		return
	}
	p.r.RenderReplacedContent(backend.Replaced{ContentBox: b.ContentBox(), Clip: b.Clip, Content: b.Replaced.Content})
}

// markerText returns the text of a numbered marker, such as "3. ".
func markerText(kind pr.ListStyleType, n int) string {
	var s string
	switch kind {
	case pr.ListStyleLowerAlpha:
		s = utils.FormatAlpha(n)
	case pr.ListStyleUpperAlpha:
		s = strings.ToUpper(utils.FormatAlpha(n))
	case pr.ListStyleLowerRoman:
		s = utils.FormatRoman(n)
	case pr.ListStyleUpperRoman:
		s = strings.ToUpper(utils.FormatRoman(n))
	default:
		s = strconv.Itoa(n)
	}
	return s + ". "
}

// paintMarker draws the marker of a list item, left of its content box:
// a glyph with a size of 0.6em, or the item number ending at the
// content edge, on the first line baseline.
func (p *painter) paintMarker(id BoxID) {
	b := p.box(id)
	kind := b.Style.ListStyleType
	if !b.Visible || b.ListItem == nil || kind == pr.ListStyleNone {
		return
	}
	em := b.Style.FontSize
	x, y := b.AbsContentX(), b.AbsContentY()
	baseline := y + b.ListItem.Baseline
	if kind.IsGlyph() {
		size := 0.6 * em
		p.r.RenderMarker(backend.Marker{
			Box:   backend.Rect{X: x - 2*size, Y: baseline - size, Width: size, Height: size},
			Kind:  kind,
			Color: b.Style.Color,
		})
		return
	}

	font := text.FontOf(b.Style)
	fonts := p.doc.opts.Fonts
	s := markerText(kind, b.ListItem.Number)
	w, m := fonts.Width(font, s), fonts.Metrics(font)
	p.r.RenderTextContent(backend.TextRun{
		X:        x - w,
		Y:        baseline - m.Ascent,
		Baseline: baseline,
		Width:    w,
		Height:   m.Height(),
		Clip:     b.Clip,
		Text:     s,
		Font:     font,
		Color:    b.Style.Color,
	})
}
