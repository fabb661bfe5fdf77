// Package boxes defines the box tree produced from a styled
// document, and the builder creating it.
//
// Boxes are stored in an arena (Tree), and refer to each other
// through BoxID handles: parent, containing block, clipping block,
// static position reference and the twins of split inline boxes.
package boxes

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/cssbox/backend"
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/images"
	"github.com/benoitkugler/cssbox/utils"
)

type Fl = utils.Fl

type Rect = backend.Rect

// BoxID is the index of a box in its Tree.
type BoxID int32

// NoBox is the null handle.
const NoBox BoxID = -1

// Kind is the variant of a box.
type Kind uint8

const (
	Viewport Kind = iota
	Block
	ListItem
	InlineBlock
	BlockReplaced
	Inline
	Text
	InlineReplaced
	Table
	TableCaption
	TableRowGroup
	TableRow
	TableCell
	TableColumn
	TableColumnGroup
)

var kindNames = [...]string{
	Viewport: "Viewport", Block: "Block", ListItem: "ListItem", InlineBlock: "InlineBlock",
	BlockReplaced: "BlockReplaced", Inline: "Inline", Text: "Text", InlineReplaced: "InlineReplaced",
	Table: "Table", TableCaption: "TableCaption", TableRowGroup: "TableRowGroup", TableRow: "TableRow",
	TableCell: "TableCell", TableColumn: "TableColumn", TableColumnGroup: "TableColumnGroup",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("<invalid kind %d>", k)
}

// IsBlock returns true for the block boxes, that is all the
// boxes which are not laid out in lines.
func (k Kind) IsBlock() bool {
	switch k {
	case Inline, Text, InlineBlock, InlineReplaced:
		return false
	}
	return true
}

// IsInlineLevel returns true for the boxes laid out in lines.
func (k Kind) IsInlineLevel() bool { return !k.IsBlock() }

// IsBlockContainer returns true for the boxes which may contain
// block boxes and establish a containing block for their content.
func (k Kind) IsBlockContainer() bool {
	switch k {
	case Viewport, Block, ListItem, InlineBlock, Table, TableCaption,
		TableRowGroup, TableRow, TableCell:
		return true
	}
	return false
}

// IsReplaced returns true for boxes with an external content.
func (k Kind) IsReplaced() bool { return k == BlockReplaced || k == InlineReplaced }

// Size is the dimension of a content box.
type Size struct {
	Width, Height Fl
}

// Box is a node of the box tree.
//
// The structure (Children) is fixed once the tree is built. During
// layout, the working list of children is Flow, which may differ
// from Children when inline content is split across lines: the
// part of a box which did not fit is a new box stored in Rest.
type Box struct {
	Kind      Kind
	Element   *utils.HTMLNode // nil for anonymous boxes
	Pseudo    string          // "before" or "after" for generated content
	Anonymous bool
	Style     *pr.Style
	Order     int // creation order, in document order

	Parent       BoxID
	Children     []BoxID
	Cblock       BoxID // containing block
	ClipBlock    BoxID // nearest ancestor with overflow: hidden
	AbsReference BoxID // last in-flow box preceding an out-of-flow box
	DOMParent    BoxID // box of the parent element, for out-of-flow boxes

	// set for inline boxes split by a block box
	PrevTwin, NextTwin BoxID

	Displayed bool
	Visible   bool

	// layout state
	Flow     []BoxID
	Rest     BoxID
	Splitted bool

	// geometry, relative to the content box of the containing block
	// (or of the parent for inline content)
	Bounds  Rect // margin box
	Content Size
	Margin  pr.LengthSet
	EMargin pr.LengthSet // margins after collapsing
	Border  pr.LengthSet
	Padding pr.LengthSet
	Coords  pr.LengthSet // resolved top, right, bottom and left

	AbsBounds Rect // absolute margin box, set by the positioning pass
	Clip      Rect // absolute clipping rectangle

	Text     *TextData
	Replaced *ReplacedData
	ListItem *ListItemData
	Table    *TableData
	Group    *GroupData
	Row      *RowData
	Cell     *CellData
	Column   *ColumnData
}

// TextData is the content of a text box: a range in the
// processed text of a DOM text node.
type TextData struct {
	Text       string
	Start, End int // current range, in bytes
	// range as built, restored by Reset
	OrigStart, OrigEnd int
	// Baseline is the offset of the baseline from the top of
	// the box, set by the layout.
	Baseline Fl
}

// Content returns the current text of the box.
func (t *TextData) Content() string { return t.Text[t.Start:t.End] }

// ReplacedData stores the external content of a replaced box.
type ReplacedData struct {
	Content images.Image
	// dimensions given by HTML attributes, negative when absent
	AttrWidth, AttrHeight Fl
}

// ListItemData stores the number of a list item, starting at 1.
type ListItemData struct {
	Number int
	// Baseline is the offset of the first line baseline from
	// the top of the content box, set by the layout.
	Baseline Fl
}

// TableData stores the organized content of a table.
type TableData struct {
	Caption        BoxID
	Header, Footer BoxID
	Bodies         []BoxID
	// Columns has one entry per grid column declared by <col> or
	// <colgroup>, expanded according to the span attribute.
	Columns []BoxID
}

// Groups returns the row groups in rendering order.
func (t *TableData) Groups() []BoxID {
	out := make([]BoxID, 0, len(t.Bodies)+2)
	if t.Header != NoBox {
		out = append(out, t.Header)
	}
	out = append(out, t.Bodies...)
	if t.Footer != NoBox {
		out = append(out, t.Footer)
	}
	return out
}

// GroupData is the cell grid of a row group.
type GroupData struct {
	Rows    []BoxID
	NumCols int
	// Grid is indexed by [column][row], with NoBox for empty slots.
	// A spanning cell fills every slot it covers.
	Grid [][]BoxID
}

// RowData stores the cells of a row, in document order.
type RowData struct {
	Cells []BoxID
}

// CellData stores the position of a cell in its group grid.
type CellData struct {
	Colspan, Rowspan int
	Column, Row      int
	OwnerRow         BoxID
}

// ColumnData stores the span of a column or column group.
type ColumnData struct {
	Span int
	// Columns are the columns of a column group.
	Columns []BoxID
}

// IsFloating returns true for displayed floating boxes.
func (b *Box) IsFloating() bool {
	return b.Displayed && b.Kind.IsBlock() && b.Style.Float != pr.FloatNone
}

// IsPositioned returns true for absolutely and fixed positioned boxes.
func (b *Box) IsPositioned() bool {
	return b.Displayed && b.Kind.IsBlock() && b.Style.Position.IsAbsolute()
}

// IsOutOfFlow returns true for floating and positioned boxes.
func (b *Box) IsOutOfFlow() bool { return b.IsFloating() || b.IsPositioned() }

// IsInFlow returns true for displayed boxes taking part in the normal flow.
func (b *Box) IsInFlow() bool { return b.Displayed && !b.IsOutOfFlow() }

// CollapsesSpaces returns true if the white space of the box is collapsible.
func (b *Box) CollapsesSpaces() bool { return b.Style.WhiteSpace.CollapsesSpaces() }

// Tag returns the element name, or a name describing an anonymous box.
func (b *Box) Tag() string {
	if b.Element != nil {
		if b.Pseudo != "" {
			return b.Element.Data + "::" + b.Pseudo
		}
		return b.Element.Data
	}
	if b.Kind == Text {
		return "#text"
	}
	return "anon"
}

func (b *Box) String() string {
	if b.Kind == Text {
		return fmt.Sprintf("Text %q", b.Text.Content())
	}
	return fmt.Sprintf("%s <%s>", b.Kind, b.Tag())
}

// ContentX returns the left edge of the content box, relative to Bounds.X.
func (b *Box) ContentX() Fl { return b.EMargin.Left + b.Border.Left + b.Padding.Left }

// ContentY returns the top edge of the content box, relative to Bounds.Y.
func (b *Box) ContentY() Fl { return b.EMargin.Top + b.Border.Top + b.Padding.Top }

// AbsContentX returns the absolute left edge of the content box.
func (b *Box) AbsContentX() Fl { return b.AbsBounds.X + b.ContentX() }

// AbsContentY returns the absolute top edge of the content box.
func (b *Box) AbsContentY() Fl { return b.AbsBounds.Y + b.ContentY() }

// BorderBox returns the absolute border box.
func (b *Box) BorderBox() Rect {
	return Rect{
		X:      b.AbsBounds.X + b.EMargin.Left,
		Y:      b.AbsBounds.Y + b.EMargin.Top,
		Width:  b.Border.Horizontal() + b.Padding.Horizontal() + b.Content.Width,
		Height: b.Border.Vertical() + b.Padding.Vertical() + b.Content.Height,
	}
}

// PaddingBox returns the absolute padding box.
func (b *Box) PaddingBox() Rect {
	return Rect{
		X:      b.AbsBounds.X + b.EMargin.Left + b.Border.Left,
		Y:      b.AbsBounds.Y + b.EMargin.Top + b.Border.Top,
		Width:  b.Padding.Horizontal() + b.Content.Width,
		Height: b.Padding.Vertical() + b.Content.Height,
	}
}

// ContentBox returns the absolute content box.
func (b *Box) ContentBox() Rect {
	return Rect{X: b.AbsContentX(), Y: b.AbsContentY(), Width: b.Content.Width, Height: b.Content.Height}
}

// Tree is the arena storing the boxes of a document.
// The root box is the viewport, at index 0.
type Tree struct {
	Boxes []*Box
	// RootElement is the box of the <html> element, or NoBox.
	RootElement BoxID

	built int // number of boxes created by the builder
}

// Root returns the viewport handle.
func (t *Tree) Root() BoxID { return 0 }

// Box returns the box with handle `id`.
func (t *Tree) Box(id BoxID) *Box { return t.Boxes[id] }

func (t *Tree) add(b *Box) BoxID {
	t.Boxes = append(t.Boxes, b)
	return BoxID(len(t.Boxes) - 1)
}

// Clone appends a copy of the box `id` and returns its handle.
// The copy shares the style and the content of the original box,
// but not its working children.
func (t *Tree) Clone(id BoxID) BoxID {
	cp := *t.Boxes[id]
	cp.Flow = nil
	cp.Rest = NoBox
	if cp.Text != nil {
		text := *cp.Text
		cp.Text = &text
	}
	return t.add(&cp)
}

// Reset discards the boxes created by a previous layout (the
// remainders of split boxes) and restores the working state of
// every box, so that the tree may be laid out again.
func (t *Tree) Reset() {
	for i := t.built; i < len(t.Boxes); i++ {
		t.Boxes[i] = nil
	}
	t.Boxes = t.Boxes[:t.built]
	for _, b := range t.Boxes {
		b.ResetFlow()
	}
}

// ResetFlow restores the working children and the text range of the box.
func (b *Box) ResetFlow() {
	b.Flow = append(b.Flow[:0], b.Children...)
	b.Rest = NoBox
	b.Splitted = false
	if b.Text != nil {
		b.Text.Start, b.Text.End = b.Text.OrigStart, b.Text.OrigEnd
	}
}

// Walk calls `fn` for `id` and its structural descendants, in
// document order. If `fn` returns false, the children of the
// box are skipped.
func (t *Tree) Walk(id BoxID, fn func(id BoxID, b *Box) bool) {
	b := t.Boxes[id]
	if !fn(id, b) {
		return
	}
	for _, c := range b.Children {
		t.Walk(c, fn)
	}
}

// IsWhitespace returns true if the box only has collapsible white space
// as in-flow content.
func (t *Tree) IsWhitespace(id BoxID) bool {
	b := t.Boxes[id]
	switch b.Kind {
	case Text:
		return strings.TrimLeft(b.Text.Content(), " ") == "" && b.CollapsesSpaces()
	case Inline:
		for _, c := range b.Children {
			if !t.IsWhitespace(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EndsWithWhitespace returns true if the in-flow content of the box
// ends with a space.
func (t *Tree) EndsWithWhitespace(id BoxID) bool {
	b := t.Boxes[id]
	switch b.Kind {
	case Text:
		s := b.Text.Content()
		return s != "" && s[len(s)-1] == ' '
	case Inline:
		for i := len(b.Children) - 1; i >= 0; i-- {
			c := t.Boxes[b.Children[i]]
			if !c.IsInFlow() {
				continue
			}
			return t.EndsWithWhitespace(b.Children[i])
		}
	}
	return false
}

// Dump returns a textual representation of the subtree rooted at `id`,
// used in tests and debugging.
func (t *Tree) Dump(id BoxID) string {
	var sb strings.Builder
	t.dump(&sb, id, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, id BoxID, indent int) {
	b := t.Boxes[id]
	fmt.Fprintf(sb, "%s%s (%g, %g, %g, %g)\n", strings.Repeat("  ", indent), b,
		b.AbsBounds.X, b.AbsBounds.Y, b.AbsBounds.Width, b.AbsBounds.Height)
	for _, c := range b.Children {
		t.dump(sb, c, indent+1)
	}
}
