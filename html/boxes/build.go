package boxes

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/images"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/text"
	"github.com/benoitkugler/cssbox/utils"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleResolver provides the computed style of the elements.
// It is implemented by tree.StyleFor.
type StyleResolver interface {
	// Get returns the style of `element`, `parent` being the
	// style of its parent (nil for the root element).
	Get(element *utils.HTMLNode, parent *pr.Style) *pr.Style
	// GetPseudo returns the style of a ::before or ::after pseudo element,
	// or nil if it generates no content.
	GetPseudo(element *utils.HTMLNode, pseudo string, elementStyle *pr.Style) *pr.Style
}

// ImageLoader provides the content of <img> elements.
// It is implemented by images.Loader.
type ImageLoader interface {
	Load(url, alt string) images.Image
}

// Options configures the box tree creation.
type Options struct {
	// HTMLExtensions enables the HTML specific boxes: <img>
	// elements are replaced by their image.
	HTMLExtensions bool
	// BaseURL is used to resolve the image sources.
	BaseURL string
}

type builder struct {
	tree    *Tree
	styles  StyleResolver
	images  ImageLoader
	options Options
	order   int // next creation order
}

// status is the context of the box creation of one element.
type status struct {
	parent     BoxID // box receiving the children
	contbox    BoxID // containing block of the in-flow and floating boxes
	absbox     BoxID // containing block of the absolutely positioned boxes
	clipbox    BoxID
	lastInFlow BoxID

	// for inline boxes split by a block
	closed bool
	output []BoxID
}

// Build creates the box tree of the document rooted at `root`, with
// a viewport box as root.
// `images` may be nil, in which case every image is a placeholder.
func Build(root *utils.HTMLNode, styles StyleResolver, images ImageLoader, options Options) *Tree {
	logger.ProgressLogger.Println("Step 3 - Creating box tree")
	b := builder{tree: &Tree{RootElement: NoBox}, styles: styles, images: images, options: options}

	style := pr.InitialStyle()
	style.Display = pr.DisplayBlock
	viewport := b.newBox(&Box{Kind: Viewport, Style: style, Anonymous: true})
	vp := b.tree.Box(viewport)
	vp.Parent, vp.Cblock, vp.ClipBlock = NoBox, NoBox, viewport

	st := status{parent: viewport, contbox: viewport, absbox: viewport, clipbox: viewport, lastInFlow: NoBox}
	created := b.buildElement(root, nil, &st)
	for _, id := range created {
		b.addToTree(id, &st)
	}
	if len(created) != 0 {
		b.tree.RootElement = created[0]
	}
	b.normalize(viewport)
	b.removeTrailingWhitespaces(viewport)

	b.organize(viewport)

	b.tree.built = len(b.tree.Boxes)
	b.tree.Reset()
	return b.tree
}

func (b *builder) newBox(box *Box) BoxID {
	box.Order = b.order
	b.order++
	box.Rest = NoBox
	box.PrevTwin, box.NextTwin = NoBox, NoBox
	box.AbsReference = NoBox
	box.DOMParent = NoBox
	return b.tree.add(box)
}

func kindOf(display pr.Display) Kind {
	switch display {
	case pr.DisplayBlock:
		return Block
	case pr.DisplayListItem:
		return ListItem
	case pr.DisplayInlineBlock:
		return InlineBlock
	case pr.DisplayTable, pr.DisplayInlineTable:
		return Table
	case pr.DisplayTableRowGroup, pr.DisplayTableHeaderGroup, pr.DisplayTableFooterGroup:
		return TableRowGroup
	case pr.DisplayTableRow:
		return TableRow
	case pr.DisplayTableColumnGroup:
		return TableColumnGroup
	case pr.DisplayTableColumn:
		return TableColumn
	case pr.DisplayTableCell:
		return TableCell
	case pr.DisplayTableCaption:
		return TableCaption
	default:
		return Inline
	}
}

// addPayload allocates the data specific to the kind of the box.
func (b *builder) addPayload(box *Box) {
	switch box.Kind {
	case ListItem:
		box.ListItem = &ListItemData{}
	case Table:
		box.Table = &TableData{Caption: NoBox, Header: NoBox, Footer: NoBox}
	case TableRowGroup:
		box.Group = &GroupData{}
	case TableRow:
		box.Row = &RowData{}
	case TableCell:
		box.Cell = &CellData{Colspan: 1, Rowspan: 1, OwnerRow: NoBox}
		if box.Element != nil && box.Pseudo == "" {
			box.Cell.Colspan = integerAttribute(box.Element, "colspan")
			box.Cell.Rowspan = integerAttribute(box.Element, "rowspan")
		}
	case TableColumn, TableColumnGroup:
		box.Column = &ColumnData{Span: 1}
		if box.Element != nil && box.Pseudo == "" {
			box.Column.Span = integerAttribute(box.Element, "span")
		}
	}
}

// createElementBox creates the box of an element, according to its display,
// without its children.
func (b *builder) createElementBox(element *utils.HTMLNode, pseudo string, style *pr.Style, st *status) BoxID {
	box := &Box{
		Kind:      kindOf(style.Display),
		Element:   element,
		Pseudo:    pseudo,
		Style:     style,
		Parent:    st.parent,
		ClipBlock: st.clipbox,
		Displayed: style.Display != pr.DisplayTableColumn,
		Visible:   style.Visibility == pr.VisibilityVisible,
	}
	if b.options.HTMLExtensions && pseudo == "" && element.DataAtom == atom.Img {
		box.Kind = InlineReplaced
		if style.Display.IsBlockLevel() {
			box.Kind = BlockReplaced
		}
		box.Replaced = b.loadImage(element)
	}
	if box.Kind.IsBlock() && style.Position.IsAbsolute() {
		box.Cblock = st.absbox
	} else {
		box.Cblock = st.contbox
	}
	b.addPayload(box)
	return b.newBox(box)
}

func (b *builder) loadImage(element *utils.HTMLNode) *ReplacedData {
	out := &ReplacedData{
		AttrWidth:  lengthAttribute(element, "width"),
		AttrHeight: lengthAttribute(element, "height"),
	}
	alt := element.Get("alt")
	src := element.Get("src")
	switch {
	case src == "":
		out.Content = images.Placeholder{Alt: alt}
	case b.images == nil:
		out.Content = images.Placeholder{Alt: alt}
	default:
		out.Content = b.images.Load(utils.ResolveUrl(b.options.BaseURL, src), alt)
	}
	return out
}

// buildElement creates the boxes of `element` and its descendants.
// It usually returns one box, but an inline box containing blocks is
// split, and the blocks are returned between its twins.
func (b *builder) buildElement(element *utils.HTMLNode, parentStyle *pr.Style, st *status) []BoxID {
	style := b.styles.Get(element, parentStyle)
	if style.Display == pr.DisplayNone {
		return nil
	}
	id := b.createElementBox(element, "", style, st)
	if b.tree.Box(id).Kind.IsReplaced() {
		return []BoxID{id}
	}
	children := element.Children()
	return b.buildChildren(id, st, func(inner *status) {
		if ps := b.styles.GetPseudo(element, "before", style); ps != nil {
			b.addAll(b.buildPseudo(element, "before", ps, inner), inner)
		}
		for _, child := range children {
			switch child.Type {
			case html.ElementNode:
				b.addAll(b.buildElement(child, style, inner), inner)
			case html.TextNode:
				if t := b.buildText(child.Data, inner); t != NoBox {
					b.addToTree(t, inner)
				}
			}
		}
		if ps := b.styles.GetPseudo(element, "after", style); ps != nil {
			b.addAll(b.buildPseudo(element, "after", ps, inner), inner)
		}
	})
}

// buildPseudo creates the box of a ::before or ::after pseudo element,
// containing its generated text.
func (b *builder) buildPseudo(element *utils.HTMLNode, pseudo string, style *pr.Style, st *status) []BoxID {
	id := b.createElementBox(element, pseudo, style, st)
	return b.buildChildren(id, st, func(inner *status) {
		if t := b.buildText(style.Content, inner); t != NoBox {
			b.addToTree(t, inner)
		}
	})
}

// buildChildren runs `content`, which adds the children of `id`, in the
// context of the new box, then normalizes the box.
func (b *builder) buildChildren(id BoxID, st *status, content func(inner *status)) []BoxID {
	box := b.tree.Box(id)
	inner := *st
	inner.parent = id
	inner.closed = false
	inner.output = []BoxID{id}
	if box.Kind.IsBlockContainer() {
		if box.Style.Position != pr.PositionStatic {
			inner.absbox = id
		}
		inner.contbox = id
		if box.Style.Overflow == pr.OverflowHidden {
			inner.clipbox = id
		}
		inner.lastInFlow = NoBox
	}

	content(&inner)

	// the twins created while adding the content are normalized as well
	for _, out := range inner.output {
		if ob := b.tree.Box(out); ob.Element == box.Element && ob.Pseudo == box.Pseudo {
			b.normalize(out)
		}
	}
	if box.Kind.IsBlockContainer() {
		b.removeTrailingWhitespaces(id)
	}
	return inner.output
}

// buildText creates a text box with the processed content of a text node,
// or returns NoBox if it is empty.
func (b *builder) buildText(content string, st *status) BoxID {
	parent := b.tree.Box(st.parent)
	s := text.ProcessWhitespace(content, parent.Style.WhiteSpace)
	s = text.Transform(s, parent.Style.TextTransform)
	if s == "" {
		return NoBox
	}
	return b.newBox(&Box{
		Kind:      Text,
		Style:     parent.Style,
		Parent:    st.parent,
		Cblock:    st.contbox,
		ClipBlock: st.clipbox,
		Displayed: true,
		Visible:   parent.Style.Visibility == pr.VisibilityVisible,
		Text:      &TextData{Text: s, End: len(s), OrigEnd: len(s)},
	})
}

func (b *builder) addAll(ids []BoxID, st *status) {
	for _, id := range ids {
		b.addToTree(id, st)
	}
}

func (b *builder) appendChild(parent, child BoxID) {
	p := b.tree.Box(parent)
	p.Children = append(p.Children, child)
	b.tree.Box(child).Parent = parent
}

// addToTree adds a newly created box to the tree, according to its type:
// out-of-flow boxes go to their containing block, blocks inside inline
// boxes split them, and collapsible white space following white space
// is dropped.
func (b *builder) addToTree(id BoxID, st *status) {
	box := b.tree.Box(id)
	if box.Kind.IsBlock() {
		if box.IsOutOfFlow() {
			b.appendChild(box.Cblock, id)
			box.AbsReference = st.lastInFlow
			box.DOMParent = st.parent
			return
		}
		if b.tree.Box(st.parent).Kind.IsBlockContainer() {
			b.appendChild(st.parent, id)
			st.lastInFlow = id
			return
		}
		// block in an inline box: the inline box is finished, and
		// the block is moved to the nearest block ancestor
		b.tree.Box(id).Parent = NoBox
		st.output = append(st.output, id)
		st.closed = true
		st.lastInFlow = id
		return
	}

	var lastWhite bool
	if st.lastInFlow == NoBox {
		lastWhite = true
	} else {
		last := b.tree.Box(st.lastInFlow)
		lastWhite = last.Kind.IsBlock() || (b.tree.EndsWithWhitespace(st.lastInFlow) && last.CollapsesSpaces())
	}
	if lastWhite && box.CollapsesSpaces() && b.tree.IsWhitespace(id) {
		return
	}
	if st.closed {
		b.openTwin(st)
	}
	b.appendChild(st.parent, id)
	st.lastInFlow = id
}

// openTwin creates a copy of the current (inline) parent, receiving
// the content following a block.
func (b *builder) openTwin(st *status) {
	current := st.parent
	twin := b.tree.Clone(current)
	tw := b.tree.Box(twin)
	tw.Children = nil
	tw.Order = b.order
	b.order++
	tw.PrevTwin = current
	tw.NextTwin = NoBox
	b.tree.Box(current).NextTwin = twin
	st.output = append(st.output, twin)
	st.parent = twin
	st.closed = false
}

// removeTrailingWhitespaces removes the collapsible white space at the end
// of the in-flow content of a block.
func (b *builder) removeTrailingWhitespaces(id BoxID) {
	box := b.tree.Box(id)
	if !box.CollapsesSpaces() {
		return
	}
	for i := len(box.Children) - 1; i >= 0; i-- {
		child := box.Children[i]
		cb := b.tree.Box(child)
		if !cb.IsInFlow() {
			continue
		}
		if cb.Kind.IsBlock() || !cb.CollapsesSpaces() {
			return
		}
		if b.tree.IsWhitespace(child) {
			box.Children = append(box.Children[:i], box.Children[i+1:]...)
			continue
		}
		switch cb.Kind {
		case Inline:
			b.removeTrailingWhitespaces(child)
		case Text:
			t := cb.Text
			for t.End > t.Start && t.Text[t.End-1] == ' ' {
				t.End--
			}
			t.OrigEnd = t.End
		}
		return
	}
}
