package properties

type Display uint8

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayListItem
	DisplayInlineBlock
	DisplayTable
	DisplayInlineTable
	DisplayTableRowGroup
	DisplayTableHeaderGroup
	DisplayTableFooterGroup
	DisplayTableRow
	DisplayTableColumnGroup
	DisplayTableColumn
	DisplayTableCell
	DisplayTableCaption
	DisplayNone
)

var displayKeywords = map[string]Display{
	"inline": DisplayInline, "block": DisplayBlock, "list-item": DisplayListItem,
	"inline-block": DisplayInlineBlock, "table": DisplayTable, "inline-table": DisplayInlineTable,
	"table-row-group": DisplayTableRowGroup, "table-header-group": DisplayTableHeaderGroup,
	"table-footer-group": DisplayTableFooterGroup, "table-row": DisplayTableRow,
	"table-column-group": DisplayTableColumnGroup, "table-column": DisplayTableColumn,
	"table-cell": DisplayTableCell, "table-caption": DisplayTableCaption, "none": DisplayNone,
}

func (d Display) String() string {
	for k, v := range displayKeywords {
		if v == d {
			return k
		}
	}
	return "<invalid display>"
}

// IsBlockLevel returns true for the displays generating block level boxes.
func (d Display) IsBlockLevel() bool {
	switch d {
	case DisplayBlock, DisplayListItem, DisplayTable:
		return true
	}
	return false
}

// IsTableInternal returns true for the table parts (excluding table and caption).
func (d Display) IsTableInternal() bool {
	switch d {
	case DisplayTableRowGroup, DisplayTableHeaderGroup, DisplayTableFooterGroup,
		DisplayTableRow, DisplayTableColumnGroup, DisplayTableColumn, DisplayTableCell:
		return true
	}
	return false
}

type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

var positionKeywords = map[string]Position{
	"static": PositionStatic, "relative": PositionRelative,
	"absolute": PositionAbsolute, "fixed": PositionFixed,
}

// IsAbsolute returns true for absolute and fixed positions.
func (p Position) IsAbsolute() bool { return p == PositionAbsolute || p == PositionFixed }

type Float uint8

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

var floatKeywords = map[string]Float{"none": FloatNone, "left": FloatLeft, "right": FloatRight}

type Clear uint8

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

var clearKeywords = map[string]Clear{"none": ClearNone, "left": ClearLeft, "right": ClearRight, "both": ClearBoth}

type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

var overflowKeywords = map[string]Overflow{
	"visible": OverflowVisible, "hidden": OverflowHidden,
	"scroll": OverflowScroll, "auto": OverflowAuto,
}

type Visibility uint8

const (
	VisibilityVisible Visibility = iota
	VisibilityHidden
	VisibilityCollapse
)

var visibilityKeywords = map[string]Visibility{
	"visible": VisibilityVisible, "hidden": VisibilityHidden, "collapse": VisibilityCollapse,
}

type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpacePre
	WhiteSpaceNowrap
	WhiteSpacePreWrap
	WhiteSpacePreLine
)

var whiteSpaceKeywords = map[string]WhiteSpace{
	"normal": WhiteSpaceNormal, "pre": WhiteSpacePre, "nowrap": WhiteSpaceNowrap,
	"pre-wrap": WhiteSpacePreWrap, "pre-line": WhiteSpacePreLine,
}

// CollapsesSpaces is true if sequences of white space are collapsed.
func (ws WhiteSpace) CollapsesSpaces() bool {
	return ws == WhiteSpaceNormal || ws == WhiteSpaceNowrap || ws == WhiteSpacePreLine
}

// AllowsWrapping is true if lines may be broken at white spaces.
func (ws WhiteSpace) AllowsWrapping() bool {
	return ws == WhiteSpaceNormal || ws == WhiteSpacePreWrap || ws == WhiteSpacePreLine
}

// CollapsesLines is true if line feeds are treated as spaces.
func (ws WhiteSpace) CollapsesLines() bool {
	return ws == WhiteSpaceNormal || ws == WhiteSpaceNowrap
}

type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

var textAlignKeywords = map[string]TextAlign{
	"left": TextAlignLeft, "right": TextAlignRight,
	"center": TextAlignCenter, "justify": TextAlignJustify,
}

type VAlign uint8

const (
	VAlignBaseline VAlign = iota
	VAlignSub
	VAlignSuper
	VAlignTextTop
	VAlignTextBottom
	VAlignMiddle
	VAlignTop
	VAlignBottom
	VAlignLength // Length is used
)

var vAlignKeywords = map[string]VAlign{
	"baseline": VAlignBaseline, "sub": VAlignSub, "super": VAlignSuper,
	"text-top": VAlignTextTop, "text-bottom": VAlignTextBottom, "middle": VAlignMiddle,
	"top": VAlignTop, "bottom": VAlignBottom,
}

type VerticalAlign struct {
	Kind   VAlign
	Length Dimension // for VAlignLength; percentages refer to the line height
}

type ListStyleType uint8

const (
	ListStyleDisc ListStyleType = iota
	ListStyleCircle
	ListStyleSquare
	ListStyleDecimal
	ListStyleLowerAlpha
	ListStyleUpperAlpha
	ListStyleLowerRoman
	ListStyleUpperRoman
	ListStyleNone
)

var listStyleKeywords = map[string]ListStyleType{
	"disc": ListStyleDisc, "circle": ListStyleCircle, "square": ListStyleSquare,
	"decimal": ListStyleDecimal, "lower-alpha": ListStyleLowerAlpha, "lower-latin": ListStyleLowerAlpha,
	"upper-alpha": ListStyleUpperAlpha, "upper-latin": ListStyleUpperAlpha,
	"lower-roman": ListStyleLowerRoman, "upper-roman": ListStyleUpperRoman, "none": ListStyleNone,
}

// IsGlyph returns true for the markers drawn as shapes rather than text.
func (l ListStyleType) IsGlyph() bool {
	return l == ListStyleDisc || l == ListStyleCircle || l == ListStyleSquare
}

type BorderStyle uint8

const (
	BorderNone BorderStyle = iota
	BorderHidden
	BorderSolid
	BorderDashed
	BorderDotted
	BorderDouble
	BorderGroove
	BorderRidge
	BorderInset
	BorderOutset
)

var borderStyleKeywords = map[string]BorderStyle{
	"none": BorderNone, "hidden": BorderHidden, "solid": BorderSolid, "dashed": BorderDashed,
	"dotted": BorderDotted, "double": BorderDouble, "groove": BorderGroove, "ridge": BorderRidge,
	"inset": BorderInset, "outset": BorderOutset,
}

type CaptionSide uint8

const (
	CaptionTop CaptionSide = iota
	CaptionBottom
)

var captionSideKeywords = map[string]CaptionSide{"top": CaptionTop, "bottom": CaptionBottom}

type TextTransform uint8

const (
	TextTransformNone TextTransform = iota
	TextTransformUppercase
	TextTransformLowercase
	TextTransformCapitalize
)

var textTransformKeywords = map[string]TextTransform{
	"none": TextTransformNone, "uppercase": TextTransformUppercase,
	"lowercase": TextTransformLowercase, "capitalize": TextTransformCapitalize,
}

// TextDecoration is a set of decoration lines.
type TextDecoration uint8

const (
	Underline TextDecoration = 1 << iota
	Overline
	LineThrough
)

type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique
)

var fontStyleKeywords = map[string]FontStyle{
	"normal": FontStyleNormal, "italic": FontStyleItalic, "oblique": FontStyleOblique,
}
