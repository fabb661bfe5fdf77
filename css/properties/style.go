package properties

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Style stores the computed values of an element, for the
// CSS 2.1 properties used by the layout.
//
// Lengths which depend on the font of the box (em, ex) and
// percentages are kept as Dimension and resolved during layout,
// with a Decoder.
type Style struct {
	Display       Display
	Position      Position
	Float         Float
	Clear         Clear
	Overflow      Overflow
	Visibility    Visibility
	WhiteSpace    WhiteSpace
	TextAlign     TextAlign
	VerticalAlign VerticalAlign
	ListStyleType ListStyleType
	CaptionSide   CaptionSide

	TextTransform  TextTransform
	TextDecoration TextDecoration

	Width, Height       Dimension
	MinWidth, MinHeight Dimension
	MaxWidth, MaxHeight Dimension

	Offsets Edges // top, right, bottom, left
	Margin  Edges
	Padding Edges

	BorderWidth LengthSet // computed, in pixels
	BorderStyle [4]BorderStyle
	BorderColor [4]Color

	FontFamily []string
	FontSize   Fl // computed, in pixels
	FontWeight int
	FontStyle  FontStyle
	LineHeight Dimension // Normal, Scalar (factor) or Px

	Color           Color
	BackgroundColor Color
	BackgroundImage string // URL, empty for none

	BorderSpacing Fl // computed, in pixels

	Transform       []TransformFunction
	TransformOrigin [2]Dimension

	// Content is the generated text for ::before and ::after.
	Content    string
	HasContent bool

	// Specified stores the cascaded (or inherited) value of each property.
	Specified map[string]string
}

// index of the sides in BorderStyle and BorderColor
const (
	SideTop = iota
	SideRight
	SideBottom
	SideLeft
)

// TransformFunction is one item of the transform property.
type TransformFunction struct {
	Name string // translate, translatex, translatey, scale, scalex, scaley, rotate, skewx, skewy, matrix
	Args []Dimension
}

// MediumFontSize is the initial font size, in pixels.
const MediumFontSize Fl = 16

// InitialStyle returns the initial values of every property.
func InitialStyle() *Style {
	return &Style{
		Width:           AutoDim,
		Height:          AutoDim,
		MinWidth:        ZeroPx,
		MinHeight:       ZeroPx,
		MaxWidth:        NoneDim,
		MaxHeight:       NoneDim,
		Offsets:         AllEdges(AutoDim),
		Margin:          AllEdges(ZeroPx),
		Padding:         AllEdges(ZeroPx),
		BorderWidth:     LengthSet{3, 3, 3, 3}, // medium, zeroed by the border style
		FontFamily:      []string{"serif"},
		FontSize:        MediumFontSize,
		FontWeight:      400,
		LineHeight:      NormalDim,
		Color:           Black,
		TransformOrigin: [2]Dimension{{50, Perc}, {50, Perc}},
		Specified:       map[string]string{},
	}
}

var inheritedProperties = map[string]bool{
	"visibility": true, "white-space": true, "text-align": true, "list-style-type": true,
	"caption-side": true, "text-transform": true, "text-decoration": true, "font-family": true,
	"font-size": true, "font-weight": true, "font-style": true, "line-height": true,
	"color": true, "border-spacing": true,
}

// IsInherited returns true for the properties inherited by default.
func IsInherited(name string) bool { return inheritedProperties[name] }

// InheritFrom returns the initial style with the inherited properties
// of `parent` (which may be nil).
func InheritFrom(parent *Style) *Style {
	s := InitialStyle()
	if parent == nil {
		return s
	}
	s.Visibility = parent.Visibility
	s.WhiteSpace = parent.WhiteSpace
	s.TextAlign = parent.TextAlign
	s.ListStyleType = parent.ListStyleType
	s.CaptionSide = parent.CaptionSide
	s.TextTransform = parent.TextTransform
	s.TextDecoration = parent.TextDecoration
	s.FontFamily = parent.FontFamily
	s.FontSize = parent.FontSize
	s.FontWeight = parent.FontWeight
	s.FontStyle = parent.FontStyle
	s.LineHeight = parent.LineHeight
	s.Color = parent.Color
	s.BorderSpacing = parent.BorderSpacing
	for name, v := range parent.Specified {
		if inheritedProperties[name] {
			s.Specified[name] = v
		}
	}
	return s
}

// ComputeStyle builds the computed style of an element from its
// cascaded declarations (with shorthands already expanded) and the
// style of its parent (nil for the root).
// Invalid declarations are ignored and reported in the returned slice.
func ComputeStyle(declarations map[string]string, parent *Style) (*Style, []error) {
	s := InheritFrom(parent)

	// font-size and color are needed to resolve the other properties
	names := make([]string, 0, len(declarations))
	for name := range declarations {
		if name != "font-size" && name != "color" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	ordered := append([]string{"font-size", "color"}, names...)

	var (
		errs         []error
		currentColor [4]bool
	)
	for i := range currentColor {
		currentColor[i] = true
	}
	for _, name := range ordered {
		value, has := declarations[name]
		if !has {
			continue
		}
		value = strings.TrimSpace(value)
		s.Specified[name] = value
		if strings.EqualFold(value, "inherit") {
			s.inherit(name, parent)
			continue
		}
		if side, ok := borderColorSides[name]; ok {
			c, current, ok := ParseColor(value)
			if !ok {
				errs = append(errs, fmt.Errorf("invalid value %q for %s", value, name))
				continue
			}
			currentColor[side] = current
			s.BorderColor[side] = c
			continue
		}
		if err := s.set(name, value, parent); err != nil {
			errs = append(errs, err)
		}
	}

	for side, current := range currentColor {
		if current {
			s.BorderColor[side] = s.Color
		}
	}
	// a border width is 0 when its style is none or hidden
	if st := s.BorderStyle[SideTop]; st == BorderNone || st == BorderHidden {
		s.BorderWidth.Top = 0
	}
	if st := s.BorderStyle[SideRight]; st == BorderNone || st == BorderHidden {
		s.BorderWidth.Right = 0
	}
	if st := s.BorderStyle[SideBottom]; st == BorderNone || st == BorderHidden {
		s.BorderWidth.Bottom = 0
	}
	if st := s.BorderStyle[SideLeft]; st == BorderNone || st == BorderHidden {
		s.BorderWidth.Left = 0
	}
	return s, errs
}

var borderColorSides = map[string]int{
	"border-top-color": SideTop, "border-right-color": SideRight,
	"border-bottom-color": SideBottom, "border-left-color": SideLeft,
}

// Get returns the specified value of the property `name`, or an
// empty string if it was neither declared nor inherited.
func (s *Style) Get(name string) string { return s.Specified[name] }

// Copy returns a shallow copy, with its own Specified map.
func (s *Style) Copy() *Style {
	out := *s
	out.Specified = make(map[string]string, len(s.Specified))
	for k, v := range s.Specified {
		out.Specified[k] = v
	}
	return &out
}

// AnonymousChild returns the style of an anonymous box generated
// inside a box styled with `s`: only the inherited properties are kept.
func (s *Style) AnonymousChild(display Display) *Style {
	out := InheritFrom(s)
	out.Display = display
	return out
}

func (s *Style) inherit(name string, parent *Style) {
	if parent == nil {
		parent = InitialStyle()
	}
	if v, ok := parent.Specified[name]; ok {
		s.Specified[name] = v
	}
	switch name {
	case "display":
		s.Display = parent.Display
	case "position":
		s.Position = parent.Position
	case "float":
		s.Float = parent.Float
	case "clear":
		s.Clear = parent.Clear
	case "overflow":
		s.Overflow = parent.Overflow
	case "width":
		s.Width = parent.Width
	case "height":
		s.Height = parent.Height
	case "background-color":
		s.BackgroundColor = parent.BackgroundColor
	case "vertical-align":
		s.VerticalAlign = parent.VerticalAlign
	case "font-size":
		s.FontSize = parent.FontSize
	case "color":
		s.Color = parent.Color
	default:
		// inherited properties already have the parent value,
		// the others fall back to their initial value
	}
}

func invalid(name, value string) error {
	return fmt.Errorf("invalid value %q for %s", value, name)
}

func keyword[T any](m map[string]T, name, value string, dst *T) error {
	v, ok := m[strings.ToLower(value)]
	if !ok {
		return invalid(name, value)
	}
	*dst = v
	return nil
}

// dimension parses a length or percentage, accepting the keywords of `allowed`.
func dimension(name, value string, dst *Dimension, allowed ...Unit) error {
	v := strings.ToLower(value)
	for _, u := range allowed {
		if v == u.String() {
			*dst = Dimension{Unit: u}
			return nil
		}
	}
	d, ok := ParseDimension(v, false)
	if !ok || !d.IsLength() {
		return invalid(name, value)
	}
	*dst = d
	return nil
}

var fontSizeKeywords = map[string]Fl{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32,
}

func (s *Style) set(name, value string, parent *Style) error {
	parentFontSize := MediumFontSize
	if parent != nil {
		parentFontSize = parent.FontSize
	}
	switch name {
	case "display":
		return keyword(displayKeywords, name, value, &s.Display)
	case "position":
		return keyword(positionKeywords, name, value, &s.Position)
	case "float":
		return keyword(floatKeywords, name, value, &s.Float)
	case "clear":
		return keyword(clearKeywords, name, value, &s.Clear)
	case "overflow":
		return keyword(overflowKeywords, name, value, &s.Overflow)
	case "visibility":
		return keyword(visibilityKeywords, name, value, &s.Visibility)
	case "white-space":
		return keyword(whiteSpaceKeywords, name, value, &s.WhiteSpace)
	case "text-align":
		return keyword(textAlignKeywords, name, value, &s.TextAlign)
	case "list-style-type":
		return keyword(listStyleKeywords, name, value, &s.ListStyleType)
	case "caption-side":
		return keyword(captionSideKeywords, name, value, &s.CaptionSide)
	case "text-transform":
		return keyword(textTransformKeywords, name, value, &s.TextTransform)
	case "font-style":
		return keyword(fontStyleKeywords, name, value, &s.FontStyle)
	case "border-top-style":
		return keyword(borderStyleKeywords, name, value, &s.BorderStyle[SideTop])
	case "border-right-style":
		return keyword(borderStyleKeywords, name, value, &s.BorderStyle[SideRight])
	case "border-bottom-style":
		return keyword(borderStyleKeywords, name, value, &s.BorderStyle[SideBottom])
	case "border-left-style":
		return keyword(borderStyleKeywords, name, value, &s.BorderStyle[SideLeft])
	case "vertical-align":
		var k VAlign
		if keyword(vAlignKeywords, name, value, &k) == nil {
			s.VerticalAlign = VerticalAlign{Kind: k}
			return nil
		}
		var d Dimension
		if err := dimension(name, value, &d); err != nil {
			return err
		}
		s.VerticalAlign = VerticalAlign{Kind: VAlignLength, Length: d}
	case "text-decoration":
		for _, field := range strings.Fields(strings.ToLower(value)) {
			switch field {
			case "none":
			case "underline":
				s.TextDecoration |= Underline
			case "overline":
				s.TextDecoration |= Overline
			case "line-through":
				s.TextDecoration |= LineThrough
			case "blink":
			default:
				return invalid(name, value)
			}
		}
	case "width":
		return dimension(name, value, &s.Width, Auto)
	case "height":
		return dimension(name, value, &s.Height, Auto)
	case "min-width":
		return dimension(name, value, &s.MinWidth)
	case "min-height":
		return dimension(name, value, &s.MinHeight)
	case "max-width":
		return dimension(name, value, &s.MaxWidth, None)
	case "max-height":
		return dimension(name, value, &s.MaxHeight, None)
	case "top":
		return dimension(name, value, &s.Offsets.Top, Auto)
	case "right":
		return dimension(name, value, &s.Offsets.Right, Auto)
	case "bottom":
		return dimension(name, value, &s.Offsets.Bottom, Auto)
	case "left":
		return dimension(name, value, &s.Offsets.Left, Auto)
	case "margin-top":
		return dimension(name, value, &s.Margin.Top, Auto)
	case "margin-right":
		return dimension(name, value, &s.Margin.Right, Auto)
	case "margin-bottom":
		return dimension(name, value, &s.Margin.Bottom, Auto)
	case "margin-left":
		return dimension(name, value, &s.Margin.Left, Auto)
	case "padding-top":
		return dimension(name, value, &s.Padding.Top)
	case "padding-right":
		return dimension(name, value, &s.Padding.Right)
	case "padding-bottom":
		return dimension(name, value, &s.Padding.Bottom)
	case "padding-left":
		return dimension(name, value, &s.Padding.Left)
	case "border-top-width":
		return s.borderWidth(name, value, &s.BorderWidth.Top)
	case "border-right-width":
		return s.borderWidth(name, value, &s.BorderWidth.Right)
	case "border-bottom-width":
		return s.borderWidth(name, value, &s.BorderWidth.Bottom)
	case "border-left-width":
		return s.borderWidth(name, value, &s.BorderWidth.Left)
	case "font-size":
		if v, ok := fontSizeKeywords[strings.ToLower(value)]; ok {
			s.FontSize = v
			return nil
		}
		switch strings.ToLower(value) {
		case "smaller":
			s.FontSize = parentFontSize / 1.2
			return nil
		case "larger":
			s.FontSize = parentFontSize * 1.2
			return nil
		}
		var d Dimension
		if err := dimension(name, value, &d); err != nil {
			return err
		}
		// em and percentages refer to the parent font
		s.FontSize = NewDecoder(parentFontSize, parentFontSize/2).Length(d, 0, parentFontSize)
	case "font-weight":
		switch strings.ToLower(value) {
		case "normal":
			s.FontWeight = 400
		case "bold":
			s.FontWeight = 700
		case "bolder":
			s.FontWeight = 700
		case "lighter":
			s.FontWeight = 100
		default:
			w, err := strconv.Atoi(value)
			if err != nil || w < 100 || w > 900 {
				return invalid(name, value)
			}
			s.FontWeight = w
		}
	case "font-family":
		var families []string
		for _, f := range strings.Split(value, ",") {
			f = strings.Trim(strings.TrimSpace(f), `"'`)
			if f != "" {
				families = append(families, f)
			}
		}
		if len(families) == 0 {
			return invalid(name, value)
		}
		s.FontFamily = families
	case "line-height":
		if strings.EqualFold(value, "normal") {
			s.LineHeight = NormalDim
			return nil
		}
		d, ok := ParseDimension(value, true)
		if !ok || !d.IsLength() || d.Value < 0 {
			return invalid(name, value)
		}
		if d.Unit == Scalar {
			s.LineHeight = d
		} else {
			s.LineHeight = PxDim(NewDecoder(s.FontSize, s.FontSize/2).Length(d, 0, s.FontSize))
		}
	case "color":
		c, current, ok := ParseColor(value)
		if !ok {
			return invalid(name, value)
		}
		if current {
			if parent != nil {
				c = parent.Color
			} else {
				c = Black
			}
		}
		s.Color = c
	case "background-color":
		c, current, ok := ParseColor(value)
		if !ok {
			return invalid(name, value)
		}
		if current {
			c = s.Color
		}
		s.BackgroundColor = c
	case "background-image":
		if strings.EqualFold(value, "none") {
			s.BackgroundImage = ""
			return nil
		}
		url, ok := ParseURL(value)
		if !ok {
			return invalid(name, value)
		}
		s.BackgroundImage = url
	case "border-spacing":
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return invalid(name, value)
		}
		var d Dimension
		if err := dimension(name, fields[0], &d); err != nil || d.IsPercentage() {
			return invalid(name, value)
		}
		s.BorderSpacing = NewDecoder(s.FontSize, s.FontSize/2).Length(d, 0, 0)
	case "transform":
		if strings.EqualFold(value, "none") {
			s.Transform = nil
			return nil
		}
		t, ok := ParseTransform(value)
		if !ok {
			return invalid(name, value)
		}
		s.Transform = t
	case "transform-origin":
		o, ok := parseOrigin(value)
		if !ok {
			return invalid(name, value)
		}
		s.TransformOrigin = o
	case "content":
		switch strings.ToLower(value) {
		case "none", "normal":
			s.Content, s.HasContent = "", false
			return nil
		}
		c, ok := ParseStrings(value)
		if !ok {
			return invalid(name, value)
		}
		s.Content, s.HasContent = c, true
	default:
		// unsupported property: kept in Specified only
	}
	return nil
}

func (s *Style) borderWidth(name, value string, dst *Fl) error {
	switch strings.ToLower(value) {
	case "thin":
		*dst = 1
	case "medium":
		*dst = 3
	case "thick":
		*dst = 5
	default:
		d, ok := ParseDimension(value, false)
		if !ok || !d.IsLength() || d.IsPercentage() || d.Value < 0 {
			return invalid(name, value)
		}
		*dst = NewDecoder(s.FontSize, s.FontSize/2).Length(d, 0, 0)
	}
	return nil
}
