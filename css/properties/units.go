package properties

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benoitkugler/cssbox/utils"
)

type Fl = utils.Fl

type Unit uint8

const (
	Scalar Unit = iota // means no unit, but a valid value
	Px
	Pt
	Pc
	In
	Cm
	Mm
	Em
	Ex
	Perc // percentage (%)
	Deg
	Rad
	Turn

	// keywords which may replace a length
	Auto
	None
	Normal
)

func (u Unit) String() string {
	switch u {
	case Scalar:
		return ""
	case Perc:
		return "%"
	case Ex:
		return "ex"
	case Em:
		return "em"
	case Px:
		return "px"
	case Pt:
		return "pt"
	case Pc:
		return "pc"
	case In:
		return "in"
	case Cm:
		return "cm"
	case Mm:
		return "mm"
	case Deg:
		return "deg"
	case Rad:
		return "rad"
	case Turn:
		return "turn"
	case Auto:
		return "auto"
	case None:
		return "none"
	case Normal:
		return "normal"
	default:
		return "<invalid unit>"
	}
}

var units = map[string]Unit{
	"px": Px, "pt": Pt, "pc": Pc, "in": In, "cm": Cm, "mm": Mm,
	"em": Em, "ex": Ex, "%": Perc, "deg": Deg, "rad": Rad, "turn": Turn,
}

// Dimension is a specified length, which may be a keyword (Auto, None, Normal).
type Dimension struct {
	Value Fl
	Unit  Unit
}

// PxDim returns a length in pixels.
func PxDim(v Fl) Dimension { return Dimension{v, Px} }

var (
	AutoDim   = Dimension{Unit: Auto}
	NoneDim   = Dimension{Unit: None}
	NormalDim = Dimension{Unit: Normal}
	ZeroPx    = Dimension{Unit: Px}
)

func (d Dimension) String() string {
	switch d.Unit {
	case Auto, None, Normal:
		return d.Unit.String()
	}
	return fmt.Sprintf("%g%s", d.Value, d.Unit)
}

func (d Dimension) IsAuto() bool { return d.Unit == Auto }

func (d Dimension) IsNone() bool { return d.Unit == None }

func (d Dimension) IsPercentage() bool { return d.Unit == Perc }

// IsLength returns true for percentages and absolute or relative lengths.
func (d Dimension) IsLength() bool {
	switch d.Unit {
	case Scalar, Px, Pt, Pc, In, Cm, Mm, Em, Ex, Perc:
		return true
	}
	return false
}

// ParseDimension parses a length or a percentage. Unitless values
// are accepted only when zero, unless `unitless` is true.
func ParseDimension(s string, unitless bool) (Dimension, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Dimension{}, false
	}
	i := len(s)
	for i > 0 && (s[i-1] == '%' || (s[i-1] >= 'a' && s[i-1] <= 'z')) {
		i--
	}
	number, suffix := s[:i], s[i:]
	v, err := strconv.ParseFloat(number, 32)
	if err != nil {
		return Dimension{}, false
	}
	if suffix == "" {
		if unitless {
			return Dimension{Fl(v), Scalar}, true
		}
		if v == 0 {
			return Dimension{0, Px}, true
		}
		return Dimension{}, false
	}
	u, ok := units[suffix]
	if !ok {
		return Dimension{}, false
	}
	return Dimension{Fl(v), u}, true
}

// LengthSet stores four resolved edge widths, used for margins,
// borders, paddings and position offsets.
type LengthSet struct {
	Top, Right, Bottom, Left Fl
}

// Horizontal returns Left + Right.
func (l LengthSet) Horizontal() Fl { return l.Left + l.Right }

// Vertical returns Top + Bottom.
func (l LengthSet) Vertical() Fl { return l.Top + l.Bottom }

// IsZero returns true if all the edges are 0.
func (l LengthSet) IsZero() bool { return l == LengthSet{} }

// Edges stores four specified edge values.
type Edges struct {
	Top, Right, Bottom, Left Dimension
}

// AllEdges returns Edges with the same value on each side.
func AllEdges(d Dimension) Edges { return Edges{d, d, d, d} }

// Decoder converts specified lengths to pixels, for a given
// font context.
type Decoder struct {
	Em  Fl // font size
	Ex  Fl // x-height
	DPI Fl
}

// NewDecoder uses the CSS reference resolution of 96 dpi.
func NewDecoder(em, ex Fl) Decoder { return Decoder{Em: em, Ex: ex, DPI: 96} }

// Length resolves `v` in pixels. Keywords resolve to `auto`,
// percentages are relative to `whole`.
func (d Decoder) Length(v Dimension, auto, whole Fl) Fl {
	switch v.Unit {
	case Auto, None, Normal:
		return auto
	case Perc:
		return whole * v.Value / 100
	case Em:
		return v.Value * d.Em
	case Ex:
		return v.Value * d.Ex
	case In:
		return v.Value * d.DPI
	case Cm:
		return v.Value * d.DPI / 2.54
	case Mm:
		return v.Value * d.DPI / 25.4
	case Pt:
		return v.Value * d.DPI / 72
	case Pc:
		return v.Value * d.DPI / 6
	default: // Px, Scalar
		return v.Value
	}
}

// Edges resolves the four edges, with auto edges resolved to 0.
func (d Decoder) Edges(e Edges, whole Fl) LengthSet {
	return LengthSet{
		Top:    d.Length(e.Top, 0, whole),
		Right:  d.Length(e.Right, 0, whole),
		Bottom: d.Length(e.Bottom, 0, whole),
		Left:   d.Length(e.Left, 0, whole),
	}
}
