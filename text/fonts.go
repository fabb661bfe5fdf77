// Package text provides the font metrics used by the layout
// and the text related transformations (white space processing,
// text-transform).
package text

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	pr "github.com/benoitkugler/cssbox/css/properties"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type Fl = pr.Fl

// Font identifies a face, at a given size in pixels.
type Font struct {
	Family string // first family of the font-family list
	Size   Fl
	Bold   bool
	Italic bool
}

// FontOf returns the font selected by `style`.
func FontOf(style *pr.Style) Font {
	family := "serif"
	if len(style.FontFamily) != 0 {
		family = strings.ToLower(style.FontFamily[0])
	}
	return Font{
		Family: family,
		Size:   style.FontSize,
		Bold:   style.FontWeight >= 600,
		Italic: style.FontStyle != pr.FontStyleNormal,
	}
}

// Metrics are the vertical metrics of a font, in pixels.
type Metrics struct {
	Ascent  Fl // above the baseline
	Descent Fl // below the baseline, positive
	XHeight Fl
}

// Height returns Ascent + Descent.
func (m Metrics) Height() Fl { return m.Ascent + m.Descent }

// FontConfiguration provides the fonts used for layout and painting.
type FontConfiguration interface {
	Metrics(f Font) Metrics
	// Width returns the advance of `s`.
	Width(f Font, s string) Fl
	// Face returns a face suitable to draw text with `f`.
	Face(f Font) font.Face
}

func fixedToFl(v fixed.Int26_6) Fl { return Fl(v) / 64 }

// GoFonts uses the Go fonts (sans serif and mono), parsed once and
// cached per size.
type GoFonts struct {
	parseOnce sync.Once
	parsed    map[faceKind]*opentype.Font
	parseErr  error

	mu    sync.Mutex
	faces map[Font]font.Face
}

type faceKind uint8

const (
	regular faceKind = iota
	bold
	italic
	boldItalic
	mono
	monoBold
)

var _ FontConfiguration = (*GoFonts)(nil)

// NewGoFonts returns a configuration using the Go fonts.
func NewGoFonts() *GoFonts {
	return &GoFonts{faces: make(map[Font]font.Face)}
}

func (gf *GoFonts) parse() {
	sources := map[faceKind][]byte{
		regular: goregular.TTF, bold: gobold.TTF, italic: goitalic.TTF,
		boldItalic: gobolditalic.TTF, mono: gomono.TTF, monoBold: gomonobold.TTF,
	}
	gf.parsed = make(map[faceKind]*opentype.Font, len(sources))
	for kind, data := range sources {
		f, err := opentype.Parse(data)
		if err != nil {
			gf.parseErr = fmt.Errorf("parsing Go font: %w", err)
			return
		}
		gf.parsed[kind] = f
	}
}

func kindOf(f Font) faceKind {
	switch f.Family {
	case "monospace", "courier", "courier new", "go mono":
		if f.Bold {
			return monoBold
		}
		return mono
	}
	switch {
	case f.Bold && f.Italic:
		return boldItalic
	case f.Bold:
		return bold
	case f.Italic:
		return italic
	default:
		return regular
	}
}

// Face returns the (cached) face for `f`, falling back
// on basicfont if the Go fonts could not be loaded.
func (gf *GoFonts) Face(f Font) font.Face {
	gf.parseOnce.Do(gf.parse)
	if gf.parseErr != nil {
		return basicfont.Face7x13
	}

	key := Font{Family: f.Family, Size: f.Size, Bold: f.Bold, Italic: f.Italic}
	gf.mu.Lock()
	defer gf.mu.Unlock()
	if face, ok := gf.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(gf.parsed[kindOf(f)], &opentype.FaceOptions{
		Size:    float64(f.Size),
		DPI:     72, // so that Size is in pixels
		Hinting: font.HintingNone,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	gf.faces[key] = face
	return face
}

func (gf *GoFonts) Metrics(f Font) Metrics {
	m := gf.Face(f).Metrics()
	out := Metrics{Ascent: fixedToFl(m.Ascent), Descent: fixedToFl(m.Descent), XHeight: fixedToFl(m.XHeight)}
	if out.XHeight <= 0 {
		out.XHeight = f.Size / 2
	}
	return out
}

func (gf *GoFonts) Width(f Font, s string) Fl {
	if s == "" {
		return 0
	}
	return fixedToFl(font.MeasureString(gf.Face(f), s))
}

// FixedFonts has metrics derived from basicfont.Face7x13, scaled
// linearly with the font size: at 13px, each character
// has an advance of 7px and the font height is 13px.
// It provides exact geometry for tests.
type FixedFonts struct{}

var _ FontConfiguration = FixedFonts{}

const fixedSize = 13

func (FixedFonts) scale(f Font) Fl { return f.Size / fixedSize }

func (ff FixedFonts) Metrics(f Font) Metrics {
	face := basicfont.Face7x13
	s := ff.scale(f)
	return Metrics{
		Ascent:  Fl(face.Ascent) * s,
		Descent: Fl(face.Descent) * s,
		XHeight: f.Size / 2,
	}
}

func (ff FixedFonts) Width(f Font, s string) Fl {
	return Fl(basicfont.Face7x13.Advance) * ff.scale(f) * Fl(utf8.RuneCountInString(s))
}

func (FixedFonts) Face(Font) font.Face { return basicfont.Face7x13 }
