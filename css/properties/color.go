package properties

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a non premultiplied RGBA color.
type Color struct {
	R, G, B, A uint8
}

var (
	Black       = Color{A: 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// IsTransparent returns true for fully transparent colors.
func (c Color) IsTransparent() bool { return c.A == 0 }

// NRGBA converts to the standard library representation.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{c.R, c.G, c.B, c.A} }

// Hex returns the #rrggbb notation, ignoring the alpha channel.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseColor parses a CSS2.1 color (keyword, #rgb, #rrggbb, rgb(), rgba()
// or transparent). currentColor is reported with `current`.
func ParseColor(s string) (c Color, current, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return c, false, false
	case "transparent":
		return Transparent, false, true
	case "currentcolor":
		return c, true, true
	}
	if strings.HasPrefix(s, "#") {
		c, ok = parseHex(s[1:])
		return c, false, ok
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		c, ok = parseRGB(s)
		return c, false, ok
	}
	if named, has := colornames.Map[s]; has {
		// colornames are opaque
		return Color{named.R, named.G, named.B, 255}, false, true
	}
	return c, false, false
}

func parseHex(s string) (Color, bool) {
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
}

func parseRGB(s string) (Color, bool) {
	start, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if end < start {
		return Color{}, false
	}
	args := strings.Split(s[start+1:end], ",")
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var channels [4]uint8
	channels[3] = 255
	for i, arg := range args {
		arg = strings.TrimSpace(arg)
		if i == 3 {
			a, err := strconv.ParseFloat(arg, 32)
			if err != nil {
				return Color{}, false
			}
			channels[3] = clampByte(a * 255)
			continue
		}
		if strings.HasSuffix(arg, "%") {
			p, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 32)
			if err != nil {
				return Color{}, false
			}
			channels[i] = clampByte(p * 255 / 100)
		} else {
			v, err := strconv.ParseFloat(arg, 32)
			if err != nil {
				return Color{}, false
			}
			channels[i] = clampByte(v)
		}
	}
	return Color{channels[0], channels[1], channels[2], channels[3]}, true
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
