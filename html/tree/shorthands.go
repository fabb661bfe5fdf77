package tree

import (
	"strings"

	pr "github.com/benoitkugler/cssbox/css/properties"
)

// splitValues splits `value` at white spaces outside of parentheses.
func splitValues(value string) []string {
	var (
		out   []string
		depth int
		start = -1
	)
	for i, c := range value {
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case (c == ' ' || c == '\t' || c == '\n') && depth == 0:
			if start != -1 {
				out = append(out, value[start:i])
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		out = append(out, value[start:])
	}
	return out
}

// expandSides expands 1 to 4 values on the four sides,
// named prefix-<side>suffix.
func expandSides(prefix, suffix, value string) [][2]string {
	values := splitValues(value)
	var top, right, bottom, left string
	switch len(values) {
	case 1:
		top, right, bottom, left = values[0], values[0], values[0], values[0]
	case 2:
		top, right, bottom, left = values[0], values[1], values[0], values[1]
	case 3:
		top, right, bottom, left = values[0], values[1], values[2], values[1]
	case 4:
		top, right, bottom, left = values[0], values[1], values[2], values[3]
	default:
		return nil
	}
	return [][2]string{
		{prefix + "-top" + suffix, top},
		{prefix + "-right" + suffix, right},
		{prefix + "-bottom" + suffix, bottom},
		{prefix + "-left" + suffix, left},
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// expandBorder splits a border shorthand into width, style and color.
func expandBorder(value string) (width, style, color string, ok bool) {
	width, style, color = "medium", "none", "currentColor"
	for _, v := range splitValues(value) {
		lower := strings.ToLower(v)
		switch {
		case borderStyles[lower]:
			style = lower
		case lower == "thin" || lower == "medium" || lower == "thick":
			width = lower
		default:
			if _, isLength := pr.ParseDimension(v, false); isLength {
				width = v
			} else if _, _, isColor := pr.ParseColor(v); isColor {
				color = v
			} else {
				return "", "", "", false
			}
		}
	}
	return width, style, color, true
}

var fontSizeKeywords = map[string]bool{
	"xx-small": true, "x-small": true, "small": true, "medium": true,
	"large": true, "x-large": true, "xx-large": true, "smaller": true, "larger": true,
}

func expandFont(value string) [][2]string {
	out := [][2]string{
		{"font-style", "normal"}, {"font-weight", "normal"}, {"line-height", "normal"},
	}
	values := splitValues(value)
	for i, v := range values {
		lower := strings.ToLower(v)
		switch lower {
		case "italic", "oblique":
			out[0][1] = lower
			continue
		case "bold", "bolder", "lighter":
			out[1][1] = lower
			continue
		case "normal", "small-caps":
			continue
		}
		if len(lower) == 3 && lower[1:] == "00" {
			out[1][1] = lower
			continue
		}
		// font size, optionally followed by /line-height
		size, lineHeight, hasLH := strings.Cut(v, "/")
		if _, isLength := pr.ParseDimension(size, false); !isLength && !fontSizeKeywords[strings.ToLower(size)] {
			return nil
		}
		out = append(out, [2]string{"font-size", size})
		rest := values[i+1:]
		if hasLH && lineHeight == "" && len(rest) > 0 { // "12px / 1.5"
			lineHeight, rest = rest[0], rest[1:]
		} else if !hasLH && len(rest) > 0 && strings.HasPrefix(rest[0], "/") {
			lineHeight = strings.TrimPrefix(rest[0], "/")
			rest = rest[1:]
			if lineHeight == "" && len(rest) > 0 {
				lineHeight, rest = rest[0], rest[1:]
			}
		}
		if lineHeight != "" {
			out[2][1] = lineHeight
		}
		if len(rest) == 0 {
			return nil // the family is required
		}
		return append(out, [2]string{"font-family", strings.Join(rest, " ")})
	}
	return nil
}

// expandShorthand returns the longhand declarations of `name`;
// a longhand is returned unchanged, an invalid shorthand is dropped.
func expandShorthand(name, value string) [][2]string {
	switch name {
	case "margin", "padding":
		return expandSides(name, "", value)
	case "border-width", "border-style", "border-color":
		return expandSides("border", strings.TrimPrefix(name, "border"), value)
	case "border-top", "border-right", "border-bottom", "border-left":
		w, s, c, ok := expandBorder(value)
		if !ok {
			return nil
		}
		return [][2]string{{name + "-width", w}, {name + "-style", s}, {name + "-color", c}}
	case "border":
		w, s, c, ok := expandBorder(value)
		if !ok {
			return nil
		}
		var out [][2]string
		for _, side := range [...]string{"top", "right", "bottom", "left"} {
			out = append(out,
				[2]string{"border-" + side + "-width", w},
				[2]string{"border-" + side + "-style", s},
				[2]string{"border-" + side + "-color", c})
		}
		return out
	case "background":
		color, image := "transparent", "none"
		for _, v := range splitValues(value) {
			if strings.HasPrefix(strings.ToLower(v), "url(") {
				image = v
			} else if _, _, ok := pr.ParseColor(v); ok {
				color = v
			}
			// repeat, attachment and position are not supported
		}
		return [][2]string{{"background-color", color}, {"background-image", image}}
	case "list-style":
		for _, v := range splitValues(value) {
			switch strings.ToLower(v) {
			case "inside", "outside":
			default:
				if !strings.HasPrefix(strings.ToLower(v), "url(") {
					return [][2]string{{"list-style-type", v}}
				}
			}
		}
		return nil
	case "font":
		return expandFont(value)
	default:
		return [][2]string{{name, value}}
	}
}
