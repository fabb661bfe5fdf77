package text

import (
	"strings"

	pr "github.com/benoitkugler/cssbox/css/properties"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LineBreak marks a preserved line break in processed text.
const LineBreak = '\n'

func isCollapsible(r byte) bool { return r == ' ' || r == '\t' || r == '\r' }

// ProcessWhitespace applies the white-space property to `s`:
// collapsible runs are replaced by one space and line feeds are either
// preserved (as LineBreak) or turned into spaces.
func ProcessWhitespace(s string, ws pr.WhiteSpace) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(s))
	collapse, keepLines := ws.CollapsesSpaces(), !ws.CollapsesLines()
	lastSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			if keepLines {
				if collapse {
					// spaces before a preserved line break are removed
					str := strings.TrimRight(b.String(), " ")
					b.Reset()
					b.WriteString(str)
				}
				b.WriteByte(LineBreak)
				lastSpace = collapse // drop the spaces following the break
				continue
			}
			c = ' '
		}
		if isCollapsible(c) {
			if collapse {
				if lastSpace {
					continue
				}
				lastSpace = true
			}
			b.WriteByte(' ')
			continue
		}
		lastSpace = false
		b.WriteByte(c)
	}
	return b.String()
}

// IsWhitespace returns true if `s` only contains spaces and line breaks.
func IsWhitespace(s string) bool {
	return strings.TrimLeft(s, " \t\r\n") == ""
}

// Transform applies the text-transform property.
func Transform(s string, tt pr.TextTransform) string {
	switch tt {
	case pr.TextTransformUppercase:
		return cases.Upper(language.Und).String(s)
	case pr.TextTransformLowercase:
		return cases.Lower(language.Und).String(s)
	case pr.TextTransformCapitalize:
		return cases.Title(language.Und, cases.NoLower).String(s)
	default:
		return s
	}
}

// LongestWord returns the widest run of `s` between spaces or line breaks.
func LongestWord(fc FontConfiguration, f Font, s string) Fl {
	var max Fl
	for _, word := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == LineBreak }) {
		if w := fc.Width(f, word); w > max {
			max = w
		}
	}
	return max
}

// LongestLine returns the widest line of `s`, split at line breaks.
func LongestLine(fc FontConfiguration, f Font, s string) Fl {
	var max Fl
	for _, line := range strings.Split(s, string(LineBreak)) {
		if w := fc.Width(f, line); w > max {
			max = w
		}
	}
	return max
}
