package properties

import (
	"strings"
)

// ParseURL parses url(...), with or without quotes.
func ParseURL(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if len(v) < 5 || !strings.EqualFold(v[:4], "url(") || v[len(v)-1] != ')' {
		return "", false
	}
	v = strings.TrimSpace(v[4 : len(v)-1])
	v = strings.Trim(v, `"'`)
	return v, v != ""
}

// ParseStrings parses a list of quoted strings, as used by the
// content property, and returns their concatenation.
func ParseStrings(value string) (string, bool) {
	var (
		out   strings.Builder
		found bool
	)
	v := strings.TrimSpace(value)
	for len(v) > 0 {
		quote := v[0]
		if quote != '"' && quote != '\'' {
			return "", false
		}
		end := 1
		for end < len(v) && v[end] != quote {
			if v[end] == '\\' && end+1 < len(v) {
				end++
			}
			end++
		}
		if end >= len(v) {
			return "", false
		}
		out.WriteString(unescape(v[1:end]))
		found = true
		v = strings.TrimSpace(v[end+1:])
	}
	return out.String(), found
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == 'A' || s[i] == 'a' {
				b.WriteByte('\n')
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var transformArity = map[string][2]int{
	"translate": {1, 2}, "translatex": {1, 1}, "translatey": {1, 1},
	"scale": {1, 2}, "scalex": {1, 1}, "scaley": {1, 1},
	"rotate": {1, 1}, "skew": {1, 2}, "skewx": {1, 1}, "skewy": {1, 1},
	"matrix": {6, 6},
}

// ParseTransform parses a list of 2D transform functions.
func ParseTransform(value string) ([]TransformFunction, bool) {
	var out []TransformFunction
	v := strings.TrimSpace(strings.ToLower(value))
	for len(v) > 0 {
		open := strings.IndexByte(v, '(')
		close := strings.IndexByte(v, ')')
		if open <= 0 || close < open {
			return nil, false
		}
		name := strings.TrimSpace(v[:open])
		arity, ok := transformArity[name]
		if !ok {
			return nil, false
		}
		var args []Dimension
		for _, arg := range strings.Split(v[open+1:close], ",") {
			d, ok := ParseDimension(arg, true)
			if !ok {
				return nil, false
			}
			args = append(args, d)
		}
		if len(args) < arity[0] || len(args) > arity[1] {
			return nil, false
		}
		out = append(out, TransformFunction{Name: name, Args: args})
		v = strings.TrimSpace(v[close+1:])
	}
	return out, len(out) > 0
}

var originKeywords = map[string]Dimension{
	"left": {0, Perc}, "center": {50, Perc}, "right": {100, Perc},
	"top": {0, Perc}, "bottom": {100, Perc},
}

func parseOrigin(value string) ([2]Dimension, bool) {
	out := [2]Dimension{{50, Perc}, {50, Perc}}
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) == 0 || len(fields) > 2 {
		return out, false
	}
	for i, f := range fields {
		if d, ok := originKeywords[f]; ok {
			// vertical keywords given first are swapped
			if (f == "top" || f == "bottom") && i == 0 {
				out[1] = d
				continue
			}
			out[i] = d
			continue
		}
		d, ok := ParseDimension(f, false)
		if !ok {
			return out, false
		}
		out[i] = d
	}
	return out, true
}
