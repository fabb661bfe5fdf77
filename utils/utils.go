package utils

import (
	"strconv"
	"strings"
)

func IsIn(l []string, s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

var romanNumerals = []struct {
	value  int
	letter string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// FormatRoman returns the lower case roman numeral for n,
// falling back to decimal outside of [1, 3999].
func FormatRoman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.letter)
			n -= r.value
		}
	}
	return b.String()
}

// FormatAlpha returns the lower case latin numbering of n :
// a, b, ..., z, aa, ab, ...
func FormatAlpha(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}
