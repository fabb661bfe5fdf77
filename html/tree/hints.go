package tree

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/utils"
	"golang.org/x/net/html/atom"
)

func isDigit(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// pixels adds the px unit to bare integers
func pixels(value string) string {
	if isDigit(value) {
		return value + "px"
	}
	return value
}

// closestTable returns the nearest table ancestor, or nil.
func closestTable(element *utils.HTMLNode) *utils.HTMLNode {
	for p := element.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Table {
			return (*utils.HTMLNode)(p)
		}
	}
	return nil
}

var fontSizes = [...]string{1: "x-small", 2: "small", 3: "medium", 4: "large", 5: "x-large", 6: "xx-large", 7: "48px"}

// presentationalHints translates the legacy HTML attributes
// of `element` into declarations.
func presentationalHints(element *utils.HTMLNode) []declaration {
	var css []string
	add := func(format string, args ...interface{}) { css = append(css, fmt.Sprintf(format, args...)) }

	switch element.DataAtom {
	case atom.Body:
		if v := element.Get("bgcolor"); v != "" {
			add("background-color:%s", v)
		}
		if v := element.Get("background"); v != "" {
			add("background-image:url(%s)", v)
		}
		if v := element.Get("text"); v != "" {
			add("color:%s", v)
		}
	case atom.Center:
		add("text-align:center")
	case atom.Div, atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		switch align := strings.ToLower(element.Get("align")); align {
		case "middle":
			add("text-align:center")
		case "center", "left", "right", "justify":
			add("text-align:%s", align)
		}
	case atom.Font:
		if v := element.Get("color"); v != "" {
			add("color:%s", v)
		}
		if v := element.Get("face"); v != "" {
			add("font-family:%s", v)
		}
		if v := strings.TrimSpace(element.Get("size")); v != "" {
			relativePlus, relativeMinus := strings.HasPrefix(v, "+"), strings.HasPrefix(v, "-")
			if relativePlus || relativeMinus {
				v = strings.TrimSpace(v[1:])
			}
			size, err := strconv.Atoi(v)
			if err != nil {
				logger.WarningLogger.Printf("Invalid value for size: %s", v)
				break
			}
			if relativePlus {
				size += 3
			} else if relativeMinus {
				size = 3 - size
			}
			add("font-size:%s", fontSizes[utils.MaxInt(1, utils.MinInt(7, size))])
		}
	case atom.Table:
		if v := element.Get("cellspacing"); v != "" {
			add("border-spacing:%s", pixels(v))
		}
		if v := element.Get("width"); v != "" {
			add("width:%s", pixels(v))
		}
		if v := element.Get("height"); v != "" {
			add("height:%s", pixels(v))
		}
		if v := element.Get("bgcolor"); v != "" {
			add("background-color:%s", v)
		}
		if v := element.Get("bordercolor"); v != "" {
			add("border-color:%s", v)
		}
		if element.Has("border") {
			v := element.Get("border")
			if !isDigit(v) {
				v = "1"
			}
			if v != "0" {
				add("border-width:%spx", v)
				add("border-style:outset")
			}
		}
		switch strings.ToLower(element.Get("align")) {
		case "center":
			add("margin-left:auto;margin-right:auto")
		case "left":
			add("float:left")
		case "right":
			add("float:right")
		}
	case atom.Tr, atom.Td, atom.Th, atom.Thead, atom.Tbody, atom.Tfoot:
		switch align := strings.ToLower(element.Get("align")); align {
		case "left", "right", "justify", "center":
			add("text-align:%s", align)
		}
		switch valign := strings.ToLower(element.Get("valign")); valign {
		case "top", "middle", "bottom", "baseline":
			add("vertical-align:%s", valign)
		}
		if v := element.Get("bgcolor"); v != "" {
			add("background-color:%s", v)
		}
		if element.DataAtom == atom.Td || element.DataAtom == atom.Th {
			if v := element.Get("width"); v != "" {
				add("width:%s", pixels(v))
			}
			if v := element.Get("height"); v != "" {
				add("height:%s", pixels(v))
			}
			if element.Has("nowrap") {
				add("white-space:nowrap")
			}
			if table := closestTable(element); table != nil {
				if v := table.Get("cellpadding"); v != "" {
					add("padding:%s", pixels(v))
				}
				if table.Has("border") && table.Get("border") != "0" {
					add("border:1px inset")
				}
			}
		}
	case atom.Caption:
		switch align := strings.ToLower(element.Get("align")); align {
		case "left", "right", "justify", "center":
			add("text-align:%s", align)
		case "bottom":
			add("caption-side:bottom")
		}
	case atom.Col:
		if v := element.Get("width"); v != "" {
			add("width:%s", pixels(v))
		}
	case atom.Img:
		switch strings.ToLower(element.Get("align")) {
		case "left":
			add("float:left")
		case "right":
			add("float:right")
		case "middle":
			add("vertical-align:middle")
		case "top":
			add("vertical-align:top")
		}
	}
	if len(css) == 0 {
		return nil
	}
	decls, err := ParseStyleAttribute(strings.Join(css, ";"))
	if err != nil {
		logger.WarningLogger.Printf("Invalid presentational hint on <%s>: %s", element.Data, err)
	}
	return decls
}
