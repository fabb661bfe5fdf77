package tree

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/benoitkugler/cssbox/logger"
)

//go:embed ua.css
var uaCSS string

// UAStylesheet is the user agent style sheet.
var UAStylesheet CSS

func init() {
	var err error
	UAStylesheet, err = NewCSS(uaCSS, OriginUserAgent)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded stylesheet: %s", err))
	}
}

// Origin is the origin of a style sheet, used in the cascade.
type Origin uint8

const (
	OriginUserAgent Origin = iota
	OriginUser
	OriginAuthor
)

// declaration is a longhand property
type declaration struct {
	name      string
	value     string
	important bool
}

type rule struct {
	selector    cascadia.Sel
	pseudo      string // before, after or empty
	declaration []declaration
	order       int // position in the sheet
}

// CSS is a parsed style sheet.
type CSS struct {
	rules  []rule
	origin Origin
}

// NewCSS parses a style sheet. Invalid selectors are skipped with a
// warning. Only @media rules applying to screens are used.
func NewCSS(content string, origin Origin) (CSS, error) {
	sheet, err := parser.Parse(content)
	if err != nil {
		return CSS{}, fmt.Errorf("parsing stylesheet: %w", err)
	}
	out := CSS{origin: origin}
	out.addRules(sheet.Rules)
	return out, nil
}

func (c *CSS) addRules(rules []*css.Rule) {
	for _, r := range rules {
		if r.Kind == css.AtRule {
			if r.Name == "@media" && mediaMatches(r.Prelude) {
				c.addRules(r.Rules)
			}
			continue
		}
		decls := expandDeclarations(r.Declarations)
		for _, selText := range r.Selectors {
			sel, err := cascadia.ParseWithPseudoElement(selText)
			if err != nil {
				logger.WarningLogger.Printf("Unsupported selector %q: %s", selText, err)
				continue
			}
			pseudo := sel.PseudoElement()
			if pseudo != "" && pseudo != "before" && pseudo != "after" {
				continue
			}
			c.rules = append(c.rules, rule{selector: sel, pseudo: pseudo, declaration: decls, order: len(c.rules)})
		}
	}
}

// mediaMatches returns true for media queries including screen or all.
func mediaMatches(prelude string) bool {
	for _, query := range strings.Split(prelude, ",") {
		fields := strings.Fields(strings.ToLower(query))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "all", "screen":
			return true
		case "only":
			if len(fields) > 1 && (fields[1] == "screen" || fields[1] == "all") {
				return true
			}
		}
	}
	return false
}

// ParseStyleAttribute parses the content of a style="" attribute.
func ParseStyleAttribute(content string) ([]declaration, error) {
	decls, err := parser.ParseDeclarations(content)
	if err != nil {
		return nil, fmt.Errorf("parsing style attribute: %w", err)
	}
	return expandDeclarations(decls), nil
}

func expandDeclarations(decls []*css.Declaration) []declaration {
	var out []declaration
	for _, d := range decls {
		name := strings.ToLower(strings.TrimSpace(d.Property))
		for _, longhand := range expandShorthand(name, strings.TrimSpace(d.Value)) {
			out = append(out, declaration{name: longhand[0], value: longhand[1], important: d.Important})
		}
	}
	return out
}
