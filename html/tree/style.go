package tree

import (
	"sort"

	"github.com/andybalholm/cascadia"
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/utils"
)

// StyleFor resolves the computed style of the elements of a document.
type StyleFor struct {
	sheets              []CSS // user agent, user then author sheets
	presentationalHints bool
}

// NewStyleFor collects the style sheets applying to `html`: the user
// agent sheet, the given user sheets, then the author sheets of the document.
func NewStyleFor(html *HTML, presentationalHints bool, userSheets ...CSS) *StyleFor {
	logger.ProgressLogger.Println("Step 2 - Fetching and parsing CSS")
	sheets := append([]CSS{UAStylesheet}, userSheets...)
	sheets = append(sheets, html.findStylesheets()...)
	return &StyleFor{sheets: sheets, presentationalHints: presentationalHints}
}

// precedence of a declaration in the cascade, lowest first
const (
	precUANormal uint8 = iota
	precUserNormal
	precHints
	precAuthorNormal
	precAttributeNormal
	precAuthorImportant
	precAttributeImportant
	precUserImportant
	precUAImportant
)

func precedence(origin Origin, important bool) uint8 {
	switch origin {
	case OriginUserAgent:
		if important {
			return precUAImportant
		}
		return precUANormal
	case OriginUser:
		if important {
			return precUserImportant
		}
		return precUserNormal
	default:
		if important {
			return precAuthorImportant
		}
		return precAuthorNormal
	}
}

type weightedDeclaration struct {
	declaration
	precedence  uint8
	specificity cascadia.Specificity
	order       int
}

func (w weightedDeclaration) less(other weightedDeclaration) bool {
	if w.precedence != other.precedence {
		return w.precedence < other.precedence
	}
	if w.specificity != other.specificity {
		return w.specificity.Less(other.specificity)
	}
	return w.order < other.order
}

// cascade returns the winning declaration for each property.
func cascade(decls []weightedDeclaration) map[string]string {
	sort.SliceStable(decls, func(i, j int) bool { return decls[i].less(decls[j]) })
	out := make(map[string]string, len(decls))
	for _, d := range decls {
		out[d.name] = d.value
	}
	return out
}

func (s *StyleFor) matching(element *utils.HTMLNode, pseudo string) []weightedDeclaration {
	var out []weightedDeclaration
	node := element.AsHtml()
	for sheetIndex, sheet := range s.sheets {
		for _, r := range sheet.rules {
			if r.pseudo != pseudo || !r.selector.Match(node) {
				continue
			}
			for _, d := range r.declaration {
				out = append(out, weightedDeclaration{
					declaration: d,
					precedence:  precedence(sheet.origin, d.important),
					specificity: r.selector.Specificity(),
					order:       sheetIndex<<20 + r.order,
				})
			}
		}
	}
	return out
}

// Get returns the computed style of `element`, given the computed style
// of its parent element (nil for the root element).
func (s *StyleFor) Get(element *utils.HTMLNode, parent *pr.Style) *pr.Style {
	decls := s.matching(element, "")

	if s.presentationalHints {
		for _, d := range presentationalHints(element) {
			decls = append(decls, weightedDeclaration{declaration: d, precedence: precHints})
		}
	}

	if attr := element.Get("style"); attr != "" {
		styleDecls, err := ParseStyleAttribute(attr)
		if err != nil {
			logger.WarningLogger.Printf("Invalid style attribute %q: %s", attr, err)
		}
		for _, d := range styleDecls {
			prec := precAttributeNormal
			if d.important {
				prec = precAttributeImportant
			}
			decls = append(decls, weightedDeclaration{declaration: d, precedence: prec})
		}
	}

	style, errs := pr.ComputeStyle(cascade(decls), parent)
	for _, err := range errs {
		logger.WarningLogger.Printf("Ignored declaration on <%s>: %s", element.Data, err)
	}
	fixupDisplay(style, parent == nil)
	return style
}

// GetPseudo returns the style of the ::before or ::after pseudo element
// of `element`, or nil if it generates no content.
func (s *StyleFor) GetPseudo(element *utils.HTMLNode, pseudo string, elementStyle *pr.Style) *pr.Style {
	decls := s.matching(element, pseudo)
	if len(decls) == 0 {
		return nil
	}
	style, errs := pr.ComputeStyle(cascade(decls), elementStyle)
	for _, err := range errs {
		logger.WarningLogger.Printf("Ignored declaration on <%s>::%s: %s", element.Data, pseudo, err)
	}
	if !style.HasContent || style.Display == pr.DisplayNone {
		return nil
	}
	fixupDisplay(style, false)
	return style
}

// fixupDisplay applies the relationships between display, position and
// float (CSS 2.1 section 9.7).
func fixupDisplay(style *pr.Style, isRoot bool) {
	if style.Display == pr.DisplayNone {
		style.Position = pr.PositionStatic
		style.Float = pr.FloatNone
		return
	}
	if style.Position.IsAbsolute() {
		style.Float = pr.FloatNone
	}
	if style.Position.IsAbsolute() || style.Float != pr.FloatNone || isRoot {
		switch style.Display {
		case pr.DisplayInlineTable:
			style.Display = pr.DisplayTable
		case pr.DisplayInline, pr.DisplayInlineBlock, pr.DisplayTableRowGroup, pr.DisplayTableColumn,
			pr.DisplayTableColumnGroup, pr.DisplayTableHeaderGroup, pr.DisplayTableFooterGroup,
			pr.DisplayTableRow, pr.DisplayTableCell, pr.DisplayTableCaption:
			style.Display = pr.DisplayBlock
		}
	}
}
