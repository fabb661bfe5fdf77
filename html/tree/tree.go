// Package tree parses HTML documents and resolves the style of
// each element: user agent and author style sheets, style attributes,
// presentational hints, inheritance and generated content.
package tree

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/utils"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML is a parsed document.
type HTML struct {
	Root       *utils.HTMLNode // the <html> element
	BaseUrl    string
	UrlFetcher utils.UrlFetcher
}

// NewHTML parses `content`. `baseUrl` is used to resolve
// relative URLs (style sheets, images).
func NewHTML(content []byte, baseUrl string, urlFetcher utils.UrlFetcher) (*HTML, error) {
	logger.ProgressLogger.Println("Step 1 - Parsing HTML")
	if urlFetcher == nil {
		urlFetcher = utils.DefaultUrlFetcher
	}
	root, err := html.ParseWithOptions(bytes.NewReader(content), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("invalid html input: %w", err)
	}
	var out HTML
	// html.Parse wraps the <html> tag in a document node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out.Root = (*utils.HTMLNode)(c)
			break
		}
	}
	if out.Root == nil {
		return nil, fmt.Errorf("invalid html input: no root element")
	}
	out.BaseUrl = findBaseUrl(out.Root, baseUrl)
	out.UrlFetcher = urlFetcher
	return &out, nil
}

// NewHTMLFromFile reads and parses a local file.
func NewHTMLFromFile(path string) (*HTML, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading html input: %w", err)
	}
	return NewHTML(content, path, nil)
}

func findBaseUrl(root *utils.HTMLNode, fallback string) string {
	for _, base := range root.Iter(atom.Base) {
		if href := strings.TrimSpace(base.Get("href")); href != "" {
			return utils.ResolveUrl(fallback, href)
		}
	}
	return fallback
}

// Body returns the <body> element, or nil.
func (h *HTML) Body() *utils.HTMLNode {
	for _, c := range h.Root.Children() {
		if c.IsElement() && c.DataAtom == atom.Body {
			return c
		}
	}
	return nil
}

// findStylesheets returns the author style sheets: <style> elements
// and <link rel=stylesheet> (fetched with the document fetcher), in
// document order.
func (h *HTML) findStylesheets() []CSS {
	var out []CSS
	for _, node := range h.Root.Iter(atom.Style, atom.Link) {
		var content string
		switch node.DataAtom {
		case atom.Style:
			if media := node.Get("media"); media != "" && !mediaMatches(media) {
				continue
			}
			content = node.GetChildText()
		case atom.Link:
			if !utils.IsIn(strings.Fields(strings.ToLower(node.Get("rel"))), "stylesheet") {
				continue
			}
			if media := node.Get("media"); media != "" && !mediaMatches(media) {
				continue
			}
			url := utils.ResolveUrl(h.BaseUrl, node.Get("href"))
			res, err := h.UrlFetcher(url)
			if err != nil {
				logger.WarningLogger.Printf("Failed to load stylesheet at %q: %s", url, err)
				continue
			}
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(res.Content)
			content = buf.String()
		}
		css, err := NewCSS(content, OriginAuthor)
		if err != nil {
			logger.WarningLogger.Printf("Invalid stylesheet: %s", err)
			continue
		}
		out = append(out, css)
	}
	return out
}
