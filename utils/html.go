package utils

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLNode is a DOM node, with convenience methods
// used when walking the document.
type HTMLNode html.Node

// AsHtml returns the underlying node.
func (h *HTMLNode) AsHtml() *html.Node { return (*html.Node)(h) }

// IsElement returns true for element nodes.
func (h *HTMLNode) IsElement() bool { return h.Type == html.ElementNode }

// IsText returns true for text nodes.
func (h *HTMLNode) IsText() bool { return h.Type == html.TextNode }

// Tag returns the lower case element name, or an empty string.
func (h *HTMLNode) Tag() string {
	if h.Type != html.ElementNode {
		return ""
	}
	return h.Data
}

// Get returns the attribute `key`, or an empty string.
func (h *HTMLNode) Get(key string) string {
	for _, attr := range h.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// Has returns true if the attribute `key` is present.
func (h *HTMLNode) Has(key string) bool {
	for _, attr := range h.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// Children returns the direct children of the node.
func (h *HTMLNode) Children() []*HTMLNode {
	var out []*HTMLNode
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, (*HTMLNode)(c))
	}
	return out
}

// Iter walks the subtree, h included, in document order. Only
// nodes matching one of `tags` are returned (all nodes if no tag is given).
func (h *HTMLNode) Iter(tags ...atom.Atom) []*HTMLNode {
	var out []*HTMLNode
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(tags) == 0 {
			out = append(out, (*HTMLNode)(n))
		} else {
			for _, t := range tags {
				if n.Type == html.ElementNode && n.DataAtom == t {
					out = append(out, (*HTMLNode)(n))
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(h.AsHtml())
	return out
}

// GetChildText returns the concatenation of the text children.
func (h *HTMLNode) GetChildText() string {
	var b strings.Builder
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// TextContent returns the concatenation of every descendant text node.
func (h *HTMLNode) TextContent() string {
	var b strings.Builder
	for _, n := range h.Iter() {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	}
	return b.String()
}
