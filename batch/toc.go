// Package batch runs reference tests: each test document is rendered
// together with the reference document it links to, and the two
// bitmaps are compared pixel by pixel.
package batch

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/utils"
	"golang.org/x/net/html"
)

// TOCFile is the name of the index of a test suite, relative
// to the suite URL.
const TOCFile = "reftest-toc.htm"

// DefaultBlacklist are the tags of the tests skipped by default.
var DefaultBlacklist = []string{"svg", "dom/js"}

// Entry is a test listed in the table of contents.
type Entry struct {
	Name string
	Src  string // relative to the suite URL
	Tags []string
}

// HasTag returns true if one of the tags of the entry is in `tags`.
func (e Entry) HasTag(tags []string) bool {
	for _, t := range e.Tags {
		if utils.IsIn(tags, t) {
			return true
		}
	}
	return false
}

var (
	selTable = cascadia.MustCompile("table")
	selBody  = cascadia.MustCompile("tbody")
	selRow   = cascadia.MustCompile("tr")
	selLink  = cascadia.MustCompile("a")
	selTag   = cascadia.MustCompile("abbr")
)

func textContent(n *html.Node) string {
	return strings.TrimSpace((*utils.HTMLNode)(n).TextContent())
}

// ParseTOC reads the table of contents of a test suite. Only the first
// row of each table body is used: the other rows list additional
// references.
func ParseTOC(r io.Reader) ([]Entry, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing test index: %w", err)
	}
	tables := selTable.MatchAll(root)
	if len(tables) != 1 {
		return nil, fmt.Errorf("parsing test index: expected one table, got %d", len(tables))
	}
	var out []Entry
	for _, body := range selBody.MatchAll(tables[0]) {
		row := selRow.MatchFirst(body)
		if row == nil {
			continue
		}
		link := selLink.MatchFirst(row)
		if link == nil {
			logger.WarningLogger.Println("No links in table row")
			continue
		}
		entry := Entry{Name: textContent(link), Src: (*utils.HTMLNode)(link).Get("href")}
		for _, tag := range selTag.MatchAll(row) {
			entry.Tags = append(entry.Tags, strings.ToLower(textContent(tag)))
		}
		out = append(out, entry)
	}
	logger.ProgressLogger.Printf("Loaded %d source entries", len(out))
	return out, nil
}

// LoadTOC fetches and parses the table of contents of the suite at `suiteURL`.
func LoadTOC(fetcher utils.UrlFetcher, suiteURL string) ([]Entry, error) {
	if fetcher == nil {
		fetcher = utils.DefaultUrlFetcher
	}
	res, err := fetcher(utils.ResolveUrl(suiteURL, TOCFile))
	if err != nil {
		return nil, fmt.Errorf("loading test index: %w", err)
	}
	content, err := io.ReadAll(res.Content)
	if err != nil {
		return nil, fmt.Errorf("loading test index: %w", err)
	}
	return ParseTOC(bytes.NewReader(content))
}
