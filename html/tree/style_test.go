package tree

import (
	"bytes"
	"errors"
	"testing"

	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/utils"
	tu "github.com/benoitkugler/cssbox/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html/atom"
)

func parse(t *testing.T, content string) *HTML {
	t.Helper()
	doc, err := NewHTML([]byte(content), "", func(url string) (utils.RemoteRessource, error) {
		if url == "http://test/style.css" {
			return utils.RemoteRessource{Content: bytes.NewReader([]byte("p { color: blue }")), URL: url}, nil
		}
		return utils.RemoteRessource{}, errors.New("not found")
	})
	require.NoError(t, err)
	return doc
}

// styles resolves the style of every element, in document order.
func styles(t *testing.T, doc *HTML, hints bool) map[*utils.HTMLNode]*pr.Style {
	t.Helper()
	sf := NewStyleFor(doc, hints)
	out := map[*utils.HTMLNode]*pr.Style{}
	var walk func(n *utils.HTMLNode, parent *pr.Style)
	walk = func(n *utils.HTMLNode, parent *pr.Style) {
		s := sf.Get(n, parent)
		out[n] = s
		for _, c := range n.Children() {
			if c.IsElement() {
				walk(c, s)
			}
		}
	}
	walk(doc.Root, nil)
	return out
}

func first(doc *HTML, a atom.Atom) *utils.HTMLNode {
	return doc.Root.Iter(a)[0]
}

func TestCascadeOrder(t *testing.T) {
	doc := parse(t, `<style>
		p { color: red; margin-top: 3px !important }
		#p { color: green; margin-top: 5px }
		p.c { font-size: 20px }
		p { font-size: 30px }
	</style>
	<p id=p class=c style="margin-top: 7px; width: 10px">hello</p>`)
	st := styles(t, doc, false)[first(doc, atom.P)]

	assert.Equal(t, pr.Color{0, 128, 0, 255}, st.Color) // id wins
	assert.Equal(t, pr.PxDim(3), st.Margin.Top)        // important wins over the style attribute
	assert.Equal(t, pr.PxDim(10), st.Width)
	assert.Equal(t, pr.Fl(20), st.FontSize) // specificity before order
}

func TestUserAgentDefaults(t *testing.T) {
	doc := parse(t, `<body><p>a</p><table><tr><td>b</td></tr></table><span>c</span></body>`)
	all := styles(t, doc, false)

	body := all[first(doc, atom.Body)]
	assert.Equal(t, pr.DisplayBlock, body.Display)
	assert.Equal(t, pr.PxDim(8), body.Margin.Left)

	assert.Equal(t, pr.DisplayTable, all[first(doc, atom.Table)].Display)
	assert.Equal(t, pr.Fl(2), all[first(doc, atom.Table)].BorderSpacing)
	assert.Equal(t, pr.DisplayTableCell, all[first(doc, atom.Td)].Display)
	assert.Equal(t, pr.DisplayInline, all[first(doc, atom.Span)].Display)
	assert.Equal(t, pr.DisplayNone, all[first(doc, atom.Head)].Display)
}

func TestInheritance(t *testing.T) {
	doc := parse(t, `<div style="color: #00f; font-size: 20px; margin-left: 4px; white-space: pre">
		<span style="font-size: 2em">x</span></div>`)
	all := styles(t, doc, false)
	span := all[first(doc, atom.Span)]
	assert.Equal(t, pr.Color{0, 0, 255, 255}, span.Color)
	assert.Equal(t, pr.Fl(40), span.FontSize)
	assert.Equal(t, pr.WhiteSpacePre, span.WhiteSpace)
	assert.Equal(t, pr.PxDim(0), span.Margin.Left) // not inherited
}

func TestShorthands(t *testing.T) {
	doc := parse(t, `<div style="margin: 1px 2px 3px; padding: 4px 5px; border: 2px solid red; background: #0f0"></div>`)
	st := styles(t, doc, false)[first(doc, atom.Div)]
	assert.Equal(t, pr.Edges{pr.PxDim(1), pr.PxDim(2), pr.PxDim(3), pr.PxDim(2)}, st.Margin)
	assert.Equal(t, pr.Edges{pr.PxDim(4), pr.PxDim(5), pr.PxDim(4), pr.PxDim(5)}, st.Padding)
	assert.Equal(t, pr.LengthSet{2, 2, 2, 2}, st.BorderWidth)
	assert.Equal(t, pr.BorderSolid, st.BorderStyle[pr.SideLeft])
	assert.Equal(t, pr.Color{255, 0, 0, 255}, st.BorderColor[pr.SideTop])
	assert.Equal(t, pr.Color{0, 255, 0, 255}, st.BackgroundColor)
}

func TestDisplayFixup(t *testing.T) {
	doc := parse(t, `<span style="float: left">a</span><em style="position: absolute; float: right">b</em>`)
	all := styles(t, doc, false)
	assert.Equal(t, pr.DisplayBlock, all[first(doc, atom.Span)].Display)
	em := all[first(doc, atom.Em)]
	assert.Equal(t, pr.DisplayBlock, em.Display)
	assert.Equal(t, pr.FloatNone, em.Float)
	assert.Equal(t, pr.DisplayBlock, all[doc.Root].Display)
}

func TestInvalidDeclarations(t *testing.T) {
	logs := tu.CaptureLogs()
	doc := parse(t, `<p style="width: blue; color: red">a</p>`)
	st := styles(t, doc, false)[first(doc, atom.P)]
	assert.True(t, st.Width.IsAuto())
	assert.Equal(t, pr.Color{255, 0, 0, 255}, st.Color)
	logs.AssertLogs(t, "width")
}

func TestMediaAndLinks(t *testing.T) {
	doc := parse(t, `<head>
		<link rel=stylesheet href="http://test/style.css">
		<link rel=stylesheet href="http://test/missing.css">
		<style media=print>p { font-size: 50px }</style>
		<style>@media print { p { margin-top: 9px } } @media screen { p { margin-bottom: 4px } }</style>
	</head><p>a</p>`)
	logs := tu.CaptureLogs()
	st := styles(t, doc, false)[first(doc, atom.P)]
	assert.Equal(t, pr.Color{0, 0, 255, 255}, st.Color)
	assert.Equal(t, pr.MediumFontSize, st.FontSize)
	assert.Equal(t, pr.PxDim(0), st.Margin.Top)
	assert.Equal(t, pr.PxDim(4), st.Margin.Bottom)
	logs.AssertLogs(t, "missing.css")
}

func TestBaseUrl(t *testing.T) {
	doc, err := NewHTML([]byte(`<head><base href="sub/"></head>`), "http://example.com/index.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/sub/", doc.BaseUrl)
	assert.NotNil(t, doc.Body())
}

func TestPseudoElements(t *testing.T) {
	doc := parse(t, `<style>
		p::before { content: "<" ; color: red }
		p:after { color: blue }
	</style><p>a</p>`)
	sf := NewStyleFor(doc, false)
	p := first(doc, atom.P)
	pStyle := sf.Get(p, nil)

	before := sf.GetPseudo(p, "before", pStyle)
	require.NotNil(t, before)
	assert.Equal(t, "<", before.Content)
	assert.Equal(t, pr.DisplayInline, before.Display)
	assert.Equal(t, pr.Color{255, 0, 0, 255}, before.Color)

	assert.Nil(t, sf.GetPseudo(p, "after", pStyle)) // no content
}

func TestPresentationalHints(t *testing.T) {
	doc := parse(t, `<body bgcolor="#ff0000" text=blue>
		<table border=2 cellspacing=5 cellpadding=3 width=200 align=center>
		<tr valign=top><td nowrap width=50 align=right>a</td></tr></table>
		<font color=green size="+1">f</font><center>c</center></body>`)

	without := styles(t, doc, false)
	assert.Equal(t, pr.Fl(2), without[first(doc, atom.Table)].BorderSpacing)

	all := styles(t, doc, true)
	body := all[first(doc, atom.Body)]
	assert.Equal(t, pr.Color{255, 0, 0, 255}, body.BackgroundColor)
	assert.Equal(t, pr.Color{0, 0, 255, 255}, body.Color)

	table := all[first(doc, atom.Table)]
	assert.Equal(t, pr.Fl(5), table.BorderSpacing)
	assert.Equal(t, pr.PxDim(200), table.Width)
	assert.Equal(t, pr.LengthSet{2, 2, 2, 2}, table.BorderWidth)
	assert.True(t, table.Margin.Left.IsAuto())

	td := all[first(doc, atom.Td)]
	assert.Equal(t, pr.PxDim(3), td.Padding.Top)
	assert.Equal(t, pr.PxDim(50), td.Width)
	assert.Equal(t, pr.LengthSet{1, 1, 1, 1}, td.BorderWidth)
	assert.Equal(t, pr.BorderInset, td.BorderStyle[pr.SideBottom])
	assert.Equal(t, pr.WhiteSpaceNowrap, td.WhiteSpace)
	assert.Equal(t, pr.TextAlignRight, td.TextAlign)
	assert.Equal(t, pr.VAlignTop, all[first(doc, atom.Tr)].VerticalAlign.Kind)

	font := all[first(doc, atom.Font)]
	assert.Equal(t, pr.Color{0, 128, 0, 255}, font.Color)
	assert.Equal(t, pr.Fl(18), font.FontSize)
	assert.Equal(t, pr.TextAlignCenter, all[first(doc, atom.Center)].TextAlign)
}
