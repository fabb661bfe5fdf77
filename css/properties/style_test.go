package properties

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimension(t *testing.T) {
	for _, test := range []struct {
		in       string
		unitless bool
		exp      Dimension
		ok       bool
	}{
		{"12px", false, Dimension{12, Px}, true},
		{"1.5em", false, Dimension{1.5, Em}, true},
		{"50%", false, Dimension{50, Perc}, true},
		{"0", false, Dimension{0, Px}, true},
		{"3", false, Dimension{}, false},
		{"3", true, Dimension{3, Scalar}, true},
		{"-2pt", false, Dimension{-2, Pt}, true},
		{"12qq", false, Dimension{}, false},
		{"", false, Dimension{}, false},
	} {
		got, ok := ParseDimension(test.in, test.unitless)
		assert.Equal(t, test.ok, ok, test.in)
		assert.Equal(t, test.exp, got, test.in)
	}
}

func TestDecoder(t *testing.T) {
	d := NewDecoder(10, 5)
	assert.Equal(t, Fl(20), d.Length(Dimension{2, Em}, 0, 0))
	assert.Equal(t, Fl(10), d.Length(Dimension{2, Ex}, 0, 0))
	assert.Equal(t, Fl(96), d.Length(Dimension{1, In}, 0, 0))
	assert.Equal(t, Fl(16), d.Length(Dimension{12, Pt}, 0, 0))
	assert.Equal(t, Fl(50), d.Length(Dimension{25, Perc}, 0, 200))
	assert.Equal(t, Fl(-1), d.Length(AutoDim, -1, 200))

	ls := d.Edges(Edges{PxDim(1), Dimension{10, Perc}, AutoDim, Dimension{1, Em}}, 100)
	assert.Equal(t, LengthSet{1, 10, 0, 10}, ls)
	assert.Equal(t, Fl(20), ls.Horizontal())
}

func TestParseColor(t *testing.T) {
	c, current, ok := ParseColor("#f00")
	assert.True(t, ok)
	assert.False(t, current)
	assert.Equal(t, Color{255, 0, 0, 255}, c)

	c, _, ok = ParseColor("rgb(0, 50%, 255)")
	assert.True(t, ok)
	assert.Equal(t, Color{0, 128, 255, 255}, c)

	c, _, ok = ParseColor("rgba(1,2,3,0)")
	assert.True(t, ok)
	assert.True(t, c.IsTransparent())

	c, _, ok = ParseColor("Navy")
	assert.True(t, ok)
	assert.Equal(t, "#000080", c.Hex())

	_, current, ok = ParseColor("currentColor")
	assert.True(t, ok && current)

	_, _, ok = ParseColor("notacolor")
	assert.False(t, ok)
}

func TestComputeStyle(t *testing.T) {
	parent, errs := ComputeStyle(map[string]string{
		"font-size":   "20px",
		"color":       "green",
		"line-height": "1.5",
		"white-space": "pre",
		"width":       "100px",
	}, nil)
	require.Empty(t, errs)

	style, errs := ComputeStyle(map[string]string{
		"font-size":          "50%",
		"display":            "block",
		"margin-left":        "auto",
		"border-top-style":   "solid",
		"border-top-width":   "thick",
		"border-right-width": "2px",
		"width":              "inherit",
		"float":              "sideways",
	}, parent)
	require.Len(t, errs, 1)

	assert.Equal(t, Fl(10), style.FontSize)
	assert.Equal(t, DisplayBlock, style.Display)
	assert.Equal(t, WhiteSpacePre, style.WhiteSpace)
	assert.Equal(t, Dimension{1.5, Scalar}, style.LineHeight)
	assert.True(t, style.Margin.Left.IsAuto())
	assert.Equal(t, PxDim(100), style.Width)
	assert.Equal(t, FloatNone, style.Float)
	// right border has no style
	assert.Equal(t, LengthSet{Top: 5}, style.BorderWidth)
	assert.Equal(t, parent.Color, style.BorderColor[SideTop])
	assert.Equal(t, "1.5", style.Get("line-height"))
}

func TestParseTransform(t *testing.T) {
	tr, ok := ParseTransform("translate(10px, 20%) rotate(45deg)")
	require.True(t, ok)
	exp := []TransformFunction{
		{Name: "translate", Args: []Dimension{{10, Px}, {20, Perc}}},
		{Name: "rotate", Args: []Dimension{{45, Deg}}},
	}
	if diff := cmp.Diff(exp, tr); diff != "" {
		t.Fatal(diff)
	}

	_, ok = ParseTransform("wobble(2)")
	assert.False(t, ok)
	_, ok = ParseTransform("matrix(1, 0, 0)")
	assert.False(t, ok)
}

func TestParseStrings(t *testing.T) {
	s, ok := ParseStrings(`"a" 'b c'`)
	assert.True(t, ok)
	assert.Equal(t, "ab c", s)

	_, ok = ParseStrings(`counter(item)`)
	assert.False(t, ok)
}
