// Package layout computes the geometry of a box tree: the size of
// every box, line breaking, floats, tables, margin collapsing and,
// in a final pass, the absolute position of each box.
//
// The layout works in several sequential passes over the tree built
// by the boxes package:
//   - the sizes of every box are loaded from its style,
//   - the efficient (collapsed) vertical margins are computed,
//   - the viewport is laid out, recursively,
//   - the absolute positions are resolved.
//
// The result is stored in the boxes themselves (Bounds, Content,
// margins, AbsBounds); the working state of the algorithms is kept in
// a side table local to a call to Layout.
package layout

import (
	"fmt"
	"os"
	"path/filepath"

	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/text"
	"github.com/benoitkugler/cssbox/utils"
	"github.com/benoitkugler/cssbox/utils/testutils/tracer"
)

const (
	// if true, check the geometry invariants after layout
	debugMode = false
	traceMode = false
)

var traceLogger tracer.Tracer // used only when traceMode is true

func init() {
	if traceMode {
		traceLogger = tracer.NewTracer(filepath.Join(os.TempDir(), "trace_layout.txt"))
	}
}

type (
	Fl    = utils.Fl
	BoxID = bo.BoxID
)

const (
	// line height used for line-height: normal, relative to the font height
	defaultLineHeight = 1.12

	// minimal space required to place inline content next to floats:
	// a narrower line is skipped
	inflowSpaceThreshold = 15
)

// Options configures the layout.
type Options struct {
	// ViewportWidth and ViewportHeight are the initial dimensions
	// of the viewport; the viewport grows to enclose the content.
	ViewportWidth, ViewportHeight Fl
	// Fonts provides the metrics of the text.
	Fonts text.FontConfiguration
}

// Layout computes the geometry of every box of `tree`.
// It may be called several times on the same tree: the boxes
// created by a previous layout are discarded first.
func Layout(tree *bo.Tree, opts Options) {
	if opts.Fonts == nil {
		opts.Fonts = text.NewGoFonts()
	}
	tree.Reset()
	ctx := newLayoutContext(tree, opts)
	root := tree.Root()

	logger.ProgressLogger.Println("Step 4 - Computing box sizes")
	ctx.initSizes(root)
	ctx.computeEfficientMargins(root)

	logger.ProgressLogger.Println("Step 5 - Laying out boxes")
	ctx.layoutViewport()
	if traceMode {
		traceLogger.DumpTree(tree, root, "after layout")
	}

	logger.ProgressLogger.Println("Step 6 - Computing absolute positions")
	ctx.absolutePositions()

	if debugMode {
		if err := checkGeometry(tree); err != nil {
			panic(err)
		}
	}
}

// boxState is the working state of a box during layout.
type boxState struct {
	loaded bool

	font       text.Font
	metrics    text.Metrics
	lineHeight Fl

	// sizes
	wset, hset bool // width and height explicitely set
	wrelative  bool // width given as a percentage
	fixedWidth bool // the width does not depend on the content
	minSize    bo.Size // -1 if not set
	maxSize    bo.Size // -1 if not set
	declMargin pr.LengthSet

	topset, rightset, bottomset, leftset bool
	topstatic, leftstatic                 bool // static position required

	availWidth  Fl
	widthAdjust Fl // narrowing of the containing block by floats

	// floats shared by the block formatting context,
	// and offsets of the box in the float list owner
	fleft, fright    *floatList
	floatXl, floatXr Fl
	floatY           Fl
	floatX           Fl         // for floats: offset from the owner edge of its side
	ownerList        *floatList // for floats: the list containing the box

	// inline metrics
	line         *lineBox // line containing the box
	curline      *lineBox // metrics of the content of an inline box
	above, below Fl       // extent of an inline box around its baseline
	baseline     Fl       // from the top of the margin box, for atomic inline boxes

	lineBreakStop   bool // finished by a preserved line break
	collapsed       bool // inline box with no visible content
	ignoreInitialWS bool // the previous box on the line ends with a space

	// range of a text box, restored before each layout
	textStarted bool
	textStart   int

	// lines of a block with inline content
	firstLine, lastLine *lineBox

	coffset Fl // vertical alignment offset of a table cell content

	fullFlow []BoxID // working children of an inline box, before splitting
}

type layoutContext struct {
	tree  *bo.Tree
	fonts text.FontConfiguration
	opts  Options

	states []boxState // indexed by BoxID

	tables map[BoxID]*tableLayout

	usedStatic bool // a static position has been resolved by the positioning pass
	clips      map[BoxID]bo.Rect
}

func newLayoutContext(tree *bo.Tree, opts Options) *layoutContext {
	return &layoutContext{
		tree:   tree,
		fonts:  opts.Fonts,
		opts:   opts,
		states: make([]boxState, len(tree.Boxes)),
		tables: make(map[BoxID]*tableLayout),
		clips:  make(map[BoxID]bo.Rect),
	}
}

func (ctx *layoutContext) box(id BoxID) *bo.Box { return ctx.tree.Box(id) }

// state returns the working state of the box `id`, loading its font.
func (ctx *layoutContext) state(id BoxID) *boxState {
	for int(id) >= len(ctx.states) {
		ctx.states = append(ctx.states, boxState{})
	}
	st := &ctx.states[id]
	if !st.loaded {
		st.loaded = true
		b := ctx.box(id)
		st.font = text.FontOf(b.Style)
		st.metrics = ctx.fonts.Metrics(st.font)
		st.lineHeight = lineHeight(b.Style, st.metrics)
	}
	return st
}

func lineHeight(style *pr.Style, m text.Metrics) Fl {
	switch style.LineHeight.Unit {
	case pr.Normal:
		return defaultLineHeight * m.Height()
	case pr.Scalar:
		return style.LineHeight.Value * style.FontSize
	default:
		return style.LineHeight.Value
	}
}

// decoder returns the length decoder for the font of the box.
func (ctx *layoutContext) decoder(id BoxID) pr.Decoder {
	st := ctx.state(id)
	return pr.NewDecoder(ctx.box(id).Style.FontSize, st.metrics.XHeight)
}

// clone creates a copy of `id`, with the same working state,
// used as the remainder of a split box.
func (ctx *layoutContext) clone(id BoxID) BoxID {
	c := ctx.tree.Clone(id)
	src := *ctx.state(id)
	dst := ctx.state(c)
	*dst = src
	dst.fullFlow = nil
	dst.curline = nil
	dst.line = nil
	cb := ctx.box(c)
	cb.Splitted = true
	return c
}

// lineHeight returns the line height of the box; text boxes
// use the one of their parent.
func (ctx *layoutContext) lineHeight(id BoxID) Fl {
	b := ctx.box(id)
	if b.Kind == bo.Text {
		return ctx.state(b.Parent).lineHeight
	}
	return ctx.state(id).lineHeight
}

// checkGeometry verifies that every laid out box has non negative
// dimensions, consistent with its edges.
func checkGeometry(tree *bo.Tree) error {
	for id, b := range tree.Boxes {
		if !b.Displayed || b.Kind == bo.Text || b.Kind.IsInlineLevel() {
			continue
		}
		if b.Content.Width < 0 || b.Content.Height < 0 {
			return fmt.Errorf("box %d (%s): negative content size %v", id, b, b.Content)
		}
		w := b.EMargin.Horizontal() + b.Border.Horizontal() + b.Padding.Horizontal() + b.Content.Width
		if !utils.IsClose(w, b.Bounds.Width) {
			return fmt.Errorf("box %d (%s): bounds width %g, edges %g", id, b, b.Bounds.Width, w)
		}
	}
	return nil
}
