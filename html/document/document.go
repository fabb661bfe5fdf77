// Package document implements the full rendering pipeline: from a
// parsed HTML document to the painting operations sent to a backend.
package document

import (
	"github.com/benoitkugler/cssbox/config"
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/html/layout"
	"github.com/benoitkugler/cssbox/html/tree"
	"github.com/benoitkugler/cssbox/images"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/text"
	"github.com/benoitkugler/cssbox/utils"
	"golang.org/x/net/html/atom"
)

type Fl = utils.Fl

// Options configures the rendering of a document.
type Options struct {
	ViewportWidth, ViewportHeight Fl
	// HTMLExtensions enables <img> replaced content and the
	// propagation of the body background to the canvas.
	HTMLExtensions bool
	// LoadImages fetches the content images; placeholders are used otherwise.
	LoadImages bool
	// LoadBackgrounds fetches the background images.
	LoadBackgrounds bool
	// Fonts defaults to the Go fonts.
	Fonts text.FontConfiguration
	// UserSheets are applied between the user agent
	// and the author style sheets.
	UserSheets []tree.CSS
}

// OptionsFromConfig returns the rendering options selected by `cfg`.
func OptionsFromConfig(cfg config.Config) Options {
	opts := Options{
		ViewportWidth:   Fl(cfg.Viewport.Width),
		ViewportHeight:  Fl(cfg.Viewport.Height),
		HTMLExtensions:  cfg.HTML.Extensions,
		LoadImages:      cfg.Images.Load,
		LoadBackgrounds: cfg.Images.Background,
	}
	if cfg.Fonts.Fixed {
		opts.Fonts = text.FixedFonts{}
	} else {
		opts.Fonts = text.NewGoFonts()
	}
	return opts
}

// Document is a laid out document, ready to be painted.
type Document struct {
	Tree *bo.Tree
	// Width and Height are the dimensions of the canvas: the
	// viewport, enlarged to enclose the content.
	Width, Height Fl
	// Background is the color of the canvas.
	Background pr.Color

	html   *tree.HTML
	opts   Options
	images *images.Loader
	// element whose background is painted on the canvas, or NoBox
	canvasSource bo.BoxID
}

// Render builds the box tree of `html` and lays it out.
func Render(html *tree.HTML, opts Options) *Document {
	if opts.Fonts == nil {
		opts.Fonts = text.NewGoFonts()
	}
	styles := tree.NewStyleFor(html, opts.HTMLExtensions, opts.UserSheets...)
	loader := images.NewLoader(html.UrlFetcher, opts.LoadImages)
	logger.ProgressLogger.Println("Step 3 - Creating the box tree")
	boxes := bo.Build(html.Root, styles, loader, bo.Options{HTMLExtensions: opts.HTMLExtensions, BaseURL: html.BaseUrl})

	doc := &Document{
		Tree: boxes,
		html: html,
		opts: opts,
		// background images are loaded independently of the content images
		images: images.NewLoader(html.UrlFetcher, opts.LoadBackgrounds),
	}
	doc.Layout(opts.ViewportWidth, opts.ViewportHeight)
	return doc
}

// Layout computes the geometry of the document again, with a new
// initial viewport size.
func (d *Document) Layout(width, height Fl) {
	d.opts.ViewportWidth, d.opts.ViewportHeight = width, height
	layout.Layout(d.Tree, layout.Options{ViewportWidth: width, ViewportHeight: height, Fonts: d.opts.Fonts})
	vp := d.Tree.Box(d.Tree.Root())
	d.Width, d.Height = vp.AbsBounds.Width, vp.AbsBounds.Height
	d.canvasSource, d.Background = d.canvasBackground()
}

// canvasBackground returns the box whose background is propagated to
// the canvas: the root element, or the body when the root has none.
func (d *Document) canvasBackground() (bo.BoxID, pr.Color) {
	root := d.Tree.RootElement
	if root == bo.NoBox || !d.Tree.Box(root).Displayed {
		return bo.NoBox, pr.White
	}
	if st := d.Tree.Box(root).Style; !st.BackgroundColor.IsTransparent() || st.BackgroundImage != "" || !d.opts.HTMLExtensions {
		return root, st.BackgroundColor
	}
	for _, c := range d.Tree.Box(root).Children {
		b := d.Tree.Box(c)
		if b.Element != nil && b.Pseudo == "" && b.Element.DataAtom == atom.Body && b.Displayed {
			return c, b.Style.BackgroundColor
		}
	}
	return root, pr.Transparent
}

// Fonts returns the font configuration used for the layout, which
// the backends use to draw the text.
func (d *Document) Fonts() text.FontConfiguration { return d.opts.Fonts }
