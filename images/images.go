// Package images provides the replaced content of a document:
// decoded raster images and placeholders used when the data is
// missing or invalid.
package images

import (
	"errors"
	"fmt"
	"image"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/benoitkugler/cssbox/backend"
	pr "github.com/benoitkugler/cssbox/css/properties"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/utils"
)

type Fl = utils.Fl

// ErrNoData is returned when an image has no usable content.
var ErrNoData = errors.New("no image data")

// Image is a replaced content, exposing its intrinsic dimensions,
// any of which may be missing.
type Image interface {
	backend.Drawable

	IntrinsicWidth() (Fl, bool)
	IntrinsicHeight() (Fl, bool)
	IntrinsicRatio() (Fl, bool)
}

var (
	_ Image = (*RasterImage)(nil)
	_ Image = Placeholder{}
)

// RasterImage is a decoded bitmap.
type RasterImage struct {
	Img image.Image
	URL string
}

func (r *RasterImage) IntrinsicWidth() (Fl, bool) {
	return Fl(r.Img.Bounds().Dx()), true
}

func (r *RasterImage) IntrinsicHeight() (Fl, bool) {
	return Fl(r.Img.Bounds().Dy()), true
}

func (r *RasterImage) IntrinsicRatio() (Fl, bool) {
	b := r.Img.Bounds()
	if b.Dy() == 0 {
		return 0, false
	}
	return Fl(b.Dx()) / Fl(b.Dy()), true
}

func (r *RasterImage) Draw(c backend.Canvas, dst backend.Rect) { c.DrawImage(r.Img, dst) }

// PlaceholderSize is the size used when no intrinsic size is known.
const PlaceholderSize = 20

// Placeholder stands for an image which could not be loaded:
// it has no intrinsic dimension and draws a light frame.
type Placeholder struct {
	Alt string
}

func (Placeholder) IntrinsicWidth() (Fl, bool)  { return 0, false }
func (Placeholder) IntrinsicHeight() (Fl, bool) { return 0, false }
func (Placeholder) IntrinsicRatio() (Fl, bool)  { return 0, false }

var placeholderColor = pr.Color{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}

func (Placeholder) Draw(c backend.Canvas, dst backend.Rect) {
	c.StrokeRect(dst, placeholderColor, 1)
}

// Decode decodes a raster image, in any of the registered formats.
func Decode(content utils.RemoteRessource) (*RasterImage, error) {
	if content.Content == nil || content.Content.Size() == 0 {
		return nil, ErrNoData
	}
	img, _, err := image.Decode(content.Content)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", content.URL, err)
	}
	return &RasterImage{Img: img, URL: content.URL}, nil
}

// Loader fetches and decodes images, caching the results by URL.
// It is safe for concurrent use.
type Loader struct {
	fetcher utils.UrlFetcher
	enabled bool

	mu    sync.Mutex
	cache map[string]Image
}

// NewLoader returns a loader using `fetcher`. When `enabled` is false,
// no fetching is done and every image is a placeholder.
func NewLoader(fetcher utils.UrlFetcher, enabled bool) *Loader {
	if fetcher == nil {
		fetcher = utils.DefaultUrlFetcher
	}
	return &Loader{fetcher: fetcher, enabled: enabled, cache: make(map[string]Image)}
}

// Load returns the image at `url`. In case of error, a warning is logged
// and a placeholder is returned.
func (l *Loader) Load(url, alt string) Image {
	if !l.enabled || url == "" {
		return Placeholder{Alt: alt}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if img, ok := l.cache[url]; ok {
		return img
	}
	img, err := l.load(url)
	if err != nil {
		logger.WarningLogger.Printf("Failed to load image at %q: %s", url, err)
		l.cache[url] = Placeholder{Alt: alt}
		return Placeholder{Alt: alt}
	}
	l.cache[url] = img
	return img
}

func (l *Loader) load(url string) (Image, error) {
	content, err := l.fetcher(url)
	if err != nil {
		return nil, err
	}
	return Decode(content)
}
