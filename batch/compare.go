package batch

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var highlight = color.NRGBA{R: 255, B: 255, A: 255} // magenta

// Comparison is the result of the pixel comparison of two renderings.
type Comparison struct {
	// ErrorRate is the proportion of different pixels, in [0, 1].
	ErrorRate float32
	// Diff is the first image, with the different pixels highlighted.
	Diff image.Image
	// Description is set when the images can't be compared.
	Description string
}

// Compare compares `img1` and `img2` pixel by pixel. Images with
// different sizes have an error rate of 1.
func Compare(img1, img2 image.Image) Comparison {
	b1, b2 := img1.Bounds(), img2.Bounds()
	if b1.Dx() != b2.Dx() || b1.Dy() != b2.Dy() {
		return Comparison{ErrorRate: 1, Diff: img1, Description: "Image sizes don't match"}
	}
	p1, p2 := imaging.Clone(img1), imaging.Clone(img2)
	total := b1.Dx() * b1.Dy()
	if total == 0 {
		return Comparison{Diff: p1}
	}
	diff := 0
	for i := 0; i < len(p1.Pix); i += 4 {
		if p1.Pix[i] != p2.Pix[i] || p1.Pix[i+1] != p2.Pix[i+1] || p1.Pix[i+2] != p2.Pix[i+2] || p1.Pix[i+3] != p2.Pix[i+3] {
			p1.Pix[i], p1.Pix[i+1], p1.Pix[i+2], p1.Pix[i+3] = highlight.R, highlight.G, highlight.B, highlight.A
			diff++
		}
	}
	return Comparison{ErrorRate: float32(diff) / float32(total), Diff: p1}
}
