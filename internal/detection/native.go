package detection

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// gaussianSize is the side of the smoothing kernel applied before thresholding.
const gaussianSize = 5

// Native is the pure-Go backend built on bild and disintegration/imaging.
type Native struct {
	kernel *convolution.Kernel
}

// NewNative creates a Native backend.
func NewNative() *Native {
	return &Native{kernel: gaussianKernel(gaussianSize)}
}

// Name implements Backend.
func (n *Native) Name() string {
	return BackendNative
}

// Binarize implements Backend.
//
// # Algorithm
//
//  1. Flatten: composite img onto opaque black so transparent areas never
//     count as bright.
//  2. Luminance: reduce to a single grey channel.
//  3. Smoothing: convolve with a normalised 5×5 Gaussian kernel.
//  4. Threshold: grey values >= cutoff become 255, the rest 0.
//  5. Cleanup: dilate then erode (closing) to fill pinholes, then erode and
//     dilate (opening) to drop specks. Both use a 3×3 square window.
func (n *Native) Binarize(img image.Image, cutoff uint8) (*image.Gray, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("empty image")
	}

	gray := effect.Grayscale(flatten(img))
	blurred := convolution.Convolve(gray, n.kernel, &convolution.Options{})
	binary := segment.Threshold(blurred, cutoff)

	closed := effect.Erode(effect.Dilate(binary, 1), 1)
	opened := effect.Dilate(effect.Erode(closed, 1), 1)

	return toMask(opened), nil
}

// ExternalContours implements Backend.
func (n *Native) ExternalContours(mask *image.Gray, roi image.Rectangle) ([]Contour, error) {
	if mask == nil {
		return nil, errors.New("nil mask")
	}
	return ExtractContours(cropMask(mask, roi)), nil
}

// Resize implements Backend.
func (n *Native) Resize(img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("resize target must be positive")
	}
	return imaging.Resize(img, width, height, imaging.Linear), nil
}

// gaussianKernel builds a normalised size×size Gaussian kernel. Sigma is
// derived from the size the way OpenCV does when none is given:
// σ = 0.3·((size−1)·0.5 − 1) + 0.8.
func gaussianKernel(size int) *convolution.Kernel {
	sigma := 0.3*((float64(size)-1)*0.5-1) + 0.8
	half := size / 2

	weights := make([]float64, size)
	var sum float64
	for i := range weights {
		d := float64(i - half)
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}

	k := convolution.NewKernel(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			k.Matrix[y*size+x] = weights[x] * weights[y]
		}
	}
	return k
}

// flatten composites img onto opaque black, anchored at (0, 0).
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.Black), img, image.Pt(0, 0), 1.0)
}

// toMask converts a grey-valued RGBA image to a 0/255 mask anchored at
// (0, 0) by thresholding its red channel at 128.
func toMask(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			if row[4*x] >= 128 {
				dst[x] = 255
			}
		}
	}
	return out
}
