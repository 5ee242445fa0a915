package detection

import (
	"fmt"
	"image"
)

// Backend names accepted by NewBackend.
const (
	BackendNative = "native"
	BackendGoCV   = "gocv"
)

// Backend is the vision capability the calibration pipeline depends on.
//
// Implementations must be safe to reuse across runs but are not required to
// be safe for concurrent use. Every returned image is owned by the caller.
type Backend interface {
	// Name identifies the backend in logs and tool output.
	Name() string

	// Binarize converts img to luminance, applies 5×5 Gaussian smoothing,
	// thresholds at cutoff (values >= cutoff become 255) and cleans the
	// result with a 3×3 closing followed by a 3×3 opening.
	// The returned mask has the same bounds as img, rebased to the origin.
	Binarize(img image.Image, cutoff uint8) (*image.Gray, error)

	// ExternalContours returns the outer boundaries of the foreground blobs
	// of mask inside roi. Points are relative to roi.Min.
	ExternalContours(mask *image.Gray, roi image.Rectangle) ([]Contour, error)

	// Resize scales img to width × height with linear interpolation.
	Resize(img image.Image, width, height int) (image.Image, error)
}

// NewBackend returns the backend registered under name.
// An empty name selects the native backend.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", BackendNative:
		return NewNative(), nil
	case BackendGoCV:
		return NewGoCV()
	default:
		return nil, fmt.Errorf("unknown vision backend: %q", name)
	}
}

// cropMask copies the roi part of mask into a new mask anchored at (0, 0).
func cropMask(mask *image.Gray, roi image.Rectangle) *image.Gray {
	roi = roi.Intersect(mask.Bounds())
	out := image.NewGray(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	for y := 0; y < roi.Dy(); y++ {
		src := mask.PixOffset(roi.Min.X, roi.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+roi.Dx()], mask.Pix[src:src+roi.Dx()])
	}
	return out
}
