package calibrate

import (
	"errors"
	"fmt"
	"image"
	"math"
)

const mmPerInch = 25.4

var (
	// ErrInvalidInput marks a run rejected before processing: missing or
	// empty image, or an out-of-range configuration.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProcessing marks a failure inside the pipeline stages.
	ErrProcessing = errors.New("processing failed")

	// ErrOutputTooLarge is returned by ScaledSize when a side would exceed
	// the maximum output dimension.
	ErrOutputTooLarge = errors.New("scaled image too large")
)

// Calibration is the scale derived from a detected reference circle.
type Calibration struct {
	// PixelDiameter is the detected circle diameter in pixels.
	PixelDiameter float64 `json:"pixel_diameter"`

	// ScaleFactor is the resize factor applied to the annotated image.
	ScaleFactor float64 `json:"scale_factor"`

	// MillimetersPerPixel is the physical size of one source pixel.
	MillimetersPerPixel float64 `json:"mm_per_pixel"`

	ReferenceDiameterMM float64 `json:"reference_diameter_mm"`
	DPI                 float64 `json:"dpi"`
}

// Derive computes the calibration for a circle of pixelDiameter pixels
// whose physical diameter is referenceMM millimetres.
func Derive(pixelDiameter, referenceMM, dpi float64) (*Calibration, error) {
	if pixelDiameter <= 0 || math.IsNaN(pixelDiameter) {
		return nil, fmt.Errorf("pixel diameter must be positive, got %v", pixelDiameter)
	}
	return &Calibration{
		PixelDiameter:       pixelDiameter,
		ScaleFactor:         referenceMM * dpi / (pixelDiameter * mmPerInch),
		MillimetersPerPixel: referenceMM / pixelDiameter,
		ReferenceDiameterMM: referenceMM,
		DPI:                 dpi,
	}, nil
}

// ScaledSize returns the floor-rounded size of bounds scaled by factor.
// It fails if either side would be zero, and with ErrOutputTooLarge if
// either side would exceed maxDim.
func ScaledSize(bounds image.Rectangle, factor float64, maxDim int) (image.Point, error) {
	w := math.Floor(float64(bounds.Dx()) * factor)
	h := math.Floor(float64(bounds.Dy()) * factor)

	if w < 1 || h < 1 {
		return image.Point{}, fmt.Errorf("scaled image would be empty (%.0fx%.0f)", w, h)
	}
	if w > float64(maxDim) || h > float64(maxDim) {
		return image.Point{}, fmt.Errorf("%w: %.0fx%.0f exceeds the %d pixel limit", ErrOutputTooLarge, w, h, maxDim)
	}
	return image.Pt(int(w), int(h)), nil
}
