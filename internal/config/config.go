// Package config holds the tunable constants of the circle calibration pipeline.
//
// There is no configuration file. Defaults come from Default(), and callers
// override individual fields per request (MCP tool arguments or CLI flags)
// through Merge. Every value is checked by Validate before a run starts.
package config

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/circle-calibrate-mcp/internal/detection"
)

// Config holds the detection and calibration settings.
type Config struct {
	// WhiteThreshold is the luminance cutoff (0-255). Pixels at or above it
	// are foreground after blurring.
	WhiteThreshold int `json:"white_threshold"`

	// CircleMinArea and CircleMaxArea bound the accepted blob area in
	// square pixels. Both limits are inclusive.
	CircleMinArea float64 `json:"circle_min_area"`
	CircleMaxArea float64 `json:"circle_max_area"`

	// CircularityThreshold is the strict lower bound on 4πA/P².
	CircularityThreshold float64 `json:"circularity_threshold"`

	// DPI is the output resolution used in the scale formula.
	DPI float64 `json:"dpi"`

	// ReferenceDiameterMM is the physical diameter of the printed circle.
	// It is the only source for both the scale formula and the label text.
	ReferenceDiameterMM float64 `json:"reference_diameter_mm"`

	// ROIFraction is the share of the image width, measured from the right
	// edge, that is searched for the circle.
	ROIFraction float64 `json:"roi_fraction"`

	// MaxOutputDimension caps either side of the rescaled image.
	MaxOutputDimension int `json:"max_output_dimension"`

	// ShowROI outlines the search region on the annotated image.
	ShowROI bool `json:"show_roi"`

	// AnnotationColor and ROIColor are hex colors ("#RRGGBB").
	AnnotationColor string `json:"annotation_color"`
	ROIColor        string `json:"roi_color"`

	// Backend selects the vision primitives: "native" or "gocv".
	Backend string `json:"backend"`
}

// Default returns a configuration with the stock calibration values.
func Default() *Config {
	return &Config{
		WhiteThreshold:       200,
		CircleMinArea:        100,
		CircleMaxArea:        5000,
		CircularityThreshold: 0.7,
		DPI:                  96,
		ReferenceDiameterMM:  100,
		ROIFraction:          0.3,
		MaxOutputDimension:   8192,
		ShowROI:              false,
		AnnotationColor:      "#FF0000",
		ROIColor:             "#FFFF00",
		Backend:              detection.BackendNative,
	}
}

// Overrides carries optional per-request changes to a Config. Nil fields
// leave the base value untouched.
type Overrides struct {
	WhiteThreshold       *int     `json:"white_threshold,omitempty"`
	CircleMinArea        *float64 `json:"circle_min_area,omitempty"`
	CircleMaxArea        *float64 `json:"circle_max_area,omitempty"`
	CircularityThreshold *float64 `json:"circularity_threshold,omitempty"`
	DPI                  *float64 `json:"dpi,omitempty"`
	ReferenceDiameterMM  *float64 `json:"reference_diameter_mm,omitempty"`
	ROIFraction          *float64 `json:"roi_fraction,omitempty"`
	MaxOutputDimension   *int     `json:"max_output_dimension,omitempty"`
	ShowROI              *bool    `json:"show_roi,omitempty"`
	AnnotationColor      *string  `json:"annotation_color,omitempty"`
	ROIColor             *string  `json:"roi_color,omitempty"`
	Backend              *string  `json:"backend,omitempty"`
}

// Merge returns a copy of c with every non-nil override applied.
// The receiver is not modified.
func (c *Config) Merge(o Overrides) *Config {
	out := *c
	if o.WhiteThreshold != nil {
		out.WhiteThreshold = *o.WhiteThreshold
	}
	if o.CircleMinArea != nil {
		out.CircleMinArea = *o.CircleMinArea
	}
	if o.CircleMaxArea != nil {
		out.CircleMaxArea = *o.CircleMaxArea
	}
	if o.CircularityThreshold != nil {
		out.CircularityThreshold = *o.CircularityThreshold
	}
	if o.DPI != nil {
		out.DPI = *o.DPI
	}
	if o.ReferenceDiameterMM != nil {
		out.ReferenceDiameterMM = *o.ReferenceDiameterMM
	}
	if o.ROIFraction != nil {
		out.ROIFraction = *o.ROIFraction
	}
	if o.MaxOutputDimension != nil {
		out.MaxOutputDimension = *o.MaxOutputDimension
	}
	if o.ShowROI != nil {
		out.ShowROI = *o.ShowROI
	}
	if o.AnnotationColor != nil {
		out.AnnotationColor = *o.AnnotationColor
	}
	if o.ROIColor != nil {
		out.ROIColor = *o.ROIColor
	}
	if o.Backend != nil {
		out.Backend = *o.Backend
	}
	return &out
}

// Validate checks that every field is within its documented range.
func (c *Config) Validate() error {
	if c.WhiteThreshold < 0 || c.WhiteThreshold > 255 {
		return fmt.Errorf("white_threshold must be between 0 and 255")
	}
	if c.CircleMinArea <= 0 {
		return fmt.Errorf("circle_min_area must be positive")
	}
	if c.CircleMaxArea < c.CircleMinArea {
		return fmt.Errorf("circle_max_area must not be smaller than circle_min_area")
	}
	if c.CircularityThreshold < 0 || c.CircularityThreshold > 1 {
		return fmt.Errorf("circularity_threshold must be between 0 and 1")
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive")
	}
	if c.ReferenceDiameterMM <= 0 {
		return fmt.Errorf("reference_diameter_mm must be positive")
	}
	if c.ROIFraction <= 0 || c.ROIFraction > 1 {
		return fmt.Errorf("roi_fraction must be in (0, 1]")
	}
	if c.MaxOutputDimension <= 0 {
		return fmt.Errorf("max_output_dimension must be positive")
	}
	if _, err := colorful.Hex(c.AnnotationColor); err != nil {
		return fmt.Errorf("annotation_color: %w", err)
	}
	if _, err := colorful.Hex(c.ROIColor); err != nil {
		return fmt.Errorf("roi_color: %w", err)
	}
	switch c.Backend {
	case detection.BackendNative, detection.BackendGoCV:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	return nil
}
