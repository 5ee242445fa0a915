package calibrate

import (
	"fmt"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/circle-calibrate-mcp/internal/config"
	"github.com/ironsheep/circle-calibrate-mcp/internal/detection"
	"github.com/ironsheep/circle-calibrate-mcp/internal/imaging"
)

// Annotation geometry, in pixels.
const (
	outlineThickness  = 3
	centerRadius      = 5
	diameterThickness = 2
	roiThickness      = 2
	labelX            = 10
	labelRise         = 40
)

// labelBackground is the translucent white box behind the measurement text.
var labelBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 200}

// Label formats the measurement text drawn next to a detected circle.
func Label(c *detection.Circle, referenceMM float64) string {
	return fmt.Sprintf("Circle: %.1fpx (%gmm)", c.Diameter(), referenceMM)
}

// Annotate returns a copy of img with the detection drawn on it.
//
// With a nil circle the copy is unmodified apart from the optional ROI
// outline. Otherwise it carries the circle outline, a filled centre marker,
// the horizontal diameter and the measurement label, which sits at
// x = 10 with its baseline 40 pixels above the vertical middle.
func Annotate(img image.Image, c *detection.Circle, roi image.Rectangle, cfg *config.Config) (*image.RGBA, error) {
	ink, err := colorful.Hex(cfg.AnnotationColor)
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotation color: %w", err)
	}

	o := imaging.NewOverlay(img)

	if cfg.ShowROI {
		roiInk, err := colorful.Hex(cfg.ROIColor)
		if err != nil {
			return nil, fmt.Errorf("failed to parse roi color: %w", err)
		}
		o.Rect(roi, roiThickness, roiInk)
	}

	if c == nil {
		return o.Image(), nil
	}

	cx, cy := c.Center.X, c.Center.Y
	o.Ring(cx, cy, c.Radius, outlineThickness, ink)
	o.Disc(cx, cy, centerRadius, ink)
	o.Line(cx-c.Radius, cy, cx+c.Radius, cy, diameterThickness, ink)

	rows := o.Image().Bounds().Dy()
	o.Label(labelX, rows/2-labelRise, Label(c, cfg.ReferenceDiameterMM), ink, labelBackground)

	return o.Image(), nil
}
