package detection

import (
	"image"
	"math"
)

// PointF is a sub-pixel coordinate in full-image space.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Circle is the reference circle accepted by FindCircle.
type Circle struct {
	// Center is the centre of the bounding rectangle, in full-image pixels.
	Center PointF `json:"center"`

	// Radius is the area-equivalent radius √(Area/π), not a boundary fit.
	Radius float64 `json:"radius"`

	// Bounds is the contour's bounding rectangle in full-image pixels.
	Bounds image.Rectangle `json:"bounds"`

	// Circularity is 4πA/P², clamped to [0, 1].
	Circularity float64 `json:"circularity"`

	// Area is the enclosed area in square pixels.
	Area float64 `json:"area"`
}

// Diameter returns 2 × Radius.
func (c Circle) Diameter() float64 {
	return 2 * c.Radius
}

// Criteria are the acceptance thresholds for FindCircle.
type Criteria struct {
	// MinArea and MaxArea bound Area inclusively.
	MinArea float64
	MaxArea float64

	// MinCircularity must be strictly exceeded.
	MinCircularity float64
}

// Shape holds the measurements FindCircle takes from one contour.
type Shape struct {
	Area        float64 `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	Circularity float64 `json:"circularity"`
}

// Measure computes area, perimeter and circularity of a contour.
//
// Circularity is 4π·Area/Perimeter², where 1.0 is a perfect disc and
// elongated or ragged shapes score lower. Tiny blobs can score above 1 on a
// pixel grid, so the value is clamped. A zero perimeter yields circularity 0.
func Measure(c Contour) Shape {
	area := c.Area()
	perimeter := c.Perimeter()
	s := Shape{Area: area, Perimeter: perimeter}
	if perimeter > 0 {
		s.Circularity = math.Min(4*math.Pi*area/(perimeter*perimeter), 1.0)
	}
	return s
}

// FindCircle returns the first contour that qualifies as the reference circle.
//
// Parameters:
//   - contours: Boundaries in ROI coordinates, in extractor order.
//   - offset: The ROI origin, added to every bounding rectangle to restore
//     full-image coordinates.
//   - criteria: Area band and circularity floor.
//
// Returns the accepted Circle and true, or nil and false when nothing
// qualifies.
//
// # Selection Policy
//
// The scan stops at the first contour meeting every criterion. A later
// contour with a higher circularity is never considered. Contours with a
// zero perimeter are skipped.
func FindCircle(contours []Contour, offset image.Point, criteria Criteria) (*Circle, bool) {
	for _, contour := range contours {
		s := Measure(contour)
		if s.Perimeter == 0 {
			continue
		}
		if s.Area < criteria.MinArea || s.Area > criteria.MaxArea {
			continue
		}
		if s.Circularity <= criteria.MinCircularity {
			continue
		}

		rect := contour.BoundingRect().Add(offset)
		return &Circle{
			Center: PointF{
				X: float64(rect.Min.X) + float64(rect.Dx())/2,
				Y: float64(rect.Min.Y) + float64(rect.Dy())/2,
			},
			Radius:      math.Sqrt(s.Area / math.Pi),
			Bounds:      rect,
			Circularity: s.Circularity,
			Area:        s.Area,
		}, true
	}
	return nil, false
}

// RightROI returns the search region covering the rightmost fraction of
// bounds, full height. The width is floor(Dx × fraction).
func RightROI(bounds image.Rectangle, fraction float64) image.Rectangle {
	width := int(math.Floor(float64(bounds.Dx()) * fraction))
	return image.Rect(bounds.Max.X-width, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
}
