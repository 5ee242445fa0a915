package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// labelPadding is the margin between label text and its backing box.
const labelPadding = 4

// Overlay draws annotations on a private RGBA copy of an image.
//
// Shapes are rasterised with golang.org/x/image/vector and are anti-aliased.
// Coordinates use pixel edges, so the pixel (x, y) spans [x, x+1) × [y, y+1).
// Overlay is not safe for concurrent use.
type Overlay struct {
	dst *image.RGBA
	ras *vector.Rasterizer
}

// NewOverlay copies img into a new RGBA canvas anchored at (0, 0).
// The source image is never modified.
func NewOverlay(img image.Image) *Overlay {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Overlay{
		dst: dst,
		ras: vector.NewRasterizer(b.Dx(), b.Dy()),
	}
}

// Image returns the annotated canvas.
func (o *Overlay) Image() *image.RGBA {
	return o.dst
}

// Ring strokes a circle outline of the given thickness centred on radius.
func (o *Overlay) Ring(cx, cy, radius, thickness float64, c color.Color) {
	outer := radius + thickness/2
	inner := radius - thickness/2

	o.ras.Reset(o.dst.Bounds().Dx(), o.dst.Bounds().Dy())
	o.circlePath(cx, cy, outer, false)
	if inner > 0 {
		// Opposite winding cancels the coverage of the outer disc
		o.circlePath(cx, cy, inner, true)
	}
	o.fill(c)
}

// Disc fills a circle.
func (o *Overlay) Disc(cx, cy, radius float64, c color.Color) {
	o.ras.Reset(o.dst.Bounds().Dx(), o.dst.Bounds().Dy())
	o.circlePath(cx, cy, radius, false)
	o.fill(c)
}

// Line strokes a straight segment with square-cut ends.
func (o *Overlay) Line(x1, y1, x2, y2, thickness float64, c color.Color) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Unit normal scaled to half the thickness
	nx := -dy / length * thickness / 2
	ny := dx / length * thickness / 2

	o.ras.Reset(o.dst.Bounds().Dx(), o.dst.Bounds().Dy())
	o.ras.MoveTo(float32(x1+nx), float32(y1+ny))
	o.ras.LineTo(float32(x2+nx), float32(y2+ny))
	o.ras.LineTo(float32(x2-nx), float32(y2-ny))
	o.ras.LineTo(float32(x1-nx), float32(y1-ny))
	o.ras.ClosePath()
	o.fill(c)
}

// Rect strokes the outline of r inside its bounds.
func (o *Overlay) Rect(r image.Rectangle, thickness float64, c color.Color) {
	x0, y0 := float32(r.Min.X), float32(r.Min.Y)
	x1, y1 := float32(r.Max.X), float32(r.Max.Y)
	t := float32(thickness)

	o.ras.Reset(o.dst.Bounds().Dx(), o.dst.Bounds().Dy())
	o.ras.MoveTo(x0, y0)
	o.ras.LineTo(x1, y0)
	o.ras.LineTo(x1, y1)
	o.ras.LineTo(x0, y1)
	o.ras.ClosePath()
	if r.Dx() > 2*int(thickness) && r.Dy() > 2*int(thickness) {
		o.ras.MoveTo(x0+t, y0+t)
		o.ras.LineTo(x0+t, y1-t)
		o.ras.LineTo(x1-t, y1-t)
		o.ras.LineTo(x1-t, y0+t)
		o.ras.ClosePath()
	}
	o.fill(c)
}

// Label draws text with its baseline starting at (x, y) over a filled
// backing box. The box extends labelPadding pixels past the glyph extents.
func (o *Overlay) Label(x, y int, text string, fg, bg color.Color) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	width := font.MeasureString(face, text).Ceil()

	box := image.Rect(
		x-labelPadding,
		y-metrics.Ascent.Ceil()-labelPadding,
		x+width+labelPadding,
		y+metrics.Descent.Ceil()+labelPadding,
	)
	draw.Draw(o.dst, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  o.dst,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// circlePath adds a closed polygonal approximation of a circle to the
// rasterizer path. reverse flips the winding direction.
func (o *Overlay) circlePath(cx, cy, radius float64, reverse bool) {
	segments := int(math.Max(32, math.Ceil(2*math.Pi*radius)))
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		if reverse {
			angle = -angle
		}
		px := float32(cx + radius*math.Cos(angle))
		py := float32(cy + radius*math.Sin(angle))
		if i == 0 {
			o.ras.MoveTo(px, py)
		} else {
			o.ras.LineTo(px, py)
		}
	}
	o.ras.ClosePath()
}

func (o *Overlay) fill(c color.Color) {
	o.ras.Draw(o.dst, o.dst.Bounds(), image.NewUniform(c), image.Point{})
}
