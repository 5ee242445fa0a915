package detection

import (
	"image"
	"math"
)

// Contour is the outer boundary of one connected foreground blob.
//
// Points is a closed chain of boundary pixel centres: each point is an
// 8-neighbour of the next, and the last point connects back to the first.
// Coordinates are relative to the top-left corner of the mask the contour
// was extracted from.
type Contour struct {
	Points []image.Point `json:"points"`
}

// neighbors lists the 8 neighbour offsets in clockwise order (y grows down),
// starting east.
var neighbors = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

const dirWest = 4

// Perimeter returns the length of the closed chain through the contour points.
//
// Steps between 4-neighbours count 1, diagonal steps count √2. A single-point
// contour has perimeter 0.
func (c Contour) Perimeter() float64 {
	n := len(c.Points)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		p := c.Points[i]
		q := c.Points[(i+1)%n]
		dx := float64(q.X - p.X)
		dy := float64(q.Y - p.Y)
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// Area returns the number of pixels enclosed by the contour, boundary
// pixels and any interior holes included.
//
// The count follows Pick's theorem applied to the chain polygon:
//
//	pixels = |shoelace area| + steps/2 + 1
//
// which is exact for simple boundaries and stays correct for chains that
// walk back over one-pixel-wide spurs.
func (c Contour) Area() float64 {
	n := len(c.Points)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return 1
	}
	var twice int
	for i := 0; i < n; i++ {
		p := c.Points[i]
		q := c.Points[(i+1)%n]
		twice += p.X*q.Y - q.X*p.Y
	}
	if twice < 0 {
		twice = -twice
	}
	return float64(twice)/2 + float64(n)/2 + 1
}

// BoundingRect returns the smallest rectangle containing every point.
// Max is exclusive, so Dx() and Dy() are the pixel extents.
func (c Contour) BoundingRect() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := c.Points[0].X, c.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range c.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// ExtractContours returns the outer boundaries of the foreground blobs in
// a binary mask. Pixels with value >= 128 are foreground.
//
// Only external boundaries are produced: holes do not get a contour of their
// own, and blobs lying inside another blob's hole are skipped entirely.
// Contours are ordered by the raster position (top to bottom, then left to
// right) of each blob's first pixel.
//
// # Algorithm
//
//  1. Outside marking: flood the background from the mask border using
//     4-connectivity. Background that is not reached is a hole.
//  2. Blob labelling: group the remaining pixels (foreground plus holes)
//     with an iterative 8-connected flood fill.
//  3. Boundary tracing: walk each blob's outer boundary with Moore-neighbour
//     tracing, starting at its first raster pixel, until the first move
//     from the start pixel repeats.
func ExtractContours(mask *image.Gray) []Contour {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil
	}

	foreground := make([]bool, width*height)
	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			foreground[y*width+x] = v >= 128
		}
	}

	outside := markOutside(foreground, width, height)

	labels := make([]int, width*height)
	contours := make([]Contour, 0)
	next := 1

	for i := range labels {
		if outside[i] || labels[i] != 0 {
			continue
		}
		fillBlob(outside, labels, i, next, width, height)

		id := next
		inside := func(x, y int) bool {
			if x < 0 || x >= width || y < 0 || y >= height {
				return false
			}
			return labels[y*width+x] == id
		}
		start := image.Point{X: i % width, Y: i / width}
		contours = append(contours, Contour{Points: traceBoundary(inside, start, width*height)})
		next++
	}

	return contours
}

// markOutside flags background pixels 4-connected to the mask border.
func markOutside(foreground []bool, width, height int) []bool {
	outside := make([]bool, width*height)
	stack := make([]int, 0, 2*(width+height))

	push := func(x, y int) {
		i := y*width + x
		if foreground[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, i)
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		if x > 0 {
			push(x-1, y)
		}
		if x < width-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < height-1 {
			push(x, y+1)
		}
	}
	return outside
}

// fillBlob labels every non-outside pixel 8-connected to start.
// Uses an explicit stack so large blobs cannot overflow the goroutine stack.
func fillBlob(outside []bool, labels []int, start, id, width, height int) {
	stack := []int{start}
	labels[start] = id

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for _, d := range neighbors {
			nx, ny := x+d.X, y+d.Y
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			j := ny*width + nx
			if outside[j] || labels[j] != 0 {
				continue
			}
			labels[j] = id
			stack = append(stack, j)
		}
	}
}

// traceBoundary walks the outer boundary of the region reported by inside,
// clockwise, beginning at start.
//
// start must be the region's first pixel in raster order, so its west
// neighbour is known to be outside. The walk keeps the last outside pixel
// examined (the backtrack) and scans the neighbours of the current pixel
// clockwise from it. It ends when start is about to make its first move
// again; the repeated state means the chain has closed. limit bounds the
// walk length.
func traceBoundary(inside func(x, y int) bool, start image.Point, limit int) []image.Point {
	points := []image.Point{start}
	p := start
	back := dirWest
	var second image.Point

	for steps := 0; steps <= 4*limit+8; steps++ {
		n, nextBack, ok := nextBoundaryPixel(inside, p, back)
		if !ok {
			// Isolated pixel
			return points
		}
		if steps == 0 {
			second = n
		} else if p == start && n == second {
			// Drop the trailing copy of start
			return points[:len(points)-1]
		}
		p, back = n, nextBack
		points = append(points, p)
	}
	return points
}

// nextBoundaryPixel scans the neighbours of p clockwise, starting after the
// backtrack direction, and returns the first inside pixel together with the
// backtrack direction as seen from that pixel.
func nextBoundaryPixel(inside func(x, y int) bool, p image.Point, back int) (image.Point, int, bool) {
	for k := 1; k <= 8; k++ {
		n := p.Add(neighbors[(back+k)%8])
		if !inside(n.X, n.Y) {
			continue
		}
		// The pixel examined just before n is outside and 8-adjacent to n.
		prev := p.Add(neighbors[(back+k-1)%8])
		return n, directionOf(prev.Sub(n)), true
	}
	return image.Point{}, 0, false
}

// directionOf maps a unit offset to its index in neighbors.
func directionOf(d image.Point) int {
	for i, n := range neighbors {
		if n == d {
			return i
		}
	}
	return dirWest
}
