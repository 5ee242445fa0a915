package detection

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// drawDisk fills every pixel whose centre lies within radius of (cx, cy)
func drawDisk(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}
}

// drawEllipse fills an axis-aligned ellipse with semi-axes a and b
func drawEllipse(img *image.RGBA, cx, cy, a, b int, c color.Color) {
	for y := cy - b; y <= cy+b; y++ {
		for x := cx - a; x <= cx+a; x++ {
			fx := float64(x-cx) / float64(a)
			fy := float64(y-cy) / float64(b)
			if fx*fx+fy*fy <= 1 {
				img.Set(x, y, c)
			}
		}
	}
}

// detect runs the native detection stages with default criteria
func detect(t *testing.T, img image.Image) (*Circle, bool) {
	t.Helper()
	n := NewNative()
	mask, err := n.Binarize(img, 200)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	roi := RightROI(mask.Bounds(), 0.3)
	contours, err := n.ExternalContours(mask, roi)
	if err != nil {
		t.Fatalf("ExternalContours failed: %v", err)
	}
	return FindCircle(contours, roi.Min, defaultCriteria)
}

func TestNative_DetectsDisk(t *testing.T) {
	img := createTestImage(400, 300, color.Black)
	drawDisk(img, 340, 150, 20, color.White)

	circle, ok := detect(t, img)
	if !ok {
		t.Fatal("Expected the disk to be detected")
	}
	if circle.Circularity <= 0.9 {
		t.Errorf("Circularity: got %.3f, want > 0.9", circle.Circularity)
	}
	if math.Abs(circle.Radius-20) > 1 {
		t.Errorf("Radius: got %.2f, want 20 ± 1", circle.Radius)
	}
	if math.Abs(circle.Center.X-340.5) > 1.5 || math.Abs(circle.Center.Y-150.5) > 1.5 {
		t.Errorf("Center: got %+v, want near (340, 150)", circle.Center)
	}
}

// The 5×5 blur followed by the >= 200 cutoff trims about one pixel off
// the rim, so the estimate sits just under the drawn radius.
func TestNative_DiskRadiusAcrossSizes(t *testing.T) {
	const below, above = 1.2, 0.2

	for _, r := range []int{7, 12, 16, 20, 24, 29, 38} {
		t.Run(fmt.Sprintf("r=%d", r), func(t *testing.T) {
			img := createTestImage(400, 300, color.Black)
			drawDisk(img, 340, 150, r, color.White)

			circle, ok := detect(t, img)
			if !ok {
				t.Fatal("Expected the disk to be detected")
			}
			if circle.Radius < float64(r)-below || circle.Radius > float64(r)+above {
				t.Errorf("Radius: got %.2f, want in [%.1f, %.1f]", circle.Radius, float64(r)-below, float64(r)+above)
			}
		})
	}
}

func TestNative_DiskOutsideROI(t *testing.T) {
	img := createTestImage(400, 300, color.Black)
	drawDisk(img, 60, 150, 20, color.White)

	if _, ok := detect(t, img); ok {
		t.Error("A disk in the left part of the image must be ignored")
	}
}

func TestNative_NoBrightRegions(t *testing.T) {
	img := createTestImage(400, 300, color.RGBA{60, 60, 60, 255})

	if _, ok := detect(t, img); ok {
		t.Error("Expected no circle in a dark image")
	}
}

func TestNative_EllipseRejected(t *testing.T) {
	img := createTestImage(600, 200, color.Black)
	drawEllipse(img, 510, 100, 60, 8, color.White)

	if _, ok := detect(t, img); ok {
		t.Error("An elongated ellipse must not be accepted")
	}
}

func TestNative_Binarize(t *testing.T) {
	n := NewNative()

	tests := []struct {
		name  string
		gray  uint8
		white bool
	}{
		{"bright", 230, true},
		{"dim", 170, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createTestImage(20, 20, color.RGBA{tt.gray, tt.gray, tt.gray, 255})
			mask, err := n.Binarize(img, 200)
			if err != nil {
				t.Fatalf("Binarize failed: %v", err)
			}
			if mask.Bounds() != image.Rect(0, 0, 20, 20) {
				t.Errorf("Mask bounds: got %v", mask.Bounds())
			}
			want := uint8(0)
			if tt.white {
				want = 255
			}
			if v := mask.GrayAt(10, 10).Y; v != want {
				t.Errorf("Mask value: got %d, want %d", v, want)
			}
		})
	}
}

func TestNative_BinarizeRemovesSpecks(t *testing.T) {
	img := createTestImage(40, 40, color.Black)
	img.Set(20, 20, color.White)

	mask, err := NewNative().Binarize(img, 200)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	for _, v := range mask.Pix {
		if v != 0 {
			t.Fatal("A single bright pixel should not survive smoothing and opening")
		}
	}
}

func TestNative_BinarizeTransparentIsDark(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20)) // fully transparent

	mask, err := NewNative().Binarize(img, 200)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	if v := mask.GrayAt(10, 10).Y; v != 0 {
		t.Errorf("Transparent pixels should be background, got %d", v)
	}
}

func TestFlatten(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 9, 9))
	img.SetNRGBA(5, 5, color.NRGBA{255, 255, 255, 0})
	img.SetNRGBA(6, 5, color.NRGBA{255, 255, 255, 255})

	flat := flatten(img)
	if flat.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("Bounds: got %v, want origin-anchored 4x4", flat.Bounds())
	}
	if c := flat.NRGBAAt(0, 0); c != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("Transparent white: got %v, want opaque black", c)
	}
	if c := flat.NRGBAAt(1, 0); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("Opaque white: got %v, want unchanged", c)
	}
}

func TestToMask(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 6, 4))
	src.SetRGBA(2, 1, color.RGBA{128, 128, 128, 255})
	src.SetRGBA(3, 1, color.RGBA{127, 127, 127, 255})
	src.SetRGBA(4, 2, color.RGBA{255, 255, 255, 255})

	// A sub-image exercises the stride and origin handling
	sub := src.SubImage(image.Rect(2, 1, 5, 3)).(*image.RGBA)
	mask := toMask(sub)

	if mask.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("Bounds: got %v, want 3x2 at origin", mask.Bounds())
	}
	want := []uint8{
		255, 0, 0,
		0, 0, 255,
	}
	for i, v := range want {
		x, y := i%3, i/3
		if got := mask.GrayAt(x, y).Y; got != v {
			t.Errorf("(%d,%d): got %d, want %d", x, y, got, v)
		}
	}
}

func TestNative_BinarizeInvalid(t *testing.T) {
	n := NewNative()
	if _, err := n.Binarize(nil, 200); err == nil {
		t.Error("Expected error for nil image")
	}
	if _, err := n.Binarize(image.NewRGBA(image.Rect(0, 0, 0, 10)), 200); err == nil {
		t.Error("Expected error for zero-width image")
	}
}

func TestNative_Resize(t *testing.T) {
	n := NewNative()
	img := createTestImage(10, 10, color.White)

	out, err := n.Resize(img, 5, 4)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out.Bounds().Dx() != 5 || out.Bounds().Dy() != 4 {
		t.Errorf("Resize: got %v, want 5x4", out.Bounds())
	}

	if _, err := n.Resize(img, 0, 4); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestGaussianKernel(t *testing.T) {
	k := gaussianKernel(5)

	var sum float64
	for _, v := range k.Matrix {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Kernel sum: got %v, want 1", sum)
	}

	centre := k.Matrix[2*5+2]
	for i, v := range k.Matrix {
		if v > centre {
			t.Errorf("Weight %d (%v) exceeds centre weight %v", i, v, centre)
		}
	}
	if k.Matrix[0] != k.Matrix[24] || k.Matrix[4] != k.Matrix[20] {
		t.Error("Kernel should be symmetric")
	}
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("")
	if err != nil {
		t.Fatalf("NewBackend(\"\") failed: %v", err)
	}
	if b.Name() != BackendNative {
		t.Errorf("Default backend: got %s, want %s", b.Name(), BackendNative)
	}

	if _, err := NewBackend("bogus"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
