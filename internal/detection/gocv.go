//go:build gocv
// +build gocv

package detection

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GoCV is the OpenCV backend. It is only available when built with the
// gocv tag and a local OpenCV installation.
type GoCV struct{}

// NewGoCV creates a GoCV backend.
func NewGoCV() (*GoCV, error) {
	return &GoCV{}, nil
}

// Name implements Backend.
func (g *GoCV) Name() string {
	return BackendGoCV
}

// Binarize implements Backend.
func (g *GoCV) Binarize(img image.Image, cutoff uint8) (*image.Gray, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}

	src, err := gocv.ImageToMatRGB(flatten(img))
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, errors.New("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	// ThresholdBinary keeps values strictly above thresh
	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(blur, &binary, float32(cutoff)-0.5, 255, gocv.ThresholdBinary)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(binary, &closed, gocv.MorphClose, kernel)

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(closed, &opened, gocv.MorphOpen, kernel)

	out, err := opened.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	gray, ok := out.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mask type %T", out)
	}
	return cropMask(gray, gray.Bounds()), nil
}

// ExternalContours implements Backend.
func (g *GoCV) ExternalContours(mask *image.Gray, roi image.Rectangle) ([]Contour, error) {
	if mask == nil {
		return nil, errors.New("nil mask")
	}
	crop := cropMask(mask, roi)
	if crop.Rect.Empty() {
		return nil, nil
	}

	mat, err := gocv.ImageGrayToMatGray(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask to mat: %w", err)
	}
	defer mat.Close()

	found := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, Contour{Points: found.At(i).ToPoints()})
	}
	return contours, nil
}

// Resize implements Backend.
func (g *GoCV) Resize(img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("resize target must be positive")
	}

	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	return dst.ToImage()
}
