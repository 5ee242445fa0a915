package calibrate

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/circle-calibrate-mcp/internal/config"
	"github.com/ironsheep/circle-calibrate-mcp/internal/detection"
	"github.com/ironsheep/circle-calibrate-mcp/internal/metrics"
)

// Status is the human-facing summary of a run.
type Status struct {
	CircleFound         bool     `json:"circle_found"`
	PixelDiameter       *float64 `json:"pixel_diameter,omitempty"`
	ScaleFactor         *float64 `json:"scale_factor,omitempty"`
	MillimetersPerPixel *float64 `json:"mm_per_pixel,omitempty"`
	Message             string   `json:"message"`

	// Note explains why a found circle produced no rescaled image.
	Note string `json:"note,omitempty"`
}

// Result is everything a run produces.
type Result struct {
	Status Status

	// Circle and Calibration are nil when no circle was found.
	Circle      *detection.Circle
	Calibration *Calibration

	// Annotated is the input with the detection drawn on it, at the input
	// size. Without a circle it is a pixel-identical copy of the input
	// (unless the ROI outline was requested).
	Annotated image.Image

	// Scaled is Annotated resized by the scale factor. It is nil when no
	// circle was found, or when the rescaled size would exceed
	// MaxOutputDimension (Status.Note says so).
	Scaled image.Image

	// Mask is the cleaned binary image the contours were taken from.
	Mask *image.Gray

	// ROI is the searched region in full-image coordinates.
	ROI image.Rectangle

	// Backend names the vision backend used.
	Backend string
}

// Output returns the image a caller should display: the rescaled image when
// a circle was found, the annotated copy otherwise.
func (r *Result) Output() image.Image {
	if r.Scaled != nil {
		return r.Scaled
	}
	return r.Annotated
}

// Pipeline runs the detection and calibration stages.
type Pipeline struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics

	// NewBackend resolves Config.Backend. It defaults to detection.NewBackend.
	NewBackend func(name string) (detection.Backend, error)
}

// NewPipeline creates a pipeline. m may be nil to disable metrics.
func NewPipeline(logger zerolog.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		logger:     logger,
		metrics:    m,
		NewBackend: detection.NewBackend,
	}
}

// Run processes img with cfg. A nil cfg means config.Default().
//
// Returns a Result for both the found and not-found outcomes. Errors wrap
// ErrInvalidInput or ErrProcessing and never come with a partial Result.
// Panics raised by a backend are recovered and reported as ErrProcessing.
func (p *Pipeline) Run(img image.Image, cfg *config.Config) (res *Result, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: panic: %v", ErrProcessing, r)
		}
		p.observe(res, err, time.Since(start))
	}()

	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidInput)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has invalid dimensions %dx%d", ErrInvalidInput, b.Dx(), b.Dy())
	}

	backend, err := p.NewBackend(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create backend: %w", ErrProcessing, err)
	}

	mask, err := backend.Binarize(img, uint8(cfg.WhiteThreshold))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to binarize image: %w", ErrProcessing, err)
	}

	roi := detection.RightROI(mask.Bounds(), cfg.ROIFraction)
	contours, err := backend.ExternalContours(mask, roi)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract contours: %w", ErrProcessing, err)
	}

	circle, found := detection.FindCircle(contours, roi.Min, detection.Criteria{
		MinArea:        cfg.CircleMinArea,
		MaxArea:        cfg.CircleMaxArea,
		MinCircularity: cfg.CircularityThreshold,
	})

	res = &Result{
		Mask:    mask,
		ROI:     roi,
		Backend: backend.Name(),
	}

	if !found {
		res.Annotated, err = Annotate(img, nil, roi, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
		}
		res.Status = Status{Message: "No white circle detected"}
		return res, nil
	}

	p.logger.Debug().
		Float64("x", circle.Center.X).
		Float64("y", circle.Center.Y).
		Float64("radius", circle.Radius).
		Float64("circularity", circle.Circularity).
		Float64("area", circle.Area).
		Msg("Circle detected")

	cal, err := Derive(circle.Diameter(), cfg.ReferenceDiameterMM, cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	var note string
	size, err := ScaledSize(mask.Bounds(), cal.ScaleFactor, cfg.MaxOutputDimension)
	switch {
	case errors.Is(err, ErrOutputTooLarge):
		// Keep the calibration, return the annotated image at input size
		note = fmt.Sprintf("Rescaling skipped: %v", err)
		p.logger.Warn().Err(err).Msg("Rescaled image over the size limit")
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	annotated, err := Annotate(img, circle, roi, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	if note == "" {
		res.Scaled, err = backend.Resize(annotated, size.X, size.Y)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to resize image: %w", ErrProcessing, err)
		}
	}

	res.Circle = circle
	res.Calibration = cal
	res.Annotated = annotated
	res.Status = Status{
		CircleFound:         true,
		PixelDiameter:       &cal.PixelDiameter,
		ScaleFactor:         &cal.ScaleFactor,
		MillimetersPerPixel: &cal.MillimetersPerPixel,
		Message: fmt.Sprintf("White circle detected (%.1fpx diameter)\nScale factor: %.3f mm/pixel",
			cal.PixelDiameter, cal.ScaleFactor),
		Note: note,
	}
	return res, nil
}

func (p *Pipeline) observe(res *Result, err error, elapsed time.Duration) {
	var outcome string
	var ev *zerolog.Event
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
		ev = p.logger.Warn().Err(err)
	case res.Calibration != nil:
		outcome = metrics.OutcomeFound
		ev = p.logger.Info().Float64("scale_factor", res.Calibration.ScaleFactor)
	default:
		outcome = metrics.OutcomeNotFound
		ev = p.logger.Info()
	}
	ev.Str("outcome", outcome).Dur("elapsed", elapsed).Msg("Calibration run")

	scale := 0.0
	if res != nil && res.Calibration != nil {
		scale = res.Calibration.ScaleFactor
	}
	p.metrics.Observe(outcome, elapsed, scale)
}
