package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/ironsheep/circle-calibrate-mcp/internal/calibrate"
	"github.com/ironsheep/circle-calibrate-mcp/internal/config"
	"github.com/ironsheep/circle-calibrate-mcp/internal/detection"
	"github.com/ironsheep/circle-calibrate-mcp/internal/imaging"
)

// errUsage reports a flag error the FlagSet has already printed.
var errUsage = errors.New("usage")

// detectReport is the -json output of the detect subcommand.
type detectReport struct {
	Input       string                 `json:"input"`
	Backend     string                 `json:"backend"`
	Status      calibrate.Status       `json:"status"`
	Circle      *detection.Circle      `json:"circle,omitempty"`
	Calibration *calibrate.Calibration `json:"calibration,omitempty"`
	Output      string                 `json:"output,omitempty"`
	Mask        string                 `json:"mask,omitempty"`
}

// runDetect calibrates a single image file. Only flags given on the command
// line override the defaults.
func runDetect(args []string, stdout, stderr io.Writer, logger zerolog.Logger) error {
	def := config.Default()

	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "input image (required)")
	out := fs.String("out", "", "write the annotated image here; the extension picks the format")
	maskOut := fs.String("mask", "", "write the cleaned binary mask here")
	asJSON := fs.Bool("json", false, "print the full result as JSON")

	threshold := fs.Int("threshold", def.WhiteThreshold, "white luminance cutoff (0-255)")
	minArea := fs.Float64("min-area", def.CircleMinArea, "smallest accepted circle area in px²")
	maxArea := fs.Float64("max-area", def.CircleMaxArea, "largest accepted circle area in px²")
	circularity := fs.Float64("circularity", def.CircularityThreshold, "minimum circularity (exclusive)")
	dpi := fs.Float64("dpi", def.DPI, "output resolution for the scale formula")
	refMM := fs.Float64("reference-mm", def.ReferenceDiameterMM, "physical diameter of the reference circle in mm")
	roi := fs.Float64("roi", def.ROIFraction, "share of the width, from the right edge, that is searched")
	maxDim := fs.Int("max-dim", def.MaxOutputDimension, "largest allowed side of the rescaled image")
	showROI := fs.Bool("show-roi", def.ShowROI, "outline the search region")
	color := fs.String("color", def.AnnotationColor, "hex color of the circle annotations")
	roiColor := fs.String("roi-color", def.ROIColor, "hex color of the ROI outline")
	backend := fs.String("backend", def.Backend, "vision backend (native or gocv)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if *in == "" {
		fmt.Fprintln(stderr, "detect: -in is required")
		fs.Usage()
		return errUsage
	}

	var o config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			o.WhiteThreshold = threshold
		case "min-area":
			o.CircleMinArea = minArea
		case "max-area":
			o.CircleMaxArea = maxArea
		case "circularity":
			o.CircularityThreshold = circularity
		case "dpi":
			o.DPI = dpi
		case "reference-mm":
			o.ReferenceDiameterMM = refMM
		case "roi":
			o.ROIFraction = roi
		case "max-dim":
			o.MaxOutputDimension = maxDim
		case "show-roi":
			o.ShowROI = showROI
		case "color":
			o.AnnotationColor = color
		case "roi-color":
			o.ROIColor = roiColor
		case "backend":
			o.Backend = backend
		}
	})
	cfg := def.Merge(o)

	img, err := imaging.NewImageCache().Load(*in)
	if err != nil {
		return err
	}

	res, err := calibrate.NewPipeline(logger, nil).Run(img, cfg)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := imaging.Save(*out, res.Output()); err != nil {
			return err
		}
	}
	if *maskOut != "" {
		if err := imaging.Save(*maskOut, res.Mask); err != nil {
			return err
		}
	}

	if !*asJSON {
		_, err := fmt.Fprintln(stdout, res.Status.Message)
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(detectReport{
		Input:       *in,
		Backend:     res.Backend,
		Status:      res.Status,
		Circle:      res.Circle,
		Calibration: res.Calibration,
		Output:      *out,
		Mask:        *maskOut,
	})
}
