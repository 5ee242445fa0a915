// Package calibrate turns a photograph containing a reference white circle
// into a pixel-to-millimetre calibration.
//
// A Pipeline run goes through four stages:
//
//  1. Preprocess: the backend binarizes the image (luminance, blur, threshold, close, open)
//  2. Extract: outer contours of the bright blobs inside the right-hand ROI
//  3. Classify: the first contour passing the area band and circularity floor
//  4. Derive and render: scale factor, annotated image, rescaled image
//
// # Scale Formula
//
// With d the detected diameter in pixels:
//
//	scaleFactor         = ReferenceDiameterMM × DPI / (d × 25.4)
//	millimetersPerPixel = ReferenceDiameterMM / d
//
// The rescaled image measures floor(width × scaleFactor) by
// floor(height × scaleFactor).
//
// # Errors
//
// Run returns errors wrapping exactly one of ErrInvalidInput or
// ErrProcessing. Failing to find a circle is not an error: the Result
// reports CircleFound false and the annotated image is an unmodified copy of
// the input.
//
// # Concurrency
//
// Pipeline holds no per-run state and may be shared. Session keeps the last
// loaded image and serialises runs against it.
package calibrate
