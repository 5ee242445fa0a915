// Package detection finds the reference calibration circle in an image.
//
// The package covers the vision half of calibration: turning a photograph
// into a clean binary mask, extracting the outer contours of bright blobs
// and picking the first blob that looks like the reference disc. Scale
// derivation and rendering live in package calibrate.
//
// # Backends
//
// Image primitives sit behind the Backend interface so the pipeline does not
// depend on any one vision library:
//
//   - Native: pure Go, built on bild and disintegration/imaging
//   - GoCV: OpenCV through gocv, compiled only with the gocv build tag
//
// Use NewBackend to select one by name.
//
// # Pipeline
//
//  1. Binarize: luminance, 5×5 Gaussian blur, global threshold, 3×3 close then open
//  2. RightROI: restrict the search to the right-hand strip of the image
//  3. ExternalContours: outer boundaries only, holes and nested blobs ignored
//  4. FindCircle: area band plus circularity floor, first match wins
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// Contours are relative to the ROI. FindCircle translates its result back to
// full-image coordinates.
//
// # Limitations
//
// The detector expects a bright, solid disc on a darker background. Any other
// round white object in the ROI that comes first in raster order is accepted
// in place of the reference.
package detection
