// Package imaging provides image I/O and annotation drawing for the calibration server.
//
// It covers three concerns:
//   - Loading: decoding PNG, JPEG, GIF, WebP, BMP and TIFF files, with a
//     path-keyed ImageCache
//   - Encoding: PNG, JPEG and lossless WebP output, either to disk or as
//     base64 for JSON responses
//   - Annotation: anti-aliased circles, lines, rectangles and text labels on
//     a private copy of an image via Overlay
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Overlay shapes take float coordinates measured from pixel edges, so a
// shape centred at (10.5, 10.5) is centred on pixel (10, 10).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Decoded images returned by
// the cache are shared and must not be modified. Overlay always draws on its
// own copy.
package imaging
