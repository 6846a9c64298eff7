// Package imaging provides image input, output, and overlay rendering for the
// silhouette pipeline.
//
// This package loads photographs and reference renders from disk or memory,
// encodes results as PNG, and composites contour outlines onto photographs for
// visual inspection. All operations work with standard Go image.Image types and
// use a coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Loading
//
// Load failures are reported as *LoadError values that match one of two
// sentinels with errors.Is:
//   - ErrSourceUnreadable: the file is missing or cannot be read
//   - ErrCorruptImage: the bytes do not decode to a non-empty image
//
// PNG, JPEG, GIF, BMP, TIFF, and WebP are recognized. JPEG EXIF orientation is
// applied on load so photographs come out upright.
//
// # Overlay
//
// RenderOverlay maps the reference contour into the subject contour's
// bounding box with independent X and Y scale factors and draws both outlines
// onto a copy of the photograph. When either bounding box is degenerate the
// photograph is returned unchanged.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
package imaging
