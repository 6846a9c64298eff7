// Package detection finds silhouette contours in binarized images.
//
// The package turns a foreground mask from the binarize package into closed
// polygons that describe the outer boundary of each connected foreground
// region, and selects the dominant one for shape comparison.
//
// # Contours
//
// A Contour is an ordered list of integer vertices forming a closed polygon.
// Vertices are compressed so that straight horizontal, vertical, and diagonal
// runs keep only their end points. A contour is Valid when it has at least
// three vertices, encloses a positive area, and has non-zero width and height.
// Only valid contours take part in largest-region selection.
//
// # Algorithm Overview
//
//  1. Connectivity: regions are 8-connected groups of foreground pixels
//  2. Tracing: the outer border of each region is followed clockwise with
//     Moore-neighbour tracing; holes are not traced
//  3. Selection: the valid contour with the greatest polygon area wins, ties
//     going to the region found first in raster order
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounds are the inclusive minimum and maximum vertex coordinates
//
// # Limitations
//
// The one-pixel frame of the mask is always treated as background. A region
// that touches the image edge is traced one pixel in from that edge.
package detection
