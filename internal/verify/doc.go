// Package verify compares a photographed part against its reference geometry.
//
// Service ties the pipeline together. The reference silhouette comes from a
// capture.Capturer and is binarized with a fixed cutoff; the subject
// silhouette comes from a photograph and is binarized adaptively. Each side is
// reduced to its largest outer contour, the two contours are scored with a
// matching.Matcher, and an overlay of both outlines is drawn on the photograph.
//
// A missing silhouette on either side is an expected outcome and is reported
// as a nil contour or an unscored Report, never as an error.
package verify
