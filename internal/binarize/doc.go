// Package binarize turns images into two-valued foreground masks.
//
// Two rules are provided. FixedThreshold compares each pixel's grayscale
// intensity against a global cutoff and is meant for synthetic renders with a
// clean white background. Adaptive compares each smoothed pixel against the
// mean of its neighbourhood and is meant for photographs, where lighting varies
// across the frame.
//
// Both rules return a Mask whose dimensions equal the source image's. Masks are
// consumed by the detection package, which traces foreground regions into
// contours.
package binarize
