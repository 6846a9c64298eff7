// Package matching scores how alike two silhouette contours are.
//
// Scores come from Hu moment invariants, which do not change when a shape is
// translated, uniformly scaled, or rotated. A score of zero means identical
// shapes and larger values mean less similar ones. There is no upper bound.
//
// MomentMatcher computes the invariants in pure Go from the polygon vertices.
// CVMatcher delegates to OpenCV and is only functional in builds tagged gocv;
// the two agree on the scoring formula.
package matching
