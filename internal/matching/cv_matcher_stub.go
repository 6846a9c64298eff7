//go:build !gocv

package matching

import (
	"errors"

	"github.com/ironsheep/silhouette-mcp/internal/detection"
)

// ErrCVUnavailable is returned when the OpenCV matcher is requested from a
// build without the gocv tag.
var ErrCVUnavailable = errors.New("opencv matcher not compiled in: rebuild with -tags gocv")

// CVMatcher is a placeholder for builds without OpenCV.
type CVMatcher struct{}

// NewCVMatcher always fails in builds without the gocv tag.
func NewCVMatcher() (*CVMatcher, error) {
	return nil, ErrCVUnavailable
}

// Match always fails in builds without the gocv tag.
func (CVMatcher) Match(_, _ *detection.Contour) (float64, error) {
	return 0, ErrCVUnavailable
}
