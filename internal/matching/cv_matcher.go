//go:build gocv

package matching

import (
	"gocv.io/x/gocv"

	"github.com/ironsheep/silhouette-mcp/internal/detection"
)

// CVMatcher scores contours with OpenCV's matchShapes using the I1 method.
// It is only available in builds tagged gocv.
type CVMatcher struct{}

// NewCVMatcher returns a CVMatcher.
func NewCVMatcher() (*CVMatcher, error) {
	return &CVMatcher{}, nil
}

// Match implements Matcher.
func (CVMatcher) Match(reference, subject *detection.Contour) (float64, error) {
	if err := validate("reference", reference); err != nil {
		return 0, err
	}
	if err := validate("subject", subject); err != nil {
		return 0, err
	}

	a := gocv.NewPointVectorFromPoints(reference.Points())
	defer a.Close()
	b := gocv.NewPointVectorFromPoints(subject.Points())
	defer b.Close()

	return gocv.MatchShapes(a, b, gocv.ContoursMatchI1, 0), nil
}
