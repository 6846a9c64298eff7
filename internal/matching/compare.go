package matching

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/silhouette-mcp/internal/detection"
)

// huEpsilon is the magnitude below which a Hu invariant is treated as zero and
// left out of the score.
const huEpsilon = 1e-5

// ErrMissingContour is wrapped by ComparisonError when an input is nil.
var ErrMissingContour = errors.New("contour is missing")

// ErrDegenerateContour is wrapped by ComparisonError when an input encloses
// no area.
var ErrDegenerateContour = errors.New("contour is degenerate")

// ComparisonError reports that two contours could not be compared.
type ComparisonError struct {
	// Which names the offending argument: "reference" or "subject".
	Which string
	Err   error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("cannot compare silhouettes: %s %v", e.Which, e.Err)
}

func (e *ComparisonError) Unwrap() error { return e.Err }

// Matcher scores the dissimilarity of two contours. Zero means identical
// shapes; larger values mean less similar.
type Matcher interface {
	Match(reference, subject *detection.Contour) (float64, error)
}

// MomentMatcher scores contours by comparing the log-scaled Hu invariants of
// their polygon moments. It is the default Matcher.
type MomentMatcher struct{}

// NewMomentMatcher returns a MomentMatcher.
func NewMomentMatcher() *MomentMatcher {
	return &MomentMatcher{}
}

// Match implements Matcher using Compare.
func (MomentMatcher) Match(reference, subject *detection.Contour) (float64, error) {
	return Compare(reference, subject)
}

// Compare returns a dissimilarity score for two contours that is invariant to
// translation, uniform scale, and rotation.
//
// Parameters:
//   - reference, subject: The contours to compare. Both must be non-nil and
//     enclose a positive area.
//
// Returns:
//   - float64: A non-negative score; 0 for identical shapes. The score is
//     symmetric in its arguments.
//   - error: A *ComparisonError if either contour is nil or degenerate.
//
// # Algorithm
//
// For each of the seven Hu invariants hA and hB of the two shapes, the term
//
//	|1/(sign(hA)*log10|hA|) - 1/(sign(hB)*log10|hB|)|
//
// is summed. Invariants whose magnitude is at or below 1e-5 in either shape
// are skipped, since their logarithm is dominated by noise.
func Compare(reference, subject *detection.Contour) (float64, error) {
	if err := validate("reference", reference); err != nil {
		return 0, err
	}
	if err := validate("subject", subject); err != nil {
		return 0, err
	}

	ha := PolygonMoments(reference.Points()).Hu()
	hb := PolygonMoments(subject.Points()).Hu()

	terms := make([]float64, 0, len(ha))
	for i := range ha {
		a, b := math.Abs(ha[i]), math.Abs(hb[i])
		if a <= huEpsilon || b <= huEpsilon {
			continue
		}
		ma := 1 / (sign(ha[i]) * math.Log10(a))
		mb := 1 / (sign(hb[i]) * math.Log10(b))
		terms = append(terms, math.Abs(ma-mb))
	}

	return floats.Sum(terms), nil
}

func validate(which string, c *detection.Contour) error {
	if c == nil {
		return &ComparisonError{Which: which, Err: ErrMissingContour}
	}
	if !c.Valid() {
		return &ComparisonError{Which: which, Err: ErrDegenerateContour}
	}
	return nil
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
