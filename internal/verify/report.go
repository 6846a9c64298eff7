package verify

import (
	"fmt"
	"image"

	"github.com/ironsheep/silhouette-mcp/internal/detection"
)

// Reasons a Report carries no score.
const (
	ReasonNoReference = "no silhouette found in the reference render"
	ReasonNoSubject   = "no silhouette found in the photograph"
)

// Report is the outcome of Verify.
type Report struct {
	ReferenceFound bool `json:"reference_found"`
	SubjectFound   bool `json:"subject_found"`

	// Score is nil when either silhouette is missing.
	Score     *float64 `json:"score,omitempty"`
	Threshold float64  `json:"threshold"`
	Match     bool     `json:"match"`

	// Reason explains a missing score.
	Reason string `json:"reason,omitempty"`

	Reference *detection.Contour `json:"reference,omitempty"`
	Subject   *detection.Contour `json:"subject,omitempty"`

	// Overlay is the annotated photograph; nil when no score was computed.
	Overlay image.Image `json:"-"`
}

// Summary returns a one-line human readable verdict.
func (r *Report) Summary() string {
	if r.Score == nil {
		return "UNVERIFIED: " + r.Reason
	}
	verdict := "MISMATCH"
	if r.Match {
		verdict = "MATCH"
	}
	return fmt.Sprintf("%s: score %.4f (threshold %.4f)", verdict, *r.Score, r.Threshold)
}
