// Package container assembles the verification service from configuration.
package container

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/silhouette-mcp/internal/binarize"
	"github.com/ironsheep/silhouette-mcp/internal/capture"
	"github.com/ironsheep/silhouette-mcp/internal/config"
	"github.com/ironsheep/silhouette-mcp/internal/imaging"
	"github.com/ironsheep/silhouette-mcp/internal/matching"
	"github.com/ironsheep/silhouette-mcp/internal/verify"
)

// Container holds the long-lived components shared by the entry points.
type Container struct {
	Cache   *imaging.ImageCache
	Service *verify.Service
}

// New wires a Container from cfg.
//
// The reference source is chosen in order: SILHOUETTE_CAPTURE_COMMAND, then
// SILHOUETTE_REFERENCE_IMAGE, then none.
func New(cfg *config.Config, log logrus.FieldLogger) (*Container, error) {
	subjectColor, err := imaging.ParseColor(cfg.SubjectColor)
	if err != nil {
		return nil, fmt.Errorf("subject color: %w", err)
	}
	referenceColor, err := imaging.ParseColor(cfg.ReferenceColor)
	if err != nil {
		return nil, fmt.Errorf("reference color: %w", err)
	}

	matcher, err := newMatcher(cfg.Matcher)
	if err != nil {
		return nil, err
	}

	cache := imaging.NewImageCache()

	opts := verify.Options{
		Reference: binarize.NewFixedThreshold(cfg.RenderCutoff),
		Subject: binarize.NewAdaptive(binarize.AdaptiveOptions{
			BlurRadius: cfg.BlurRadius,
			WindowSize: cfg.AdaptiveWindow,
			Offset:     cfg.AdaptiveOffset,
		}),
		Matcher: matcher,
		Style: imaging.OverlayStyle{
			SubjectColor:   subjectColor,
			ReferenceColor: referenceColor,
			LineWidth:      cfg.LineWidth,
		},
		Threshold: cfg.MatchThreshold,
	}

	return &Container{
		Cache:   cache,
		Service: verify.New(NewCapturer(cfg, log), cache, opts, log),
	}, nil
}

// NewCapturer selects the reference source described by cfg.
func NewCapturer(cfg *config.Config, log logrus.FieldLogger) capture.Capturer {
	switch {
	case len(cfg.CaptureCommand) > 0:
		return capture.NewCommandCapture(cfg.CaptureCommand, cfg.CaptureWidth, cfg.CaptureHeight, log)
	case cfg.ReferenceImage != "":
		return capture.NewFileCapture(cfg.ReferenceImage)
	default:
		return capture.NullCapture{}
	}
}

func newMatcher(name string) (matching.Matcher, error) {
	switch name {
	case "", config.MatcherMoments:
		return matching.NewMomentMatcher(), nil
	case config.MatcherOpenCV:
		m, err := matching.NewCVMatcher()
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown matcher %q", name)
	}
}
