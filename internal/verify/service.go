package verify

import (
	"context"
	"errors"
	"image"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/silhouette-mcp/internal/binarize"
	"github.com/ironsheep/silhouette-mcp/internal/capture"
	"github.com/ironsheep/silhouette-mcp/internal/detection"
	"github.com/ironsheep/silhouette-mcp/internal/imaging"
	"github.com/ironsheep/silhouette-mcp/internal/matching"
)

// DefaultThreshold is the score below which two silhouettes are considered a
// match.
const DefaultThreshold = 0.05

// Options configures a Service. Zero fields fall back to DefaultOptions.
type Options struct {
	// Reference binarizes reference renders.
	Reference binarize.Binarizer

	// Subject binarizes photographs.
	Subject binarize.Binarizer

	// Matcher scores contour pairs.
	Matcher matching.Matcher

	// Style draws overlays.
	Style imaging.OverlayStyle

	// Threshold is the match cutoff used by Verify.
	Threshold float64
}

// DefaultOptions returns a fixed 250 cutoff for renders, the default adaptive
// rule for photographs, the moment matcher, and the default overlay style.
func DefaultOptions() Options {
	return Options{
		Reference: binarize.NewFixedThreshold(binarize.DefaultCutoff),
		Subject:   binarize.NewAdaptive(binarize.DefaultAdaptiveOptions()),
		Matcher:   matching.NewMomentMatcher(),
		Style:     imaging.DefaultOverlayStyle(),
		Threshold: DefaultThreshold,
	}
}

// Service runs the silhouette pipeline: extract a reference silhouette from a
// render, extract a subject silhouette from a photograph, score the pair, and
// draw an overlay.
//
// A Service holds no per-call state and is safe for concurrent use.
type Service struct {
	capturer  capture.Capturer
	cache     *imaging.ImageCache
	reference binarize.Binarizer
	subject   binarize.Binarizer
	matcher   matching.Matcher
	style     imaging.OverlayStyle
	threshold float64
	log       logrus.FieldLogger
}

// New creates a Service. A nil capturer behaves as capture.NullCapture and a
// nil cache is replaced with a fresh one.
func New(capturer capture.Capturer, cache *imaging.ImageCache, opts Options, log logrus.FieldLogger) *Service {
	def := DefaultOptions()
	if opts.Reference == nil {
		opts.Reference = def.Reference
	}
	if opts.Subject == nil {
		opts.Subject = def.Subject
	}
	if opts.Matcher == nil {
		opts.Matcher = def.Matcher
	}
	if opts.Style.SubjectColor == nil && opts.Style.ReferenceColor == nil && opts.Style.LineWidth == 0 {
		opts.Style = def.Style
	}
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if capturer == nil {
		capturer = capture.NullCapture{}
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Service{
		capturer:  capturer,
		cache:     cache,
		reference: opts.Reference,
		subject:   opts.Subject,
		matcher:   opts.Matcher,
		style:     opts.Style,
		threshold: opts.Threshold,
		log:       log,
	}
}

// WithCapturer returns a copy of the service that takes reference renders
// from c.
func (s *Service) WithCapturer(c capture.Capturer) *Service {
	cp := *s
	if c == nil {
		c = capture.NullCapture{}
	}
	cp.capturer = c
	return &cp
}

// WithThreshold returns a copy of the service using threshold for Verify.
// Non-positive values leave the threshold unchanged.
func (s *Service) WithThreshold(threshold float64) *Service {
	cp := *s
	if threshold > 0 {
		cp.threshold = threshold
	}
	return &cp
}

// Threshold returns the match cutoff.
func (s *Service) Threshold() float64 { return s.threshold }

// Cache returns the image cache used for photographs.
func (s *Service) Cache() *imaging.ImageCache { return s.cache }

// ExtractReferenceSilhouette captures a reference render and returns the
// largest dark region's outer contour.
//
// Returns (nil, nil) when nothing can be captured or the render holds no
// valid contour. Other capture failures, such as a corrupt render, are
// returned as errors.
func (s *Service) ExtractReferenceSilhouette(ctx context.Context) (*detection.Contour, error) {
	img, err := s.capturer.Capture(ctx)
	if errors.Is(err, capture.ErrCaptureUnavailable) {
		s.log.Debug("no reference render available")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c := detection.Largest(s.reference.Binarize(img))
	s.logContour("reference", img, c)
	return c, nil
}

// ExtractSubjectSilhouette loads a photograph and returns the outer contour of
// its largest foreground region along with the decoded photograph.
//
// The contour is nil when the photograph holds no valid contour. A
// *imaging.LoadError is returned when the file cannot be read or decoded.
func (s *Service) ExtractSubjectSilhouette(path string) (*detection.Contour, image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}

	c := detection.Largest(s.subject.Binarize(img))
	s.logContour(path, img, c)
	return c, img, nil
}

// CompareSilhouettes scores two contours; lower is more similar. It returns a
// *matching.ComparisonError if either contour is nil or degenerate.
func (s *Service) CompareSilhouettes(reference, subject *detection.Contour) (float64, error) {
	score, err := s.matcher.Match(reference, subject)
	if err != nil {
		return 0, err
	}
	s.log.WithField("score", score).Debug("silhouettes compared")
	return score, nil
}

// RenderOverlay draws both contours on a copy of photo. See
// imaging.RenderOverlay for the degenerate and nil cases.
func (s *Service) RenderOverlay(photo image.Image, reference, subject *detection.Contour) image.Image {
	return imaging.RenderOverlay(photo, reference, subject, s.style)
}

// ReferenceMask binarizes img with the reference rule.
func (s *Service) ReferenceMask(img image.Image) *binarize.Mask {
	return s.reference.Binarize(img)
}

// SubjectMask binarizes img with the photograph rule.
func (s *Service) SubjectMask(img image.Image) *binarize.Mask {
	return s.subject.Binarize(img)
}

// Verify runs the whole pipeline against the photograph at photoPath.
//
// The reference and subject are extracted concurrently. A missing silhouette
// on either side yields a Report with Match false and no score rather than an
// error. Load, capture, and comparison failures are returned as errors.
func (s *Service) Verify(ctx context.Context, photoPath string) (*Report, error) {
	var (
		reference *detection.Contour
		subject   *detection.Contour
		photo     image.Image
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.ExtractReferenceSilhouette(gctx)
		reference = c
		return err
	})
	g.Go(func() error {
		c, img, err := s.ExtractSubjectSilhouette(photoPath)
		subject, photo = c, img
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		ReferenceFound: reference != nil,
		SubjectFound:   subject != nil,
		Threshold:      s.threshold,
		Reference:      reference,
		Subject:        subject,
	}

	switch {
	case reference == nil:
		report.Reason = ReasonNoReference
		return report, nil
	case subject == nil:
		report.Reason = ReasonNoSubject
		return report, nil
	}

	score, err := s.CompareSilhouettes(reference, subject)
	if err != nil {
		return nil, err
	}
	report.Score = &score
	report.Match = score < s.threshold
	report.Overlay = s.RenderOverlay(photo, reference, subject)

	s.log.WithFields(logrus.Fields{
		"source":    photoPath,
		"score":     score,
		"threshold": s.threshold,
		"match":     report.Match,
	}).Info("verification complete")

	return report, nil
}

func (s *Service) logContour(source string, img image.Image, c *detection.Contour) {
	fields := logrus.Fields{
		"source": source,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}
	if c == nil {
		s.log.WithFields(fields).Debug("no contour found")
		return
	}
	fields["area"] = c.Area()
	fields["points"] = c.Len()
	s.log.WithFields(fields).Debug("contour extracted")
}
