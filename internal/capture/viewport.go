package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
)

// Silhouette colors forced onto the viewport while capturing.
var (
	SilhouetteBackground = colorful.Color{R: 1, G: 1, B: 1}
	SilhouetteShape      = colorful.Color{R: 0, G: 0, B: 0}
)

// Default snapshot size.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// Viewport is a host application's 3D view that can be recolored and
// snapshotted.
type Viewport interface {
	BackgroundColor() (colorful.Color, error)
	SetBackgroundColor(c colorful.Color) error
	Objects() []Object
	Snapshot(ctx context.Context, width, height int) (image.Image, error)
}

// Object is a visible shape in a Viewport.
type Object interface {
	ShapeColor() (colorful.Color, error)
	SetShapeColor(c colorful.Color) error
}

// ViewportCapture renders the active viewport as a silhouette: white
// background, black shapes.
//
// Every color changed for the snapshot is put back before Capture returns,
// whether or not the snapshot succeeded. Objects whose color cannot be read
// are left alone and not restored.
type ViewportCapture struct {
	active func() Viewport
	width  int
	height int
	log    logrus.FieldLogger
}

// NewViewportCapture returns a ViewportCapture. active returns the current
// viewport, or nil when no document is open. Non-positive sizes use the
// defaults.
func NewViewportCapture(active func() Viewport, width, height int, log logrus.FieldLogger) *ViewportCapture {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ViewportCapture{active: active, width: width, height: height, log: log}
}

type savedColor struct {
	obj   Object
	color colorful.Color
}

// Capture implements Capturer.
func (v *ViewportCapture) Capture(ctx context.Context) (image.Image, error) {
	if v.active == nil {
		return nil, ErrCaptureUnavailable
	}
	vp := v.active()
	if vp == nil {
		return nil, ErrCaptureUnavailable
	}

	bg, bgErr := vp.BackgroundColor()
	if bgErr != nil {
		v.log.WithError(bgErr).Debug("viewport background not readable, leaving as is")
	}

	saved := make([]savedColor, 0)
	defer func() {
		for _, s := range saved {
			if err := s.obj.SetShapeColor(s.color); err != nil {
				v.log.WithError(err).Warn("failed to restore shape color")
			}
		}
		if bgErr == nil {
			if err := vp.SetBackgroundColor(bg); err != nil {
				v.log.WithError(err).Warn("failed to restore viewport background")
			}
		}
	}()

	if bgErr == nil {
		if err := vp.SetBackgroundColor(SilhouetteBackground); err != nil {
			v.log.WithError(err).Warn("failed to set silhouette background")
		}
	}

	for _, obj := range vp.Objects() {
		c, err := obj.ShapeColor()
		if err != nil {
			continue
		}
		saved = append(saved, savedColor{obj: obj, color: c})
		if err := obj.SetShapeColor(SilhouetteShape); err != nil {
			v.log.WithError(err).Debug("failed to set silhouette shape color")
		}
	}

	img, err := vp.Snapshot(ctx, v.width, v.height)
	if err != nil {
		return nil, fmt.Errorf("viewport snapshot failed: %w", err)
	}
	return img, nil
}
