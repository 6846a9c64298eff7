package capture

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/silhouette-mcp/internal/imaging"
)

// ErrCaptureUnavailable means there is nothing to capture a reference render
// from, such as no open document or no configured source.
var ErrCaptureUnavailable = errors.New("reference capture unavailable")

// Capturer produces a render of the reference geometry: dark shapes on a
// white background.
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
}

// NullCapture never has anything to capture.
type NullCapture struct{}

// Capture always returns ErrCaptureUnavailable.
func (NullCapture) Capture(context.Context) (image.Image, error) {
	return nil, ErrCaptureUnavailable
}

// FileCapture uses a pre-rendered image file as the reference render.
//
// The file is read on every capture and never cached, so a render
// re-exported to the same path is picked up by the next call.
type FileCapture struct {
	path string
}

// NewFileCapture returns a FileCapture reading path.
func NewFileCapture(path string) *FileCapture {
	return &FileCapture{path: path}
}

// Path returns the file the capture reads.
func (f *FileCapture) Path() string { return f.path }

// Capture loads the reference image. An empty path is unavailable.
func (f *FileCapture) Capture(ctx context.Context) (image.Image, error) {
	if f.path == "" {
		return nil, ErrCaptureUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.LoadFile(f.path)
}
