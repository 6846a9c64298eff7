// Package capture obtains reference renders for silhouette comparison.
//
// A Capturer yields an image of the reference geometry drawn as dark shapes on
// a white background. FileCapture reads a pre-rendered file, CommandCapture
// runs an external renderer, and ViewportCapture drives a host application's
// viewport directly. NullCapture stands in when none is configured.
//
// ViewportCapture is the seam for a host process that embeds the pipeline
// inside a CAD application. The stdio server and CLI have no viewport of their
// own, so they never construct one; a host wrapper implements Viewport and
// Object over its scene and passes the capturer to verify.Service.WithCapturer.
//
// Capturers report the absence of anything to capture with
// ErrCaptureUnavailable so callers can treat it as "no reference" rather than
// a failure.
package capture
