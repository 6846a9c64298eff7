package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/silhouette-mcp/internal/detection"
)

// OverlayStyle controls how contours are drawn by RenderOverlay.
type OverlayStyle struct {
	// SubjectColor is used for the contour found in the photograph.
	SubjectColor color.Color

	// ReferenceColor is used for the fitted reference contour.
	ReferenceColor color.Color

	// LineWidth is the stroke width in pixels. Values below 1 are treated as 1.
	LineWidth int
}

// DefaultOverlayStyle draws the subject in red and the reference in green,
// two pixels wide.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		SubjectColor:   color.NRGBA{R: 255, A: 255},
		ReferenceColor: color.NRGBA{G: 255, A: 255},
		LineWidth:      2,
	}
}

// ParseColor parses a hex color string like "#FF0000" or "#f00".
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Fit describes how a reference contour is mapped onto a subject's bounding box.
type Fit struct {
	// Scale is the per-axis factor subject size / reference size.
	Scale r2.Vec `json:"scale"`

	// Points are the reference vertices after mapping.
	Points []image.Point `json:"-"`
}

// FitReference maps the reference contour's vertices so that its bounding box
// coincides with the subject's.
//
// Each vertex p becomes (p - refMin) * scale + subjMin with
// scale = subjSize / refSize on each axis, truncated toward zero and saturated
// at ±maxMappedCoordinate. The second
// result is false when either bounding box has zero width or height, in which
// case no mapping exists.
func FitReference(reference, subject detection.Contour) (Fit, bool) {
	ref := boxOf(reference.Bounds())
	subj := boxOf(subject.Bounds())

	refSize := ref.Size()
	subjSize := subj.Size()
	if refSize.X == 0 || refSize.Y == 0 || subjSize.X == 0 || subjSize.Y == 0 {
		return Fit{}, false
	}

	scale := r2.Vec{X: subjSize.X / refSize.X, Y: subjSize.Y / refSize.Y}

	src := reference.Points()
	pts := make([]image.Point, len(src))
	for i, p := range src {
		d := r2.Sub(r2.Vec{X: float64(p.X), Y: float64(p.Y)}, ref.Min)
		q := r2.Add(r2.Vec{X: d.X * scale.X, Y: d.Y * scale.Y}, subj.Min)
		pts[i] = image.Pt(saturate(q.X), saturate(q.Y))
	}

	return Fit{Scale: scale, Points: pts}, true
}

// RenderOverlay draws the subject contour and the fitted reference contour on
// a copy of photo.
//
// Parameters:
//   - photo: The photograph the subject contour was extracted from.
//   - reference: The reference silhouette, in its own coordinate space.
//   - subject: The silhouette found in photo.
//   - style: Colors and stroke width.
//
// Returns:
//   - image.Image: nil if any input is nil. If either contour's bounding box
//     has zero width or height, photo itself is returned unmodified. Otherwise
//     a new image the size of photo with the subject outline drawn first and
//     the reference outline on top.
//
// The input photo is never modified.
func RenderOverlay(photo image.Image, reference, subject *detection.Contour, style OverlayStyle) image.Image {
	if photo == nil || reference == nil || subject == nil {
		return nil
	}

	fit, ok := FitReference(*reference, *subject)
	if !ok {
		return photo
	}

	if style.SubjectColor == nil || style.ReferenceColor == nil {
		def := DefaultOverlayStyle()
		if style.SubjectColor == nil {
			style.SubjectColor = def.SubjectColor
		}
		if style.ReferenceColor == nil {
			style.ReferenceColor = def.ReferenceColor
		}
	}
	if style.LineWidth < 1 {
		style.LineWidth = 1
	}

	// Clone re-bases the copy at (0,0), matching contour coordinates.
	result := imaging.Clone(photo)
	drawPolygon(result, subject.Points(), style.SubjectColor, style.LineWidth)
	drawPolygon(result, fit.Points, style.ReferenceColor, style.LineWidth)

	return result
}

// maxMappedCoordinate bounds fitted vertices so they convert to int on any
// platform.
const maxMappedCoordinate = 1 << 30

func saturate(v float64) int {
	switch {
	case v > maxMappedCoordinate:
		return maxMappedCoordinate
	case v < -maxMappedCoordinate:
		return -maxMappedCoordinate
	}
	return int(v)
}

func boxOf(b detection.Bounds) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: float64(b.X1), Y: float64(b.Y1)},
		Max: r2.Vec{X: float64(b.X2), Y: float64(b.Y2)},
	}
}

// drawPolygon strokes the closed polygon through pts.
func drawPolygon(img *image.NRGBA, pts []image.Point, c color.Color, width int) {
	if len(pts) == 0 {
		return
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	for i := range pts {
		drawLine(img, pts[i], pts[(i+1)%len(pts)], nc, width)
	}
}

// drawLine draws a segment with Bresenham's algorithm, stamping a square brush
// of the given width at each step.
//
// The segment is first clipped to the band of positions whose brush can touch
// the image, so the work is bounded by the image size whatever the endpoints.
func drawLine(img *image.NRGBA, a, b image.Point, c color.NRGBA, width int) {
	lo := -(width - 1) / 2
	hi := width / 2
	bounds := img.Bounds()

	reach := image.Rectangle{
		Min: image.Pt(bounds.Min.X-hi, bounds.Min.Y-hi),
		Max: image.Pt(bounds.Max.X-1-lo, bounds.Max.Y-1-lo),
	}
	a, b, ok := clipSegment(a, b, reach)
	if !ok {
		return
	}

	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy

	x, y := a.X, a.Y
	for {
		for oy := lo; oy <= hi; oy++ {
			for ox := lo; ox <= hi; ox++ {
				p := image.Pt(x+ox, y+oy)
				if p.In(bounds) {
					img.SetNRGBA(p.X, p.Y, c)
				}
			}
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// clipSegment clips a-b to r, treating r.Max as inclusive, with the
// Liang-Barsky method. Endpoints inside r are returned unchanged; clipped ones
// are rounded to the nearest pixel. ok is false when the segment misses r.
func clipSegment(a, b image.Point, r image.Rectangle) (image.Point, image.Point, bool) {
	if r.Max.X < r.Min.X || r.Max.Y < r.Min.Y {
		return a, b, false
	}

	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-x0, float64(b.Y)-y0
	t0, t1 := 0.0, 1.0

	// Each edge is p*t <= q.
	edges := [4][2]float64{
		{-dx, x0 - float64(r.Min.X)},
		{dx, float64(r.Max.X) - x0},
		{-dy, y0 - float64(r.Min.Y)},
		{dy, float64(r.Max.Y) - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}

	if t0 > 0 {
		a = image.Pt(int(math.Round(x0+t0*dx)), int(math.Round(y0+t0*dy)))
	}
	if t1 < 1 {
		b = image.Pt(int(math.Round(x0+t1*dx)), int(math.Round(y0+t1*dy)))
	}
	return a, b, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
