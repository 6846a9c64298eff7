package detection

import (
	"encoding/json"
	"image"
	"math"
)

// Bounds represents the axis-aligned extent of a contour in pixel coordinates.
//
// (X1, Y1) is the minimum vertex coordinate and (X2, Y2) the maximum, both
// inclusive. Width and Height are therefore X2-X1 and Y2-Y1: a contour whose
// vertices all share one column has zero width.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width returns the horizontal extent X2-X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent Y2-Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is an ordered, closed polygon of integer image coordinates.
//
// The last vertex connects back to the first. Area and bounds are computed once
// at construction and the vertex slice is never exposed for mutation, so a
// Contour can be shared between goroutines.
type Contour struct {
	points []image.Point
	area   float64
	bounds Bounds
}

// NewContour builds a contour from the given vertices. The slice is copied.
func NewContour(points []image.Point) Contour {
	pts := make([]image.Point, len(points))
	copy(pts, points)
	return Contour{
		points: pts,
		area:   polygonArea(pts),
		bounds: boundsOf(pts),
	}
}

// Points returns a copy of the contour's vertices in traversal order.
func (c Contour) Points() []image.Point {
	pts := make([]image.Point, len(c.points))
	copy(pts, c.points)
	return pts
}

// Len returns the number of vertices.
func (c Contour) Len() int { return len(c.points) }

// Area returns the absolute polygon area enclosed by the vertices.
func (c Contour) Area() float64 { return c.area }

// Bounds returns the axis-aligned extent of the vertices.
func (c Contour) Bounds() Bounds { return c.bounds }

// Valid reports whether the contour encloses a region: at least three
// vertices, positive area, and non-zero width and height.
func (c Contour) Valid() bool {
	return len(c.points) >= 3 && c.area > 0 && c.bounds.Width() > 0 && c.bounds.Height() > 0
}

// contourJSON is the wire form of a Contour.
type contourJSON struct {
	Points []Point  `json:"points"`
	Area   *float64 `json:"area,omitempty"`
	Bounds *Bounds  `json:"bounds,omitempty"`
}

// MarshalJSON encodes the contour as {"points":[...],"area":...,"bounds":{...}}.
func (c Contour) MarshalJSON() ([]byte, error) {
	pts := make([]Point, len(c.points))
	for i, p := range c.points {
		pts[i] = Point{X: p.X, Y: p.Y}
	}
	area := c.area
	bounds := c.bounds
	return json.Marshal(contourJSON{Points: pts, Area: &area, Bounds: &bounds})
}

// UnmarshalJSON decodes a contour from its wire form. Only the points are
// read; area and bounds are recomputed from them.
func (c *Contour) UnmarshalJSON(data []byte) error {
	var raw contourJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pts := make([]image.Point, len(raw.Points))
	for i, p := range raw.Points {
		pts[i] = image.Pt(p.X, p.Y)
	}
	*c = NewContour(pts)
	return nil
}

// polygonArea returns the absolute shoelace area of a closed polygon.
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum int64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += int64(pts[i].X)*int64(pts[j].Y) - int64(pts[j].X)*int64(pts[i].Y)
	}
	return math.Abs(float64(sum)) / 2
}

func boundsOf(pts []image.Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{X1: pts[0].X, Y1: pts[0].Y, X2: pts[0].X, Y2: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.X1 {
			b.X1 = p.X
		}
		if p.X > b.X2 {
			b.X2 = p.X
		}
		if p.Y < b.Y1 {
			b.Y1 = p.Y
		}
		if p.Y > b.Y2 {
			b.Y2 = p.Y
		}
	}
	return b
}
