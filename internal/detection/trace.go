package detection

import (
	"image"

	"github.com/ironsheep/silhouette-mcp/internal/binarize"
)

// moore lists the 8-neighbourhood clockwise on screen, starting east.
var moore = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

// Extract returns the outer boundary of every 8-connected foreground region in
// the mask.
//
// Regions are discovered in raster order of their top-left pixel and the
// contours are returned in that order. Holes inside a region are ignored; only
// the outermost border is traced. The one-pixel frame of the mask is treated
// as background, so regions touching the image edge are traced along the
// second row or column in.
//
// Each contour is compressed: runs of vertices along the same horizontal,
// vertical, or diagonal direction are reduced to their end points. Regions of
// one or two pixels yield contours with fewer than three vertices, which are
// returned as-is and fail Contour.Valid.
//
// # Algorithm
//
//  1. Scan the interior in raster order for an unlabelled foreground pixel
//  2. Label its whole region with an 8-connected flood fill
//  3. Trace the border clockwise with Moore-neighbour tracing, starting from
//     that pixel with its west neighbour as the backtrack
//  4. Stop when the trace is about to repeat its first move
func Extract(mask *binarize.Mask) []Contour {
	if mask == nil || mask.Width < 3 || mask.Height < 3 {
		return nil
	}

	t := &tracer{
		mask:   mask,
		labels: make([]int32, mask.Width*mask.Height),
	}

	contours := make([]Contour, 0)
	var label int32
	for y := 1; y < mask.Height-1; y++ {
		for x := 1; x < mask.Width-1; x++ {
			if !t.inside(image.Pt(x, y)) || t.labels[y*mask.Width+x] != 0 {
				continue
			}
			label++
			t.floodFill(x, y, label)
			contours = append(contours, NewContour(compress(t.trace(image.Pt(x, y)))))
		}
	}

	return contours
}

// Largest returns the valid contour of the mask enclosing the greatest area,
// or nil when the mask holds no valid contour. Ties keep the contour
// discovered first.
func Largest(mask *binarize.Mask) *Contour {
	return SelectLargest(Extract(mask))
}

// SelectLargest returns the valid contour with the greatest area, or nil if
// none of the contours is valid. Ties keep the earliest contour.
func SelectLargest(contours []Contour) *Contour {
	var best *Contour
	for i := range contours {
		c := &contours[i]
		if !c.Valid() {
			continue
		}
		if best == nil || c.Area() > best.Area() {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

type tracer struct {
	mask   *binarize.Mask
	labels []int32
}

// inside reports whether p is a foreground pixel away from the mask frame.
func (t *tracer) inside(p image.Point) bool {
	if p.X < 1 || p.Y < 1 || p.X >= t.mask.Width-1 || p.Y >= t.mask.Height-1 {
		return false
	}
	return t.mask.Pix[p.Y*t.mask.Width+p.X] == binarize.Foreground
}

// floodFill labels the 8-connected region containing (startX, startY).
func (t *tracer) floodFill(startX, startY int, label int32) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !t.inside(p) {
			continue
		}
		idx := p.Y*t.mask.Width + p.X
		if t.labels[idx] != 0 {
			continue
		}
		t.labels[idx] = label

		for _, d := range moore {
			stack = append(stack, p.Add(d))
		}
	}
}

// step finds the next border pixel clockwise around c, starting just after the
// backtrack b. It returns the pixel and the background neighbour examined
// immediately before it, which becomes the next backtrack.
func (t *tracer) step(c, b image.Point) (image.Point, image.Point, bool) {
	d := direction(b.Sub(c))
	for k := 1; k <= 8; k++ {
		p := c.Add(moore[(d+k)%8])
		if t.inside(p) {
			return p, b, true
		}
		b = p
	}
	return c, b, false
}

// trace walks the outer border of the region whose top-left pixel is start.
func (t *tracer) trace(start image.Point) []image.Point {
	points := []image.Point{start}

	first, back, ok := t.step(start, start.Add(moore[4]))
	if !ok {
		return points
	}

	// Every border pixel is entered at most from each of its 8 neighbours.
	limit := 8*len(t.labels) + 8

	cur := first
	for i := 0; i < limit; i++ {
		next, nextBack, _ := t.step(cur, back)
		if cur == start && next == first {
			break
		}
		points = append(points, cur)
		cur, back = next, nextBack
	}

	return points
}

func direction(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return 0
}

// compress drops vertices that continue the previous segment in the same
// direction, including across the closing edge.
func compress(points []image.Point) []image.Point {
	out := make([]image.Point, 0, len(points))
	for _, p := range points {
		for len(out) >= 2 && straight(out[len(out)-2], out[len(out)-1], p) {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}

	for len(out) >= 3 && straight(out[len(out)-2], out[len(out)-1], out[0]) {
		out = out[:len(out)-1]
	}
	for len(out) >= 3 && straight(out[len(out)-1], out[0], out[1]) {
		out = out[1:]
	}

	return out
}

// straight reports whether b lies on the segment a-c and the path keeps
// heading the same way through it.
func straight(a, b, c image.Point) bool {
	ab := b.Sub(a)
	bc := c.Sub(b)
	cross := ab.X*bc.Y - ab.Y*bc.X
	dot := ab.X*bc.X + ab.Y*bc.Y
	return cross == 0 && dot > 0
}
