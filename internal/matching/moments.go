package matching

import (
	"image"
	"math"
)

// Moments holds the raw spatial moments of a closed polygon up to third order.
type Moments struct {
	M00, M10, M01      float64
	M20, M11, M02      float64
	M30, M21, M12, M03 float64
}

// PolygonMoments computes the spatial moments of the region enclosed by a
// closed polygon using Green's theorem over its edges.
//
// The result does not depend on traversal direction: a clockwise polygon
// yields the same moments as its counter-clockwise reversal. Polygons with
// fewer than three vertices, or whose signed area is zero, return the zero
// value.
func PolygonMoments(points []image.Point) Moments {
	n := len(points)
	if n < 3 {
		return Moments{}
	}

	var a00, a10, a01, a20, a11, a02, a30, a21, a12, a03 float64

	prev := points[n-1]
	xi1, yi1 := float64(prev.X), float64(prev.Y)
	xi12, yi12 := xi1*xi1, yi1*yi1

	for _, p := range points {
		xi, yi := float64(p.X), float64(p.Y)
		xi2, yi2 := xi*xi, yi*yi

		dxy := xi1*yi - xi*yi1
		xii1 := xi1 + xi
		yii1 := yi1 + yi

		a00 += dxy
		a10 += dxy * xii1
		a01 += dxy * yii1
		a20 += dxy * (xi1*xii1 + xi2)
		a11 += dxy * (xi1*(yii1+yi1) + xi*(yii1+yi))
		a02 += dxy * (yi1*yii1 + yi2)
		a30 += dxy * xii1 * (xi12 + xi2)
		a03 += dxy * yii1 * (yi12 + yi2)
		a21 += dxy * (xi12*(3*yi1+yi) + 2*xi*xi1*yii1 + xi2*(yi1+3*yi))
		a12 += dxy * (yi12*(3*xi1+xi) + 2*yi*yi1*xii1 + yi2*(xi1+3*xi))

		xi1, yi1 = xi, yi
		xi12, yi12 = xi2, yi2
	}

	if a00 == 0 {
		return Moments{}
	}

	// Green's theorem gives signed moments; flip clockwise polygons.
	sign := 1.0
	if a00 < 0 {
		sign = -1
	}

	return Moments{
		M00: sign * a00 / 2,
		M10: sign * a10 / 6,
		M01: sign * a01 / 6,
		M20: sign * a20 / 12,
		M11: sign * a11 / 24,
		M02: sign * a02 / 12,
		M30: sign * a30 / 20,
		M21: sign * a21 / 60,
		M12: sign * a12 / 60,
		M03: sign * a03 / 20,
	}
}

// Hu returns the seven Hu invariants derived from the moments' normalized
// central moments. The invariants are unchanged by translation, uniform
// scaling, and rotation. All seven are zero when M00 is zero.
func (m Moments) Hu() [7]float64 {
	var hu [7]float64
	if m.M00 == 0 {
		return hu
	}

	cx := m.M10 / m.M00
	cy := m.M01 / m.M00

	mu20 := m.M20 - cx*m.M10
	mu11 := m.M11 - cx*m.M01
	mu02 := m.M02 - cy*m.M01
	mu30 := m.M30 - cx*(3*mu20+cx*m.M10)
	mu21 := m.M21 - cx*(2*mu11+cx*m.M01) - cy*mu20
	mu12 := m.M12 - cy*(2*mu11+cy*m.M10) - cx*mu02
	mu03 := m.M03 - cy*(3*mu02+cy*m.M01)

	s2 := 1 / (m.M00 * m.M00)
	s3 := s2 / math.Sqrt(m.M00)

	nu20, nu11, nu02 := mu20*s2, mu11*s2, mu02*s2
	nu30, nu21, nu12, nu03 := mu30*s3, mu21*s3, mu12*s3, mu03*s3

	t0 := nu30 + nu12
	t1 := nu21 + nu03
	q0 := nu20 - nu02
	q1 := nu30 - 3*nu12
	q2 := 3*nu21 - nu03

	hu[0] = nu20 + nu02
	hu[1] = q0*q0 + 4*nu11*nu11
	hu[2] = q1*q1 + q2*q2
	hu[3] = t0*t0 + t1*t1
	hu[4] = q1*t0*(t0*t0-3*t1*t1) + q2*t1*(3*t0*t0-t1*t1)
	hu[5] = q0*(t0*t0-t1*t1) + 4*nu11*t0*t1
	hu[6] = q2*t0*(t0*t0-3*t1*t1) - q1*t1*(3*t0*t0-t1*t1)

	return hu
}
