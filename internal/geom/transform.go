package geom

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Transform is a 2x3 affine matrix in the layout x/image/draw expects:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Transform f64.Aff3

// Identity returns the identity transform.
func Identity() Transform { return Transform{1, 0, 0, 0, 1, 0} }

// Translation moves points by (tx, ty).
func Translation(tx, ty float64) Transform { return Transform{1, 0, tx, 0, 1, ty} }

// Scaling scales about the origin.
func Scaling(sx, sy float64) Transform { return Transform{sx, 0, 0, 0, sy, 0} }

// RotationAbout turns by deg degrees about o.
func RotationAbout(deg float64, o Point) Transform {
	if deg == 0 {
		return Identity()
	}
	s, c := math.Sincos(Radians(deg))
	return Transform{
		c, -s, o.X - c*o.X + s*o.Y,
		s, c, o.Y - s*o.X - c*o.Y,
	}
}

// Apply maps p through t.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: t[0]*p.X + t[1]*p.Y + t[2],
		Y: t[3]*p.X + t[4]*p.Y + t[5],
	}
}

// Then returns the transform that applies t first and u second.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		u[0]*t[0] + u[1]*t[3],
		u[0]*t[1] + u[1]*t[4],
		u[0]*t[2] + u[1]*t[5] + u[2],
		u[3]*t[0] + u[4]*t[3],
		u[3]*t[1] + u[4]*t[4],
		u[3]*t[2] + u[4]*t[5] + u[5],
	}
}

// Invert returns the inverse of t. A singular matrix inverts to Identity so
// callers never see NaN or Inf coordinates.
func (t Transform) Invert() Transform {
	det := t[0]*t[4] - t[1]*t[3]
	if math.Abs(det) < 1e-12 {
		return Identity()
	}
	a := t[4] / det
	b := -t[1] / det
	d := -t[3] / det
	e := t[0] / det
	return Transform{
		a, b, -(a*t[2] + b*t[5]),
		d, e, -(d*t[2] + e*t[5]),
	}
}

// Aff3 exposes the matrix for x/image/draw.
func (t Transform) Aff3() f64.Aff3 { return f64.Aff3(t) }

// BoundingBox returns the axis-aligned box covering the w x h rectangle at
// the origin after it has been mapped through t.
func BoundingBox(t Transform, w, h float64) Rect {
	corners := [4]Point{
		t.Apply(Point{0, 0}),
		t.Apply(Point{w, 0}),
		t.Apply(Point{0, h}),
		t.Apply(Point{w, h}),
	}
	r := Rect{Min: corners[0], Max: corners[0]}
	for _, c := range corners[1:] {
		r.Min.X = math.Min(r.Min.X, c.X)
		r.Min.Y = math.Min(r.Min.Y, c.Y)
		r.Max.X = math.Max(r.Max.X, c.X)
		r.Max.Y = math.Max(r.Max.Y, c.Y)
	}
	return r
}
