// Package geom holds the coordinate helpers shared by the layout, rotation
// and compositing code. Angles are degrees; positive angles turn clockwise
// on screen because the y axis points down.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in some layer's local frame.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point   { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point   { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) vec() r2.Vec         { return r2.Vec{X: p.X, Y: p.Y} }
func fromVec(v r2.Vec) Point        { return Point{v.X, v.Y} }
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Rect is an axis-aligned rectangle; Max is exclusive.
type Rect struct {
	Min, Max Point
}

// RectXYWH builds a rect from its top-left corner and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + w, y + h}}
}

func (r Rect) W() float64    { return r.Max.X - r.Min.X }
func (r Rect) H() float64    { return r.Max.Y - r.Min.Y }
func (r Rect) Size() Size    { return Size{r.W(), r.H()} }
func (r Rect) Center() Point { return Point{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2} }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// RotatePoint turns p by deg degrees about origin.
func RotatePoint(p Point, deg float64, origin Point) Point {
	if deg == 0 {
		return p
	}
	return fromVec(r2.NewRotation(Radians(deg), origin.vec()).Rotate(p.vec()))
}
