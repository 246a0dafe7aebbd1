package geom

// Layer is one node in a stack of nested surfaces. A point p in the layer's
// local frame lands in the parent frame at
//
//	Offset + Pivot + Scale * R(Angle) * (p - Pivot)
//
// A nil Parent means the parent frame is the container.
type Layer struct {
	Parent *Layer
	Offset Point
	Pivot  Point

	// Scale of the local frame; zero is read as 1.
	Scale float64

	// Angle in degrees, clockwise.
	Angle float64
}

func (l *Layer) scale() float64 {
	if l.Scale == 0 {
		return 1
	}
	return l.Scale
}

// Local returns the local-to-parent transform of l.
func (l *Layer) Local() Transform {
	if l == nil {
		return Identity()
	}
	s := l.scale()
	return Translation(-l.Pivot.X, -l.Pivot.Y).
		Then(RotationAbout(l.Angle, Point{})).
		Then(Scaling(s, s)).
		Then(Translation(l.Offset.X+l.Pivot.X, l.Offset.Y+l.Pivot.Y))
}

// ToContainer composes l and all of its ancestors.
func (l *Layer) ToContainer() Transform {
	t := Identity()
	for n := l; n != nil; n = n.Parent {
		t = t.Then(n.Local())
	}
	return t
}

// MapPoint converts p from the local frame of from into the local frame of
// to. Either layer may be nil for the container frame.
func MapPoint(from, to *Layer, p Point) Point {
	return to.ToContainer().Invert().Apply(from.ToContainer().Apply(p))
}

// GlobalToLocal converts a container point into the local, unscaled frame
// of l.
func GlobalToLocal(l *Layer, p Point) Point {
	return MapPoint(nil, l, p)
}

// LocalToGlobal is the inverse of GlobalToLocal.
func LocalToGlobal(l *Layer, p Point) Point {
	return MapPoint(l, nil, p)
}
