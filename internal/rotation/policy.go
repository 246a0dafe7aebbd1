package rotation

import (
	"math"

	"github.com/example/photoclip/internal/geom"
)

// Policy decides how a gesture turns into a committed angle. The variants
// are Free and Snap90.
type Policy interface {
	free() bool
	start(m *Machine, center geom.Point, rotation float64)
	move(m *Machine)
	end(m *Machine, s *Session, center geom.Point) error
}

// Band pulls angles within Tolerance degrees of Target onto Target.
type Band struct {
	Target    float64
	Tolerance float64
}

// DefaultBands snap to the nearest quarter turn within 10 degrees.
var DefaultBands = []Band{
	{Target: 0, Tolerance: 10},
	{Target: 90, Tolerance: 10},
	{Target: 180, Tolerance: 10},
	{Target: 270, Tolerance: 10},
	{Target: 360, Tolerance: 10},
}

// Correct applies bands to a cumulative angle and returns the corrected
// cumulative angle.
func Correct(angle float64, bands []Band) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	for _, b := range bands {
		if math.Abs(a-b.Target) < b.Tolerance {
			return angle + b.Target - a
		}
	}
	return angle
}

// Free tracks the gesture angle live and straightens it on release.
type Free struct {
	// Bands defaults to DefaultBands when nil.
	Bands []Band
}

func (Free) free() bool { return true }

func (p Free) start(m *Machine, center geom.Point, rotation float64) {
	m.session.StartAngle = math.Mod(rotation-m.Angle(), 360)
	m.Ready(&center)
}

func (p Free) move(m *Machine) {
	m.Update(m.session.CurrentAngle)
}

func (p Free) end(m *Machine, s *Session, _ geom.Point) error {
	bands := p.Bands
	if bands == nil {
		bands = DefaultBands
	}
	m.Finish(Correct(s.CurrentAngle, bands), m.bounce)
	return nil
}

// Snap90 ignores the live angle and turns a quarter at a time once the
// gesture passes Threshold degrees.
type Snap90 struct {
	// Threshold defaults to 30.
	Threshold float64
}

func (Snap90) free() bool { return false }

func (Snap90) start(m *Machine, _ geom.Point, rotation float64) {
	m.session.StartAngle = rotation
}

func (Snap90) move(*Machine) {}

func (p Snap90) end(m *Machine, s *Session, center geom.Point) error {
	th := p.Threshold
	if th <= 0 {
		th = 30
	}
	a := Normalize(s.CurrentAngle)
	switch {
	case a > th:
		return m.RotateBy(90, m.bounce, &center)
	case a < -th:
		return m.RotateBy(-90, m.bounce, &center)
	}
	return nil
}

// Normalize maps an angle into (-180, 180].
func Normalize(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}
