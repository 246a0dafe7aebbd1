package rotation

import (
	"math"
	"time"

	"github.com/example/photoclip/internal/geom"
)

// Bezier is a CSS style cubic-bezier timing curve from (0,0) to (1,1).
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

// Ease is the settle timing curve.
var Ease = Bezier{X1: 0.1, Y1: 0.57, X2: 0.1, Y2: 1}

func bez(a, b, t float64) float64 {
	u := 1 - t
	return 3*u*u*t*a + 3*u*t*t*b + t*t*t
}

func bezDeriv(a, b, t float64) float64 {
	u := 1 - t
	return 3*u*u*a + 6*u*t*(b-a) + 3*t*t*(1-b)
}

// At returns the eased progress for linear progress x in [0, 1].
func (c Bezier) At(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	t := x
	for i := 0; i < 8; i++ {
		d := bezDeriv(c.X1, c.X2, t)
		if math.Abs(d) < 1e-6 {
			break
		}
		t -= (bez(c.X1, c.X2, t) - x) / d
	}
	if t < 0 || t > 1 || math.Abs(bez(c.X1, c.X2, t)-x) > 1e-6 {
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 40; i++ {
			if bez(c.X1, c.X2, t) < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
	}
	return bez(c.Y1, c.Y2, t)
}

// Settle is the visual transition after a commit. Offset and Pivot place
// the rotate layer in move layer space while the angle runs from From to
// To; at To the placement equals the committed model geometry.
type Settle struct {
	Pivot    geom.Point
	Offset   geom.Point
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// Progress is the eased completion at now.
func (s *Settle) Progress(now time.Time) float64 {
	if s.Duration <= 0 {
		return 1
	}
	return Ease.At(float64(now.Sub(s.Start)) / float64(s.Duration))
}

// Angle is the visual angle at now.
func (s *Settle) Angle(now time.Time) float64 {
	return s.From + (s.To-s.From)*s.Progress(now)
}

// Done reports whether the transition has run its course at now.
func (s *Settle) Done(now time.Time) bool {
	return now.Sub(s.Start) >= s.Duration
}

// Layer returns the rotate layer at now, parented to move.
func (s *Settle) Layer(move *geom.Layer, now time.Time) geom.Layer {
	return geom.Layer{Parent: move, Offset: s.Offset, Pivot: s.Pivot, Angle: s.Angle(now)}
}
