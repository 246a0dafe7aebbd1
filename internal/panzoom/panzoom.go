// Package panzoom is a small deterministic pan/zoom engine. It tracks the
// position and scale of a content surface inside a viewport and clamps
// both into range on Refresh. There is no momentum: durations are recorded
// for the host to animate with but positions settle immediately.
package panzoom

import (
	"math"
	"time"

	"github.com/example/photoclip/internal/geom"
)

// Bounds are the scale limits and the initial scale.
type Bounds struct {
	ZoomMin   float64
	ZoomMax   float64
	StartZoom float64
}

// Unit is the degenerate bound used when nothing is loaded.
var Unit = Bounds{ZoomMin: 1, ZoomMax: 1, StartZoom: 1}

// Clamp limits s into [ZoomMin, ZoomMax].
func (b Bounds) Clamp(s float64) float64 {
	if s < b.ZoomMin {
		s = b.ZoomMin
	}
	if s > b.ZoomMax {
		s = b.ZoomMax
	}
	return s
}

// Scroller is the pan/zoom state. X and Y are the content origin in
// viewport pixels; they are normally <= 0.
type Scroller struct {
	X, Y float64

	scale    float64
	bounds   Bounds
	viewport geom.Size
	content  geom.Size
	last     time.Duration

	listeners []*listener
	emitting  bool
}

type listener struct{ fn func() }

// New returns a scroller at scale 1 with unit bounds.
func New() *Scroller {
	return &Scroller{scale: 1, bounds: Unit}
}

func (s *Scroller) Scale() float64 { return s.scale }

// SetScale assigns the scale without clamping or notifying listeners.
func (s *Scroller) SetScale(v float64) {
	if v > 0 {
		s.scale = v
	}
}

func (s *Scroller) Bounds() Bounds     { return s.bounds }
func (s *Scroller) SetBounds(b Bounds) { s.bounds = b }

// Position returns the content origin in viewport pixels.
func (s *Scroller) Position() geom.Point { return geom.Pt(s.X, s.Y) }

// SetViewport sets the size of the visible window.
func (s *Scroller) SetViewport(sz geom.Size) { s.viewport = sz }

// SetContent sets the unscaled size of the content surface.
func (s *Scroller) SetContent(sz geom.Size) { s.content = sz }

func (s *Scroller) Viewport() geom.Size { return s.viewport }
func (s *Scroller) Content() geom.Size  { return s.content }

// LastDuration is the duration passed to the most recent animated call.
func (s *Scroller) LastDuration() time.Duration { return s.last }

// ScrollTo places the content origin at (x, y) without clamping.
func (s *Scroller) ScrollTo(x, y float64) {
	s.X, s.Y = x, y
}

// ScrollBy moves the content by (dx, dy) without clamping.
func (s *Scroller) ScrollBy(dx, dy float64) {
	s.X += dx
	s.Y += dy
}

// ZoomTo zooms about the viewport center.
func (s *Scroller) ZoomTo(scale float64, d time.Duration) {
	s.ZoomAt(scale, s.viewport.W/2, s.viewport.H/2, d)
}

// ZoomAt zooms so the viewport point (cx, cy) keeps showing the same
// content point. The scale is clamped into the bounds and every zoom ends
// with the zoom-end listeners being called.
func (s *Scroller) ZoomAt(scale, cx, cy float64, d time.Duration) {
	scale = s.bounds.Clamp(scale)
	if scale <= 0 || math.IsNaN(scale) {
		return
	}
	rel := scale / s.scale
	s.X = cx - (cx-s.X)*rel
	s.Y = cy - (cy-s.Y)*rel
	s.scale = scale
	s.last = d
	s.clampPosition()
	s.emitZoomEnd()
}

// Range returns the allowed position interval on each axis. Content that
// is smaller than the viewport on an axis is pinned to the center.
func (s *Scroller) Range() (lo, hi geom.Point) {
	lo.X, hi.X = axisRange(s.viewport.W, s.content.W*s.scale)
	lo.Y, hi.Y = axisRange(s.viewport.H, s.content.H*s.scale)
	return lo, hi
}

func axisRange(view, content float64) (lo, hi float64) {
	lo = view - content
	if lo > 0 {
		lo /= 2
		return lo, lo
	}
	return lo, 0
}

// Refresh pulls the position back into range.
func (s *Scroller) Refresh(d time.Duration) {
	s.last = d
	s.clampPosition()
}

func (s *Scroller) clampPosition() {
	lo, hi := s.Range()
	s.X = math.Max(lo.X, math.Min(hi.X, s.X))
	s.Y = math.Max(lo.Y, math.Min(hi.Y, s.Y))
}

// OnZoomEnd subscribes fn to zoom completion and returns a func that
// removes the subscription.
func (s *Scroller) OnZoomEnd(fn func()) (remove func()) {
	l := &listener{fn: fn}
	s.listeners = append(s.listeners, l)
	return func() {
		for i, x := range s.listeners {
			if x == l {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Scroller) emitZoomEnd() {
	if s.emitting {
		return
	}
	s.emitting = true
	defer func() { s.emitting = false }()
	for _, l := range append([]*listener(nil), s.listeners...) {
		l.fn()
	}
}
