// Package rotation drives the rotate layer: pivot selection, live angle
// tracking during a gesture, commit of a final angle and the animated
// settle that follows it.
package rotation

import (
	"errors"
	"math"
	"time"

	"github.com/example/photoclip/internal/geom"
	"github.com/example/photoclip/internal/layout"
	"github.com/example/photoclip/internal/task"
)

// ErrBusy rejects rotation requests while a settle is running.
var ErrBusy = errors.New("rotation in progress")

// State of the machine.
type State int

const (
	Idle State = iota
	GestureActive
	Settling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case GestureActive:
		return "gesture"
	case Settling:
		return "settling"
	}
	return "unknown"
}

// Session is the state of a rotate gesture between start and end.
type Session struct {
	StartAngle   float64
	CurrentAngle float64
	Free         bool
	Active       bool
}

// Machine owns the rotation state of one model.
type Machine struct {
	model  *layout.Model
	policy Policy
	sched  task.Scheduler
	bounce time.Duration

	state   State
	session *Session
	settle  *Settle
	tokens  task.Group
	stop    func() bool

	// Now is the clock used to stamp settles.
	Now func() time.Time

	// OnSettled runs after a settle completes.
	OnSettled func()
}

// New returns an idle machine. A nil policy means Free; a nil scheduler
// makes every commit immediate.
func New(model *layout.Model, policy Policy, sched task.Scheduler, bounce time.Duration) *Machine {
	if policy == nil {
		policy = Free{}
	}
	return &Machine{
		model:  model,
		policy: policy,
		sched:  sched,
		bounce: bounce,
		Now:    time.Now,
	}
}

func (m *Machine) State() State          { return m.state }
func (m *Machine) Policy() Policy        { return m.policy }
func (m *Machine) Session() *Session     { return m.session }
func (m *Machine) Settle() *Settle       { return m.settle }
func (m *Machine) Angle() float64        { return m.model.Rotate.Angle }
func (m *Machine) Animated() bool        { return m.sched != nil }
func (m *Machine) Bounce() time.Duration { return m.bounce }

// anchor is the translation a rotation about o adds to a rotation about
// the origin.
func anchor(o geom.Point, deg float64) geom.Point {
	return o.Sub(geom.RotatePoint(o, deg, geom.Point{}))
}

// Ready moves the pivot to the clip center, or to the given container
// point, without changing what is on screen.
func (m *Machine) Ready(at *geom.Point) {
	md := m.model
	st := md.Stack()
	var p geom.Point
	if at == nil {
		p = geom.MapPoint(&st.Clip, &st.Rotate, geom.Pt(md.Clip.W/2, md.Clip.H/2))
	} else {
		p = geom.GlobalToLocal(&st.Rotate, *at)
	}
	r := &md.Rotate
	r.Offset = r.Offset.Add(anchor(r.Pivot, r.Angle)).Sub(anchor(p, r.Angle))
	r.Pivot = p
}

// Update applies a live gesture angle. It does no layout work.
func (m *Machine) Update(angle float64) {
	if m.state != GestureActive {
		return
	}
	m.model.Rotate.Angle = angle
}

// Finish commits angle. The model is updated at once and left with a zero
// pivot; a positive duration with a real angle change also starts a
// visual settle that completes through the scheduler.
func (m *Machine) Finish(angle float64, d time.Duration) {
	md := m.model
	r := &md.Rotate
	prev := r.Angle
	pivot := r.Pivot

	r.Angle = angle
	rect := geom.BoundingBox(r.Placement(md.Move.Padding), r.Natural.W, r.Natural.H)
	r.Footprint = rect.Size()

	rot0 := geom.BoundingBox(geom.RotationAbout(angle, geom.Point{}), r.Natural.W, r.Natural.H)
	r.Offset = geom.Pt(-rot0.Min.X, -rot0.Min.Y)
	r.Pivot = geom.Point{}

	sc := md.Scroll
	s := sc.Scale()
	x, y := sc.X, sc.Y
	md.RecomputeScaleBounds()
	md.ResizeMoveLayer()
	pad := md.Move.Padding
	sc.ScrollTo(x+s*(rect.Min.X-pad.X), y+s*(rect.Min.Y-pad.Y))
	md.Refresh(m.bounce)

	r.Angle = math.Mod(angle, 360)

	if d <= 0 || angle == prev || m.sched == nil {
		m.state = Idle
		return
	}
	tok := m.tokens.Next()
	m.settle = &Settle{
		Pivot:    pivot,
		Offset:   r.Offset.Add(pad).Sub(anchor(pivot, angle)),
		From:     prev,
		To:       angle,
		Start:    m.Now(),
		Duration: d,
	}
	m.state = Settling
	m.stop = m.sched.AfterFunc(d, func() {
		if tok.Valid() {
			m.complete()
		}
	})
}

func (m *Machine) complete() {
	m.state = Idle
	m.settle = nil
	m.stop = nil
	if m.OnSettled != nil {
		m.OnSettled()
	}
}

// RotateTo turns to angle about the clip center or the given container
// point.
func (m *Machine) RotateTo(angle float64, d time.Duration, at *geom.Point) error {
	if m.state != Idle {
		return ErrBusy
	}
	m.Ready(at)
	m.Finish(angle, d)
	return nil
}

// RotateBy turns by delta relative to the current angle.
func (m *Machine) RotateBy(delta float64, d time.Duration, at *geom.Point) error {
	return m.RotateTo(m.model.Rotate.Angle+delta, d, at)
}

// Cancel drops any gesture and any pending settle completion. The model
// keeps its committed geometry.
func (m *Machine) Cancel() {
	m.tokens.Cancel()
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.settle = nil
	m.session = nil
	m.state = Idle
}

// GestureStart opens a gesture session. It is rejected while settling.
func (m *Machine) GestureStart(center geom.Point, rotation float64) error {
	if m.state == Settling {
		return ErrBusy
	}
	m.session = &Session{Active: true, Free: m.policy.free()}
	m.state = GestureActive
	m.policy.start(m, center, rotation)
	return nil
}

// GestureMove feeds the cumulative gesture rotation.
func (m *Machine) GestureMove(rotation float64) {
	if m.session == nil || m.state != GestureActive {
		return
	}
	m.session.CurrentAngle = rotation - m.session.StartAngle
	m.policy.move(m)
}

// GestureEnd closes the session and lets the policy commit. Cancel events
// from the recognizer end the gesture the same way.
func (m *Machine) GestureEnd(center geom.Point) error {
	s := m.session
	if s == nil || m.state != GestureActive {
		return nil
	}
	s.Active = false
	m.session = nil
	m.state = Idle
	return m.policy.end(m, s, center)
}
