package viewer

import (
	"errors"
	"log"
	"math"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/geom"
)

const (
	doubleClickTime = 400 * time.Millisecond
	doubleClickDist = 5
	wheelStep       = 1.1
	keyZoomStep     = 1.25
	arrowPan        = 10
)

type action int

const (
	actNone action = iota
	actRepaint
	actSave
	actCopy
	actQuit
)

// controller turns window input into widget calls. It runs on the event
// loop goroutine.
type controller struct {
	w   *photoclip.Widget
	now func() time.Time

	panning bool
	last    geom.Point

	rotating bool
	center   geom.Point
	pointer  float64
	turned   float64

	lastClick   time.Time
	lastClickAt geom.Point
}

func newController(w *photoclip.Widget) *controller {
	return &controller{w: w, now: time.Now}
}

func report(op string, err error) {
	if err != nil && !errors.Is(err, photoclip.ErrBusy) {
		log.Printf("%s: %v", op, err)
	}
}

func pointerAngle(center, p geom.Point) float64 {
	d := p.Sub(center)
	return geom.Degrees(math.Atan2(d.Y, d.X))
}

func (c *controller) mouse(e mouse.Event) bool {
	p := geom.Pt(float64(e.X), float64(e.Y))
	switch e.Direction {
	case mouse.DirStep:
		switch e.Button {
		case mouse.ButtonWheelUp:
			c.w.ZoomAt(c.w.Scale()*wheelStep, p, 0)
		case mouse.ButtonWheelDown:
			c.w.ZoomAt(c.w.Scale()/wheelStep, p, 0)
		default:
			return false
		}
		return true
	case mouse.DirPress:
		switch e.Button {
		case mouse.ButtonLeft:
			now := c.now()
			if now.Sub(c.lastClick) <= doubleClickTime && p.Near(c.lastClickAt, doubleClickDist) {
				c.lastClick = time.Time{}
				report("rotate", c.w.RotateBy(90, c.w.Bounce(), &p))
				return true
			}
			c.lastClick, c.lastClickAt = now, p
			c.panning, c.last = true, p
		case mouse.ButtonRight:
			c.center = c.w.Layout().Clip.Center()
			c.pointer = pointerAngle(c.center, p)
			c.turned = 0
			if err := c.w.RotateStart(c.center, 0); err != nil {
				report("rotate", err)
				return false
			}
			c.rotating = true
		}
		return false
	case mouse.DirRelease:
		switch {
		case e.Button == mouse.ButtonLeft && c.panning:
			c.panning = false
			c.w.EndPan()
			return true
		case e.Button == mouse.ButtonRight && c.rotating:
			c.rotating = false
			report("rotate", c.w.RotateEnd(c.center, c.turned))
			return true
		}
		return false
	}

	switch {
	case c.panning:
		d := p.Sub(c.last)
		c.last = p
		c.w.Pan(d.X, d.Y)
		return true
	case c.rotating:
		a := pointerAngle(c.center, p)
		// Unwrap across the atan2 discontinuity so the total keeps growing.
		c.turned += math.Remainder(a-c.pointer, 360)
		c.pointer = a
		c.w.RotateMove(c.turned)
		return true
	}
	return false
}

func (c *controller) key(e key.Event) action {
	if e.Direction == key.DirRelease {
		return actNone
	}
	d := c.w.Bounce()
	switch e.Code {
	case key.CodeEscape:
		return actQuit
	case key.CodeReturnEnter:
		return actSave
	case key.CodeLeftArrow:
		return c.nudge(-arrowPan, 0)
	case key.CodeRightArrow:
		return c.nudge(arrowPan, 0)
	case key.CodeUpArrow:
		return c.nudge(0, -arrowPan)
	case key.CodeDownArrow:
		return c.nudge(0, arrowPan)
	}
	switch e.Rune {
	case 'q', 'Q':
		return actQuit
	case 'c', 'C':
		return actCopy
	case 'r', 'R':
		report("rotate", c.w.RotateBy(90, d, nil))
	case 'l', 'L':
		report("rotate", c.w.RotateBy(-90, d, nil))
	case '0':
		report("rotate", c.w.Rotate(0, d))
	case '+', '=':
		c.w.Zoom(c.w.Scale()*keyZoomStep, d)
	case '-':
		c.w.Zoom(c.w.Scale()/keyZoomStep, d)
	default:
		return actNone
	}
	return actRepaint
}

func (c *controller) nudge(dx, dy float64) action {
	c.w.Pan(dx, dy)
	c.w.EndPan()
	return actRepaint
}
