package panzoom

import (
	"testing"
	"time"

	"github.com/example/photoclip/internal/geom"
)

func newScroller() *Scroller {
	s := New()
	s.SetViewport(geom.Size{W: 300, H: 300})
	s.SetContent(geom.Size{W: 600, H: 400})
	s.SetBounds(Bounds{ZoomMin: 0.75, ZoomMax: 2, StartZoom: 1})
	return s
}

func TestRefreshClampsPosition(t *testing.T) {
	s := newScroller()
	s.ScrollTo(40, -500)
	s.Refresh(300 * time.Millisecond)
	if s.X != 0 || s.Y != -100 {
		t.Fatalf("got (%v, %v) want (0, -100)", s.X, s.Y)
	}
	if got := s.LastDuration(); got != 300*time.Millisecond {
		t.Fatalf("duration %v", got)
	}
}

func TestRefreshCentersSmallContent(t *testing.T) {
	s := newScroller()
	s.SetContent(geom.Size{W: 200, H: 400})
	s.ScrollTo(-10, 0)
	s.Refresh(0)
	if s.X != 50 {
		t.Fatalf("x = %v want 50", s.X)
	}
}

func TestZoomAtKeepsFocusPoint(t *testing.T) {
	s := newScroller()
	s.ScrollTo(-150, -50)
	// content point under (150, 150) before zoom
	before := geom.Pt((150-s.X)/s.Scale(), (150-s.Y)/s.Scale())
	s.ZoomAt(1.5, 150, 150, 0)
	after := geom.Pt((150-s.X)/s.Scale(), (150-s.Y)/s.Scale())
	if !before.Near(after, 1e-9) {
		t.Fatalf("focus moved from %v to %v", before, after)
	}
}

func TestZoomClampsAndNotifies(t *testing.T) {
	s := newScroller()
	calls := 0
	remove := s.OnZoomEnd(func() { calls++ })
	s.ZoomTo(10, 0)
	if s.Scale() != 2 {
		t.Fatalf("scale %v want 2", s.Scale())
	}
	s.ZoomTo(0.1, 0)
	if s.Scale() != 0.75 {
		t.Fatalf("scale %v want 0.75", s.Scale())
	}
	remove()
	s.ZoomTo(1, 0)
	if calls != 2 {
		t.Fatalf("calls %d want 2", calls)
	}
}

func TestZoomEndDoesNotRecurse(t *testing.T) {
	s := newScroller()
	depth := 0
	s.OnZoomEnd(func() {
		depth++
		s.ZoomTo(1.2, 0)
	})
	s.ZoomTo(1.1, 0)
	if depth != 1 {
		t.Fatalf("listener ran %d times", depth)
	}
}
