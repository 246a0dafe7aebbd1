// Package layout owns the geometry of the three nested crop layers: the
// clip viewport centered in the container, the pan/zoom move layer and the
// rotate layer that holds the image at its natural size.
package layout

import (
	"math"
	"time"

	"github.com/example/photoclip/internal/geom"
	"github.com/example/photoclip/internal/panzoom"
)

// Frame describes the requested clip size. A positive percentage
// resolves that axis against the container; when only one axis is a
// percentage the other follows the W/H ratio of Size.
type Frame struct {
	Size          geom.Size
	WidthPercent  float64
	HeightPercent float64
}

// Adaptive reports whether any axis is a percentage.
func (c Frame) Adaptive() bool { return c.WidthPercent > 0 || c.HeightPercent > 0 }

// Resolve returns the clip size inside container.
func (c Frame) Resolve(container geom.Size) geom.Size {
	if !c.Adaptive() {
		return c.Size
	}
	ratio := 1.0
	if c.Size.W > 0 && c.Size.H > 0 {
		ratio = c.Size.W / c.Size.H
	}
	out := c.Size
	if c.WidthPercent > 0 {
		out.W = container.W / 100 * c.WidthPercent
		if c.HeightPercent <= 0 {
			out.H = out.W / ratio
		}
	}
	if c.HeightPercent > 0 {
		out.H = container.H / 100 * c.HeightPercent
		if c.WidthPercent <= 0 {
			out.W = out.H * ratio
		}
	}
	return out
}

// MoveLayer is the pan/zoom surface. Its size is unscaled.
type MoveLayer struct {
	Size    geom.Size
	Padding geom.Point
}

// RotateLayer holds the image at natural size. Offset is the top-left of
// the unrotated frame relative to the padded origin of the move layer and
// Pivot is expressed in the unrotated frame.
type RotateLayer struct {
	Natural   geom.Size
	Offset    geom.Point
	Pivot     geom.Point
	Angle     float64
	Footprint geom.Size
}

// Placement is the rotate-to-move transform for the given pivot, offset
// and angle.
func (r RotateLayer) Placement(padding geom.Point) geom.Transform {
	l := geom.Layer{Offset: r.Offset.Add(padding), Pivot: r.Pivot, Angle: r.Angle}
	return l.Local()
}

// Model is the single owner of layer geometry. It is not safe for
// concurrent use.
type Model struct {
	Container geom.Size
	Frame     Frame
	Clip      geom.Size
	Move      MoveLayer
	Rotate    RotateLayer
	MaxZoom   float64
	Scroll    *panzoom.Scroller
}

// New returns an empty model. The clip size is resolved on the first
// Resize call.
func New(frame Frame, maxZoom float64) *Model {
	if maxZoom <= 0 {
		maxZoom = 1
	}
	return &Model{
		Frame:   frame,
		MaxZoom: maxZoom,
		Scroll:  panzoom.New(),
	}
}

// FitScale is the smallest scale at which content of size cw x ch fully
// covers a tw x th target. Zero sizes give 1.
func FitScale(tw, th, cw, ch float64) float64 {
	if cw <= 0 || ch <= 0 || tw <= 0 || th <= 0 {
		return 1
	}
	return math.Max(tw/cw, th/ch)
}

// ClipOrigin is the top-left of the clip viewport in container space.
func (m *Model) ClipOrigin() geom.Point {
	return geom.Pt((m.Container.W-m.Clip.W)/2, (m.Container.H-m.Clip.H)/2)
}

// ClipRect is the clip viewport in container space.
func (m *Model) ClipRect() geom.Rect {
	o := m.ClipOrigin()
	return geom.RectXYWH(o.X, o.Y, m.Clip.W, m.Clip.H)
}

// RecomputeScaleBounds derives the zoom limits from the clip size and the
// rotate layer footprint at the current angle.
func (m *Model) RecomputeScaleBounds() {
	fp := m.Rotate.Footprint
	if fp.Empty() || m.Clip.Empty() {
		m.Scroll.SetBounds(panzoom.Unit)
		return
	}
	m.Scroll.SetBounds(panzoom.Bounds{
		ZoomMin:   math.Min(1, FitScale(m.Clip.W, m.Clip.H, fp.W, fp.H)),
		ZoomMax:   m.MaxZoom,
		StartZoom: math.Min(m.MaxZoom, FitScale(m.Container.W, m.Container.H, fp.W, fp.H)),
	})
}

// ResizeMoveLayer pads the move layer so the clip never runs past the
// image and keeps the visible position stable when the padding changes.
func (m *Model) ResizeMoveLayer() {
	s := m.Scroll.Bounds().Clamp(m.Scroll.Scale())
	fp := m.Rotate.Footprint
	var pad geom.Point
	if s > 0 {
		pad.X = math.Max(0, m.Clip.W/s-fp.W)
		pad.Y = math.Max(0, m.Clip.H/s-fp.H)
	}
	old := m.Move.Padding
	if pad != old {
		m.Scroll.ScrollBy((old.X-pad.X)*s, (old.Y-pad.Y)*s)
		m.Move.Padding = pad
	}
	m.Move.Size = geom.Size{W: fp.W + 2*pad.X, H: fp.H + 2*pad.Y}
	m.Scroll.SetViewport(m.Clip)
	m.Scroll.SetContent(m.Move.Size)
}

// Refresh brings the scale back into bounds and clamps the pan position.
func (m *Model) Refresh(d time.Duration) {
	b := m.Scroll.Bounds()
	if s := m.Scroll.Scale(); b.Clamp(s) != s {
		m.Scroll.ZoomTo(b.Clamp(s), d)
	}
	m.Scroll.Refresh(d)
}

// Relayout is the zoom-end handler.
func (m *Model) Relayout() {
	m.RecomputeScaleBounds()
	m.ResizeMoveLayer()
	m.Refresh(0)
}

// Resize updates the container and the requested clip size. Non-positive
// width or height keep the previous value. A clip size change keeps the
// visual center anchored.
func (m *Model) Resize(container geom.Size, width, height float64) {
	m.Container = container
	if width > 0 {
		m.Frame.Size.W = width
	}
	if height > 0 {
		m.Frame.Size.H = height
	}
	old := m.Clip
	m.Clip = m.Frame.Resolve(container)
	m.Scroll.SetViewport(m.Clip)
	if m.Clip == old {
		return
	}
	m.Relayout()
	s := m.Scroll.Scale()
	m.Scroll.ScrollBy((m.Clip.W-old.W)*0.5*s, (m.Clip.H-old.H)*0.5*s)
}

// SetImage installs a natural image size with no rotation.
func (m *Model) SetImage(natural geom.Size) {
	m.Rotate = RotateLayer{Natural: natural, Footprint: natural}
}

// ClearImage zeroes the rotate layer.
func (m *Model) ClearImage() {
	m.Rotate = RotateLayer{}
}

// Reset puts the model in its post-load state: start zoom, no rotation and
// the move layer centered in the clip.
func (m *Model) Reset() {
	m.RecomputeScaleBounds()
	s := m.Scroll.Bounds().StartZoom
	m.Scroll.SetScale(s)
	m.ResizeMoveLayer()
	m.Rotate.Offset = geom.Point{}
	m.Rotate.Pivot = geom.Point{}
	m.Rotate.Angle = 0
	m.Scroll.ScrollTo((m.Clip.W-m.Move.Size.W*s)/2, (m.Clip.H-m.Move.Size.H*s)/2)
	m.Refresh(0)
}

// Stack is a snapshot of the three layers as geom.Layers linked to each
// other, suitable for MapPoint.
type Stack struct {
	Clip   geom.Layer
	Move   geom.Layer
	Rotate geom.Layer
}

// Stack snapshots the current layer transforms.
func (m *Model) Stack() *Stack {
	st := &Stack{}
	st.Clip = geom.Layer{Offset: m.ClipOrigin()}
	st.Move = geom.Layer{Parent: &st.Clip, Offset: m.Scroll.Position(), Scale: m.Scroll.Scale()}
	st.Rotate = geom.Layer{
		Parent: &st.Move,
		Offset: m.Rotate.Offset.Add(m.Move.Padding),
		Pivot:  m.Rotate.Pivot,
		Angle:  m.Rotate.Angle,
	}
	return st
}
