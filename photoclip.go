// Package photoclip is a crop widget core: an image is panned, zoomed and
// rotated under a fixed clip frame and the framed region is rendered to an
// encoded bitmap.
//
// A Widget is driven from one goroutine. Loads run in the background and
// report back through the Dispatcher; animated rotation settles complete
// through the Scheduler. A task.Loop provides both.
package photoclip

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"time"

	"github.com/example/photoclip/internal/compositor"
	"github.com/example/photoclip/internal/geom"
	"github.com/example/photoclip/internal/layout"
	"github.com/example/photoclip/internal/pipeline"
	"github.com/example/photoclip/internal/rotation"
	"github.com/example/photoclip/internal/task"
)

// ImageState is the life cycle of the loaded image.
type ImageState int

const (
	Unloaded ImageState = iota
	Loading
	Loaded
	Failed
)

func (s ImageState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	}
	return "unknown"
}

// Result is an encoded crop.
type Result struct {
	Data  []byte
	MIME  string
	Image *image.RGBA
}

// DataURL returns the result as a data: URL.
func (r *Result) DataURL() string {
	return "data:" + r.MIME + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// Layout is the state a host draws after every change.
type Layout struct {
	Container geom.Size
	Clip      geom.Rect
	Scale     float64
	Angle     float64
	Image     image.Image
	State     ImageState
	Style     Style
	Layers    *layout.Stack

	// Settle is non-nil while a rotation animates.
	Settle *rotation.Settle
}

// ImageToContainer maps image pixels to container pixels at now,
// following a running settle.
func (l Layout) ImageToContainer(now time.Time) geom.Transform {
	if l.Layers == nil {
		return geom.Identity()
	}
	if l.Settle != nil && !l.Settle.Done(now) {
		rot := l.Settle.Layer(&l.Layers.Move, now)
		return rot.ToContainer()
	}
	return l.Layers.Rotate.ToContainer()
}

// Host is the drawing surface.
type Host interface {
	ApplyLayout(Layout)
}

// Widget is the crop widget. It is not safe for concurrent use.
type Widget struct {
	opts  options
	model *layout.Model
	rot   *rotation.Machine
	loads task.Group

	img   *pipeline.Image
	state ImageState

	removeZoom  func()
	destroyed   bool
	unsupported bool
}

// New builds a widget. Invalid options are reported through
// OnConfigError and replaced by their defaults.
func New(opts ...Option) *Widget {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	w := &Widget{opts: o}
	w.model = layout.New(layout.Frame{
		Size:          o.size,
		WidthPercent:  o.adaptiveW,
		HeightPercent: o.adaptiveH,
	}, o.maxZoom)
	w.rot = rotation.New(w.model, o.policy, o.sched, o.bounce)
	if o.now != nil {
		w.rot.Now = o.now
	}
	w.rot.OnSettled = w.apply
	w.removeZoom = w.model.Scroll.OnZoomEnd(w.model.Relayout)

	for _, e := range o.errs {
		Logger().Warn("photoclip: option rejected", "option", e.Option, "value", e.Value, "err", e.Err)
		if o.onConfigError != nil {
			o.onConfigError(e)
		}
	}
	if o.sched == nil {
		w.reportUnsupported()
	}
	w.model.Resize(o.container, 0, 0)
	w.apply()
	return w
}

func (w *Widget) reportUnsupported() {
	if w.unsupported {
		return
	}
	w.unsupported = true
	Logger().Info("photoclip: no scheduler, rotations settle immediately")
	if w.opts.onUnsupported != nil {
		w.opts.onUnsupported(w.opts.messages.NoSupport, ErrUnsupportedEnvironment)
	}
}

func (w *Widget) apply() {
	if w.opts.host != nil && !w.destroyed {
		w.opts.host.ApplyLayout(w.Layout())
	}
}

// Layout snapshots the current geometry.
func (w *Widget) Layout() Layout {
	l := Layout{
		Container: w.model.Container,
		Clip:      w.model.ClipRect(),
		Scale:     w.model.Scroll.Scale(),
		Angle:     w.model.Rotate.Angle,
		State:     w.state,
		Style:     w.opts.style,
		Layers:    w.model.Stack(),
		Settle:    w.rot.Settle(),
	}
	if w.img != nil {
		l.Image = w.img.Image
	}
	return l
}

// Model exposes the geometry for hosts and tests. Mutating it bypasses the
// widget.
func (w *Widget) Model() *layout.Model { return w.model }

func (w *Widget) State() ImageState        { return w.state }
func (w *Widget) Image() *pipeline.Image   { return w.img }
func (w *Widget) Bounce() time.Duration    { return w.opts.bounce }
func (w *Widget) Style() Style             { return w.opts.style }
func (w *Widget) Messages() Messages       { return w.opts.messages }
func (w *Widget) Rotating() rotation.State { return w.rot.State() }

// Size changes the requested clip size. Non-positive values keep the
// previous one; with adaptive sizing only the ratio changes.
func (w *Widget) Size(width, height float64) {
	if w.destroyed {
		return
	}
	w.model.Resize(w.model.Container, width, height)
	w.apply()
}

// ResizeContainer reports a new container size.
func (w *Widget) ResizeContainer(width, height float64) {
	if w.destroyed {
		return
	}
	w.model.Resize(geom.Size{W: width, H: height}, 0, 0)
	w.apply()
}

// Load starts loading src and supersedes any load in flight. Sources that
// fail the type check are reported through OnLoadError and leave the
// current image alone.
func (w *Widget) Load(ctx context.Context, src pipeline.Source) *task.Future[*pipeline.Image] {
	if w.destroyed {
		return task.Failed[*pipeline.Image](ErrDestroyed)
	}
	if err := pipeline.Check(src); err != nil {
		w.loadFailed(err)
		return task.Failed[*pipeline.Image](err)
	}
	tok := w.loads.Next()
	w.state = Loading
	if w.opts.onLoadStart != nil {
		w.opts.onLoadStart(src)
	}
	Logger().Debug("photoclip: load", "source", src.String())

	fut := task.NewFuture[*pipeline.Image]()
	popts := w.opts.pipeline
	run := func() {
		img, err := pipeline.Process(ctx, src, popts)
		done := func() { w.finishLoad(tok, fut, img, err) }
		if w.opts.dispatch == nil {
			done()
			return
		}
		w.opts.dispatch.Post(done)
	}
	if w.opts.dispatch == nil {
		run()
	} else {
		go run()
	}
	return fut
}

func (w *Widget) finishLoad(tok task.Token, fut *task.Future[*pipeline.Image], img *pipeline.Image, err error) {
	if !tok.Valid() {
		Logger().Debug("photoclip: dropping superseded load")
		fut.Resolve(nil, task.ErrCanceled)
		return
	}
	w.rot.Cancel()
	w.img = nil
	w.model.ClearImage()
	if err != nil {
		w.state = Failed
		w.model.Reset()
		w.apply()
		w.loadFailed(err)
		fut.Resolve(nil, err)
		return
	}
	w.img = img
	w.state = Loaded
	w.model.SetImage(geom.Size{W: float64(img.Width), H: float64(img.Height)})
	if w.opts.onLoadComplete != nil {
		w.opts.onLoadComplete(img)
	}
	w.model.Reset()
	w.apply()
	fut.Resolve(img, nil)
}

func (w *Widget) loadFailed(err error) {
	msg := w.opts.messages.loadMessage(err)
	Logger().Warn("photoclip: load failed", "err", err)
	if w.opts.onLoadError != nil {
		w.opts.onLoadError(msg, err)
	}
}

// Clear drops the image and any pending load or settle.
func (w *Widget) Clear() {
	if w.destroyed {
		return
	}
	w.loads.Cancel()
	w.rot.Cancel()
	w.img = nil
	w.state = Unloaded
	w.model.ClearImage()
	w.model.Reset()
	w.apply()
}

// Rotation returns the committed angle in degrees.
func (w *Widget) Rotation() float64 { return w.model.Rotate.Angle }

// Rotate turns to angle about the clip center. A positive duration
// animates when a scheduler is present. It returns ErrBusy while a gesture
// is active or a settle is running.
func (w *Widget) Rotate(angle float64, d time.Duration) error {
	return w.rotate(func() error { return w.rot.RotateTo(angle, d, nil) })
}

// RotateBy turns by delta about center, a container point, or about the
// clip center when center is nil. It is busy when Rotate is.
func (w *Widget) RotateBy(delta float64, d time.Duration, center *geom.Point) error {
	return w.rotate(func() error { return w.rot.RotateBy(delta, d, center) })
}

func (w *Widget) rotate(fn func() error) error {
	if w.destroyed {
		return ErrDestroyed
	}
	if err := fn(); err != nil {
		return err
	}
	w.apply()
	return nil
}

// Scale returns the current zoom.
func (w *Widget) Scale() float64 { return w.model.Scroll.Scale() }

// Zoom zooms about the clip center, clamped to the zoom bounds.
func (w *Widget) Zoom(scale float64, d time.Duration) {
	if w.destroyed {
		return
	}
	w.model.Scroll.ZoomTo(scale, d)
	w.apply()
}

// ZoomAt zooms keeping the container point at fixed.
func (w *Widget) ZoomAt(scale float64, at geom.Point, d time.Duration) {
	if w.destroyed {
		return
	}
	p := at.Sub(w.model.ClipOrigin())
	w.model.Scroll.ZoomAt(scale, p.X, p.Y, d)
	w.apply()
}

// Pan drags the image by (dx, dy) container pixels. Call EndPan when the
// drag is released.
func (w *Widget) Pan(dx, dy float64) {
	if w.destroyed {
		return
	}
	w.model.Scroll.ScrollBy(dx, dy)
	w.apply()
}

// EndPan snaps the image back into range.
func (w *Widget) EndPan() {
	if w.destroyed {
		return
	}
	w.model.Refresh(w.opts.bounce)
	w.apply()
}

// RotateStart begins a rotate gesture at a container point with the
// recognizer's cumulative rotation.
func (w *Widget) RotateStart(center geom.Point, rotation float64) error {
	if w.destroyed {
		return ErrDestroyed
	}
	if err := w.rot.GestureStart(center, rotation); err != nil {
		return err
	}
	w.apply()
	return nil
}

// RotateMove feeds the cumulative gesture rotation.
func (w *Widget) RotateMove(rotation float64) {
	if w.destroyed {
		return
	}
	w.rot.GestureMove(rotation)
	w.apply()
}

// RotateEnd finishes the gesture.
func (w *Widget) RotateEnd(center geom.Point, rotation float64) error {
	if w.destroyed {
		return ErrDestroyed
	}
	w.rot.GestureMove(rotation)
	err := w.rot.GestureEnd(center)
	w.apply()
	return err
}

// RotateCancel ends the gesture the same way RotateEnd does.
func (w *Widget) RotateCancel(center geom.Point, rotation float64) error {
	return w.RotateEnd(center, rotation)
}

// Crop renders the framed region. Failures go to OnFail and are returned.
func (w *Widget) Crop() (*Result, error) {
	if w.destroyed {
		return nil, ErrDestroyed
	}
	if w.state != Loaded || w.img == nil {
		w.fail(w.opts.messages.NoImg, ErrNoImageLoaded)
		return nil, ErrNoImageLoaded
	}
	o := w.opts
	out, err := compositor.Render(compositor.Request{
		Image:      w.img.Image,
		Tainted:    w.img.Tainted,
		Geometry:   compositor.GeometryOf(w.model),
		Output:     o.output,
		Format:     o.format,
		Quality:    o.quality,
		Background: o.style.JPGFillColor,
	})
	if err != nil {
		var cerr *CompositingError
		if !errors.As(err, &cerr) {
			err = &CompositingError{Reason: "render", Err: err}
		}
		w.fail(o.messages.ClipError, err)
		return nil, err
	}
	res := &Result{Data: out.Data, MIME: out.MIME, Image: out.Image}
	if o.onDone != nil {
		o.onDone(res)
	}
	return res, nil
}

func (w *Widget) fail(msg string, err error) {
	Logger().Warn("photoclip: crop failed", "err", err)
	if w.opts.onFail != nil {
		w.opts.onFail(msg, err)
	}
}

// Destroy releases the image, cancels pending work and detaches the host.
// Later calls are no-ops or return ErrDestroyed.
func (w *Widget) Destroy() {
	if w.destroyed {
		return
	}
	w.loads.Cancel()
	w.rot.Cancel()
	if w.removeZoom != nil {
		w.removeZoom()
	}
	w.img = nil
	w.state = Unloaded
	w.destroyed = true
	w.opts.host = nil
}
