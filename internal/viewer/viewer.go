// Package viewer hosts a photoclip widget in a shiny window.
package viewer

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/photoclip"
)

const (
	frameInterval = 16 * time.Millisecond
	messageTime   = 3 * time.Second
)

// Action runs on a key press and returns a status message.
type Action func() (string, error)

// funcEvent carries a Post callback through the window event queue.
type funcEvent struct{ fn func() }

// tickEvent requests the next settle animation frame.
type tickEvent struct{}

// Viewer is a photoclip.Host, task.Dispatcher and task.Scheduler backed by
// one shiny window.
type Viewer struct {
	title  string
	width  int
	height int
	save   Action
	copy   Action

	onClose   func()
	closeOnce sync.Once

	mu      sync.Mutex
	win     screen.Window
	pending []func()
	layout  photoclip.Layout
	widget  *photoclip.Widget

	message      string
	messageUntil time.Time
}

// Option modifies a Viewer during creation.
type Option func(*Viewer)

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(v *Viewer) { v.title = title } }

// WithWindowSize sets the initial window size in pixels.
func WithWindowSize(w, h int) Option { return func(v *Viewer) { v.width, v.height = w, h } }

// WithSaveAction binds Enter.
func WithSaveAction(fn Action) Option { return func(v *Viewer) { v.save = fn } }

// WithCopyAction binds the c key.
func WithCopyAction(fn Action) Option { return func(v *Viewer) { v.copy = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(v *Viewer) { v.onClose = fn } }

// New creates a Viewer. Attach a widget before Run.
func New(opts ...Option) *Viewer {
	v := &Viewer{title: "photoclip", width: 800, height: 600}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ContainerSize is the widget area of the initial window.
func (v *Viewer) ContainerSize() (float64, float64) {
	return float64(v.width), float64(v.height - statusHeight)
}

// Attach sets the widget driven by the window.
func (v *Viewer) Attach(w *photoclip.Widget) {
	v.mu.Lock()
	v.widget = w
	v.mu.Unlock()
}

// ApplyLayout implements photoclip.Host.
func (v *Viewer) ApplyLayout(l photoclip.Layout) {
	v.mu.Lock()
	v.layout = l
	win := v.win
	v.mu.Unlock()
	if win != nil {
		win.Send(paint.Event{})
	}
}

// Post implements task.Dispatcher. Funcs posted before the window opens
// run once it does.
func (v *Viewer) Post(fn func()) {
	v.mu.Lock()
	win := v.win
	if win == nil {
		v.pending = append(v.pending, fn)
	}
	v.mu.Unlock()
	if win != nil {
		win.Send(funcEvent{fn})
	}
}

// AfterFunc implements task.Scheduler.
func (v *Viewer) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { v.Post(fn) })
	return t.Stop
}

func (v *Viewer) snapshot() photoclip.Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

func (v *Viewer) flash(msg string) {
	v.message = msg
	v.messageUntil = time.Now().Add(messageTime)
}

func (v *Viewer) status(l photoclip.Layout, now time.Time) string {
	if v.message != "" && now.Before(v.messageUntil) {
		return v.message
	}
	if l.Image == nil {
		return fmt.Sprintf("%s  [q] quit", l.State)
	}
	return fmt.Sprintf("zoom %.2f  angle %.0f  [enter] save  [c] copy  [r/l] rotate  [q] quit", l.Scale, l.Angle)
}

func (v *Viewer) run(name string, fn Action) {
	if fn == nil {
		return
	}
	msg, err := fn()
	if err != nil {
		log.Printf("%s: %v", name, err)
		msg = fmt.Sprintf("%s failed: %v", name, err)
	}
	if msg != "" {
		v.flash(msg)
	}
}

// sendTick posts a tickEvent unless the window has closed.
func (v *Viewer) sendTick() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.win != nil {
		v.win.Send(tickEvent{})
	}
}

func (v *Viewer) notifyClose() {
	v.closeOnce.Do(func() {
		v.mu.Lock()
		v.win = nil
		v.mu.Unlock()
		if v.onClose != nil {
			v.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (v *Viewer) Run() { driver.Main(v.Main) }

// Main runs the window on s until it is closed.
func (v *Viewer) Main(s screen.Screen) {
	if v.widget == nil {
		log.Printf("viewer: no widget attached")
		return
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: v.width, Height: v.height, Title: v.title})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer v.notifyClose()

	v.mu.Lock()
	v.win = w
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()
	for _, fn := range pending {
		w.Send(funcEvent{fn})
	}

	ctl := newController(v.widget)
	width, height := v.width, v.height
	ticking := false
	var tick *time.Timer
	defer func() {
		if tick != nil {
			tick.Stop()
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case funcEvent:
			e.fn()
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			v.widget.ResizeContainer(float64(width), float64(height-statusHeight))
			w.Send(paint.Event{})
		case paint.Event:
			now := time.Now()
			l := v.snapshot()
			drawFrame(s, w, width, height, l, now, v.status(l, now))
			if l.Settle != nil && !l.Settle.Done(now) && !ticking {
				ticking = true
				tick = time.AfterFunc(frameInterval, v.sendTick)
			}
		case tickEvent:
			ticking = false
			w.Send(paint.Event{})
		case mouse.Event:
			if ctl.mouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			switch ctl.key(e) {
			case actQuit:
				return
			case actSave:
				v.run("save", v.save)
				w.Send(paint.Event{})
			case actCopy:
				v.run("copy", v.copy)
				w.Send(paint.Event{})
			case actRepaint:
				w.Send(paint.Event{})
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func drawFrame(s screen.Screen, w screen.Window, width, height int, l photoclip.Layout, now time.Time, status string) {
	if width <= 0 || height <= statusHeight {
		return
	}
	b, err := s.NewBuffer(image.Point{width, height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	Render(b.RGBA(), l, now, status)
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
