package viewer

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/geom"
	"github.com/example/photoclip/internal/pipeline"
)

func loadedWidget(t *testing.T, opts ...photoclip.Option) (*photoclip.Widget, *Viewer) {
	t.Helper()
	v := New()
	base := []photoclip.Option{
		photoclip.WithContainer(40, 40),
		photoclip.WithSize(20, 20),
		photoclip.WithMaxZoom(4),
		photoclip.WithHost(v),
	}
	w := photoclip.New(append(base, opts...)...)
	v.Attach(w)
	img := imaging.New(20, 20, color.NRGBA{R: 255, A: 255})
	_, err := w.Load(context.Background(), pipeline.FromImage("red", img)).Result()
	require.NoError(t, err)
	return w, v
}

func TestRenderMasksOutsideClip(t *testing.T) {
	_, v := loadedWidget(t)
	l := v.snapshot()
	require.NotNil(t, l.Image)

	dst := image.NewRGBA(image.Rect(0, 0, 40, 40+statusHeight))
	Render(dst, l, time.Now(), "ready")

	inside := dst.RGBAAt(20, 20)
	assert.Greater(t, int(inside.R), 200)
	assert.Less(t, int(inside.G), 60)

	// The image is zoomed to cover the container, so the mask darkens it.
	outside := dst.RGBAAt(2, 2)
	assert.Less(t, int(outside.R), int(inside.R)-60)

	// 2px dashed border starts right outside the clip at (9, 9).
	border := dst.RGBAAt(9, 10)
	assert.Equal(t, uint8(0xdd), border.G)

	bar := dst.RGBAAt(39, 40+statusHeight-1)
	assert.Equal(t, statusBack, bar)
}

func TestPostQueuesUntilWindow(t *testing.T) {
	v := New()
	ran := false
	v.Post(func() { ran = true })
	assert.False(t, ran)
	require.Len(t, v.pending, 1)
	v.pending[0]()
	assert.True(t, ran)
}

type sendWindow struct {
	screen.Window
	sent []interface{}
}

func (w *sendWindow) Send(e interface{}) { w.sent = append(w.sent, e) }

func TestTickAfterCloseIsDropped(t *testing.T) {
	v := New()
	win := &sendWindow{}
	v.win = win
	v.sendTick()
	require.Len(t, win.sent, 1)
	assert.IsType(t, tickEvent{}, win.sent[0])

	v.notifyClose()
	v.sendTick()
	assert.Len(t, win.sent, 1)
}

func TestControllerKeys(t *testing.T) {
	w, _ := loadedWidget(t, photoclip.WithBounceTime(0))
	c := newController(w)

	assert.Equal(t, actRepaint, c.key(key.Event{Rune: 'r', Direction: key.DirPress}))
	assert.Equal(t, 90.0, w.Rotation())
	assert.Equal(t, actRepaint, c.key(key.Event{Rune: 'l', Direction: key.DirPress}))
	assert.Equal(t, 0.0, w.Rotation())

	before := w.Scale()
	c.key(key.Event{Rune: '+', Direction: key.DirPress})
	assert.InDelta(t, before*keyZoomStep, w.Scale(), 1e-9)

	assert.Equal(t, actSave, c.key(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress}))
	assert.Equal(t, actCopy, c.key(key.Event{Rune: 'c', Direction: key.DirPress}))
	assert.Equal(t, actQuit, c.key(key.Event{Code: key.CodeEscape, Direction: key.DirPress}))
	assert.Equal(t, actNone, c.key(key.Event{Rune: 'r', Direction: key.DirRelease}))
}

func TestControllerDoubleClickRotates(t *testing.T) {
	w, _ := loadedWidget(t, photoclip.WithBounceTime(0))
	c := newController(w)
	now := time.Unix(100, 0)
	c.now = func() time.Time { return now }

	press := mouse.Event{X: 22, Y: 18, Button: mouse.ButtonLeft, Direction: mouse.DirPress}
	release := press
	release.Direction = mouse.DirRelease

	c.mouse(press)
	c.mouse(release)
	now = now.Add(100 * time.Millisecond)
	assert.True(t, c.mouse(press))
	assert.Equal(t, 90.0, w.Rotation())
}

func TestControllerRightDragRotates(t *testing.T) {
	w, _ := loadedWidget(t, photoclip.WithBounceTime(0))
	c := newController(w)

	center := w.Layout().Clip.Center()
	start := mouse.Event{X: float32(center.X + 10), Y: float32(center.Y), Button: mouse.ButtonRight, Direction: mouse.DirPress}
	c.mouse(start)
	require.True(t, c.rotating)

	// A quarter turn clockwise in screen space.
	move := mouse.Event{X: float32(center.X), Y: float32(center.Y + 10)}
	assert.True(t, c.mouse(move))
	assert.InDelta(t, 90, c.turned, 1e-4)

	end := move
	end.Button, end.Direction = mouse.ButtonRight, mouse.DirRelease
	assert.True(t, c.mouse(end))
	assert.InDelta(t, 90, w.Rotation(), 1e-4)
}

func TestControllerPanSnapsBack(t *testing.T) {
	w, _ := loadedWidget(t, photoclip.WithBounceTime(0))
	c := newController(w)
	c.mouse(mouse.Event{X: 5, Y: 5, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	assert.True(t, c.mouse(mouse.Event{X: 35, Y: 5}))
	assert.True(t, c.mouse(mouse.Event{X: 35, Y: 5, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}))

	lo, hi := w.Model().Scroll.Range()
	pos := w.Model().Scroll.Position()
	assert.True(t, pos.X >= lo.X && pos.X <= hi.X)
}

func TestControllerWheelZoomsAtPointer(t *testing.T) {
	w, _ := loadedWidget(t)
	c := newController(w)
	before := w.Scale()
	assert.True(t, c.mouse(mouse.Event{X: 20, Y: 20, Button: mouse.ButtonWheelUp, Direction: mouse.DirStep}))
	assert.InDelta(t, before*wheelStep, w.Scale(), 1e-9)
}

func TestClipRect(t *testing.T) {
	r := clipRect(geom.Rect{Min: geom.Pt(9.6, 10.2), Max: geom.Pt(30.4, 29.5)})
	assert.Equal(t, image.Rect(10, 10, 30, 30), r)
}
