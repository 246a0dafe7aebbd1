package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/example/photoclip/internal/geom"
	"github.com/example/photoclip/internal/layout"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// halves is w x h with a red left half and a blue right half.
func halves(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := red
			if x >= w/2 {
				c = blue
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestPlanSizes(t *testing.T) {
	g := Geometry{Clip: geom.Size{W: 300, H: 150}, Scale: 1, ImageToClip: geom.Identity()}
	w, h, _ := Plan(g, geom.Size{})
	assert.Equal(t, [2]int{300, 150}, [2]int{w, h})

	w, h, tr := Plan(g, geom.Size{W: 600})
	assert.Equal(t, [2]int{600, 300}, [2]int{w, h})
	p := tr.Apply(geom.Pt(300, 150))
	assert.InDelta(t, 600, p.X, 1e-9)
	assert.InDelta(t, 300, p.Y, 1e-9)

	w, h, _ = Plan(g, geom.Size{H: 50})
	assert.Equal(t, [2]int{100, 50}, [2]int{w, h})

	g.Scale = 0.5
	w, h, tr = Plan(g, geom.Size{})
	assert.Equal(t, [2]int{600, 300}, [2]int{w, h})
	p = tr.Apply(geom.Pt(10, 10))
	assert.InDelta(t, 20, p.X, 1e-9)

	w, h, _ = Plan(Geometry{}, geom.Size{})
	assert.Equal(t, [2]int{1, 1}, [2]int{w, h})
}

func TestDrawIdentity(t *testing.T) {
	src := halves(4, 2)
	out, err := Draw(Request{
		Image:        src,
		Geometry:     Geometry{Clip: geom.Size{W: 4, H: 2}, Scale: 1, ImageToClip: geom.Identity()},
		Format:       PNG,
		Interpolator: draw.NearestNeighbor,
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(0, 0))
	assert.Equal(t, blue, out.RGBAAt(3, 1))
}

func TestDrawRotated(t *testing.T) {
	src := halves(4, 2)
	g := Geometry{
		Clip:        geom.Size{W: 2, H: 4},
		Scale:       1,
		ImageToClip: geom.RotationAbout(90, geom.Point{}).Then(geom.Translation(2, 0)),
	}
	out, err := Draw(Request{Image: src, Geometry: g, Format: PNG, Interpolator: draw.NearestNeighbor})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 4), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(1, 0))
	assert.Equal(t, red, out.RGBAAt(0, 1))
	assert.Equal(t, blue, out.RGBAAt(1, 3))
}

func TestBackgroundFill(t *testing.T) {
	src := halves(2, 2)
	g := Geometry{Clip: geom.Size{W: 4, H: 4}, Scale: 1, ImageToClip: geom.Identity()}
	fill := color.RGBA{R: 1, G: 2, B: 3, A: 255}

	out, err := Draw(Request{Image: src, Geometry: g, Format: JPEG, Background: fill, Interpolator: draw.NearestNeighbor})
	require.NoError(t, err)
	assert.Equal(t, fill, out.RGBAAt(3, 3))
	assert.Equal(t, red, out.RGBAAt(0, 0))

	out, err = Draw(Request{Image: src, Geometry: g, Format: PNG, Background: fill, Interpolator: draw.NearestNeighbor})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{}, out.RGBAAt(3, 3))
}

func TestErrors(t *testing.T) {
	_, err := Draw(Request{})
	assert.True(t, errors.Is(err, ErrNoImage))

	_, err = Render(Request{Image: halves(2, 2), Tainted: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTainted)
	var cerr *Error
	assert.True(t, errors.As(err, &cerr))
}

func TestRenderJPEG(t *testing.T) {
	g := Geometry{Clip: geom.Size{W: 8, H: 6}, Scale: 1, ImageToClip: geom.Identity()}
	out, err := Render(Request{Image: halves(8, 6), Geometry: g, Format: JPEG, Quality: 0.9})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIME)
	img, format, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}

func TestJPEGQuality(t *testing.T) {
	assert.Equal(t, 80, JPEGQuality(0.8))
	assert.Equal(t, 80, JPEGQuality(0))
	assert.Equal(t, 80, JPEGQuality(1.5))
	assert.Equal(t, 100, JPEGQuality(1))
	assert.Equal(t, 1, JPEGQuality(0.001))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, JPEG, ParseFormat("jpg"))
	assert.Equal(t, JPEG, ParseFormat("image/jpeg"))
	assert.Equal(t, PNG, ParseFormat("png"))
	assert.Equal(t, PNG, ParseFormat("webp"))
}

func TestGeometryOfModel(t *testing.T) {
	m := layout.New(layout.Frame{Size: geom.Size{W: 300, H: 300}}, 1)
	m.Resize(geom.Size{W: 800, H: 600}, 0, 0)
	m.SetImage(geom.Size{W: 600, H: 400})
	m.Reset()
	g := GeometryOf(m)
	p := g.ImageToClip.Apply(geom.Pt(150, 50))
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.Equal(t, 1.0, g.Scale)
}
