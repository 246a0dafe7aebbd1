// Package compositor renders the region under the clip viewport into an
// encoded bitmap.
package compositor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/example/photoclip/internal/geom"
	"github.com/example/photoclip/internal/layout"
)

var (
	// ErrNoImage is returned when there is nothing to crop.
	ErrNoImage = errors.New("no image loaded")
	// ErrTainted is returned for sources that may not be read back.
	ErrTainted = errors.New("image is tainted by cross-origin data")
)

// Error is a failure to produce the output bitmap.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "compositing failed: " + e.Reason
	}
	return fmt.Sprintf("compositing failed: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Format is the output encoding.
type Format int

const (
	JPEG Format = iota
	PNG
)

// ParseFormat maps "jpg"/"jpeg" and their MIME type to JPEG; anything else
// is PNG.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpg", "jpeg", "image/jpeg", "image/jpg":
		return JPEG
	}
	return PNG
}

func (f Format) String() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}

// MIME is the media type of the format.
func (f Format) MIME() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Opaque reports whether the format has no alpha channel.
func (f Format) Opaque() bool { return f == JPEG }

// Geometry is the part of the layout the compositor reads.
type Geometry struct {
	Clip  geom.Size
	Scale float64

	// ImageToClip maps image pixels into clip viewport pixels.
	ImageToClip geom.Transform
}

// GeometryOf reads the settled geometry of m.
func GeometryOf(m *layout.Model) Geometry {
	st := m.Stack()
	return Geometry{
		Clip:        m.Clip,
		Scale:       m.Scroll.Scale(),
		ImageToClip: st.Rotate.Local().Then(st.Move.Local()),
	}
}

// Request describes one crop.
type Request struct {
	Image    image.Image
	Tainted  bool
	Geometry Geometry

	// Output is the requested output size. A zero axis follows the clip
	// ratio; zero on both axes means clip size divided by scale.
	Output     geom.Size
	Format     Format
	Quality    float64
	Background color.Color

	// Interpolator defaults to draw.CatmullRom.
	Interpolator draw.Interpolator
}

// Plan returns the output pixel size and the image-to-output transform.
func Plan(g Geometry, output geom.Size) (w, h int, t geom.Transform) {
	clip := g.Clip
	if clip.Empty() {
		return 1, 1, geom.Identity()
	}
	ow, oh := output.W, output.H
	ratio := clip.W / clip.H
	if ow > 0 && oh <= 0 {
		oh = ow / ratio
	}
	if oh > 0 && ow <= 0 {
		ow = oh * ratio
	}
	var kx, ky float64
	if ow > 0 && oh > 0 {
		kx, ky = ow/clip.W, oh/clip.H
	} else {
		s := g.Scale
		if s <= 0 {
			s = 1
		}
		ow, oh = clip.W/s, clip.H/s
		kx, ky = 1/s, 1/s
	}
	w = max(1, int(ow))
	h = max(1, int(oh))
	return w, h, g.ImageToClip.Then(geom.Scaling(kx, ky))
}

// Draw rasterizes the request without encoding it.
func Draw(req Request) (*image.RGBA, error) {
	if req.Image == nil {
		return nil, ErrNoImage
	}
	if req.Tainted {
		return nil, &Error{Reason: "source may not be read back", Err: ErrTainted}
	}
	w, h, t := Plan(req.Geometry, req.Output)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if req.Format.Opaque() {
		bg := req.Background
		if bg == nil {
			bg = color.White
		}
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	interp := req.Interpolator
	if interp == nil {
		interp = draw.CatmullRom
	}
	interp.Transform(dst, t.Aff3(), req.Image, req.Image.Bounds(), draw.Over, nil)
	return dst, nil
}

// DefaultQuality is used when no usable quality is given.
const DefaultQuality = 0.8

// JPEGQuality maps a 0..1 quality onto the 1..100 JPEG scale.
func JPEGQuality(q float64) int {
	if q <= 0 || q > 1 || math.IsNaN(q) {
		q = DefaultQuality
	}
	return min(100, max(1, int(math.Round(q*100))))
}

// Encode serializes img in format f.
func Encode(img image.Image, f Format, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if f == JPEG {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality(quality)))
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, &Error{Reason: "encode " + f.String(), Err: err}
	}
	return buf.Bytes(), nil
}

// Output is a rendered crop.
type Output struct {
	Data  []byte
	MIME  string
	Image *image.RGBA
}

// Render draws and encodes the request.
func Render(req Request) (*Output, error) {
	img, err := Draw(req)
	if err != nil {
		return nil, err
	}
	data, err := Encode(img, req.Format, req.Quality)
	if err != nil {
		return nil, err
	}
	return &Output{Data: data, MIME: req.Format.MIME(), Image: img}, nil
}
