package viewer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/geom"
)

const statusHeight = 20

var (
	backdrop   = color.RGBA{48, 48, 48, 255}
	statusBack = color.RGBA{24, 24, 24, 255}
	statusText = color.RGBA{230, 230, 230, 255}
)

// clipRect rounds the clip viewport to pixels.
func clipRect(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.Min.X)), int(math.Round(r.Min.Y)),
		int(math.Round(r.Max.X)), int(math.Round(r.Max.Y)),
	)
}

// Render draws l into the top of dst as it looks at now and writes status
// into the bar below it.
func Render(dst *image.RGBA, l photoclip.Layout, now time.Time, status string) {
	b := dst.Bounds()
	area := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y-statusHeight)
	draw.Draw(dst, area, image.NewUniform(backdrop), image.Point{}, draw.Src)

	if l.Image != nil {
		m := l.ImageToContainer(now).Aff3()
		xdraw.ApproxBiLinear.Transform(subImage(dst, area), m, l.Image, l.Image.Bounds(), draw.Over, nil)
	}

	clip := clipRect(l.Clip)
	drawMask(dst, area, clip, l.Style.MaskColor)
	drawBorder(dst, clip, l.Style.MaskBorder)
	drawStatus(dst, image.Rect(b.Min.X, b.Max.Y-statusHeight, b.Max.X, b.Max.Y), status)
}

// subImage keeps container coordinates valid inside area.
func subImage(dst *image.RGBA, area image.Rectangle) *image.RGBA {
	if sub, ok := dst.SubImage(area).(*image.RGBA); ok {
		return sub
	}
	return dst
}

func drawMask(dst *image.RGBA, area, clip image.Rectangle, c color.RGBA) {
	if c.A == 0 {
		return
	}
	u := image.NewUniform(c)
	for _, r := range []image.Rectangle{
		image.Rect(area.Min.X, area.Min.Y, area.Max.X, clip.Min.Y),
		image.Rect(area.Min.X, clip.Max.Y, area.Max.X, area.Max.Y),
		image.Rect(area.Min.X, clip.Min.Y, clip.Min.X, clip.Max.Y),
		image.Rect(clip.Max.X, clip.Min.Y, area.Max.X, clip.Max.Y),
	} {
		r = r.Intersect(area)
		if !r.Empty() {
			draw.Draw(dst, r, u, image.Point{}, draw.Over)
		}
	}
}

// drawBorder outlines clip on its outside edge.
func drawBorder(dst *image.RGBA, clip image.Rectangle, b photoclip.Border) {
	if b.Width <= 0 || b.Style == "none" {
		return
	}
	w := b.Width
	outer := clip.Inset(-w)
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, clip.Min.Y),
		image.Rect(outer.Min.X, clip.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, clip.Min.Y, clip.Min.X, clip.Max.Y),
		image.Rect(clip.Max.X, clip.Min.Y, outer.Max.X, clip.Max.Y),
	}
	u := image.NewUniform(b.Color)
	dash := 0
	switch b.Style {
	case "dashed":
		dash = 3 * w
	case "dotted":
		dash = w
	}
	for i, e := range edges {
		if dash == 0 {
			draw.Draw(dst, e, u, image.Point{}, draw.Over)
			continue
		}
		horizontal := i < 2
		drawDashed(dst, e, dash, horizontal, u)
	}
}

// drawDashed fills every other dash length segment of r along its long
// axis.
func drawDashed(dst *image.RGBA, r image.Rectangle, dash int, horizontal bool, u *image.Uniform) {
	if horizontal {
		for x := r.Min.X; x < r.Max.X; x += 2 * dash {
			seg := image.Rect(x, r.Min.Y, min(x+dash, r.Max.X), r.Max.Y)
			draw.Draw(dst, seg, u, image.Point{}, draw.Over)
		}
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y += 2 * dash {
		seg := image.Rect(r.Min.X, y, r.Max.X, min(y+dash, r.Max.Y))
		draw.Draw(dst, seg, u, image.Point{}, draw.Over)
	}
}

func drawStatus(dst *image.RGBA, bar image.Rectangle, status string) {
	draw.Draw(dst, bar, image.NewUniform(statusBack), image.Point{}, draw.Src)
	if status == "" {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(statusText), Face: basicfont.Face7x13}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(bar.Min.X+6, bar.Min.Y+(bar.Dy()+ascent)/2-1)
	d.DrawString(status)
}
