package config

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/geom"
)

// Notify holds notification settings.
type Notify struct {
	Crop bool
	Save bool
	Copy bool
}

// Pipeline bounds loaded images.
type Pipeline struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
}

// Config holds the application configuration.
type Config struct {
	Size          geom.Size
	AdaptiveW     string
	AdaptiveH     string
	OutputSize    geom.Size
	OutputType    string
	OutputQuality float64
	MaxZoom       float64
	RotateFree    bool
	BounceTime    time.Duration
	Origin        string
	SaveDir       string

	Style    photoclip.Style
	Pipeline Pipeline
	Notify   Notify
	Messages photoclip.Messages
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Size:          geom.Size{W: 100, H: 100},
		OutputType:    "jpg",
		OutputQuality: 0.8,
		MaxZoom:       1,
		RotateFree:    true,
		BounceTime:    300 * time.Millisecond,
		Style:         photoclip.DefaultStyle(),
		Pipeline:      Pipeline{Quality: 0.7},
		Messages:      photoclip.DefaultMessages(),
	}
}

// Options converts the configuration into widget options.
func (c *Config) Options() []photoclip.Option {
	opts := []photoclip.Option{
		photoclip.WithSize(c.Size.W, c.Size.H),
		photoclip.WithOutputType(c.OutputType),
		photoclip.WithOutputQuality(c.OutputQuality),
		photoclip.WithMaxZoom(c.MaxZoom),
		photoclip.WithRotateFree(c.RotateFree),
		photoclip.WithBounceTime(c.BounceTime),
		photoclip.WithStyle(c.Style),
		photoclip.WithMessages(c.Messages),
		photoclip.WithCompression(c.Pipeline.MaxWidth, c.Pipeline.MaxHeight, c.Pipeline.Quality),
	}
	if c.AdaptiveW != "" || c.AdaptiveH != "" {
		opts = append(opts, photoclip.WithAdaptive(c.AdaptiveW, c.AdaptiveH))
	}
	if c.OutputSize.W > 0 || c.OutputSize.H > 0 {
		opts = append(opts, photoclip.WithOutputSize(c.OutputSize.W, c.OutputSize.H))
	}
	if c.Origin != "" {
		opts = append(opts, photoclip.WithOrigin(c.Origin))
	}
	return opts
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "size = %s\n", formatSize(c.Size))
	if c.AdaptiveW != "" || c.AdaptiveH != "" {
		fmt.Fprintf(&sb, "adaptive = %s,%s\n", c.AdaptiveW, c.AdaptiveH)
	}
	if c.OutputSize.W > 0 || c.OutputSize.H > 0 {
		fmt.Fprintf(&sb, "output_size = %s\n", formatSize(c.OutputSize))
	}
	fmt.Fprintf(&sb, "output_type = %s\n", c.OutputType)
	fmt.Fprintf(&sb, "output_quality = %g\n", c.OutputQuality)
	fmt.Fprintf(&sb, "max_zoom = %g\n", c.MaxZoom)
	fmt.Fprintf(&sb, "rotate_free = %v\n", c.RotateFree)
	fmt.Fprintf(&sb, "bounce_time = %s\n", c.BounceTime)
	if c.Origin != "" {
		fmt.Fprintf(&sb, "origin = %s\n", c.Origin)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[style]\n")
	fmt.Fprintf(&sb, "mask_color = %s\n", toHex(c.Style.MaskColor))
	fmt.Fprintf(&sb, "mask_border = %dpx %s %s\n", c.Style.MaskBorder.Width, c.Style.MaskBorder.Style, toHex(c.Style.MaskBorder.Color))
	fmt.Fprintf(&sb, "jpg_fill_color = %s\n", toHex(c.Style.JPGFillColor))
	sb.WriteString("\n")

	sb.WriteString("[pipeline]\n")
	fmt.Fprintf(&sb, "max_width = %d\n", c.Pipeline.MaxWidth)
	fmt.Fprintf(&sb, "max_height = %d\n", c.Pipeline.MaxHeight)
	fmt.Fprintf(&sb, "quality = %g\n", c.Pipeline.Quality)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "crop = %v\n", c.Notify.Crop)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Only messages that differ from the built in texts are written.
	def := photoclip.DefaultMessages()
	var msgs strings.Builder
	for _, m := range messageKeys(&c.Messages) {
		if *m.field != *m.def(&def) {
			fmt.Fprintf(&msgs, "%s = %q\n", m.key, *m.field)
		}
	}
	if msgs.Len() > 0 {
		sb.WriteString("[messages]\n")
		sb.WriteString(msgs.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatSize(s geom.Size) string {
	return fmt.Sprintf("%gx%g", s.W, s.H)
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

type messageKey struct {
	key   string
	field *string
	def   func(*photoclip.Messages) *string
}

func messageKeys(m *photoclip.Messages) []messageKey {
	return []messageKey{
		{"no_support", &m.NoSupport, func(d *photoclip.Messages) *string { return &d.NoSupport }},
		{"img_error", &m.ImgError, func(d *photoclip.Messages) *string { return &d.ImgError }},
		{"img_handle_error", &m.ImgHandleError, func(d *photoclip.Messages) *string { return &d.ImgHandleError }},
		{"img_load_error", &m.ImgLoadError, func(d *photoclip.Messages) *string { return &d.ImgLoadError }},
		{"no_img", &m.NoImg, func(d *photoclip.Messages) *string { return &d.NoImg }},
		{"clip_error", &m.ClipError, func(d *photoclip.Messages) *string { return &d.ClipError }},
	}
}
