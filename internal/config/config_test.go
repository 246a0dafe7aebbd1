package config

import (
	"errors"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/geom"
)

func TestParse(t *testing.T) {
	input := `
size = 300x200
adaptive = 80%,
output_type = png
bounce_time = 150
save_dir = /tmp/crops

[style]
mask_color = #00000099
mask_border = 1px solid #ddd
jpg_fill_color = #000

[pipeline]
max_width = 1024
quality = 0.5

[notify]
crop = true
save = false
copy = true

[messages]
no_img = "Pick an image first"
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Size != (geom.Size{W: 300, H: 200}) {
		t.Errorf("Expected size 300x200, got %+v", cfg.Size)
	}
	if cfg.AdaptiveW != "80%" || cfg.AdaptiveH != "" {
		t.Errorf("Unexpected adaptive %q,%q", cfg.AdaptiveW, cfg.AdaptiveH)
	}
	if cfg.OutputType != "png" {
		t.Errorf("Expected output_type png, got %q", cfg.OutputType)
	}
	if cfg.BounceTime != 150*time.Millisecond {
		t.Errorf("Expected bounce 150ms, got %v", cfg.BounceTime)
	}
	if cfg.SaveDir != "/tmp/crops" {
		t.Errorf("Expected save_dir '/tmp/crops', got '%s'", cfg.SaveDir)
	}
	if cfg.Style.MaskColor.A != 0x99 {
		t.Errorf("Unexpected mask color %+v", cfg.Style.MaskColor)
	}
	want := photoclip.Border{Width: 1, Style: "solid", Color: color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}}
	if cfg.Style.MaskBorder != want {
		t.Errorf("Unexpected border %+v", cfg.Style.MaskBorder)
	}
	if cfg.Style.JPGFillColor != (color.RGBA{A: 0xff}) {
		t.Errorf("Unexpected fill %+v", cfg.Style.JPGFillColor)
	}
	if cfg.Pipeline.MaxWidth != 1024 || cfg.Pipeline.Quality != 0.5 {
		t.Errorf("Unexpected pipeline %+v", cfg.Pipeline)
	}
	if !cfg.Notify.Crop || cfg.Notify.Save || !cfg.Notify.Copy {
		t.Errorf("Unexpected notify %+v", cfg.Notify)
	}
	if cfg.Messages.NoImg != "Pick an image first" {
		t.Errorf("Unexpected no_img %q", cfg.Messages.NoImg)
	}
	if cfg.Messages.ClipError != photoclip.DefaultMessages().ClipError {
		t.Error("Expected clip_error to keep its default")
	}
}

func TestParseKeepsDefaultsOnBadValues(t *testing.T) {
	input := `
size = -3x10
max_zoom = 2

[style]
mask_border = thick
`
	cfg, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected an error")
	}
	if cfg == nil {
		t.Fatal("Expected a config next to the error")
	}
	var cerr *photoclip.ConfigError
	if !errors.As(err, &cerr) || cerr.Option != "size" {
		t.Fatalf("Expected a size ConfigError, got %v", err)
	}
	if !errors.Is(err, photoclip.ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption in %v", err)
	}
	if !strings.Contains(err.Error(), "style.mask_border") {
		t.Errorf("Expected the border to be reported: %v", err)
	}
	if cfg.Size != New().Size {
		t.Errorf("Size should keep its default, got %+v", cfg.Size)
	}
	if cfg.MaxZoom != 2 {
		t.Errorf("Valid keys should still apply, got max_zoom %g", cfg.MaxZoom)
	}
	if cfg.Style.MaskBorder != photoclip.DefaultStyle().MaskBorder {
		t.Errorf("Border should keep its default, got %+v", cfg.Style.MaskBorder)
	}
}

func TestCircular(t *testing.T) {
	input := `size = 250x250
output_size = 500x0
output_type = jpg
output_quality = 0.9
rotate_free = false
origin = https://app.example
save_dir = /home/user/crops

[style]
mask_color = #11223344

[notify]
crop = true
save = true
copy = false

[messages]
clip_error = "Cannot crop \"remote\" images"
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	if cfg.Size != cfg2.Size || cfg.OutputSize != cfg2.OutputSize {
		t.Errorf("Size mismatch: %+v/%+v vs %+v/%+v", cfg.Size, cfg.OutputSize, cfg2.Size, cfg2.OutputSize)
	}
	if cfg.OutputQuality != cfg2.OutputQuality || cfg.RotateFree != cfg2.RotateFree || cfg.BounceTime != cfg2.BounceTime {
		t.Errorf("Output mismatch:\n%s", generated)
	}
	if cfg.Origin != cfg2.Origin || cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("Path mismatch: %q %q vs %q %q", cfg.Origin, cfg.SaveDir, cfg2.Origin, cfg2.SaveDir)
	}
	if cfg.Style != cfg2.Style {
		t.Errorf("Style mismatch: %+v vs %+v", cfg.Style, cfg2.Style)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Messages != cfg2.Messages {
		t.Errorf("Messages mismatch: %+v vs %+v", cfg.Messages, cfg2.Messages)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PHOTOCLIP_OUTPUT_TYPE": "png",
		"PHOTOCLIP_MAX_ZOOM":    "nope",
	}
	cfg := New()
	err := ApplyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err == nil {
		t.Fatal("Expected max_zoom to be rejected")
	}
	if cfg.OutputType != "png" {
		t.Errorf("Expected png, got %q", cfg.OutputType)
	}
	if cfg.MaxZoom != 1 {
		t.Errorf("Expected default max_zoom, got %g", cfg.MaxZoom)
	}
}

func TestLoaderPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	l := NewLoader("v1.0.0", "")
	if got := l.GetConfigPath(); got != "" {
		t.Fatalf("Expected no config, got %q", got)
	}
	path := l.UserConfigPath()
	if path != filepath.Join(dir, "photoclip", "config.rc") {
		t.Fatalf("Unexpected user path %q", path)
	}
	cfg := New()
	cfg.SaveDir = "/srv/crops"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SaveDir != "/srv/crops" {
		t.Errorf("Expected saved dir, got %q", loaded.SaveDir)
	}
}
