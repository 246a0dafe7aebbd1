package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/photoclip/internal/config"
	"github.com/example/photoclip/internal/pipeline"
)

func testRoot() *root {
	return &root{
		fs:      flag.NewFlagSet("photoclip", flag.ContinueOnError),
		program: "photoclip",
		config:  config.New(),
	}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "in.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestCropRunCaptureError(t *testing.T) {
	original := captureScreenFn
	sentinel := errors.New("boom")
	captureScreenFn = func(string) (*image.RGBA, error) { return nil, sentinel }
	t.Cleanup(func() { captureScreenFn = original })

	cmd, err := parseCropCmd([]string{"screen:1"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	} else {
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to contain %q, got %v", want, err)
		}
	}
}

func TestParseSourceScreenSelector(t *testing.T) {
	original := captureScreenFn
	var got string
	captureScreenFn = func(sel string) (*image.RGBA, error) {
		got = sel
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}
	t.Cleanup(func() { captureScreenFn = original })

	src, err := parseSource("screen:HDMI-1")
	if err != nil {
		t.Fatalf("parseSource: %v", err)
	}
	if got != "HDMI-1" {
		t.Fatalf("selector = %q, want HDMI-1", got)
	}
	if src.Kind != pipeline.KindImage {
		t.Fatalf("kind = %v, want image", src.Kind)
	}
}

func TestParseSourceKinds(t *testing.T) {
	tests := []struct {
		arg  string
		kind pipeline.Kind
	}{
		{"photo.jpg", pipeline.KindFile},
		{"https://example.com/a.png", pipeline.KindURL},
		{"http://example.com/a.png", pipeline.KindURL},
		{"data:image/png;base64,AAAA", pipeline.KindURL},
	}
	for _, tt := range tests {
		src, err := parseSource(tt.arg)
		if err != nil {
			t.Fatalf("parseSource(%q): %v", tt.arg, err)
		}
		if src.Kind != tt.kind {
			t.Errorf("parseSource(%q) kind = %v, want %v", tt.arg, src.Kind, tt.kind)
		}
	}
}

func TestParseSourceClipboardError(t *testing.T) {
	original := readClipboardFn
	sentinel := errors.New("empty")
	readClipboardFn = func() (image.Image, error) { return nil, sentinel }
	t.Cleanup(func() { readClipboardFn = original })

	_, err := parseSource("clipboard")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestCropWritesFile(t *testing.T) {
	in := writePNG(t, 200, 100)
	out := filepath.Join(t.TempDir(), "out.png")
	cmd, err := parseCropCmd([]string{"-o", out, "-output-type", "png", in}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("output size = %v, want 100x100", b.Size())
	}
}

func TestCropToStdout(t *testing.T) {
	in := writePNG(t, 60, 60)
	cmd, err := parseCropCmd([]string{"-o", "-", "-size", "40x30", "-rotate", "90", in}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	var buf bytes.Buffer
	cmd.stdout = &buf
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xff, 0xd8}) {
		t.Fatalf("expected jpeg output, got % x", buf.Bytes()[:min(4, buf.Len())])
	}
}

func TestCropRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cmd, err := parseCropCmd([]string{"-o", "-", path}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	cmd.stdout = &bytes.Buffer{}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	} else if !errors.Is(err, pipeline.ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestParsePan(t *testing.T) {
	dx, dy, err := parsePan("12, -3.5")
	if err != nil || dx != 12 || dy != -3.5 {
		t.Fatalf("parsePan = %v, %v, %v", dx, dy, err)
	}
	if _, _, err := parsePan("12"); err == nil {
		t.Fatalf("expected error for missing dy")
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	r := testRoot()
	env := map[string]string{"PHOTOCLIP_OUTPUT_TYPE": "png", "PHOTOCLIP_MAX_ZOOM": "3"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	if err := config.ApplyEnv(r.config, lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if _, err := parseCropCmd([]string{"-output-type", "jpg", "in.png"}, r); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if r.config.OutputType != "jpg" {
		t.Fatalf("output type = %q, want jpg", r.config.OutputType)
	}
	if r.config.MaxZoom != 3 {
		t.Fatalf("max zoom = %v, want 3 from env", r.config.MaxZoom)
	}
}

func TestCropRequiresSource(t *testing.T) {
	_, err := parseCropCmd(nil, testRoot())
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "Usage: photoclip crop"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected help to contain %q, got %q", want, uerr.Error())
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	r := testRoot()
	err := r.Run(nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	help := uerr.Error()
	for _, want := range []string{"crop", "view", "config", "version"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestConfigPrint(t *testing.T) {
	r := testRoot()
	cmd, err := parseConfigCmd([]string{"-output-type", "png", "print"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	var buf bytes.Buffer
	cmd.out = &buf
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "output_type = png"; !strings.Contains(buf.String(), want) {
		t.Fatalf("expected %q in %q", want, buf.String())
	}
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	cmd := &versionCmd{r: testRoot(), out: &buf}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "photoclip version ") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
