package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/clipboard"
	"github.com/example/photoclip/internal/task"
)

var writeClipboardFn = clipboard.WriteImage

type cropCmd struct {
	*root
	fs      *flag.FlagSet
	output  string
	rotate  float64
	zoom    float64
	pan     string
	copy    bool
	timeout time.Duration
	source  string
	stdout  io.Writer
}

func (c *cropCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *cropCmd) Program() string {
	return c.root.subcommand("crop")
}

func parseCropCmd(args []string, r *root) (*cropCmd, error) {
	fs := flag.NewFlagSet("crop", flag.ExitOnError)
	c := &cropCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "o", "", "output file, - for stdout (default crop.<type>)")
	fs.Float64Var(&c.rotate, "rotate", 0, "rotation in degrees, clockwise")
	fs.Float64Var(&c.zoom, "zoom", 1, "zoom relative to the fill scale")
	fs.StringVar(&c.pan, "pan", "", "pan the image by dx,dy container pixels")
	fs.BoolVar(&c.copy, "copy", false, "copy the crop to the clipboard")
	fs.DurationVar(&c.timeout, "timeout", 30*time.Second, "give up loading after this long")
	addWidgetFlags(fs, r.config)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.source = fs.Arg(0)
	return c, nil
}

func parsePan(s string) (float64, float64, error) {
	if s == "" {
		return 0, 0, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("pan %q: want dx,dy", s)
	}
	dx, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pan %q: %w", s, err)
	}
	dy, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pan %q: %w", s, err)
	}
	return dx, dy, nil
}

func (c *cropCmd) Run() error {
	dx, dy, err := parsePan(c.pan)
	if err != nil {
		return err
	}
	src, err := parseSource(c.source)
	if err != nil {
		return err
	}

	cfg := c.root.config
	loop := task.NewLoop()
	var failure error
	opts := append(cfg.Options(),
		photoclip.WithContainer(cfg.Size.W, cfg.Size.H),
		photoclip.WithLoop(loop),
		photoclip.OnFail(func(msg string, err error) {
			failure = fmt.Errorf("%s: %w", msg, err)
		}),
		photoclip.OnLoadError(func(msg string, err error) {
			failure = fmt.Errorf("%s: %w", msg, err)
		}),
	)
	w := photoclip.New(opts...)
	defer w.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	fut := w.Load(ctx, src)
	if err := loop.RunUntil(ctx, fut.Done()); err != nil {
		return fmt.Errorf("failed to load %s: %w", src, err)
	}
	if _, err := fut.Result(); err != nil {
		if failure != nil {
			return failure
		}
		return err
	}

	if c.zoom != 1 {
		w.Zoom(w.Scale()*c.zoom, 0)
	}
	if c.rotate != 0 {
		if err := w.Rotate(c.rotate, 0); err != nil {
			return fmt.Errorf("failed to rotate: %w", err)
		}
	}
	if dx != 0 || dy != 0 {
		w.Pan(dx, dy)
		w.EndPan()
	}
	loop.RunPending()

	res, err := w.Crop()
	if err != nil {
		return err
	}
	if err := c.write(res); err != nil {
		return err
	}
	if c.copy {
		if err := writeClipboardFn(res.Image); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		c.root.notifyCopy(fmt.Sprintf("%dx%d crop", res.Image.Bounds().Dx(), res.Image.Bounds().Dy()))
	}
	return nil
}

func (c *cropCmd) write(res *photoclip.Result) error {
	out := c.output
	if out == "-" {
		stdout := c.stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		_, err := stdout.Write(res.Data)
		return err
	}
	if out == "" {
		out = "crop." + extension(res.MIME)
		if dir := c.root.config.SaveDir; dir != "" {
			out = filepath.Join(dir, out)
		}
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", out)
	c.root.notifyCrop(out, res.Image)
	c.root.notifySave(out)
	return nil
}

func extension(mime string) string {
	if mime == "image/png" {
		return "png"
	}
	return "jpg"
}
