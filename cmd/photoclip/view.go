package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/viewer"
)

type viewCmd struct {
	*root
	fs     *flag.FlagSet
	width  int
	height int
	source string
}

func (v *viewCmd) FlagSet() *flag.FlagSet {
	return v.fs
}

func (v *viewCmd) Program() string {
	return v.root.subcommand("view")
}

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	v := &viewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(v)
	fs.IntVar(&v.width, "width", 800, "window width")
	fs.IntVar(&v.height, "height", 600, "window height")
	addWidgetFlags(fs, r.config)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: v}
	}
	v.source = fs.Arg(0)
	return v, nil
}

// savePath names a crop saved at t.
func savePath(dir, mime string, t time.Time) string {
	name := fmt.Sprintf("crop-%s.%s", t.Format("20060102-150405"), extension(mime))
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func (v *viewCmd) Run() error {
	src, err := parseSource(v.source)
	if err != nil {
		return err
	}

	var w *photoclip.Widget
	cfg := v.root.config
	vw := viewer.New(
		viewer.WithTitle("photoclip - "+v.source),
		viewer.WithWindowSize(v.width, v.height),
		viewer.WithSaveAction(func() (string, error) {
			res, err := w.Crop()
			if err != nil {
				return "", err
			}
			path := savePath(cfg.SaveDir, res.MIME, time.Now())
			if err := os.WriteFile(path, res.Data, 0o644); err != nil {
				return "", fmt.Errorf("failed to save %s: %w", path, err)
			}
			v.root.notifyCrop(path, res.Image)
			v.root.notifySave(path)
			return "saved " + path, nil
		}),
		viewer.WithCopyAction(func() (string, error) {
			res, err := w.Crop()
			if err != nil {
				return "", err
			}
			if err := writeClipboardFn(res.Image); err != nil {
				return "", fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			detail := fmt.Sprintf("%dx%d crop", res.Image.Bounds().Dx(), res.Image.Bounds().Dy())
			v.root.notifyCopy(detail)
			return "copied " + detail, nil
		}),
	)

	cw, ch := vw.ContainerSize()
	opts := append(cfg.Options(),
		photoclip.WithContainer(cw, ch),
		photoclip.WithHost(vw),
		photoclip.WithDispatcher(vw),
		photoclip.WithScheduler(vw),
		photoclip.OnLoadError(func(msg string, err error) {
			log.Printf("%s: %v", msg, err)
		}),
		photoclip.OnConfigError(func(e *photoclip.ConfigError) {
			log.Printf("config: %v", e)
		}),
	)
	w = photoclip.New(opts...)
	defer w.Destroy()
	vw.Attach(w)

	fut := w.Load(context.Background(), src)
	select {
	case <-fut.Done():
		// The type check failed before any work was queued.
		if _, err := fut.Result(); err != nil {
			return err
		}
	default:
	}
	vw.Run()
	return nil
}
