// Package capture grabs the screen as an image source.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"
)

// Monitor describes one output in the display layout.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

type screenBackend interface {
	Monitors() ([]Monitor, error)
	// Grab returns the pixels of r in root window coordinates. The result
	// has its origin at r.Min.
	Grab(r image.Rectangle) (*image.RGBA, error)
	// Bounds is the whole root window.
	Bounds() (image.Rectangle, error)
}

var backend screenBackend = newBackend()

var errNoMonitors = errors.New("no monitors available")

// ListMonitors retrieves all monitors using the platform backend.
func ListMonitors() ([]Monitor, error) {
	return backend.Monitors()
}

// Screen captures the desktop. A non-empty selector crops the result to
// the matching monitor; see FindMonitor.
func Screen(selector string) (*image.RGBA, error) {
	var mon *Monitor
	if strings.TrimSpace(selector) != "" {
		monitors, err := backend.Monitors()
		if err != nil {
			return nil, fmt.Errorf("capture screen %q: %w", selector, err)
		}
		m, err := FindMonitor(monitors, selector)
		if err != nil {
			return nil, err
		}
		mon = &m
	}
	rect, err := backend.Bounds()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	img, err := backend.Grab(rect)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	if mon == nil {
		return img, nil
	}
	return cropToRect(img, mon.Rect)
}

// FindMonitor resolves "primary", an index ("1" or "#1") or a name
// substring. The empty selector is the first monitor.
func FindMonitor(monitors []Monitor, selector string) (Monitor, error) {
	if len(monitors) == 0 {
		return Monitor{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	switch {
	case sel == "":
		return monitors[0], nil
	case sel == "primary":
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(sel, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return Monitor{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), sel) {
			return mon, nil
		}
	}
	return Monitor{}, fmt.Errorf("monitor %q not found", selector)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
