//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("screen capture is not supported on this platform")

type unsupportedBackend struct{}

func newBackend() screenBackend { return unsupportedBackend{} }

func (unsupportedBackend) Monitors() ([]Monitor, error)              { return nil, errUnsupported }
func (unsupportedBackend) Grab(image.Rectangle) (*image.RGBA, error) { return nil, errUnsupported }
func (unsupportedBackend) Bounds() (image.Rectangle, error)          { return image.Rectangle{}, errUnsupported }
