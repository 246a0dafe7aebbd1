package photoclip

import (
	"errors"
	"fmt"

	"github.com/example/photoclip/internal/compositor"
	"github.com/example/photoclip/internal/pipeline"
	"github.com/example/photoclip/internal/rotation"
)

var (
	// ErrUnsupportedEnvironment is reported once when the widget has no
	// scheduler and rotations cannot be animated.
	ErrUnsupportedEnvironment = errors.New("environment cannot animate transforms")
	// ErrNoImageLoaded is returned by Crop before a load completes.
	ErrNoImageLoaded = compositor.ErrNoImage
	// ErrTainted is wrapped by a CompositingError for cross-origin sources.
	ErrTainted = compositor.ErrTainted
	// ErrBusy rejects rotations while a settle runs.
	ErrBusy = rotation.ErrBusy
	// ErrDestroyed is returned by calls on a destroyed widget.
	ErrDestroyed = errors.New("widget destroyed")
	// ErrInvalidOption is wrapped by every ConfigError.
	ErrInvalidOption = errors.New("invalid option")
)

type (
	DecodeError      = pipeline.DecodeError
	LoadError        = pipeline.LoadError
	CompositingError = compositor.Error
)

// ConfigError reports an option value that was rejected. The default for
// that option stays in effect.
type ConfigError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("option %s: %q: %v", e.Option, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configError(option string, value any, reason string) *ConfigError {
	return &ConfigError{
		Option: option,
		Value:  fmt.Sprint(value),
		Err:    fmt.Errorf("%w: %s", ErrInvalidOption, reason),
	}
}

// Messages are the user facing texts passed to the failure callbacks.
type Messages struct {
	NoSupport      string
	ImgError       string
	ImgHandleError string
	ImgLoadError   string
	NoImg          string
	ClipError      string
}

// DefaultMessages returns the built in texts.
func DefaultMessages() Messages {
	return Messages{
		NoSupport:      "Your environment cannot run the crop widget. Please use a newer one.",
		ImgError:       "This file type is not supported. Please choose a regular image file.",
		ImgHandleError: "The image could not be processed. Please try another image.",
		ImgLoadError:   "The image could not be read. Please try another image.",
		NoImg:          "There is no image to crop.",
		ClipError:      "Cropping failed. The image source may be cross-origin; serve it from the same origin as the app.",
	}
}

func (m Messages) merge(o Messages) Messages {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return Messages{
		NoSupport:      pick(m.NoSupport, o.NoSupport),
		ImgError:       pick(m.ImgError, o.ImgError),
		ImgHandleError: pick(m.ImgHandleError, o.ImgHandleError),
		ImgLoadError:   pick(m.ImgLoadError, o.ImgLoadError),
		NoImg:          pick(m.NoImg, o.NoImg),
		ClipError:      pick(m.ClipError, o.ClipError),
	}
}

// loadMessage picks the message for a failed load.
func (m Messages) loadMessage(err error) string {
	var derr *DecodeError
	switch {
	case errors.Is(err, pipeline.ErrNotImage):
		return m.ImgError
	case errors.As(err, &derr):
		return m.ImgHandleError
	}
	return m.ImgLoadError
}
