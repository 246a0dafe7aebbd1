package photoclip

import (
	"fmt"
	"image/color"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/photoclip/internal/compositor"
	"github.com/example/photoclip/internal/geom"
	"github.com/example/photoclip/internal/pipeline"
	"github.com/example/photoclip/internal/rotation"
	"github.com/example/photoclip/internal/task"
)

// Border is the crop frame outline.
type Border struct {
	Width int
	Style string
	Color color.RGBA
}

func (b Border) String() string {
	return fmt.Sprintf("%dpx %s #%02x%02x%02x", b.Width, b.Style, b.Color.R, b.Color.G, b.Color.B)
}

// Style holds the colors a host uses around the clip.
type Style struct {
	MaskColor    color.RGBA
	MaskBorder   Border
	JPGFillColor color.RGBA
}

// DefaultStyle is a half transparent black mask, a 2px dashed light gray
// frame and white JPEG fill.
func DefaultStyle() Style {
	return Style{
		MaskColor:    color.RGBA{A: 0x80},
		MaskBorder:   Border{Width: 2, Style: "dashed", Color: color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}},
		JPGFillColor: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

type options struct {
	size      geom.Size
	adaptiveW float64
	adaptiveH float64
	output    geom.Size
	format    compositor.Format
	quality   float64
	maxZoom   float64
	policy    rotation.Policy
	bounce    time.Duration
	style     Style
	messages  Messages
	pipeline  pipeline.Options
	container geom.Size

	host     Host
	dispatch task.Dispatcher
	sched    task.Scheduler
	now      func() time.Time

	onLoadStart    func(pipeline.Source)
	onLoadComplete func(*pipeline.Image)
	onLoadError    func(msg string, err error)
	onDone         func(*Result)
	onFail         func(msg string, err error)
	onConfigError  func(*ConfigError)
	onUnsupported  func(msg string, err error)

	errs []*ConfigError
}

func defaults() options {
	return options{
		size:     geom.Size{W: 100, H: 100},
		format:   compositor.JPEG,
		quality:  compositor.DefaultQuality,
		maxZoom:  1,
		policy:   rotation.Free{},
		bounce:   300 * time.Millisecond,
		style:    DefaultStyle(),
		messages: DefaultMessages(),
		pipeline: pipeline.DefaultOptions(),
	}
}

func (o *options) reject(e *ConfigError) { o.errs = append(o.errs, e) }

// Option configures a Widget.
type Option func(*options)

// WithSize sets the clip size, or, with adaptive sizing, the ratio used
// for the axis that is not a percentage.
func WithSize(width, height float64) Option {
	return func(o *options) {
		if width <= 0 || height <= 0 {
			o.reject(configError("size", fmt.Sprintf("%gx%g", width, height), "width and height must be positive"))
			if width > 0 {
				o.size.W = width
			}
			if height > 0 {
				o.size.H = height
			}
			return
		}
		o.size = geom.Size{W: width, H: height}
	}
}

// ParsePercent reads "80%" style values. The empty string is zero.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("%q is not a percentage", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%q is not a positive percentage", s)
	}
	return v, nil
}

// WithAdaptive sizes the clip as a percentage of the container, e.g.
// WithAdaptive("80%", ""). An empty axis follows the size ratio.
func WithAdaptive(width, height string) Option {
	return func(o *options) {
		w, err := ParsePercent(width)
		if err != nil {
			o.reject(configError("adaptive", width, err.Error()))
		} else {
			o.adaptiveW = w
		}
		h, err := ParsePercent(height)
		if err != nil {
			o.reject(configError("adaptive", height, err.Error()))
		} else {
			o.adaptiveH = h
		}
	}
}

// WithOutputSize fixes the output bitmap size. A zero axis follows the
// clip ratio; both zero means clip size divided by scale.
func WithOutputSize(width, height float64) Option {
	return func(o *options) {
		if width < 0 || height < 0 {
			o.reject(configError("output_size", fmt.Sprintf("%gx%g", width, height), "must not be negative"))
			return
		}
		o.output = geom.Size{W: width, H: height}
	}
}

// WithOutputType selects "jpg" for JPEG output; anything else is PNG.
func WithOutputType(t string) Option {
	return func(o *options) { o.format = compositor.ParseFormat(t) }
}

// WithOutputQuality sets the JPEG quality in (0, 1].
func WithOutputQuality(q float64) Option {
	return func(o *options) {
		if q <= 0 || q > 1 {
			o.reject(configError("output_quality", q, "must be in (0, 1]"))
			return
		}
		o.quality = q
	}
}

// WithMaxZoom sets the zoom ceiling.
func WithMaxZoom(z float64) Option {
	return func(o *options) {
		if z <= 0 {
			o.reject(configError("max_zoom", z, "must be positive"))
			return
		}
		o.maxZoom = z
	}
}

// WithRotateFree picks Free rotation when true and quarter-turn snapping
// when false.
func WithRotateFree(free bool) Option {
	return func(o *options) {
		if free {
			o.policy = rotation.Free{}
		} else {
			o.policy = rotation.Snap90{}
		}
	}
}

// WithPolicy sets the rotation policy directly.
func WithPolicy(p rotation.Policy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithBounceTime sets the duration of settles and pan snap-backs.
func WithBounceTime(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			o.reject(configError("bounce_time", d, "must not be negative"))
			return
		}
		o.bounce = d
	}
}

// WithStyle sets the mask and fill colors.
func WithStyle(s Style) Option {
	return func(o *options) { o.style = s }
}

// WithMessages overrides the texts passed to callbacks. Empty fields keep
// their defaults.
func WithMessages(m Messages) Option {
	return func(o *options) { o.messages = o.messages.merge(m) }
}

// WithCompression bounds the loaded image and sets the re-encode quality.
func WithCompression(maxWidth, maxHeight int, quality float64) Option {
	return func(o *options) {
		if maxWidth < 0 || maxHeight < 0 {
			o.reject(configError("pipeline", fmt.Sprintf("%dx%d", maxWidth, maxHeight), "bounds must not be negative"))
		} else {
			o.pipeline.MaxWidth, o.pipeline.MaxHeight = maxWidth, maxHeight
		}
		if quality <= 0 || quality > 1 {
			o.reject(configError("pipeline.quality", quality, "must be in (0, 1]"))
		} else {
			o.pipeline.Quality = quality
		}
	}
}

// WithOrigin enables the cross-origin check for URL sources.
func WithOrigin(origin string) Option {
	return func(o *options) { o.pipeline.Origin = origin }
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.pipeline.Client = c }
}

// WithContainer sets the initial container size.
func WithContainer(width, height float64) Option {
	return func(o *options) { o.container = geom.Size{W: width, H: height} }
}

// WithHost attaches the surface that draws the layers.
func WithHost(h Host) Option {
	return func(o *options) { o.host = h }
}

// WithDispatcher runs load completions on the widget's goroutine. Without
// one Load blocks until the image is processed.
func WithDispatcher(d task.Dispatcher) Option {
	return func(o *options) { o.dispatch = d }
}

// WithScheduler enables animated settles.
func WithScheduler(s task.Scheduler) Option {
	return func(o *options) { o.sched = s }
}

// WithLoop uses l as both dispatcher and scheduler.
func WithLoop(l *task.Loop) Option {
	return func(o *options) {
		o.dispatch = l
		o.sched = l
	}
}

// WithClock replaces time.Now for settle timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// OnLoadStart runs when a source passes the type check and starts loading.
func OnLoadStart(fn func(pipeline.Source)) Option {
	return func(o *options) { o.onLoadStart = fn }
}

// OnLoadComplete receives each image that becomes the current one.
func OnLoadComplete(fn func(*pipeline.Image)) Option {
	return func(o *options) { o.onLoadComplete = fn }
}

// OnLoadError receives rejected or failed loads with their message.
func OnLoadError(fn func(msg string, err error)) Option {
	return func(o *options) { o.onLoadError = fn }
}

// OnDone receives every successful crop.
func OnDone(fn func(*Result)) Option {
	return func(o *options) { o.onDone = fn }
}

// OnFail receives crop failures. They are also returned from Crop.
func OnFail(fn func(msg string, err error)) Option {
	return func(o *options) { o.onFail = fn }
}

// OnConfigError receives each rejected option after its default is kept.
func OnConfigError(fn func(*ConfigError)) Option {
	return func(o *options) { o.onConfigError = fn }
}

// OnUnsupported is called at most once per widget.
func OnUnsupported(fn func(msg string, err error)) Option {
	return func(o *options) { o.onUnsupported = fn }
}
