package main

import (
	"flag"
	"strings"

	"github.com/example/photoclip/internal/config"
)

var widgetFlags = []struct {
	name  string
	usage string
}{
	{"size", "crop frame size, WxH or a single number"},
	{"adaptive", "frame size as container percentages, W,H (e.g. 80%,60%)"},
	{"output-size", "output size, WxH; defaults to the frame size"},
	{"output-type", "output format, jpg or png"},
	{"output-quality", "jpg quality between 0 and 1"},
	{"max-zoom", "largest zoom as a multiple of the fill scale"},
	{"rotate-free", "rotate freely instead of snapping to 90 degrees"},
	{"bounce-time", "snap back and settle duration (ms or Go duration)"},
	{"origin", "origin used to decide whether remote images are cross-origin"},
	{"save-dir", "directory to save crops into"},
}

// addWidgetFlags registers the shared widget settings on fs. Values are
// written straight into cfg so flags win over the file and environment.
func addWidgetFlags(fs *flag.FlagSet, cfg *config.Config) {
	for _, f := range widgetFlags {
		key := strings.ReplaceAll(f.name, "-", "_")
		fs.Func(f.name, f.usage, func(v string) error {
			return config.Set(cfg, "", key, v)
		})
	}
}
