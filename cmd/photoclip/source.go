package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/photoclip/internal/capture"
	"github.com/example/photoclip/internal/clipboard"
	"github.com/example/photoclip/internal/pipeline"
)

var (
	captureScreenFn = capture.Screen
	readClipboardFn = clipboard.ReadImage
)

var stdin io.Reader = os.Stdin

// parseSource turns a command line argument into an image source. Screen
// and clipboard sources are read immediately.
func parseSource(arg string) (pipeline.Source, error) {
	switch {
	case arg == "":
		return pipeline.Source{}, fmt.Errorf("no source given")
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return pipeline.Source{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return pipeline.FromBytes("stdin", "", data), nil
	case arg == "screen" || strings.HasPrefix(arg, "screen:"):
		img, err := captureScreenFn(strings.TrimPrefix(strings.TrimPrefix(arg, "screen"), ":"))
		if err != nil {
			return pipeline.Source{}, fmt.Errorf("failed to capture screen: %w", err)
		}
		return pipeline.FromImage(arg, img), nil
	case arg == "clipboard":
		img, err := readClipboardFn()
		if err != nil {
			return pipeline.Source{}, fmt.Errorf("failed to read clipboard: %w", err)
		}
		return pipeline.FromImage(arg, img), nil
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"), strings.HasPrefix(arg, "data:"):
		return pipeline.FromURL(arg), nil
	}
	return pipeline.FromFile(arg), nil
}
