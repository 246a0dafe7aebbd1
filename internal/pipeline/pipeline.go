// Package pipeline turns a raw image source into a normalized image: read,
// type check, decode with EXIF orientation applied, downscale to the
// configured bounds and re-encode as JPEG.
package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// Options configure Process.
type Options struct {
	MaxWidth  int
	MaxHeight int
	// Quality of the re-encoded JPEG in 0..1.
	Quality float64
	// Origin is the page origin used for the cross-origin check on URL
	// sources. Empty disables the check.
	Origin string
	Client *http.Client
	// MaxBytes caps how much is read from a source.
	MaxBytes int64
}

// DefaultOptions match the defaults of the widget.
func DefaultOptions() Options {
	return Options{Quality: 0.7, MaxBytes: 64 << 20}
}

// Image is the pipeline result.
type Image struct {
	Image   image.Image
	Encoded []byte
	MIME    string
	Width   int
	Height  int
	Tainted bool
	Source  string
}

// Process loads src and normalizes it.
func Process(ctx context.Context, src Source, opts Options) (*Image, error) {
	if err := Check(src); err != nil {
		return nil, err
	}
	var (
		img     image.Image
		tainted bool
	)
	if src.Kind == KindImage {
		if src.Image == nil {
			return nil, &DecodeError{Source: src.String(), Err: ErrNotImage}
		}
		img = src.Image
	} else {
		data, t, err := read(ctx, src, opts)
		if err != nil {
			return nil, err
		}
		tainted = t
		if !filetype.IsImage(head(data)) {
			return nil, &DecodeError{Source: src.String(), Err: ErrNotImage}
		}
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, &DecodeError{Source: src.String(), Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: src.String(), Err: err}
	}
	img = fit(img, opts.MaxWidth, opts.MaxHeight)

	var buf bytes.Buffer
	q := opts.Quality
	if q <= 0 || q > 1 {
		q = 0.7
	}
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(int(q*100+0.5))); err != nil {
		return nil, &DecodeError{Source: src.String(), Err: fmt.Errorf("re-encode: %w", err)}
	}
	out, err := imaging.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, &LoadError{Source: src.String(), Err: fmt.Errorf("reload: %w", err)}
	}
	b := out.Bounds()
	return &Image{
		Image:   out,
		Encoded: buf.Bytes(),
		MIME:    "image/jpeg",
		Width:   b.Dx(),
		Height:  b.Dy(),
		Tainted: tainted,
		Source:  src.String(),
	}, nil
}

func head(data []byte) []byte {
	if len(data) > sniffLen {
		return data[:sniffLen]
	}
	return data
}

// fit shrinks img to the bounds keeping its aspect ratio. A zero bound is
// unconstrained; images are never enlarged.
func fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch {
	case maxW > 0 && maxH > 0:
		if w > maxW || h > maxH {
			return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
		}
	case maxW > 0:
		if w > maxW {
			return imaging.Resize(img, maxW, 0, imaging.Lanczos)
		}
	case maxH > 0:
		if h > maxH {
			return imaging.Resize(img, 0, maxH, imaging.Lanczos)
		}
	}
	return img
}

func read(ctx context.Context, src Source, opts Options) ([]byte, bool, error) {
	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultOptions().MaxBytes
	}
	switch src.Kind {
	case KindBytes:
		return src.Data, false, nil
	case KindFile:
		f, err := os.Open(src.Name)
		if err != nil {
			return nil, false, &LoadError{Source: src.String(), Err: err}
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, limit))
		if err != nil {
			return nil, false, &LoadError{Source: src.String(), Err: err}
		}
		return data, false, nil
	case KindURL:
		if strings.HasPrefix(src.Name, "data:") {
			data, err := decodeDataURL(src.Name)
			if err != nil {
				return nil, false, &DecodeError{Source: "data URL", Err: err}
			}
			return data, false, nil
		}
		return fetch(ctx, src.Name, opts, limit)
	}
	return nil, false, &LoadError{Source: src.String(), Err: fmt.Errorf("unsupported source kind %v", src.Kind)}
}

func fetch(ctx context.Context, rawURL string, opts Options, limit int64) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, &LoadError{Source: rawURL, Err: err}
	}
	if opts.Origin != "" {
		req.Header.Set("Origin", opts.Origin)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, &LoadError{Source: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, &LoadError{Source: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, false, &LoadError{Source: rawURL, Err: err}
	}
	return data, Tainted(rawURL, opts.Origin, resp.Header.Get("Access-Control-Allow-Origin")), nil
}

// Tainted reports whether pixels fetched from rawURL may not be read back
// by a page at origin, given the response's Access-Control-Allow-Origin.
func Tainted(rawURL, origin, allow string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	if strings.EqualFold(u.Scheme+"://"+u.Host, strings.TrimSuffix(origin, "/")) {
		return false
	}
	allow = strings.TrimSpace(allow)
	return allow != "*" && !strings.EqualFold(allow, origin)
}

func decodeDataURL(s string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	v, err := url.PathUnescape(payload)
	return []byte(v), err
}
