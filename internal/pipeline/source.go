package pipeline

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/h2non/filetype"
)

// Kind says where a Source reads from.
type Kind int

const (
	KindURL Kind = iota
	KindFile
	KindBytes
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindFile:
		return "file"
	case KindBytes:
		return "bytes"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Source is a raw image to load.
type Source struct {
	Kind Kind
	// Name is the URL, the path or a label for in-memory sources.
	Name string
	// MIME is the declared media type, if any.
	MIME  string
	Data  []byte
	Image image.Image
}

func FromURL(u string) Source     { return Source{Kind: KindURL, Name: u} }
func FromFile(path string) Source { return Source{Kind: KindFile, Name: path} }
func FromImage(name string, img image.Image) Source {
	return Source{Kind: KindImage, Name: name, Image: img}
}

// FromBytes wraps encoded image data. mime may be empty.
func FromBytes(name, mime string, data []byte) Source {
	return Source{Kind: KindBytes, Name: name, MIME: mime, Data: data}
}

func (s Source) String() string {
	if s.Name == "" {
		return s.Kind.String()
	}
	return s.Name
}

// ErrNotImage reports a source whose content is not an image.
var ErrNotImage = errors.New("not an image")

// DecodeError means the source was read but is not a usable image.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Source, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// LoadError means the source could not be read.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Source, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// sniffLen covers the longest magic number filetype matches on.
const sniffLen = 262

// Check is the cheap synchronous type check run before a load starts. It
// rejects sources that declare or sniff as something other than an image.
// URL and in-memory image sources always pass.
func Check(src Source) error {
	if src.MIME != "" && !strings.HasPrefix(strings.ToLower(src.MIME), "image/") {
		return &DecodeError{Source: src.String(), Err: fmt.Errorf("%w: %s", ErrNotImage, src.MIME)}
	}
	var head []byte
	switch src.Kind {
	case KindBytes:
		head = src.Data
	case KindFile:
		f, err := os.Open(src.Name)
		if err != nil {
			return &LoadError{Source: src.String(), Err: err}
		}
		defer f.Close()
		buf := make([]byte, sniffLen)
		n, err := io.ReadFull(f, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return &LoadError{Source: src.String(), Err: err}
		}
		head = buf[:n]
	default:
		return nil
	}
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if !filetype.IsImage(head) {
		return &DecodeError{Source: src.String(), Err: ErrNotImage}
	}
	return nil
}
