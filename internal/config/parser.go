package config

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/photoclip"
	"github.com/example/photoclip/internal/geom"
)

// Parse reads configuration from an io.Reader. Values that do not parse
// keep their defaults and are reported as *photoclip.ConfigError values
// joined into the returned error; the Config is returned either way unless
// reading fails.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var errs []error

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			key, value, ok = strings.Cut(line, ":")
			if !ok {
				continue
			}
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = unquote(strings.TrimSpace(value))

		if err := Set(cfg, section, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, errors.Join(errs...)
}

func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, "\"") && strings.HasSuffix(v, "\"") {
		if s, err := strconv.Unquote(v); err == nil {
			return s
		}
		return v[1 : len(v)-1]
	}
	return v
}

// Set assigns one key. The section is "" for root keys. Unknown keys are
// ignored.
func Set(cfg *Config, section, key, value string) error {
	var err error
	switch section {
	case "":
		err = setRootField(cfg, key, value)
	case "style":
		err = setStyleField(&cfg.Style, key, value)
	case "pipeline":
		err = setPipelineField(&cfg.Pipeline, key, value)
	case "notify":
		err = setNotifyField(&cfg.Notify, key, value)
	case "messages":
		for _, m := range messageKeys(&cfg.Messages) {
			if m.key == key {
				*m.field = value
			}
		}
	}
	if err != nil {
		name := key
		if section != "" {
			name = section + "." + key
		}
		return &photoclip.ConfigError{Option: name, Value: value, Err: fmt.Errorf("%w: %v", photoclip.ErrInvalidOption, err)}
	}
	return nil
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "size":
		s, err := parseSize(value)
		if err != nil {
			return err
		}
		if s.W <= 0 || s.H <= 0 {
			return fmt.Errorf("width and height must be positive")
		}
		cfg.Size = s
	case "adaptive":
		w, h, _ := strings.Cut(value, ",")
		w, h = strings.TrimSpace(w), strings.TrimSpace(h)
		if _, err := photoclip.ParsePercent(w); err != nil {
			return err
		}
		if _, err := photoclip.ParsePercent(h); err != nil {
			return err
		}
		cfg.AdaptiveW, cfg.AdaptiveH = w, h
	case "output_size":
		s, err := parseSize(value)
		if err != nil {
			return err
		}
		if s.W < 0 || s.H < 0 {
			return fmt.Errorf("must not be negative")
		}
		cfg.OutputSize = s
	case "output_type":
		cfg.OutputType = value
	case "output_quality":
		q, err := parseUnit(value)
		if err != nil {
			return err
		}
		cfg.OutputQuality = q
	case "max_zoom":
		z, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if z <= 0 {
			return fmt.Errorf("must be positive")
		}
		cfg.MaxZoom = z
	case "rotate_free":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.RotateFree = b
	case "bounce_time":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.BounceTime = d
	case "origin":
		cfg.Origin = value
	case "save_dir":
		cfg.SaveDir = value
	}
	return nil
}

func setStyleField(s *photoclip.Style, key, value string) error {
	switch key {
	case "mask_color":
		c, err := parseColor(value)
		if err != nil {
			return err
		}
		s.MaskColor = c
	case "mask_border":
		b, err := parseBorder(value)
		if err != nil {
			return err
		}
		s.MaskBorder = b
	case "jpg_fill_color":
		c, err := parseColor(value)
		if err != nil {
			return err
		}
		s.JPGFillColor = c
	}
	return nil
}

func setPipelineField(p *Pipeline, key, value string) error {
	switch key {
	case "max_width", "max_height":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("must not be negative")
		}
		if key == "max_width" {
			p.MaxWidth = n
		} else {
			p.MaxHeight = n
		}
	case "quality":
		q, err := parseUnit(value)
		if err != nil {
			return err
		}
		p.Quality = q
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "crop":
		n.Crop = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

// parseSize reads "300x200". A bare number is used for both axes.
func parseSize(v string) (geom.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(v), "x")
	if !ok {
		hs = ws
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	if err != nil {
		return geom.Size{}, fmt.Errorf("invalid size %q", v)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err != nil {
		return geom.Size{}, fmt.Errorf("invalid size %q", v)
	}
	return geom.Size{W: w, H: h}, nil
}

func parseUnit(v string) (float64, error) {
	q, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if q <= 0 || q > 1 {
		return 0, fmt.Errorf("must be in (0, 1]")
	}
	return q, nil
}

// parseDuration accepts Go durations and bare milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		v = strconv.Itoa(ms) + "ms"
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}

// parseBorder reads CSS style borders such as "2px dashed #ddd".
func parseBorder(v string) (photoclip.Border, error) {
	fields := strings.Fields(v)
	if len(fields) != 3 {
		return photoclip.Border{}, fmt.Errorf("border must be \"<width>px <style> <color>\"")
	}
	w, err := strconv.Atoi(strings.TrimSuffix(fields[0], "px"))
	if err != nil || w < 0 {
		return photoclip.Border{}, fmt.Errorf("invalid border width %q", fields[0])
	}
	switch fields[1] {
	case "solid", "dashed", "dotted", "none":
	default:
		return photoclip.Border{}, fmt.Errorf("unknown border style %q", fields[1])
	}
	c, err := parseColor(fields[2])
	if err != nil {
		return photoclip.Border{}, err
	}
	return photoclip.Border{Width: w, Style: fields[1], Color: c}, nil
}

// parseColor parses #RGB, #RRGGBB and #RRGGBBAA.
func parseColor(s string) (color.RGBA, error) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 24),
			G: uint8((val >> 16) & 0xFF),
			B: uint8((val >> 8) & 0xFF),
			A: uint8(val & 0xFF),
		}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}
