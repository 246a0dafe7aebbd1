package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// EnvPrefix prefixes the environment overrides of root keys, e.g.
// PHOTOCLIP_OUTPUT_TYPE.
const EnvPrefix = "PHOTOCLIP_"

var envKeys = []string{
	"size", "adaptive", "output_size", "output_type", "output_quality",
	"max_zoom", "rotate_free", "bounce_time", "origin", "save_dir",
}

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the configuration file if there is one. Rejected values are
// returned as an error next to a usable Config.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".photocliprc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	return l.existing(l.UserConfigPath())
}

// UserConfigPath is where `config save` writes.
func (l *Loader) UserConfigPath() string {
	home, _ := os.UserHomeDir()
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "photoclip", "config.rc")
	}
	return filepath.Join(home, ".config", "photoclip", "config.rc")
}

func (l *Loader) existing(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// ApplyEnv overrides root keys from the environment.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	for _, key := range envKeys {
		v, ok := lookup(EnvPrefix + strings.ToUpper(key))
		if !ok {
			continue
		}
		if err := Set(cfg, "", key, strings.TrimSpace(v)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Save writes cfg to path, creating the directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(cfg.String()), 0o644)
}
