// Package config loads focusguard settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/focus"
	"github.com/mj1618/focusguard/internal/platform"
	"github.com/mj1618/focusguard/internal/signal"
	"gopkg.in/yaml.v3"
)

// Marker configures the switch marker file.
type Marker struct {
	Path     string `yaml:"path"`
	CloseTag string `yaml:"close_tag"`
	MaxBytes int    `yaml:"max_bytes"`
}

// Heuristics holds the window-id distance thresholds.
type Heuristics struct {
	RelatedIDDistance      uint32 `yaml:"related_id_distance"`
	NewWindowChildDistance uint32 `yaml:"new_window_child_distance"`
}

// Library lists the two candidate windowing library installs.
type Library struct {
	Native string `yaml:"native"`
	Compat string `yaml:"compat"`
}

// Config is the whole configuration file.
type Config struct {
	// Display is the X display; empty means $DISPLAY.
	Display    string     `yaml:"display,omitempty"`
	LogLevel   string     `yaml:"log_level,omitempty"`
	Marker     Marker     `yaml:"marker"`
	Heuristics Heuristics `yaml:"heuristics"`
	Library    Library    `yaml:"library"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Marker: Marker{
			Path:     signal.DefaultMarkerPath,
			CloseTag: signal.DefaultCloseTag,
			MaxBytes: signal.DefaultMaxBytes,
		},
		Heuristics: Heuristics{
			RelatedIDDistance:      focus.DefaultRelatedFallbackDistance,
			NewWindowChildDistance: focus.DefaultNewWindowChildDistance,
		},
		Library: Library{
			Native: platform.DefaultNativeLibrary,
			Compat: platform.DefaultCompatLibrary,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/focusguard/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "focusguard", "config.yaml")
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("unable to open config %q: %w", path, err)
	}
	defer f.Close()

	if err := cfg.Decode(f); err != nil {
		return cfg, fmt.Errorf("unable to parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the current values and validates the result.
func (cfg *Config) Decode(r io.Reader) error {
	err := yaml.NewDecoder(r).Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unable to unserialize data: %w", err)
	}
	return cfg.Validate()
}

// Validate checks that the values are usable.
func (cfg Config) Validate() error {
	if cfg.Marker.Path == "" {
		return fmt.Errorf("marker.path must not be empty")
	}
	if cfg.Marker.CloseTag == "" {
		return fmt.Errorf("marker.close_tag must not be empty")
	}
	if cfg.Marker.MaxBytes <= 0 {
		return fmt.Errorf("marker.max_bytes must be positive, got %d", cfg.Marker.MaxBytes)
	}
	if _, err := cfg.LoggerLevel(logger.LevelWarning); err != nil {
		return err
	}
	return nil
}

// LoggerLevel parses log_level; an unset level yields def.
func (cfg Config) LoggerLevel(def logger.Level) (logger.Level, error) {
	s := strings.TrimSpace(cfg.LogLevel)
	if s == "" {
		return def, nil
	}
	var l logger.Level
	if err := l.Set(s); err != nil || l == logger.LevelUndefined {
		return def, fmt.Errorf("unexpected logger level '%s'", s)
	}
	return l, nil
}

// Write serializes the configuration as YAML.
func (cfg Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

// FocusOptions returns the arbitration heuristics.
func (cfg Config) FocusOptions() focus.Options {
	return focus.Options{
		RelatedFallbackDistance: cfg.Heuristics.RelatedIDDistance,
		NewWindowChildDistance:  cfg.Heuristics.NewWindowChildDistance,
	}
}

// LibraryPolicy returns the library resolution policy.
func (cfg Config) LibraryPolicy() platform.LibraryPolicy {
	return platform.LibraryPolicy{
		Native: cfg.Library.Native,
		Compat: cfg.Library.Compat,
	}
}

// FileMarker returns the marker reader described by the configuration.
func (cfg Config) FileMarker() *signal.FileMarker {
	return &signal.FileMarker{
		Path:     cfg.Marker.Path,
		CloseTag: cfg.Marker.CloseTag,
		MaxBytes: cfg.Marker.MaxBytes,
	}
}
