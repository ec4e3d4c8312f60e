// Package config holds bbsim settings loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// Log controls diagnostic output on stderr.
	Log LogConfig `yaml:"log"`

	// Analysis tunes the block pipeline.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Render controls DOT output.
	Render RenderConfig `yaml:"render"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AnalysisConfig contains pipeline settings.
type AnalysisConfig struct {
	Workers  int    `yaml:"workers"`   // concurrent block metric workers; 0 = unbounded
	BaseAddr uint64 `yaml:"base_addr"` // load address for raw ARM64 input
	MaxSteps int    `yaml:"max_steps"` // ARM64 decode cap; 0 = decoder default
}

// RenderConfig contains DOT rendering settings.
type RenderConfig struct {
	Style    string `yaml:"style"`     // themed or lattice
	MaxLines int    `yaml:"max_lines"` // instruction lines per block label
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info"},
		Analysis: AnalysisConfig{Workers: 4},
		Render:   RenderConfig{Style: "themed", MaxLines: 12},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	if c.Analysis.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_steps must be >= 0, got %d", c.Analysis.MaxSteps))
	}
	switch c.Render.Style {
	case "themed", "lattice":
	default:
		errs = append(errs, fmt.Errorf("render.style must be themed or lattice, got %q", c.Render.Style))
	}
	if c.Render.MaxLines < 3 {
		errs = append(errs, fmt.Errorf("render.max_lines must be >= 3, got %d", c.Render.MaxLines))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level: unknown level %q", s)
}
