// Package config loads and validates the loopwatch TOML configuration.
// It covers detector tuning, extra classifier patterns, and the record
// sink used by the episode runner.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/strongdm/ai-loopwatch/pkg/loopwatch"
)

// Config is the on-disk configuration for a loopwatch deployment.
type Config struct {
	Detector Detector            `toml:"detector"`
	Patterns map[string][]string `toml:"patterns"`
	Sink     Sink                `toml:"sink"`
}

// Detector tunes the detection and escalation thresholds.
type Detector struct {
	WindowSize            int `toml:"window_size"`
	SameTypeWarnThreshold int `toml:"same_type_warn_threshold"`
	TotalWarnThreshold    int `toml:"total_warn_threshold"`
	RecoveryLineDelta     int `toml:"recovery_line_delta"`
}

// Sink selects where classified records are forwarded.
type Sink struct {
	// Kind is one of "none", "stderr", "sqlite".
	Kind string `toml:"kind"`

	// Path is the sqlite database path. Required when Kind is "sqlite".
	Path string `toml:"path"`

	// Verbose enables full record details on the stderr sink.
	Verbose bool `toml:"verbose"`
}

// classifiableCategories are the categories that accept extra patterns.
// The unknown category is a fallback and cannot be matched directly.
var classifiableCategories = map[string]bool{
	string(loopwatch.ErrorTypeIndentation): true,
	string(loopwatch.ErrorTypeSyntax):      true,
	string(loopwatch.ErrorTypeUndefined):   true,
	string(loopwatch.ErrorTypeImport):      true,
	string(loopwatch.ErrorTypeType):        true,
	string(loopwatch.ErrorTypeLogic):       true,
}

// Default returns the configuration the detector defaults assume.
func Default() Config {
	t := loopwatch.DefaultTuning()
	return Config{
		Detector: Detector{
			WindowSize:            t.WindowSize,
			SameTypeWarnThreshold: t.SameTypeWarnThreshold,
			TotalWarnThreshold:    t.TotalWarnThreshold,
			RecoveryLineDelta:     t.RecoveryLineDelta,
		},
		Sink: Sink{Kind: "stderr"},
	}
}

// Load reads a TOML config file, filling unset fields with defaults and
// validating the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks threshold ranges, pattern categories, and sink selection.
func (c Config) Validate() error {
	if c.Detector.WindowSize < 1 {
		return fmt.Errorf("detector.window_size must be >= 1, got %d", c.Detector.WindowSize)
	}
	if c.Detector.SameTypeWarnThreshold < 1 {
		return fmt.Errorf("detector.same_type_warn_threshold must be >= 1, got %d", c.Detector.SameTypeWarnThreshold)
	}
	if c.Detector.TotalWarnThreshold < 1 {
		return fmt.Errorf("detector.total_warn_threshold must be >= 1, got %d", c.Detector.TotalWarnThreshold)
	}
	if c.Detector.RecoveryLineDelta < 0 {
		return fmt.Errorf("detector.recovery_line_delta must be >= 0, got %d", c.Detector.RecoveryLineDelta)
	}

	for category := range c.Patterns {
		if !classifiableCategories[category] {
			return fmt.Errorf("patterns: unknown category %q", category)
		}
	}

	switch c.Sink.Kind {
	case "", "none", "stderr", "sqlite":
	default:
		return fmt.Errorf("sink.kind %q is not one of none, stderr, sqlite", c.Sink.Kind)
	}
	if c.Sink.Kind == "sqlite" && c.Sink.Path == "" {
		return fmt.Errorf("sink.path is required when sink.kind is sqlite")
	}

	return nil
}

// Tuning converts the config into detector tuning.
func (c Config) Tuning() loopwatch.Tuning {
	var extra map[loopwatch.ErrorType][]string
	if len(c.Patterns) > 0 {
		extra = make(map[loopwatch.ErrorType][]string, len(c.Patterns))
		for category, sources := range c.Patterns {
			extra[loopwatch.ErrorType(category)] = sources
		}
	}
	return loopwatch.Tuning{
		WindowSize:            c.Detector.WindowSize,
		SameTypeWarnThreshold: c.Detector.SameTypeWarnThreshold,
		TotalWarnThreshold:    c.Detector.TotalWarnThreshold,
		RecoveryLineDelta:     c.Detector.RecoveryLineDelta,
		ExtraPatterns:         extra,
	}
}
