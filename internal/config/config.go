// Package config loads drawstorm configuration from a TOML file with
// DRAWSTORM_ environment overrides.
//
// A missing file is not an error; defaults apply. Precedence, lowest first:
// defaults, file, environment.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/drawstorm/internal/logging"
)

// Strategy selects how undo history is scoped.
type Strategy string

// History strategies.
const (
	// StrategyDocument keeps one timeline for the whole document.
	StrategyDocument Strategy = "document"
	// StrategyPage keeps one timeline per page.
	StrategyPage Strategy = "page"
)

// Config is the complete drawstorm configuration.
type Config struct {
	History   HistoryConfig   `toml:"history"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripting ScriptingConfig `toml:"scripting"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	// Strategy is "document" or "page".
	Strategy Strategy `toml:"strategy"`
	// MaxEntries bounds each timeline; 0 means unbounded.
	MaxEntries int `toml:"max_entries"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// ScriptingConfig configures the Lua scripting surface.
type ScriptingConfig struct {
	// Enabled allows running edit scripts.
	Enabled bool `toml:"enabled"`
	// Capabilities lists the API modules scripts may load.
	Capabilities []string `toml:"capabilities"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			Strategy: StrategyDocument,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Scripting: ScriptingConfig{
			Enabled:      true,
			Capabilities: []string{"history", "scene"},
		},
	}
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	switch c.History.Strategy {
	case StrategyDocument, StrategyPage:
	default:
		errs = append(errs, &ValidationError{
			Path:    "history.strategy",
			Value:   c.History.Strategy,
			Message: `must be "document" or "page"`,
		})
	}
	if c.History.MaxEntries < 0 {
		errs = append(errs, &ValidationError{
			Path:    "history.max_entries",
			Value:   c.History.MaxEntries,
			Message: "must not be negative",
		})
	}
	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, c.Logging.Level) {
		errs = append(errs, &ValidationError{
			Path:    "logging.level",
			Value:   c.Logging.Level,
			Message: "must be debug, info, warn or error",
		})
	}
	for _, capability := range c.Scripting.Capabilities {
		if capability != "history" && capability != "scene" {
			errs = append(errs, &ValidationError{
				Path:    "scripting.capabilities",
				Value:   capability,
				Message: `must be "history" or "scene"`,
			})
		}
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// String returns a short summary for diagnostics.
func (c *Config) String() string {
	return fmt.Sprintf("history=%s max_entries=%d log=%s scripting=%t",
		c.History.Strategy, c.History.MaxEntries, c.Logging.Level, c.Scripting.Enabled)
}
