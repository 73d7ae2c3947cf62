// Package config handles meshtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by Validate errors.
var ErrInvalid = errors.New("invalid config")

// Config holds all meshtool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Import  ImportConfig  `yaml:"import"`
	Export  ExportConfig  `yaml:"export"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ImportConfig holds settings applied when meshes are read.
type ImportConfig struct {
	// Shading is "file" to honour each object's "s" line, or "flat" or
	// "smooth" to override it. Empty means "file".
	Shading string `yaml:"shading"`
}

// ExportConfig holds settings applied when meshes are written.
type ExportConfig struct {
	Precision    int    `yaml:"precision"`     // Decimals per coordinate: 1-9, 0 for the writer default (6), -1 for shortest exact
	ObjectPrefix string `yaml:"object_prefix"` // Name stem for unnamed objects
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Import: ImportConfig{
			Shading: "file",
		},
		Export: ExportConfig{
			Precision:    6,
			ObjectPrefix: "object",
		},
	}
}

// Validate reports the first setting outside its allowed values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Import.Shading)) {
	case "", "file", "flat", "smooth":
	default:
		return fmt.Errorf("%w: import.shading %q", ErrInvalid, c.Import.Shading)
	}
	if c.Export.Precision < -1 || c.Export.Precision > 9 {
		return fmt.Errorf("%w: export.precision %d not in [-1, 9]", ErrInvalid, c.Export.Precision)
	}
	return nil
}
