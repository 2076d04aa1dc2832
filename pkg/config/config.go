package config

import (
	"time"

	"github.com/sdejongh/sidediff/pkg/compare"
	"github.com/sdejongh/sidediff/pkg/models"
	"github.com/sdejongh/sidediff/pkg/ratelimit"
	"github.com/sdejongh/sidediff/pkg/storage"
)

// Config represents the application configuration
type Config struct {
	Compare CompareConfig `yaml:"compare"`
	Remote  RemoteConfig  `yaml:"remote"`
	Serve   ServeConfig   `yaml:"serve"`
	Batch   BatchConfig   `yaml:"batch"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// CompareConfig holds engine settings
type CompareConfig struct {
	TabWidth   int    `yaml:"tab_width"`
	DrainTails bool   `yaml:"drain_tails"` // Align the tail of the longer text instead of dropping it
	CharUnit   string `yaml:"char_unit"`   // "byte" or "rune"
}

// RemoteConfig holds counterpart host settings
type RemoteConfig struct {
	URL            string        `yaml:"url"`
	Secret         string        `yaml:"secret"`
	Timeout        time.Duration `yaml:"timeout"`
	BandwidthLimit string        `yaml:"bandwidth_limit"` // e.g. "10M", empty = unlimited
	MaxBytes       int64         `yaml:"max_bytes"`
}

// ServeConfig holds settings for serving texts to a counterpart
type ServeConfig struct {
	Listen  string        `yaml:"listen"`
	Root    string        `yaml:"root"`
	MaxSkew time.Duration `yaml:"max_skew"`
}

// BatchConfig holds batch comparison settings
type BatchConfig struct {
	MaxWorkers int      `yaml:"max_workers"`
	Exclude    []string `yaml:"exclude"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "html", "page", "json" or "text"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	File       string `yaml:"file"`   // Log file path (empty = stderr)
	MaxSize    int64  `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Compare: CompareConfig{
			TabWidth:   compare.DefaultTabWidth,
			DrainTails: !compare.LegacyTruncation,
			CharUnit:   string(compare.CharUnitByte),
		},
		Remote: RemoteConfig{
			Timeout:  storage.DefaultTimeout,
			MaxBytes: storage.DefaultMaxBytes,
		},
		Serve: ServeConfig{
			Listen:  ":8790",
			Root:    ".",
			MaxSkew: storage.DefaultMaxSkew,
		},
		Batch: BatchConfig{
			MaxWorkers: 4,
			Exclude: []string{
				"*.tmp",
				".git/",
				"node_modules/",
			},
		},
		Output: OutputConfig{
			Format:   "html",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "text",
			Level:      "warn",
			File:       "",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 5,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Compare.TabWidth < 0 {
		return &models.ValidationError{
			Field:   "compare.tab_width",
			Message: "cannot be negative",
		}
	}

	if !compare.CharUnit(c.Compare.CharUnit).Valid() {
		return &models.ValidationError{
			Field:   "compare.char_unit",
			Message: "must be 'byte' or 'rune'",
		}
	}

	if _, err := ratelimit.ParseRate(c.Remote.BandwidthLimit); err != nil {
		return &models.ValidationError{
			Field:   "remote.bandwidth_limit",
			Message: err.Error(),
		}
	}

	if c.Remote.Timeout < 0 {
		return &models.ValidationError{
			Field:   "remote.timeout",
			Message: "cannot be negative",
		}
	}

	if c.Remote.MaxBytes < 0 {
		return &models.ValidationError{
			Field:   "remote.max_bytes",
			Message: "cannot be negative",
		}
	}

	if c.Batch.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "batch.max_workers",
			Message: "must be at least 1",
		}
	}

	validFormats := map[string]bool{"html": true, "page": true, "json": true, "text": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'html', 'page', 'json' or 'text'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// CompareOptions converts the compare section into engine options
func (c *Config) CompareOptions() []compare.Option {
	return []compare.Option{
		compare.WithTabWidth(c.Compare.TabWidth),
		compare.WithCharUnit(compare.CharUnit(c.Compare.CharUnit)),
		compare.WithDrainTails(c.Compare.DrainTails),
	}
}
