package config

import (
	"github.com/sdejongh/dupnorris/pkg/cache"
	"github.com/sdejongh/dupnorris/pkg/fingerprint"
	"github.com/sdejongh/dupnorris/pkg/gate"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Cache       CacheConfig       `yaml:"cache"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// CacheConfig holds fingerprint cache settings
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	FileName string `yaml:"file_name"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	Concurrency int    `yaml:"concurrency"`
	BufferSize  int    `yaml:"buffer_size"`
	ReadLimit   string `yaml:"read_limit"` // e.g. "10M", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Progress     bool   `yaml:"progress"` // Show progress bars
	Quiet        bool   `yaml:"quiet"`    // Suppress non-error output
	ReportFile   string `yaml:"report_file"`
	ReportFormat string `yaml:"report_format"` // "human" or "json"
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled:  true,
			FileName: cache.DefaultFileName,
		},
		Performance: PerformanceConfig{
			Concurrency: gate.DefaultLimit,
			BufferSize:  fingerprint.DefaultBufferSize,
		},
		Output: OutputConfig{
			Progress:     true,
			Quiet:        false,
			ReportFile:   output.DefaultReportFile,
			ReportFormat: "human",
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
		Exclude: []string{},
	}
}

// ReadLimitBytes returns the parsed read limit in bytes per second (0 = unlimited)
func (c *Config) ReadLimitBytes() (int64, error) {
	return ratelimit.ParseRate(c.Performance.ReadLimit)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Cache.FileName == "" {
		return &models.ValidationError{
			Field:   "cache.file_name",
			Message: "must not be empty",
		}
	}

	if c.Performance.Concurrency < 1 {
		return &models.ValidationError{
			Field:   "performance.concurrency",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 4096 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 4096 bytes",
		}
	}

	if _, err := c.ReadLimitBytes(); err != nil {
		return &models.ValidationError{
			Field:   "performance.read_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.ReportFormat] {
		return &models.ValidationError{
			Field:   "output.report_format",
			Message: "must be 'human' or 'json'",
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
