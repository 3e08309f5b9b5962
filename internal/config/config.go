// Package config loads kvctl settings from defaults, a YAML file and
// KVCTL_ environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"kvctl.io/kvctl/internal/logging"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Output formats accepted by the CLI.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config holds the CLI settings.
type Config struct {
	// Addr is the controller root URL.
	Addr string `koanf:"addr"`

	// Timeout bounds each API call.
	Timeout time.Duration `koanf:"timeout"`

	// LogLevel is the minimum zap level written to stderr.
	LogLevel string `koanf:"log_level"`

	// LogFormat is console or json.
	LogFormat string `koanf:"log_format"`

	// Output is table, json or yaml.
	Output string `koanf:"output"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		Addr:      "http://127.0.0.1:9379",
		Timeout:   30 * time.Second,
		LogLevel:  "warn",
		LogFormat: string(logging.FormatConsole),
		Output:    OutputTable,
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be console or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: output must be table, json or yaml, got %q", ErrInvalidConfig, c.Output)
	}
	return nil
}

// LoggingConfig derives the logger settings. Logs always go to stderr.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = logging.Format(c.LogFormat)
	return cfg
}
