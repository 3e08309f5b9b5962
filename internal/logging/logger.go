package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoding.
type Format string

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"

	// FormatConsole writes human-readable lines with colored levels.
	FormatConsole Format = "console"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level is the minimum enabled logging level (debug, info, warn, error).
	Level string

	// Format determines the log encoding (json or console).
	Format Format

	// OutputPaths is a list of URLs or file paths to write logging output to.
	// Command output goes to stdout, so the CLI logs to stderr.
	OutputPaths []string

	// DisableCaller disables automatic caller information.
	DisableCaller bool
}

// DefaultConfig returns the configuration used by the CLI when nothing is set.
func DefaultConfig() Config {
	return Config{
		Level:         "warn",
		Format:        FormatConsole,
		OutputPaths:   []string{"stderr"},
		DisableCaller: true,
	}
}

// NewLogger creates a new zap logger based on the provided configuration.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	format := cfg.Format
	if format == "" {
		format = FormatConsole
	}
	if format != FormatJSON && format != FormatConsole {
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	var encoderConfig zapcore.EncoderConfig
	if format == FormatJSON {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       format == FormatConsole,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: true,
		Encoding:          string(format),
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

// ParseLevel converts a string level to zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	return zapcore.ParseLevel(strings.ToLower(level))
}
