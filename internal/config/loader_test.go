package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvctl.io/kvctl/internal/config"
	"kvctl.io/kvctl/internal/logging"
)

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range []string{"KVCTL_CONFIG", "KVCTL_ADDR", "KVCTL_TIMEOUT", "KVCTL_LOG_LEVEL", "KVCTL_LOG_FORMAT", "KVCTL_OUTPUT"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnvVars(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.New(), cfg)
	assert.Equal(t, "http://127.0.0.1:9379", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, config.OutputTable, cfg.Output)
}

func TestLoad_File(t *testing.T) {
	clearConfigEnvVars(t)
	path := writeConfig(t, `
addr: http://10.0.0.1:9379
timeout: 5s
log_level: debug
output: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:9379", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.OutputJSON, cfg.Output)
	assert.Equal(t, "console", cfg.LogFormat, "unset keys keep their defaults")
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearConfigEnvVars(t)
	path := writeConfig(t, "output: yaml\n")
	t.Setenv("KVCTL_CONFIG", path)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.OutputYAML, cfg.Output)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearConfigEnvVars(t)
	path := writeConfig(t, "addr: http://from-file:9379\nlog_format: console\n")
	t.Setenv("KVCTL_ADDR", "http://from-env:9379")
	t.Setenv("KVCTL_LOG_FORMAT", "json")
	t.Setenv("KVCTL_TIMEOUT", "2s")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:9379", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr error
	}{
		{
			name:    "missing file",
			env:     map[string]string{"KVCTL_CONFIG": "/does/not/exist.yaml"},
			wantErr: config.ErrLoadConfig,
		},
		{
			name:    "malformed yaml",
			file:    "addr: [unterminated\n",
			wantErr: config.ErrLoadConfig,
		},
		{
			name:    "bad output",
			env:     map[string]string{"KVCTL_OUTPUT": "xml"},
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "bad log level",
			env:     map[string]string{"KVCTL_LOG_LEVEL": "loud"},
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "bad timeout",
			env:     map[string]string{"KVCTL_TIMEOUT": "soon"},
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnvVars(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := config.Load(path)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "empty addr", mutate: func(c *config.Config) { c.Addr = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *config.Config) { c.Timeout = 0 }, wantErr: true},
		{name: "json logs", mutate: func(c *config.Config) { c.LogFormat = "json" }},
		{name: "text logs", mutate: func(c *config.Config) { c.LogFormat = "text" }, wantErr: true},
		{name: "yaml output", mutate: func(c *config.Config) { c.Output = config.OutputYAML }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_LoggingConfig(t *testing.T) {
	cfg := config.New()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	logCfg := cfg.LoggingConfig()
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, logging.FormatJSON, logCfg.Format)
	assert.Equal(t, []string{"stderr"}, logCfg.OutputPaths)
}
