package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
	assert.Equal(t, OrderingLastCompleted, cfg.Import.Ordering)
	assert.Equal(t, ",", cfg.Import.DefaultDelimiter)
	assert.True(t, cfg.Import.ClearOnFinish)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFilesTOML(t *testing.T) {
	path := writeConfig(t, "subimport.toml", `
[api]
base_url = "https://lists.example.com"
username = "importer"
token = "secret"
timeout = "5s"

[import]
ordering = "last_issued"
max_consecutive_failures = 5
default_delimiter = ";"

[logging]
level = "debug"
`)

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "https://lists.example.com", cfg.API.BaseURL)
	assert.Equal(t, "importer", cfg.API.Username)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, 10, cfg.API.RateLimit, "unset values keep their defaults")
	assert.Equal(t, OrderingLastIssued, cfg.Import.Ordering)
	assert.Equal(t, 5, cfg.Import.MaxConsecutiveFailures)
	assert.Equal(t, ";", cfg.Import.DefaultDelimiter)
	assert.Equal(t, "debug", cfg.Logging.Level)

	timeout, err := cfg.API.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadFromFilesYAMLOverridesTOML(t *testing.T) {
	base := writeConfig(t, "base.toml", `
[api]
base_url = "https://base.example.com"
username = "base"
`)
	override := writeConfig(t, "override.yaml", `
api:
  base_url: https://override.example.com
logging:
  output: [stdout, file]
`)

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", cfg.API.BaseURL)
	assert.Equal(t, "base", cfg.API.Username)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
}

func TestLoadFromFilesErrors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	broken := writeConfig(t, "broken.toml", "[api\nbase_url = ")
	_, err = LoadFromFiles(broken)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SUBIMPORT_API_URL", "http://env.example.com")
	t.Setenv("SUBIMPORT_API_TOKEN", "env-token")
	t.Setenv("SUBIMPORT_API_RATE_LIMIT", "3")
	t.Setenv("SUBIMPORT_ORDERING", OrderingLastIssued)
	t.Setenv("SUBIMPORT_LOG_OUTPUT", "file, stdout")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "http://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, 3, cfg.API.RateLimit)
	assert.Equal(t, OrderingLastIssued, cfg.Import.Ordering)
	assert.Equal(t, []string{"file", "stdout"}, cfg.Logging.Output)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, "")
	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)

	ApplyFlagOverrides(cfg, "http://flag.example.com")
	assert.Equal(t, "http://flag.example.com", cfg.API.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad ordering", func(c *Config) { c.Import.Ordering = "random" }},
		{"missing url", func(c *Config) { c.API.BaseURL = "" }},
		{"long delimiter", func(c *Config) { c.Import.DefaultDelimiter = "::" }},
		{"negative failures", func(c *Config) { c.Import.MaxConsecutiveFailures = -1 }},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = "0s" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad output", func(c *Config) { c.Logging.Output = []string{"syslog"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
