package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Ordering policies for applying poll responses that resolve out of order.
const (
	OrderingLastCompleted = "last_completed" // whichever response resolves last wins
	OrderingLastIssued    = "last_issued"    // responses older than the newest applied one are dropped
)

// Config represents the application configuration
type Config struct {
	API     APIConfig     `toml:"api" yaml:"api"`
	Import  ImportConfig  `toml:"import" yaml:"import"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// APIConfig describes the list manager API the importer talks to
type APIConfig struct {
	BaseURL   string `toml:"base_url" yaml:"base_url" validate:"required,url"` // e.g. "http://localhost:9000"
	Username  string `toml:"username" yaml:"username"`                         // API user (basic auth)
	Token     string `toml:"token" yaml:"token"`                               // API token or password
	Timeout   string `toml:"timeout" yaml:"timeout"`                           // HTTP timeout as duration string (default: "30s")
	RateLimit int    `toml:"rate_limit" yaml:"rate_limit" validate:"gte=0"`    // Requests per second, 0 disables limiting (default: 10)
}

// ImportConfig contains import job behaviour
type ImportConfig struct {
	Ordering               string `toml:"ordering" yaml:"ordering" validate:"oneof=last_completed last_issued"`
	MaxConsecutiveFailures int    `toml:"max_consecutive_failures" yaml:"max_consecutive_failures" validate:"gte=0"` // 0 disables the degraded warning
	DefaultDelimiter       string `toml:"default_delimiter" yaml:"default_delimiter" validate:"len=1"`
	OverrideStatus         bool   `toml:"override_status" yaml:"override_status"`
	ClearOnFinish          bool   `toml:"clear_on_finish" yaml:"clear_on_finish"` // Acknowledge finished/failed jobs automatically in the CLI
}

// LoggingConfig controls arbor writers
type LoggingConfig struct {
	Level      string   `toml:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output" yaml:"output" validate:"dive,oneof=stdout console file"`
	TimeFormat string   `toml:"time_format" yaml:"time_format"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:9000",
			Timeout:   "30s",
			RateLimit: 10,
		},
		Import: ImportConfig{
			Ordering:         OrderingLastCompleted,
			DefaultDelimiter: ",",
			ClearOnFinish:    true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFile loads configuration from a single file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> environment variables.
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies SUBIMPORT_* environment variables
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SUBIMPORT_API_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("SUBIMPORT_API_USERNAME"); v != "" {
		config.API.Username = v
	}
	if v := os.Getenv("SUBIMPORT_API_TOKEN"); v != "" {
		config.API.Token = v
	}
	if v := os.Getenv("SUBIMPORT_API_TIMEOUT"); v != "" {
		config.API.Timeout = v
	}
	if v := os.Getenv("SUBIMPORT_API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.API.RateLimit = n
		}
	}

	if v := os.Getenv("SUBIMPORT_ORDERING"); v != "" {
		config.Import.Ordering = v
	}
	if v := os.Getenv("SUBIMPORT_MAX_CONSECUTIVE_FAILURES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Import.MaxConsecutiveFailures = n
		}
	}

	if v := os.Getenv("SUBIMPORT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("SUBIMPORT_LOG_OUTPUT"); v != "" {
		outputs := []string{}
		for _, o := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flags (highest priority)
func ApplyFlagOverrides(config *Config, baseURL string) {
	if baseURL != "" {
		config.API.BaseURL = baseURL
	}
}

// Validate checks the configuration using validator struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.API.TimeoutDuration(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// TimeoutDuration parses the API timeout, defaulting to 30s when unset
func (a APIConfig) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("failed to parse api timeout %q: %w", a.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("api timeout must be positive, got %s", a.Timeout)
	}
	return d, nil
}
