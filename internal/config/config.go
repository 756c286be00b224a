// Package config loads the tariffwatch service configuration: a YAML file
// layered over defaults, then environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tariffwatch/internal/alert"
	"github.com/ppiankov/tariffwatch/internal/kvstore"
	"github.com/ppiankov/tariffwatch/internal/logging"
	"github.com/ppiankov/tariffwatch/internal/ratelimit"
)

// Environment variables that override file values.
const (
	EnvDataDir   = "TARIFFWATCH_DATA_DIR"
	EnvListen    = "TARIFFWATCH_LISTEN"
	EnvLogLevel  = "TARIFFWATCH_LOG_LEVEL"
	EnvLogFormat = "TARIFFWATCH_LOG_FORMAT"
)

// Defaults.
const (
	DefaultDataDir       = "data"
	DefaultListen        = "127.0.0.1:9750"
	DefaultMetricsListen = "127.0.0.1:9751"
	DefaultRateRequests  = 60
	DefaultRateWindow    = time.Minute
)

// Config is the full service configuration.
type Config struct {
	DataDir   string                    `yaml:"data_dir"`
	Storage   StorageConfig             `yaml:"storage"`
	AuditLog  string                    `yaml:"audit_log"`
	Policy    string                    `yaml:"policy"`
	Server    ServerConfig              `yaml:"server"`
	Log       LogConfig                 `yaml:"log"`
	RateLimit ratelimit.RateLimitConfig `yaml:"rate_limit"`
	Alerts    []alert.AlertConfig       `yaml:"alerts"`
}

// StorageConfig selects the ticket backend.
// Location defaults to <data_dir>/reviews (file) or <data_dir>/reviews.db (sqlite).
type StorageConfig struct {
	Backend  string `yaml:"backend"`
	Location string `yaml:"location"`
}

// ServerConfig holds network listeners. An empty MetricsListen disables /metrics.
type ServerConfig struct {
	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metrics_listen"`
	ReloadPolicy  bool   `yaml:"reload_policy"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Storage: StorageConfig{Backend: kvstore.BackendFile},
		Server: ServerConfig{
			Listen:        DefaultListen,
			MetricsListen: DefaultMetricsListen,
			ReloadPolicy:  true,
		},
		Log: LogConfig{Level: "info", Format: logging.FormatText},
		RateLimit: ratelimit.RateLimitConfig{
			"classify": {MaxRequests: DefaultRateRequests, Window: DefaultRateWindow},
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates. A missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
}

// Validate checks field values. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	switch c.Storage.Backend {
	case "", kvstore.BackendFile, kvstore.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q: must be %q or %q",
			c.Storage.Backend, kvstore.BackendFile, kvstore.BackendSQLite))
	}
	if c.Log.Level != "" && !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q: must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "", logging.FormatJSON, logging.FormatText:
	default:
		errs = append(errs, fmt.Errorf("log.format %q: must be json or text", c.Log.Format))
	}
	for op, l := range c.RateLimit {
		if l != nil && (l.MaxRequests < 0 || l.Window < 0) {
			errs = append(errs, fmt.Errorf("rate_limit.%s: values must not be negative", op))
		}
	}
	for i, a := range c.Alerts {
		if a.URL == "" {
			errs = append(errs, fmt.Errorf("alerts[%d]: url must not be empty", i))
		}
	}
	return errors.Join(errs...)
}

// StorageBackend returns the configured backend name.
func (c *Config) StorageBackend() string {
	if c.Storage.Backend == "" {
		return kvstore.BackendFile
	}
	return c.Storage.Backend
}

// StorageLocation returns the ticket store directory or database file.
func (c *Config) StorageLocation() string {
	if c.Storage.Location != "" {
		return c.Storage.Location
	}
	if c.StorageBackend() == kvstore.BackendSQLite {
		return filepath.Join(c.DataDir, "reviews.db")
	}
	return filepath.Join(c.DataDir, "reviews")
}

// AuditLogPath returns the audit trail file path.
func (c *Config) AuditLogPath() string {
	if c.AuditLog != "" {
		return c.AuditLog
	}
	return filepath.Join(c.DataDir, "audit", "audit_trail.jsonl")
}
