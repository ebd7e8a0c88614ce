// Package config loads the server configuration from config.toml, an
// optional per-environment overlay and WEBPRINTER_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/database"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvWebprinterEnv             = "WEBPRINTER_ENV"
	EnvWebprinterShutdownTimeout = "WEBPRINTER_SHUTDOWN_TIMEOUT"
	EnvWebprinterVersion         = "WEBPRINTER_VERSION"
	EnvWebprinterLogLevel        = "WEBPRINTER_LOG_LEVEL"
	EnvWebprinterLogFormat       = "WEBPRINTER_LOG_FORMAT"
)

var databaseEnv = &database.Env{
	URL:             "WEBPRINTER_DB_DSN",
	Host:            "WEBPRINTER_DB_HOST",
	Port:            "WEBPRINTER_DB_PORT",
	Name:            "WEBPRINTER_DB_NAME",
	User:            "WEBPRINTER_DB_USER",
	Password:        "WEBPRINTER_DB_PASSWORD",
	SSLMode:         "WEBPRINTER_DB_SSL_MODE",
	MaxOpenConns:    "WEBPRINTER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "WEBPRINTER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "WEBPRINTER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "WEBPRINTER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "WEBPRINTER_STORAGE_CONTAINER_NAME",
	ConnectionString: "WEBPRINTER_STORAGE_CONNECTION_STRING",
}

// Config is the root configuration of the export service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Export          ExportConfig    `toml:"export"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
	LogFormat       string          `toml:"log_format"`
}

// Env returns WEBPRINTER_ENV, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvWebprinterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads config.toml when present, merges the overlay named by
// WEBPRINTER_ENV and finalizes every section. Without any file, defaults and
// environment variables supply the whole configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Parse decodes TOML data into a Config without finalizing it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Merge overwrites fields that are set in overlay, section by section.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Export.Merge(&overlay.Export)
}

// Finalize applies defaults, environment overrides and validation to every
// section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Export.Finalize(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvWebprinterShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvWebprinterVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvWebprinterLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvWebprinterLogFormat); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvWebprinterEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
