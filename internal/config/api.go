package config

import (
	"fmt"
	"os"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/formatting"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/middleware"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/pagination"
)

const (
	EnvAPIBasePath       = "WEBPRINTER_API_BASE_PATH"
	EnvAPIMaxUploadSize  = "WEBPRINTER_API_MAX_UPLOAD_SIZE"
	EnvAPIMaxRequestSize = "WEBPRINTER_API_MAX_REQUEST_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "WEBPRINTER_CORS_ENABLED",
	Origins:          "WEBPRINTER_CORS_ORIGINS",
	AllowedMethods:   "WEBPRINTER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "WEBPRINTER_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "WEBPRINTER_CORS_EXPOSED_HEADERS",
	AllowCredentials: "WEBPRINTER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "WEBPRINTER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "WEBPRINTER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "WEBPRINTER_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, body limits, CORS and pagination settings.
type APIConfig struct {
	BasePath string `toml:"base_path"`
	// MaxUploadSize limits multipart PDF uploads.
	MaxUploadSize string `toml:"max_upload_size"`
	// MaxRequestSize limits JSON bodies, which may carry an inline canvas.
	MaxRequestSize string                `toml:"max_request_size"`
	CORS           middleware.CORSConfig `toml:"cors"`
	Pagination     pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// MaxRequestSizeBytes returns MaxRequestSize in bytes.
func (c *APIConfig) MaxRequestSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxRequestSize)
	return size
}

// Finalize applies defaults, environment overrides and validation to the API
// config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites fields that are set in overlay, including nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MaxRequestSize != "" {
		c.MaxRequestSize = overlay.MaxRequestSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
	if c.MaxRequestSize == "" {
		c.MaxRequestSize = "25MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIMaxRequestSize); v != "" {
		c.MaxRequestSize = v
	}
}

func (c *APIConfig) validate() error {
	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	} else if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	if size, err := formatting.ParseBytes(c.MaxRequestSize); err != nil {
		return fmt.Errorf("invalid max_request_size: %w", err)
	} else if size <= 0 {
		return fmt.Errorf("max_request_size must be positive")
	}
	return nil
}
