package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/formatting"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/geometry"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/proofing"
)

const (
	EnvExportArchive          = "WEBPRINTER_EXPORT_ARCHIVE"
	EnvExportPaddingPx        = "WEBPRINTER_EXPORT_PASTEBOARD_PADDING_PX"
	EnvExportDefaultDPI       = "WEBPRINTER_EXPORT_DEFAULT_DPI"
	EnvExportVectorMultiplier = "WEBPRINTER_EXPORT_VECTOR_MULTIPLIER"
	EnvExportFetchTimeout     = "WEBPRINTER_EXPORT_FETCH_TIMEOUT"
	EnvExportMaxFetchSize     = "WEBPRINTER_EXPORT_MAX_FETCH_SIZE"
	EnvExportRateLimit        = "WEBPRINTER_EXPORT_RATE_LIMIT"
	EnvExportRateBurst        = "WEBPRINTER_EXPORT_RATE_BURST"
	EnvExportInputProfileURL  = "WEBPRINTER_EXPORT_INPUT_PROFILE_URL"
	EnvExportMaxRasterPixels  = "WEBPRINTER_EXPORT_MAX_RASTER_PIXELS"
)

// ExportConfig tunes the export pipelines.
type ExportConfig struct {
	// Archive keeps every produced file in blob storage for later download.
	Archive             bool    `toml:"archive"`
	PasteboardPaddingPx float64 `toml:"pasteboard_padding_px"`
	DefaultDPI          int     `toml:"default_dpi"`
	VectorMultiplier    float64 `toml:"vector_multiplier"`
	MaxRasterPixels     int64   `toml:"max_raster_pixels"`
	// FetchTimeout bounds each PDF or profile download. Empty means the
	// request context alone decides.
	FetchTimeout string `toml:"fetch_timeout"`
	MaxFetchSize string `toml:"max_fetch_size"`
	// RateLimit is the sustained number of exports per second the server
	// accepts. Zero disables throttling.
	RateLimit       float64            `toml:"rate_limit"`
	RateBurst       int                `toml:"rate_burst"`
	InputProfileURL string             `toml:"input_profile_url"`
	Profiles        []proofing.Profile `toml:"profiles"`
}

// FetchTimeoutDuration returns FetchTimeout as a time.Duration, zero when
// unset.
func (c *ExportConfig) FetchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.FetchTimeout)
	return d
}

// MaxFetchSizeBytes returns MaxFetchSize in bytes.
func (c *ExportConfig) MaxFetchSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxFetchSize)
	return size
}

// Finalize applies defaults, environment overrides and validation.
func (c *ExportConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields that are set in overlay. Archive applies only
// when the overlay enables it; a non-empty Profiles list replaces the base.
func (c *ExportConfig) Merge(overlay *ExportConfig) {
	if overlay.Archive {
		c.Archive = true
	}
	if overlay.PasteboardPaddingPx > 0 {
		c.PasteboardPaddingPx = overlay.PasteboardPaddingPx
	}
	if overlay.DefaultDPI > 0 {
		c.DefaultDPI = overlay.DefaultDPI
	}
	if overlay.VectorMultiplier > 0 {
		c.VectorMultiplier = overlay.VectorMultiplier
	}
	if overlay.MaxRasterPixels > 0 {
		c.MaxRasterPixels = overlay.MaxRasterPixels
	}
	if overlay.FetchTimeout != "" {
		c.FetchTimeout = overlay.FetchTimeout
	}
	if overlay.MaxFetchSize != "" {
		c.MaxFetchSize = overlay.MaxFetchSize
	}
	if overlay.RateLimit > 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.RateBurst > 0 {
		c.RateBurst = overlay.RateBurst
	}
	if overlay.InputProfileURL != "" {
		c.InputProfileURL = overlay.InputProfileURL
	}
	if len(overlay.Profiles) > 0 {
		c.Profiles = overlay.Profiles
	}
}

func (c *ExportConfig) loadDefaults() {
	if c.PasteboardPaddingPx <= 0 {
		c.PasteboardPaddingPx = geometry.PasteboardPaddingPx
	}
	if c.DefaultDPI <= 0 {
		c.DefaultDPI = 300
	}
	if c.VectorMultiplier <= 0 {
		c.VectorMultiplier = 300.0 / 96.0
	}
	if c.MaxRasterPixels <= 0 {
		c.MaxRasterPixels = 100_000_000
	}
	if c.MaxFetchSize == "" {
		c.MaxFetchSize = "200MB"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 2
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 5
	}
	if len(c.Profiles) == 0 {
		c.Profiles = proofing.DefaultProfiles
	}
}

func (c *ExportConfig) loadEnv() {
	if v := os.Getenv(EnvExportArchive); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Archive = b
		}
	}
	if v := os.Getenv(EnvExportPaddingPx); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.PasteboardPaddingPx = f
		}
	}
	if v := os.Getenv(EnvExportDefaultDPI); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultDPI = n
		}
	}
	if v := os.Getenv(EnvExportVectorMultiplier); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.VectorMultiplier = f
		}
	}
	if v := os.Getenv(EnvExportMaxRasterPixels); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxRasterPixels = n
		}
	}
	if v := os.Getenv(EnvExportFetchTimeout); v != "" {
		c.FetchTimeout = v
	}
	if v := os.Getenv(EnvExportMaxFetchSize); v != "" {
		c.MaxFetchSize = v
	}
	if v := os.Getenv(EnvExportRateLimit); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	if v := os.Getenv(EnvExportRateBurst); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv(EnvExportInputProfileURL); v != "" {
		c.InputProfileURL = v
	}
}

func (c *ExportConfig) validate() error {
	if c.PasteboardPaddingPx <= 0 {
		return fmt.Errorf("pasteboard_padding_px must be positive")
	}
	if c.DefaultDPI < 72 || c.DefaultDPI > 1200 {
		return fmt.Errorf("default_dpi %d outside 72..1200", c.DefaultDPI)
	}
	if c.VectorMultiplier <= 0 {
		return fmt.Errorf("vector_multiplier must be positive")
	}
	if c.MaxRasterPixels <= 0 {
		return fmt.Errorf("max_raster_pixels must be positive")
	}
	if c.FetchTimeout != "" {
		if d, err := time.ParseDuration(c.FetchTimeout); err != nil {
			return fmt.Errorf("invalid fetch_timeout: %w", err)
		} else if d < 0 {
			return fmt.Errorf("fetch_timeout must not be negative")
		}
	}
	if _, err := formatting.ParseBytes(c.MaxFetchSize); err != nil {
		return fmt.Errorf("invalid max_fetch_size: %w", err)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}

	seen := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if p.ID == "" {
			return fmt.Errorf("profile %d: id required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("profile %s: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if p.InkLimit <= 0 || p.InkLimit > 4 {
			return fmt.Errorf("profile %s: ink_limit %g outside (0, 4]", p.ID, p.InkLimit)
		}
		if p.DotGain < 0 || p.DotGain >= 1 {
			return fmt.Errorf("profile %s: dot_gain %g outside [0, 1)", p.ID, p.DotGain)
		}
	}
	return nil
}
