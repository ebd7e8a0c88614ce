package export

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/geometry"
)

// MaxDPI is the highest output resolution a document may request.
const MaxDPI = 1200

// DefaultMaxRasterPixels caps one capture at 100 megapixels, about 400 MB
// of RGBA.
const DefaultMaxRasterPixels int64 = 100_000_000

// checkRasterSize rejects captures whose output bitmap would exceed limit
// pixels. It runs before any allocation.
func checkRasterSize(crop geometry.CropResult, multiplier float64, limit int64) error {
	w := math.Ceil(crop.Width * multiplier)
	h := math.Ceil(crop.Height * multiplier)
	if w*h > float64(limit) {
		return fmt.Errorf("%w: capture of %.0fx%.0f px exceeds %d pixels", ErrInvalidRequest, w, h, limit)
	}
	return nil
}

// checkClientURL accepts only http(s) URLs. storage:// keys are resolved for
// persisted designs and never taken from a request body.
func checkClientURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: original_url: %w", ErrInvalidRequest, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return fmt.Errorf("%w: original_url must be an http(s) URL", ErrInvalidRequest)
}
