// Package proofing turns a region of a design canvas into a raster that
// simulates how its colours reproduce on a CMYK press.
package proofing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/geometry"
)

// Loader fetches profile bytes by URL.
type Loader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Request describes one soft-proof capture.
type Request struct {
	// InputProfileURL names the RGB source profile. Empty selects built-in sRGB.
	InputProfileURL string
	OutputProfile   Profile
	// OutputProfileBytes, when set, is used instead of fetching OutputProfile.URL.
	OutputProfileBytes []byte
	Crop               geometry.CropResult
	Multiplier         float64
}

// Result is the proofed raster.
type Result struct {
	DataURL string
	PNG     []byte
	Width   int
	Height  int
}

// Proofer renders a proofed raster of a canvas region.
type Proofer interface {
	ExportCMYK(ctx context.Context, c *canvas.Canvas, req Request) (*Result, error)
}

// Simulator is the built-in Proofer. Profiles are validated as ICC data; the
// colour transform itself is driven by the profile's press parameters.
type Simulator struct {
	loader Loader
	logger *slog.Logger
}

// NewSimulator creates a Simulator. loader may be nil when every request
// carries its profile bytes or names no profile URL.
func NewSimulator(loader Loader, logger *slog.Logger) *Simulator {
	return &Simulator{
		loader: loader,
		logger: logger.With("system", "proofing"),
	}
}

// ExportCMYK rasterizes the crop region and applies the soft-proof transform.
func (s *Simulator) ExportCMYK(ctx context.Context, c *canvas.Canvas, req Request) (*Result, error) {
	if c == nil {
		return nil, ErrNoCanvas
	}
	source, err := s.checkProfiles(ctx, req)
	if err != nil {
		return nil, err
	}

	multiplier := req.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	img, err := c.Rasterize(canvas.RenderOptions{
		Left:       req.Crop.Left,
		Top:        req.Crop.Top,
		Width:      req.Crop.Width,
		Height:     req.Crop.Height,
		Multiplier: multiplier,
	})
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}

	if err := newTransform(req.OutputProfile).Apply(ctx, img); err != nil {
		return nil, fmt.Errorf("soft proof: %w", err)
	}

	data, err := canvas.Encode(img, canvas.FormatPNG, 0)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	s.logger.InfoContext(ctx, "soft proof rendered",
		"profile", req.OutputProfile.ID,
		"output_profile_source", source,
		"width", b.Dx(),
		"height", b.Dy(),
	)

	return &Result{
		DataURL: canvas.EncodeDataURL(data, canvas.FormatPNG),
		PNG:     data,
		Width:   b.Dx(),
		Height:  b.Dy(),
	}, nil
}

// Sources of the output condition a proof was rendered against.
const (
	SourceICCProfile      = "icc_profile"
	SourcePressParameters = "press_parameters"
)

// checkProfiles validates the ICC data behind a request and reports whether
// an output ICC profile backed the proof. A profile that cannot be loaded is
// logged and skipped; a profile that loads but has the wrong colour space
// fails the capture. Built-in sRGB input needs no check.
func (s *Simulator) checkProfiles(ctx context.Context, req Request) (string, error) {
	if req.InputProfileURL != "" {
		data, err := s.load(ctx, req.InputProfileURL)
		if err != nil {
			s.logger.WarnContext(ctx, "input profile unavailable, using sRGB", "url", req.InputProfileURL, "error", err)
		} else if err := ValidateInputProfile(data); err != nil {
			return "", fmt.Errorf("input profile: %w", err)
		}
	}

	output := req.OutputProfileBytes
	if output == nil && req.OutputProfile.URL != "" {
		data, err := s.load(ctx, req.OutputProfile.URL)
		if err != nil {
			s.logger.WarnContext(ctx, "output profile unavailable, using press parameters only",
				"profile", req.OutputProfile.ID,
				"error", err,
			)
			return SourcePressParameters, nil
		}
		output = data
	}
	if output == nil {
		return SourcePressParameters, nil
	}
	if err := ValidateOutputProfile(output); err != nil {
		return "", fmt.Errorf("output profile %s: %w", req.OutputProfile.ID, err)
	}
	return SourceICCProfile, nil
}

func (s *Simulator) load(ctx context.Context, url string) ([]byte, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("%w: no loader for %s", ErrProfileUnavailable, url)
	}
	data, err := s.loader.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProfileUnavailable, url, err)
	}
	return data, nil
}
