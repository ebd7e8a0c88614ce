package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/formatting"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/geometry"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/proofing"
)

// Source loads bytes by URL.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PipelineConfig holds the parameters shared by the export pipelines.
type PipelineConfig struct {
	PasteboardPaddingPx float64
	DefaultDPI          int
	VectorMultiplier    float64
	InputProfileURL     string
	Profiles            []proofing.Profile
	// MaxRasterPixels bounds the bitmap of a single capture.
	MaxRasterPixels int64
}

// Orchestrator is the only place that decides which pipeline runs.
type Orchestrator struct {
	source     Source
	proofer    proofing.Proofer
	compositor *Compositor
	cfg        PipelineConfig
	logger     *slog.Logger
}

// NewOrchestrator wires the pipelines together.
func NewOrchestrator(source Source, proofer proofing.Proofer, cfg PipelineConfig, logger *slog.Logger) *Orchestrator {
	if cfg.PasteboardPaddingPx <= 0 {
		cfg.PasteboardPaddingPx = geometry.PasteboardPaddingPx
	}
	if cfg.DefaultDPI <= 0 {
		cfg.DefaultDPI = 300
	}
	if cfg.VectorMultiplier <= 0 {
		cfg.VectorMultiplier = DefaultVectorMultiplier
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = proofing.DefaultProfiles
	}
	if cfg.MaxRasterPixels <= 0 {
		cfg.MaxRasterPixels = DefaultMaxRasterPixels
	}

	logger = logger.With("system", "export")
	return &Orchestrator{
		source:     source,
		proofer:    proofer,
		compositor: NewCompositor(cfg.PasteboardPaddingPx, cfg.VectorMultiplier, cfg.MaxRasterPixels, logger),
		cfg:        cfg,
		logger:     logger,
	}
}

// IsOriginalPDFAvailable reports whether the uploaded PDF can be passed
// through unchanged.
func IsOriginalPDFAvailable(s Session) bool {
	return s.PDFSource != nil && s.PDFSource.OriginalURL != "" && !s.HasChanges
}

// Available reports, per mode, whether its precondition holds.
func Available(s Session) map[Mode]bool {
	out := make(map[Mode]bool, len(Modes))
	for _, m := range Modes {
		out[m] = precondition(s, m) == nil
	}
	return out
}

// Export runs exactly one pipeline. Every failure, including a panic inside
// a pipeline, is returned as an unsuccessful Result.
func (o *Orchestrator) Export(ctx context.Context, s Session, opts Options) (res Result) {
	start := time.Now()
	logger := o.logger.With("mode", opts.Mode.String(), "include_bleed", opts.IncludeBleed)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "export panicked", "panic", r)
			res = failed(fmt.Errorf("export failed: %v", r))
		}
	}()

	if err := precondition(s, opts.Mode); err != nil {
		logger.WarnContext(ctx, "export rejected", "error", err)
		return failed(err)
	}

	artifact, err := o.run(ctx, s, opts)
	if err != nil {
		logger.ErrorContext(ctx, "export failed", "error", err, "duration", time.Since(start))
		return failed(err)
	}

	logger.InfoContext(ctx, "export complete",
		"filename", artifact.Filename,
		"size", formatting.FormatBytes(int64(len(artifact.Data)), 1),
		"duration", time.Since(start),
	)

	return Result{
		Success:     true,
		Filename:    artifact.Filename,
		Data:        artifact.Data,
		ContentType: ContentTypePDF,
	}
}

func (o *Orchestrator) run(ctx context.Context, s Session, opts Options) (*Artifact, error) {
	if opts.Mode != ModeOriginal {
		if err := s.Document.Validate(); err != nil {
			return nil, err
		}
	}

	switch opts.Mode {
	case ModePrint, ModeProof:
		return o.exportRaster(ctx, s, opts)
	case ModeOriginal:
		return o.exportOriginal(ctx, s)
	case ModeVector:
		return o.compositor.Compose(ctx, s.Document, s.Canvas, s.PDFBackground, opts.IncludeBleed)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, opts.Mode)
}

func precondition(s Session, m Mode) error {
	switch m {
	case ModePrint, ModeProof:
		if s.Canvas == nil {
			return ErrMissingCanvas
		}
	case ModeOriginal:
		if !IsOriginalPDFAvailable(s) {
			return ErrOriginalUnavailable
		}
	case ModeVector:
		if s.PDFBackground == nil {
			return ErrNoPDFBackground
		}
		if s.Canvas == nil {
			return ErrMissingCanvas
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, m)
	}
	return nil
}

func (o *Orchestrator) exportOriginal(ctx context.Context, s Session) (*Artifact, error) {
	data, err := o.source.Fetch(ctx, s.PDFSource.OriginalURL)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Data:     data,
		Filename: OriginalFilename(s.Document, s.PDFSource),
	}, nil
}

func cropFor(doc DocumentSpec, c *canvas.Canvas, includeBleed bool, paddingPx float64) (geometry.CropResult, error) {
	return geometry.ComputeCropRect(geometry.CropParams{
		IncludeBleed:        includeBleed,
		WidthMM:             doc.WidthMM,
		HeightMM:            doc.HeightMM,
		BleedMM:             doc.BleedMM,
		MMToPx:              geometry.MMToPx,
		PasteboardPaddingPx: paddingPx,
		CanvasWidthPx:       c.Width,
		CanvasHeightPx:      c.Height,
	})
}
