package api

import (
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/config"
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/designs"
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/proofing"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Designs designs.System
	Exports export.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.ExportConfig) *Domain {
	designsSystem := designs.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
		cfg.PasteboardPaddingPx,
	)

	fetcher := export.NewFetcher(
		runtime.Storage,
		cfg.FetchTimeoutDuration(),
		cfg.MaxFetchSizeBytes(),
		runtime.Logger,
	)

	orchestrator := export.NewOrchestrator(
		fetcher,
		proofing.NewSimulator(fetcher, runtime.Logger),
		export.PipelineConfig{
			PasteboardPaddingPx: cfg.PasteboardPaddingPx,
			DefaultDPI:          cfg.DefaultDPI,
			VectorMultiplier:    cfg.VectorMultiplier,
			MaxRasterPixels:     cfg.MaxRasterPixels,
			InputProfileURL:     cfg.InputProfileURL,
			Profiles:            cfg.Profiles,
		},
		runtime.Logger,
	)

	exportsSystem := export.New(
		runtime.Database.Connection(),
		runtime.Storage,
		designsSystem,
		orchestrator,
		runtime.Logger,
		runtime.Pagination,
		cfg.Archive,
	)

	return &Domain{
		Designs: designsSystem,
		Exports: exportsSystem,
	}
}
