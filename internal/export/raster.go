package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/geometry"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/proofing"
)

// exportRaster captures the soft-proofed crop region with guides hidden and
// wraps it in a PDF page of the matching physical size. Print and proof
// differ only in document properties.
func (o *Orchestrator) exportRaster(ctx context.Context, s Session, opts Options) (*Artifact, error) {
	crop, err := cropFor(s.Document, s.Canvas, opts.IncludeBleed, o.cfg.PasteboardPaddingPx)
	if err != nil {
		return nil, err
	}

	profileID := opts.ProfileID
	if profileID == "" {
		profileID = s.Document.ColorProfile
	}
	profile := proofing.ResolveProfile(o.cfg.Profiles, profileID)

	req := proofing.Request{
		InputProfileURL: o.cfg.InputProfileURL,
		OutputProfile:   profile,
		Crop:            crop,
		Multiplier:      o.multiplier(s.Document),
	}
	if err := checkRasterSize(crop, req.Multiplier, o.cfg.MaxRasterPixels); err != nil {
		return nil, err
	}

	var proof *proofing.Result
	err = canvas.WithHiddenGuides(s.Canvas, func() error {
		var err error
		proof, err = o.proofer.ExportCMYK(ctx, s.Canvas, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	data, _, err := canvas.DecodeDataURL(proof.DataURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode proof: %w", ErrCaptureFailed, err)
	}

	o.logger.DebugContext(ctx, "raster captured",
		"profile", profile.ID,
		"crop", crop,
		"px_per_mm", crop.PixelsPerMM()*req.Multiplier,
		"width", proof.Width,
		"height", proof.Height,
	)

	out, err := assembleRasterPDF(img, crop.PDFWidthMM, crop.PDFHeightMM, rasterInfo(opts.Mode, s.Document, profile.Name))
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Data:     out,
		Filename: RasterFilename(s.Document),
	}, nil
}

// multiplier scales canvas pixels to the output resolution.
func (o *Orchestrator) multiplier(doc DocumentSpec) float64 {
	dpi := doc.DPI
	if dpi <= 0 {
		dpi = o.cfg.DefaultDPI
	}
	return float64(dpi) / geometry.DisplayDPI
}
