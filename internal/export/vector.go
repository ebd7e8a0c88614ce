package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
)

// DefaultVectorMultiplier renders overlays at 300 dpi relative to a 96 dpi
// screen.
const DefaultVectorMultiplier = 300.0 / 96.0

// overlayStamp places the overlay PNG over the whole page, unrotated.
const overlayStamp = "scalefactor:1 rel, rotation:0, position:c, opacity:1"

func init() {
	api.DisableConfigDir()
}

// Compositor copies one page of an imported PDF untouched and stamps a
// transparent raster of the user's overlay objects on top of it.
type Compositor struct {
	paddingPx  float64
	multiplier float64
	maxPixels  int64
	logger     *slog.Logger
}

// NewCompositor creates a Compositor. A non-positive maxPixels selects
// DefaultMaxRasterPixels.
func NewCompositor(paddingPx, multiplier float64, maxPixels int64, logger *slog.Logger) *Compositor {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxRasterPixels
	}
	return &Compositor{
		paddingPx:  paddingPx,
		multiplier: multiplier,
		maxPixels:  maxPixels,
		logger:     logger,
	}
}

// Compose produces the vector export of meta's page with c's content objects
// composited on top.
func (p *Compositor) Compose(
	ctx context.Context,
	doc DocumentSpec,
	c *canvas.Canvas,
	meta *canvas.PDFBackground,
	includeBleed bool,
) (*Artifact, error) {
	if meta == nil || meta.Kind != canvas.PDFPageBackgroundKind {
		return nil, ErrNoPDFBackground
	}
	if c == nil {
		return nil, ErrMissingCanvas
	}

	page, err := ExtractPage(meta.OriginalPDF, meta.PageIndex)
	if err != nil {
		return nil, err
	}

	if c.HasOverlays() {
		overlay, err := p.renderOverlay(doc, c, includeBleed)
		if err != nil {
			return nil, err
		}

		page, err = stampOverlay(page, overlay)
		if err != nil {
			return nil, err
		}
		p.logger.DebugContext(ctx, "overlay composited", "overlay_bytes", len(overlay))
	} else {
		p.logger.DebugContext(ctx, "no overlays, page passed through", "page_index", meta.PageIndex)
	}

	return &Artifact{
		Data:     page,
		Filename: VectorFilename(doc, meta.OriginalFilename),
	}, nil
}

// renderOverlay captures only the content objects of the crop region as a
// transparent PNG. Canvas state is restored even if rendering fails.
func (p *Compositor) renderOverlay(doc DocumentSpec, c *canvas.Canvas, includeBleed bool) ([]byte, error) {
	crop, err := cropFor(doc, c, includeBleed, p.paddingPx)
	if err != nil {
		return nil, err
	}
	if err := checkRasterSize(crop, p.multiplier, p.maxPixels); err != nil {
		return nil, err
	}

	var data []byte
	err = canvas.WithOverlayIsolation(c, func() error {
		var err error
		data, err = c.Render(canvas.RenderOptions{
			Left:       crop.Left,
			Top:        crop.Top,
			Width:      crop.Width,
			Height:     crop.Height,
			Multiplier: p.multiplier,
			Format:     canvas.FormatPNG,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: render overlay: %w", ErrCaptureFailed, err)
	}
	return data, nil
}

// ExtractPage returns a new PDF holding only page pageIndex (0-based) of src.
// Page objects and content streams are copied as they are.
func ExtractPage(src []byte, pageIndex int) ([]byte, error) {
	conf := pdfConfig()

	count, err := api.PageCount(bytes.NewReader(src), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	if pageIndex < 0 || pageIndex >= count {
		return nil, fmt.Errorf("%w: index %d, document has %d pages", ErrPageOutOfRange, pageIndex, count)
	}

	var out bytes.Buffer
	pages := []string{strconv.Itoa(pageIndex + 1)}
	if err := api.Trim(bytes.NewReader(src), &out, pages, conf); err != nil {
		return nil, fmt.Errorf("%w: extract page %d: %w", ErrInvalidPDF, pageIndex, err)
	}
	return out.Bytes(), nil
}

func stampOverlay(page, overlay []byte) ([]byte, error) {
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(overlay), overlayStamp, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedFailed, err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(page), &out, nil, wm, pdfConfig()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedFailed, err)
	}
	return out.Bytes(), nil
}

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
