// Package geometry converts physical print dimensions into the pixel space of the
// design canvas. The editor and the exporter share these constants: if they drift
// apart, captured pixels no longer correspond to the stated physical page size.
package geometry

import (
	"fmt"
	"math"
)

const (
	// DisplayDPI is the resolution at which the editor lays out the document.
	DisplayDPI = 50.8
	// MMPerInch is the number of millimetres in one inch.
	MMPerInch = 25.4
	// MMToPx is the fixed editor conversion ratio (2 px per mm).
	MMToPx = DisplayDPI / MMPerInch
	// PasteboardPaddingPx is the offset of the document's top-left corner
	// (including bleed) from the canvas origin.
	PasteboardPaddingPx = 100.0
)

// CropParams describes the document and canvas a crop is computed for.
type CropParams struct {
	IncludeBleed        bool
	WidthMM             float64
	HeightMM            float64
	BleedMM             float64
	MMToPx              float64
	PasteboardPaddingPx float64
	CanvasWidthPx       float64
	CanvasHeightPx      float64
}

// CropResult is the pixel crop rectangle on the canvas together with the
// physical size of the PDF page it maps to.
type CropResult struct {
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	PDFWidthMM  float64 `json:"pdf_width_mm"`
	PDFHeightMM float64 `json:"pdf_height_mm"`
}

// Valid reports whether the crop spans a non-empty area and page.
func (r CropResult) Valid() bool {
	return r.Width > 0 && r.Height > 0 && r.PDFWidthMM > 0 && r.PDFHeightMM > 0
}

// PixelsPerMM returns the horizontal pixel density of the crop relative to
// the output page.
func (r CropResult) PixelsPerMM() float64 {
	if r.PDFWidthMM <= 0 {
		return 0
	}
	return r.Width / r.PDFWidthMM
}

// ComputeCropRect resolves the pixel crop rectangle and output page size.
//
// With bleed included the crop starts at the pasteboard padding and spans
// trim + 2*bleed; without it the crop skips the bleed strip and spans the trim
// box only. The origin is clamped into the canvas and width/height into
// [1, canvas - origin]. On failure the zero CropResult is returned.
func ComputeCropRect(p CropParams) (CropResult, error) {
	if p.WidthMM <= 0 || p.HeightMM <= 0 {
		return CropResult{}, fmt.Errorf(
			"%w: width %gmm, height %gmm",
			ErrInvalidDimensions, p.WidthMM, p.HeightMM,
		)
	}

	bleedMM := max(p.BleedMM, 0)
	bleedPx := bleedMM * p.MMToPx
	trimWidthPx := p.WidthMM * p.MMToPx
	trimHeightPx := p.HeightMM * p.MMToPx

	var r CropResult
	if p.IncludeBleed {
		r.Left = p.PasteboardPaddingPx
		r.Top = p.PasteboardPaddingPx
		r.Width = trimWidthPx + 2*bleedPx
		r.Height = trimHeightPx + 2*bleedPx
		r.PDFWidthMM = p.WidthMM + 2*bleedMM
		r.PDFHeightMM = p.HeightMM + 2*bleedMM
	} else {
		r.Left = p.PasteboardPaddingPx + bleedPx
		r.Top = p.PasteboardPaddingPx + bleedPx
		r.Width = trimWidthPx
		r.Height = trimHeightPx
		r.PDFWidthMM = p.WidthMM
		r.PDFHeightMM = p.HeightMM
	}

	if p.CanvasWidthPx < 1 || p.CanvasHeightPx < 1 {
		return CropResult{}, fmt.Errorf(
			"%w: canvas %gx%gpx",
			ErrEmptyCrop, p.CanvasWidthPx, p.CanvasHeightPx,
		)
	}

	r.Left = clamp(r.Left, 0, p.CanvasWidthPx-1)
	r.Top = clamp(r.Top, 0, p.CanvasHeightPx-1)
	r.Width = clamp(r.Width, 1, p.CanvasWidthPx-r.Left)
	r.Height = clamp(r.Height, 1, p.CanvasHeightPx-r.Top)

	if !r.Valid() {
		return CropResult{}, ErrEmptyCrop
	}

	return r, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
