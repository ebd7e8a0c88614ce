package designs

import (
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/geometry"
)

// Area is a rectangle in canvas pixels.
type Area struct {
	Left, Top, Width, Height float64
}

// BleedArea returns the document area including bleed.
func BleedArea(doc export.DocumentSpec, paddingPx float64) Area {
	return Area{
		Left:   paddingPx,
		Top:    paddingPx,
		Width:  (doc.WidthMM + 2*doc.BleedMM) * geometry.MMToPx,
		Height: (doc.HeightMM + 2*doc.BleedMM) * geometry.MMToPx,
	}
}

// TrimArea returns the finished page area.
func TrimArea(doc export.DocumentSpec, paddingPx float64) Area {
	bleed := doc.BleedMM * geometry.MMToPx
	return Area{
		Left:   paddingPx + bleed,
		Top:    paddingPx + bleed,
		Width:  doc.WidthMM * geometry.MMToPx,
		Height: doc.HeightMM * geometry.MMToPx,
	}
}

// NewCanvas lays out an empty design: the pasteboard, the white document
// placeholder covering the bleed area, and trim and safe-area guides.
func NewCanvas(doc export.DocumentSpec, paddingPx float64) *canvas.Canvas {
	bleed := BleedArea(doc, paddingPx)
	trim := TrimArea(doc, paddingPx)

	c := canvas.New(bleed.Width+2*paddingPx, bleed.Height+2*paddingPx)
	c.Background = "#e5e5e5"
	c.Add(
		&canvas.Object{
			ID:      "document-background",
			Role:    canvas.RoleDocumentBackground,
			Shape:   canvas.ShapeRect,
			Left:    bleed.Left,
			Top:     bleed.Top,
			Width:   bleed.Width,
			Height:  bleed.Height,
			Fill:    "#ffffff",
			Visible: true,
		},
		&canvas.Object{
			ID:          "trim-guide",
			Role:        canvas.RoleGuide,
			Shape:       canvas.ShapeRect,
			Left:        trim.Left,
			Top:         trim.Top,
			Width:       trim.Width,
			Height:      trim.Height,
			Stroke:      "#ff0000",
			StrokeWidth: 1,
			Visible:     true,
		},
	)

	if doc.SafeAreaMM != nil && *doc.SafeAreaMM > 0 {
		inset := *doc.SafeAreaMM * geometry.MMToPx
		if trim.Width > 2*inset && trim.Height > 2*inset {
			c.Add(&canvas.Object{
				ID:          "safe-guide",
				Role:        canvas.RoleGuide,
				Shape:       canvas.ShapeRect,
				Left:        trim.Left + inset,
				Top:         trim.Top + inset,
				Width:       trim.Width - 2*inset,
				Height:      trim.Height - 2*inset,
				Stroke:      "#00a0ff",
				StrokeWidth: 1,
				Visible:     true,
			})
		}
	}

	return c
}
