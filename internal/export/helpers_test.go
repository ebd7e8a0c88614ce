package export_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	tdcanvas "github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/proofing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingSource struct {
	calls int
	data  []byte
	err   error
}

func (s *countingSource) Fetch(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

type countingProofer struct {
	calls int
	next  proofing.Proofer
	fn    func(c *canvas.Canvas)
}

func (p *countingProofer) ExportCMYK(ctx context.Context, c *canvas.Canvas, req proofing.Request) (*proofing.Result, error) {
	p.calls++
	if p.fn != nil {
		p.fn(c)
	}
	return p.next.ExportCMYK(ctx, c, req)
}

func newProofer() *countingProofer {
	return &countingProofer{next: proofing.NewSimulator(nil, discard())}
}

// twoPagePDF writes a vector-only PDF whose pages differ in size and content.
func twoPagePDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := pdf.New(&buf, 100, 50, nil)

	first := tdcanvas.New(100, 50)
	ctx := tdcanvas.NewContext(first)
	ctx.SetFillColor(tdcanvas.Hex("#cc0000"))
	ctx.DrawPath(10, 10, tdcanvas.Rectangle(30, 20))
	first.RenderTo(writer)

	writer.NewPage(96, 56)
	second := tdcanvas.New(96, 56)
	ctx = tdcanvas.NewContext(second)
	ctx.SetFillColor(tdcanvas.Hex("#0033cc"))
	ctx.DrawPath(48, 28, tdcanvas.Circle(12))
	ctx.SetFillColor(tdcanvas.Hex("#00aa44"))
	ctx.DrawPath(5, 5, tdcanvas.Rectangle(20, 8))
	second.RenderTo(writer)

	if err := writer.Close(); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return buf.Bytes()
}

// businessCard is a 90x50 mm card with 3 mm bleed on the default
// 100 px pasteboard.
func businessCard() export.DocumentSpec {
	return export.DocumentSpec{Name: "Visitkort", WidthMM: 90, HeightMM: 50, BleedMM: 3, DPI: 51}
}

func cardCanvas() *canvas.Canvas {
	c := canvas.New(392, 312)
	c.Background = "#e5e5e5"
	c.Add(
		&canvas.Object{ID: "doc-bg", Role: canvas.RoleDocumentBackground, Shape: canvas.ShapeRect, Left: 100, Top: 100, Width: 192, Height: 112, Fill: "#ffffff", Visible: true},
		&canvas.Object{ID: "trim", Role: canvas.RoleGuide, Shape: canvas.ShapeRect, Left: 106, Top: 106, Width: 180, Height: 100, Stroke: "#ff0000", StrokeWidth: 1, Visible: true},
		&canvas.Object{ID: "safe", Role: canvas.RoleGuide, Shape: canvas.ShapeRect, Left: 116, Top: 116, Width: 160, Height: 80, Stroke: "#00a0ff", StrokeWidth: 1, Visible: false},
		&canvas.Object{ID: "logo", Role: canvas.RoleContent, Shape: canvas.ShapeEllipse, Left: 150, Top: 130, Width: 40, Height: 40, Fill: "#0033cc", Visible: true},
	)
	return c
}
