package proofing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/geometry"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/proofing"
)

type mockLoader struct {
	fetchFn func(ctx context.Context, url string) ([]byte, error)
	calls   []string
}

func (m *mockLoader) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	return m.fetchFn(ctx, url)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCanvas() *canvas.Canvas {
	c := canvas.New(400, 300)
	c.Add(
		&canvas.Object{Role: canvas.RoleDocumentBackground, Shape: canvas.ShapeRect, Left: 100, Top: 100, Width: 192, Height: 112, Fill: "#ffffff", Visible: true},
		&canvas.Object{Role: canvas.RoleContent, Shape: canvas.ShapeRect, Left: 100, Top: 100, Width: 96, Height: 112, Fill: "#00a0e0", Visible: true},
	)
	return c
}

func testRequest() proofing.Request {
	return proofing.Request{
		OutputProfile: proofing.Profile{ID: "test", InkLimit: 3, DotGain: 0.15, PaperWhite: "#ffffff"},
		Crop:          geometry.CropResult{Left: 100, Top: 100, Width: 192, Height: 112, PDFWidthMM: 96, PDFHeightMM: 56},
		Multiplier:    2,
	}
}

func TestExportCMYK(t *testing.T) {
	sim := proofing.NewSimulator(nil, discardLogger())

	res, err := sim.ExportCMYK(context.Background(), testCanvas(), testRequest())
	if err != nil {
		t.Fatalf("ExportCMYK() error = %v", err)
	}

	if res.Width != 384 || res.Height != 224 {
		t.Errorf("size = %dx%d, want 384x224", res.Width, res.Height)
	}
	if !strings.HasPrefix(res.DataURL, "data:image/png;base64,") {
		t.Error("result is not a PNG data URL")
	}

	img, err := png.Decode(bytes.NewReader(res.PNG))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	_, _, _, a := img.At(300, 100).RGBA()
	if a != 0xffff {
		t.Errorf("alpha = %#x, want opaque (flattened on paper)", a)
	}
}

func TestExportCMYKShiftsSaturatedColours(t *testing.T) {
	c := canvas.New(100, 100)
	c.Add(&canvas.Object{Role: canvas.RoleContent, Shape: canvas.ShapeRect, Width: 100, Height: 100, Fill: "#0000ff", Visible: true})

	req := testRequest()
	req.Crop = geometry.CropResult{Width: 10, Height: 10}
	req.Multiplier = 1

	res, err := proofing.NewSimulator(nil, discardLogger()).ExportCMYK(context.Background(), c, req)
	if err != nil {
		t.Fatalf("ExportCMYK() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(res.PNG))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}

	_, _, b, _ := img.At(5, 5).RGBA()
	if b>>8 == 0 {
		t.Error("blue channel lost entirely")
	}
}

func TestExportCMYKNilCanvas(t *testing.T) {
	_, err := proofing.NewSimulator(nil, discardLogger()).ExportCMYK(context.Background(), nil, testRequest())
	if !errors.Is(err, proofing.ErrNoCanvas) {
		t.Errorf("err = %v, want ErrNoCanvas", err)
	}
}

func TestExportCMYKRejectsRGBOutputProfile(t *testing.T) {
	req := testRequest()
	req.OutputProfileBytes = rgbProfile()

	_, err := proofing.NewSimulator(nil, discardLogger()).ExportCMYK(context.Background(), testCanvas(), req)
	if !errors.Is(err, proofing.ErrInvalidProfile) {
		t.Errorf("err = %v, want ErrInvalidProfile", err)
	}
}

func TestExportCMYKLoadsProfiles(t *testing.T) {
	loader := &mockLoader{
		fetchFn: func(_ context.Context, url string) ([]byte, error) {
			if url == "storage://profiles/srgb.icc" {
				return rgbProfile(), nil
			}
			return nil, errors.New("not found")
		},
	}

	req := testRequest()
	req.InputProfileURL = "storage://profiles/srgb.icc"
	req.OutputProfile.URL = "storage://profiles/missing.icc"

	_, err := proofing.NewSimulator(loader, discardLogger()).ExportCMYK(context.Background(), testCanvas(), req)
	if err != nil {
		t.Fatalf("ExportCMYK() error = %v", err)
	}
	if len(loader.calls) != 2 {
		t.Errorf("fetches = %v, want input and output profile", loader.calls)
	}
}

func TestExportCMYKFetchedOutputProfileMustBeCMYK(t *testing.T) {
	loader := &mockLoader{
		fetchFn: func(_ context.Context, _ string) ([]byte, error) {
			return rgbProfile(), nil
		},
	}

	req := testRequest()
	req.OutputProfile.URL = "https://example.com/fogra39.icc"

	_, err := proofing.NewSimulator(loader, discardLogger()).ExportCMYK(context.Background(), testCanvas(), req)
	if !errors.Is(err, proofing.ErrInvalidProfile) {
		t.Errorf("err = %v, want ErrInvalidProfile", err)
	}
}

func TestExportCMYKCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := proofing.NewSimulator(nil, discardLogger()).ExportCMYK(ctx, testCanvas(), testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExportCMYKLogsOutputProfileSource(t *testing.T) {
	tests := []struct {
		name    string
		profile []byte
		want    string
	}{
		{"press parameters only", nil, proofing.SourcePressParameters},
		{"icc profile", cmykProfile(), proofing.SourceICCProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sim := proofing.NewSimulator(nil, slog.New(slog.NewJSONHandler(&buf, nil)))

			req := testRequest()
			req.OutputProfileBytes = tt.profile
			if _, err := sim.ExportCMYK(context.Background(), testCanvas(), req); err != nil {
				t.Fatalf("ExportCMYK() error = %v", err)
			}

			var entry struct {
				Msg    string `json:"msg"`
				Source string `json:"output_profile_source"`
			}
			found := false
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				if err := json.Unmarshal([]byte(line), &entry); err != nil {
					t.Fatalf("log line %q: %v", line, err)
				}
				if entry.Msg == "soft proof rendered" {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("no soft proof log entry in %s", buf.String())
			}
			if entry.Source != tt.want {
				t.Errorf("output_profile_source = %q, want %q", entry.Source, tt.want)
			}
		})
	}
}

func TestExportCMYKRejectsCMYKInputProfile(t *testing.T) {
	loader := &mockLoader{
		fetchFn: func(context.Context, string) ([]byte, error) {
			return cmykProfile(), nil
		},
	}

	req := testRequest()
	req.InputProfileURL = "https://example.com/input.icc"

	_, err := proofing.NewSimulator(loader, discardLogger()).ExportCMYK(context.Background(), testCanvas(), req)
	if !errors.Is(err, proofing.ErrInvalidProfile) {
		t.Errorf("err = %v, want ErrInvalidProfile", err)
	}
}
