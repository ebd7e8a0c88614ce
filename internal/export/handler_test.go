package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/middleware"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/pagination"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/routes"
)

type mockSystem struct {
	exportFn        func(ctx context.Context, id uuid.UUID, opts export.Options) (export.Result, error)
	exportSessionFn func(ctx context.Context, s export.Session, opts export.Options) export.Result
	availabilityFn  func(ctx context.Context, id uuid.UUID) (*export.Availability, error)
	listFn          func(ctx context.Context, page pagination.PageRequest, filters export.Filters) (*pagination.PageResult[export.Record], error)
	findFn          func(ctx context.Context, id uuid.UUID) (*export.Record, error)
	downloadFn      func(ctx context.Context, id uuid.UUID) (*export.Artifact, error)
}

func (m *mockSystem) Handler(maxRequestSize int64, limit func(http.Handler) http.Handler) *export.Handler {
	return export.NewHandler(m, discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, maxRequestSize, limit)
}

func (m *mockSystem) Export(ctx context.Context, id uuid.UUID, opts export.Options) (export.Result, error) {
	return m.exportFn(ctx, id, opts)
}

func (m *mockSystem) ExportSession(ctx context.Context, s export.Session, opts export.Options) export.Result {
	return m.exportSessionFn(ctx, s, opts)
}

func (m *mockSystem) Availability(ctx context.Context, id uuid.UUID) (*export.Availability, error) {
	return m.availabilityFn(ctx, id)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters export.Filters) (*pagination.PageResult[export.Record], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*export.Record, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Download(ctx context.Context, id uuid.UUID) (*export.Artifact, error) {
	return m.downloadFn(ctx, id)
}

func setupMux(sys export.System, limit func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(1024*1024, limit).Routes())
	return mux
}

var designID = uuid.MustParse("0b6f4a52-8c1e-4d2b-9a57-3e2f1c0d9b84")

func TestHandlerExport(t *testing.T) {
	var gotOpts export.Options
	sys := &mockSystem{
		exportFn: func(_ context.Context, id uuid.UUID, opts export.Options) (export.Result, error) {
			if id != designID {
				return export.Result{}, fmt.Errorf("%w: %s", export.ErrDesignNotFound, id)
			}
			gotOpts = opts
			return export.Result{Success: true, Filename: "Visitkort.pdf", Data: []byte("%PDF-1.7"), ContentType: export.ContentTypePDF}, nil
		},
	}
	mux := setupMux(sys, nil)

	body := `{"mode":"proof_pdf","include_bleed":true,"profile_id":"fogra51"}`
	req := httptest.NewRequest(http.MethodPost, "/designs/"+designID.String()+"/export", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypePDF {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename=Visitkort.pdf` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != "%PDF-1.7" {
		t.Errorf("body = %q", rec.Body)
	}
	if gotOpts.Mode != export.ModeProof || !gotOpts.IncludeBleed || gotOpts.ProfileID != "fogra51" {
		t.Errorf("opts = %+v", gotOpts)
	}
}

func TestHandlerExportErrors(t *testing.T) {
	sys := &mockSystem{
		exportFn: func(_ context.Context, id uuid.UUID, opts export.Options) (export.Result, error) {
			if id != designID {
				return export.Result{}, fmt.Errorf("load design %s: %w", id, export.ErrDesignNotFound)
			}
			return export.Result{Success: false, Error: export.ErrOriginalUnavailable.Error()}, nil
		},
	}
	mux := setupMux(sys, nil)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
		wantError  string
	}{
		{"unavailable mode", designID.String(), `{"mode":"original_pdf"}`, http.StatusUnprocessableEntity, export.ErrOriginalUnavailable.Error()},
		{"unknown mode", designID.String(), `{"mode":"svg"}`, http.StatusUnprocessableEntity, export.ErrUnsupportedMode.Error()},
		{"unknown design", uuid.NewString(), `{"mode":"print_pdf"}`, http.StatusNotFound, export.ErrDesignNotFound.Error()},
		{"bad id", "not-a-uuid", `{"mode":"print_pdf"}`, http.StatusBadRequest, export.ErrInvalidRequest.Error()},
		{"malformed body", designID.String(), `{"mode":`, http.StatusBadRequest, export.ErrInvalidRequest.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/designs/"+tt.id+"/export", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}

			var resp struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success {
				t.Error("success = true")
			}
			if !strings.Contains(resp.Error, tt.wantError) {
				t.Errorf("error = %q, want it to contain %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestHandlerExportSession(t *testing.T) {
	var got export.Session
	sys := &mockSystem{
		exportSessionFn: func(_ context.Context, s export.Session, opts export.Options) export.Result {
			got = s
			return export.Result{Success: true, Filename: "Visitkort.pdf", Data: []byte("%PDF"), ContentType: export.ContentTypePDF}
		},
	}
	mux := setupMux(sys, nil)

	body := `{
		"document": {"name": "Visitkort", "width_mm": 90, "height_mm": 50, "bleed_mm": 3},
		"canvas": {"width": 392, "height": 312, "objects": [
			{"id": "trim", "role": "guide", "shape": "rect", "left": 106, "top": 106, "width": 180, "height": 100},
			{"id": "pdf-background", "role": "pdf_background", "shape": "image", "left": 100, "top": 100, "width": 192, "height": 112,
			 "pdf": {"kind": "pdf_page_background", "page_index": 1, "original_filename": "katalog.pdf"}}
		]},
		"has_changes": true,
		"options": {"mode": "vector_pdf", "include_bleed": true}
	}`
	req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if got.Canvas == nil || len(got.Canvas.Objects) != 2 {
		t.Fatalf("canvas = %+v", got.Canvas)
	}
	if got.PDFBackground == nil || got.PDFBackground.PageIndex != 1 {
		t.Errorf("PDFBackground = %+v, want page 1", got.PDFBackground)
	}
	if !got.HasChanges {
		t.Error("HasChanges = false")
	}
}

func TestHandlerExportSessionInvalid(t *testing.T) {
	sys := &mockSystem{
		exportSessionFn: func(context.Context, export.Session, export.Options) export.Result {
			t.Fatal("export ran for invalid request")
			return export.Result{}
		},
	}
	mux := setupMux(sys, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"zero size", `{"document": {"width_mm": 0, "height_mm": 50}, "options": {"mode": "print_pdf"}}`, http.StatusBadRequest},
		{"bad canvas", `{"document": {"width_mm": 90, "height_mm": 50}, "canvas": {"width": 0}, "options": {"mode": "print_pdf"}}`, http.StatusBadRequest},
		{"unknown mode", `{"document": {"width_mm": 90, "height_mm": 50}, "options": {"mode": "tiff"}}`, http.StatusUnprocessableEntity},
		{"too large", `{"document": {"name": "` + strings.Repeat("x", 2*1024*1024) + `"}}`, http.StatusBadRequest},
		{"dpi too high", `{"document": {"width_mm": 90, "height_mm": 50, "dpi": 60000}, "options": {"mode": "proof_pdf"}}`, http.StatusBadRequest},
		{"negative dpi", `{"document": {"width_mm": 90, "height_mm": 50, "dpi": -1}, "options": {"mode": "print_pdf"}}`, http.StatusBadRequest},
		{"storage url", `{"document": {"width_mm": 90, "height_mm": 50}, "pdf_source": {"original_url": "storage://exports/0000/other-customer.pdf"}, "options": {"mode": "original_pdf"}}`, http.StatusBadRequest},
		{"storage url upper case", `{"document": {"width_mm": 90, "height_mm": 50}, "pdf_source": {"original_url": "STORAGE://designs/a.pdf"}, "options": {"mode": "original_pdf"}}`, http.StatusBadRequest},
		{"file url", `{"document": {"width_mm": 90, "height_mm": 50}, "pdf_source": {"original_url": "file:///etc/passwd"}, "options": {"mode": "original_pdf"}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}

func TestHandlerExportRateLimited(t *testing.T) {
	calls := 0
	sys := &mockSystem{
		exportSessionFn: func(context.Context, export.Session, export.Options) export.Result {
			calls++
			return export.Result{Success: true, Filename: "a.pdf", Data: []byte("%PDF"), ContentType: export.ContentTypePDF}
		},
		listFn: func(context.Context, pagination.PageRequest, export.Filters) (*pagination.PageResult[export.Record], error) {
			r := pagination.NewPageResult[export.Record](nil, 0, 1, 20)
			return &r, nil
		},
	}
	mux := setupMux(sys, middleware.RateLimit(0.001, 1))

	body := `{"document": {"width_mm": 90, "height_mm": 50}, "options": {"mode": "print_pdf"}}`
	statuses := make([]int, 0, 2)
	for range 2 {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body)))
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusTooManyRequests {
		t.Errorf("statuses = %v, want [200 429]", statuses)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	for range 3 {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("history status = %d, want 200", rec.Code)
		}
	}
}

func TestHandlerAvailability(t *testing.T) {
	sys := &mockSystem{
		availabilityFn: func(_ context.Context, id uuid.UUID) (*export.Availability, error) {
			if id != designID {
				return nil, export.ErrDesignNotFound
			}
			return &export.Availability{
				DesignID: id,
				Modes:    map[export.Mode]bool{export.ModePrint: true, export.ModeProof: true, export.ModeOriginal: false, export.ModeVector: true},
			}, nil
		},
	}
	mux := setupMux(sys, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/designs/"+designID.String()+"/export/availability", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Modes map[string]bool `json:"modes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Modes["vector_pdf"] || resp.Modes["original_pdf"] {
		t.Errorf("modes = %v", resp.Modes)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/designs/"+uuid.NewString()+"/export/availability", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerHistory(t *testing.T) {
	recordID := uuid.New()
	key := "exports/" + recordID.String() + "/Visitkort.pdf"

	var gotFilters export.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters export.Filters) (*pagination.PageResult[export.Record], error) {
			gotFilters = filters
			r := pagination.NewPageResult([]export.Record{{ID: recordID, Mode: "print_pdf", Success: true}}, 1, page.Page, page.PageSize)
			return &r, nil
		},
		findFn: func(_ context.Context, id uuid.UUID) (*export.Record, error) {
			if id != recordID {
				return nil, export.ErrNotFound
			}
			return &export.Record{ID: id, Filename: "Visitkort.pdf", StorageKey: &key}, nil
		},
		downloadFn: func(_ context.Context, id uuid.UUID) (*export.Artifact, error) {
			if id != recordID {
				return nil, export.ErrNotArchived
			}
			return &export.Artifact{Filename: "Visitkort.pdf", Data: []byte("%PDF-archived")}, nil
		},
	}
	mux := setupMux(sys, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports?mode=print_pdf&success=true&design_id="+designID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if gotFilters.Mode == nil || *gotFilters.Mode != "print_pdf" {
		t.Errorf("mode filter = %v", gotFilters.Mode)
	}
	if gotFilters.Success == nil || !*gotFilters.Success {
		t.Errorf("success filter = %v", gotFilters.Success)
	}
	if gotFilters.DesignID == nil || *gotFilters.DesignID != designID {
		t.Errorf("design filter = %v", gotFilters.DesignID)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"find", "/exports/" + recordID.String(), http.StatusOK},
		{"find missing", "/exports/" + uuid.NewString(), http.StatusNotFound},
		{"find bad id", "/exports/nope", http.StatusBadRequest},
		{"download", "/exports/" + recordID.String() + "/file", http.StatusOK},
		{"download not archived", "/exports/" + uuid.NewString() + "/file", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports/"+recordID.String()+"/file", nil))
	if !bytes.Equal(rec.Body.Bytes(), []byte("%PDF-archived")) {
		t.Errorf("body = %q", rec.Body)
	}
}

func TestFiltersFromQueryDropsUnknownMode(t *testing.T) {
	f := export.FiltersFromQuery(map[string][]string{"mode": {"svg"}, "success": {"maybe"}})
	if f.Mode != nil || f.Success != nil {
		t.Errorf("filters = %+v, want empty", f)
	}
}
