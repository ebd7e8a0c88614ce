package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/handlers"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/pagination"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/routes"
)

// Handler provides HTTP endpoints for export operations.
type Handler struct {
	sys            System
	logger         *slog.Logger
	pagination     pagination.Config
	maxRequestSize int64
	limit          func(http.Handler) http.Handler
}

// OptionsRequest is the wire form of Options. Mode is a mode name such as
// "proof_pdf".
type OptionsRequest struct {
	Mode             string `json:"mode"`
	IncludeBleed     bool   `json:"include_bleed"`
	IncludeTrimMarks bool   `json:"include_trim_marks"`
	PreserveVector   bool   `json:"preserve_vector"`
	ProfileID        string `json:"profile_id"`
}

// Options resolves the mode name.
func (o OptionsRequest) Options() (Options, error) {
	mode, err := ParseMode(o.Mode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Mode:             mode,
		IncludeBleed:     o.IncludeBleed,
		IncludeTrimMarks: o.IncludeTrimMarks,
		PreserveVector:   o.PreserveVector,
		ProfileID:        o.ProfileID,
	}, nil
}

// SessionRequest carries an unsaved design and the export to run on it.
type SessionRequest struct {
	Document   DocumentSpec    `json:"document"`
	Canvas     json.RawMessage `json:"canvas,omitempty"`
	PDFSource  *PDFSourceMeta  `json:"pdf_source,omitempty"`
	HasChanges bool            `json:"has_changes"`
	Options    OptionsRequest  `json:"options"`
}

// Session builds the export inputs. The PDF background is detected on the
// parsed canvas. The original PDF may only be named by an http(s) URL.
func (r SessionRequest) Session() (Session, error) {
	if err := r.Document.Validate(); err != nil {
		return Session{}, err
	}
	if r.PDFSource != nil {
		if err := checkClientURL(r.PDFSource.OriginalURL); err != nil {
			return Session{}, err
		}
	}

	s := Session{
		Document:   r.Document,
		PDFSource:  r.PDFSource,
		HasChanges: r.HasChanges,
	}

	raw := bytes.TrimSpace(r.Canvas)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return s, nil
	}

	c, err := canvas.Parse(raw)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	s.Canvas = c
	if bg, ok := canvas.DetectPDFBackground(c); ok {
		s.PDFBackground = bg
	}
	return s, nil
}

// NewHandler creates a Handler. limit throttles the routes that produce
// files and may be nil.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxRequestSize int64,
	limit func(http.Handler) http.Handler,
) *Handler {
	return &Handler{
		sys:            sys,
		logger:         logger.With("handler", "exports"),
		pagination:     pagination,
		maxRequestSize: maxRequestSize,
		limit:          limit,
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	var produce []func(http.Handler) http.Handler
	if h.limit != nil {
		produce = append(produce, h.limit)
	}

	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/exports",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find},
					{Method: "GET", Pattern: "/{id}/file", Handler: h.Download},
				},
			},
			{
				Prefix:     "/exports",
				Middleware: produce,
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.ExportSession},
				},
			},
			{
				Prefix: "/designs/{id}/export",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/availability", Handler: h.Availability},
				},
			},
			{
				Prefix:     "/designs/{id}/export",
				Middleware: produce,
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.Export},
				},
			},
		},
	}
}

// List returns a paginated export history with optional query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns one export history record.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Download streams the archived file of a past export.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	artifact, err := h.sys.Download(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondAttachment(w, ContentTypePDF, artifact.Filename, artifact.Data)
}

// ExportSession exports the design carried in the request body.
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := h.decode(w, r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	opts, err := req.Options.Options()
	if err != nil {
		h.respondResult(w, failed(err))
		return
	}

	s, err := req.Session()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	h.respondResult(w, h.sys.ExportSession(r.Context(), s, opts))
}

// Export exports a persisted design.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var req OptionsRequest
	if err := h.decode(w, r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	opts, err := req.Options()
	if err != nil {
		h.respondResult(w, failed(err))
		return
	}

	res, err := h.sys.Export(r.Context(), id, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respondResult(w, res)
}

// Availability reports which export modes the design currently offers.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	avail, err := h.sys.Availability(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, avail)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", ErrInvalidRequest, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// respondResult sends the file of a successful export, or the failed Result
// as JSON with 422.
func (h *Handler) respondResult(w http.ResponseWriter, res Result) {
	if !res.Success {
		h.logger.Warn("export unsuccessful", "error", res.Error)
		handlers.RespondJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	handlers.RespondAttachment(w, res.ContentType, res.Filename, res.Data)
}
