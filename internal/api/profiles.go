package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/handlers"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/proofing"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/routes"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/storage"
)

// ProfileStatus is a configured output profile together with the state of
// its ICC file in blob storage.
type ProfileStatus struct {
	proofing.Profile
	Stored bool          `json:"stored"`
	Blob   *storage.Meta `json:"blob,omitempty"`
}

// ProfileHandler lists the soft-proof output conditions and serves their
// ICC files.
type ProfileHandler struct {
	store    storage.System
	profiles []proofing.Profile
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler. An empty profile list falls
// back to proofing.DefaultProfiles.
func NewProfileHandler(store storage.System, profiles []proofing.Profile, logger *slog.Logger) *ProfileHandler {
	if len(profiles) == 0 {
		profiles = proofing.DefaultProfiles
	}
	return &ProfileHandler{
		store:    store,
		profiles: profiles,
		logger:   logger.With("handler", "profiles"),
	}
}

func (h *ProfileHandler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/profiles",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/icc", Handler: h.Download},
		},
	}
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	out := make([]ProfileStatus, 0, len(h.profiles))
	for _, p := range h.profiles {
		status, err := h.status(r, p)
		if err != nil {
			handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
			return
		}
		out = append(out, status)
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}

func (h *ProfileHandler) Find(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(r.PathValue("id"))
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("profile %s not found", r.PathValue("id")))
		return
	}

	status, err := h.status(r, p)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, status)
}

func (h *ProfileHandler) Download(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(r.PathValue("id"))
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("profile %s not found", r.PathValue("id")))
		return
	}

	key, ok := storageKey(p)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("profile %s has no stored ICC file", p.ID))
		return
	}

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", "application/vnd.iccprofile")
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}

func (h *ProfileHandler) lookup(id string) (proofing.Profile, bool) {
	for _, p := range h.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return proofing.Profile{}, false
}

// status reports whether p's ICC file exists. Profiles served from http(s)
// URLs are never marked as stored.
func (h *ProfileHandler) status(r *http.Request, p proofing.Profile) (ProfileStatus, error) {
	status := ProfileStatus{Profile: p}

	key, ok := storageKey(p)
	if !ok {
		return status, nil
	}

	meta, err := h.store.Find(r.Context(), key)
	switch {
	case err == nil:
		status.Stored = true
		status.Blob = meta
	case storage.MapHTTPStatus(err) != http.StatusNotFound:
		return status, err
	}
	return status, nil
}

func storageKey(p proofing.Profile) (string, bool) {
	key, ok := strings.CutPrefix(p.URL, export.StorageScheme)
	return key, ok && key != ""
}
