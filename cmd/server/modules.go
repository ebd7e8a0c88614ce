package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/api"
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/config"
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/infrastructure"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/lifecycle"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/module"
)

const probeTimeout = 3 * time.Second

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	router.HandleNative("GET /readyz", readiness(infra.Lifecycle))

	return router
}

// readiness reports 503 until startup completed and while any dependency
// probe fails.
func readiness(lc *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			respond(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		if failed := lc.Check(ctx); len(failed) > 0 {
			checks := make(map[string]string, len(failed))
			for name, err := range failed {
				checks[name] = err.Error()
			}
			respond(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": checks})
			return
		}

		respond(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
