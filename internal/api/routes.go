package api

import (
	"net/http"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/config"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/middleware"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	limit := middleware.RateLimit(cfg.Export.RateLimit, cfg.Export.RateBurst)

	routes.Register(
		mux,
		domain.Designs.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Exports.Handler(cfg.API.MaxRequestSizeBytes(), limit).Routes(),
		NewProfileHandler(runtime.Storage, cfg.Export.Profiles, runtime.Logger).Routes(),
	)
}
