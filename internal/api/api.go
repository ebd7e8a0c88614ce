// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/config"
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/infrastructure"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/middleware"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, &cfg.Export)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
