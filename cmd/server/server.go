package main

import (
	"time"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/config"
	"github.com/comboworks-ops/webprinter-platform-sub007/internal/infrastructure"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
	errc    chan error
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
		errc:    make(chan error, 1),
	}, nil
}

// Start runs every startup hook and then begins serving. A failed hook
// aborts startup before the listener opens.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
		return err
	}
	s.infra.Logger.Info("all subsystems ready")

	go s.http.Serve(s.errc)
	return nil
}

// Errors reports fatal listener failures after Start.
func (s *Server) Errors() <-chan error {
	return s.errc
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
