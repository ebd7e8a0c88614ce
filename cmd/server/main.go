package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}
	logger := srv.infra.Logger

	if err := srv.Start(); err != nil {
		logger.Error("startup failed", "error", err)
		if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			logger.Error("shutdown after failed startup", "error", err)
		}
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	code := 0
	select {
	case sig := <-sigChan:
		logger.Info("signal received", "signal", sig.String())
	case err := <-srv.Errors():
		logger.Error("server failed", "error", err)
		code = 1
	}

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown failed", "error", err)
		code = 1
	}

	logger.Info("webprinter export service stopped")
	os.Exit(code)
}
