// Package main implements the entry point for the PawTrol API server,
// the coordination core behind on-demand pet-care bookings: dispatch,
// trust handshake, live location relay, payment reconciliation and
// safety escalation.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/pawtrol/pawtrol-api/internal/config"
	"github.com/pawtrol/pawtrol-api/internal/platform/logger"
)

func main() {
	cfg, logr, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logr)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logr, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage_backend", cfg.Database.Backend)

	return cfg, logr, nil
}
