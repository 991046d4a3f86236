// Package main is the entry point for the labourdash analytics service.
// It serves labour-cost trends over HTTP and runs cache warm-up, backup and
// database maintenance jobs in the background.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/labourdash/internal/config"
	"github.com/aristath/labourdash/internal/di"
	recordshandlers "github.com/aristath/labourdash/internal/modules/records/handlers"
	trendshandlers "github.com/aristath/labourdash/internal/modules/trends/handlers"
	"github.com/aristath/labourdash/internal/server"
	"github.com/aristath/labourdash/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires databases, repositories, services and jobs
// 4. Starts the HTTP server and the job scheduler
// 5. Waits for a shutdown signal and stops gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "labourdash",
	})

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("currency", cfg.Currency).
		Str("default_tenant", cfg.DefaultTenant).
		Msg("Starting labourdash")

	container, _, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	srv := server.New(server.Config{
		Log:     log,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		Modules: []server.RouteRegistrar{
			trendshandlers.NewHandler(container.TrendsService, cfg.DefaultTenant, log),
			recordshandlers.NewHandler(container.RecordsRepo, cfg.DefaultTenant, log),
		},
		System: server.NewSystemHandlers(
			log,
			container.Databases(),
			container.Scheduler,
			container.TrendsService,
			container.BackupService,
		),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	container.Scheduler.Start()

	// Populate the cache before the first dashboard request
	go func() {
		if err := container.Scheduler.RunNow("warm_trends_cache"); err != nil {
			log.Warn().Err(err).Msg("Initial cache warm-up failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("labourdash started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
