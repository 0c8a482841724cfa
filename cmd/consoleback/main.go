package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clementg/consoleback/internal/api"
	"github.com/clementg/consoleback/internal/artifact"
	"github.com/clementg/consoleback/internal/config"
	"github.com/clementg/consoleback/internal/core"
	"github.com/clementg/consoleback/internal/driver"
	"github.com/clementg/consoleback/internal/guard"
	"github.com/clementg/consoleback/internal/logging"
	"github.com/clementg/consoleback/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ring := logging.NewRing(logging.DefaultRingSize)
	logger := logging.NewLogger(cfg, ring)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, err := store.OpenRegistry(cfg.RegistryPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open console registry")
	}
	sessions, err := store.OpenSession(cfg.SessionPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}

	var mirror artifact.Mirror
	if cfg.S3MirrorEnabled() {
		mirror = artifact.NewS3Mirror(cfg, logger)
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("artifact S3 mirror enabled")
	}
	artifacts := artifact.NewStore(cfg.BackupRoot, mirror, logger)

	drv := driver.NewClient(cfg.DriverURL, logger)
	g := guard.New()
	services := core.NewServices(cfg, registry, sessions, artifacts, g, drv, logger)

	go services.Orchestrator.RunLoop(ctx, cfg.SchedulerTick)

	srv := api.NewServer(logger, services, artifacts, ring)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting consoleback server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	services.Orchestrator.Wait()
}
