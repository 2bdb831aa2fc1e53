package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"apkrisk/internal/api"
	"apkrisk/internal/api/handlers"
	"apkrisk/internal/config"
	"apkrisk/internal/domain/services"
	"apkrisk/internal/infrastructure/cache"
	"apkrisk/internal/infrastructure/intel"
	"apkrisk/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting apkrisk")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Validate the deployment-level scoring overrides before serving anything
	if _, err := services.ResolveCatalog(cfg.Scoring.Overrides()); err != nil {
		log.Fatal().Err(err).Msg("invalid scoring configuration")
	}

	// Optional identical-input result cache
	var assessmentCache *cache.AssessmentCache
	if cfg.Redis.Enabled {
		assessmentCache, err = cache.NewRedis(ctx, cfg.Redis, cfg.Assessing.CacheTTL, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without result cache")
		} else {
			defer assessmentCache.Close()
			log.Info().Str("addr", cfg.Redis.Addr()).Msg("result cache connected")
		}
	}

	// Optional local threat intelligence feeds
	var endpointIntel services.EndpointIntel
	if len(cfg.Intel.Feeds) > 0 {
		feedIntel, err := intel.LoadFeeds(cfg.Intel.Feeds, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load threat intelligence feeds")
		}
		endpointIntel = feedIntel
	}

	pipeline := services.NewPipeline(cfg.Scoring.Bands, endpointIntel, log)

	h := handlers.NewHandlers(handlers.Dependencies{
		Pipeline: pipeline,
		Cache:    assessmentCache,
		Config:   cfg,
		Logger:   log,
	})

	router := api.NewRouter(*cfg, h, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
