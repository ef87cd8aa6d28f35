package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/api"
	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/config"
	"github.com/UnknownOlympus/wayfarer/internal/logger"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/ranking"
	"github.com/UnknownOlympus/wayfarer/internal/repository"
	"github.com/UnknownOlympus/wayfarer/internal/routing"
	"github.com/UnknownOlympus/wayfarer/internal/service"
	"github.com/UnknownOlympus/wayfarer/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	catalogSourceFile     = "file"
	catalogSourceURL      = "url"
	catalogSourcePostgres = "postgres"

	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

// sourceOpener builds the catalog source, its health check and a function releasing it.
type sourceOpener func(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (catalog.Source, api.HealthCheck, func(), error)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	appLogger := logger.Setup(cfg.Env)

	// Create a separate registry for metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := run(ctx, cfg, appLogger, reg, openSource); err != nil {
		stop()
		log.Fatalf("Application failed: %v", err)
	}
}

// run wires the service and serves HTTP until ctx is canceled. The catalog source
// is released before run returns, on failure too.
func run(
	ctx context.Context,
	cfg *config.Config,
	appLogger *slog.Logger,
	reg *prometheus.Registry,
	open sourceOpener,
) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	appMetrics := metrics.NewMetrics(reg)

	src, health, closeSource, err := open(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open catalog source: %w", err)
	}
	defer closeSource()

	// The catalog is read once; nothing works without it.
	cat, err := catalog.Load(ctx, appLogger, src)
	if err != nil {
		appLogger.ErrorContext(ctx, "Failed to load catalog", "source", cfg.CatalogSource, "error", err)
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	facets, err := catalog.LoadFacets(cfg.FacetsPath)
	if err != nil {
		return fmt.Errorf("failed to load facets: %w", err)
	}

	provider, err := routing.NewProvider(routing.ProviderConfig{
		Type:    routing.ProviderType(cfg.Routing.Provider),
		BaseURL: cfg.Routing.BaseURL,
		APIKey:  cfg.Routing.APIKey,
		Timeout: cfg.Routing.Timeout,
		Logger:  appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create routing provider: %w", err)
	}
	appLogger.InfoContext(ctx, "Routing provider initialized", "type", cfg.Routing.Provider)

	pipeline := ranking.NewPipeline(appLogger, provider, ranking.NewQueue(cfg.RefineDelay), appMetrics, ranking.Options{
		TopN:                     cfg.TopN,
		ProviderName:             cfg.Routing.Provider,
		PreserveApproximateOrder: cfg.PreserveOrder,
	})
	sessions := session.NewStore(appLogger, appMetrics, cfg.SessionTTL)
	placesService := service.NewPlacesService(appLogger, cat, facets, pipeline, sessions, appMetrics)

	go sessions.Run(ctx, sweepInterval)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewHandler(appLogger, placesService, reg, health),
		ReadHeaderTimeout: 5 * time.Second,
		// Nearest-places requests wait on paced routing calls.
		WriteTimeout: 2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.InfoContext(ctx, "Starting HTTP server", "port", cfg.Port, "places", cat.Len())
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			appLogger.ErrorContext(ctx, "HTTP server failed", "error", errServe)
			serveErr <- errServe
			stop()
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()
	appLogger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		appLogger.ErrorContext(shutdownCtx, "Failed to shut down HTTP server", "error", err)
	}

	select {
	case err = <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	default:
	}

	appLogger.InfoContext(shutdownCtx, "Application stopped gracefully.")

	return nil
}

// openSource builds the configured catalog source. For postgres it also returns a
// health check pinging the database and a function closing the pool.
func openSource(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (catalog.Source, api.HealthCheck, func(), error) {
	noop := func() {}

	switch cfg.CatalogSource {
	case catalogSourceFile:
		return catalog.NewFileSource(cfg.CatalogPath), nil, noop, nil
	case catalogSourceURL:
		return catalog.NewHTTPSource(cfg.CatalogPath, cfg.Routing.Timeout), nil, noop, nil
	case catalogSourcePostgres:
		pool, err := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("failed to connect to DB: %w", err)
		}
		repo := repository.NewRepository(pool, log)
		return repo, repo.Ping, pool.Close, nil
	default:
		return nil, nil, noop, fmt.Errorf("unsupported catalog source: %s", cfg.CatalogSource)
	}
}
