package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"salespulse/internal/config"
	"salespulse/internal/infrastructure"
	customMiddleware "salespulse/internal/middleware"
	"salespulse/internal/services"
	handlers "salespulse/internal/transport/http"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Application is the assembled server: configuration, logger, metrics,
// service layer and HTTP surface.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *infrastructure.Metrics
	Analytics *services.AnalyticsService
	Router    *chi.Mux
	Server    *http.Server
}

// New builds the application from a configuration file path, which may be
// empty to use defaults plus environment variables.
func New(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := infrastructure.NewLogger(cfg.Logging)
	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("source", cfg.Data.SourcePath),
	)

	metrics, err := infrastructure.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("initialize metrics: %w", err)
	}

	ref, err := config.LoadReferenceData(cfg.Data.ReferencePath)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	analytics := services.NewAnalyticsService(cfg.Data, cfg.Analytics, ref, logger)
	analytics.SetMetrics(metrics)

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Analytics: analytics,
	}
	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// buildRouter wires the middleware chain and mounts the handlers.
func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.RateLimit(rl.RPS, rl.Burst))
	}
	r.Use(customMiddleware.Instrument(a.Metrics))

	analyticsHandler := handlers.NewAnalyticsHandler(
		a.Analytics, a.Config.Analytics.ParetoThreshold, a.Logger)
	r.Route("/api", analyticsHandler.RegisterRoutes)

	healthHandler := handlers.NewHealthHandler(a.Analytics, Version, a.Logger)
	healthHandler.RegisterRoutes(r)

	r.Handle("/metrics", handlers.MetricsHandler(a.Metrics))

	return r
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := a.Metrics.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("metrics shutdown failed", slog.String("error", err.Error()))
	}

	a.Logger.Info("shutdown complete")
	return nil
}

// warmupTimeout bounds the optional eager dataset load at startup.
const warmupTimeout = 2 * time.Minute

// Warmup eagerly loads the dataset so the first request does not pay the
// load cost. Failure is logged, not fatal; the source may appear later.
func (a *Application) Warmup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	if _, err := a.Analytics.Dataset(ctx); err != nil {
		a.Logger.Warn("dataset warmup failed",
			slog.String("source", a.Config.Data.SourcePath),
			slog.String("error", err.Error()),
		)
	}
}
