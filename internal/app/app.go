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
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"sleepcli/internal/config"
	"sleepcli/internal/infrastructure"
	custommw "sleepcli/internal/middleware"
	"sleepcli/internal/services"
	handlers "sleepcli/internal/transport/http"
	"sleepcli/pkg/contracts/domain"
)

// Version is set at build time.
var Version = "dev"

// Application wires configuration, logging, telemetry, the dataset service
// and the HTTP surface together.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Dataset       *services.DatasetService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig builds the application from an explicit config,
// which tests use to avoid the environment.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	var metrics *infrastructure.PipelineMetrics
	if providers.Meter != nil {
		metrics, err = infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	dataset := services.NewDatasetService(logger)
	dataset.SetMetrics(metrics)

	app := &Application{
		Config:        cfg,
		Dataset:       dataset,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}

	app.setupRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(a.metricsMiddleware)

	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	defaults := a.pipelineDefaults()

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", handlers.NewHealthHandler(a.Dataset, a.Logger, Version).Routes())
		r.Mount("/", handlers.NewDatasetHandler(a.Dataset, a.Logger, defaults).Routes())
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// pipelineDefaults maps the configured pipeline parameters onto the filter
// config that seeds each request.
func (a *Application) pipelineDefaults() domain.FilterConfig {
	cfg := domain.DefaultFilterConfig()
	cfg.MinHours = a.Config.Pipeline.MinHours
	cfg.MaxHours = a.Config.Pipeline.MaxHours
	cfg.RollingWindow = a.Config.Pipeline.RollingWindow
	return cfg
}

func (a *Application) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		next.ServeHTTP(w, r)

		ctx := r.Context()
		a.Metrics.HTTPRequestsTotal.Add(ctx, 1)
		a.Metrics.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds())
	})
}

// LoadDataset loads the configured sleep export and optional event log
// before the server starts accepting view requests.
func (a *Application) LoadDataset(ctx context.Context) error {
	if a.Config.Pipeline.SleepFile == "" {
		a.Logger.WarnContext(ctx, "no sleep file configured, starting without a dataset")
		return nil
	}

	if err := a.Dataset.LoadSleepFile(ctx, a.Config.Pipeline.SleepFile); err != nil {
		return err
	}

	if a.Config.Pipeline.EventsFile != "" {
		if err := a.Dataset.LoadEventsFile(ctx, a.Config.Pipeline.EventsFile); err != nil {
			return err
		}
	}

	return nil
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "server starting",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		a.Logger.InfoContext(ctx, "shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.Error("log file close failed", slog.String("error", err.Error()))
	}

	a.Logger.Info("server stopped")
	return nil
}
