// Package app wires configuration, logging, observability, services and the
// HTTP router into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"tradelens/internal/config"
	apierrors "tradelens/internal/errors"
	"tradelens/internal/infrastructure"
	custommw "tradelens/internal/middleware"
	"tradelens/internal/services"
	handlers "tradelens/internal/transport/http"
	ws "tradelens/internal/websocket"
)

// Version is the service version reported by the health endpoint.
const Version = "v1.0.0"

// Application is the main application container.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	DataService   *services.DataService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
}

// NewApplication builds a fully wired application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	providers, err := infrastructure.InitializeOTel(cfg.Logging.Development, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
	}

	app.DataService = services.NewDataService(logger)
	app.HealthService = services.NewHealthService(logger, app.DataService, Version)
	app.WebSocketHub = ws.NewHub(logger)

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func (app *Application) setupRouter() error {
	httpMetrics, err := infrastructure.NewHTTPMetrics(app.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to register HTTP metrics: %w", err)
	}

	errorHandler := apierrors.NewErrorHandler(app.Logger, app.Config.Logging.Development)

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(errorHandler))
	r.Use(custommw.Metrics(httpMetrics))
	r.Use(custommw.CORS(app.Config.Security.AllowedOrigins))
	if app.Config.Security.RateLimit.Enabled {
		r.Use(custommw.RateLimit(app.Config.Security.RateLimit.RPS, app.Config.Security.RateLimit.Burst))
	}

	dataHandler := handlers.NewDataHandler(
		app.DataService,
		app.WebSocketHub,
		app.Logger,
		errorHandler,
		app.Config.Upload.MaxSizeBytes,
	)
	healthHandler := handlers.NewHealthHandler(app.HealthService, app.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/data", dataHandler.Routes())
		r.Get("/healthz", healthHandler.HealthCheck)
	})

	r.Handle("/metrics", app.OTelProviders.PrometheusHTTP)
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(app.WebSocketHub, app.Logger, w, req)
	})

	app.Router = r
	return nil
}

// Run starts the server and blocks until a shutdown signal arrives or the
// server fails.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.WebSocketHub.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		app.WebSocketHub.Stop()
		if err := app.OTelProviders.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("observability shutdown failed", slog.String("error", err.Error()))
		}
		infrastructure.CloseLogFile()
		return nil
	})

	err := g.Wait()
	app.Logger.Info("application stopped")
	return err
}
