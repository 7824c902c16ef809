package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookingsheet/pkg/config"
	"bookingsheet/pkg/contracts"
	"bookingsheet/pkg/logger"
	"bookingsheet/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// ShutdownFunc releases a resource once the server has stopped.
type ShutdownFunc func() error

type Application struct {
	cfg              *config.Config
	log              *logger.Logger
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	onShutdown       []ShutdownFunc
}

func NewApplication(cfg *config.Config, log *logger.Logger) *Application {
	return &Application{
		cfg: cfg,
		log: log,
	}
}

// SetApp builds the HTTP server. onShutdown runs in order after the server
// has drained.
func (a *Application) SetApp(healthHandler, appHandler contracts.Handler, onShutdown ...ShutdownFunc) {
	a.onShutdown = onShutdown
	a.setHealthHandler(healthHandler)
	a.setAppHandler(appHandler)
	a.setAppServer()
}

func (a *Application) setHealthHandler(healthHandler contracts.Handler) {
	healthRouter := httprouter.New()
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(appHandler contracts.Handler) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, middleware.IdempotencyKeyHeader)(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(a.log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(a.cfg.MaxRequestSize)(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	a.log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      middleware.CORS(a.cfg.CORSAllowedOrigins)(mux),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.log.Info("HTTP server configured", "port", a.cfg.Port, "cors_allowed_origins", a.cfg.CORSAllowedOrigins)
}

// Handler returns the full handler chain served by Run.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.log.Info("Shutdown signal received", "signal", sig)
		if err := a.Shutdown(); err != nil {
			a.log.Fatal("Could not stop server gracefully", "error", err)
		}
	}
}

// Shutdown drains in-flight requests within ShutdownTimeout, then stops
// background workers and runs the registered shutdown funcs.
func (a *Application) Shutdown() error {
	a.log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("Server shutdown failed", "error", err)
		if closeErr := a.server.Close(); closeErr != nil {
			shutdownErr = errors.Join(err, closeErr)
		}
	}

	a.log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	for _, fn := range a.onShutdown {
		if err := fn(); err != nil {
			a.log.Error("Shutdown hook failed", "error", err)
		}
	}
	a.log.Info("Background workers stopped")

	if shutdownErr == nil {
		a.log.Info("Server stopped gracefully")
	}
	return shutdownErr
}
