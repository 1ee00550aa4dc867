package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/codex-k8s/runstep-agent/internal/http/health"
)

// Settings holds listener and timeout values for the HTTP server.
type Settings struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// App controls the HTTP server lifecycle.
type App struct {
	baseCtx         context.Context
	server          *http.Server
	health          *health.Handler
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New initializes the HTTP server with health endpoints. All other paths are
// served by handler.
func New(baseCtx context.Context, settings Settings, handler http.Handler, logger *slog.Logger) (*App, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is nil")
	}
	if baseCtx == nil {
		return nil, fmt.Errorf("base context is nil")
	}

	healthHandler := health.New()
	mux := http.NewServeMux()
	healthHandler.Register(mux)
	mux.Handle("/", handler)

	srv := &http.Server{
		Addr:              settings.Listen,
		Handler:           mux,
		ReadTimeout:       orDefault(settings.ReadTimeout, 15*time.Second),
		ReadHeaderTimeout: orDefault(settings.ReadTimeout, 15*time.Second),
		WriteTimeout:      orDefault(settings.WriteTimeout, 15*time.Second),
		IdleTimeout:       orDefault(settings.IdleTimeout, 60*time.Second),
	}

	return &App{
		baseCtx:         baseCtx,
		server:          srv,
		health:          healthHandler,
		logger:          logger,
		shutdownTimeout: orDefault(settings.ShutdownTimeout, 10*time.Second),
	}, nil
}

// Handler returns the root handler, health endpoints included.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run listens on the configured address and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		a.health.SetReady()
		if a.logger != nil {
			a.logger.Info("http server started", "addr", ln.Addr().String())
		}
		errCh <- a.server.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		if a.logger != nil {
			a.logger.Info("shutdown requested")
		}
		return a.shutdown()
	case err := <-errCh:
		a.health.SetNotReady()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if a.logger != nil {
			a.logger.Error("http server error", "error", err)
		}
		return err
	}
}

func (a *App) shutdown() error {
	a.health.SetNotReady()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.baseCtx), a.shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func orDefault(value, def time.Duration) time.Duration {
	if value <= 0 {
		return def
	}
	return value
}
