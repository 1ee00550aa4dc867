package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/runstep-agent/internal/app"
	"github.com/codex-k8s/runstep-agent/internal/audit"
	"github.com/codex-k8s/runstep-agent/internal/auth"
	"github.com/codex-k8s/runstep-agent/internal/config"
	"github.com/codex-k8s/runstep-agent/internal/httpapi"
	"github.com/codex-k8s/runstep-agent/internal/log"
	"github.com/codex-k8s/runstep-agent/internal/mcpserver"
	"github.com/codex-k8s/runstep-agent/internal/metrics"
	"github.com/codex-k8s/runstep-agent/internal/ratelimit"
)

func newServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the run-step endpoint (configured from the environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := log.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

			handler, err := newHandler(cfg, version, logger)
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), app.Settings{
				Listen:          cfg.ListenAddr,
				ReadTimeout:     cfg.ReadTimeout,
				WriteTimeout:    cfg.WriteTimeout,
				IdleTimeout:     cfg.IdleTimeout,
				ShutdownTimeout: cfg.ShutdownTimeout,
			}, handler, logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
}

// newHandler wires the API router from cfg and logs startup warnings.
func newHandler(cfg config.Config, version string, logger *slog.Logger) (http.Handler, error) {
	credentials := cfg.Auth()
	if !auth.Known(credentials) {
		logger.Warn("unknown AUTH_MODE, every request will be rejected", "auth_mode", cfg.AuthMode)
	}
	if insecure := cfg.InsecureDefaults(); len(insecure) > 0 {
		logger.Warn("example secrets in use, override them outside local development",
			"auth_mode", cfg.AuthMode, "variables", strings.Join(insecure, ","))
	}

	opts := httpapi.Options{
		Path:         cfg.Path,
		Auth:         credentials,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Limiter:      ratelimit.New(cfg.RatePerMinute, cfg.RateBurst, cfg.RateMaxClients),
		Audit:        audit.New(logger),
		Logger:       logger,
	}
	if cfg.MetricsEnabled {
		opts.Metrics = metrics.New()
		opts.MetricsPath = cfg.MetricsPath
	}
	if cfg.MCPEnabled {
		server, err := mcpserver.Builder{Version: version, Logger: logger}.Build()
		if err != nil {
			return nil, fmt.Errorf("build mcp server: %w", err)
		}
		opts.MCP = mcpserver.HTTPHandler(server)
		opts.MCPPath = cfg.MCPPath
	}

	logger.Info("run-step endpoint configured",
		"path", cfg.Path,
		"auth_mode", string(credentials.Mode()),
		"metrics", cfg.MetricsEnabled,
		"mcp", cfg.MCPEnabled,
		"rate_per_minute", cfg.RatePerMinute,
	)
	return httpapi.NewRouter(opts), nil
}
