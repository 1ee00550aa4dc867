package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/runstep-agent/internal/config"
	"github.com/codex-k8s/runstep-agent/internal/log"
	"github.com/codex-k8s/runstep-agent/internal/mcpserver"
)

func newMCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the run-step MCP tools on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			// stdout carries the protocol, so logs go to stderr.
			logger := log.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

			server, err := mcpserver.Builder{Version: version, Logger: logger}.Build()
			if err != nil {
				return fmt.Errorf("build mcp server: %w", err)
			}
			return mcpserver.RunStdio(cmd.Context(), server)
		},
	}
}
