package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/runstep-agent/internal/invoke"
	"github.com/codex-k8s/runstep-agent/internal/log"
	"github.com/codex-k8s/runstep-agent/internal/profile"
)

func newInvokeCmd() *cobra.Command {
	var (
		profilePath string
		embedded    string
		agentID     string
		timeout     time.Duration
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Send a validation request to a run-step agent described by a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				p   *profile.Profile
				err error
			)
			if embedded != "" {
				p, err = profile.LoadEmbedded(embedded)
			} else {
				p, err = profile.LoadFile(profilePath)
			}
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}

			client := invoke.FromProfile(p)
			if timeout > 0 {
				client.Timeout = timeout
			}
			level := "warn"
			if verbose {
				level = "debug"
			}
			client.Logger = log.New(level, "text", cmd.ErrOrStderr())

			id := agentID
			if id == "" {
				id = p.AgentID
			}
			resp, err := client.Invoke(cmd.Context(), invoke.BuildValidationPayload(p.Descriptors(), id))
			if err != nil {
				var invalid *invoke.InvalidResponseError
				if errors.As(err, &invalid) {
					for _, msg := range invalid.Errors {
						fmt.Fprintln(cmd.ErrOrStderr(), msg)
					}
					return fmt.Errorf("%w: agent %s returned an invalid response", errReported, p.Name)
				}
				return err
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "Profile YAML file")
	cmd.Flags().StringVar(&embedded, "embedded", "", "Embedded example profile name, as listed by the profiles command")
	cmd.Flags().StringVar(&agentID, "agent-id", "", "Agent id used in the run id (default: profile agent_id)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the profile timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log request details to stderr")
	cmd.MarkFlagsMutuallyExclusive("profile", "embedded")
	cmd.MarkFlagsOneRequired("profile", "embedded")

	return cmd
}
