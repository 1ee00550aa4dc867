// Package cli implements the runstep-agent command line.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("failed")

// IsReported reports whether err was already described to the user.
func IsReported(err error) bool {
	return errors.Is(err, errReported)
}

func NewRootCmd(version string) *cobra.Command {
	if version == "" {
		version = "dev"
	}

	cmd := &cobra.Command{
		Use:           "runstep-agent",
		Short:         "Run-step agent endpoint and tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newMCPCmd(version))
	cmd.AddCommand(newInvokeCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newProfilesCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}
