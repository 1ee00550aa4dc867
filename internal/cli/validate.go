package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

const maxValidateInput = 1 << 20

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE|-]",
		Short: "Check a run-step response document (stdin when FILE is - or omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(io.LimitReader(in, maxValidateInput+1))
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if len(data) > maxValidateInput {
				return fmt.Errorf("input exceeds %d MiB", maxValidateInput>>20)
			}

			result := contract.ValidateResponseJSON(data)
			if result.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}
			for _, msg := range result.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return fmt.Errorf("%w: response is invalid", errReported)
		},
	}
}
