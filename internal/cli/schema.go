package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/runstep-agent/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print JSON Schemas for the run-step contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				out []byte
				err error
			)
			if name == "" {
				out, err = schema.JSON()
			} else {
				doc, docErr := schema.Document(name)
				if docErr != nil {
					return docErr
				}
				out, err = json.MarshalIndent(doc, "", "  ")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", fmt.Sprintf("Print one schema (%s)", strings.Join(schema.Names(), ", ")))
	return cmd
}
