package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/runstep-agent/configs"
	"github.com/codex-k8s/runstep-agent/internal/profile"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List embedded example profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tAUTH\tENDPOINT")
			for _, file := range configs.Names() {
				name := strings.TrimSuffix(file, ".yaml")
				p, err := profile.LoadEmbedded(file)
				if err != nil {
					fmt.Fprintf(tw, "%s\t-\terror: %v\n", name, err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, p.Auth.Type, p.EndpointURL)
			}
			return tw.Flush()
		},
	}
}
