package main

import (
	"context"
	"fmt"
	"os"

	"github.com/codex-k8s/runstep-agent/internal/cli"
)

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	root := cli.NewRootCmd(Version)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return 1
	}
	return 0
}
