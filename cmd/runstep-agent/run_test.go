package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	require.Equal(t, 0, Run(context.Background(), []string{"--help"}))
}

func TestRun_Version(t *testing.T) {
	require.Equal(t, 0, Run(context.Background(), []string{"--version"}))
}

func TestRun_UnknownFlag(t *testing.T) {
	require.Equal(t, 1, Run(context.Background(), []string{"--unknown-flag"}))
}

func TestRun_Schema(t *testing.T) {
	require.Equal(t, 0, Run(context.Background(), []string{"schema", "--name", "ValidationResult"}))
}
