package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/runstep-agent/internal/auth"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, ":3001", cfg.ListenAddr)
	require.Equal(t, "/run_step", cfg.Path)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, 0, cfg.RatePerMinute)
	require.True(t, cfg.MetricsEnabled)
	require.False(t, cfg.MCPEnabled)
	require.Equal(t, "/mcp", cfg.MCPPath)

	require.Equal(t, "bearer", cfg.AuthMode)
	require.Equal(t, DefaultToken, cfg.Token)
	require.Equal(t, DefaultBasicUser, cfg.BasicUser)
	require.Equal(t, DefaultBasicPass, cfg.BasicPass)
	require.Equal(t, DefaultHMACSecret, cfg.HMACSecret)
	require.Equal(t, auth.Bearer{Token: DefaultToken}, cfg.Auth())
	require.Equal(t, []string{"KINDRED_RUNSTEP_TOKEN"}, cfg.InsecureDefaults())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"AUTH_MODE":                "hmac",
		"HMAC_SECRET":              "prod-secret",
		"RUNSTEP_LISTEN":           "127.0.0.1:9000",
		"RUNSTEP_SHUTDOWN_TIMEOUT": "3s",
		"RUNSTEP_RATE_PER_MINUTE":  "30",
		"RUNSTEP_MCP_ENABLED":      "true",
		"LOG_FORMAT":               "text",
	})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 30, cfg.RatePerMinute)
	require.True(t, cfg.MCPEnabled)
	require.Equal(t, auth.HMAC{Secret: "prod-secret"}, cfg.Auth())
	require.Empty(t, cfg.InsecureDefaults())
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("AUTH_MODE", "basic")
	t.Setenv("BASIC_USER", "ops")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, auth.Basic{Username: "ops", Password: DefaultBasicPass}, cfg.Auth())
	require.Equal(t, []string{"BASIC_PASS"}, cfg.InsecureDefaults())
}

func TestLoadFrom_UnknownModeDeniesAll(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"AUTH_MODE": "oauth"})
	require.NoError(t, err)
	require.Equal(t, auth.Unknown{Name: "oauth"}, cfg.Auth())
	require.Empty(t, cfg.InsecureDefaults())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad path":        {"RUNSTEP_PATH": "run_step"},
		"bad mcp path":    {"RUNSTEP_MCP_PATH": "mcp"},
		"negative rate":   {"RUNSTEP_RATE_PER_MINUTE": "-1"},
		"negative burst":  {"RUNSTEP_RATE_BURST": "-2"},
		"zero body limit": {"RUNSTEP_MAX_BODY_BYTES": "0"},
		"bad format":      {"LOG_FORMAT": "xml"},
		"bad duration":    {"RUNSTEP_SHUTDOWN_TIMEOUT": "soon"},
		"bad bool":        {"RUNSTEP_MCP_ENABLED": "maybe"},
		"no clients":      {"RUNSTEP_RATE_PER_MINUTE": "10", "RUNSTEP_RATE_MAX_CLIENTS": "0"},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(environ)
			require.Error(t, err)
		})
	}
}
