package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/codex-k8s/runstep-agent/internal/auth"
)

// Example secrets shipped as defaults. They must be overridden outside
// local development.
const (
	DefaultToken      = "dev-token"
	DefaultBasicUser  = "agent"
	DefaultBasicPass  = "super-secret"
	DefaultHMACSecret = "kindred-secret"
)

// Config stores environment-driven settings for the run-step server.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `env:"RUNSTEP_LISTEN" envDefault:":3001"`
	// Path is the run-step endpoint path.
	Path string `env:"RUNSTEP_PATH" envDefault:"/run_step"`
	// LogLevel sets the logger level.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFormat selects json or text output.
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	// ShutdownTimeout controls graceful shutdown duration.
	ShutdownTimeout time.Duration `env:"RUNSTEP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// ReadTimeout limits request read time.
	ReadTimeout time.Duration `env:"RUNSTEP_READ_TIMEOUT" envDefault:"15s"`
	// WriteTimeout limits response write time.
	WriteTimeout time.Duration `env:"RUNSTEP_WRITE_TIMEOUT" envDefault:"15s"`
	// IdleTimeout controls idle keep-alive connections.
	IdleTimeout time.Duration `env:"RUNSTEP_IDLE_TIMEOUT" envDefault:"60s"`
	// MaxBodyBytes caps the request body size.
	MaxBodyBytes int64 `env:"RUNSTEP_MAX_BODY_BYTES" envDefault:"1048576"`

	// RatePerMinute limits requests per client; 0 disables limiting.
	RatePerMinute int `env:"RUNSTEP_RATE_PER_MINUTE" envDefault:"0"`
	// RateBurst is the token bucket size; 0 means RatePerMinute.
	RateBurst int `env:"RUNSTEP_RATE_BURST" envDefault:"0"`
	// RateMaxClients bounds the number of tracked clients.
	RateMaxClients int `env:"RUNSTEP_RATE_MAX_CLIENTS" envDefault:"10000"`

	// MetricsEnabled exposes Prometheus metrics.
	MetricsEnabled bool `env:"RUNSTEP_METRICS_ENABLED" envDefault:"true"`
	// MetricsPath is the metrics endpoint path.
	MetricsPath string `env:"RUNSTEP_METRICS_PATH" envDefault:"/metrics"`

	// MCPEnabled mounts the MCP endpoint.
	MCPEnabled bool `env:"RUNSTEP_MCP_ENABLED" envDefault:"false"`
	// MCPPath is the MCP endpoint path.
	MCPPath string `env:"RUNSTEP_MCP_PATH" envDefault:"/mcp"`

	// AuthMode is none, bearer, basic or hmac.
	AuthMode string `env:"AUTH_MODE" envDefault:"bearer"`
	// Token is the bearer token.
	Token string `env:"KINDRED_RUNSTEP_TOKEN" envDefault:"dev-token"`
	// BasicUser is the basic auth username.
	BasicUser string `env:"BASIC_USER" envDefault:"agent"`
	// BasicPass is the basic auth password.
	BasicPass string `env:"BASIC_PASS" envDefault:"super-secret"`
	// HMACSecret is the shared signing secret.
	HMACSecret string `env:"HMAC_SECRET" envDefault:"kindred-secret"`
}

// Load parses environment variables into Config.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadFrom parses the given environment instead of the process one.
func LoadFrom(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks values that env parsing cannot.
func (c Config) Validate() error {
	for name, path := range map[string]string{
		"RUNSTEP_PATH":         c.Path,
		"RUNSTEP_METRICS_PATH": c.MetricsPath,
		"RUNSTEP_MCP_PATH":     c.MCPPath,
	} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s must start with /", name)
		}
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("RUNSTEP_MAX_BODY_BYTES must be > 0")
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("RUNSTEP_RATE_PER_MINUTE must be >= 0")
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("RUNSTEP_RATE_BURST must be >= 0")
	}
	if c.RatePerMinute > 0 && c.RateMaxClients <= 0 {
		return fmt.Errorf("RUNSTEP_RATE_MAX_CLIENTS must be > 0 when rate limiting is enabled")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}
	return nil
}

// Auth builds the authentication scheme selected by AuthMode.
func (c Config) Auth() auth.Config {
	return auth.Parse(c.AuthMode, auth.Secrets{
		Token:      c.Token,
		BasicUser:  c.BasicUser,
		BasicPass:  c.BasicPass,
		HMACSecret: c.HMACSecret,
	})
}

// InsecureDefaults lists the variables of the active mode that still hold
// their shipped example value.
func (c Config) InsecureDefaults() []string {
	var out []string
	switch auth.Mode(c.AuthMode) {
	case auth.ModeBearer:
		if c.Token == DefaultToken {
			out = append(out, "KINDRED_RUNSTEP_TOKEN")
		}
	case auth.ModeBasic:
		if c.BasicUser == DefaultBasicUser {
			out = append(out, "BASIC_USER")
		}
		if c.BasicPass == DefaultBasicPass {
			out = append(out, "BASIC_PASS")
		}
	case auth.ModeHMAC:
		if c.HMACSecret == DefaultHMACSecret {
			out = append(out, "HMAC_SECRET")
		}
	}
	return out
}
