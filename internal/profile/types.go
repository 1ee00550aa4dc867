// Package profile describes remote run-step agents in YAML.
package profile

import (
	"time"

	"github.com/codex-k8s/runstep-agent/internal/auth"
	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

// DefaultTimeout applies when a profile sets no timeout.
const DefaultTimeout = 15 * time.Second

// Profile is the root YAML document.
type Profile struct {
	// Name identifies the profile.
	Name string `yaml:"name"`
	// Description is free text.
	Description string `yaml:"description,omitempty"`
	// AgentID is used in validation run ids; defaults to Name.
	AgentID string `yaml:"agent_id,omitempty"`
	// EndpointURL is the absolute run-step URL of the agent.
	EndpointURL string `yaml:"endpoint_url"`
	// Timeout is a Go duration string, e.g. 15s.
	Timeout string `yaml:"timeout,omitempty"`
	// Auth selects how requests to the agent are signed.
	Auth AuthConfig `yaml:"auth"`
	// Tools are offered to the agent in order.
	Tools []ToolConfig `yaml:"tools,omitempty"`

	timeout time.Duration
}

// AuthConfig holds the scheme and the secret it needs.
type AuthConfig struct {
	// Type is none, bearer, basic or hmac.
	Type string `yaml:"type"`
	// BearerToken is used by bearer.
	BearerToken string `yaml:"bearer_token,omitempty"`
	// Basic is used by basic.
	Basic BasicConfig `yaml:"basic,omitempty"`
	// HMAC is used by hmac.
	HMAC HMACConfig `yaml:"hmac,omitempty"`
}

// BasicConfig holds basic auth credentials.
type BasicConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HMACConfig holds the shared signing secret.
type HMACConfig struct {
	Secret string `yaml:"secret"`
}

// ToolConfig describes one tool offered to the agent.
type ToolConfig struct {
	// Name is the tool identifier.
	Name string `yaml:"name"`
	// Description explains the tool.
	Description string `yaml:"description,omitempty"`
	// Schema is a JSON Schema for the tool arguments.
	Schema map[string]any `yaml:"schema,omitempty"`
}

// Credentials returns the auth variant selected by the profile.
func (p *Profile) Credentials() auth.Config {
	return auth.Parse(p.Auth.Type, auth.Secrets{
		Token:      p.Auth.BearerToken,
		BasicUser:  p.Auth.Basic.Username,
		BasicPass:  p.Auth.Basic.Password,
		HMACSecret: p.Auth.HMAC.Secret,
	})
}

// TimeoutDuration returns the parsed timeout, DefaultTimeout when unset.
func (p *Profile) TimeoutDuration() time.Duration {
	if p.timeout > 0 {
		return p.timeout
	}
	return DefaultTimeout
}

// Descriptors converts Tools to wire descriptors.
func (p *Profile) Descriptors() []contract.ToolDescriptor {
	out := make([]contract.ToolDescriptor, 0, len(p.Tools))
	for _, tool := range p.Tools {
		out = append(out, contract.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			Schema:      tool.Schema,
		})
	}
	return out
}
