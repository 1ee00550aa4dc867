package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/codex-k8s/runstep-agent/internal/auth"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid profile")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate applies defaults and verifies required fields.
func Validate(p *Profile) error {
	if p == nil {
		return invalid("profile is nil")
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(p.AgentID) == "" {
		p.AgentID = p.Name
	}

	if strings.TrimSpace(p.EndpointURL) == "" {
		return invalid("endpoint_url is required")
	}
	u, err := url.Parse(p.EndpointURL)
	if err != nil {
		return invalid("endpoint_url is invalid: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("endpoint_url must use http or https")
	}
	if u.Host == "" {
		return invalid("endpoint_url must be absolute")
	}

	p.timeout = DefaultTimeout
	if strings.TrimSpace(p.Timeout) != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return invalid("timeout is invalid: %v", err)
		}
		if d <= 0 {
			return invalid("timeout must be > 0")
		}
		p.timeout = d
	}

	if err := validateAuth(p.Auth); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(p.Tools))
	for i, tool := range p.Tools {
		if strings.TrimSpace(tool.Name) == "" {
			return invalid("tools[%d].name is required", i)
		}
		if _, ok := seen[tool.Name]; ok {
			return invalid("tools[%d].name %q is duplicated", i, tool.Name)
		}
		seen[tool.Name] = struct{}{}

		schema, err := wireSchema(tool.Schema)
		if err != nil {
			return invalid("tools[%d].schema: %v", i, err)
		}
		p.Tools[i].Schema = schema
	}
	return nil
}

// wireSchema re-encodes a YAML-decoded schema through encoding/json so the
// payload sent to agents carries the same shapes a JSON decoder would produce.
func wireSchema(schema map[string]any) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func validateAuth(a AuthConfig) error {
	switch auth.Mode(a.Type) {
	case auth.ModeNone:
	case auth.ModeBearer:
		if a.BearerToken == "" {
			return invalid("auth.bearer_token is required for bearer")
		}
	case auth.ModeBasic:
		if a.Basic.Username == "" || a.Basic.Password == "" {
			return invalid("auth.basic.username and auth.basic.password are required for basic")
		}
		if strings.Contains(a.Basic.Username, ":") {
			return invalid("auth.basic.username must not contain ':'")
		}
	case auth.ModeHMAC:
		if a.HMAC.Secret == "" {
			return invalid("auth.hmac.secret is required for hmac")
		}
	case "":
		return invalid("auth.type is required")
	default:
		return invalid("auth.type %q must be none, bearer, basic or hmac", a.Type)
	}
	return nil
}
