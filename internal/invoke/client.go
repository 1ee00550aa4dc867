// Package invoke calls remote run-step agents.
package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codex-k8s/runstep-agent/internal/auth"
	"github.com/codex-k8s/runstep-agent/internal/profile"
	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

// DefaultTimeout bounds a call when Client.Timeout is not set.
const DefaultTimeout = 15 * time.Second

const maxResponseBytes = 1 << 20

var (
	// ErrTimeout is returned when the agent does not answer in time.
	ErrTimeout = errors.New("agent_http_timeout")
	// ErrUnauthorized matches a *StatusError with status 401.
	ErrUnauthorized = errors.New("agent rejected credentials")
)

// StatusError reports a non-2xx answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("agent_http_%d: %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// InvalidResponseError reports a 2xx answer that breaks the response
// contract.
type InvalidResponseError struct {
	Errors []string
}

func (e *InvalidResponseError) Error() string {
	return "agent_invalid_response: " + strings.Join(e.Errors, "; ")
}

// Client posts run-step requests to a single agent endpoint.
type Client struct {
	// EndpointURL is the absolute run-step URL.
	EndpointURL string
	// Auth signs each request; nil means none.
	Auth auth.Config
	// Timeout bounds each call.
	Timeout time.Duration
	// HTTPClient defaults to a client without its own timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// FromProfile returns a client configured by p.
func FromProfile(p *profile.Profile) *Client {
	return &Client{
		EndpointURL: p.EndpointURL,
		Auth:        p.Credentials(),
		Timeout:     p.TimeoutDuration(),
	}
}

// Invoke sends payload and returns the validated response.
func (c *Client) Invoke(ctx context.Context, payload contract.Request) (contract.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return contract.Response{}, fmt.Errorf("encode request: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return contract.Response{}, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Request-ID", uuid.NewString())
	if c.Auth != nil {
		c.Auth.Sign(request.Header, body)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	start := time.Now()
	resp, err := httpClient.Do(request)
	if err != nil {
		if isTimeout(err) {
			return contract.Response{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return contract.Response{}, fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return contract.Response{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return contract.Response{}, fmt.Errorf("read response: %w", err)
	}
	if c.Logger != nil {
		c.Logger.Debug("agent responded",
			"url", c.EndpointURL,
			"status", resp.StatusCode,
			"bytes", len(data),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", request.Header.Get("X-Request-ID"),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return contract.Response{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if result := contract.ValidateResponseJSON(data); !result.Valid {
		return contract.Response{}, &InvalidResponseError{Errors: result.Errors}
	}
	var out contract.Response
	if err := json.Unmarshal(data, &out); err != nil {
		return contract.Response{}, &InvalidResponseError{Errors: []string{err.Error()}}
	}
	return out, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
