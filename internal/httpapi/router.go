// Package httpapi serves the run-step endpoint over HTTP.
package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codex-k8s/runstep-agent/internal/audit"
	"github.com/codex-k8s/runstep-agent/internal/auth"
	"github.com/codex-k8s/runstep-agent/internal/metrics"
	"github.com/codex-k8s/runstep-agent/internal/ratelimit"
	"github.com/codex-k8s/runstep-agent/internal/runstep"
	"github.com/codex-k8s/runstep-agent/internal/security"
)

// DefaultMaxBodyBytes is used when Options.MaxBodyBytes is not positive.
const DefaultMaxBodyBytes int64 = 1 << 20

// Options configures the router.
type Options struct {
	// Path of the run-step endpoint, for example /run_step.
	Path string
	// Auth is the scheme every protected request must satisfy.
	Auth auth.Config
	// MaxBodyBytes caps request bodies on protected routes.
	MaxBodyBytes int64
	// Limiter throttles protected routes; nil disables throttling.
	Limiter *ratelimit.Limiter
	// Metrics records request outcomes; nil disables recording.
	Metrics *metrics.Recorder
	// MetricsPath mounts the metrics handler when Metrics is set.
	MetricsPath string
	// MCP is mounted at MCPPath behind the same auth when non-nil.
	MCP     http.Handler
	MCPPath string
	Audit   audit.Logger
	Logger  *slog.Logger
}

type handlers struct {
	auth    auth.Config
	maxBody int64
	metrics *metrics.Recorder
	audit   audit.Logger
	logger  *slog.Logger
}

// NewRouter returns the API handler. Routes outside the API fall through to
// a 404.
func NewRouter(opts Options) http.Handler {
	if opts.Auth == nil {
		opts.Auth = auth.Unknown{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Path == "" {
		opts.Path = "/run_step"
	}

	h := &handlers{
		auth:    opts.Auth,
		maxBody: opts.MaxBodyBytes,
		metrics: opts.Metrics,
		audit:   opts.Audit,
		logger:  opts.Logger,
	}

	throttle := ratelimit.Middleware(opts.Limiter, func(w http.ResponseWriter, _ *http.Request) {
		h.metrics.ObserveRequest(metrics.OutcomeRateLimited, 0)
		writeError(w, http.StatusTooManyRequests, errorCodeRateLimited, "rate limit exceeded")
	})

	mux := http.NewServeMux()
	mux.Handle("POST "+opts.Path, throttle(http.HandlerFunc(h.handleRunStep)))
	if opts.MCP != nil && opts.MCPPath != "" {
		mux.Handle(opts.MCPPath, throttle(h.guard(opts.MCP)))
	}
	if opts.Metrics != nil && opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, opts.Metrics.Handler())
	}

	return chain(requestLogging(opts.Logger))(mux)
}

func (h *handlers) handleRunStep(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := h.runStep(w, r)
	h.metrics.ObserveRequest(outcome, time.Since(start))
}

func (h *handlers) runStep(w http.ResponseWriter, r *http.Request) string {
	body, failed := h.readBody(w, r)
	if failed != "" {
		return failed
	}
	if !h.authorize(r, body) {
		writeUnauthorized(w)
		return metrics.OutcomeUnauthorized
	}

	resp, err := runstep.Step(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorCodeInvalidRequest, err.Error())
		return metrics.OutcomeInvalid
	}
	writeJSON(w, http.StatusOK, resp)
	return metrics.OutcomeOK
}

// guard authorizes a request against its full body and hands the body on
// unchanged.
func (h *handlers) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, failed := h.readBody(w, r)
		if failed != "" {
			return
		}
		if !h.authorize(r, body) {
			writeUnauthorized(w)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

// readBody reads the capped body. On failure the response is already
// written.
func (h *handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, string) {
	if r.Body == nil {
		return nil, ""
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err == nil {
		return body, ""
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, http.StatusRequestEntityTooLarge, errorCodeTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
		return nil, metrics.OutcomeTooLarge
	}
	writeError(w, http.StatusBadRequest, errorCodeInvalidRequest, "failed to read request body")
	return nil, metrics.OutcomeInvalid
}

func (h *handlers) authorize(r *http.Request, body []byte) bool {
	allowed := h.auth.Authorize(r.Header, body)
	mode := string(h.auth.Mode())
	h.metrics.ObserveAuth(mode, allowed)

	decision := audit.DecisionAllow
	if !allowed {
		decision = audit.DecisionDeny
		if h.logger != nil {
			h.logger.Debug("authorization failed", "mode", mode, "path", r.URL.Path, "headers_present", security.HeaderNames(r.Header))
		}
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), audit.Event{
			Type:       "auth",
			Path:       r.URL.Path,
			Mode:       mode,
			Decision:   decision,
			RemoteAddr: r.RemoteAddr,
			RequestID:  RequestIDFromContext(r.Context()),
		})
	}
	return allowed
}
