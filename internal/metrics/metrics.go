// Package metrics exposes Prometheus counters for the run-step endpoint.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeTooLarge     = "too_large"
	OutcomeRateLimited  = "rate_limited"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	authDecisions *prometheus.CounterVec
	duration      prometheus.Histogram
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runstep_requests_total",
			Help: "Run-step requests by outcome.",
		}, []string{"outcome"}),
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runstep_auth_decisions_total",
			Help: "Authorization decisions by mode and result.",
		}, []string{"mode", "allowed"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "runstep_request_duration_seconds",
			Help:    "Run-step request handling time.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	reg.MustRegister(
		r.requests,
		r.authDecisions,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest counts a finished run-step request.
func (r *Recorder) ObserveRequest(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ObserveAuth counts an authorization decision.
func (r *Recorder) ObserveAuth(mode string, allowed bool) {
	if r == nil {
		return
	}
	r.authDecisions.WithLabelValues(mode, strconv.FormatBool(allowed)).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
