package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()

	r.ObserveRequest(OutcomeOK, 2*time.Millisecond)
	r.ObserveRequest(OutcomeOK, time.Millisecond)
	r.ObserveRequest(OutcomeUnauthorized, time.Millisecond)
	r.ObserveAuth("bearer", true)
	r.ObserveAuth("bearer", false)
	r.ObserveAuth("bearer", false)

	require.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues(OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues(OutcomeUnauthorized)))
	require.Equal(t, 2.0, testutil.ToFloat64(r.authDecisions.WithLabelValues("bearer", "false")))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveRequest(OutcomeInvalid, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `runstep_requests_total{outcome="invalid"} 1`)
	require.Contains(t, rec.Body.String(), "runstep_request_duration_seconds")
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.ObserveRequest(OutcomeOK, time.Millisecond)
	r.ObserveAuth("none", true)
	require.Nil(t, r.Registry())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
