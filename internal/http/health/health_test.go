package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	mux := http.NewServeMux()
	New().Register(mux)

	for _, path := range []string{"/healthz", "/health"} {
		rec := get(t, mux, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.JSONEq(t, `{"ok":true}`, rec.Body.String())
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestReadyz(t *testing.T) {
	h := New()
	mux := http.NewServeMux()
	h.Register(mux)

	rec := get(t, mux, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"ready":false}`, rec.Body.String())

	h.SetReady()
	require.True(t, h.Ready())
	rec = get(t, mux, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ready":true}`, rec.Body.String())

	h.SetNotReady()
	require.Equal(t, http.StatusServiceUnavailable, get(t, mux, "/readyz").Code)
}
