package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock(l *Limiter, start time.Time) *time.Time {
	current := start
	l.now = func() time.Time { return current }
	return &current
}

func TestNew_DisabledReturnsNil(t *testing.T) {
	require.Nil(t, New(0, 5, 10))
	require.Nil(t, New(-1, 5, 10))

	var l *Limiter
	require.True(t, l.Allow("anyone"))
	require.Equal(t, 0, l.Len())
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	l := New(60, 2, 10)
	clock := fixedClock(l, time.Unix(1000, 0))

	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	require.True(t, l.Allow("10.0.0.2"), "clients have separate buckets")

	*clock = clock.Add(time.Second)
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))
}

func TestLimiter_BurstDefaultsToRate(t *testing.T) {
	l := New(3, 0, 10)
	fixedClock(l, time.Unix(1000, 0))

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("c"))
	}
	require.False(t, l.Allow("c"))
}

func TestLimiter_EvictsLeastRecentlySeen(t *testing.T) {
	l := New(1, 1, 2)
	fixedClock(l, time.Unix(1000, 0))

	require.True(t, l.Allow("a"))
	require.True(t, l.Allow("b"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("c"))
	require.Equal(t, 2, l.Len())

	// b was evicted, so it starts over with a full bucket.
	require.True(t, l.Allow("b"))
	require.Equal(t, 2, l.Len())
}

func TestMiddleware(t *testing.T) {
	l := New(1, 1, 10)
	fixedClock(l, time.Unix(1000, 0))

	handler := Middleware(l, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/run_step", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("192.0.2.1:1111"))
	require.Equal(t, http.StatusTooManyRequests, send("192.0.2.1:2222"), "ports share a bucket")
	require.Equal(t, http.StatusOK, send("192.0.2.9:1111"))
}

func TestMiddleware_NilPassesThrough(t *testing.T) {
	called := false
	handler := Middleware(nil, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	require.True(t, called)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	require.Equal(t, "2001:db8::1", ClientKey(req))

	req.RemoteAddr = "unix-socket"
	require.Equal(t, "unix-socket", ClientKey(req))
}
