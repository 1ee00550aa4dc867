// Package ratelimit throttles run-step callers by client address.
package ratelimit

import (
	"container/list"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client. The number of tracked clients is
// bounded; the least recently seen client is dropped first.
type Limiter struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	every      rate.Limit
	burst      int
	maxClients int
	now        func() time.Time
}

type clientEntry struct {
	key     string
	limiter *rate.Limiter
}

// New creates a limiter allowing perMinute requests per client with the given
// burst. A burst of 0 means perMinute. It returns nil when perMinute is not
// positive; a nil *Limiter allows everything.
func New(perMinute, burst, maxClients int) *Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perMinute
	}
	if maxClients <= 0 {
		maxClients = 10000
	}
	return &Limiter{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		every:      rate.Every(time.Minute / time.Duration(perMinute)),
		burst:      burst,
		maxClients: maxClients,
		now:        time.Now,
	}
}

// Allow reports whether a request from key may proceed.
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var entry *clientEntry
	if elem, ok := l.items[key]; ok {
		entry = elem.Value.(*clientEntry)
		l.order.MoveToFront(elem)
	} else {
		entry = &clientEntry{key: key, limiter: rate.NewLimiter(l.every, l.burst)}
		l.items[key] = l.order.PushFront(entry)
		l.trim()
	}
	return entry.limiter.AllowN(l.now(), 1)
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *Limiter) trim() {
	for len(l.items) > l.maxClients {
		elem := l.order.Back()
		if elem == nil {
			return
		}
		entry := elem.Value.(*clientEntry)
		delete(l.items, entry.key)
		l.order.Remove(elem)
	}
}

// RejectFunc writes the response for a throttled request.
type RejectFunc func(http.ResponseWriter, *http.Request)

// Middleware throttles requests by client host.
func Middleware(l *Limiter, reject RejectFunc) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(ClientKey(r)) {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey returns the host part of the request's remote address.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
