// Package middleware holds HTTP middleware shared across routes.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"waypost/internal/domain/area"
)

// CounterBackend is the shared fixed-window counter, normally redis-backed.
type CounterBackend interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter builds per-route fixed-window limiters over a shared counter
// backend. FailOpen decides what happens when the backend is unreachable:
// open admits the request, closed rejects it as rate-limited.
type RateLimiter struct {
	counter  CounterBackend
	failOpen bool
	log      *zap.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(counter CounterBackend, failOpen bool, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		counter:  counter,
		failOpen: failOpen,
		log:      log,
	}
}

// Limit enforces at most max requests per window per (method, path, client).
func (l *RateLimiter) Limit(window time.Duration, max int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("rl:%s:%s:%s", r.Method, r.URL.Path, clientIP(r))

			count, err := l.counter.Incr(r.Context(), key, window)
			if err != nil {
				l.log.Warn("rate limit backend unavailable",
					zap.String("key", key),
					zap.Bool("failOpen", l.failOpen),
					zap.Error(err))
				if l.failOpen {
					next.ServeHTTP(w, r)
					return
				}
				rejectRateLimited(w, window)
				return
			}

			if count > int64(max) {
				rejectRateLimited(w, window)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, window time.Duration) {
	body, _ := json.Marshal(map[string]string{
		"errorCode": string(area.CodeRateLimited),
		"message":   fmt.Sprintf("too many requests, retry within %s", window),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write(body)
}

// clientIP relies on the RealIP middleware having already rewritten
// RemoteAddr from the forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
