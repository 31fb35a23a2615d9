package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moments", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLimitAdmitsUnderMax(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewRateLimiter(counter, true, zap.NewNop())
	h := limiter.Limit(time.Minute, 3)(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(h)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLimitRejectsOverMax(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewRateLimiter(counter, true, zap.NewNop())
	h := limiter.Limit(time.Minute, 2)(okHandler())

	doRequest(h)
	doRequest(h)
	rec := doRequest(h)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestLimitKeyIncludesMethodPathAndIP(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewRateLimiter(counter, true, zap.NewNop())
	h := limiter.Limit(time.Minute, 1)(okHandler())

	doRequest(h)

	assert.Contains(t, counter.counts, "rl:POST:/api/v1/moments:203.0.113.9")
}

func TestLimitFailOpenAdmitsOnBackendError(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("redis down")
	limiter := NewRateLimiter(counter, true, zap.NewNop())
	h := limiter.Limit(time.Minute, 1)(okHandler())

	rec := doRequest(h)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimitFailClosedRejectsOnBackendError(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("redis down")
	limiter := NewRateLimiter(counter, false, zap.NewNop())
	h := limiter.Limit(time.Minute, 1)(okHandler())

	rec := doRequest(h)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLimitSeparateClientsSeparateWindows(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewRateLimiter(counter, true, zap.NewNop())
	h := limiter.Limit(time.Minute, 1)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/v1/moments", nil)
	first.RemoteAddr = "203.0.113.9:1000"
	second := httptest.NewRequest(http.MethodPost, "/api/v1/moments", nil)
	second.RemoteAddr = "198.51.100.7:1000"

	recA := httptest.NewRecorder()
	h.ServeHTTP(recA, first)
	recB := httptest.NewRecorder()
	h.ServeHTTP(recB, second)

	assert.Equal(t, http.StatusOK, recA.Code)
	assert.Equal(t, http.StatusOK, recB.Code)
}
