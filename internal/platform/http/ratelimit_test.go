package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	now := time.Now()
	ok, _ := limiter.Allow("a", now)
	assert.True(t, ok)
	ok, _ = limiter.Allow("a", now)
	assert.True(t, ok)
	ok, reset := limiter.Allow("a", now)
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), reset)

	ok, _ = limiter.Allow("b", now)
	assert.True(t, ok, "keys are counted separately")
	ok, _ = limiter.Allow("a", now.Add(2*time.Minute))
	assert.True(t, ok, "window expired")
}

func TestRateLimiterStaysBounded(t *testing.T) {
	limiter := newRateLimiter(1, time.Minute)
	now := time.Now()
	for i := 0; i < maxTrackedClients+500; i++ {
		ok, _ := limiter.Allow(fmt.Sprintf("10.%d.%d.%d", i>>16&0xff, i>>8&0xff, i&0xff), now.Add(time.Duration(i)*time.Millisecond))
		assert.True(t, ok)
	}
	assert.LessOrEqual(t, limiter.Len(), maxTrackedClients)

	ok, _ := limiter.Allow("192.0.2.1", now.Add(time.Hour))
	assert.True(t, ok)
	assert.Equal(t, 1, limiter.Len(), "expired buckets are dropped first")
}

func TestClientIPIgnoresForwardingHeadersByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Real-IP", "10.0.0.2")
	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.1", clientIP(req, false))
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(req, true))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", clientIP(req, true))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", clientIP(req, true))
}

func TestLoginRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := withLoginRateLimit(limiter, false, next)

	limited := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, 48, limited)
	assert.Equal(t, 1, limiter.Len())
}
