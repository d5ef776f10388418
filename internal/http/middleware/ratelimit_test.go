package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitPerIP(t *testing.T) {
	called := false
	h := RateLimit(0.001, 2)(okHandler(&called))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", nil)
		req.RemoteAddr = ip + ":51000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"), "buckets are per client")
}

func TestRateLimitIgnoresForwardingHeaders(t *testing.T) {
	called := false
	h := RateLimit(0.001, 1)(okHandler(&called))

	send := func(spoofed string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", nil)
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Real-Ip", spoofed)
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.3"))
}

func TestClientIPFallsBackToRawRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "unix-socket"
	assert.Equal(t, "unix-socket", clientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req))
}

func TestRateLimiterRefillsAndEvicts(t *testing.T) {
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))

	now = now.Add(limiterIdleTTL + time.Minute)
	assert.True(t, rl.Allow("b"))
	rl.mu.Lock()
	_, stale := rl.limiters["a"]
	rl.mu.Unlock()
	assert.False(t, stale)
}
