package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(rate.Every(time.Minute/2), 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("1.1.1.1"))
	assert.True(t, l.allow("1.1.1.1"))
	assert.False(t, l.allow("1.1.1.1"), "burst exhausted")
	assert.True(t, l.allow("2.2.2.2"), "buckets are per client")

	now = now.Add(30 * time.Second)
	assert.True(t, l.allow("1.1.1.1"), "one token refilled")
	assert.False(t, l.allow("1.1.1.1"))
}

func TestIPRateLimiter_Evicts(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(rate.Every(time.Minute), 1)
	l.now = func() time.Time { return now }

	l.allow("1.1.1.1")
	now = now.Add(limiterIdle + time.Minute)
	l.allow("2.2.2.2")

	assert.NotContains(t, l.visitors, "1.1.1.1")
	assert.Contains(t, l.visitors, "2.2.2.2")
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := newIPRateLimiter(rate.Every(time.Hour), 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"errors":{"body":["too many requests"]}}`, rec.Body.String())

	req.RemoteAddr = "10.0.0.2:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))
	req.RemoteAddr = "192.0.2.1"
	assert.Equal(t, "192.0.2.1", clientIP(req))
}
