package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute})
	t.Cleanup(rl.Stop)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 2)

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)

	*now = now.Add(20 * time.Second)
	ok, reset := rl.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, reset)

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys are independent")

	*now = now.Add(time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "a new window starts after a minute")

	m := rl.GetMetrics()
	assert.EqualValues(t, 1, m.Rejected)
	assert.EqualValues(t, 2, m.ClientCount)
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 10)
	rl.Allow("old")
	*now = now.Add(3 * time.Minute)
	rl.Allow("fresh")

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.EqualValues(t, 1, rl.GetMetrics().ClientCount)
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	limited := 0
	h := rl.Middleware(
		func(r *http.Request) string { return r.RemoteAddr },
		func(w http.ResponseWriter, _ *http.Request) {
			limited++
			w.WriteHeader(http.StatusTooManyRequests)
		},
	)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)
}
