package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Writer: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/budgets", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	out := buf.String()
	assert.Contains(t, out, "HTTP request started")
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "status_code=418")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "client_ip=198.51.100.1")
	assert.Contains(t, out, "msg=\"inside handler\" request_id="+seen)
}

func TestMiddlewareReusesValidIncomingID(t *testing.T) {
	m := NewMiddleware(log.New(log.Config{Writer: &bytes.Buffer{}}), nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, id)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, id, rr.Header().Get(RequestIDHeader))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "not a uuid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.NotEqual(t, "not a uuid", rr.Header().Get(RequestIDHeader))

	metrics := m.GetMetrics()
	assert.EqualValues(t, 2, metrics.TotalRequests)
	assert.EqualValues(t, 2, metrics.ServerErrors)
}
