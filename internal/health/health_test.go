package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkerFunc func() error

func (f checkerFunc) Health() error { return f() }

func newTestHandler() *Handler {
	h := NewHandler()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h.startTime = start
	h.now = func() time.Time { return start.Add(90 * time.Second) }
	return h
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler()
	h.AddCheck("redis", checkerFunc(func() error { return errors.New("down") }))

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1m30s", status.Uptime)
	assert.Nil(t, status.Checks)
}

func TestHandleHealth_Verbose(t *testing.T) {
	h := newTestHandler()
	h.AddCheck("redis", checkerFunc(func() error { return errors.New("down") }))

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil))

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "unhealthy: down", status.Checks["redis"])
}

func TestHandleReadiness(t *testing.T) {
	tests := []struct {
		name     string
		ready    bool
		redisErr error
		wantCode int
	}{
		{name: "ready", ready: true, wantCode: http.StatusOK},
		{name: "not started", ready: false, wantCode: http.StatusServiceUnavailable},
		{name: "redis down", ready: true, redisErr: errors.New("refused"), wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			h.AddCheck("redis", checkerFunc(func() error { return tt.redisErr }))
			h.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantCode, rec.Code)

			var status ReadinessStatus
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
			assert.Equal(t, tt.wantCode == http.StatusOK, status.Ready)
		})
	}
}

func TestRegister(t *testing.T) {
	h := newTestHandler()
	h.SetReady(true)

	r := chi.NewRouter()
	h.Register(r)

	for _, path := range []string{"/health", "/healthz", "/ready", "/readyz"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
