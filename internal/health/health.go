package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
)

// Checker is a dependency that can report its health (redis client)
type Checker interface {
	Health() error
}

// Handler serves liveness and readiness probes
type Handler struct {
	checks    map[string]Checker
	ready     bool
	readyMu   sync.RWMutex
	startTime time.Time
	now       func() time.Time
}

// HealthStatus represents process liveness
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessStatus represents whether traffic should be routed here
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// NewHandler creates probe handler
func NewHandler() *Handler {
	return &Handler{
		checks:    make(map[string]Checker),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// AddCheck registers a dependency checked by /ready
func (h *Handler) AddCheck(name string, c Checker) {
	h.checks[name] = c
}

// SetReady marks the service as ready
func (h *Handler) SetReady(ready bool) {
	h.readyMu.Lock()
	h.ready = ready
	h.readyMu.Unlock()

	if ready {
		logger.Info("service marked as ready")
	} else {
		logger.Warn("service marked as not ready")
	}
}

// Register mounts the probe routes
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/healthz", h.HandleHealth)
	r.Get("/ready", h.HandleReadiness)
	r.Get("/readyz", h.HandleReadiness)
}

// HandleHealth is the liveness probe. It answers 200 while the process is up,
// even with dependencies down; ?verbose=true includes dependency checks.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Uptime:    h.now().Sub(h.startTime).Round(time.Second).String(),
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.Checks, _ = h.runChecks()
	}

	writeJSON(w, http.StatusOK, status)
}

// HandleReadiness is the readiness probe
func (h *Handler) HandleReadiness(w http.ResponseWriter, _ *http.Request) {
	h.readyMu.RLock()
	ready := h.ready
	h.readyMu.RUnlock()

	checks, allHealthy := h.runChecks()
	isReady := ready && allHealthy

	code := http.StatusOK
	if !isReady {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, ReadinessStatus{
		Ready:     isReady,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *Handler) runChecks() (map[string]string, bool) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	allHealthy := true
	for _, name := range names {
		if err := h.checks[name].Health(); err != nil {
			results[name] = "unhealthy: " + err.Error()
			allHealthy = false
			logger.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
			continue
		}
		results[name] = "healthy"
	}
	return results, allHealthy
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write probe response", zap.Error(err))
	}
}
