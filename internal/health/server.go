// Package health provides liveness and readiness handlers for container checks.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Check reports whether one dependency is usable
type Check func(ctx context.Context) error

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Config holds the configuration for the health handlers.
type Config struct {
	ServiceName  string
	Version      string
	Logger       *logrus.Logger
	CheckTimeout time.Duration
}

// Checker serves /health, /live and /ready.
type Checker struct {
	serviceName string
	version     string
	timeout     time.Duration
	logger      *logrus.Logger

	mu     sync.RWMutex
	ready  bool
	checks map[string]Check
}

// NewChecker creates health handlers. The service starts not ready.
func NewChecker(cfg Config) *Checker {
	timeout := cfg.CheckTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Checker{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		timeout:     timeout,
		logger:      cfg.Logger,
		checks:      make(map[string]Check),
	}
}

// AddCheck registers a named readiness check
func (c *Checker) AddCheck(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// SetReady marks the service as ready to accept traffic.
func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// IsReady returns whether the service is ready.
func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// HandleHealth handles the /health endpoint - basic liveness check.
func (c *Checker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   c.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   c.version,
	})
}

// HandleLive handles the /live endpoint - kubernetes liveness check.
func (c *Checker) HandleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: c.serviceName,
	})
}

// HandleReady handles the /ready endpoint and runs every registered check.
func (c *Checker) HandleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	results := make(map[string]string)
	allHealthy := true

	if !c.IsReady() {
		allHealthy = false
		results["service"] = "not_ready"
	} else {
		results["service"] = "ok"
	}

	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := checks[name](ctx)
		cancel()

		if err != nil {
			allHealthy = false
			results[name] = fmt.Sprintf("error: %v", err)
			if c.logger != nil {
				c.logger.WithError(err).WithField("check", name).Warn("Readiness check failed")
			}
		} else {
			results[name] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  c.serviceName,
		Checks:   results,
		Duration: time.Since(start).String(),
	}

	if allHealthy {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
