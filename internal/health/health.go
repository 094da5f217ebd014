// Package health implements the liveness and readiness endpoints. Readiness
// checks the database, Redis when configured, and the queue dispatcher.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"treasurehunt/pkg/platform/httputil"
)

// Check probes one dependency. A nil error means healthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

const probeTimeout = 3 * time.Second

// Checker runs dependency probes and serves the health endpoints.
type Checker struct {
	checks  []Check
	version string
	started time.Time
	logger  *slog.Logger
}

// NewChecker constructs a Checker over the given probes.
func NewChecker(version string, logger *slog.Logger, checks ...Check) *Checker {
	return &Checker{
		checks:  checks,
		version: version,
		started: time.Now(),
		logger:  logger,
	}
}

// Register mounts /health, /health/live, and /health/ready.
func (c *Checker) Register(r chi.Router) {
	r.Get("/health", c.handleHealth)
	r.Get("/health/live", c.handleLive)
	r.Get("/health/ready", c.handleReady)
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// run probes every dependency and reports overall readiness.
func (c *Checker) run(ctx context.Context) (bool, map[string]checkResult) {
	results := make(map[string]checkResult, len(c.checks))
	healthy := true
	for _, check := range c.checks {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := check.Probe(probeCtx)
		cancel()
		if err != nil {
			healthy = false
			results[check.Name] = checkResult{Status: "down", Error: err.Error()}
			c.logger.WarnContext(ctx, "health check failed", "check", check.Name, "error", err)
			continue
		}
		results[check.Name] = checkResult{Status: "up"}
	}
	return healthy, results
}

func (c *Checker) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy, results := c.run(r.Context())
	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	httputil.WriteJSON(w, status, map[string]any{
		"status":  overall,
		"version": c.version,
		"uptime":  time.Since(c.started).Round(time.Second).String(),
		"checks":  results,
	})
}

// handleLive only proves the process is serving requests.
func (c *Checker) handleLive(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (c *Checker) handleReady(w http.ResponseWriter, r *http.Request) {
	healthy, results := c.run(r.Context())
	if !healthy {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "checks": results})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
