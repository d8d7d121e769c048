// Package health watches a running sandbox. Checks report whether the
// simulation loop is still producing frames, whether every body is still
// finite, and whether the process stays within its memory limit. A Monitor
// runs the checks periodically and logs failures.
package health

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/go-polybox/pkg/engine"
	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/logging"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the sandbox.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Healthy reports whether every check passed
func (s HealthStatus) Healthy() bool {
	return s.Status == "healthy"
}

// Failing returns the names of the failing checks in sorted order
func (s HealthStatus) Failing() []string {
	var names []string
	for name, c := range s.Checks {
		if c.Status != "healthy" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HealthChecker manages and executes health checks.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the aggregated status.
// The overall status is "healthy" only if all individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// Monitor runs CheckHealth every interval until ctx is done and returns
// ctx.Err(). Failing checks are logged as warnings, recoveries at info.
func (hc *HealthChecker) Monitor(ctx context.Context, interval time.Duration, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.NewLogger()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			status := hc.CheckHealth(checkCtx)
			cancel()
			reportTransitions(ctx, logger, status, failing)
		}
	}
}

// reportTransitions logs each check whose state changed since the last round
func reportTransitions(ctx context.Context, logger *logging.Logger, status HealthStatus, failing map[string]bool) {
	for name, c := range status.Checks {
		bad := c.Status != "healthy"
		switch {
		case bad && !failing[name]:
			logger.Warn(ctx, "health check failing", "check", name, "message", c.Message)
		case !bad && failing[name]:
			logger.Info(ctx, "health check recovered", "check", name)
		}
		failing[name] = bad
	}
	for name := range failing {
		if _, ok := status.Checks[name]; !ok {
			delete(failing, name)
		}
	}
	logger.Debug(ctx, "health checked", "status", status.Status, "checks", len(status.Checks))
}

// Reading is the last frame a FrameProbe saw
type Reading struct {
	Tick       uint64
	Paused     bool
	Bodies     int
	NonFinite  int // bodies with a NaN or infinite vertex, centroid or velocity
	ObservedAt time.Time
}

// FrameProbe records the latest frame from the simulation goroutine so
// checks on other goroutines can read it.
type FrameProbe struct {
	mu      sync.RWMutex
	reading Reading
	now     func() time.Time
}

// NewFrameProbe creates an empty probe
func NewFrameProbe() *FrameProbe {
	return &FrameProbe{now: time.Now}
}

// Observe records f. Pass it to engine.Runner.Observe.
func (p *FrameProbe) Observe(f engine.Frame) {
	r := Reading{
		Tick:   f.Tick,
		Paused: f.Paused,
		Bodies: len(f.Bodies),
	}
	for _, b := range f.Bodies {
		if !finiteSnapshot(b) {
			r.NonFinite++
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	r.ObservedAt = p.now()
	p.reading = r
}

// Reading returns the last recorded frame summary
func (p *FrameProbe) Reading() Reading {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reading
}

func finiteSnapshot(b entity.BodySnapshot) bool {
	if !finiteVector(b.Velocity) || !finiteVector(b.Centroid) {
		return false
	}
	for _, v := range b.Vertices {
		if !finiteVector(v) {
			return false
		}
	}
	return true
}

func finiteVector(v physics.Vector2D) bool {
	return finite(v.X) && finite(v.Y)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SimulationHealthCheck fails when the loop has stopped delivering frames.
type SimulationHealthCheck struct {
	probe    *FrameProbe
	maxStale time.Duration
	now      func() time.Time
}

// NewSimulationHealthCheck creates a check that fails once no frame has been
// observed for maxStale.
func NewSimulationHealthCheck(probe *FrameProbe, maxStale time.Duration) *SimulationHealthCheck {
	return &SimulationHealthCheck{probe: probe, maxStale: maxStale, now: time.Now}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that a frame arrived recently.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	r := s.probe.Reading()
	if r.ObservedAt.IsZero() {
		return fmt.Errorf("no frame observed yet")
	}
	if age := s.now().Sub(r.ObservedAt); age > s.maxStale {
		return fmt.Errorf("no frame for %v (last tick %d)", age.Round(time.Millisecond), r.Tick)
	}
	return nil
}

// FiniteStateHealthCheck fails when any body has left the real numbers,
// usually after a division by a zero mass or a runaway velocity.
type FiniteStateHealthCheck struct {
	probe *FrameProbe
}

// NewFiniteStateHealthCheck creates a finite state check on probe
func NewFiniteStateHealthCheck(probe *FrameProbe) *FiniteStateHealthCheck {
	return &FiniteStateHealthCheck{probe: probe}
}

// Name returns the name of this health check.
func (f *FiniteStateHealthCheck) Name() string {
	return "finite_state"
}

// Check verifies that the last frame held only finite bodies.
func (f *FiniteStateHealthCheck) Check(ctx context.Context) error {
	r := f.probe.Reading()
	if r.NonFinite > 0 {
		return fmt.Errorf("%d of %d bodies are non-finite at tick %d", r.NonFinite, r.Bodies, r.Tick)
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
