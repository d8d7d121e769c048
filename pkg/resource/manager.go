// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-polybox/pkg/config"
	"github.com/opd-ai/go-polybox/pkg/logging"
)

// TaskError is a failure recorded for a named goroutine
type TaskError struct {
	Name string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// ResourceManager runs the sandbox's long-lived goroutines (simulation loop,
// health monitor, memory sampling) under one context. The first goroutine to
// return cancels the rest, so quitting the loop stops the monitors too.
type ResourceManager struct {
	maxMemoryMB     int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	goroutineCount int64
	memoryUsageMB  int64

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	failures []*TaskError
	logger   *logging.Logger

	lastMemoryCheck time.Time
}

// NewResourceManager creates a manager whose goroutines stop when parent is
// cancelled.
func NewResourceManager(parent context.Context, env *config.EnvironmentConfig, logger *logging.Logger) *ResourceManager {
	if logger == nil {
		logger = logging.NewLogger()
	}
	ctx, cancel := context.WithCancel(parent)

	return &ResourceManager{
		maxMemoryMB:     env.MaxMemoryMB,
		shutdownTimeout: env.ShutdownGrace,
		checkInterval:   env.HealthInterval,
		ctx:             ctx,
		cancel:          cancel,
		logger:          logger,
		lastMemoryCheck: time.Now(),
	}
}

// Context is cancelled when any managed goroutine returns or on Shutdown
func (rm *ResourceManager) Context() context.Context {
	return rm.ctx
}

// StartGoroutine runs fn on its own goroutine with the manager's context.
// A returned error other than context.Canceled, or a panic, is recorded
// under name.
func (rm *ResourceManager) StartGoroutine(name string, fn func(context.Context) error) {
	atomic.AddInt64(&rm.goroutineCount, 1)
	rm.wg.Add(1)

	go func() {
		defer rm.wg.Done()
		defer atomic.AddInt64(&rm.goroutineCount, -1)
		defer rm.cancel()

		defer func() {
			if r := recover(); r != nil {
				rm.record(name, fmt.Errorf("panic: %v", r))
			}
		}()

		err := fn(rm.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			rm.record(name, err)
			return
		}
		rm.logger.Debug(rm.ctx, "goroutine finished", "name", name)
	}()
}

// StartMonitoring samples memory usage every check interval until the
// manager stops.
func (rm *ResourceManager) StartMonitoring() {
	rm.StartGoroutine("resource-monitor", rm.monitoringLoop)
	rm.logger.Info(rm.ctx, "Resource manager started",
		"max_memory_mb", rm.maxMemoryMB,
		"check_interval", rm.checkInterval,
	)
}

func (rm *ResourceManager) record(name string, err error) {
	rm.mu.Lock()
	rm.failures = append(rm.failures, &TaskError{Name: name, Err: err})
	rm.mu.Unlock()

	rm.logger.Error(rm.ctx, "Goroutine failed", err, "name", name)
}

// Err returns the first recorded failure
func (rm *ResourceManager) Err() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if len(rm.failures) == 0 {
		return nil
	}
	return rm.failures[0]
}

// Failures returns every recorded failure in order
func (rm *ResourceManager) Failures() []error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]error, len(rm.failures))
	for i, f := range rm.failures {
		out[i] = f
	}
	return out
}

// Wait blocks until every goroutine has returned and reports the first failure
func (rm *ResourceManager) Wait() error {
	rm.wg.Wait()
	return rm.Err()
}

// CheckMemoryUsage checks current memory usage against limits.
func (rm *ResourceManager) CheckMemoryUsage() error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	currentMB := int64(m.Alloc / 1024 / 1024)
	atomic.StoreInt64(&rm.memoryUsageMB, currentMB)

	rm.mu.Lock()
	rm.lastMemoryCheck = time.Now()
	rm.mu.Unlock()

	if currentMB > rm.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, rm.maxMemoryMB)
	}

	return nil
}

// GetGoroutineCount returns the current number of managed goroutines.
func (rm *ResourceManager) GetGoroutineCount() int64 {
	return atomic.LoadInt64(&rm.goroutineCount)
}

// GetMemoryUsage returns the memory usage in MB from the last check.
func (rm *ResourceManager) GetMemoryUsage() int64 {
	return atomic.LoadInt64(&rm.memoryUsageMB)
}

// GetResourceStats returns current resource usage statistics.
func (rm *ResourceManager) GetResourceStats() ResourceStats {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	return ResourceStats{
		GoroutineCount:  rm.GetGoroutineCount(),
		MemoryUsageMB:   rm.GetMemoryUsage(),
		MaxMemoryMB:     rm.maxMemoryMB,
		Failures:        len(rm.failures),
		LastMemoryCheck: rm.lastMemoryCheck,
	}
}

// ResourceStats contains resource usage statistics.
type ResourceStats struct {
	GoroutineCount  int64     `json:"goroutine_count"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	Failures        int       `json:"failures"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Shutdown cancels every goroutine and waits up to the shutdown grace for
// them to return.
func (rm *ResourceManager) Shutdown(ctx context.Context) error {
	rm.logger.Info(ctx, "Shutting down resource manager", "running", rm.GetGoroutineCount())
	rm.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, rm.shutdownTimeout)
	defer cancel()

	return rm.waitForGoroutines(shutdownCtx)
}

// waitForGoroutines waits for all managed goroutines to finish or timeout.
func (rm *ResourceManager) waitForGoroutines(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		rm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		rm.logger.Info(ctx, "All managed goroutines finished")
		return nil
	case <-ctx.Done():
		remaining := rm.GetGoroutineCount()
		rm.logger.Warn(ctx, "Shutdown timeout exceeded with goroutines still running",
			"remaining", remaining,
		)
		return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
	}
}

// monitoringLoop runs periodic resource checks.
func (rm *ResourceManager) monitoringLoop(ctx context.Context) error {
	ticker := time.NewTicker(rm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rm.performResourceChecks(ctx)
		case <-ctx.Done():
			rm.logger.Debug(ctx, "Resource monitoring loop stopping")
			return ctx.Err()
		}
	}
}

// performResourceChecks executes periodic resource usage checks.
func (rm *ResourceManager) performResourceChecks(ctx context.Context) {
	if err := rm.CheckMemoryUsage(); err != nil {
		rm.logger.Error(ctx, "Memory limit exceeded", err,
			"current_mb", rm.GetMemoryUsage(),
			"limit_mb", rm.maxMemoryMB,
		)
	}

	rm.logger.Debug(ctx, "Resource usage check",
		"goroutines", rm.GetGoroutineCount(),
		"memory_mb", rm.GetMemoryUsage(),
		"max_memory_mb", rm.maxMemoryMB,
	)
}
