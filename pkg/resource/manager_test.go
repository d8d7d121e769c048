// pkg/resource/manager_test.go
package resource

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-polybox/pkg/config"
)

func testEnv() *config.EnvironmentConfig {
	return &config.EnvironmentConfig{
		MaxMemoryMB:    500,
		ShutdownGrace:  time.Second,
		HealthInterval: 10 * time.Millisecond,
	}
}

func TestNewResourceManager(t *testing.T) {
	env := &config.EnvironmentConfig{
		MaxMemoryMB:    500,
		ShutdownGrace:  30 * time.Second,
		HealthInterval: 10 * time.Second,
	}

	rm := NewResourceManager(context.Background(), env, nil)

	if rm.maxMemoryMB != 500 {
		t.Errorf("Expected MaxMemoryMB 500, got %d", rm.maxMemoryMB)
	}
	if rm.shutdownTimeout != 30*time.Second {
		t.Errorf("Expected ShutdownTimeout 30s, got %v", rm.shutdownTimeout)
	}
	if rm.checkInterval != 10*time.Second {
		t.Errorf("Expected CheckInterval 10s, got %v", rm.checkInterval)
	}

	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown with no goroutines failed: %v", err)
	}
}

func TestResourceManager_FirstReturnCancelsOthers(t *testing.T) {
	rm := NewResourceManager(context.Background(), testEnv(), nil)

	rm.StartGoroutine("waiter", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	rm.StartGoroutine("quitter", func(ctx context.Context) error {
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- rm.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait() = %v, expected nil for clean exits", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not cancelled when quitter returned")
	}

	if rm.GetGoroutineCount() != 0 {
		t.Errorf("Expected 0 goroutines, got %d", rm.GetGoroutineCount())
	}
}

func TestResourceManager_RecordsFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func(context.Context) error
		wantErr string
	}{
		{"error", func(context.Context) error { return boom }, "loop: boom"},
		{"panic", func(context.Context) error { panic("bad vertex") }, "loop: panic: bad vertex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := NewResourceManager(context.Background(), testEnv(), nil)
			rm.StartGoroutine("loop", tt.fn)

			err := rm.Wait()
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("Wait() = %v, expected %q", err, tt.wantErr)
			}

			var taskErr *TaskError
			if !errors.As(err, &taskErr) || taskErr.Name != "loop" {
				t.Errorf("Expected TaskError for loop, got %T", err)
			}
			if len(rm.Failures()) != 1 || rm.GetResourceStats().Failures != 1 {
				t.Errorf("Expected one recorded failure, got %v", rm.Failures())
			}
		})
	}

	t.Run("wrapped error", func(t *testing.T) {
		rm := NewResourceManager(context.Background(), testEnv(), nil)
		rm.StartGoroutine("loop", func(context.Context) error { return boom })
		if err := rm.Wait(); !errors.Is(err, boom) {
			t.Errorf("Wait() = %v, expected to wrap boom", err)
		}
	})
}

func TestResourceManager_CancelIsNotAFailure(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	rm := NewResourceManager(parent, testEnv(), nil)

	rm.StartGoroutine("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()

	if err := rm.Wait(); err != nil {
		t.Errorf("Wait() = %v, expected nil after parent cancel", err)
	}
}

func TestResourceManager_CheckMemoryUsage(t *testing.T) {
	env := testEnv()
	env.MaxMemoryMB = 1 << 20
	rm := NewResourceManager(context.Background(), env, nil)

	before := rm.GetResourceStats().LastMemoryCheck
	time.Sleep(time.Millisecond)

	if err := rm.CheckMemoryUsage(); err != nil {
		t.Errorf("Unexpected memory error: %v", err)
	}
	if !rm.GetResourceStats().LastMemoryCheck.After(before) {
		t.Error("Expected the memory check time to advance")
	}

	rm.maxMemoryMB = -1
	if err := rm.CheckMemoryUsage(); err == nil {
		t.Error("Expected error when usage exceeds the limit")
	}
}

func TestResourceManager_StartAndShutdown(t *testing.T) {
	rm := NewResourceManager(context.Background(), testEnv(), nil)
	rm.StartMonitoring()

	// let the monitor sample a few times
	time.Sleep(35 * time.Millisecond)
	if rm.GetGoroutineCount() != 1 {
		t.Errorf("Expected the monitor running, got %d goroutines", rm.GetGoroutineCount())
	}

	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if rm.GetGoroutineCount() != 0 {
		t.Errorf("Expected 0 goroutines after shutdown, got %d", rm.GetGoroutineCount())
	}
	if rm.Err() != nil {
		t.Errorf("Expected no failures, got %v", rm.Err())
	}
}

func TestResourceManager_ShutdownTimeout(t *testing.T) {
	env := testEnv()
	env.ShutdownGrace = 20 * time.Millisecond
	rm := NewResourceManager(context.Background(), env, nil)

	release := make(chan struct{})
	defer close(release)

	rm.StartGoroutine("stubborn", func(ctx context.Context) error {
		<-release
		return nil
	})

	err := rm.Shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "1 goroutines still running") {
		t.Errorf("Shutdown() = %v, expected timeout with 1 goroutine", err)
	}
}

func TestResourceManager_ConcurrentGoroutineAccess(t *testing.T) {
	rm := NewResourceManager(context.Background(), testEnv(), nil)

	var started sync.WaitGroup
	for i := 0; i < 10; i++ {
		started.Add(1)
		rm.StartGoroutine("worker", func(ctx context.Context) error {
			started.Done()
			<-ctx.Done()
			return ctx.Err()
		})
	}
	started.Wait()

	var readers sync.WaitGroup
	for i := 0; i < 5; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for j := 0; j < 100; j++ {
				_ = rm.GetResourceStats()
				_ = rm.Err()
			}
		}()
	}
	readers.Wait()

	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
