package health

import (
	"context"
	"testing"
	"time"

	"github.com/opd-ai/go-polybox/pkg/config"
	"github.com/opd-ai/go-polybox/pkg/engine"
)

// TestHealthCheckIntegration runs the checks against a real world and runner
func TestHealthCheckIntegration(t *testing.T) {
	cfg := config.DefaultConfig()
	world := engine.NewWorld(cfg, nil, nil)
	if err := world.LoadScene(cfg.Scene); err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}

	probe := NewFrameProbe()
	runner := engine.NewRunner(world, cfg.Simulation.FPS)
	runner.Observe(probe.Observe)

	healthChecker := NewHealthChecker()
	healthChecker.AddCheck(NewSimulationHealthCheck(probe, time.Second))
	healthChecker.AddCheck(NewFiniteStateHealthCheck(probe))

	t.Run("health checks before the first tick", func(t *testing.T) {
		health := healthChecker.CheckHealth(context.Background())

		if health.Checks["simulation"].Status != "unhealthy" {
			t.Error("Simulation should be unhealthy before any frame")
		}
		if health.Checks["finite_state"].Status != "healthy" {
			t.Error("An empty probe holds no non-finite bodies")
		}
		if health.Status != "unhealthy" {
			t.Error("Overall status should be unhealthy before any frame")
		}
	})

	if _, err := runner.StepN(30, nil, nil); err != nil {
		t.Fatalf("StepN failed: %v", err)
	}

	t.Run("health checks while running", func(t *testing.T) {
		health := healthChecker.CheckHealth(context.Background())

		if !health.Healthy() {
			t.Errorf("Expected healthy sandbox, failing: %v", health.Failing())
		}
		if r := probe.Reading(); r.Tick != 30 || r.Bodies != len(cfg.Scene) {
			t.Errorf("Reading() = %+v, expected tick 30 with %d bodies", r, len(cfg.Scene))
		}
	})

	t.Run("paused frames keep the loop alive", func(t *testing.T) {
		world.SetPaused(true)
		if _, err := runner.StepN(5, nil, nil); err != nil {
			t.Fatalf("StepN failed: %v", err)
		}

		r := probe.Reading()
		if !r.Paused || r.Tick != 30 {
			t.Errorf("Reading() = %+v, expected paused at tick 30", r)
		}
		if err := NewSimulationHealthCheck(probe, time.Second).Check(context.Background()); err != nil {
			t.Errorf("Expected healthy paused loop, got %v", err)
		}
	})
}
