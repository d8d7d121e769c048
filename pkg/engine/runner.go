// pkg/engine/runner.go
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/opd-ai/go-polybox/pkg/entity"
)

// ErrQuit is returned by an InputSource when the user asks to leave
var ErrQuit = errors.New("quit requested")

// InputSource feeds pointer and authoring input into the world once per tick
type InputSource interface {
	Poll(w *World) error
}

// InputFunc adapts a function to InputSource
type InputFunc func(w *World) error

// Poll calls f(w)
func (f InputFunc) Poll(w *World) error {
	return f(w)
}

// Runner drives a World at a fixed rate. The step length is always 1/fps
// seconds no matter how late the ticker fires.
type Runner struct {
	world     *World
	fps       int
	observers []func(Frame)
}

// NewRunner creates a runner for w at fps ticks per second
func NewRunner(w *World, fps int) *Runner {
	if fps <= 0 {
		fps = 60
	}
	return &Runner{world: w, fps: fps}
}

// FrameDuration returns the fixed step in seconds
func (r *Runner) FrameDuration() float64 {
	return 1.0 / float64(r.fps)
}

// Observe registers fn to receive every frame the runner steps, paused
// frames included. Observers run on the simulation goroutine and must be
// registered before Run starts.
func (r *Runner) Observe(fn func(Frame)) {
	r.observers = append(r.observers, fn)
}

// Run ticks until ctx is cancelled or input returns an error. Cancellation
// returns ctx.Err(); input errors, including ErrQuit, are returned as is.
func (r *Runner) Run(ctx context.Context, input InputSource, sink entity.Renderer) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.fps))
	defer ticker.Stop()

	w := r.world
	w.logger.Info(w.ctx, "simulation loop started", "fps", r.fps, "bodies", w.Len())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(w.ctx, "simulation loop stopped", "tick", w.Tick(), "reason", ctx.Err().Error())
			return ctx.Err()
		case <-ticker.C:
			if err := r.tick(input, sink); err != nil {
				w.logger.Info(w.ctx, "simulation loop stopped", "tick", w.Tick(), "reason", err.Error())
				return err
			}
		}
	}
}

// StepN runs n ticks back to back without waiting and returns the last frame
func (r *Runner) StepN(n int, input InputSource, sink entity.Renderer) (Frame, error) {
	for i := 0; i < n; i++ {
		if err := r.tick(input, sink); err != nil {
			return r.world.LastFrame(), err
		}
	}
	return r.world.LastFrame(), nil
}

func (r *Runner) tick(input InputSource, sink entity.Renderer) error {
	if input != nil {
		if err := input.Poll(r.world); err != nil {
			return err
		}
	}

	frame := r.world.Step(r.FrameDuration())
	for _, fn := range r.observers {
		fn(frame)
	}
	if sink != nil {
		r.world.Render(sink, frame)
	}
	return nil
}
