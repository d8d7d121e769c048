// pkg/render/engo/input.go
package engo

import (
	"context"
	"errors"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-polybox/pkg/config"
	"github.com/opd-ai/go-polybox/pkg/engine"
	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/logging"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

// Transform steps applied by the keyboard
const (
	RotateStepDegrees = 15
	ScaleStepFactor   = 1.1
)

// Button names registered with engo.Input
const (
	buttonAuthor   = "author"
	buttonFinish   = "finish"
	buttonCancel   = "cancel"
	buttonMovable  = "movable"
	buttonPause    = "pause"
	buttonRemove   = "remove"
	buttonRotate   = "rotate"
	buttonScale    = "scale"
	buttonModifier = "modifier"
	buttonQuit     = "quit"
)

// Controls is one frame of user input
type Controls struct {
	Pointer  physics.Vector2D
	Pressed  bool // left button went down
	Released bool // left button went up

	Author, Finish, Cancel bool
	ToggleMovable, Pause   bool
	Remove, Rotate, Scale  bool
	Modifier, Quit         bool
}

// readControls samples engo's global input state
func readControls() Controls {
	mouse := engo.Input.Mouse
	left := mouse.Button == engo.MouseButtonLeft

	return Controls{
		Pointer:       physics.Vector2D{X: float64(mouse.X), Y: float64(mouse.Y)},
		Pressed:       left && mouse.Action == engo.Press,
		Released:      left && mouse.Action == engo.Release,
		Author:        engo.Input.Button(buttonAuthor).JustPressed(),
		Finish:        engo.Input.Button(buttonFinish).JustPressed(),
		Cancel:        engo.Input.Button(buttonCancel).JustPressed(),
		ToggleMovable: engo.Input.Button(buttonMovable).JustPressed(),
		Pause:         engo.Input.Button(buttonPause).JustPressed(),
		Remove:        engo.Input.Button(buttonRemove).JustPressed(),
		Rotate:        engo.Input.Button(buttonRotate).JustPressed(),
		Scale:         engo.Input.Button(buttonScale).JustPressed(),
		Modifier:      engo.Input.Button(buttonModifier).Down(),
		Quit:          engo.Input.Button(buttonQuit).JustPressed(),
	}
}

// SimulationSystem steps the world once per engo frame, feeding it the
// mouse and keyboard state and drawing the result.
type SimulationSystem struct {
	world    *engine.World
	runner   *engine.Runner
	renderer *EngoRenderer
	hud      *HUD
	sim      config.SimulationConfig
	logger   *logging.Logger

	// read replaces readControls in tests
	read func() Controls
	exit func()

	// done stops the window when closed; nil never fires
	done    <-chan struct{}
	exiting bool

	pointer   physics.Vector2D
	down      bool
	pendingUp bool
	movable   bool
}

// NewSimulationSystem creates a simulation system. hud may be nil.
func NewSimulationSystem(world *engine.World, runner *engine.Runner, renderer *EngoRenderer, hud *HUD, sim config.SimulationConfig, logger *logging.Logger) *SimulationSystem {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &SimulationSystem{
		world:    world,
		runner:   runner,
		renderer: renderer,
		hud:      hud,
		sim:      sim,
		logger:   logger,
		read:     readControls,
		exit:     engo.Exit,
		movable:  sim.DefaultMovable,
	}
}

// Remove satisfies the ecs.System interface
func (s *SimulationSystem) Remove(basic ecs.BasicEntity) {}

// StopOn makes the system close the window once ctx is cancelled
func (s *SimulationSystem) StopOn(ctx context.Context) {
	s.done = ctx.Done()
}

// Update advances the world by one fixed step regardless of dt
func (s *SimulationSystem) Update(dt float32) {
	if s.exiting {
		return
	}
	select {
	case <-s.done:
		s.logger.Info(s.world.Context(), "run cancelled, closing window", "tick", s.world.Tick())
		s.exiting = true
		s.exit()
		return
	default:
	}

	var sink entity.Renderer
	if s.renderer != nil {
		sink = s.renderer
	}

	_, err := s.runner.StepN(1, s, sink)
	switch {
	case errors.Is(err, engine.ErrQuit):
		s.logger.Info(s.world.Context(), "quit requested")
		s.exiting = true
		s.exit()
		return
	case err != nil:
		s.logger.Error(s.world.Context(), "step failed", err)
	}

	if s.hud != nil {
		s.hud.Refresh(s.world, s.movable)
	}
}

// Poll implements engine.InputSource
func (s *SimulationSystem) Poll(w *engine.World) error {
	return s.Apply(w, s.read())
}

// Apply feeds one frame of controls to the world
func (s *SimulationSystem) Apply(w *engine.World, c Controls) error {
	if c.Quit {
		return engine.ErrQuit
	}

	if s.pendingUp {
		s.down = false
		s.pendingUp = false
	}
	s.pointer = c.Pointer

	if w.IsAuthoring() {
		if c.Pressed && !s.down {
			if err := w.AddAuthoredVertex(s.pointer); err != nil {
				s.logger.Warn(w.Context(), "vertex rejected", "error", err.Error())
			}
		}
		switch {
		case c.Pressed:
			s.down = true
		case c.Released:
			s.down = false
		}
	} else {
		switch {
		case c.Pressed:
			s.down = true
			s.pendingUp = false
		case c.Released && s.down:
			// hold the press for one frame so a quick click still reaches Step
			s.pendingUp = true
		}
	}

	s.applyKeys(w, c)
	w.SetMouse(s.pointer, s.down)
	return nil
}

func (s *SimulationSystem) applyKeys(w *engine.World, c Controls) {
	ctx := w.Context()

	switch {
	case c.Cancel:
		w.CancelShapeAuthoring()
	case c.Finish:
		if w.IsAuthoring() {
			id, err := w.FinishShapeAuthoring(s.sim.DefaultColor, s.sim.DefaultMass, s.movable)
			if err != nil {
				s.logger.Warn(ctx, "shape rejected", "error", err.Error(), "vertices", len(w.AuthoredVertices()))
			} else {
				s.logger.Debug(ctx, "shape authored", "body_id", uint64(id))
			}
		}
	case c.Author:
		w.BeginShapeAuthoring()
	}

	if c.ToggleMovable {
		s.movable = !s.movable
	}
	if c.Pause {
		w.SetPaused(!w.Paused())
	}

	if !c.Remove && !c.Rotate && !c.Scale {
		return
	}
	body, ok := w.BodyAt(s.pointer)
	if !ok {
		return
	}

	switch {
	case c.Remove:
		w.RemoveBody(body.ID)
	case c.Rotate:
		degrees := float64(RotateStepDegrees)
		if c.Modifier {
			degrees = -degrees
		}
		body.Rotate(degrees)
	case c.Scale:
		factor := ScaleStepFactor
		if c.Modifier {
			factor = 1 / factor
		}
		if err := body.Scale(factor); err != nil {
			s.logger.Warn(ctx, "scale rejected", "body_id", uint64(body.ID), "error", err.Error())
		}
	}
}

// Movable reports whether the next authored shape will be movable
func (s *SimulationSystem) Movable() bool {
	return s.movable
}

// SetupInputBindings registers the sandbox key bindings
func SetupInputBindings() {
	engo.Input.RegisterButton(buttonAuthor, engo.KeyN)
	engo.Input.RegisterButton(buttonFinish, engo.KeyEnter)
	engo.Input.RegisterButton(buttonCancel, engo.KeyEscape)
	engo.Input.RegisterButton(buttonMovable, engo.KeyM)
	engo.Input.RegisterButton(buttonPause, engo.KeyP, engo.KeySpace)
	engo.Input.RegisterButton(buttonRemove, engo.KeyX)
	engo.Input.RegisterButton(buttonRotate, engo.KeyR)
	engo.Input.RegisterButton(buttonScale, engo.KeyS)
	engo.Input.RegisterButton(buttonModifier, engo.KeyLeftShift, engo.KeyRightShift)
	engo.Input.RegisterButton(buttonQuit, engo.KeyQ)
}
