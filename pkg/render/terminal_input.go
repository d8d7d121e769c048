package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-polybox/pkg/config"
	"github.com/opd-ai/go-polybox/pkg/engine"
	"github.com/opd-ai/go-polybox/pkg/logging"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

// Transform steps applied by the keyboard
const (
	RotateStepDegrees = 15
	ScaleStepFactor   = 1.1
)

// TerminalInput turns tcell events into world input. Events are read on a
// background goroutine and applied on the simulation goroutine by Poll.
type TerminalInput struct {
	events   chan tcell.Event
	renderer *TerminalRenderer
	sim      config.SimulationConfig
	logger   *logging.Logger

	pointer     physics.Vector2D
	down        bool
	pendingUp   bool
	movable     bool
	lastMessage string
}

// NewTerminalInput starts reading events from screen. The reader stops when
// the screen is finalised.
func NewTerminalInput(screen tcell.Screen, renderer *TerminalRenderer, sim config.SimulationConfig, logger *logging.Logger) *TerminalInput {
	in := newTerminalInput(renderer, sim, logger)
	go func() {
		defer close(in.events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			in.events <- ev
		}
	}()
	return in
}

func newTerminalInput(renderer *TerminalRenderer, sim config.SimulationConfig, logger *logging.Logger) *TerminalInput {
	return &TerminalInput{
		events:   make(chan tcell.Event, 100),
		renderer: renderer,
		sim:      sim,
		logger:   logger,
		movable:  sim.DefaultMovable,
	}
}

// Poll implements engine.InputSource. It drains queued events without
// blocking and returns engine.ErrQuit when the user quits.
func (in *TerminalInput) Poll(w *engine.World) error {
	if in.pendingUp {
		in.down = false
		in.pendingUp = false
	}

drain:
	for {
		select {
		case ev, ok := <-in.events:
			if !ok {
				return engine.ErrQuit
			}
			if err := in.HandleEvent(w, ev); err != nil {
				return err
			}
		default:
			break drain
		}
	}

	w.SetMouse(in.pointer, in.down)
	in.refresh(w)
	return nil
}

// HandleEvent applies a single event to the world
func (in *TerminalInput) HandleEvent(w *engine.World, ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		in.handleMouse(w, ev)
	case *tcell.EventKey:
		return in.handleKey(w, ev)
	}
	return nil
}

func (in *TerminalInput) handleMouse(w *engine.World, ev *tcell.EventMouse) {
	col, row := ev.Position()
	in.pointer = in.renderer.CellToPixel(col, row)
	pressed := ev.Buttons()&tcell.Button1 != 0

	if w.IsAuthoring() {
		if pressed && !in.down {
			if err := w.AddAuthoredVertex(in.pointer); err != nil {
				in.logger.Warn(w.Context(), "vertex rejected", "error", err.Error())
			}
		}
		in.down = pressed
		in.pendingUp = false
		return
	}

	switch {
	case pressed:
		in.down = true
		in.pendingUp = false
	case in.down:
		// hold the press for one tick so a quick click still reaches Step
		in.pendingUp = true
	}
}

func (in *TerminalInput) handleKey(w *engine.World, ev *tcell.EventKey) error {
	ctx := w.Context()

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return engine.ErrQuit
	case tcell.KeyEscape:
		w.CancelShapeAuthoring()
		in.lastMessage = ""
		return nil
	case tcell.KeyEnter:
		in.finishShape(w)
		return nil
	case tcell.KeyRune:
	default:
		return nil
	}

	switch ev.Rune() {
	case 'q':
		return engine.ErrQuit
	case 'n':
		w.BeginShapeAuthoring()
		in.lastMessage = "click vertices, Enter to finish"
	case 'm':
		in.movable = !in.movable
	case 'p', ' ':
		w.SetPaused(!w.Paused())
	case 'x':
		if b, ok := w.BodyAt(in.pointer); ok {
			w.RemoveBody(b.ID)
		}
	case 'r', 'R':
		if b, ok := w.BodyAt(in.pointer); ok {
			degrees := float64(RotateStepDegrees)
			if ev.Rune() == 'R' {
				degrees = -degrees
			}
			b.Rotate(degrees)
		}
	case '+', '-':
		if b, ok := w.BodyAt(in.pointer); ok {
			factor := ScaleStepFactor
			if ev.Rune() == '-' {
				factor = 1 / factor
			}
			if err := b.Scale(factor); err != nil {
				in.logger.Warn(ctx, "scale rejected", "body_id", uint64(b.ID), "error", err.Error())
			}
		}
	}
	return nil
}

func (in *TerminalInput) finishShape(w *engine.World) {
	if !w.IsAuthoring() {
		return
	}
	id, err := w.FinishShapeAuthoring(in.sim.DefaultColor, in.sim.DefaultMass, in.movable)
	if err != nil {
		in.logger.Warn(w.Context(), "shape rejected", "error", err.Error(), "vertices", len(w.AuthoredVertices()))
		in.lastMessage = err.Error()
		return
	}
	in.lastMessage = ""
	in.logger.Debug(w.Context(), "shape authored", "body_id", uint64(id))
}

// refresh pushes the status line and authored outline to the renderer
func (in *TerminalInput) refresh(w *engine.World) {
	if in.renderer == nil {
		return
	}

	status := StatusLine(w)
	if in.movable {
		status += " | new: movable"
	} else {
		status += " | new: fixed"
	}
	if in.lastMessage != "" {
		status += " | " + in.lastMessage
	}
	in.renderer.SetStatus(status)
	in.renderer.SetAuthored(w.AuthoredVertices())
}

// Movable reports whether the next authored shape will be movable
func (in *TerminalInput) Movable() bool {
	return in.movable
}
