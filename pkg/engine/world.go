// pkg/engine/world.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/opd-ai/go-polybox/pkg/config"
	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/event"
	"github.com/opd-ai/go-polybox/pkg/logging"
	"github.com/opd-ai/go-polybox/pkg/physics"
	"github.com/opd-ai/go-polybox/pkg/validation"
)

var (
	// ErrNotAuthoring is returned by authoring calls made without BeginShapeAuthoring
	ErrNotAuthoring = errors.New("no shape authoring in progress")
	// ErrDuplicateVertex is returned when an authored vertex repeats the previous one
	ErrDuplicateVertex = errors.New("vertex repeats the previous one")
)

// MouseState is the host's view of the pointer for one tick
type MouseState struct {
	Position physics.Vector2D
	Down     bool
}

// World owns the bodies, the mouse mirror and the pause gate. It is not safe
// for concurrent use; hosts drive it from a single goroutine.
type World struct {
	physics    config.PhysicsConfig
	simulation config.SimulationConfig

	bodies []*entity.Body
	index  map[entity.ID]*entity.Body

	mouse     MouseState
	prevMouse MouseState

	paused bool

	authoring          bool
	authored           []physics.Vector2D
	pausedBeforeAuthor bool

	tick      uint64
	lastFrame Frame

	EventBus *event.Bus
	logger   *logging.Logger
	ctx      context.Context
	throttle *logging.Throttle
}

// NewWorld creates an empty world. A nil cfg uses DefaultConfig, a nil bus a
// fresh Bus and a nil logger discards output.
func NewWorld(cfg *config.SandboxConfig, bus *event.Bus, logger *logging.Logger) *World {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if bus == nil {
		bus = event.NewEventBus()
	}
	if logger == nil {
		logger = logging.NewLoggerWithWriter(io.Discard, slog.LevelError)
	}

	w := &World{
		physics:    cfg.Physics,
		simulation: cfg.Simulation,
		index:      make(map[entity.ID]*entity.Body),
		paused:     cfg.Simulation.StartPaused,
		EventBus:   bus,
		logger:     logger,
		ctx:        logging.WithCorrelationID(context.Background(), ""),
		throttle:   logging.NewThrottle(1, time.Second),
	}
	w.lastFrame = Frame{Paused: w.paused, Bodies: []entity.BodySnapshot{}, Contacts: []Contact{}}
	return w
}

// Context returns the world's logging context
func (w *World) Context() context.Context {
	return w.ctx
}

// BeginShapeAuthoring starts collecting vertices for a new body. Calling it
// again discards the vertices collected so far.
func (w *World) BeginShapeAuthoring() {
	if !w.authoring {
		w.pausedBeforeAuthor = w.paused
		if w.simulation.PauseWhileAuthoring {
			w.SetPaused(true)
		}
	}
	w.authoring = true
	w.authored = w.authored[:0]
	w.logger.Debug(w.ctx, "shape authoring started")
}

// AddAuthoredVertex appends a vertex to the shape being authored. A vertex
// equal to the previous one would add a zero-length edge and is refused.
func (w *World) AddAuthoredVertex(p physics.Vector2D) error {
	if !w.authoring {
		return ErrNotAuthoring
	}
	if n := len(w.authored); n > 0 && w.authored[n-1] == p {
		return fmt.Errorf("vertex %v: %w", p, ErrDuplicateVertex)
	}
	w.authored = append(w.authored, p)
	return nil
}

// AuthoredVertices returns a copy of the vertices collected so far
func (w *World) AuthoredVertices() []physics.Vector2D {
	out := make([]physics.Vector2D, len(w.authored))
	copy(out, w.authored)
	return out
}

// IsAuthoring reports whether a shape is being authored
func (w *World) IsAuthoring() bool {
	return w.authoring
}

// CancelShapeAuthoring drops the authored vertices
func (w *World) CancelShapeAuthoring() {
	if !w.authoring {
		return
	}
	w.endAuthoring()
	w.logger.Debug(w.ctx, "shape authoring cancelled")
}

// FinishShapeAuthoring turns the authored vertices into a body. On error the
// vertices are kept so the host can retry with corrected attributes.
func (w *World) FinishShapeAuthoring(color string, mass float64, movable bool) (entity.ID, error) {
	if !w.authoring {
		return 0, ErrNotAuthoring
	}
	if err := validation.ValidateVertices(w.authored); err != nil {
		w.logger.Warn(w.ctx, "authored outline rejected", "error", err.Error(), "vertices", len(w.authored))
		return 0, logging.WrapError(err, "finish shape")
	}

	id, err := w.AddBody(w.authored, color, mass, movable)
	if err != nil {
		return 0, err
	}

	w.endAuthoring()
	return id, nil
}

func (w *World) endAuthoring() {
	w.authoring = false
	w.authored = w.authored[:0]
	if w.simulation.PauseWhileAuthoring {
		w.SetPaused(w.pausedBeforeAuthor)
	}
}

// AddBody inserts a body directly, bypassing the authoring protocol
func (w *World) AddBody(vertices []physics.Vector2D, color string, mass float64, movable bool) (entity.ID, error) {
	body, err := entity.NewBody(entity.GenerateID(), vertices, color, mass, movable, w.physics.CenterAccuracy)
	if err != nil {
		w.logger.Warn(w.ctx, "body rejected", "error", err.Error(), "vertices", len(vertices), "mass", mass)
		return 0, logging.WrapError(err, "add body")
	}

	w.bodies = append(w.bodies, body)
	w.index[body.ID] = body

	w.logger.Info(w.ctx, "body created",
		"body_id", uint64(body.ID),
		"vertices", len(vertices),
		"mass", mass,
		"movable", movable,
		"color", color,
	)
	w.EventBus.Publish(event.NewBodyEvent(event.BodyCreated, w, uint64(body.ID), color, mass))

	return body.ID, nil
}

// RemoveBody deletes a body. Other bodies keep their IDs and order.
func (w *World) RemoveBody(id entity.ID) bool {
	body, ok := w.index[id]
	if !ok {
		return false
	}

	delete(w.index, id)
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}

	w.logger.Info(w.ctx, "body removed", "body_id", uint64(id))
	w.EventBus.Publish(event.NewBodyEvent(event.BodyRemoved, w, uint64(id), body.Color, body.Mass))
	return true
}

// Body returns the body with the given ID
func (w *World) Body(id entity.ID) (*entity.Body, bool) {
	b, ok := w.index[id]
	return b, ok
}

// Bodies returns the bodies in insertion order
func (w *World) Bodies() []*entity.Body {
	out := make([]*entity.Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Len returns the number of bodies
func (w *World) Len() int {
	return len(w.bodies)
}

// BodyAt returns the most recently added body containing p
func (w *World) BodyAt(p physics.Vector2D) (*entity.Body, bool) {
	for i := len(w.bodies) - 1; i >= 0; i-- {
		if w.bodies[i].Contains(p) {
			return w.bodies[i], true
		}
	}
	return nil, false
}

// LoadScene adds the configured shapes in order, stopping at the first
// invalid one.
func (w *World) LoadScene(shapes []config.ShapeConfig) error {
	for i, shape := range shapes {
		if _, err := w.AddBody(shape.Vertices, shape.Color, shape.Mass, shape.Movable); err != nil {
			return logging.WrapError(err, "scene shape %d", i)
		}
	}
	return nil
}

// SetMouse records the pointer position and button state for the next Step
func (w *World) SetMouse(p physics.Vector2D, down bool) {
	w.mouse = MouseState{Position: p, Down: down}
}

// Mouse returns the pointer state recorded by SetMouse
func (w *World) Mouse() MouseState {
	return w.mouse
}

// SetPaused sets the pause gate
func (w *World) SetPaused(paused bool) {
	if w.paused == paused {
		return
	}
	w.paused = paused
	w.logger.Debug(w.ctx, "pause changed", "paused", paused, "tick", w.tick)
	w.EventBus.Publish(event.NewPauseEvent(w, paused, w.tick))
}

// Paused reports the pause gate
func (w *World) Paused() bool {
	return w.paused
}

// Tick returns the number of completed steps
func (w *World) Tick() uint64 {
	return w.tick
}

// LastFrame returns the frame produced by the most recent Step
func (w *World) LastFrame() Frame {
	return w.lastFrame
}

// Step advances the simulation by dt seconds. A paused world changes nothing
// and returns the last frame marked as paused.
func (w *World) Step(dt float64) Frame {
	if w.paused {
		frame := w.lastFrame
		frame.Paused = true
		return frame
	}

	pressed := w.mouse.Down && !w.prevMouse.Down
	mouseDelta := w.mouse.Position.Sub(w.prevMouse.Position)

	for _, body := range w.bodies {
		body.ApplyGravity(w.physics.Gravity(), dt)
		if dragged := w.updateDrag(body, pressed, mouseDelta, dt); !dragged {
			body.StepMotion(dt, w.physics.PixelsPerMetre)
		}
	}

	contacts, colliding := w.detectContacts()

	snapshots := make([]entity.BodySnapshot, len(w.bodies))
	for i, body := range w.bodies {
		snapshots[i] = body.Snapshot()
		snapshots[i].Colliding = colliding[body.ID]
	}

	w.prevMouse = w.mouse
	w.tick++

	w.lastFrame = Frame{
		Tick:     w.tick,
		Bodies:   snapshots,
		Contacts: contacts,
	}

	w.publishContacts(contacts)
	w.logger.Debug(w.ctx, "tick", "tick", w.tick, "bodies", len(snapshots), "contacts", len(contacts))

	return w.lastFrame
}

// updateDrag applies the drag transitions for one body and reports whether
// the drag moved it this tick.
func (w *World) updateDrag(body *entity.Body, pressed bool, mouseDelta physics.Vector2D, dt float64) bool {
	switch {
	case !body.Following && pressed && body.Contains(w.mouse.Position):
		body.StartFollowing()
		w.logger.Debug(w.ctx, "drag started", "body_id", uint64(body.ID))
		w.EventBus.Publish(event.NewBodyEvent(event.DragStarted, w, uint64(body.ID), body.Color, body.Mass))
		return false

	case body.Following && w.mouse.Down:
		body.Follow(mouseDelta, dt, w.physics.PixelsPerMetre)
		return true

	case body.Following:
		body.StopFollowing(w.physics.DragDamping)
		w.logger.Debug(w.ctx, "drag ended", "body_id", uint64(body.ID),
			"velocity_x", body.Velocity.X, "velocity_y", body.Velocity.Y)
		w.EventBus.Publish(event.NewBodyEvent(event.DragEnded, w, uint64(body.ID), body.Color, body.Mass))
		return false
	}
	return false
}

// detectContacts scans each unordered pair once
func (w *World) detectContacts() ([]Contact, map[entity.ID]bool) {
	contacts := []Contact{}
	colliding := make(map[entity.ID]bool)

	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			result := physics.CheckCollision(a.Polygon(), b.Polygon())
			if !result.Collided {
				continue
			}
			colliding[a.ID] = true
			colliding[b.ID] = true
			contacts = append(contacts, Contact{A: a.ID, B: b.ID, Points: result.ContactPoints})
		}
	}

	return contacts, colliding
}

func (w *World) publishContacts(contacts []Contact) {
	for _, c := range contacts {
		if w.throttle.Allow(fmt.Sprintf("%d-%d", c.A, c.B)) {
			w.logger.Debug(w.ctx, "bodies colliding",
				"body_a", uint64(c.A), "body_b", uint64(c.B), "contact_points", len(c.Points))
		}
		w.EventBus.Publish(event.NewCollisionEvent(w, uint64(c.A), uint64(c.B), w.tick, len(c.Points)))
	}
}

// Render sends a frame to a renderer
func (w *World) Render(r entity.Renderer, f Frame) {
	r.Clear()
	for _, body := range f.Bodies {
		r.RenderBody(body)
	}
	r.RenderContacts(f.ContactPoints())
	r.Present()
}
