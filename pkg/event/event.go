// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Sandbox event types
const (
	BodyCreated       Type = "body_created"
	BodyRemoved       Type = "body_removed"
	BodyCollision     Type = "body_collision"
	DragStarted       Type = "drag_started"
	DragEnded         Type = "drag_ended"
	SimulationPaused  Type = "simulation_paused"
	SimulationResumed Type = "simulation_resumed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it from the bus.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID: id,
		Cancel: func() {
			b.unsubscribe(eventType, id)
		},
	}
}

// Unsubscribe removes the subscription with the given ID
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.unsubscribe(eventType, id)
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, r := range handlers {
		if r.id == id {
			// copy so in-flight Publish calls keep their snapshot intact
			kept := make([]registration, 0, len(handlers)-1)
			kept = append(kept, handlers[:i]...)
			kept = append(kept, handlers[i+1:]...)
			b.handlers[eventType] = kept
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, r := range handlers {
		r.handler(event)
	}
}

// Specific event implementations

// BodyEvent reports a body entering or leaving the world, or a drag change
type BodyEvent struct {
	BaseEvent
	BodyID uint64
	Color  string
	Mass   float64
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, bodyID uint64, color string, mass float64) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		BodyID: bodyID,
		Color:  color,
		Mass:   mass,
	}
}

// CollisionEvent contains information about a colliding body pair
type CollisionEvent struct {
	BaseEvent
	BodyA         uint64
	BodyB         uint64
	Tick          uint64
	ContactPoints int
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, bodyA, bodyB, tick uint64, contacts int) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: BodyCollision,
			Source:    source,
		},
		BodyA:         bodyA,
		BodyB:         bodyB,
		Tick:          tick,
		ContactPoints: contacts,
	}
}

// PauseEvent reports the simulation being paused or resumed
type PauseEvent struct {
	BaseEvent
	Tick uint64
}

// NewPauseEvent creates SimulationPaused or SimulationResumed depending on paused
func NewPauseEvent(source interface{}, paused bool, tick uint64) *PauseEvent {
	eventType := SimulationResumed
	if paused {
		eventType = SimulationPaused
	}
	return &PauseEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Tick: tick,
	}
}
