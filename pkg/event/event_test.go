// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"
	"time"
)

// TestNewEventBus tests the creation of a new event bus
func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()

	if bus == nil {
		t.Fatal("NewEventBus() returned nil")
	}

	if bus.handlers == nil {
		t.Error("handlers map not initialized")
	}

	if bus.nextID != 1 {
		t.Errorf("expected nextID to be 1, got %d", bus.nextID)
	}
}

// TestBaseEvent tests the BaseEvent functionality
func TestBaseEvent_GetType_ReturnsCorrectType(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
	}{
		{
			name:      "BodyCreated event",
			eventType: BodyCreated,
			source:    "test_source",
		},
		{
			name:      "BodyCollision event",
			eventType: BodyCollision,
			source:    123,
		},
		{
			name:      "Empty source",
			eventType: SimulationPaused,
			source:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &BaseEvent{
				EventType: tt.eventType,
				Source:    tt.source,
			}

			if event.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", event.GetType(), tt.eventType)
			}

			if event.GetSource() != tt.source {
				t.Errorf("GetSource() = %v, want %v", event.GetSource(), tt.source)
			}
		})
	}
}

// TestBusSubscribe tests event subscription functionality
func TestBusSubscribe_SingleHandler_ReturnsValidSubscription(t *testing.T) {
	bus := NewEventBus()

	handler := func(e Event) {
		// Handler for testing subscription
	}

	sub := bus.Subscribe(BodyCreated, handler)

	if sub == nil {
		t.Fatal("Subscribe() returned nil subscription")
	}

	if sub.ID == 0 {
		t.Error("subscription ID should not be 0")
	}

	if sub.Cancel == nil {
		t.Error("subscription Cancel function should not be nil")
	}

	// Verify handler was registered
	bus.mu.RLock()
	handlers := bus.handlers[BodyCreated]
	bus.mu.RUnlock()

	if len(handlers) != 1 {
		t.Errorf("expected 1 handler, got %d", len(handlers))
	}
}

// TestBusSubscribe_MultipleHandlers tests multiple subscriptions
func TestBusSubscribe_MultipleHandlers_AllRegistered(t *testing.T) {
	bus := NewEventBus()
	var callCount int

	handler1 := func(e Event) { callCount++ }
	handler2 := func(e Event) { callCount++ }
	handler3 := func(e Event) { callCount++ }

	sub1 := bus.Subscribe(BodyCreated, handler1)
	sub2 := bus.Subscribe(BodyCreated, handler2)
	_ = bus.Subscribe(BodyCollision, handler3)

	// Check unique IDs
	if sub1.ID == sub2.ID {
		t.Error("subscriptions should have unique IDs")
	}

	// Check handlers count
	bus.mu.RLock()
	createdHandlers := bus.handlers[BodyCreated]
	collisionHandlers := bus.handlers[BodyCollision]
	bus.mu.RUnlock()

	if len(createdHandlers) != 2 {
		t.Errorf("expected 2 handlers for BodyCreated, got %d", len(createdHandlers))
	}

	if len(collisionHandlers) != 1 {
		t.Errorf("expected 1 handler for BodyCollision, got %d", len(collisionHandlers))
	}
}

// TestBusPublish tests event publishing functionality
func TestBusPublish_WithSubscribers_CallsAllHandlers(t *testing.T) {
	bus := NewEventBus()
	var callCount int
	var receivedEvents []Event

	handler1 := func(e Event) {
		callCount++
		receivedEvents = append(receivedEvents, e)
	}

	handler2 := func(e Event) {
		callCount++
		receivedEvents = append(receivedEvents, e)
	}

	bus.Subscribe(BodyCreated, handler1)
	bus.Subscribe(BodyCreated, handler2)

	event := &BaseEvent{
		EventType: BodyCreated,
		Source:    "test",
	}

	bus.Publish(event)

	if callCount != 2 {
		t.Errorf("expected 2 handler calls, got %d", callCount)
	}

	if len(receivedEvents) != 2 {
		t.Errorf("expected 2 received events, got %d", len(receivedEvents))
	}

	for _, e := range receivedEvents {
		if e.GetType() != BodyCreated {
			t.Errorf("expected event type %v, got %v", BodyCreated, e.GetType())
		}
	}
}

// TestBusPublish_NoSubscribers tests publishing without subscribers
func TestBusPublish_NoSubscribers_NoError(t *testing.T) {
	bus := NewEventBus()

	event := &BaseEvent{
		EventType: BodyCreated,
		Source:    "test",
	}

	// Should not panic or error
	bus.Publish(event)
}

// TestBusPublish_WrongEventType tests publishing to non-subscribed event type
func TestBusPublish_WrongEventType_HandlersNotCalled(t *testing.T) {
	bus := NewEventBus()
	handlerCalled := false

	handler := func(e Event) {
		handlerCalled = true
	}

	bus.Subscribe(BodyCreated, handler)

	event := &BaseEvent{
		EventType: BodyCollision,
		Source:    "test",
	}

	bus.Publish(event)

	if handlerCalled {
		t.Error("handler should not have been called for different event type")
	}
}

// TestSubscriptionCancel tests canceling subscriptions
func TestSubscriptionCancel_ValidSubscription_RemovesHandler(t *testing.T) {
	bus := NewEventBus()
	handlerCalled := false

	handler := func(e Event) {
		handlerCalled = true
	}

	sub := bus.Subscribe(BodyCreated, handler)

	// Verify handler is registered
	bus.mu.RLock()
	handlersBefore := len(bus.handlers[BodyCreated])
	bus.mu.RUnlock()

	if handlersBefore != 1 {
		t.Errorf("expected 1 handler before cancel, got %d", handlersBefore)
	}

	// Cancel subscription
	sub.Cancel()

	// Verify handler is removed
	bus.mu.RLock()
	handlersAfter := len(bus.handlers[BodyCreated])
	bus.mu.RUnlock()

	if handlersAfter != 0 {
		t.Errorf("expected 0 handlers after cancel, got %d", handlersAfter)
	}

	// Verify handler is not called after cancellation
	event := &BaseEvent{
		EventType: BodyCreated,
		Source:    "test",
	}

	bus.Publish(event)

	if handlerCalled {
		t.Error("handler should not be called after cancellation")
	}
}

// TestConcurrentAccess tests thread safety
func TestBusSubscribe_ConcurrentAccess_ThreadSafe(t *testing.T) {
	bus := NewEventBus()
	var wg sync.WaitGroup
	handlerCount := 0
	var mu sync.Mutex

	handler := func(e Event) {
		mu.Lock()
		handlerCount++
		mu.Unlock()
	}

	// Start multiple goroutines to subscribe concurrently
	numGoroutines := 10
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			bus.Subscribe(BodyCreated, handler)
		}()
	}

	wg.Wait()

	// Verify all subscriptions were registered
	bus.mu.RLock()
	handlers := bus.handlers[BodyCreated]
	bus.mu.RUnlock()

	if len(handlers) != numGoroutines {
		t.Errorf("expected %d handlers, got %d", numGoroutines, len(handlers))
	}

	// Test concurrent publishing
	event := &BaseEvent{
		EventType: BodyCreated,
		Source:    "test",
	}

	// Publish concurrently
	wg.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer wg.Done()
			bus.Publish(event)
		}()
	}

	wg.Wait()

	// Give handlers time to execute
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	expectedCalls := numGoroutines * 3
	if handlerCount != expectedCalls {
		t.Errorf("expected %d handler calls, got %d", expectedCalls, handlerCount)
	}
	mu.Unlock()
}

// TestNewBodyEvent tests body event creation
func TestNewBodyEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
		bodyID    uint64
		color     string
		mass      float64
	}{
		{
			name:      "Body created event",
			eventType: BodyCreated,
			source:    "world",
			bodyID:    12345,
			color:     "#00ff00",
			mass:      2.5,
		},
		{
			name:      "Drag ended event",
			eventType: DragEnded,
			source:    nil,
			bodyID:    67890,
			color:     "blue",
			mass:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewBodyEvent(tt.eventType, tt.source, tt.bodyID, tt.color, tt.mass)

			if event == nil {
				t.Fatal("NewBodyEvent() returned nil")
			}

			if event.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", event.GetType(), tt.eventType)
			}

			if event.GetSource() != tt.source {
				t.Errorf("GetSource() = %v, want %v", event.GetSource(), tt.source)
			}

			if event.BodyID != tt.bodyID || event.Color != tt.color || event.Mass != tt.mass {
				t.Errorf("payload = %+v", event)
			}
		})
	}
}

// TestNewCollisionEvent tests collision event creation
func TestNewCollisionEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	event := NewCollisionEvent("world", 100, 200, 42, 2)

	if event.GetType() != BodyCollision {
		t.Errorf("GetType() = %v, want %v", event.GetType(), BodyCollision)
	}

	if event.BodyA != 100 || event.BodyB != 200 {
		t.Errorf("pair = (%d, %d), want (100, 200)", event.BodyA, event.BodyB)
	}

	if event.Tick != 42 || event.ContactPoints != 2 {
		t.Errorf("Tick = %d, ContactPoints = %d", event.Tick, event.ContactPoints)
	}
}

// TestNewPauseEvent tests that the pause flag selects the event type
func TestNewPauseEvent_Flag_SelectsType(t *testing.T) {
	if got := NewPauseEvent(nil, true, 3).GetType(); got != SimulationPaused {
		t.Errorf("paused event type = %v, want %v", got, SimulationPaused)
	}
	if got := NewPauseEvent(nil, false, 3).GetType(); got != SimulationResumed {
		t.Errorf("resumed event type = %v, want %v", got, SimulationResumed)
	}
}

// TestEventTypes tests that all event type constants are properly defined
func TestEventTypes_Constants_AllDefined(t *testing.T) {
	expectedTypes := []Type{
		BodyCreated,
		BodyRemoved,
		BodyCollision,
		DragStarted,
		DragEnded,
		SimulationPaused,
		SimulationResumed,
	}

	seen := make(map[Type]bool)
	for _, eventType := range expectedTypes {
		if string(eventType) == "" {
			t.Errorf("event type %v is empty", eventType)
		}
		if seen[eventType] {
			t.Errorf("event type %v is duplicated", eventType)
		}
		seen[eventType] = true
	}
}

// TestUnsubscribe_ByID_RemovesOnlyThatHandler tests removal by ID
func TestUnsubscribe_ByID_RemovesOnlyThatHandler(t *testing.T) {
	bus := NewEventBus()
	calls := 0

	sub := bus.Subscribe(DragStarted, func(e Event) { calls += 10 })
	bus.Subscribe(DragStarted, func(e Event) { calls++ })

	bus.Unsubscribe(DragStarted, sub.ID)
	bus.Unsubscribe(DragStarted, 9999)
	bus.Publish(&BaseEvent{EventType: DragStarted})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// TestCancelMultipleSubscriptions tests canceling multiple subscriptions
func TestCancelMultipleSubscriptions_DifferentTypes_OnlyTargetRemoved(t *testing.T) {
	bus := NewEventBus()

	handler1Called := false
	handler2Called := false
	handler3Called := false

	handler1 := func(e Event) { handler1Called = true }
	handler2 := func(e Event) { handler2Called = true }
	handler3 := func(e Event) { handler3Called = true }

	sub1 := bus.Subscribe(BodyCreated, handler1)
	_ = bus.Subscribe(BodyCreated, handler2)
	_ = bus.Subscribe(BodyCollision, handler3)

	// Cancel only the first subscription
	sub1.Cancel()

	// Publish BodyCreated event
	createdEvent := &BaseEvent{EventType: BodyCreated, Source: "test"}
	bus.Publish(createdEvent)

	// Publish BodyCollision event
	collisionEvent := &BaseEvent{EventType: BodyCollision, Source: "test"}
	bus.Publish(collisionEvent)

	if handler1Called {
		t.Error("handler1 should not be called after cancellation")
	}

	if !handler2Called {
		t.Error("handler2 should be called")
	}

	if !handler3Called {
		t.Error("handler3 should be called")
	}
}
