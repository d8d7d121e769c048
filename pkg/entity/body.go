// pkg/entity/body.go
package entity

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-polybox/pkg/physics"
)

// Body is a polygon with physical state. Immovable bodies ignore gravity and
// their own velocity but can still be dragged.
type Body struct {
	ID        ID
	Color     string
	Mass      float64
	Movable   bool
	Velocity  physics.Vector2D // metres per second
	Following bool             // locked to the mouse while dragged

	polygon  physics.Polygon
	accuracy float64
}

// BodySnapshot is the renderable state of a body for one frame
type BodySnapshot struct {
	ID        ID
	Vertices  []physics.Vector2D
	Centroid  physics.Vector2D
	Color     string
	Mass      float64
	Velocity  physics.Vector2D
	Momentum  physics.Vector2D
	Movable   bool
	Following bool
	Colliding bool
}

// NewBody builds a body from authored vertices. The centroid is estimated once
// here at the given sampling step.
func NewBody(id ID, vertices []physics.Vector2D, color string, mass float64, movable bool, accuracy float64) (*Body, error) {
	if mass <= 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("mass %v: %w", mass, physics.ErrInvalidMass)
	}

	polygon, err := physics.NewPolygon(vertices, accuracy)
	if err != nil {
		return nil, fmt.Errorf("body %d: %w", id, err)
	}

	return &Body{
		ID:       id,
		Color:    color,
		Mass:     mass,
		Movable:  movable,
		polygon:  polygon,
		accuracy: accuracy,
	}, nil
}

// GetID returns the body's identifier
func (b *Body) GetID() ID {
	return b.ID
}

// GetPosition returns the body's centroid
func (b *Body) GetPosition() physics.Vector2D {
	return b.polygon.Centroid()
}

// Polygon returns the body's current outline
func (b *Body) Polygon() physics.Polygon {
	return b.polygon
}

// Contains reports whether point lies inside the body
func (b *Body) Contains(point physics.Vector2D) bool {
	return b.polygon.Contains(point)
}

// Momentum returns mass times velocity
func (b *Body) Momentum() physics.Vector2D {
	return b.Velocity.Scale(b.Mass)
}

// ApplyGravity accelerates a movable body by gravity for deltaTime seconds
func (b *Body) ApplyGravity(gravity physics.Vector2D, deltaTime float64) {
	if !b.Movable {
		return
	}
	acceleration := physics.GravityAcceleration(gravity, b.Mass)
	b.Velocity = physics.IntegrateVelocity(b.Velocity, acceleration, deltaTime)
}

// StepMotion moves a movable body along its velocity for deltaTime seconds
func (b *Body) StepMotion(deltaTime, pixelsPerMetre float64) {
	if !b.Movable {
		return
	}
	b.Translate(physics.Displacement(b.Velocity, deltaTime, pixelsPerMetre))
}

// Translate moves the body by offset pixels regardless of movability
func (b *Body) Translate(offset physics.Vector2D) {
	b.polygon = b.polygon.Translate(offset)
}

// Rotate turns the body about its current centroid
func (b *Body) Rotate(degrees float64) {
	b.polygon = b.polygon.Rotate(degrees, b.polygon.Centroid())
}

// Scale resizes the body about its current centroid
func (b *Body) Scale(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("scale factor %v: %w", factor, physics.ErrIllFormedTransform)
	}
	b.polygon = b.polygon.Scale(factor, b.polygon.Centroid())
	return nil
}

// Recenter re-estimates the centroid from the current outline
func (b *Body) Recenter() error {
	polygon, err := b.polygon.Recenter(b.accuracy)
	if err != nil {
		return err
	}
	b.polygon = polygon
	return nil
}

// StartFollowing locks the body to the mouse
func (b *Body) StartFollowing() {
	b.Following = true
}

// Follow moves a dragged body by the mouse offset covered this tick and sets
// its velocity to the matching speed in metres per second.
func (b *Body) Follow(mouseDelta physics.Vector2D, deltaTime, pixelsPerMetre float64) {
	b.Velocity = physics.VelocityFromDelta(mouseDelta, deltaTime, pixelsPerMetre)
	b.Translate(mouseDelta)
}

// StopFollowing releases the drag. Movable bodies keep a damped share of the
// mouse velocity; immovable ones stop.
func (b *Body) StopFollowing(damping float64) {
	b.Following = false
	if b.Movable {
		b.Velocity = b.Velocity.Scale(damping)
		return
	}
	b.Velocity = physics.Vector2D{}
}

// Snapshot copies the body's renderable state
func (b *Body) Snapshot() BodySnapshot {
	return BodySnapshot{
		ID:        b.ID,
		Vertices:  b.polygon.Vertices(),
		Centroid:  b.polygon.Centroid(),
		Color:     b.Color,
		Mass:      b.Mass,
		Velocity:  b.Velocity,
		Momentum:  b.Momentum(),
		Movable:   b.Movable,
		Following: b.Following,
	}
}

// Render implements Entity
func (b *Body) Render(r Renderer) {
	r.RenderBody(b.Snapshot())
}
