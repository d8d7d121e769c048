// pkg/entity/entity.go
package entity

import (
	"sync/atomic"

	"github.com/opd-ai/go-polybox/pkg/physics"
)

// ID is a unique identifier for an entity. IDs stay fixed for the entity's
// lifetime and are never reused.
type ID uint64

// Entity is the base interface for sandbox objects
type Entity interface {
	GetID() ID
	GetPosition() physics.Vector2D
	Render(r Renderer)
}

var lastID atomic.Uint64

// GenerateID returns the next unused entity ID
func GenerateID() ID {
	return ID(lastID.Add(1))
}
