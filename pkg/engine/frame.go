// pkg/engine/frame.go
package engine

import (
	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

// Contact holds the edge crossings found between one pair of bodies
type Contact struct {
	A      entity.ID
	B      entity.ID
	Points []physics.Vector2D
}

// Frame is everything a renderer needs for one tick
type Frame struct {
	Tick     uint64
	Paused   bool
	Bodies   []entity.BodySnapshot
	Contacts []Contact
}

// ContactPoints flattens the contact points of every pair
func (f Frame) ContactPoints() []physics.Vector2D {
	var n int
	for _, c := range f.Contacts {
		n += len(c.Points)
	}
	points := make([]physics.Vector2D, 0, n)
	for _, c := range f.Contacts {
		points = append(points, c.Points...)
	}
	return points
}

// Body returns the snapshot for id
func (f Frame) Body(id entity.ID) (entity.BodySnapshot, bool) {
	for _, b := range f.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return entity.BodySnapshot{}, false
}
