// pkg/render/engo/renderer_test.go
package engo

import (
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

func rect(minX, minY, maxX, maxY float64) []physics.Vector2D {
	return []physics.Vector2D{
		{X: minX, Y: minY},
		{X: minX, Y: maxY},
		{X: maxX, Y: maxY},
		{X: maxX, Y: minY},
	}
}

// recordingSink stands in for common.RenderSystem
type recordingSink struct {
	added   map[uint64]*common.RenderComponent
	removed []uint64
}

func newRecordingSink() *recordingSink {
	return &recordingSink{added: make(map[uint64]*common.RenderComponent)}
}

func (s *recordingSink) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	s.added[basic.ID()] = render
}

func (s *recordingSink) Remove(basic ecs.BasicEntity) {
	s.removed = append(s.removed, basic.ID())
	delete(s.added, basic.ID())
}

func snapshot(id entity.ID, vertices []physics.Vector2D) entity.BodySnapshot {
	return entity.BodySnapshot{ID: id, Vertices: vertices, Color: "#3080ff", Movable: true}
}

func TestEngoRenderer_ImplementsRenderer(t *testing.T) {
	var _ entity.Renderer = NewEngoRenderer(nil, nil)
}

func TestEngoRenderer_RenderBody_OneEntityPerID(t *testing.T) {
	sink := newRecordingSink()
	r := NewEngoRenderer(sink, nil)

	for frame := 0; frame < 3; frame++ {
		r.Clear()
		r.RenderBody(snapshot(7, rect(10, 20, 50, 80)))
		r.Present()
	}

	if r.Len() != 1 || len(sink.added) != 1 {
		t.Fatalf("renderer has %d bodies, sink has %d entities, expected 1 each", r.Len(), len(sink.added))
	}

	e := r.bodies[7]
	if e.Position.X != 10 || e.Position.Y != 20 || e.Width != 40 || e.Height != 60 {
		t.Errorf("space = %+v, expected position (10, 20) size 40x60", e.SpaceComponent)
	}
	if e.StartZIndex != bodyZIndex {
		t.Errorf("z index = %v, expected %v", e.StartZIndex, bodyZIndex)
	}

	shape, ok := e.Drawable.(common.ComplexTriangles)
	if !ok {
		t.Fatalf("drawable is %T, expected common.ComplexTriangles", e.Drawable)
	}
	if len(shape.Points) != 6 {
		t.Errorf("got %d triangle corners, expected 6", len(shape.Points))
	}
	for _, p := range shape.Points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Errorf("point %v outside the unit box", p)
		}
	}
}

func TestEngoRenderer_Present_DropsUndrawnBodies(t *testing.T) {
	sink := newRecordingSink()
	r := NewEngoRenderer(sink, nil)

	r.Clear()
	r.RenderBody(snapshot(1, rect(0, 0, 10, 10)))
	r.RenderBody(snapshot(2, rect(20, 0, 30, 10)))
	r.Present()

	removedEntity := r.bodies[2].ID()

	r.Clear()
	r.RenderBody(snapshot(1, rect(0, 0, 10, 10)))
	r.Present()

	if r.Len() != 1 {
		t.Errorf("renderer has %d bodies, expected 1", r.Len())
	}
	if len(sink.removed) != 1 || sink.removed[0] != removedEntity {
		t.Errorf("removed entities = %v, expected [%d]", sink.removed, removedEntity)
	}
}

func TestEngoRenderer_Remove(t *testing.T) {
	sink := newRecordingSink()
	r := NewEngoRenderer(sink, nil)
	r.RenderBody(snapshot(1, rect(0, 0, 10, 10)))

	r.Remove(1)
	r.Remove(1)
	r.Remove(99)

	if r.Len() != 0 || len(sink.removed) != 1 {
		t.Errorf("len = %d, removed = %v, expected one removal", r.Len(), sink.removed)
	}
}

func TestEngoRenderer_RenderBody_States(t *testing.T) {
	tests := []struct {
		name       string
		body       entity.BodySnapshot
		wantHidden bool
		wantBorder float32
	}{
		{"Idle", snapshot(1, rect(0, 0, 10, 10)), false, 0},
		{"Following", entity.BodySnapshot{ID: 1, Vertices: rect(0, 0, 10, 10), Following: true}, false, 2},
		{"Flat", snapshot(1, []physics.Vector2D{{X: 0, Y: 5}, {X: 5, Y: 5}, {X: 10, Y: 5}}), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewEngoRenderer(nil, nil)
			r.RenderBody(tt.body)

			e := r.bodies[tt.body.ID]
			if e.Hidden != tt.wantHidden {
				t.Errorf("hidden = %v, expected %v", e.Hidden, tt.wantHidden)
			}
			if shape, ok := e.Drawable.(common.ComplexTriangles); ok && shape.BorderWidth != tt.wantBorder {
				t.Errorf("border = %v, expected %v", shape.BorderWidth, tt.wantBorder)
			}
		})
	}
}

func TestEngoRenderer_CollidingBodyIsHighlighted(t *testing.T) {
	r := NewEngoRenderer(nil, nil)

	body := snapshot(1, rect(0, 0, 10, 10))
	r.RenderBody(body)
	idle := r.bodies[1].Color

	body.Colliding = true
	r.RenderBody(body)

	if r.bodies[1].Color == idle {
		t.Error("colliding body kept its idle color")
	}
}

func TestEngoRenderer_RenderContacts_ReusesMarkers(t *testing.T) {
	sink := newRecordingSink()
	r := NewEngoRenderer(sink, nil)

	r.RenderContacts([]physics.Vector2D{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}})
	if r.contacts.Visible() != 3 || len(sink.added) != 3 {
		t.Fatalf("visible = %d, entities = %d, expected 3 each", r.contacts.Visible(), len(sink.added))
	}

	r.RenderContacts([]physics.Vector2D{{X: 10, Y: 20}})
	if r.contacts.Visible() != 1 || len(sink.added) != 3 {
		t.Errorf("visible = %d, entities = %d, expected 1 of 3", r.contacts.Visible(), len(sink.added))
	}

	m := r.contacts.markers[0]
	if m.Position.X != 10-markerSize/2 || m.Position.Y != 20-markerSize/2 {
		t.Errorf("marker at %v, expected centred on (10, 20)", m.Position)
	}

	r.RenderContacts(nil)
	if r.contacts.Visible() != 0 {
		t.Errorf("visible = %d after empty frame", r.contacts.Visible())
	}
}
