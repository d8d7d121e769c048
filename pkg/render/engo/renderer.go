// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

// Draw order
const (
	bodyZIndex    = 1
	overlayZIndex = 2
	markerSize    = 6
)

// RenderSink is the part of common.RenderSystem the renderer drives
type RenderSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// drawable is an ecs entity carrying the components the render system needs
type drawable struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

func newDrawable(sink RenderSink, d common.Drawable, c color.Color, z float32) *drawable {
	e := &drawable{BasicEntity: ecs.NewBasic()}
	e.RenderComponent = common.RenderComponent{
		Drawable:    d,
		Color:       c,
		Scale:       engo.Point{X: 1, Y: 1},
		StartZIndex: z,
	}
	if sink != nil {
		sink.Add(&e.BasicEntity, &e.RenderComponent, &e.SpaceComponent)
	}
	return e
}

// EngoRenderer implements entity.Renderer using the Engo game engine. It keeps
// one ecs entity per body ID and drops entities for bodies not drawn in a frame.
type EngoRenderer struct {
	sink    RenderSink
	palette *Palette

	bodies   map[entity.ID]*drawable
	seen     map[entity.ID]bool
	contacts *markerPool
}

// NewEngoRenderer creates a renderer feeding sink. A nil sink only tracks state.
func NewEngoRenderer(sink RenderSink, palette *Palette) *EngoRenderer {
	if palette == nil {
		palette = NewPalette()
	}
	return &EngoRenderer{
		sink:     sink,
		palette:  palette,
		bodies:   make(map[entity.ID]*drawable),
		seen:     make(map[entity.ID]bool),
		contacts: newMarkerPool(sink, ContactColor),
	}
}

// Clear implements entity.Renderer
func (r *EngoRenderer) Clear() {
	for id := range r.seen {
		delete(r.seen, id)
	}
}

// RenderBody implements entity.Renderer
func (r *EngoRenderer) RenderBody(body entity.BodySnapshot) {
	e := r.getOrCreateBody(body.ID)
	r.seen[body.ID] = true

	bounds := physics.BoundingBox(body.Vertices)
	points := normalizePoints(Triangulate(body.Vertices), bounds)
	if len(points) == 0 {
		e.Hidden = true
		return
	}

	e.SpaceComponent = common.SpaceComponent{
		Position: engo.Point{X: float32(bounds.Min.X), Y: float32(bounds.Min.Y)},
		Width:    float32(bounds.Width()),
		Height:   float32(bounds.Height()),
	}

	shape := common.ComplexTriangles{Points: points}
	if body.Following {
		shape.BorderWidth = 2
		shape.BorderColor = AuthoredColor
	}
	e.Drawable = shape
	e.Color = r.palette.BodyColor(body)
	e.Hidden = false
}

// RenderContacts implements entity.Renderer
func (r *EngoRenderer) RenderContacts(points []physics.Vector2D) {
	r.contacts.Place(points)
}

// Present implements entity.Renderer. Bodies not drawn since Clear are removed.
func (r *EngoRenderer) Present() {
	for id := range r.bodies {
		if !r.seen[id] {
			r.Remove(id)
		}
	}
}

// Remove drops the entity for a body
func (r *EngoRenderer) Remove(id entity.ID) {
	e, exists := r.bodies[id]
	if !exists {
		return
	}
	if r.sink != nil {
		r.sink.Remove(e.BasicEntity)
	}
	delete(r.bodies, id)
}

// Len returns the number of body entities
func (r *EngoRenderer) Len() int {
	return len(r.bodies)
}

func (r *EngoRenderer) getOrCreateBody(id entity.ID) *drawable {
	if e, exists := r.bodies[id]; exists {
		return e
	}
	e := newDrawable(r.sink, common.ComplexTriangles{}, color.White, bodyZIndex)
	r.bodies[id] = e
	return e
}

// markerPool reuses small circle entities for point overlays. Unused markers
// are hidden rather than removed.
type markerPool struct {
	sink    RenderSink
	color   color.Color
	markers []*drawable
}

func newMarkerPool(sink RenderSink, c color.Color) *markerPool {
	return &markerPool{sink: sink, color: c}
}

// Place shows one marker centred on each point
func (p *markerPool) Place(points []physics.Vector2D) {
	for len(p.markers) < len(points) {
		p.markers = append(p.markers, newDrawable(p.sink, common.Circle{}, p.color, overlayZIndex))
	}

	for i, m := range p.markers {
		if i >= len(points) {
			m.Hidden = true
			continue
		}
		m.SpaceComponent = common.SpaceComponent{
			Position: engo.Point{
				X: float32(points[i].X) - markerSize/2,
				Y: float32(points[i].Y) - markerSize/2,
			},
			Width:  markerSize,
			Height: markerSize,
		}
		m.Hidden = false
	}
}

// Visible returns the number of markers currently shown
func (p *markerPool) Visible() int {
	n := 0
	for _, m := range p.markers {
		if !m.Hidden {
			n++
		}
	}
	return n
}
