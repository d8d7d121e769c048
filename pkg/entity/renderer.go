package entity

import "github.com/opd-ai/go-polybox/pkg/physics"

// Renderer consumes body snapshots once per frame
type Renderer interface {
	RenderBody(body BodySnapshot)
	RenderContacts(points []physics.Vector2D)
	Clear()
	Present()
}
