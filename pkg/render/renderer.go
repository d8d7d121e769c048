// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/logging"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

// NullRenderer is an entity.Renderer that only logs what it is given.
type NullRenderer struct {
	logger *logging.Logger
	ctx    context.Context
}

// NewNullRenderer creates a new NullRenderer with structured logging.
// A nil logger uses logging.NewLogger.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{
		logger: logger,
		ctx:    context.Background(),
	}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(d.ctx, "Clear called")
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(d.ctx, "Present called")
}

// RenderBody implements entity.Renderer.
func (d *NullRenderer) RenderBody(body entity.BodySnapshot) {
	d.logger.Debug(d.ctx, "RenderBody called",
		"body_id", uint64(body.ID),
		"vertices", len(body.Vertices),
		"centroid_x", body.Centroid.X,
		"centroid_y", body.Centroid.Y,
		"momentum_x", body.Momentum.X,
		"momentum_y", body.Momentum.Y,
		"colliding", body.Colliding,
	)
}

// RenderContacts implements entity.Renderer.
func (d *NullRenderer) RenderContacts(points []physics.Vector2D) {
	d.logger.Debug(d.ctx, "RenderContacts called", "points", len(points))
}
