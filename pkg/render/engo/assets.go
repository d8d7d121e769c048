// pkg/render/engo/assets.go
package engo

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/opd-ai/go-polybox/pkg/entity"
)

// Fixed colors for overlays drawn on top of bodies
var (
	ContactColor    = color.RGBA{255, 220, 0, 255}
	AuthoredColor   = color.RGBA{255, 255, 255, 255}
	PausedColor     = color.RGBA{220, 40, 40, 255}
	BackgroundColor = color.RGBA{20, 20, 28, 255}
)

// highlightBlend is how far colliding bodies are blended toward white
const highlightBlend = 0.45

// Palette resolves body color strings to drawable colors and caches the result
type Palette struct {
	colors   map[string]colorful.Color
	fallback colorful.Color
}

// NewPalette creates a palette. Unknown colors resolve to light grey.
func NewPalette() *Palette {
	return &Palette{
		colors:   make(map[string]colorful.Color),
		fallback: colorful.Color{R: 0.8, G: 0.8, B: 0.8},
	}
}

// Color resolves a #rgb, #rrggbb or CSS color name
func (p *Palette) Color(name string) color.Color {
	return toRGBA(p.lookup(name))
}

func (p *Palette) lookup(name string) colorful.Color {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := p.colors[key]; ok {
		return c
	}

	c := p.fallback
	if strings.HasPrefix(key, "#") {
		if parsed, err := colorful.Hex(key); err == nil {
			c = parsed
		}
	} else if named, ok := colornames.Map[key]; ok {
		c, _ = colorful.MakeColor(named)
	}

	p.colors[key] = c
	return c
}

// BodyColor is the fill color for a body this frame. Colliding bodies are
// lightened.
func (p *Palette) BodyColor(body entity.BodySnapshot) color.Color {
	c := p.lookup(body.Color)
	if body.Colliding {
		c = c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, highlightBlend).Clamped()
	}
	return toRGBA(c)
}

// Len returns the number of cached colors
func (p *Palette) Len() int {
	return len(p.colors)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
