package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-polybox/pkg/engine"
	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/physics"
)

// Glyphs used by the terminal renderer
const (
	GlyphMovable   = '#'
	GlyphImmovable = '%'
	GlyphCentroid  = '+'
	GlyphContact   = '*'
	GlyphAuthored  = 'o'
)

// TerminalRenderer rasterises bodies onto a tcell screen. One cell covers
// cellWidth x cellHeight simulation pixels; the bottom row holds a status line.
type TerminalRenderer struct {
	screen     tcell.Screen
	cellWidth  float64
	cellHeight float64
	status     string
	authored   []physics.Vector2D
}

// NewTerminalRenderer creates a terminal renderer on an initialised screen
func NewTerminalRenderer(screen tcell.Screen, cellWidth, cellHeight float64) *TerminalRenderer {
	return &TerminalRenderer{
		screen:     screen,
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
	}
}

// SetStatus sets the text drawn on the bottom row at the next Present
func (r *TerminalRenderer) SetStatus(status string) {
	r.status = status
}

// SetAuthored sets the in-progress outline drawn at the next Present
func (r *TerminalRenderer) SetAuthored(points []physics.Vector2D) {
	r.authored = append(r.authored[:0], points...)
}

// CellToPixel returns the simulation pixel at the centre of a cell
func (r *TerminalRenderer) CellToPixel(col, row int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(col) + 0.5) * r.cellWidth,
		Y: (float64(row) + 0.5) * r.cellHeight,
	}
}

// PixelToCell returns the cell holding a simulation pixel
func (r *TerminalRenderer) PixelToCell(p physics.Vector2D) (int, int) {
	return int(math.Floor(p.X / r.cellWidth)), int(math.Floor(p.Y / r.cellHeight))
}

// worldRows is the number of rows available to the scene
func (r *TerminalRenderer) worldRows() (int, int) {
	w, h := r.screen.Size()
	if h > 1 {
		h--
	}
	return w, h
}

func (r *TerminalRenderer) inWorld(col, row int) bool {
	w, h := r.worldRows()
	return col >= 0 && col < w && row >= 0 && row < h
}

// Clear implements entity.Renderer
func (r *TerminalRenderer) Clear() {
	r.screen.Clear()
}

// RenderBody implements entity.Renderer. Cells whose centre lies inside the
// outline are filled; the centroid cell is marked.
func (r *TerminalRenderer) RenderBody(body entity.BodySnapshot) {
	if len(body.Vertices) < 3 {
		return
	}

	style := BodyStyle(body)
	glyph := GlyphImmovable
	if body.Movable {
		glyph = GlyphMovable
	}

	box := physics.BoundingBox(body.Vertices)
	minCol, minRow := r.PixelToCell(box.Min)
	maxCol, maxRow := r.PixelToCell(box.Max)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !r.inWorld(col, row) {
				continue
			}
			if physics.PointInPolygon(body.Vertices, r.CellToPixel(col, row)) {
				r.screen.SetContent(col, row, glyph, nil, style)
			}
		}
	}

	if col, row := r.PixelToCell(body.Centroid); r.inWorld(col, row) {
		r.screen.SetContent(col, row, GlyphCentroid, nil, style)
	}
}

// RenderContacts implements entity.Renderer
func (r *TerminalRenderer) RenderContacts(points []physics.Vector2D) {
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	for _, p := range points {
		if col, row := r.PixelToCell(p); r.inWorld(col, row) {
			r.screen.SetContent(col, row, GlyphContact, nil, style)
		}
	}
}

// Present implements entity.Renderer
func (r *TerminalRenderer) Present() {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for _, p := range r.authored {
		if col, row := r.PixelToCell(p); r.inWorld(col, row) {
			r.screen.SetContent(col, row, GlyphAuthored, nil, style)
		}
	}

	width, height := r.screen.Size()
	if height > 1 {
		statusStyle := tcell.StyleDefault.Reverse(true)
		text := []rune(r.status)
		for col := 0; col < width; col++ {
			ch := ' '
			if col < len(text) {
				ch = text[col]
			}
			r.screen.SetContent(col, height-1, ch, nil, statusStyle)
		}
	}

	r.screen.Show()
}

// BodyStyle picks the cell style for a body. Colliding bodies are drawn
// reversed and dragged ones bold.
func BodyStyle(body entity.BodySnapshot) tcell.Style {
	style := tcell.StyleDefault.Foreground(ParseColor(body.Color))
	if body.Colliding {
		style = style.Reverse(true)
	}
	if body.Following {
		style = style.Bold(true)
	}
	return style
}

// ParseColor maps a body color to a tcell color. #rgb is widened to #rrggbb;
// unknown names fall back to the terminal default.
func ParseColor(color string) tcell.Color {
	color = strings.ToLower(strings.TrimSpace(color))
	if len(color) == 4 && color[0] == '#' {
		color = fmt.Sprintf("#%c%c%c%c%c%c", color[1], color[1], color[2], color[2], color[3], color[3])
	}
	return tcell.GetColor(color)
}

// StatusLine summarises the world state for the terminal status row
func StatusLine(w *engine.World) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d | bodies %d", w.Tick(), w.Len())
	if w.Paused() {
		b.WriteString(" | PAUSED")
	}
	if w.IsAuthoring() {
		fmt.Fprintf(&b, " | authoring %d pts", len(w.AuthoredVertices()))
	}
	return b.String()
}
