// pkg/render/engo/hud.go
package engo

import (
	"fmt"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-polybox/pkg/engine"
	"github.com/opd-ai/go-polybox/pkg/logging"
)

// Pause indicator geometry in window pixels
const (
	indicatorX      = 8
	indicatorY      = 8
	indicatorWidth  = 16
	indicatorHeight = 16
)

// Status is the HUD's view of the world
type Status struct {
	Tick      uint64
	Bodies    int
	Paused    bool
	Authoring bool
	Vertices  int
	Movable   bool
}

// String formats the status the way it is logged
func (s Status) String() string {
	text := fmt.Sprintf("tick %d | bodies %d", s.Tick, s.Bodies)
	if s.Paused {
		text += " | PAUSED"
	}
	if s.Authoring {
		text += fmt.Sprintf(" | authoring %d pts", s.Vertices)
	}
	if s.Movable {
		return text + " | new: movable"
	}
	return text + " | new: fixed"
}

// ReadStatus collects the HUD status from the world
func ReadStatus(w *engine.World, movable bool) Status {
	return Status{
		Tick:      w.Tick(),
		Bodies:    w.Len(),
		Paused:    w.Paused(),
		Authoring: w.IsAuthoring(),
		Vertices:  len(w.AuthoredVertices()),
		Movable:   movable,
	}
}

// HUD draws the overlays that are not bodies: the vertices of the
// shape being authored and a pause indicator. Mode changes are logged.
type HUD struct {
	logger *logging.Logger

	authored  *markerPool
	indicator *drawable

	last    Status
	hasLast bool
}

// NewHUD creates a HUD drawing into sink. A nil sink only tracks state.
func NewHUD(sink RenderSink, logger *logging.Logger) *HUD {
	if logger == nil {
		logger = logging.NewLogger()
	}

	indicator := newDrawable(sink, common.Rectangle{}, PausedColor, overlayZIndex)
	indicator.SpaceComponent = common.SpaceComponent{
		Position: engo.Point{X: indicatorX, Y: indicatorY},
		Width:    indicatorWidth,
		Height:   indicatorHeight,
	}
	indicator.Hidden = true

	return &HUD{
		logger:    logger,
		authored:  newMarkerPool(sink, AuthoredColor),
		indicator: indicator,
	}
}

// Refresh updates the overlays from the world state
func (hud *HUD) Refresh(w *engine.World, movable bool) {
	status := ReadStatus(w, movable)

	hud.authored.Place(w.AuthoredVertices())
	hud.indicator.Hidden = !status.Paused

	if !hud.hasLast || hud.modeChanged(status) {
		hud.logger.Info(w.Context(), "sandbox status", "status", status.String())
	}
	hud.last = status
	hud.hasLast = true
}

func (hud *HUD) modeChanged(s Status) bool {
	return s.Paused != hud.last.Paused ||
		s.Authoring != hud.last.Authoring ||
		s.Bodies != hud.last.Bodies ||
		s.Movable != hud.last.Movable
}

// Last returns the status seen by the most recent Refresh
func (hud *HUD) Last() Status {
	return hud.last
}

// PauseShown reports whether the pause indicator is visible
func (hud *HUD) PauseShown() bool {
	return !hud.indicator.Hidden
}

// AuthoredShown returns the number of authored vertex markers visible
func (hud *HUD) AuthoredShown() int {
	return hud.authored.Visible()
}
