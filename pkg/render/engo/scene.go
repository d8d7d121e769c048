// pkg/render/engo/scene.go
package engo

import (
	"context"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-polybox/pkg/config"
	"github.com/opd-ai/go-polybox/pkg/engine"
	"github.com/opd-ai/go-polybox/pkg/entity"
	"github.com/opd-ai/go-polybox/pkg/event"
	"github.com/opd-ai/go-polybox/pkg/logging"
)

// SandboxScene is the engo scene hosting a world
type SandboxScene struct {
	ctx    context.Context
	cfg    *config.SandboxConfig
	world  *engine.World
	logger *logging.Logger

	renderer   *EngoRenderer
	hud        *HUD
	simulation *SimulationSystem

	subscription *event.Subscription
	observers    []func(engine.Frame)
}

// NewSandboxScene creates a scene for world. The window closes when ctx is
// cancelled. Observers receive every frame the scene steps.
func NewSandboxScene(ctx context.Context, cfg *config.SandboxConfig, world *engine.World, logger *logging.Logger, observers ...func(engine.Frame)) *SandboxScene {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &SandboxScene{
		ctx:       ctx,
		cfg:       cfg,
		world:     world,
		logger:    logger,
		observers: observers,
	}
}

// Type returns the scene type (required by Engo)
func (scene *SandboxScene) Type() string {
	return "SandboxScene"
}

// Preload is called before the scene starts (required by Engo). Shapes are
// generated from vertex data so there is nothing to load.
func (scene *SandboxScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *SandboxScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		panic("sandbox scene needs an *ecs.World updater")
	}

	common.SetBackground(BackgroundColor)
	SetupInputBindings()

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	scene.attach(renderSystem)
	world.AddSystem(scene.simulation)

	scene.logger.Info(scene.world.Context(), "scene ready",
		"bodies", scene.world.Len(),
		"fps", scene.cfg.Simulation.FPS,
	)
}

// attach builds the renderer, HUD and simulation system on sink
func (scene *SandboxScene) attach(sink RenderSink) {
	scene.renderer = NewEngoRenderer(sink, NewPalette())
	scene.hud = NewHUD(sink, scene.logger)

	runner := engine.NewRunner(scene.world, scene.cfg.Simulation.FPS)
	for _, fn := range scene.observers {
		runner.Observe(fn)
	}
	scene.simulation = NewSimulationSystem(
		scene.world,
		runner,
		scene.renderer,
		scene.hud,
		scene.cfg.Simulation,
		scene.logger,
	)
	scene.simulation.StopOn(scene.ctx)
	scene.subscribeToEvents()
}

// subscribeToEvents drops render entities as soon as their body is removed
func (scene *SandboxScene) subscribeToEvents() {
	if scene.subscription != nil {
		scene.subscription.Cancel()
	}
	scene.subscription = scene.world.EventBus.Subscribe(event.BodyRemoved, func(e event.Event) {
		if removed, ok := e.(*event.BodyEvent); ok {
			scene.renderer.Remove(entity.ID(removed.BodyID))
		}
	})
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *SandboxScene) Exit() {
	if scene.subscription != nil {
		scene.subscription.Cancel()
		scene.subscription = nil
	}
	scene.logger.Info(scene.world.Context(), "scene exited", "ticks", scene.world.Tick())
}

// Run opens a window for the scene and blocks until it closes or ctx is
// cancelled. It must be called from the main goroutine.
func Run(ctx context.Context, cfg *config.SandboxConfig, world *engine.World, logger *logging.Logger, observers ...func(engine.Frame)) {
	scene := NewSandboxScene(ctx, cfg, world, logger, observers...)
	engo.Run(engo.RunOptions{
		Title:    scene.cfg.Display.Title,
		Width:    scene.cfg.Display.Width,
		Height:   scene.cfg.Display.Height,
		FPSLimit: scene.cfg.Simulation.FPS,
	}, scene)
}
