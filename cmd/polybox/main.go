// cmd/polybox/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-polybox/pkg/config"
	"github.com/opd-ai/go-polybox/pkg/engine"
	"github.com/opd-ai/go-polybox/pkg/event"
	"github.com/opd-ai/go-polybox/pkg/health"
	"github.com/opd-ai/go-polybox/pkg/logging"
	"github.com/opd-ai/go-polybox/pkg/render"
	engorender "github.com/opd-ai/go-polybox/pkg/render/engo"
	"github.com/opd-ai/go-polybox/pkg/resource"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "polybox.json", "Path to configuration file (.json, .yaml or .yml)")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	rendererName := flag.String("renderer", "", "Renderer: terminal, engo or null (overrides config)")
	ticks := flag.Int("ticks", 600, "Ticks to run with the null renderer")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, env, err := loadConfig(ctx, logger, *configPath, *rendererName)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}

	// the terminal front-end owns stdout
	if cfg.Display.Renderer == config.RendererTerminal {
		var closeLog func() error
		logger, closeLog, err = terminalLogger(cfg.Display.LogFile)
		if err != nil {
			logging.NewLogger().Error(ctx, "Failed to open log file", err, "log_file", cfg.Display.LogFile)
			os.Exit(1)
		}
		defer closeLog()
	}

	if err := run(ctx, cfg, env, logger, *ticks); err != nil {
		logger.Error(ctx, "Sandbox stopped with an error", err)
		if cfg.Display.Renderer == config.RendererTerminal {
			fmt.Fprintln(os.Stderr, "polybox:", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads path when it exists, then applies the environment and the
// renderer flag in that order.
func loadConfig(ctx context.Context, logger *logging.Logger, path, rendererName string) (*config.SandboxConfig, *config.EnvironmentConfig, error) {
	var cfg *config.SandboxConfig

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
	}

	env, err := config.ApplyEnvironment(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply environment configuration: %w", err)
	}

	if rendererName != "" {
		cfg.Display.Renderer = strings.ToLower(rendererName)
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	return cfg, env, nil
}

// terminalLogger writes JSON logs to path, or nowhere when path is empty
func terminalLogger(path string) (*logging.Logger, func() error, error) {
	level := logging.ParseLevel(os.Getenv(logging.LevelEnvVar))
	if path == "" {
		return logging.NewLoggerWithWriter(io.Discard, level), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewLoggerWithWriter(f, level), f.Close, nil
}

// newHealthChecker registers the sandbox checks for probe and rm
func newHealthChecker(probe *health.FrameProbe, rm *resource.ResourceManager, env *config.EnvironmentConfig) *health.HealthChecker {
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSimulationHealthCheck(probe, 2*env.HealthInterval))
	checker.AddCheck(health.NewFiniteStateHealthCheck(probe))
	checker.AddCheck(health.NewMemoryHealthCheck(env.MaxMemoryMB, rm.GetMemoryUsage))
	checker.AddCheck(resource.NewResourceHealthCheck(rm))
	return checker
}

// run builds the world and drives it with the configured front-end until the
// user quits or a signal arrives.
func run(ctx context.Context, cfg *config.SandboxConfig, env *config.EnvironmentConfig, logger *logging.Logger, ticks int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	world := engine.NewWorld(cfg, event.NewEventBus(), logger)
	if err := world.LoadScene(cfg.Scene); err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	rm := resource.NewResourceManager(ctx, env, logger)
	probe := health.NewFrameProbe()
	checker := newHealthChecker(probe, rm, env)

	rm.StartMonitoring()
	rm.StartGoroutine("health-monitor", func(ctx context.Context) error {
		return checker.Monitor(ctx, env.HealthInterval, logger)
	})

	logger.Info(ctx, "Starting sandbox",
		"renderer", cfg.Display.Renderer,
		"bodies", world.Len(),
		"fps", cfg.Simulation.FPS,
	)

	var cleanup func()
	switch cfg.Display.Renderer {
	case config.RendererEngo:
		// engo needs the main goroutine and returns when the window closes
		// or the run context is cancelled
		engorender.Run(rm.Context(), cfg, world, logger, probe.Observe)
	case config.RendererNull:
		startNull(rm, cfg, world, logger, probe, ticks)
		<-rm.Context().Done()
	default:
		var err error
		cleanup, err = startTerminal(rm, cfg, world, logger, probe)
		if err != nil {
			_ = rm.Shutdown(context.Background())
			return err
		}
		<-rm.Context().Done()
	}

	shutdownErr := rm.Shutdown(context.Background())
	if cleanup != nil {
		cleanup()
	}

	logger.Info(ctx, "Sandbox stopped", "tick", world.Tick(), "bodies", world.Len())
	if err := rm.Err(); err != nil {
		return err
	}
	return shutdownErr
}

// startNull steps the world ticks times as fast as possible, logging each frame
func startNull(rm *resource.ResourceManager, cfg *config.SandboxConfig, world *engine.World, logger *logging.Logger, probe *health.FrameProbe, ticks int) {
	runner := engine.NewRunner(world, cfg.Simulation.FPS)
	runner.Observe(probe.Observe)
	sink := render.NewNullRenderer(logger)

	rm.StartGoroutine("simulation", func(ctx context.Context) error {
		quit := engine.InputFunc(func(*engine.World) error {
			if ctx.Err() != nil {
				return engine.ErrQuit
			}
			return nil
		})
		frame, err := runner.StepN(ticks, quit, sink)
		logger.Info(ctx, "Headless run finished", "tick", frame.Tick, "contacts", len(frame.Contacts))
		if errors.Is(err, engine.ErrQuit) {
			return nil
		}
		return err
	})
}

// startTerminal opens a tcell screen and runs the world on it. The returned
// cleanup restores the terminal and must run after the loop has stopped.
func startTerminal(rm *resource.ResourceManager, cfg *config.SandboxConfig, world *engine.World, logger *logging.Logger, probe *health.FrameProbe) (func(), error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()

	renderer := render.NewTerminalRenderer(screen, cfg.Display.CellWidth, cfg.Display.CellHeight)
	input := render.NewTerminalInput(screen, renderer, cfg.Simulation, logger)

	runner := engine.NewRunner(world, cfg.Simulation.FPS)
	runner.Observe(probe.Observe)

	rm.StartGoroutine("simulation", func(ctx context.Context) error {
		err := runner.Run(ctx, input, renderer)
		if errors.Is(err, engine.ErrQuit) {
			return nil
		}
		return err
	})

	return screen.Fini, nil
}
