// pkg/config/env_config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by LoadConfigFromEnv
const (
	EnvFPS            = "POLYBOX_FPS"
	EnvGravityY       = "POLYBOX_GRAVITY_Y"
	EnvPixelsPerMetre = "POLYBOX_PIXELS_PER_METRE"
	EnvDragDamping    = "POLYBOX_DRAG_DAMPING"
	EnvCenterAccuracy = "POLYBOX_CENTER_ACCURACY"
	EnvRenderer       = "POLYBOX_RENDERER"
	EnvStartPaused    = "POLYBOX_START_PAUSED"
	EnvShutdownGrace  = "POLYBOX_SHUTDOWN_GRACE"
	EnvMaxMemoryMB    = "POLYBOX_MAX_MEMORY_MB"
	EnvHealthInterval = "POLYBOX_HEALTH_INTERVAL"
)

// EnvironmentConfig holds overrides taken from the process environment.
// Zero values mean the variable was not set.
type EnvironmentConfig struct {
	FPS            int
	GravityY       *float64
	PixelsPerMetre float64
	DragDamping    *float64
	CenterAccuracy float64
	Renderer       string
	StartPaused    bool
	ShutdownGrace  time.Duration

	// process limits watched by the health monitor, never zero
	MaxMemoryMB    int64
	HealthInterval time.Duration
}

// LoadConfigFromEnv reads POLYBOX_* variables. Unparseable values are ignored
// and the result is validated with the defaults filled in.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	env := &EnvironmentConfig{
		FPS:            getEnvAsIntOrDefault(EnvFPS, 0),
		PixelsPerMetre: getEnvAsFloatOrDefault(EnvPixelsPerMetre, 0),
		CenterAccuracy: getEnvAsFloatOrDefault(EnvCenterAccuracy, 0),
		Renderer:       strings.ToLower(getEnvOrDefault(EnvRenderer, "")),
		StartPaused:    getEnvAsBoolOrDefault(EnvStartPaused, false),
		ShutdownGrace:  getEnvAsDurationOrDefault(EnvShutdownGrace, time.Second),
		MaxMemoryMB:    int64(getEnvAsIntOrDefault(EnvMaxMemoryMB, 512)),
		HealthInterval: getEnvAsDurationOrDefault(EnvHealthInterval, 5*time.Second),
	}

	if env.MaxMemoryMB <= 0 {
		return nil, &ValidationError{Field: EnvMaxMemoryMB, Value: env.MaxMemoryMB, Message: "must be positive"}
	}
	if env.HealthInterval <= 0 {
		return nil, &ValidationError{Field: EnvHealthInterval, Value: env.HealthInterval, Message: "must be positive"}
	}

	if v, ok := lookupFloat(EnvGravityY); ok {
		env.GravityY = &v
	}
	if v, ok := lookupFloat(EnvDragDamping); ok {
		env.DragDamping = &v
	}

	probe := DefaultConfig()
	env.ApplyTo(probe)
	if err := probe.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// ApplyTo overlays the set environment values on cfg
func (e *EnvironmentConfig) ApplyTo(cfg *SandboxConfig) {
	if e.FPS != 0 {
		cfg.Simulation.FPS = e.FPS
	}
	if e.GravityY != nil {
		cfg.Physics.GravityY = *e.GravityY
	}
	if e.PixelsPerMetre != 0 {
		cfg.Physics.PixelsPerMetre = e.PixelsPerMetre
	}
	if e.DragDamping != nil {
		cfg.Physics.DragDamping = *e.DragDamping
	}
	if e.CenterAccuracy != 0 {
		cfg.Physics.CenterAccuracy = e.CenterAccuracy
	}
	if e.Renderer != "" {
		cfg.Display.Renderer = e.Renderer
	}
	if e.StartPaused {
		cfg.Simulation.StartPaused = true
	}
}

// ApplyEnvironment reads the environment and overlays it on cfg, validating
// the result. cfg is only modified when the result is valid.
func ApplyEnvironment(cfg *SandboxConfig) (*EnvironmentConfig, error) {
	env, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	// overlay a copy so a rejected override leaves cfg untouched
	candidate, err := cfg.Clone()
	if err != nil {
		return nil, err
	}
	env.ApplyTo(candidate)
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	*cfg = *candidate
	return env, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, ok := lookupFloat(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func lookupFloat(key string) (float64, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
