// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-polybox/pkg/physics"
	"github.com/opd-ai/go-polybox/pkg/validation"
)

// Renderer names accepted by DisplayConfig.Renderer
const (
	RendererTerminal = "terminal"
	RendererEngo     = "engo"
	RendererNull     = "null"
)

// SandboxConfig contains configuration for a polygon sandbox
type SandboxConfig struct {
	Physics    PhysicsConfig    `json:"physics" yaml:"physics"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Display    DisplayConfig    `json:"display" yaml:"display"`
	Scene      []ShapeConfig    `json:"scene" yaml:"scene"`
}

// PhysicsConfig contains physics-related configuration
type PhysicsConfig struct {
	GravityX       float64 `json:"gravityX" yaml:"gravityX"`
	GravityY       float64 `json:"gravityY" yaml:"gravityY"` // m/s², positive is down the screen
	PixelsPerMetre float64 `json:"pixelsPerMetre" yaml:"pixelsPerMetre"`
	DragDamping    float64 `json:"dragDamping" yaml:"dragDamping"`       // velocity multiplier on drag release
	CenterAccuracy float64 `json:"centerAccuracy" yaml:"centerAccuracy"` // centroid sampling step in pixels
}

// SimulationConfig contains tick-rate and authoring defaults
type SimulationConfig struct {
	FPS                 int     `json:"fps" yaml:"fps"`
	StartPaused         bool    `json:"startPaused" yaml:"startPaused"`
	PauseWhileAuthoring bool    `json:"pauseWhileAuthoring" yaml:"pauseWhileAuthoring"`
	DefaultColor        string  `json:"defaultColor" yaml:"defaultColor"`
	DefaultMass         float64 `json:"defaultMass" yaml:"defaultMass"`
	DefaultMovable      bool    `json:"defaultMovable" yaml:"defaultMovable"`
}

// DisplayConfig contains front-end configuration
type DisplayConfig struct {
	Renderer   string  `json:"renderer" yaml:"renderer"`
	Title      string  `json:"title" yaml:"title"`
	Width      int     `json:"width" yaml:"width"`
	Height     int     `json:"height" yaml:"height"`
	CellWidth  float64 `json:"cellWidth" yaml:"cellWidth"`   // pixels per terminal column
	CellHeight float64 `json:"cellHeight" yaml:"cellHeight"` // pixels per terminal row
	LogFile    string  `json:"logFile" yaml:"logFile"`
}

// ShapeConfig describes a body placed when the scene loads
type ShapeConfig struct {
	Vertices []physics.Vector2D `json:"vertices" yaml:"vertices"`
	Color    string             `json:"color" yaml:"color"`
	Mass     float64            `json:"mass" yaml:"mass"`
	Movable  bool               `json:"movable" yaml:"movable"`
}

// ValidationError reports the config field that failed validation
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// Gravity returns the configured gravity vector
func (c PhysicsConfig) Gravity() physics.Vector2D {
	return physics.Vector2D{X: c.GravityX, Y: c.GravityY}
}

// FrameDuration returns the fixed tick length in seconds
func (c SimulationConfig) FrameDuration() float64 {
	return 1.0 / float64(c.FPS)
}

// LoadConfig loads a configuration from a file. Files ending in .yaml or
// .yml are read as YAML, everything else as JSON. Fields missing from the
// file keep their DefaultConfig values.
func LoadConfig(path string) (*SandboxConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file in the format its extension names
func SaveConfig(config *SandboxConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Clone returns a deep copy of c, scene vertices included
func (c *SandboxConfig) Clone() (*SandboxConfig, error) {
	clone := &SandboxConfig{}
	if err := copier.CopyWithOption(clone, c, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy config: %w", err)
	}
	return clone, nil
}

// DefaultConfig returns a default sandbox configuration
func DefaultConfig() *SandboxConfig {
	return &SandboxConfig{
		Physics: PhysicsConfig{
			GravityX:       0,
			GravityY:       9.8,
			PixelsPerMetre: 50,
			DragDamping:    0.5,
			CenterAccuracy: physics.DefaultCenterAccuracy,
		},
		Simulation: SimulationConfig{
			FPS:                 60,
			StartPaused:         false,
			PauseWhileAuthoring: true,
			DefaultColor:        "#3080ff",
			DefaultMass:         1,
			DefaultMovable:      true,
		},
		Display: DisplayConfig{
			Renderer:   RendererTerminal,
			Title:      "polybox",
			Width:      800,
			Height:     600,
			CellWidth:  8,
			CellHeight: 16,
		},
		Scene: []ShapeConfig{
			{
				// floor
				Vertices: []physics.Vector2D{{X: 20, Y: 540}, {X: 20, Y: 580}, {X: 780, Y: 580}, {X: 780, Y: 540}},
				Color:    "#808080",
				Mass:     1000,
				Movable:  false,
			},
			{
				Vertices: []physics.Vector2D{{X: 360, Y: 100}, {X: 320, Y: 180}, {X: 440, Y: 180}},
				Color:    "#ff4040",
				Mass:     2,
				Movable:  true,
			},
		},
	}
}

// Validate checks every section and scene shape
func (c *SandboxConfig) Validate() error {
	p := c.Physics
	if math.IsNaN(p.GravityX) || math.IsInf(p.GravityX, 0) {
		return &ValidationError{Field: "physics.gravityX", Value: p.GravityX, Message: "must be finite"}
	}
	if math.IsNaN(p.GravityY) || math.IsInf(p.GravityY, 0) {
		return &ValidationError{Field: "physics.gravityY", Value: p.GravityY, Message: "must be finite"}
	}
	if !(p.PixelsPerMetre > 0) || math.IsInf(p.PixelsPerMetre, 0) {
		return &ValidationError{Field: "physics.pixelsPerMetre", Value: p.PixelsPerMetre, Message: "must be positive"}
	}
	if !(p.DragDamping >= 0 && p.DragDamping <= 1) {
		return &ValidationError{Field: "physics.dragDamping", Value: p.DragDamping, Message: "must be within [0, 1]"}
	}
	if !(p.CenterAccuracy > 0) || math.IsInf(p.CenterAccuracy, 0) {
		return &ValidationError{Field: "physics.centerAccuracy", Value: p.CenterAccuracy, Message: "must be positive"}
	}

	s := c.Simulation
	if s.FPS < 1 || s.FPS > 1000 {
		return &ValidationError{Field: "simulation.fps", Value: s.FPS, Message: "must be between 1 and 1000"}
	}
	if _, err := validation.ValidateColor(s.DefaultColor); err != nil {
		return &ValidationError{Field: "simulation.defaultColor", Value: s.DefaultColor, Message: err.Error()}
	}
	if err := validation.ValidateMass(s.DefaultMass); err != nil {
		return &ValidationError{Field: "simulation.defaultMass", Value: s.DefaultMass, Message: err.Error()}
	}

	d := c.Display
	switch d.Renderer {
	case RendererTerminal, RendererEngo, RendererNull:
	default:
		return &ValidationError{Field: "display.renderer", Value: d.Renderer, Message: "must be terminal, engo or null"}
	}
	if d.Width <= 0 || d.Height <= 0 {
		return &ValidationError{Field: "display.size", Value: fmt.Sprintf("%dx%d", d.Width, d.Height), Message: "must be positive"}
	}
	if !(d.CellWidth > 0) || !(d.CellHeight > 0) {
		return &ValidationError{Field: "display.cell", Value: fmt.Sprintf("%vx%v", d.CellWidth, d.CellHeight), Message: "must be positive"}
	}

	for i, shape := range c.Scene {
		if err := shape.Validate(); err != nil {
			return &ValidationError{Field: fmt.Sprintf("scene[%d]", i), Value: shape.Color, Message: err.Error()}
		}
	}

	return nil
}

// Validate checks a single scene shape
func (s ShapeConfig) Validate() error {
	if err := validation.ValidateVertices(s.Vertices); err != nil {
		return err
	}
	if _, err := validation.ValidateColor(s.Color); err != nil {
		return err
	}
	return validation.ValidateMass(s.Mass)
}
