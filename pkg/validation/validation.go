// Package validation checks user-supplied body parameters before they reach the world.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/opd-ai/go-polybox/pkg/physics"
)

// Limits on authored shapes
const (
	MaxColorLen    = 32
	MaxVertexCount = 256
	MaxMass        = 1e6
)

var (
	hexColor   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// ValidateColor accepts #rgb, #rrggbb or a plain color name and returns it
// trimmed, with names lower-cased.
func ValidateColor(color string) (string, error) {
	trimmed := strings.TrimSpace(color)
	if trimmed == "" {
		return "", fmt.Errorf("color cannot be empty")
	}

	if len(trimmed) > MaxColorLen {
		return "", fmt.Errorf("color too long: %d characters (max %d)", len(trimmed), MaxColorLen)
	}

	if strings.HasPrefix(trimmed, "#") {
		if !hexColor.MatchString(trimmed) {
			return "", fmt.Errorf("invalid hex color %q (want #rgb or #rrggbb)", trimmed)
		}
		return trimmed, nil
	}

	if !namedColor.MatchString(trimmed) {
		return "", fmt.Errorf("invalid color name %q (letters only)", trimmed)
	}
	return strings.ToLower(trimmed), nil
}

// ValidateMass checks that a mass is finite, positive and within MaxMass
func ValidateMass(mass float64) error {
	if math.IsNaN(mass) || math.IsInf(mass, 0) {
		return fmt.Errorf("mass must be finite: %w", physics.ErrInvalidMass)
	}
	if mass <= 0 {
		return fmt.Errorf("mass must be positive, got %v: %w", mass, physics.ErrInvalidMass)
	}
	if mass > MaxMass {
		return fmt.Errorf("mass too large: %v (max %v): %w", mass, MaxMass, physics.ErrInvalidMass)
	}
	return nil
}

// ParseMass reads a mass typed by the user and validates it
func ParseMass(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("mass cannot be empty: %w", physics.ErrInvalidMass)
	}

	mass, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("mass %q is not a number: %w", trimmed, physics.ErrInvalidMass)
	}

	if err := ValidateMass(mass); err != nil {
		return 0, err
	}
	return mass, nil
}

// ValidateVertices checks an authored outline: at least three finite points,
// no more than MaxVertexCount and a non-zero area.
func ValidateVertices(vertices []physics.Vector2D) error {
	if len(vertices) < 3 {
		return fmt.Errorf("need at least 3 vertices, got %d: %w", len(vertices), physics.ErrDegeneratePolygon)
	}
	if len(vertices) > MaxVertexCount {
		return fmt.Errorf("too many vertices: %d (max %d)", len(vertices), MaxVertexCount)
	}
	for i, v := range vertices {
		if !v.IsFinite() {
			return fmt.Errorf("vertex %d is not finite: %w", i, physics.ErrDegeneratePolygon)
		}
	}
	if physics.SignedArea(vertices) == 0 {
		return fmt.Errorf("outline of %d vertices has no area: %w", len(vertices), physics.ErrDegeneratePolygon)
	}
	return nil
}
