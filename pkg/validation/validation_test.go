package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/opd-ai/go-polybox/pkg/physics"
)

func TestValidateColor(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name:  "short hex",
			input: "#f0a",
			want:  "#f0a",
		},
		{
			name:  "long hex mixed case",
			input: "#FF00aa",
			want:  "#FF00aa",
		},
		{
			name:  "named color lower-cased",
			input: "  Red ",
			want:  "red",
		},
		{
			name:        "empty",
			input:       "",
			wantErr:     true,
			errContains: "cannot be empty",
		},
		{
			name:        "bad hex digits",
			input:       "#ggg",
			wantErr:     true,
			errContains: "invalid hex color",
		},
		{
			name:        "wrong hex length",
			input:       "#abcd",
			wantErr:     true,
			errContains: "invalid hex color",
		},
		{
			name:        "name with digits",
			input:       "red1",
			wantErr:     true,
			errContains: "invalid color name",
		},
		{
			name:        "too long",
			input:       strings.Repeat("a", MaxColorLen+1),
			wantErr:     true,
			errContains: "too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateColor() error = %v, should contain %q", err, tt.errContains)
			}
			if got != tt.want {
				t.Errorf("ValidateColor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateMass(t *testing.T) {
	tests := []struct {
		name    string
		mass    float64
		wantErr bool
	}{
		{"unit", 1, false},
		{"tiny", 1e-9, false},
		{"max", MaxMass, false},
		{"zero", 0, true},
		{"negative", -2, true},
		{"nan", math.NaN(), true},
		{"infinite", math.Inf(1), true},
		{"over max", MaxMass * 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMass(tt.mass)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMass(%v) error = %v, wantErr %v", tt.mass, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, physics.ErrInvalidMass) {
				t.Errorf("ValidateMass(%v) error should wrap ErrInvalidMass, got %v", tt.mass, err)
			}
		})
	}
}

func TestParseMass(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"integer", "5", 5, false},
		{"decimal with spaces", " 2.5 ", 2.5, false},
		{"scientific", "1e3", 1000, false},
		{"empty", "", 0, true},
		{"word", "heavy", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"nan text", "NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMass(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMass(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseMass(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateVertices(t *testing.T) {
	triangle := []physics.Vector2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}

	tooMany := make([]physics.Vector2D, MaxVertexCount+1)
	for i := range tooMany {
		tooMany[i] = physics.Vector2D{X: float64(i), Y: float64(i % 7)}
	}

	tests := []struct {
		name       string
		vertices   []physics.Vector2D
		wantErr    bool
		degenerate bool
	}{
		{"triangle", triangle, false, false},
		{"empty", nil, true, true},
		{"two points", triangle[:2], true, true},
		{"nan vertex", []physics.Vector2D{{X: 0, Y: 0}, {X: math.NaN(), Y: 0}, {X: 0, Y: 1}}, true, true},
		{"too many", tooMany, true, false},
		{"collinear", []physics.Vector2D{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, true, true},
		{"repeated point", []physics.Vector2D{{X: 3, Y: 4}, {X: 3, Y: 4}, {X: 3, Y: 4}}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVertices(tt.vertices)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVertices() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.degenerate && !errors.Is(err, physics.ErrDegeneratePolygon) {
				t.Errorf("ValidateVertices() error should wrap ErrDegeneratePolygon, got %v", err)
			}
		})
	}
}
