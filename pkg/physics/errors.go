package physics

import "errors"

var (
	// ErrInvalidMass is returned when a body is created with a non-positive mass.
	ErrInvalidMass = errors.New("invalid mass")
	// ErrDegeneratePolygon is returned for fewer than three vertices or when no
	// centroid sample lands inside the polygon.
	ErrDegeneratePolygon = errors.New("degenerate polygon")
	// ErrIllFormedTransform is returned for transform inputs that cannot be applied.
	ErrIllFormedTransform = errors.New("ill-formed transform")
)
