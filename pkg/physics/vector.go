// pkg/physics/vector.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector2D represents a 2D vector with x and y components.
// Points and displacements share the type.
type Vector2D struct {
	X float64
	Y float64
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Negate returns the vector pointing the other way
func (v Vector2D) Negate() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction
func (v Vector2D) Normalize() Vector2D {
	length := v.Length()
	if length == 0 {
		return Vector2D{}
	}
	return Vector2D{
		X: v.X / length,
		Y: v.Y / length,
	}
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Length()
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// ApproxEqual reports whether both components differ by at most tolerance
func (v Vector2D) ApproxEqual(other Vector2D, tolerance float64) bool {
	return math.Abs(v.X-other.X) <= tolerance && math.Abs(v.Y-other.Y) <= tolerance
}

// IsFinite reports whether neither component is NaN or infinite
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (v Vector2D) vec() mgl64.Vec2 {
	return mgl64.Vec2{v.X, v.Y}
}

func fromVec(v mgl64.Vec2) Vector2D {
	return Vector2D{X: v.X(), Y: v.Y()}
}

// Matrix2 is a 2x2 linear map.
type Matrix2 struct {
	m mgl64.Mat2
}

// IdentityMatrix returns the identity map
func IdentityMatrix() Matrix2 {
	return Matrix2{m: mgl64.Ident2()}
}

// RotationMatrix returns [[cosθ, −sinθ], [sinθ, cosθ]] for θ given in degrees.
// On a y-down screen a positive angle turns clockwise.
func RotationMatrix(degrees float64) Matrix2 {
	return Matrix2{m: mgl64.Rotate2D(mgl64.DegToRad(degrees))}
}

// ScaleMatrix returns the uniform scaling map [[f, 0], [0, f]]
func ScaleMatrix(factor float64) Matrix2 {
	return Matrix2{m: mgl64.Mat2{factor, 0, 0, factor}}
}

// At returns the entry at row, col
func (m Matrix2) At(row, col int) float64 {
	return m.m.At(row, col)
}

// Mul composes two maps; the result applies other first
func (m Matrix2) Mul(other Matrix2) Matrix2 {
	return Matrix2{m: m.m.Mul2(other.m)}
}

// Apply maps a vector through the matrix
func (m Matrix2) Apply(v Vector2D) Vector2D {
	return fromVec(m.m.Mul2x1(v.vec()))
}

// ApplyAround maps p through the matrix with pivot moved to the origin first
func (m Matrix2) ApplyAround(p, pivot Vector2D) Vector2D {
	return m.Apply(p.Sub(pivot)).Add(pivot)
}
