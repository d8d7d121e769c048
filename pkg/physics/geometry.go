// pkg/physics/geometry.go
package physics

import (
	"github.com/golang/geo/r2"
)

// RayLength is how far the containment ray travels from the tested point.
const RayLength = 1e9

// Segment is the closed line segment between A and B
type Segment struct {
	A Vector2D
	B Vector2D
}

// IsVertical reports whether both endpoints share an x coordinate
func (s Segment) IsVertical() bool {
	return s.A.X == s.B.X
}

// IsHorizontal reports whether both endpoints share a y coordinate
func (s Segment) IsHorizontal() bool {
	return s.A.Y == s.B.Y
}

// Slope returns dy/dx. Only meaningful for non-vertical segments.
func (s Segment) Slope() float64 {
	return (s.B.Y - s.A.Y) / (s.B.X - s.A.X)
}

// Intercept returns c in y = mx + c
func (s Segment) Intercept() float64 {
	return s.A.Y - s.Slope()*s.A.X
}

// Orientation reports whether p1 -> p2 -> p3 turns counter-clockwise.
// Collinear triples report false.
func Orientation(p1, p2, p3 Vector2D) bool {
	return (p3.Y-p1.Y)*(p2.X-p1.X)-(p2.Y-p1.Y)*(p3.X-p1.X) > 0
}

// SegmentsIntersect reports whether the endpoints of each segment straddle the other.
// Touching endpoints and collinear overlaps are not intersections.
func SegmentsIntersect(a, b Segment) bool {
	return Orientation(a.A, b.A, b.B) != Orientation(a.B, b.A, b.B) &&
		Orientation(a.A, a.B, b.A) != Orientation(a.A, a.B, b.B)
}

// SegmentIntersection returns the crossing point of a and b, if SegmentsIntersect
// reports one.
func SegmentIntersection(a, b Segment) (Vector2D, bool) {
	if !SegmentsIntersect(a, b) {
		return Vector2D{}, false
	}

	switch {
	case a.IsVertical() && b.IsHorizontal():
		return Vector2D{X: a.A.X, Y: b.A.Y}, true
	case a.IsHorizontal() && b.IsVertical():
		return Vector2D{X: b.A.X, Y: a.A.Y}, true
	case a.IsVertical() && b.IsVertical(), a.IsHorizontal() && b.IsHorizontal():
		// parallel, cannot straddle
		return Vector2D{}, false
	case a.IsVertical():
		return Vector2D{X: a.A.X, Y: b.Slope()*a.A.X + b.Intercept()}, true
	case b.IsVertical():
		return Vector2D{X: b.A.X, Y: a.Slope()*b.A.X + a.Intercept()}, true
	case a.IsHorizontal():
		return Vector2D{X: (a.A.Y - b.Intercept()) / b.Slope(), Y: a.A.Y}, true
	case b.IsHorizontal():
		return Vector2D{X: (b.A.Y - a.Intercept()) / a.Slope(), Y: b.A.Y}, true
	}

	m1, c1 := a.Slope(), a.Intercept()
	m2, c2 := b.Slope(), b.Intercept()
	x := (c2 - c1) / (m1 - m2)
	return Vector2D{X: x, Y: m1*x + c1}, true
}

// edges returns the closed loop of segments through vertices
func edges(vertices []Vector2D) []Segment {
	n := len(vertices)
	out := make([]Segment, n)
	for i := range vertices {
		out[i] = Segment{A: vertices[i], B: vertices[(i+1)%n]}
	}
	return out
}

// SignedArea returns the shoelace area of the vertex loop. It is positive when
// the loop turns the way Orientation reports counter-clockwise and zero for
// collinear outlines.
func SignedArea(vertices []Vector2D) float64 {
	var twice float64
	for _, e := range edges(vertices) {
		twice += e.A.Cross(e.B)
	}
	return twice / 2
}

// PointInPolygon casts a ray from point along +Y and counts edge crossings.
// An odd count means inside. Points on an edge or level with a vertex may be
// misclassified.
func PointInPolygon(vertices []Vector2D, point Vector2D) bool {
	ray := Segment{A: point, B: Vector2D{X: point.X, Y: point.Y + RayLength}}
	crossings := 0
	for _, edge := range edges(vertices) {
		if SegmentsIntersect(ray, edge) {
			crossings++
		}
	}
	return crossings%2 == 1
}

// AABB is an axis-aligned bounding box
type AABB struct {
	Min Vector2D
	Max Vector2D
}

// BoundingBox returns the tightest AABB around vertices
func BoundingBox(vertices []Vector2D) AABB {
	points := make([]r2.Point, len(vertices))
	for i, v := range vertices {
		points[i] = r2.Point{X: v.X, Y: v.Y}
	}
	return aabbFromRect(r2.RectFromPoints(points...))
}

func aabbFromRect(r r2.Rect) AABB {
	lo, hi := r.Lo(), r.Hi()
	return AABB{
		Min: Vector2D{X: lo.X, Y: lo.Y},
		Max: Vector2D{X: hi.X, Y: hi.Y},
	}
}

func (b AABB) rect() r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: b.Min.X, Y: b.Min.Y},
		r2.Point{X: b.Max.X, Y: b.Max.Y},
	)
}

// Overlaps reports whether the boxes share any point. Touching boxes overlap.
func (b AABB) Overlaps(other AABB) bool {
	return b.rect().Intersects(other.rect())
}

// Contains reports whether point lies inside or on the box
func (b AABB) Contains(point Vector2D) bool {
	return b.rect().ContainsPoint(r2.Point{X: point.X, Y: point.Y})
}

// Width returns the horizontal extent
func (b AABB) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent
func (b AABB) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Center returns the midpoint of the box
func (b AABB) Center() Vector2D {
	return Vector2D{
		X: (b.Min.X + b.Max.X) * 0.5,
		Y: (b.Min.Y + b.Max.Y) * 0.5,
	}
}
