// pkg/physics/collision.go
package physics

// CollisionResult contains information about a polygon pair
type CollisionResult struct {
	Collided      bool
	ContactPoints []Vector2D
}

// CollidesWith rejects on disjoint bounding boxes, then reports a collision when
// any vertex of either polygon lies inside the other or any pair of edges
// crosses. The exact phase is O(n·m).
func (p Polygon) CollidesWith(other Polygon) bool {
	if !p.BoundingBox().Overlaps(other.BoundingBox()) {
		return false
	}

	for _, v := range p.vertices {
		if other.Contains(v) {
			return true
		}
	}
	for _, v := range other.vertices {
		if p.Contains(v) {
			return true
		}
	}

	otherEdges := other.Edges()
	for _, e := range p.Edges() {
		for _, o := range otherEdges {
			if SegmentsIntersect(e, o) {
				return true
			}
		}
	}
	return false
}

// ContactPoints returns every crossing between an edge of p and an edge of
// other, in edge order. The result is empty, never nil, when nothing crosses.
func (p Polygon) ContactPoints(other Polygon) []Vector2D {
	points := make([]Vector2D, 0)
	otherEdges := other.Edges()
	for _, e := range p.Edges() {
		for _, o := range otherEdges {
			if point, ok := SegmentIntersection(e, o); ok {
				points = append(points, point)
			}
		}
	}
	return points
}

// CheckCollision runs the collision test and, for colliding pairs, gathers
// contact points.
func CheckCollision(a, b Polygon) CollisionResult {
	if !a.CollidesWith(b) {
		return CollisionResult{Collided: false, ContactPoints: []Vector2D{}}
	}
	return CollisionResult{
		Collided:      true,
		ContactPoints: a.ContactPoints(b),
	}
}
