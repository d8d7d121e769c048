// pkg/physics/polygon.go
package physics

import "fmt"

// Polygon is a closed loop of at least three vertices with an estimated centroid.
// Transforms return new polygons; vertex order never changes.
type Polygon struct {
	vertices []Vector2D
	centroid Vector2D
}

// NewPolygon copies vertices and estimates their centroid at the given sampling step.
func NewPolygon(vertices []Vector2D, accuracy float64) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, fmt.Errorf("polygon needs at least 3 vertices, got %d: %w", len(vertices), ErrDegeneratePolygon)
	}
	for i, v := range vertices {
		if !v.IsFinite() {
			return Polygon{}, fmt.Errorf("vertex %d is not finite: %w", i, ErrDegeneratePolygon)
		}
	}

	centroid, err := EstimateCentroid(vertices, accuracy)
	if err != nil {
		return Polygon{}, err
	}

	return Polygon{
		vertices: append([]Vector2D(nil), vertices...),
		centroid: centroid,
	}, nil
}

// Vertices returns a copy of the vertex loop
func (p Polygon) Vertices() []Vector2D {
	return append([]Vector2D(nil), p.vertices...)
}

// Len returns the number of vertices
func (p Polygon) Len() int {
	return len(p.vertices)
}

// Edges returns each edge in vertex order, the last one closing the loop
func (p Polygon) Edges() []Segment {
	return edges(p.vertices)
}

// Centroid returns the stored centroid estimate
func (p Polygon) Centroid() Vector2D {
	return p.centroid
}

// Recenter re-estimates the centroid from the current vertices.
func (p Polygon) Recenter(accuracy float64) (Polygon, error) {
	centroid, err := EstimateCentroid(p.vertices, accuracy)
	if err != nil {
		return p, err
	}
	return Polygon{vertices: p.Vertices(), centroid: centroid}, nil
}

// mapPoints applies f to every vertex and to the centroid
func (p Polygon) mapPoints(f func(Vector2D) Vector2D) Polygon {
	out := make([]Vector2D, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = f(v)
	}
	return Polygon{vertices: out, centroid: f(p.centroid)}
}

// Translate moves every vertex and the centroid by v
func (p Polygon) Translate(v Vector2D) Polygon {
	return p.mapPoints(func(q Vector2D) Vector2D { return q.Add(v) })
}

// Rotate turns the polygon by degrees about pivot
func (p Polygon) Rotate(degrees float64, pivot Vector2D) Polygon {
	return p.Transform(RotationMatrix(degrees), pivot)
}

// Scale enlarges the polygon by factor about pivot
func (p Polygon) Scale(factor float64, pivot Vector2D) Polygon {
	return p.Transform(ScaleMatrix(factor), pivot)
}

// Transform applies m about pivot to every vertex and the centroid
func (p Polygon) Transform(m Matrix2, pivot Vector2D) Polygon {
	return p.mapPoints(func(q Vector2D) Vector2D { return m.ApplyAround(q, pivot) })
}

// Contains reports whether point lies inside the polygon
func (p Polygon) Contains(point Vector2D) bool {
	return PointInPolygon(p.vertices, point)
}

// BoundingBox returns the polygon's axis-aligned extremes
func (p Polygon) BoundingBox() AABB {
	return BoundingBox(p.vertices)
}
