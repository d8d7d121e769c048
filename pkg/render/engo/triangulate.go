// pkg/render/engo/triangulate.go
package engo

import (
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-polybox/pkg/physics"
)

// earEpsilon is the smallest turn treated as convex
const earEpsilon = 1e-9

// Triangulate splits a simple polygon into triangles by ear clipping. The
// result lists three corners per triangle. Either winding is accepted.
// Self-intersecting outlines that run out of ears are fanned from the first
// remaining vertex.
func Triangulate(vertices []physics.Vector2D) []physics.Vector2D {
	n := len(vertices)
	if n < 3 {
		return nil
	}

	winding := 1.0
	if physics.SignedArea(vertices) < 0 {
		winding = -1
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	out := make([]physics.Vector2D, 0, 3*(n-2))
	for len(remaining) > 3 {
		ear := findEar(vertices, remaining, winding)
		if ear < 0 {
			for i := 1; i < len(remaining)-1; i++ {
				out = append(out, vertices[remaining[0]], vertices[remaining[i]], vertices[remaining[i+1]])
			}
			return out
		}

		m := len(remaining)
		prev, cur, next := remaining[(ear+m-1)%m], remaining[ear], remaining[(ear+1)%m]
		out = append(out, vertices[prev], vertices[cur], vertices[next])
		remaining = append(remaining[:ear], remaining[ear+1:]...)
	}

	return append(out, vertices[remaining[0]], vertices[remaining[1]], vertices[remaining[2]])
}

// findEar returns the position in remaining of a clippable vertex, or -1
func findEar(vertices []physics.Vector2D, remaining []int, winding float64) int {
	m := len(remaining)
	for i := range remaining {
		prev, cur, next := remaining[(i+m-1)%m], remaining[i], remaining[(i+1)%m]
		a, b, c := vertices[prev], vertices[cur], vertices[next]

		if winding*turn(a, b, c) <= earEpsilon {
			continue
		}

		blocked := false
		for _, j := range remaining {
			if j == prev || j == cur || j == next {
				continue
			}
			if inTriangle(vertices[j], a, b, c, winding) {
				blocked = true
				break
			}
		}
		if !blocked {
			return i
		}
	}
	return -1
}

func turn(a, b, c physics.Vector2D) float64 {
	return b.Sub(a).Cross(c.Sub(b))
}

// inTriangle includes the boundary so a vertex touching a candidate ear blocks it
func inTriangle(p, a, b, c physics.Vector2D, winding float64) bool {
	return winding*b.Sub(a).Cross(p.Sub(a)) >= 0 &&
		winding*c.Sub(b).Cross(p.Sub(b)) >= 0 &&
		winding*a.Sub(c).Cross(p.Sub(c)) >= 0
}

// normalizePoints maps triangle corners into the unit box spanned by bounds,
// the coordinate space common.ComplexTriangles is drawn in.
func normalizePoints(points []physics.Vector2D, bounds physics.AABB) []engo.Point {
	w, h := bounds.Width(), bounds.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	out := make([]engo.Point, len(points))
	for i, p := range points {
		out[i] = engo.Point{
			X: float32((p.X - bounds.Min.X) / w),
			Y: float32((p.Y - bounds.Min.Y) / h),
		}
	}
	return out
}
