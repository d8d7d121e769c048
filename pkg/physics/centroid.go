package physics

import (
	"fmt"
	"math"
)

// DefaultCenterAccuracy is the default centroid sampling step in pixels.
const DefaultCenterAccuracy = 1.0

// EstimateCentroid approximates the centre of area of the polygon by sampling a
// grid of step spacing centred on its bounding box and averaging the samples
// that fall inside. Smaller steps are more accurate and cost
// O((w/step)·(h/step)) containment tests.
func EstimateCentroid(vertices []Vector2D, step float64) (Vector2D, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return Vector2D{}, fmt.Errorf("centroid step %v: %w", step, ErrIllFormedTransform)
	}
	if len(vertices) < 3 {
		return Vector2D{}, fmt.Errorf("%d vertices: %w", len(vertices), ErrDegeneratePolygon)
	}

	box := BoundingBox(vertices)
	cols, x0 := gridAxis(box.Min.X, box.Width(), step)
	rows, y0 := gridAxis(box.Min.Y, box.Height(), step)

	// a centred grid keeps samples off the box edges, where the containment
	// ray treats the left and right boundaries differently
	var sum Vector2D
	samples := 0
	for i := 0; i < cols; i++ {
		x := x0 + float64(i)*step
		for j := 0; j < rows; j++ {
			p := Vector2D{X: x, Y: y0 + float64(j)*step}
			if PointInPolygon(vertices, p) {
				sum = sum.Add(p)
				samples++
			}
		}
	}

	if samples == 0 {
		return Vector2D{}, fmt.Errorf("no centroid samples at step %v: %w", step, ErrDegeneratePolygon)
	}
	return sum.Scale(1 / float64(samples)), nil
}

// gridAxis returns the sample count along one axis of the box, at least one,
// and the first sample position so the samples sit symmetrically in it.
func gridAxis(lo, extent, step float64) (int, float64) {
	n := int(math.Ceil(extent / step))
	if n < 1 {
		n = 1
	}
	return n, lo + (extent-float64(n-1)*step)/2
}
