package geom

import (
	"math"

	"elevation-marker/internal/mathutil"
)

// Sample is a representative point and unit normal of a face.
type Sample struct {
	U, V   float64
	Point  mathutil.Vec3
	Normal mathutil.Vec3
}

// SampleSurface evaluates s at the midpoint of its parametric bounding box.
// ok is false when the surface cannot be evaluated there or its normal is
// degenerate; callers drop such faces without reporting.
func SampleSurface(s Surface) (Sample, bool) {
	if s == nil {
		return Sample{}, false
	}
	box, err := s.Domain()
	if err != nil || !box.Valid() {
		return Sample{}, false
	}
	u, v := box.Mid()

	p, err := s.Evaluate(u, v)
	if err != nil || !finite(p) {
		return Sample{}, false
	}
	n, err := s.NormalAt(u, v)
	if err != nil || !finite(n) {
		return Sample{}, false
	}
	n = n.Normalize()
	if n.IsZero() {
		return Sample{}, false
	}
	return Sample{U: u, V: v, Point: p, Normal: n}, true
}

func finite(v mathutil.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
