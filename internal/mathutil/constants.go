package mathutil

// Epsilon is the length below which vectors are treated as degenerate.
const Epsilon = 1e-12

// Tolerance is the default comparison tolerance for geometric results.
const Tolerance = 1e-9

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
