package mathutil

import "github.com/pkg/errors"

// ErrSingular is returned when a transform has no inverse.
var ErrSingular = errors.New("mathutil: transform is not invertible")

// Transform is an affine map p' = R·p + T between an element's local frame
// and world space. R is expected to be a rotation, possibly with uniform
// scale; skew is not assumed.
type Transform struct {
	R Mat3
	T Vec3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{R: Mat3Identity()}
}

// FromBasis builds a transform whose local X/Y/Z axes map to x, y, z and
// whose local origin maps to origin.
func FromBasis(origin, x, y, z Vec3) Transform {
	return Transform{R: Mat3FromColumns(x, y, z), T: origin}
}

// FromEuler builds Rz·Ry·Rx from Euler angles in degrees, then translates.
func FromEuler(rxDeg, ryDeg, rzDeg float64, origin Vec3) Transform {
	q := EulerToQuat(Deg2Rad(rxDeg), Deg2Rad(ryDeg), Deg2Rad(rzDeg))
	return Transform{R: QuatToMat3(q.Normalize()), T: origin}
}

// ApplyPoint maps a point (w=1).
func (t Transform) ApplyPoint(p Vec3) Vec3 {
	return t.R.MulVec3(p).Add(t.T)
}

// ApplyVector maps a direction (w=0); translation is ignored.
func (t Transform) ApplyVector(v Vec3) Vec3 {
	return t.R.MulVec3(v)
}

// Inverse returns the inverse map.
func (t Transform) Inverse() (Transform, error) {
	inv, ok := t.R.Inverse()
	if !ok {
		return Transform{}, ErrSingular
	}
	return Transform{R: inv, T: inv.MulVec3(t.T).Neg()}, nil
}

// BasisX returns the world direction of the local X axis.
func (t Transform) BasisX() Vec3 { return t.R.Col(0) }

// BasisY returns the world direction of the local Y axis.
func (t Transform) BasisY() Vec3 { return t.R.Col(1) }

// BasisZ returns the world direction of the local Z axis.
func (t Transform) BasisZ() Vec3 { return t.R.Col(2) }
