// Package leader lays out the bend and end points of an elevation marker's
// leader line in a view.
package leader

import (
	"strings"

	"github.com/pkg/errors"

	"elevation-marker/internal/mathutil"
)

// Side selects which way the leader runs from the anchor.
type Side int

const (
	Left  Side = -1
	Right Side = 1
)

// Fixed leader offsets in model units.
const (
	BendOffset = 3.0
	EndOffset  = 7.0
	Shoulder   = 1.0
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// ParseSide accepts "left"/"l" and "right"/"r".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r", "":
		return Right, nil
	}
	return Right, errors.Errorf("leader: unknown side %q", s)
}

// Geometry is a laid-out leader.
type Geometry struct {
	Anchor mathutil.Vec3
	Bend   mathutil.Vec3
	End    mathutil.Vec3
}

// Compute places the bend and end points for a marker anchored at anchor in
// a view with the given view direction (pointing toward the viewer) and up
// vector. Layout is fixed; existing annotations are not avoided.
func Compute(viewDir, up mathutil.Vec3, side Side, anchor mathutil.Vec3) Geometry {
	up = up.Normalize()
	right := up.Cross(viewDir).Normalize()
	s := float64(side)

	// offsets are laid out in the view plane, x right and y up, around anchor
	frame := mathutil.FromBasis(anchor, right, up, viewDir.Normalize())
	return Geometry{
		Anchor: anchor,
		Bend:   frame.ApplyPoint(mathutil.Vec3{s * BendOffset, Shoulder, 0}),
		End:    frame.ApplyPoint(mathutil.Vec3{s * EndOffset, Shoulder, 0}),
	}
}
