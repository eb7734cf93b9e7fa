package geom

import (
	"github.com/pkg/errors"

	"elevation-marker/internal/mathutil"
)

// Plane is a bounded planar face: P(u, v) = Origin + U·u + V·v.
// The outward normal is U × V.
type Plane struct {
	Origin mathutil.Vec3
	U, V   mathutil.Vec3
	Box    UVBox
}

// NewPlane builds a rectangle centered on center with outward normal n.
// uDir is projected onto the plane; halfU/halfV are the half extents.
func NewPlane(center, n, uDir mathutil.Vec3, halfU, halfV float64) Plane {
	n = n.Normalize()
	u := uDir.Sub(n.Scale(uDir.Dot(n))).Normalize()
	v := n.Cross(u)
	return Plane{
		Origin: center,
		U:      u,
		V:      v,
		Box:    UVBox{UMin: -halfU, UMax: halfU, VMin: -halfV, VMax: halfV},
	}
}

func (p Plane) Domain() (UVBox, error) {
	if !p.Box.Valid() {
		return UVBox{}, errors.New("geom: plane has an invalid domain")
	}
	return p.Box, nil
}

func (p Plane) Evaluate(u, v float64) (mathutil.Vec3, error) {
	return p.Origin.Add(p.U.Scale(u)).Add(p.V.Scale(v)), nil
}

func (p Plane) NormalAt(u, v float64) (mathutil.Vec3, error) {
	n := p.U.Cross(p.V)
	if n.IsZero() {
		return mathutil.Vec3{}, errors.New("geom: plane axes are parallel")
	}
	return n.Normalize(), nil
}

// Outline returns the four corners of the domain.
func (p Plane) Outline() [][]mathutil.Vec3 {
	b := p.Box
	corners := [][2]float64{{b.UMin, b.VMin}, {b.UMax, b.VMin}, {b.UMax, b.VMax}, {b.UMin, b.VMax}}
	poly := make([]mathutil.Vec3, 0, 4)
	for _, c := range corners {
		pt, _ := p.Evaluate(c[0], c[1])
		poly = append(poly, pt)
	}
	return [][]mathutil.Vec3{poly}
}
