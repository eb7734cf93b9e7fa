package geom

import (
	"math"

	"github.com/pkg/errors"

	"elevation-marker/internal/mathutil"
)

// outlineSegments is the tessellation density for curved outlines.
const outlineSegments = 24

// Cylinder is the lateral surface of a circular cylinder, parameterized by
// angle u (radians) and height v along Axis.
type Cylinder struct {
	Base   mathutil.Vec3 // center of the bottom circle
	Axis   mathutil.Vec3 // unit
	XRef   mathutil.Vec3 // unit, perpendicular to Axis; u=0 points here
	Radius float64
	Box    UVBox
}

func (c Cylinder) yRef() mathutil.Vec3 {
	return c.Axis.Cross(c.XRef)
}

func (c Cylinder) radial(u float64) mathutil.Vec3 {
	return c.XRef.Scale(math.Cos(u)).Add(c.yRef().Scale(math.Sin(u)))
}

func (c Cylinder) Domain() (UVBox, error) {
	if !c.Box.Valid() || c.Radius <= 0 {
		return UVBox{}, errors.New("geom: cylinder has an invalid domain")
	}
	return c.Box, nil
}

func (c Cylinder) Evaluate(u, v float64) (mathutil.Vec3, error) {
	return c.Base.Add(c.Axis.Scale(v)).Add(c.radial(u).Scale(c.Radius)), nil
}

func (c Cylinder) NormalAt(u, v float64) (mathutil.Vec3, error) {
	return c.radial(u), nil
}

func (c Cylinder) Outline() [][]mathutil.Vec3 {
	b := c.Box
	var polys [][]mathutil.Vec3
	step := (b.UMax - b.UMin) / outlineSegments
	for i := 0; i < outlineSegments; i++ {
		u0 := b.UMin + step*float64(i)
		u1 := u0 + step
		p0, _ := c.Evaluate(u0, b.VMin)
		p1, _ := c.Evaluate(u1, b.VMin)
		p2, _ := c.Evaluate(u1, b.VMax)
		p3, _ := c.Evaluate(u0, b.VMax)
		polys = append(polys, []mathutil.Vec3{p0, p1, p2, p3})
	}
	return polys
}

// Disc is a flat circular cap in polar parameters: u = radius, v = angle.
type Disc struct {
	Center mathutil.Vec3
	Normal mathutil.Vec3 // unit, outward
	XRef   mathutil.Vec3 // unit, in-plane
	Radius float64
}

func (d Disc) Domain() (UVBox, error) {
	if d.Radius <= 0 {
		return UVBox{}, errors.New("geom: disc has no radius")
	}
	return UVBox{UMin: 0, UMax: d.Radius, VMin: 0, VMax: 2 * math.Pi}, nil
}

func (d Disc) Evaluate(u, v float64) (mathutil.Vec3, error) {
	y := d.Normal.Cross(d.XRef)
	dir := d.XRef.Scale(math.Cos(v)).Add(y.Scale(math.Sin(v)))
	return d.Center.Add(dir.Scale(u)), nil
}

func (d Disc) NormalAt(u, v float64) (mathutil.Vec3, error) {
	return d.Normal, nil
}

func (d Disc) Outline() [][]mathutil.Vec3 {
	poly := make([]mathutil.Vec3, 0, outlineSegments)
	for i := 0; i < outlineSegments; i++ {
		p, _ := d.Evaluate(d.Radius, 2*math.Pi*float64(i)/outlineSegments)
		poly = append(poly, p)
	}
	return [][]mathutil.Vec3{poly}
}
