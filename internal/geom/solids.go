package geom

import (
	"math"

	"elevation-marker/internal/mathutil"
)

// Box builds an axis-aligned box in the local frame [min, max] and places it
// in world space with xf. Faces are ordered -X, +X, -Y, +Y, -Z, +Z with
// outward normals. References are not assigned.
func Box(min, max mathutil.Vec3, xf mathutil.Transform) Solid {
	size := max.Sub(min)
	c := min.Add(size.Scale(0.5))
	hx, hy, hz := size[0]/2, size[1]/2, size[2]/2

	type side struct {
		offset, normal, uDir mathutil.Vec3
		halfU, halfV         float64
	}
	sides := []side{
		{mathutil.Vec3{-hx, 0, 0}, mathutil.UnitX.Neg(), mathutil.UnitY, hy, hz},
		{mathutil.Vec3{hx, 0, 0}, mathutil.UnitX, mathutil.UnitY, hy, hz},
		{mathutil.Vec3{0, -hy, 0}, mathutil.UnitY.Neg(), mathutil.UnitX, hx, hz},
		{mathutil.Vec3{0, hy, 0}, mathutil.UnitY, mathutil.UnitX, hx, hz},
		{mathutil.Vec3{0, 0, -hz}, mathutil.UnitZ.Neg(), mathutil.UnitX, hx, hy},
		{mathutil.Vec3{0, 0, hz}, mathutil.UnitZ, mathutil.UnitX, hx, hy},
	}

	scale := uniformScale(xf)
	faces := make([]Face, 0, len(sides))
	for _, s := range sides {
		p := NewPlane(
			xf.ApplyPoint(c.Add(s.offset)),
			xf.ApplyVector(s.normal),
			xf.ApplyVector(s.uDir),
			s.halfU*scale, s.halfV*scale,
		)
		faces = append(faces, Face{Surface: p})
	}

	return Solid{
		Volume: size[0] * size[1] * size[2] * xf.R.Det(),
		Faces:  faces,
	}
}

// CylinderSolid builds an upright cylinder around the local Z axis with its
// base centered at base. The lateral surface is split into two half faces
// (u in [0, π] and [π, 2π]) followed by the bottom and top caps.
func CylinderSolid(base mathutil.Vec3, radius, height float64, xf mathutil.Transform) Solid {
	scale := uniformScale(xf)
	axis := xf.ApplyVector(mathutil.UnitZ).Normalize()
	xref := xf.ApplyVector(mathutil.UnitX).Normalize()
	wBase := xf.ApplyPoint(base)
	r := radius * scale
	h := height * scale

	lateral := func(u0, u1 float64) Face {
		return Face{Surface: Cylinder{
			Base:   wBase,
			Axis:   axis,
			XRef:   xref,
			Radius: r,
			Box:    UVBox{UMin: u0, UMax: u1, VMin: 0, VMax: h},
		}}
	}

	faces := []Face{
		lateral(0, math.Pi),
		lateral(math.Pi, 2*math.Pi),
		{Surface: Disc{Center: wBase, Normal: axis.Neg(), XRef: xref, Radius: r}},
		{Surface: Disc{Center: wBase.Add(axis.Scale(h)), Normal: axis, XRef: xref, Radius: r}},
	}

	return Solid{
		Volume: math.Pi * radius * radius * height * xf.R.Det(),
		Faces:  faces,
	}
}

// uniformScale recovers the scale factor of a rotation-with-uniform-scale.
func uniformScale(xf mathutil.Transform) float64 {
	s := xf.ApplyVector(mathutil.UnitX).Len()
	if s < mathutil.Epsilon {
		return 1
	}
	return s
}
