package geom

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevation-marker/internal/mathutil"
)

func TestSampleSurface_PlaneMidpoint(t *testing.T) {
	p := Plane{
		Origin: mathutil.Vec3{0, 0, 0},
		U:      mathutil.UnitX,
		V:      mathutil.UnitY,
		Box:    UVBox{UMin: 0, UMax: 4, VMin: 0, VMax: 2},
	}
	s, ok := SampleSurface(p)
	require.True(t, ok)
	assert.Equal(t, mathutil.Vec3{2, 1, 0}, s.Point)
	assert.Equal(t, mathutil.UnitZ, s.Normal)
}

type brokenSurface struct {
	domainErr error
	normal    mathutil.Vec3
}

func (b brokenSurface) Domain() (UVBox, error) {
	return UVBox{UMax: 1, VMax: 1}, b.domainErr
}

func (b brokenSurface) Evaluate(u, v float64) (mathutil.Vec3, error) {
	return mathutil.Vec3{u, v, 0}, nil
}

func (b brokenSurface) NormalAt(u, v float64) (mathutil.Vec3, error) {
	return b.normal, nil
}

func TestSampleSurface_Excluded(t *testing.T) {
	tests := []struct {
		name string
		s    Surface
	}{
		{"nil surface", nil},
		{"domain error", brokenSurface{domainErr: errors.New("boom"), normal: mathutil.UnitZ}},
		{"zero normal", brokenSurface{}},
		{"nan normal", brokenSurface{normal: mathutil.Vec3{math.NaN(), 0, 0}}},
		{"inverted domain", Plane{U: mathutil.UnitX, V: mathutil.UnitY, Box: UVBox{UMin: 1, UMax: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := SampleSurface(tt.s)
			assert.False(t, ok)
		})
	}
}

func TestBox_OutwardNormals(t *testing.T) {
	xf := mathutil.FromEuler(0, 0, 90, mathutil.Vec3{10, 0, 0})
	solid := Box(mathutil.Vec3{-1, -2, 0}, mathutil.Vec3{1, 2, 3}, xf)
	require.Len(t, solid.Faces, 6)
	assert.InDelta(t, 24.0, solid.Volume, 1e-9)

	local := []mathutil.Vec3{
		mathutil.UnitX.Neg(), mathutil.UnitX,
		mathutil.UnitY.Neg(), mathutil.UnitY,
		mathutil.UnitZ.Neg(), mathutil.UnitZ,
	}
	for i, f := range solid.Faces {
		s, ok := SampleSurface(f.Surface)
		require.True(t, ok)
		want := xf.ApplyVector(local[i])
		assert.True(t, s.Normal.ApproxEqual(want, 1e-9), "face %d normal %v want %v", i, s.Normal, want)
	}

	// +X face midpoint sits on the face center in world space
	s, _ := SampleSurface(solid.Faces[1].Surface)
	assert.True(t, s.Point.ApproxEqual(xf.ApplyPoint(mathutil.Vec3{1, 0, 1.5}), 1e-9))
}

func TestCylinderSolid_Faces(t *testing.T) {
	solid := CylinderSolid(mathutil.Vec3{}, 0.5, 3, mathutil.Identity())
	require.Len(t, solid.Faces, 4)
	assert.InDelta(t, math.Pi*0.25*3, solid.Volume, 1e-9)

	first, ok := SampleSurface(solid.Faces[0].Surface)
	require.True(t, ok)
	assert.True(t, first.Normal.ApproxEqual(mathutil.UnitY, 1e-9))
	assert.True(t, first.Point.ApproxEqual(mathutil.Vec3{0, 0.5, 1.5}, 1e-9))

	top, ok := SampleSurface(solid.Faces[3].Surface)
	require.True(t, ok)
	assert.Equal(t, mathutil.UnitZ, top.Normal)
}

func TestReference_RoundTrip(t *testing.T) {
	ref := Reference{ElementID: "wall:basic:01", Solid: 2, Face: 5}
	got, err := ParseReference(ref.String())
	require.NoError(t, err)
	assert.Equal(t, ref, got)

	_, err = ParseReference("nope")
	assert.Error(t, err)
}

func TestGeometry_LookupAndEmpty(t *testing.T) {
	var nilGeom *Geometry
	assert.True(t, nilGeom.Empty())
	assert.True(t, (&Geometry{Solids: []Solid{{Volume: 0}}}).Empty())

	solid := Box(mathutil.Vec3{}, mathutil.Vec3{1, 1, 1}, mathutil.Identity())
	solid.AssignReferences("e1", 0, map[int]bool{3: true})
	g := &Geometry{Solids: []Solid{solid}}
	assert.False(t, g.Empty())

	_, ok := g.Lookup(Reference{ElementID: "e1", Solid: 0, Face: 1})
	assert.True(t, ok)
	_, ok = g.Lookup(Reference{ElementID: "e1", Solid: 0, Face: 3})
	assert.False(t, ok, "unreferenced face must not resolve")
	_, ok = g.Lookup(Reference{ElementID: "e2", Solid: 0, Face: 1})
	assert.False(t, ok)
}
