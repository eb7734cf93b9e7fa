package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/mathutil"
)

func loadFacade(t *testing.T) *Scene {
	t.Helper()
	s, err := Load(filepath.Join("testdata", "facade.yaml"))
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := loadFacade(t)
	assert.Equal(t, "East facade", s.Name())
	require.Len(t, s.Views(), 4)
	require.Len(t, s.Elements(), 4)

	v, ok := s.ActiveView()
	require.True(t, ok)
	assert.Equal(t, "L1", v.ID)

	sections := document.SectionViews(s.Views())
	require.Len(t, sections, 2)
	assert.Equal(t, "S-01", sections[0].ID)
	assert.Equal(t, "S-02", sections[1].ID)

	w2, ok := s.Element("W-102")
	require.True(t, ok)
	assert.Equal(t, document.FamilyKey{Family: "Window", Type: "900x1200"}, w2.Family)
	assert.True(t, w2.Transform.BasisX().ApproxEqual(mathutil.UnitY, 1e-9))
}

func TestNew_Validation(t *testing.T) {
	box := func(min, max mathutil.Vec3) File {
		return File{Elements: []ElementDef{{ID: "e", Solids: []SolidDef{{Box: &BoxDef{Min: min, Max: max}}}}}}
	}
	cylinder := func(r, h float64) File {
		return File{Elements: []ElementDef{{ID: "e", Solids: []SolidDef{{Cylinder: &CylinderDef{Radius: r, Height: h}}}}}}
	}
	tests := []struct {
		name string
		file File
		want string
	}{
		{"view without direction", File{Views: []ViewDef{{ID: "v"}}}, "needs direction and up"},
		{"up parallel to direction", File{Views: []ViewDef{{ID: "v", Direction: mathutil.UnitZ, Up: mathutil.Vec3{0, 0, -2}}}}, "parallel"},
		{"solid without shape", File{Elements: []ElementDef{{ID: "e", Solids: []SolidDef{{}}}}}, "exactly one"},
		{"inverted box", box(mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 1, 1}), "must exceed"},
		{"flat box", box(mathutil.Vec3{0, 0, 0}, mathutil.Vec3{1, 0, 1}), "must exceed"},
		{"zero radius cylinder", cylinder(0, 1), "must be positive"},
		{"negative height cylinder", cylinder(0.5, -1), "must be positive"},
		{"missing active view", File{ActiveView: "missing"}, "does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := New(box(mathutil.Vec3{0, 0, 0}, mathutil.Vec3{1, 1, 1}))
	assert.NoError(t, err)
	_, err = New(cylinder(0.5, 2))
	assert.NoError(t, err)
}

func TestGeometry_VisibilityAndDetail(t *testing.T) {
	s := loadFacade(t)
	s01, _ := s.view("S-01")
	s02, _ := s.view("S-02")
	w3, _ := s.Element("W-103")

	g, err := s.Geometry(w3, document.GeometryOptions{View: s02, DetailLevel: document.DetailFine, ComputeReferences: true})
	require.NoError(t, err)
	assert.True(t, g.Empty(), "hidden in S-02")

	g, err = s.Geometry(w3, document.GeometryOptions{View: s01, ComputeReferences: true})
	require.NoError(t, err)
	assert.True(t, g.Empty(), "coarse view is below the element's minimum detail")

	require.NoError(t, s.PrepareView(s01))
	level, visible, ok := s.ViewPrepared("S-01")
	require.True(t, ok)
	assert.Equal(t, document.DetailFine, level)
	assert.True(t, visible)

	g, err = s.Geometry(w3, document.GeometryOptions{View: s01, ComputeReferences: true})
	require.NoError(t, err)
	require.False(t, g.Empty())
	require.Len(t, g.Solids[0].Faces, 6)
	assert.Equal(t, &geom.Reference{ElementID: "W-103", Solid: 0, Face: 2}, g.Solids[0].Faces[2].Ref)

	g, err = s.Geometry(w3, document.GeometryOptions{View: s01})
	require.NoError(t, err)
	assert.Nil(t, g.Solids[0].Faces[2].Ref, "references only when requested")
}

func TestPrepareView_Locked(t *testing.T) {
	s, err := New(File{Views: []ViewDef{{ID: "v", Kind: document.ViewSection, Locked: true, Direction: mathutil.UnitX, Up: mathutil.UnitZ}}})
	require.NoError(t, err)
	v, _ := s.view("v")
	err = s.PrepareView(v)
	assert.Equal(t, document.KindView, document.KindOf(err))
}

func TestCreateAnnotation_Transactions(t *testing.T) {
	s := loadFacade(t)
	s02, _ := s.view("S-02")
	ref := geom.Reference{ElementID: "W-101", Solid: 0, Face: 1}
	req := document.AnnotationRequest{ViewID: "S-02", ElementID: "W-101", Ref: ref, Anchor: mathutil.Vec3{0.45, 0, 1.5}}

	_, err := s.CreateAnnotation(req)
	assert.Equal(t, document.KindTransaction, document.KindOf(err), "no open transaction")

	tx, err := s.Begin(s02, "place")
	require.NoError(t, err)
	_, err = s.Begin(s02, "again")
	assert.Error(t, err)

	h, err := s.CreateAnnotation(req)
	require.NoError(t, err)
	require.NoError(t, s.ApplyStyle(h, document.Style{LineWeight: 3, LeaderScale: 1, TextScale: 1}))
	assert.Equal(t, document.KindStyle, document.KindOf(s.ApplyStyle(h, document.Style{LineWeight: 40})))
	require.NoError(t, tx.Rollback())
	assert.Empty(t, s.Annotations())

	tx, err = s.Begin(s02, "place")
	require.NoError(t, err)
	h, err = s.CreateAnnotation(req)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.Len(t, s.Annotations(), 1)
	assert.Equal(t, h, s.Annotations()[0].ID)
	assert.Equal(t, "W-101:0:1", s.Annotations()[0].Ref)
}

func TestCreateAnnotation_RejectsUnresolvedReference(t *testing.T) {
	s := loadFacade(t)
	s02, _ := s.view("S-02")
	tx, err := s.Begin(s02, "place")
	require.NoError(t, err)
	defer tx.Rollback()

	for _, ref := range []geom.Reference{
		{ElementID: "W-103", Solid: 0, Face: 0}, // hidden in S-02
		{ElementID: "W-102", Solid: 0, Face: 5}, // unreferenced face
		{ElementID: "W-101", Solid: 3, Face: 0},
		{ElementID: "nope", Solid: 0, Face: 0},
	} {
		_, err := s.CreateAnnotation(document.AnnotationRequest{ViewID: "S-02", ElementID: ref.ElementID, Ref: ref})
		assert.Equal(t, document.KindReference, document.KindOf(err), ref.String())
	}
}

func TestSave_RoundTrip(t *testing.T) {
	s := loadFacade(t)
	s02, _ := s.view("S-02")
	tx, err := s.Begin(s02, "place")
	require.NoError(t, err)
	_, err = s.CreateAnnotation(document.AnnotationRequest{
		ViewID: "S-02", ElementID: "C-1",
		Ref:       geom.Reference{ElementID: "C-1", Solid: 0, Face: 0},
		Anchor:    mathutil.Vec3{2, 3.15, 1.5},
		HasLeader: true,
		Leader:    document.Leader{Bend: mathutil.Vec3{2, 6.15, 2.5}, End: mathutil.Vec3{2, 10.15, 2.5}},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	out := filepath.Join(t.TempDir(), "out", "facade.yaml")
	require.NoError(t, Save(out, s))

	again, err := Load(out)
	require.NoError(t, err)
	require.Len(t, again.Annotations(), 1)
	a := again.Annotations()[0]
	require.NotNil(t, a.End)
	assert.Equal(t, mathutil.Vec3{2, 10.15, 2.5}, *a.End)
	assert.Len(t, again.Views(), 4)
}
