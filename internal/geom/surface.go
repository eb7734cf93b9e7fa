// Package geom holds the face/solid model the face matcher works on and the
// sampling utility that reduces a face to a representative point and normal.
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"elevation-marker/internal/mathutil"
)

// UVBox is the parametric bounding box of a surface.
type UVBox struct {
	UMin, UMax float64
	VMin, VMax float64
}

// Mid returns the parameter at the center of the box.
func (b UVBox) Mid() (u, v float64) {
	return (b.UMin + b.UMax) / 2, (b.VMin + b.VMax) / 2
}

// Valid reports whether the box is finite and not inverted.
func (b UVBox) Valid() bool {
	for _, f := range []float64{b.UMin, b.UMax, b.VMin, b.VMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return b.UMin <= b.UMax && b.VMin <= b.VMax
}

// Surface is a bounded parametric surface in world space.
type Surface interface {
	Domain() (UVBox, error)
	Evaluate(u, v float64) (mathutil.Vec3, error)
	NormalAt(u, v float64) (mathutil.Vec3, error)
}

// Outliner is implemented by surfaces that can be tessellated into planar
// polygons for previews.
type Outliner interface {
	Outline() [][]mathutil.Vec3
}

// Reference identifies one face of one element. It stays valid for as long as
// the element's geometry is unchanged.
type Reference struct {
	ElementID string `json:"element_id" yaml:"element_id"`
	Solid     int    `json:"solid" yaml:"solid"`
	Face      int    `json:"face" yaml:"face"`
}

// String renders the stable form "<element>:<solid>:<face>".
func (r Reference) String() string {
	return fmt.Sprintf("%s:%d:%d", r.ElementID, r.Solid, r.Face)
}

// ParseReference parses the form produced by Reference.String.
func ParseReference(s string) (Reference, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return Reference{}, errors.Errorf("geom: malformed reference %q", s)
	}
	j := strings.LastIndex(s[:i], ":")
	if j <= 0 {
		return Reference{}, errors.Errorf("geom: malformed reference %q", s)
	}
	solid, err := strconv.Atoi(s[j+1 : i])
	if err != nil {
		return Reference{}, errors.Wrapf(err, "geom: reference %q solid index", s)
	}
	face, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Reference{}, errors.Wrapf(err, "geom: reference %q face index", s)
	}
	return Reference{ElementID: s[:j], Solid: solid, Face: face}, nil
}

// Face is a surface plus an optional reference usable for annotation.
type Face struct {
	Surface Surface
	Ref     *Reference
}

// Referenceable reports whether the face can anchor an annotation.
func (f Face) Referenceable() bool {
	return f.Ref != nil && f.Surface != nil
}

// Solid is a closed body. Volume is signed by the handedness of its
// transform and is zero for sheet or degenerate bodies.
type Solid struct {
	Volume float64
	Faces  []Face
}

// AssignReferences gives every face a reference except those listed in skip.
func (s *Solid) AssignReferences(elementID string, solidIndex int, skip map[int]bool) {
	for i := range s.Faces {
		if skip[i] {
			s.Faces[i].Ref = nil
			continue
		}
		s.Faces[i].Ref = &Reference{ElementID: elementID, Solid: solidIndex, Face: i}
	}
}

// Geometry is an element's solid geometry as seen by one view.
type Geometry struct {
	Solids []Solid
}

// Empty reports whether the geometry has no solid with volume.
func (g *Geometry) Empty() bool {
	if g == nil {
		return true
	}
	for _, s := range g.Solids {
		if math.Abs(s.Volume) > mathutil.Epsilon {
			return false
		}
	}
	return true
}

// Lookup resolves a reference inside g.
func (g *Geometry) Lookup(ref Reference) (Face, bool) {
	if g == nil || ref.Solid < 0 || ref.Solid >= len(g.Solids) {
		return Face{}, false
	}
	faces := g.Solids[ref.Solid].Faces
	if ref.Face < 0 || ref.Face >= len(faces) {
		return Face{}, false
	}
	f := faces[ref.Face]
	if !f.Referenceable() || f.Ref.ElementID != ref.ElementID {
		return Face{}, false
	}
	return f, true
}
