// Package document declares the host-application collaborator: the model
// that owns views, elements, their geometry, and the annotations created in
// them. The placement core only talks to a Document through these types.
package document

import (
	"elevation-marker/internal/geom"
	"elevation-marker/internal/mathutil"
)

// ViewKind classifies a projection view.
type ViewKind string

const (
	ViewSection   ViewKind = "section"
	ViewElevation ViewKind = "elevation"
	ViewPlan      ViewKind = "plan"
	View3D        ViewKind = "3d"
)

// DetailLevel controls how much geometry a view computes.
type DetailLevel string

const (
	DetailCoarse DetailLevel = "coarse"
	DetailMedium DetailLevel = "medium"
	DetailFine   DetailLevel = "fine"
)

// View is a 2D projection of the model.
type View struct {
	ID          string
	Name        string
	Kind        ViewKind
	IsTemplate  bool
	Printable   bool
	Direction   mathutil.Vec3 // points out of the screen, toward the viewer
	Up          mathutil.Vec3
	DetailLevel DetailLevel
}

// Right returns normalize(up × direction), the screen-right direction.
func (v View) Right() mathutil.Vec3 {
	return v.Up.Cross(v.Direction).Normalize()
}

// FamilyKey identifies the family/type grouping of an element. Two elements
// are "alike" when their keys are equal.
type FamilyKey struct {
	Family string
	Type   string
}

func (k FamilyKey) String() string {
	if k.Type == "" {
		return k.Family
	}
	return k.Family + " : " + k.Type
}

// Element is a model element instance.
type Element struct {
	ID        string
	Name      string
	Family    FamilyKey
	Transform mathutil.Transform
}

// GeometryOptions selects the geometry a view sees.
type GeometryOptions struct {
	View              View
	DetailLevel       DetailLevel
	ComputeReferences bool
	IncludeNonVisible bool
}

// OptionsFor returns the geometry options the placement core uses for v:
// fine detail, references computed, visible objects only.
func OptionsFor(v View) GeometryOptions {
	return GeometryOptions{
		View:              v,
		DetailLevel:       DetailFine,
		ComputeReferences: true,
	}
}

// Handle identifies a created annotation.
type Handle string

// Leader holds the auxiliary leader points of an annotation.
type Leader struct {
	Bend mathutil.Vec3
	End  mathutil.Vec3
}

// AnnotationRequest describes one elevation marker to create.
type AnnotationRequest struct {
	ViewID    string
	ElementID string
	Ref       geom.Reference
	Anchor    mathutil.Vec3
	Leader    Leader
	HasLeader bool
}

// Style holds cosmetic overrides applied after creation.
type Style struct {
	LineWeight  int     `json:"line_weight" yaml:"line_weight"`
	LeaderScale float64 `json:"leader_scale" yaml:"leader_scale"`
	TextScale   float64 `json:"text_scale" yaml:"text_scale"`
}

// IsZero reports whether no override is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Transaction is one unit of work against the document.
type Transaction interface {
	Commit() error
	Rollback() error
}

// Document is the host model.
type Document interface {
	// ActiveView returns the view the user is working in, if any.
	ActiveView() (View, bool)
	// Views returns all views in document order.
	Views() []View
	// Element resolves an element by id.
	Element(id string) (Element, bool)
	// Geometry returns the element's solids as computed for opts. A nil
	// geometry with a nil error means the element has nothing to show.
	Geometry(el Element, opts GeometryOptions) (*geom.Geometry, error)
	// PrepareView forces the detail level and unhides the annotation category.
	PrepareView(v View) error
	// Begin opens a transaction scoped to one view.
	Begin(v View, name string) (Transaction, error)
	// CreateAnnotation places a marker; the reference must resolve in the view.
	CreateAnnotation(req AnnotationRequest) (Handle, error)
	// ApplyStyle applies cosmetic overrides to a created marker.
	ApplyStyle(h Handle, s Style) error
}

// SectionViews keeps section views that are neither templates nor
// unprintable, preserving order.
func SectionViews(views []View) []View {
	var out []View
	for _, v := range views {
		if v.Kind != ViewSection || v.IsTemplate || !v.Printable {
			continue
		}
		out = append(out, v)
	}
	return out
}
