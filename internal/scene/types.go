package scene

import (
	"elevation-marker/internal/document"
	"elevation-marker/internal/mathutil"
)

// File is the on-disk YAML schema of a scene.
type File struct {
	Name        string       `yaml:"name"`
	ActiveView  string       `yaml:"active_view,omitempty"`
	Views       []ViewDef    `yaml:"views"`
	Elements    []ElementDef `yaml:"elements"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// ViewDef describes one view.
type ViewDef struct {
	ID          string               `yaml:"id"`
	Name        string               `yaml:"name"`
	Kind        document.ViewKind    `yaml:"kind"`
	Template    bool                 `yaml:"template,omitempty"`
	Printable   *bool                `yaml:"printable,omitempty"`
	Direction   mathutil.Vec3        `yaml:"direction"`
	Up          mathutil.Vec3        `yaml:"up"`
	DetailLevel document.DetailLevel `yaml:"detail_level,omitempty"`
	// Locked views have their detail level driven by a view template and
	// refuse preparation.
	Locked bool `yaml:"locked,omitempty"`
	// Hidden lists elements that produce no geometry in this view.
	Hidden []string `yaml:"hidden,omitempty"`
}

// ElementDef describes one element instance.
type ElementDef struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name,omitempty"`
	Family   string        `yaml:"family"`
	Type     string        `yaml:"type,omitempty"`
	Position mathutil.Vec3 `yaml:"position"`
	// Rotation is Euler XYZ in degrees, applied as Rz·Ry·Rx.
	Rotation mathutil.Vec3 `yaml:"rotation,omitempty"`
	// MinDetail is the coarsest detail level at which the element has geometry.
	MinDetail document.DetailLevel `yaml:"min_detail,omitempty"`
	Solids    []SolidDef           `yaml:"solids"`
}

// SolidDef is one solid in the element's local frame. Exactly one of Box or
// Cylinder is set.
type SolidDef struct {
	Box          *BoxDef      `yaml:"box,omitempty"`
	Cylinder     *CylinderDef `yaml:"cylinder,omitempty"`
	Unreferenced []int        `yaml:"unreferenced,omitempty"`
}

type BoxDef struct {
	Min mathutil.Vec3 `yaml:"min"`
	Max mathutil.Vec3 `yaml:"max"`
}

type CylinderDef struct {
	Base   mathutil.Vec3 `yaml:"base"`
	Radius float64       `yaml:"radius"`
	Height float64       `yaml:"height"`
}

// Annotation is a placed elevation marker.
type Annotation struct {
	ID        document.Handle `yaml:"id"`
	ViewID    string          `yaml:"view"`
	ElementID string          `yaml:"element"`
	Ref       string          `yaml:"ref"`
	Anchor    mathutil.Vec3   `yaml:"anchor"`
	Bend      *mathutil.Vec3  `yaml:"bend,omitempty"`
	End       *mathutil.Vec3  `yaml:"end,omitempty"`
	Style     document.Style  `yaml:"style,omitempty"`
}
