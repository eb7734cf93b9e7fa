// Package scene is a file-backed, in-memory implementation of the host
// document: views, element instances with simple solid geometry, and the
// elevation markers placed in them.
package scene

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/mathutil"
)

// Scene implements document.Document.
type Scene struct {
	name        string
	activeView  string
	views       []document.View
	viewDefs    map[string]ViewDef
	elements    []document.Element
	elementDefs map[string]ElementDef
	annotations []Annotation

	prepared map[string]viewState
	tx       *transaction
}

type viewState struct {
	detail          document.DetailLevel
	categoryVisible bool
}

var detailRank = map[document.DetailLevel]int{
	document.DetailCoarse: 0,
	document.DetailMedium: 1,
	document.DetailFine:   2,
}

// New builds a scene from its file form.
func New(f File) (*Scene, error) {
	s := &Scene{
		name:        f.Name,
		activeView:  f.ActiveView,
		viewDefs:    make(map[string]ViewDef, len(f.Views)),
		elementDefs: make(map[string]ElementDef, len(f.Elements)),
		annotations: append([]Annotation(nil), f.Annotations...),
		prepared:    make(map[string]viewState),
	}

	for _, vd := range f.Views {
		if vd.ID == "" {
			return nil, errors.New("scene: view without id")
		}
		if _, dup := s.viewDefs[vd.ID]; dup {
			return nil, errors.Errorf("scene: duplicate view %q", vd.ID)
		}
		if vd.Direction.IsZero() || vd.Up.IsZero() {
			return nil, errors.Errorf("scene: view %q needs direction and up", vd.ID)
		}
		if vd.Up.Cross(vd.Direction).IsZero() {
			return nil, errors.Errorf("scene: view %q has up parallel to its direction", vd.ID)
		}
		if vd.DetailLevel == "" {
			vd.DetailLevel = document.DetailMedium
		}
		if _, ok := detailRank[vd.DetailLevel]; !ok {
			return nil, errors.Errorf("scene: view %q has unknown detail level %q", vd.ID, vd.DetailLevel)
		}
		printable := true
		if vd.Printable != nil {
			printable = *vd.Printable
		}
		s.viewDefs[vd.ID] = vd
		s.views = append(s.views, document.View{
			ID:          vd.ID,
			Name:        vd.Name,
			Kind:        vd.Kind,
			IsTemplate:  vd.Template,
			Printable:   printable,
			Direction:   vd.Direction.Normalize(),
			Up:          vd.Up.Normalize(),
			DetailLevel: vd.DetailLevel,
		})
	}

	for _, ed := range f.Elements {
		if ed.ID == "" {
			return nil, errors.New("scene: element without id")
		}
		if _, dup := s.elementDefs[ed.ID]; dup {
			return nil, errors.Errorf("scene: duplicate element %q", ed.ID)
		}
		for i, sd := range ed.Solids {
			if err := sd.validate(); err != nil {
				return nil, errors.Wrapf(err, "scene: element %q solid %d", ed.ID, i)
			}
		}
		s.elementDefs[ed.ID] = ed
		s.elements = append(s.elements, document.Element{
			ID:        ed.ID,
			Name:      ed.Name,
			Family:    document.FamilyKey{Family: ed.Family, Type: ed.Type},
			Transform: mathutil.FromEuler(ed.Rotation[0], ed.Rotation[1], ed.Rotation[2], ed.Position),
		})
	}

	if s.activeView != "" {
		if _, ok := s.viewDefs[s.activeView]; !ok {
			return nil, errors.Errorf("scene: active view %q does not exist", s.activeView)
		}
	}
	return s, nil
}

func (sd SolidDef) validate() error {
	if (sd.Box == nil) == (sd.Cylinder == nil) {
		return errors.New("must be exactly one of box or cylinder")
	}
	if b := sd.Box; b != nil {
		for axis := 0; axis < 3; axis++ {
			if b.Max[axis] <= b.Min[axis] {
				return errors.Errorf("box max %v must exceed min %v on every axis", b.Max, b.Min)
			}
		}
	}
	if c := sd.Cylinder; c != nil && (c.Radius <= 0 || c.Height <= 0) {
		return errors.Errorf("cylinder radius %g and height %g must be positive", c.Radius, c.Height)
	}
	return nil
}

// Name returns the scene name.
func (s *Scene) Name() string { return s.name }

// Elements returns all element instances in file order.
func (s *Scene) Elements() []document.Element {
	return append([]document.Element(nil), s.elements...)
}

// Annotations returns the committed markers.
func (s *Scene) Annotations() []Annotation {
	return append([]Annotation(nil), s.annotations...)
}

// ViewPrepared reports the detail level and annotation category visibility a
// view was prepared with.
func (s *Scene) ViewPrepared(id string) (document.DetailLevel, bool, bool) {
	st, ok := s.prepared[id]
	return st.detail, st.categoryVisible, ok
}

func (s *Scene) ActiveView() (document.View, bool) {
	if s.activeView == "" {
		return document.View{}, false
	}
	return s.view(s.activeView)
}

func (s *Scene) Views() []document.View {
	return append([]document.View(nil), s.views...)
}

func (s *Scene) view(id string) (document.View, bool) {
	for _, v := range s.views {
		if v.ID == id {
			return v, true
		}
	}
	return document.View{}, false
}

func (s *Scene) Element(id string) (document.Element, bool) {
	for _, e := range s.elements {
		if e.ID == id {
			return e, true
		}
	}
	return document.Element{}, false
}

// Geometry builds the element's solids in world space. Elements hidden in
// the view, or coarser than their minimum detail level, have no geometry.
func (s *Scene) Geometry(el document.Element, opts document.GeometryOptions) (*geom.Geometry, error) {
	ed, ok := s.elementDefs[el.ID]
	if !ok {
		return nil, document.Errorf(document.KindGeometry, "geometry", "unknown element %q", el.ID)
	}
	vd, ok := s.viewDefs[opts.View.ID]
	if !ok {
		return nil, document.Errorf(document.KindGeometry, "geometry", "unknown view %q", opts.View.ID)
	}
	if !opts.IncludeNonVisible {
		for _, id := range vd.Hidden {
			if id == el.ID {
				return nil, nil
			}
		}
	}
	level := opts.DetailLevel
	if level == "" {
		level = s.detailOf(vd)
	}
	if ed.MinDetail != "" && detailRank[level] < detailRank[ed.MinDetail] {
		return nil, nil
	}

	g := &geom.Geometry{}
	for i, sd := range ed.Solids {
		var solid geom.Solid
		switch {
		case sd.Box != nil:
			solid = geom.Box(sd.Box.Min, sd.Box.Max, el.Transform)
		case sd.Cylinder != nil:
			solid = geom.CylinderSolid(sd.Cylinder.Base, sd.Cylinder.Radius, sd.Cylinder.Height, el.Transform)
		}
		if opts.ComputeReferences {
			skip := make(map[int]bool, len(sd.Unreferenced))
			for _, f := range sd.Unreferenced {
				skip[f] = true
			}
			solid.AssignReferences(el.ID, i, skip)
		}
		g.Solids = append(g.Solids, solid)
	}
	return g, nil
}

func (s *Scene) detailOf(vd ViewDef) document.DetailLevel {
	if st, ok := s.prepared[vd.ID]; ok {
		return st.detail
	}
	return vd.DetailLevel
}

// PrepareView forces fine detail and unhides the annotation category.
func (s *Scene) PrepareView(v document.View) error {
	vd, ok := s.viewDefs[v.ID]
	if !ok {
		return document.Errorf(document.KindView, "prepare", "unknown view %q", v.ID)
	}
	if vd.Locked {
		return document.Errorf(document.KindView, "prepare", "view %q is controlled by a view template", v.ID)
	}
	s.prepared[v.ID] = viewState{detail: document.DetailFine, categoryVisible: true}
	return nil
}

type transaction struct {
	scene  *Scene
	viewID string
	name   string
	staged []Annotation
	done   bool
}

func (s *Scene) Begin(v document.View, name string) (document.Transaction, error) {
	if s.tx != nil {
		return nil, document.Errorf(document.KindTransaction, "begin", "transaction %q is still open", s.tx.name)
	}
	if _, ok := s.viewDefs[v.ID]; !ok {
		return nil, document.Errorf(document.KindTransaction, "begin", "unknown view %q", v.ID)
	}
	s.tx = &transaction{scene: s, viewID: v.ID, name: name}
	return s.tx, nil
}

func (t *transaction) Commit() error {
	if t.done {
		return document.Errorf(document.KindTransaction, "commit", "transaction %q already closed", t.name)
	}
	t.done = true
	t.scene.annotations = append(t.scene.annotations, t.staged...)
	t.scene.tx = nil
	return nil
}

func (t *transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.staged = nil
	t.scene.tx = nil
	return nil
}

// CreateAnnotation stages a marker in the open transaction. The reference
// must resolve to a referenceable face of the element in the target view.
func (s *Scene) CreateAnnotation(req document.AnnotationRequest) (document.Handle, error) {
	if s.tx == nil || s.tx.viewID != req.ViewID {
		return "", document.Errorf(document.KindTransaction, "create", "no open transaction for view %q", req.ViewID)
	}
	v, ok := s.view(req.ViewID)
	if !ok {
		return "", document.Errorf(document.KindCreation, "create", "unknown view %q", req.ViewID)
	}
	el, ok := s.Element(req.Ref.ElementID)
	if !ok {
		return "", document.Errorf(document.KindReference, "create", "reference %s names an unknown element", req.Ref)
	}
	g, err := s.Geometry(el, document.GeometryOptions{View: v, ComputeReferences: true})
	if err != nil {
		return "", err
	}
	if _, ok := g.Lookup(req.Ref); !ok {
		return "", document.Errorf(document.KindReference, "create", "reference %s does not resolve in view %q", req.Ref, v.ID)
	}

	a := Annotation{
		ID:        document.Handle(uuid.NewString()),
		ViewID:    req.ViewID,
		ElementID: req.ElementID,
		Ref:       req.Ref.String(),
		Anchor:    req.Anchor,
	}
	if req.HasLeader {
		bend, end := req.Leader.Bend, req.Leader.End
		a.Bend, a.End = &bend, &end
	}
	s.tx.staged = append(s.tx.staged, a)
	return a.ID, nil
}

// ApplyStyle sets cosmetic overrides on a staged or committed marker.
func (s *Scene) ApplyStyle(h document.Handle, st document.Style) error {
	if st.LineWeight < 0 || st.LineWeight > 16 {
		return document.Errorf(document.KindStyle, "style", "line weight %d outside 0..16", st.LineWeight)
	}
	if st.LeaderScale < 0 || st.TextScale < 0 {
		return document.Errorf(document.KindStyle, "style", "negative scale")
	}
	if s.tx != nil {
		for i := range s.tx.staged {
			if s.tx.staged[i].ID == h {
				s.tx.staged[i].Style = st
				return nil
			}
		}
	}
	for i := range s.annotations {
		if s.annotations[i].ID == h {
			s.annotations[i].Style = st
			return nil
		}
	}
	return document.Wrap(document.KindStyle, "style", errors.Errorf("unknown annotation %s", h))
}

// File returns the scene in its file form, including placed markers.
func (s *Scene) File() File {
	f := File{Name: s.name, ActiveView: s.activeView, Annotations: s.Annotations()}
	for _, v := range s.views {
		f.Views = append(f.Views, s.viewDefs[v.ID])
	}
	for _, e := range s.elements {
		f.Elements = append(f.Elements, s.elementDefs[e.ID])
	}
	return f
}
