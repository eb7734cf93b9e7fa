package placement

import (
	"math"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/mathutil"
	"elevation-marker/internal/matcher"
)

// Approach acquires a face for a target.
type Approach interface {
	Name() string
	Acquire(t Target) Result
}

// Template is the element and face the user picked.
type Template struct {
	Element document.Element
	Ref     geom.Reference
	Point   mathutil.Vec3
}

// ExactReference reuses the picked face on the template element itself.
type ExactReference struct {
	Template Template
}

func (ExactReference) Name() string { return "exact-reference" }

func (a ExactReference) Acquire(t Target) Result {
	if t.Element.ID != a.Template.Element.ID {
		return Skip("element is not the template")
	}
	return Success(Acquired{Ref: a.Template.Ref, Anchor: a.Template.Point})
}

// TransformMatched runs the face matcher on an instance of the template's
// family/type using the instance's own transform.
type TransformMatched struct {
	Template  Template
	Direction matcher.Direction
	Matcher   matcher.Matcher
	Log       *matcher.Log
}

func (TransformMatched) Name() string { return "transform-matched" }

func (a TransformMatched) Acquire(t Target) Result {
	if t.Element.Family != a.Template.Element.Family {
		return Skip("element is not of the template's family and type")
	}

	subject := matcher.Subject{
		ElementID: t.Element.ID,
		ViewID:    t.View.ID,
		Transform: t.Element.Transform,
	}
	g, err := t.Geometry()
	if err != nil {
		// still leave an audit record for the pair
		a.Matcher.Match(a.Log, subject, a.Direction.Local)
		return Fail(err.Error())
	}
	subject.Geometry = g

	m, out := a.Matcher.Match(a.Log, subject, a.Direction.Local)
	if m == nil {
		return Fail("matcher: " + out.Note)
	}
	return Success(Acquired{Ref: m.Ref, Anchor: m.Sample.Point})
}

// AnyFace accepts the first referenceable face regardless of orientation.
type AnyFace struct{}

func (AnyFace) Name() string { return "any-face" }

func (AnyFace) Acquire(t Target) Result {
	g, err := t.Geometry()
	if err != nil {
		return Fail(err.Error())
	}
	if g.Empty() {
		return Fail("no geometry")
	}
	for _, solid := range g.Solids {
		if math.Abs(solid.Volume) < mathutil.Epsilon {
			continue
		}
		for _, f := range solid.Faces {
			if !f.Referenceable() {
				continue
			}
			s, ok := geom.SampleSurface(f.Surface)
			if !ok {
				continue
			}
			return Success(Acquired{Ref: *f.Ref, Anchor: s.Point})
		}
	}
	return Fail("no referenceable face")
}
