// Package placement resolves an annotatable face for one element in one view
// by folding over an ordered chain of approaches.
package placement

import (
	"github.com/pkg/errors"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/mathutil"
)

// Status tags an approach result.
type Status int

const (
	NotApplicable Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "not applicable"
	}
}

// Acquired is a face reference plus the point to anchor the marker at.
type Acquired struct {
	Ref    geom.Reference
	Anchor mathutil.Vec3
}

// Result is what one approach reports.
type Result struct {
	Status   Status
	Acquired Acquired
	Reason   string
}

// Success wraps an acquired face.
func Success(a Acquired) Result {
	return Result{Status: Succeeded, Acquired: a}
}

// Skip reports that the approach does not apply to the target.
func Skip(reason string) Result {
	return Result{Status: NotApplicable, Reason: reason}
}

// Fail reports that the approach applied but could not produce a face.
func Fail(reason string) Result {
	return Result{Status: Failed, Reason: reason}
}

// Failure reasons of an exhausted chain.
var (
	ErrNoApproach       = errors.New("no approach attempted")
	ErrCreationRejected = errors.New("approach attempted but annotation creation rejected the reference")
	ErrNoFace           = errors.New("approach attempted but no face was acquired")
)

// Target is one (element, view) pair.
type Target struct {
	Doc     document.Document
	Element document.Element
	View    document.View
}

// Geometry fetches the element's geometry with the options the core uses.
func (t Target) Geometry() (*geom.Geometry, error) {
	g, err := t.Doc.Geometry(t.Element, document.OptionsFor(t.View))
	if err != nil {
		if document.KindOf(err) == document.KindUnknown {
			err = document.Wrap(document.KindGeometry, "geometry", err)
		}
		return nil, err
	}
	return g, nil
}
