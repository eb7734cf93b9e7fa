package placement

import (
	"fmt"

	"github.com/pkg/errors"

	"elevation-marker/internal/document"
	"elevation-marker/internal/matcher"
)

// PlaceFunc creates the annotation for an acquired face.
type PlaceFunc func(a Acquired) (document.Handle, error)

// Attempt is the outcome of running a chain on one target.
type Attempt struct {
	Approach    string // the approach that succeeded
	Handle      document.Handle
	Acquired    Acquired
	Tried       []string // approaches that applied, in order
	Diagnostics []string
	Err         error
}

// Succeeded reports whether a marker was created.
func (a Attempt) Succeeded() bool {
	return a.Err == nil && a.Handle != ""
}

// Chain is an ordered list of approaches; the first success wins.
type Chain []Approach

// TemplateChain is the chain used when the user picked a template face:
// exact reuse, then transform matching, then optionally any face.
func TemplateChain(tpl Template, dir matcher.Direction, m matcher.Matcher, log *matcher.Log, anyFace bool) Chain {
	c := Chain{
		ExactReference{Template: tpl},
		TransformMatched{Template: tpl, Direction: dir, Matcher: m, Log: log},
	}
	if anyFace {
		c = append(c, AnyFace{})
	}
	return c
}

// SimpleChain is used when there is no template or direction.
func SimpleChain() Chain {
	return Chain{AnyFace{}}
}

// Names lists the approach names in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, a := range c {
		names[i] = a.Name()
	}
	return names
}

// Run tries each approach in order. An approach succeeds only when place
// accepts its face; acquisition failures, creation errors and panics become
// diagnostics and the next approach is tried.
func (c Chain) Run(t Target, place PlaceFunc) Attempt {
	var att Attempt
	var rejected error

	for _, a := range c {
		r := acquire(a, t)
		switch r.Status {
		case NotApplicable:
			continue
		case Failed:
			att.Tried = append(att.Tried, a.Name())
			att.Diagnostics = append(att.Diagnostics, fmt.Sprintf("%s: %s", a.Name(), r.Reason))
			continue
		}

		att.Tried = append(att.Tried, a.Name())
		h, err := safePlace(a, place, r.Acquired)
		if err == nil && h == "" {
			err = errors.New("no handle returned")
		}
		if err != nil {
			rejected = err
			att.Diagnostics = append(att.Diagnostics,
				fmt.Sprintf("%s: create at %s: %v", a.Name(), r.Acquired.Ref, err))
			continue
		}
		att.Approach = a.Name()
		att.Handle = h
		att.Acquired = r.Acquired
		return att
	}

	switch {
	case len(att.Tried) == 0:
		att.Err = errors.Wrap(ErrNoApproach, "no template match, no same-family match")
	case rejected != nil:
		att.Err = &rejectionError{last: rejected}
	default:
		att.Err = ErrNoFace
	}
	return att
}

// rejectionError is ErrCreationRejected wrapping the last creation error.
type rejectionError struct {
	last error
}

func (e *rejectionError) Error() string {
	return ErrCreationRejected.Error() + ": " + e.last.Error()
}

func (e *rejectionError) Is(target error) bool { return target == ErrCreationRejected }

func (e *rejectionError) Unwrap() error { return e.last }

func acquire(a Approach, t Target) (r Result) {
	defer func() {
		if p := recover(); p != nil {
			r = Fail(document.Wrap(document.KindPanic, a.Name(), errors.Errorf("%v", p)).Error())
		}
	}()
	return a.Acquire(t)
}

func safePlace(a Approach, place PlaceFunc, acq Acquired) (h document.Handle, err error) {
	defer func() {
		if p := recover(); p != nil {
			h, err = "", document.Wrap(document.KindPanic, a.Name(), errors.Errorf("%v", p))
		}
	}()
	return place(acq)
}
