package batch

import (
	"github.com/pkg/errors"
)

// Input-absence reasons. A batch that fails with one of these made no
// changes to the document.
var (
	ErrNoActiveView   = errors.New("no active view")
	ErrEmptySelection = errors.New("no elements selected")
	ErrUnknownElement = errors.New("selected element not found")
	ErrNoFacePicked   = errors.New("no template face picked")
	ErrNoDirection    = errors.New("no direction chosen")
	ErrNoSectionViews = errors.New("no printable section views")
	ErrCancelled      = errors.New("cancelled")
)

// InputError aborts a batch before any mutation.
type InputError struct {
	Reason error
	Detail string
}

func (e *InputError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Detail
}

func (e *InputError) Unwrap() error { return e.Reason }

func inputErr(reason error, format string, args ...any) error {
	ie := &InputError{Reason: reason}
	if format != "" {
		ie.Detail = errors.Errorf(format, args...).Error()
	}
	return ie
}

// IsInputAbsent reports whether err aborted the batch before it started.
func IsInputAbsent(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
