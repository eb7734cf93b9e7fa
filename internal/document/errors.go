package document

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies collaborator failures for reporting.
type Kind string

const (
	KindGeometry    Kind = "geometry"
	KindReference   Kind = "reference"
	KindCreation    Kind = "creation"
	KindStyle       Kind = "style"
	KindView        Kind = "view"
	KindTransaction Kind = "transaction"
	KindPanic       Kind = "panic"
	KindUnknown     Kind = "error"
)

// Error is a classified document failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Message returns the error text without the kind prefix.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		if de.Op == "" {
			return de.Err.Error()
		}
		return de.Op + ": " + de.Err.Error()
	}
	return err.Error()
}
