package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the object or file does not exist.
	ErrNotFound = errors.New("storage: object not found")

	// ErrForbidden indicates the backend denied access.
	ErrForbidden = errors.New("storage: access denied")

	// ErrUnsupported indicates no backend is configured for the location kind.
	ErrUnsupported = errors.New("storage: unsupported location")
)

// Error carries the failed operation and location alongside the cause.
type Error struct {
	Op  string
	URI string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.URI, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, uri string, err error) error {
	return &Error{Op: op, URI: uri, Err: err}
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden reports whether err is, or wraps, ErrForbidden.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
