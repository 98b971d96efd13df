package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
	ErrJavaUnavailable = errors.New("java toolchain unavailable")
)

// ErrorKind is a coarse-grained categorization for errors
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindNotFound       ErrorKind = "not_found"
	KindExecution      ErrorKind = "execution"
	KindIO             ErrorKind = "io"
)

// OpError wraps an underlying error with the operation that failed and a kind
type OpError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an OpError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// ValidationError is a user-facing rejection of a request description.
// Message is safe to return to API clients verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
