// Package apperr defines the error kinds shared by every domain package.
// Handlers translate a kind into an HTTP status; nothing retries automatically.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindTransient  Kind = "transient"
)

// Error carries a human-readable message tagged with a Kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so sentinels declared in domain
// packages compare equal to the kind sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Message == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
	ErrTransient  = &Error{Kind: KindTransient}
)

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Transient(format string, args ...interface{}) *Error {
	return &Error{Kind: KindTransient, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err is not one of ours.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
