// Package errs defines the typed error kinds shared by every domain
// operation. Callers branch on the kind; the HTTP layer translates kinds
// into status codes.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindExpired
	KindNotAuthorized
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	case KindNotAuthorized:
		return "not_authorized"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error carries a kind alongside the message so operations stay
// independently distinguishable to callers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return newError(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(KindConflict, format, args...)
}

func Expired(format string, args ...interface{}) error {
	return newError(KindExpired, format, args...)
}

func NotAuthorized(format string, args ...interface{}) error {
	return newError(KindNotAuthorized, format, args...)
}

// Dependency wraps a failure of the external store or another collaborator.
func Dependency(err error, format string, args ...interface{}) error {
	e := newError(KindDependency, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind carried by err, or zero if err is untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

func IsValidation(err error) bool    { return IsKind(err, KindValidation) }
func IsNotFound(err error) bool      { return IsKind(err, KindNotFound) }
func IsConflict(err error) bool      { return IsKind(err, KindConflict) }
func IsExpired(err error) bool       { return IsKind(err, KindExpired) }
func IsNotAuthorized(err error) bool { return IsKind(err, KindNotAuthorized) }
func IsDependency(err error) bool    { return IsKind(err, KindDependency) }
