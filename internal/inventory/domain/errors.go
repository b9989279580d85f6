package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every lookup that finds no active row.
var ErrNotFound = errors.New("not found")

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindConflict            ErrorKind = "conflict"
	KindPersistenceConflict ErrorKind = "persistence_conflict"
)

// Error is a business failure. Anything that is not an *Error is unexpected.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf reports invalid input or arithmetic.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports a missing referenced entity. It is a validation failure
// that also matches ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Err: ErrNotFound}
}

// Conflictf reports an operation attempted against an entity in the wrong state.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// PersistenceConflictf reports a storage-level race the caller may retry.
func PersistenceConflictf(cause error, format string, args ...any) error {
	return &Error{Kind: KindPersistenceConflict, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in the chain, or "" for
// unexpected errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsBusiness reports whether err is a validation or conflict failure.
func IsBusiness(err error) bool {
	k := KindOf(err)
	return k == KindValidation || k == KindConflict
}

// IsRetryable reports whether the caller may retry the same request.
func IsRetryable(err error) bool {
	return KindOf(err) == KindPersistenceConflict
}
