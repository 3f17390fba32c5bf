package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinels for the three failure classes surfaced by the repositories. Every concrete
// error type below matches exactly one of them under errors.Is.
var (
	ErrValidation       = stderrors.New("validation failed")
	ErrNotFound         = stderrors.New("not found")
	ErrStoreUnavailable = stderrors.New("store unavailable")
)

// ValidationError reports caller input that was rejected before reaching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a record that does not exist for the calling owner. A record
// owned by someone else is reported the same way.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StoreUnavailableError wraps a transport or backend failure.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

func (e *StoreUnavailableError) Is(target error) bool { return target == ErrStoreUnavailable }

// Validation builds a *ValidationError.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a *NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Unavailable wraps err as a *StoreUnavailableError. A nil err yields nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

func IsValidation(err error) bool { return stderrors.Is(err, ErrValidation) }

func IsNotFound(err error) bool { return stderrors.Is(err, ErrNotFound) }

func IsStoreUnavailable(err error) bool { return stderrors.Is(err, ErrStoreUnavailable) }
