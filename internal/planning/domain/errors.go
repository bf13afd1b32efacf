package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("time conflict")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports a malformed value at construction time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports an insertion that would overlap occupied time.
// The timeline is left unchanged when it is returned.
type ConflictError struct {
	Interval Interval
	With     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval %s conflicts with %s", e.Interval, e.With)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError reports a lookup outside the known set, such as a date
// outside the horizon.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
