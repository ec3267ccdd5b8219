package core

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across layers.
var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNotFound         = errors.New("not found")
	ErrTransition       = errors.New("status transition not allowed")
)

// ValidationError reports malformed input before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidReferenceError is raised at creation time when a foreign key
// does not resolve to a stored row.
type InvalidReferenceError struct {
	Entity Entity
	ID     ID
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *InvalidReferenceError) Is(target error) bool { return target == ErrInvalidReference }

// Field returns the request field that carried the broken reference.
func (e *InvalidReferenceError) Field() string { return string(e.Entity) + "_id" }

// NotFoundError is raised when the entity being read or updated is absent.
type NotFoundError struct {
	Entity Entity
	ID     ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransitionError is only produced by strict lifecycle machines.
type TransitionError struct {
	Entity Entity
	ID     ID
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %d: cannot move from %q to %q", e.Entity, e.ID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrTransition }

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
