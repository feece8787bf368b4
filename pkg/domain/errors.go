package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAttributesNotFound is returned by an attribute store when no document exists for a key.
var ErrAttributesNotFound = errors.New("attributes not found")

// ErrInvalidContext is the sentinel matched by InvalidContextError.
var ErrInvalidContext = errors.New("invalid conversation context")

// ErrNoEligibleHandler is the sentinel matched by NoEligibleHandlerError.
var ErrNoEligibleHandler = errors.New("no eligible handler")

// ErrHandlerPanic wraps a panic recovered from an action handler.
var ErrHandlerPanic = errors.New("handler panicked")

// InvalidContextError is returned when the attribute store receives something that is not
// a usable conversation context (nil, a typed nil, or a context without storage).
type InvalidContextError struct {
	Value  any
	Reason string
}

func (e *InvalidContextError) Error() string {
	msg := fmt.Sprintf("argument should be a conversation context but got %#v", e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidContextError) Is(target error) bool {
	return target == ErrInvalidContext
}

// NoEligibleHandlerError is returned when an action has no variant for the current state
// and no default variant.
type NoEligibleHandlerError struct {
	Action string
	State  State
}

func (e *NoEligibleHandlerError) Error() string {
	return fmt.Sprintf("action %q has no handler for state %q and no default", e.Action, e.State)
}

func (e *NoEligibleHandlerError) Is(target error) bool {
	return target == ErrNoEligibleHandler
}

// PersistenceOp names the side of a persistence failure.
type PersistenceOp string

const (
	PersistenceRead  PersistenceOp = "read"
	PersistenceWrite PersistenceOp = "write"
)

// PersistenceError wraps a failure of the attributes backend.
// The executor absorbs these: reads degrade to empty attributes, writes are logged.
type PersistenceError struct {
	Op  PersistenceOp
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("attributes %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ValidationError collects registry build problems.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid action registry: " + strings.Join(e.Problems, "; ")
}
