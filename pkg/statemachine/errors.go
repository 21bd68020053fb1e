package statemachine

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrValidation             = errors.New("state machine validation failed")
	ErrPermissionDenied       = errors.New("permission denied")

	ErrInvalidDefinition   = errors.New("invalid transition definition: from and to states are required")
	ErrDuplicateTransition = errors.New("transition already registered")
	ErrInvalidStateField   = errors.New("invalid state field: getter and setter are required")
)

// InvalidStateTransitionError is returned when no rule exists for the
// requested pair or the target equals the current state.
type InvalidStateTransitionError struct {
	From   State
	To     State
	Reason string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from '%s' to '%s': %s", e.From, e.To, e.Reason)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// ValidationError is returned when a transition's validator rejects it.
type ValidationError struct {
	From   State
	To     State
	Reason string
	Err    error
}

func newValidationError(from, to State, err error) *ValidationError {
	return &ValidationError{From: from, To: to, Reason: err.Error(), Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for transition '%s' -> '%s': %s", e.From, e.To, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PermissionDeniedError is returned when the caller lacks the permission or
// role a transition requires.
type PermissionDeniedError struct {
	From       State
	To         State
	Permission string
	Role       string
	Reason     string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied for transition '%s' -> '%s': %s", e.From, e.To, e.Reason)
}

func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func IsInvalidTransition(err error) bool {
	var e *InvalidStateTransitionError
	return errors.As(err, &e)
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsPermissionDenied(err error) bool {
	var e *PermissionDeniedError
	return errors.As(err, &e)
}

// HTTPStatus maps engine errors to the status an API layer should answer with.
// Errors outside the taxonomy, including handler failures, map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsPermissionDenied(err):
		return http.StatusForbidden
	case IsInvalidTransition(err), IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
