package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced campaign, character, map, session or
	// join record is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the requester is not the owning subject.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument means a malformed or missing required field was
	// detected before any mutation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is reserved for future unique-constraint violations.
	ErrConflict = errors.New("conflict")
)

// StepError reports that a step of a multi-step sequence failed after an
// earlier step already committed. The engine does not roll back the
// completed prefix; the step name gives the caller enough context to decide
// whether a retry is safe (each step is individually idempotent).
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError wraps err with the name of the failed step.
func NewStepError(step string, err error) *StepError {
	return &StepError{Step: step, Err: err}
}
