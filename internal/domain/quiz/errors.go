package quiz

import (
	"errors"
	"fmt"
)

// Sentinel kinds for quiz errors. These allow errors.Is from callers.
var (
	ErrEmptyInput    = errors.New("empty input")
	ErrNotRecognized = errors.New("not recognized")
	ErrWrongStep     = errors.New("wrong step")
)

// ValidationError is returned by the submit operations. Kind is one of
// ErrEmptyInput or ErrNotRecognized; Message is the text shown to the user.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Kind)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// StepError reports an operation attempted outside the step that accepts it.
type StepError struct {
	Op   string
	Want Step
	Got  Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: requires step %s, current step is %s", e.Op, e.Want, e.Got)
}

func (e *StepError) Unwrap() error { return ErrWrongStep }

// Error codes exposed to clients.
const (
	CodeEmptyInput    = "empty_input"
	CodeNotRecognized = "not_recognized"
	CodeWrongStep     = "wrong_step"
)

// Code maps a quiz error to its client code, or "" for other errors.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return CodeEmptyInput
	case errors.Is(err, ErrNotRecognized):
		return CodeNotRecognized
	case errors.Is(err, ErrWrongStep):
		return CodeWrongStep
	default:
		return ""
	}
}
