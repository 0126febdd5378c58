package types

import (
	"errors"
	"fmt"
)

// Error kinds shared by the scoring engine. Match with errors.Is.
var (
	// ErrLineageMismatch means a Persona was paired with an ICP it was not derived from.
	ErrLineageMismatch = errors.New("lineage mismatch")
	// ErrInvalidArgument means a caller passed bad pagination, filter or configuration values.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvariantViolation means the engine produced a value outside its contract.
	ErrInvariantViolation = errors.New("invariant violation")
)

// EngineError carries one of the error kinds above together with context.
type EngineError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is this error's kind.
func (e *EngineError) Is(target error) bool {
	return target == e.Kind
}

// LineageMismatch builds an ErrLineageMismatch error.
func LineageMismatch(format string, args ...any) error {
	return &EngineError{Kind: ErrLineageMismatch, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument builds an ErrInvalidArgument error.
func InvalidArgument(format string, args ...any) error {
	return &EngineError{Kind: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentCause builds an ErrInvalidArgument error wrapping cause.
func InvalidArgumentCause(cause error, format string, args ...any) error {
	return &EngineError{Kind: ErrInvalidArgument, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// InvariantViolation builds an ErrInvariantViolation error.
func InvariantViolation(format string, args ...any) error {
	return &EngineError{Kind: ErrInvariantViolation, Message: fmt.Sprintf(format, args...)}
}
