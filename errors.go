package acceptor

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code 2
// Examples include configuration errors, a missing test list file, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// ExecutionFailureError represents a failed engine invocation (exit code 1).
// The engine's output is opaque to this layer, so the message stays coarse.
type ExecutionFailureError struct {
	Message string
}

func (e *ExecutionFailureError) Error() string {
	return e.Message
}

// NewExecutionFailureError creates a new ExecutionFailureError
func NewExecutionFailureError(message string) *ExecutionFailureError {
	return &ExecutionFailureError{Message: message}
}

// IsExecutionFailureError checks if the error is or wraps an ExecutionFailureError
func IsExecutionFailureError(err error) bool {
	var execErr *ExecutionFailureError
	return err != nil && errors.As(err, &execErr)
}
