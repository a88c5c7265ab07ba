package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a failure to evaluate a pipeline that is not a
// contract violation of the pipeline itself: the program or the engine
// configuration is at fault.
//
// Contract violations (OUT_OF_BOUNDS, EMPTY_SEQUENCE, ...) are outcomes and
// are reported through Value instead.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Pipeline names the affected pipeline, if any.
	Pipeline string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownPipeline indicates no pipeline with the requested name.
	ErrCodeUnknownPipeline RuntimeErrorCode = "UNKNOWN_PIPELINE"

	// ErrCodeUnresolvedRef indicates a kind or sequence name that does not resolve.
	ErrCodeUnresolvedRef RuntimeErrorCode = "UNRESOLVED_REFERENCE"

	// ErrCodeUnknownName indicates a predicate, mapper or folder the registry lacks.
	ErrCodeUnknownName RuntimeErrorCode = "UNKNOWN_NAME"

	// ErrCodeInvalidStep indicates a step, terminal or input with a bad op,
	// bad arguments, or an atom where a sequence is required.
	ErrCodeInvalidStep RuntimeErrorCode = "INVALID_STEP"

	// ErrCodeNoStore indicates an operation that needs a persistent store.
	ErrCodeNoStore RuntimeErrorCode = "NO_STORE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Pipeline != "" {
		msg = fmt.Sprintf("%s (pipeline=%s)", msg, e.Pipeline)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError returns true if err is a RuntimeError with the given code.
// Uses errors.As to handle wrapped errors.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
