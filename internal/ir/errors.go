package ir

import (
	"errors"
	"fmt"
)

// ContractError represents a violated operation contract.
//
// Contract errors include:
//   - Out-of-bounds access: at/order index outside the sequence
//   - Empty sequence: head/tail/pop on an empty sequence
//   - Non-terminating generator: arithmetic step that never reaches end
//   - Mask length mismatch: mask does not cover exactly the filtered sequence
//   - Mixed modes: transform results mixing resolved and deferred forms
//   - Length limit: a generator asked for more positions than it materializes
//
// Every violation is deterministic; retrying the same call fails the same way.
type ContractError struct {
	// Code identifies the error category.
	Code ContractErrorCode

	// Op is the operation that rejected its input (e.g. "at", "take").
	Op string

	// Message is a human-readable description.
	Message string
}

// ContractErrorCode categorizes contract errors.
type ContractErrorCode string

const (
	// ErrCodeOutOfBounds indicates an index outside [0, size).
	ErrCodeOutOfBounds ContractErrorCode = "OUT_OF_BOUNDS"

	// ErrCodeEmptySequence indicates head/tail/pop on an empty sequence.
	ErrCodeEmptySequence ContractErrorCode = "EMPTY_SEQUENCE"

	// ErrCodeNonTerminating indicates an arithmetic generator that never reaches end.
	ErrCodeNonTerminating ContractErrorCode = "NON_TERMINATING"

	// ErrCodeNegativeCount indicates a repetition count below zero.
	ErrCodeNegativeCount ContractErrorCode = "NEGATIVE_COUNT"

	// ErrCodeMaskLength indicates a mask whose length differs from the sequence size.
	ErrCodeMaskLength ContractErrorCode = "MASK_LENGTH"

	// ErrCodeMixedModes indicates transform results mixing Resolved and Deferred.
	ErrCodeMixedModes ContractErrorCode = "MIXED_MODES"

	// ErrCodeNotASequence indicates a sequence operation applied to an atom.
	ErrCodeNotASequence ContractErrorCode = "NOT_A_SEQUENCE"

	// ErrCodeLengthLimit indicates an index generator asked for more than
	// index.MaxLen positions.
	ErrCodeLengthLimit ContractErrorCode = "LENGTH_LIMIT"
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewContractError creates a ContractError with a formatted message.
func NewContractError(code ContractErrorCode, op, format string, args ...any) *ContractError {
	return &ContractError{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsContractError reports whether err (or anything it wraps) is a
// ContractError with the given code.
func IsContractError(err error, code ContractErrorCode) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// ErrorCode returns the contract code carried by err, or "" when err is not
// a contract violation.
func ErrorCode(err error) ContractErrorCode {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
