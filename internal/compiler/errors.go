package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// UnknownRefError reports a name that is neither a declared kind nor a
// declared sequence.
type UnknownRefError struct {
	Name string
}

func (e *UnknownRefError) Error() string {
	return fmt.Sprintf("unknown kind or sequence %q", e.Name)
}

// CycleRefError reports a sequence that (transitively) contains itself.
type CycleRefError struct {
	Path []string
}

func (e *CycleRefError) Error() string {
	return fmt.Sprintf("sequence reference cycle: %v", e.Path)
}
