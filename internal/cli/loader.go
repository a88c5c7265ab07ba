package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/kindseq/internal/compiler"
	"github.com/roach88/kindseq/internal/ir"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeCompileFailed = "E008" // CUE value is not a program
	ErrCodeDatabase      = "E009" // Database open or query error
	ErrCodeEvalFailed    = "E010" // Pipeline could not be evaluated
)

// LoadError is a spec loading failure with its CLI error code.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadResult is a loaded and validated program.
type LoadResult struct {
	Program   *ir.Program
	FileCount int
	Invalid   []compiler.ValidationError // non-empty when the program is unusable
}

// LoadSpecs builds, compiles and validates the CUE program in dir. names
// checks predicate, mapper and folder names and may be nil.
//
// A returned error means there is no program at all; a program that
// compiles but fails validation comes back with Invalid set.
func LoadSpecs(dir string, names compiler.Names) (*LoadResult, error) {
	value, files, err := compiler.BuildDir(dir)
	if err != nil {
		return nil, convertLoadError(dir, err)
	}

	prog, err := compiler.CompileProgram(value)
	if err != nil {
		return nil, convertLoadError(dir, &compiler.LoadError{Dir: dir, Stage: compiler.StageCompile, Err: err})
	}

	return &LoadResult{
		Program:   prog,
		FileCount: files,
		Invalid:   compiler.Validate(prog, names),
	}, nil
}

// convertLoadError maps a compiler load stage to a CLI error code.
func convertLoadError(dir string, err error) *LoadError {
	var lerr *compiler.LoadError
	if !errors.As(err, &lerr) {
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
	}

	switch lerr.Stage {
	case compiler.StageScan:
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not usable: %s: %v", dir, lerr.Err), Err: err}
	case compiler.StageNoFiles:
		return &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir), Err: err}
	case compiler.StageLoad:
		return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", lerr.Err), Err: err}
	case compiler.StageBuild:
		return &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", lerr.Err), Err: err}
	case compiler.StageCompile:
		return &LoadError{Code: ErrCodeCompileFailed, Message: lerr.Err.Error(), Err: err}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
}

// loadFailure reports err through the formatter and returns the command
// error. Loading failures are command errors (exit code 2).
func loadFailure(f *OutputFormatter, err error) error {
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		lerr = &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
	}
	_ = f.Error(lerr.Code, lerr.Message, nil)
	return NewExitError(ExitCommandError, lerr.Error())
}
