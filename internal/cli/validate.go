package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kindseq/internal/compiler"
	"github.com/roach88/kindseq/internal/engine"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Kinds     int                        `json:"kinds"`
	Sequences int                        `json:"sequences"`
	Pipelines int                        `json:"pipelines"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate a CUE program without evaluating it",
		Long: `Validate the kinds, sequences and pipelines declared in a CUE program.

Checks step operations and their arguments, kind and sequence references,
reference cycles, terminals, and the predicate, mapper and folder names
known to the default registry. Nothing is evaluated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadSpecs(specsDir, engine.DefaultRegistry())
	if err != nil {
		return loadFailure(formatter, err)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)

	prog := loaded.Program
	result := ValidationResult{
		Valid:     len(loaded.Invalid) == 0,
		Kinds:     len(prog.Kinds),
		Sequences: len(prog.Sequences),
		Pipelines: len(prog.Pipelines),
		Errors:    loaded.Invalid,
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Program valid (%d kinds, %d sequences, %d pipelines)\n",
		result.Kinds, result.Sequences, result.Pipelines)
	return nil
}

// outputValidationErrors reports every validation error. Validation
// failures exit with code 1.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	return failure
}

// ValidateSpecsDir validates the program in specsDir against the default
// registry. The error is non-nil only when the program cannot be loaded.
func ValidateSpecsDir(specsDir string) ([]compiler.ValidationError, error) {
	loaded, err := LoadSpecs(specsDir, engine.DefaultRegistry())
	if err != nil {
		return nil, err
	}
	return loaded.Invalid, nil
}

// requireValid fails with the first validation error of loaded, if any.
func requireValid(f *OutputFormatter, loaded *LoadResult) error {
	if len(loaded.Invalid) == 0 {
		return nil
	}
	first := loaded.Invalid[0]
	_ = f.Error(first.Code, fmt.Sprintf("invalid program: %s", first.Error()), loaded.Invalid)
	return WrapExitError(ExitCommandError, "invalid program", errors.New(first.Error()))
}
