package compiler

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/roach88/kindseq/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// Step errors (E201-E204)
	ErrUnknownOp     = "E201" // op not in ir.ValidOps
	ErrMissingArg    = "E202" // required step argument absent
	ErrUnexpectedArg = "E203" // argument the op does not take
	ErrArgType       = "E204" // argument of the wrong shape

	// Reference errors (E205-E206)
	ErrUnknownRef  = "E205" // kind or sequence name not declared
	ErrUnknownName = "E206" // predicate, mapper or folder not registered

	// Terminal errors (E207-E208)
	ErrUnknownTerminal = "E207" // op not in ir.ValidTerminals
	ErrTerminalArg     = "E208" // terminal argument missing or unexpected

	// Declaration errors (E209-E214)
	ErrDuplicateName    = "E209" // name declared as both kind and sequence, or pipeline twice
	ErrInvalidContainer = "E210" // container name not an identifier
	ErrInvalidSize      = "E211" // negative atom size
	ErrSequenceCycle    = "E212" // sequence contains itself
	ErrInputNotSequence = "E213" // pipeline input names an atom
)

// NameClass distinguishes the registries a step or terminal draws from.
type NameClass string

const (
	ClassPredicate NameClass = "predicate"
	ClassMapper    NameClass = "mapper"
	ClassFolder    NameClass = "folder"
)

// Names is the set of predicate, mapper and folder names an evaluator
// understands. CheckName returns nil when name is usable in class.
type Names interface {
	CheckName(class NameClass, name string) error
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// containerPattern matches container names: type_list, tuple, my_box2.
var containerPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validate checks a compiled program. Returns all errors found (does not
// fail-fast), in a stable order.
//
// names may be nil, in which case predicate, mapper and folder names are
// not checked.
func Validate(prog *ir.Program, names Names) []ValidationError {
	errs := []ValidationError{}

	for _, name := range slices.Sorted(maps.Keys(prog.Kinds)) {
		if prog.Kinds[name].Size < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("kind.%s.size", name),
				Message: fmt.Sprintf("size must be >= 0, got %d", prog.Kinds[name].Size),
				Code:    ErrInvalidSize,
			})
		}
	}

	for _, name := range slices.Sorted(maps.Keys(prog.Sequences)) {
		errs = append(errs, validateSequence(prog, prog.Sequences[name])...)
	}

	for _, c := range AnalyzeCycles(prog) {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("sequence.%s", c.Path[0]),
			Message: c.Message,
			Code:    ErrSequenceCycle,
		})
	}

	seen := make(map[string]bool)
	for _, p := range prog.Pipelines {
		if seen[p.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("pipeline.%s", p.Name),
				Message: fmt.Sprintf("duplicate pipeline name %q", p.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[p.Name] = true
		errs = append(errs, validatePipeline(prog, p, names)...)
	}

	return errs
}

func validateSequence(prog *ir.Program, decl ir.SequenceDecl) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("sequence.%s", decl.Name)

	if _, clash := prog.Kinds[decl.Name]; clash {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%q is declared as both a kind and a sequence", decl.Name),
			Code:    ErrDuplicateName,
		})
	}

	if !containerPattern.MatchString(string(decl.Container)) {
		errs = append(errs, ValidationError{
			Field:   field + ".container",
			Message: fmt.Sprintf("invalid container name %q", decl.Container),
			Code:    ErrInvalidContainer,
		})
	}

	for i, ref := range decl.Kinds {
		if !isDeclared(prog, ref) {
			errs = append(errs, unknownRef(fmt.Sprintf("%s.kinds[%d]", field, i), ref))
		}
	}

	return errs
}

func validatePipeline(prog *ir.Program, p ir.PipelineSpec, names Names) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("pipeline.%s", p.Name)

	switch {
	case !isDeclared(prog, p.Input):
		errs = append(errs, unknownRef(field+".input", p.Input))
	case isAtom(prog, p.Input):
		errs = append(errs, ValidationError{
			Field:   field + ".input",
			Message: fmt.Sprintf("input %q is a kind, not a sequence", p.Input),
			Code:    ErrInputNotSequence,
		})
	}

	for i, step := range p.Steps {
		errs = append(errs, validateStep(prog, fmt.Sprintf("%s.steps[%d]", field, i), step, names)...)
	}

	errs = append(errs, validateTerminal(prog, field+".terminal", p.Terminal, names)...)
	return errs
}

func validateStep(prog *ir.Program, field string, step ir.StepSpec, names Names) []ValidationError {
	var errs []ValidationError

	args, ok := ir.ValidOps[step.Op]
	if !ok {
		return []ValidationError{{
			Field:   field + ".op",
			Message: fmt.Sprintf("unknown op %q", step.Op),
			Code:    ErrUnknownOp,
		}}
	}

	declared := make(map[string]bool, len(args))
	for _, arg := range args {
		declared[arg.Name] = true
		argField := fmt.Sprintf("%s.%s", field, arg.Name)

		val, present := step.Args[arg.Name]
		if !present {
			if !arg.Optional {
				errs = append(errs, ValidationError{
					Field:   argField,
					Message: fmt.Sprintf("%s requires argument %q", step.Op, arg.Name),
					Code:    ErrMissingArg,
				})
			}
			continue
		}

		errs = append(errs, validateArg(prog, argField, step.Op, arg, val, names)...)
	}

	for _, name := range slices.Sorted(maps.Keys(step.Args)) {
		if !declared[name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s", field, name),
				Message: fmt.Sprintf("%s does not take argument %q", step.Op, name),
				Code:    ErrUnexpectedArg,
			})
		}
	}

	return errs
}

func validateArg(prog *ir.Program, field, op string, arg ir.OpArg, val any, names Names) []ValidationError {
	typeErr := []ValidationError{{
		Field:   field,
		Message: fmt.Sprintf("expected %s, got %T", arg.Type, val),
		Code:    ErrArgType,
	}}

	switch arg.Type {
	case ir.ArgInt:
		if _, ok := val.(int64); !ok {
			return typeErr
		}
	case ir.ArgIntList:
		if _, ok := val.([]int64); !ok {
			return typeErr
		}
	case ir.ArgRef:
		ref, ok := val.(string)
		if !ok {
			return typeErr
		}
		if !isDeclared(prog, ref) {
			return []ValidationError{unknownRef(field, ref)}
		}
	case ir.ArgRefList:
		refs, ok := val.([]string)
		if !ok {
			return typeErr
		}
		var errs []ValidationError
		for i, ref := range refs {
			if !isDeclared(prog, ref) {
				errs = append(errs, unknownRef(fmt.Sprintf("%s[%d]", field, i), ref))
			}
		}
		return errs
	case ir.ArgName:
		name, ok := val.(string)
		if !ok {
			return typeErr
		}
		return validateName(field, op, name, names)
	}
	return nil
}

// validateName checks the ArgName argument of op. The container of `to`
// is checked syntactically; the rest go through names.
func validateName(field, op, name string, names Names) []ValidationError {
	var class NameClass
	switch op {
	case "to":
		if !containerPattern.MatchString(name) {
			return []ValidationError{{
				Field:   field,
				Message: fmt.Sprintf("invalid container name %q", name),
				Code:    ErrInvalidContainer,
			}}
		}
		return nil
	case "filter":
		class = ClassPredicate
	case "transform":
		class = ClassMapper
	case "fold":
		class = ClassFolder
	}

	if names == nil || class == "" {
		return nil
	}
	if err := names.CheckName(class, name); err != nil {
		return []ValidationError{{
			Field:   field,
			Message: err.Error(),
			Code:    ErrUnknownName,
		}}
	}
	return nil
}

func validateTerminal(prog *ir.Program, field string, term ir.TerminalSpec, names Names) []ValidationError {
	if !ir.ValidTerminals[term.Op] {
		return []ValidationError{{
			Field:   field + ".op",
			Message: fmt.Sprintf("unknown terminal %q", term.Op),
			Code:    ErrUnknownTerminal,
		}}
	}

	switch term.Op {
	case ir.TerminalType, ir.TerminalSize:
		if term.Arg != "" {
			return []ValidationError{{
				Field:   field + ".arg",
				Message: fmt.Sprintf("%s takes no argument", term.Op),
				Code:    ErrTerminalArg,
			}}
		}
	case ir.TerminalCount:
		if term.Arg == "" {
			return []ValidationError{missingTerminalArg(field, term.Op, "a kind")}
		}
		if !isDeclared(prog, term.Arg) {
			return []ValidationError{unknownRef(field+".arg", term.Arg)}
		}
	default:
		if term.Arg == "" {
			return []ValidationError{missingTerminalArg(field, term.Op, "a predicate")}
		}
		if names != nil {
			if err := names.CheckName(ClassPredicate, term.Arg); err != nil {
				return []ValidationError{{
					Field:   field + ".arg",
					Message: err.Error(),
					Code:    ErrUnknownName,
				}}
			}
		}
	}
	return nil
}

func missingTerminalArg(field, op, what string) ValidationError {
	return ValidationError{
		Field:   field + ".arg",
		Message: fmt.Sprintf("%s requires %s", op, what),
		Code:    ErrTerminalArg,
	}
}

func unknownRef(field, ref string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: (&UnknownRefError{Name: ref}).Error(),
		Code:    ErrUnknownRef,
	}
}

func isDeclared(prog *ir.Program, name string) bool {
	if _, ok := prog.Kinds[name]; ok {
		return true
	}
	_, ok := prog.Sequences[name]
	return ok
}

func isAtom(prog *ir.Program, name string) bool {
	_, ok := prog.Kinds[name]
	return ok
}
