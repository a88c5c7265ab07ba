package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/kindseq/internal/ir"
)

// CompileProgram parses a CUE value holding kind, sequence and pipeline
// declarations into an ir.Program. Uses the CUE Go API directly.
//
// The value is the top-level struct, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`
//		kind: int: size: 4
//		sequence: S: kinds: ["int", "int"]
//		pipeline: p: { input: "S", steps: [{op: "reverse"}] }
//	`)
//	prog, err := CompileProgram(v)
//
// CompileProgram only checks shape. Names, arguments and reference cycles
// are checked by Validate.
func CompileProgram(v cue.Value) (*ir.Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	prog := &ir.Program{
		Kinds:     make(map[string]ir.Atom),
		Sequences: make(map[string]ir.SequenceDecl),
		Pipelines: []ir.PipelineSpec{},
	}

	if err := parseKinds(v, prog); err != nil {
		return nil, err
	}
	if err := parseSequences(v, prog); err != nil {
		return nil, err
	}
	if err := parsePipelines(v, prog); err != nil {
		return nil, err
	}

	slices.SortFunc(prog.Pipelines, func(a, b ir.PipelineSpec) int {
		return strings.Compare(a.Name, b.Name)
	})
	return prog, nil
}

// parseKinds reads `kind: <name>: size: <n>`.
func parseKinds(v cue.Value, prog *ir.Program) error {
	kindsVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindsVal.Exists() {
		return nil
	}

	iter, err := kindsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		sizeVal := iter.Value().LookupPath(cue.ParsePath("size"))
		if !sizeVal.Exists() {
			return &CompileError{
				Field:   fmt.Sprintf("kind.%s.size", name),
				Message: "size is required",
				Pos:     iter.Value().Pos(),
			}
		}
		size, err := sizeVal.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		prog.Kinds[name] = ir.NewAtom(name, size)
	}

	return nil
}

// parseSequences reads `sequence: <name>: {container, kinds}`.
// container defaults to type_list.
func parseSequences(v cue.Value, prog *ir.Program) error {
	seqsVal := v.LookupPath(cue.ParsePath("sequence"))
	if !seqsVal.Exists() {
		return nil
	}

	iter, err := seqsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		seqVal := iter.Value()

		decl := ir.SequenceDecl{Name: name, Container: ir.TypeList}

		containerVal := seqVal.LookupPath(cue.ParsePath("container"))
		if containerVal.Exists() {
			c, err := containerVal.String()
			if err != nil {
				return formatCUEError(err)
			}
			decl.Container = ir.Container(c)
		}

		kindsVal := seqVal.LookupPath(cue.ParsePath("kinds"))
		if !kindsVal.Exists() {
			return &CompileError{
				Field:   fmt.Sprintf("sequence.%s.kinds", name),
				Message: "kinds is required (use [] for an empty sequence)",
				Pos:     seqVal.Pos(),
			}
		}
		decl.Kinds, err = stringList(kindsVal)
		if err != nil {
			return err
		}

		prog.Sequences[name] = decl
	}

	return nil
}

// parsePipelines reads `pipeline: <name>: {input, steps, terminal}`.
func parsePipelines(v cue.Value, prog *ir.Program) error {
	pipesVal := v.LookupPath(cue.ParsePath("pipeline"))
	if !pipesVal.Exists() {
		return nil
	}

	iter, err := pipesVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		spec, err := parsePipeline(iter.Label(), iter.Value())
		if err != nil {
			return err
		}
		prog.Pipelines = append(prog.Pipelines, spec)
	}

	return nil
}

func parsePipeline(name string, v cue.Value) (ir.PipelineSpec, error) {
	spec := ir.PipelineSpec{
		Name:     name,
		Steps:    []ir.StepSpec{},
		Terminal: ir.TerminalSpec{Op: ir.TerminalType},
	}

	inputVal := v.LookupPath(cue.ParsePath("input"))
	if !inputVal.Exists() {
		return spec, &CompileError{
			Field:   fmt.Sprintf("pipeline.%s.input", name),
			Message: "input is required",
			Pos:     v.Pos(),
		}
	}
	input, err := inputVal.String()
	if err != nil {
		return spec, formatCUEError(err)
	}
	spec.Input = input

	stepsVal := v.LookupPath(cue.ParsePath("steps"))
	if stepsVal.Exists() {
		stepIter, err := stepsVal.List()
		if err != nil {
			return spec, formatCUEError(err)
		}
		for i := 0; stepIter.Next(); i++ {
			step, err := parseStep(fmt.Sprintf("pipeline.%s.steps[%d]", name, i), stepIter.Value())
			if err != nil {
				return spec, err
			}
			spec.Steps = append(spec.Steps, step)
		}
	}

	termVal := v.LookupPath(cue.ParsePath("terminal"))
	if termVal.Exists() {
		opVal := termVal.LookupPath(cue.ParsePath("op"))
		if opVal.Exists() {
			if spec.Terminal.Op, err = opVal.String(); err != nil {
				return spec, formatCUEError(err)
			}
		}
		argVal := termVal.LookupPath(cue.ParsePath("arg"))
		if argVal.Exists() {
			if spec.Terminal.Arg, err = argVal.String(); err != nil {
				return spec, formatCUEError(err)
			}
		}
	}

	return spec, nil
}

// parseStep reads `{op: <name>, <arg>: <value>, ...}`. Arguments of known
// operations are decoded to their declared type; anything else is decoded
// by its CUE kind so Validate can report it.
func parseStep(field string, v cue.Value) (ir.StepSpec, error) {
	step := ir.StepSpec{Args: map[string]any{}}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return step, &CompileError{
			Field:   field + ".op",
			Message: "op is required",
			Pos:     v.Pos(),
		}
	}
	op, err := opVal.String()
	if err != nil {
		return step, formatCUEError(err)
	}
	step.Op = op

	declared := make(map[string]ir.ArgType)
	for _, arg := range ir.ValidOps[op] {
		declared[arg.Name] = arg.Type
	}

	iter, err := v.Fields()
	if err != nil {
		return step, formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Label()
		if label == "op" {
			continue
		}
		argField := fmt.Sprintf("%s.%s", field, label)

		var val any
		if typ, ok := declared[label]; ok {
			val, err = decodeArg(argField, iter.Value(), typ)
		} else {
			val, err = decodeAny(argField, iter.Value())
		}
		if err != nil {
			return step, err
		}
		step.Args[label] = val
	}

	if len(step.Args) == 0 {
		step.Args = nil
	}
	return step, nil
}

func decodeArg(field string, v cue.Value, typ ir.ArgType) (any, error) {
	switch typ {
	case ir.ArgInt:
		n, err := v.Int64()
		if err != nil {
			return nil, argTypeError(field, v, typ)
		}
		return n, nil
	case ir.ArgIntList:
		return intList(field, v)
	case ir.ArgRef, ir.ArgName:
		s, err := v.String()
		if err != nil {
			return nil, argTypeError(field, v, typ)
		}
		return s, nil
	case ir.ArgRefList:
		return stringList(v)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported argument type %q", typ),
			Pos:     v.Pos(),
		}
	}
}

// decodeAny decodes an undeclared argument by its CUE kind.
// Floats are forbidden like everywhere else in the descriptor model.
func decodeAny(field string, v cue.Value) (any, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return n, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil
	case cue.ListKind:
		if ints, err := intList(field, v); err == nil {
			return ints, nil
		}
		return stringList(v)
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   field,
			Message: "float values are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func intList(field string, v cue.Value) ([]int64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, argTypeError(field, v, ir.ArgIntList)
	}
	out := []int64{}
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, argTypeError(field, v, ir.ArgIntList)
		}
		out = append(out, n)
	}
	return out, nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func argTypeError(field string, v cue.Value, typ ir.ArgType) error {
	return &CompileError{
		Field:   field,
		Message: fmt.Sprintf("expected %s, got %v", typ, v.IncompleteKind()),
		Pos:     v.Pos(),
	}
}
