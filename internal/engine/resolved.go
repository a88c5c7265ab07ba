package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/kindseq/internal/compiler"
	"github.com/roach88/kindseq/internal/ir"
)

// ResolvedStep is a step with every reference expanded.
//
// Args values by ir.ArgType: ArgInt int64, ArgIntList []int64, ArgRef
// ir.Kind, ArgRefList []ir.Kind, ArgName Callable (or a container string
// for "to"). Optional arguments are filled with their defaults.
type ResolvedStep struct {
	Op   string
	Args map[string]any
}

// ResolvedTerminal is a terminal with its argument expanded.
type ResolvedTerminal struct {
	Op   string
	Kind ir.Kind   // count
	Pred *Callable // count_if, all_of, any_of, none_of
}

// ResolvedPipeline is a pipeline that no longer depends on its program.
// Its canonical encoding is the memo identity: two declarations that
// resolve to the same input, steps and terminal share one memo row.
type ResolvedPipeline struct {
	Name     string // informational, not part of the identity
	Input    ir.Sequence
	Steps    []ResolvedStep
	Terminal ResolvedTerminal
}

// resolvePipeline expands spec against the program and the registry.
func resolvePipeline(spec ir.PipelineSpec, res *compiler.Resolver, reg *Registry) (ResolvedPipeline, error) {
	rp := ResolvedPipeline{Name: spec.Name, Steps: make([]ResolvedStep, 0, len(spec.Steps))}

	fail := func(code RuntimeErrorCode, format string, args ...any) error {
		return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Pipeline: spec.Name}
	}

	input, err := res.Sequence(spec.Input)
	if err != nil {
		return rp, wrapResolveError(spec.Name, fmt.Sprintf("input %q", spec.Input), err)
	}
	rp.Input = input

	for i, step := range spec.Steps {
		args, ok := ir.ValidOps[step.Op]
		if !ok {
			return rp, fail(ErrCodeInvalidStep, "steps[%d]: unknown op %q", i, step.Op)
		}

		resolved := ResolvedStep{Op: step.Op, Args: make(map[string]any, len(args))}
		for _, arg := range args {
			raw, present := step.Args[arg.Name]
			if !present {
				if !arg.Optional {
					return rp, fail(ErrCodeInvalidStep, "steps[%d]: %s requires %q", i, step.Op, arg.Name)
				}
				raw = defaultArg(step.Op, arg.Name)
			}
			val, err := resolveArg(step.Op, arg, raw, res, reg)
			if err != nil {
				return rp, wrapResolveError(spec.Name, fmt.Sprintf("steps[%d].%s", i, arg.Name), err)
			}
			resolved.Args[arg.Name] = val
		}
		for name := range step.Args {
			if _, ok := resolved.Args[name]; !ok {
				return rp, fail(ErrCodeInvalidStep, "steps[%d]: %s does not take %q", i, step.Op, name)
			}
		}
		rp.Steps = append(rp.Steps, resolved)
	}

	term, err := resolveTerminal(spec.Terminal, res, reg)
	if err != nil {
		return rp, wrapResolveError(spec.Name, "terminal", err)
	}
	rp.Terminal = term
	return rp, nil
}

// wrapResolveError attributes a resolution failure to a pipeline location.
// Registry errors keep their code; reference failures become
// UNRESOLVED_REFERENCE; anything else is INVALID_STEP.
func wrapResolveError(pipeline, where string, err error) error {
	var re *RuntimeError
	if errors.As(err, &re) {
		return &RuntimeError{Code: re.Code, Message: where + ": " + re.Message, Pipeline: pipeline, Err: re.Err}
	}

	code := ErrCodeInvalidStep
	var uerr *compiler.UnknownRefError
	var cerr *compiler.CycleRefError
	if errors.As(err, &uerr) || errors.As(err, &cerr) {
		code = ErrCodeUnresolvedRef
	}
	return &RuntimeError{Code: code, Message: where, Pipeline: pipeline, Err: err}
}

// defaultArg returns the value an omitted optional argument stands for.
// Filling it in keeps range(0, 3) and range(0, 3, 1) on one memo key.
func defaultArg(op, name string) any {
	if op == "range" && name == "step" {
		return int64(1)
	}
	return nil
}

func resolveArg(op string, arg ir.OpArg, raw any, res *compiler.Resolver, reg *Registry) (any, error) {
	switch arg.Type {
	case ir.ArgInt:
		switch n := raw.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case ir.ArgIntList:
		switch ns := raw.(type) {
		case []int64:
			return slices.Clone(ns), nil
		case []int:
			out := make([]int64, len(ns))
			for i, n := range ns {
				out[i] = int64(n)
			}
			return out, nil
		}
	case ir.ArgRef:
		if name, ok := raw.(string); ok {
			return res.Kind(name)
		}
	case ir.ArgRefList:
		if names, ok := raw.([]string); ok {
			return res.Kinds(names)
		}
	case ir.ArgName:
		name, ok := raw.(string)
		if !ok {
			break
		}
		switch op {
		case "to":
			return name, nil
		case "filter":
			return reg.Parse(compiler.ClassPredicate, name, res.Kind)
		case "transform":
			return reg.Parse(compiler.ClassMapper, name, res.Kind)
		case "fold":
			return reg.Parse(compiler.ClassFolder, name, res.Kind)
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", arg.Type, raw)
}

func resolveTerminal(t ir.TerminalSpec, res *compiler.Resolver, reg *Registry) (ResolvedTerminal, error) {
	op := t.Op
	if op == "" {
		op = ir.TerminalType
	}
	if !ir.ValidTerminals[op] {
		return ResolvedTerminal{}, fmt.Errorf("unknown terminal %q", op)
	}

	rt := ResolvedTerminal{Op: op}
	switch op {
	case ir.TerminalType, ir.TerminalSize:
		if t.Arg != "" {
			return rt, fmt.Errorf("%s takes no argument", op)
		}
	case ir.TerminalCount:
		k, err := res.Kind(t.Arg)
		if err != nil {
			return rt, err
		}
		rt.Kind = k
	default:
		c, err := reg.Parse(compiler.ClassPredicate, t.Arg, res.Kind)
		if err != nil {
			return rt, err
		}
		rt.Pred = &c
	}
	return rt, nil
}

// Encode returns the canonical map form of the pipeline (without its name).
func (rp ResolvedPipeline) Encode() map[string]any {
	steps := make([]any, len(rp.Steps))
	for i, s := range rp.Steps {
		args := make(map[string]any, len(s.Args))
		for name, v := range s.Args {
			args[name] = encodeArg(v)
		}
		steps[i] = map[string]any{"op": s.Op, "args": args}
	}

	term := map[string]any{"op": rp.Terminal.Op}
	if rp.Terminal.Kind != nil {
		term["kind"] = ir.EncodeKind(rp.Terminal.Kind)
	}
	if rp.Terminal.Pred != nil {
		term["pred"] = rp.Terminal.Pred.Encode()
	}

	return map[string]any{
		"input":    ir.EncodeKind(rp.Input),
		"steps":    steps,
		"terminal": term,
	}
}

func encodeArg(v any) any {
	switch val := v.(type) {
	case ir.Kind:
		return ir.EncodeKind(val)
	case []ir.Kind:
		out := make([]any, len(val))
		for i, k := range val {
			out[i] = ir.EncodeKind(k)
		}
		return out
	case Callable:
		return val.Encode()
	default:
		return v
	}
}

// Marshal returns the canonical JSON text of the pipeline.
func (rp ResolvedPipeline) Marshal() (string, error) {
	data, err := ir.MarshalCanonical(rp.Encode())
	if err != nil {
		return "", fmt.Errorf("marshal pipeline %s: %w", rp.Name, err)
	}
	return string(data), nil
}

// Key returns the memo key of the pipeline.
func (rp ResolvedPipeline) Key() (string, error) {
	return ir.PipelineKey(rp.Encode())
}

// DecodeResolved parses text produced by Marshal. The name is not part of
// the encoding and is left empty.
func DecodeResolved(text string) (ResolvedPipeline, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var raw struct {
		Input any `json:"input"`
		Steps []struct {
			Op   string         `json:"op"`
			Args map[string]any `json:"args"`
		} `json:"steps"`
		Terminal struct {
			Op   string `json:"op"`
			Kind any    `json:"kind"`
			Pred any    `json:"pred"`
		} `json:"terminal"`
	}
	if err := dec.Decode(&raw); err != nil {
		return ResolvedPipeline{}, fmt.Errorf("decode pipeline: %w", err)
	}

	var rp ResolvedPipeline
	input, err := ir.DecodeKindValue(raw.Input)
	if err != nil {
		return rp, fmt.Errorf("decode pipeline: input: %w", err)
	}
	if rp.Input, err = ir.AsSequence("decode", input); err != nil {
		return rp, fmt.Errorf("decode pipeline: input: %w", err)
	}

	for i, s := range raw.Steps {
		declared, ok := ir.ValidOps[s.Op]
		if !ok {
			return rp, fmt.Errorf("decode pipeline: steps[%d]: unknown op %q", i, s.Op)
		}
		step := ResolvedStep{Op: s.Op, Args: make(map[string]any, len(s.Args))}
		for _, arg := range declared {
			v, present := s.Args[arg.Name]
			if !present {
				if !arg.Optional {
					return rp, fmt.Errorf("decode pipeline: steps[%d]: %s requires %q", i, s.Op, arg.Name)
				}
				step.Args[arg.Name] = defaultArg(s.Op, arg.Name)
				continue
			}
			val, err := decodeArg(s.Op, arg.Type, v)
			if err != nil {
				return rp, fmt.Errorf("decode pipeline: steps[%d].%s: %w", i, arg.Name, err)
			}
			step.Args[arg.Name] = val
		}
		if extra := len(s.Args) - countPresent(declared, s.Args); extra > 0 {
			return rp, fmt.Errorf("decode pipeline: steps[%d]: %d unknown arguments in %v",
				i, extra, slices.Sorted(maps.Keys(s.Args)))
		}
		rp.Steps = append(rp.Steps, step)
	}

	rp.Terminal.Op = raw.Terminal.Op
	if !ir.ValidTerminals[rp.Terminal.Op] {
		return rp, fmt.Errorf("decode pipeline: unknown terminal %q", rp.Terminal.Op)
	}
	if raw.Terminal.Kind != nil {
		if rp.Terminal.Kind, err = ir.DecodeKindValue(raw.Terminal.Kind); err != nil {
			return rp, fmt.Errorf("decode pipeline: terminal: %w", err)
		}
	}
	if raw.Terminal.Pred != nil {
		c, err := decodeCallable(raw.Terminal.Pred)
		if err != nil {
			return rp, fmt.Errorf("decode pipeline: terminal: %w", err)
		}
		rp.Terminal.Pred = &c
	}
	return rp, nil
}

func decodeArg(op string, typ ir.ArgType, v any) (any, error) {
	switch typ {
	case ir.ArgInt:
		return decodeInt(v)
	case ir.ArgIntList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", v)
		}
		out := make([]int64, len(items))
		for i, item := range items {
			n, err := decodeInt(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case ir.ArgRef:
		return ir.DecodeKindValue(v)
	case ir.ArgRefList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", v)
		}
		out := make([]ir.Kind, len(items))
		for i, item := range items {
			k, err := ir.DecodeKindValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = k
		}
		return out, nil
	case ir.ArgName:
		if op == "to" {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("expected container name, got %T", v)
			}
			return s, nil
		}
		return decodeCallable(v)
	}
	return nil, fmt.Errorf("unsupported argument type %q", typ)
}

func decodeInt(v any) (int64, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	return num.Int64()
}

func countPresent(declared []ir.OpArg, args map[string]any) int {
	n := 0
	for _, arg := range declared {
		if _, ok := args[arg.Name]; ok {
			n++
		}
	}
	return n
}
