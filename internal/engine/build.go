package engine

import (
	"fmt"

	"github.com/roach88/kindseq/internal/index"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/lazy"
)

// compute builds the lazy pipeline for rp and runs its terminal.
func (e *Engine) compute(rp ResolvedPipeline) (Value, error) {
	p, err := e.build(rp)
	if err != nil {
		return errorValue(err)
	}

	switch rp.Terminal.Op {
	case ir.TerminalType:
		k, err := p.Type()
		if err != nil {
			return errorValue(err)
		}
		return KindValue(k), nil
	case ir.TerminalSize:
		n, err := p.Size()
		if err != nil {
			return errorValue(err)
		}
		return IntValue(n), nil
	case ir.TerminalCount:
		n, err := p.Count(rp.Terminal.Kind)
		if err != nil {
			return errorValue(err)
		}
		return IntValue(n), nil
	}

	if rp.Terminal.Pred == nil {
		return Value{}, fmt.Errorf("terminal %s: missing predicate", rp.Terminal.Op)
	}
	pred, err := e.registry.Predicate(*rp.Terminal.Pred)
	if err != nil {
		return Value{}, err
	}

	switch rp.Terminal.Op {
	case ir.TerminalCountIf:
		n, err := p.CountIf(pred)
		if err != nil {
			return errorValue(err)
		}
		return IntValue(n), nil
	case ir.TerminalAllOf:
		return boolTerminal(p.AllOf(pred))
	case ir.TerminalAnyOf:
		return boolTerminal(p.AnyOf(pred))
	case ir.TerminalNoneOf:
		return boolTerminal(p.NoneOf(pred))
	}
	return Value{}, fmt.Errorf("unknown terminal %q", rp.Terminal.Op)
}

func boolTerminal(b bool, err error) (Value, error) {
	if err != nil {
		return errorValue(err)
	}
	return BoolValue(b), nil
}

// build records every step of rp on a lazy pipeline. Nothing is evaluated
// here except argument conversion; a concat operand that is not a sequence
// is a contract violation like any other.
func (e *Engine) build(rp ResolvedPipeline) (lazy.Pipeline, error) {
	p := lazy.From(rp.Input)

	for i, step := range rp.Steps {
		next, err := e.buildStep(p, step)
		if err != nil {
			return p, fmt.Errorf("steps[%d]: %w", i, err)
		}
		p = next
	}
	return p, nil
}

func (e *Engine) buildStep(p lazy.Pipeline, step ResolvedStep) (lazy.Pipeline, error) {
	a := step.Args

	switch step.Op {
	case "range":
		return p.Range(int(a["start"].(int64)), int(a["end"].(int64)), int(a["step"].(int64))), nil
	case "take":
		return p.Take(int(a["n"].(int64))), nil
	case "drop":
		return p.Drop(int(a["n"].(int64))), nil
	case "fold":
		f, err := e.registry.Folder(a["fn"].(Callable))
		if err != nil {
			return p, err
		}
		return p.Fold(a["seed"].(ir.Kind), f), nil
	case "push_back":
		return p.PushBack(a["kind"].(ir.Kind)), nil
	case "push_front":
		return p.PushFront(a["kind"].(ir.Kind)), nil
	case "pop_back":
		return p.PopBack(), nil
	case "pop_front":
		return p.PopFront(), nil
	case "reverse":
		return p.Reverse(), nil
	case "filter":
		pred, err := e.registry.Predicate(a["pred"].(Callable))
		if err != nil {
			return p, err
		}
		return p.Filter(pred), nil
	case "transform":
		m, err := e.registry.Mapper(a["fn"].(Callable))
		if err != nil {
			return p, err
		}
		return p.Transform(m), nil
	case "concat":
		kinds := a["with"].([]ir.Kind)
		others := make([]ir.Sequence, len(kinds))
		for i, k := range kinds {
			s, err := ir.AsSequence("concat", k)
			if err != nil {
				return p, err
			}
			others[i] = s
		}
		return p.Concat(others...), nil
	case "append":
		return p.Append(a["kinds"].([]ir.Kind)...), nil
	case "join":
		return p.Join(), nil
	case "to":
		return p.To(ir.Container(a["container"].(string))), nil
	case "head":
		return p.Head(), nil
	case "tail":
		return p.Tail(), nil
	case "at":
		return p.At(int(a["index"].(int64))), nil
	case "order":
		raw := a["indices"].([]int64)
		idx := make(index.Seq, len(raw))
		for i, n := range raw {
			idx[i] = int(n)
		}
		return p.Order(idx), nil
	}
	return p, fmt.Errorf("unknown op %q", step.Op)
}
