package lazy

import (
	"fmt"

	"github.com/roach88/kindseq/internal/ir"
)

// Step is one bound operation: a name, its non-sequence arguments for
// display, and the unary function they close over.
type Step struct {
	Name  string
	Args  []any
	apply func(ir.Kind) (ir.Kind, error)
}

// Apply runs the step on in.
func (s Step) Apply(in ir.Kind) (ir.Kind, error) {
	out, err := s.apply(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s, err)
	}
	return out, nil
}

// String renders the step as name(arg, ...).
func (s Step) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	out := s.Name + "("
	for i, a := range s.Args {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(a)
	}
	return out + ")"
}

// seqStep binds a sequence-to-sequence operation.
func seqStep(name string, fn func(ir.Sequence) (ir.Sequence, error), args ...any) Step {
	return kindStep(name, func(s ir.Sequence) (ir.Kind, error) {
		out, err := fn(s)
		if err != nil {
			return nil, err
		}
		return out, nil
	}, args...)
}

// kindStep binds a sequence-to-kind operation (head, at, fold).
func kindStep(name string, fn func(ir.Sequence) (ir.Kind, error), args ...any) Step {
	return Step{
		Name: name,
		Args: args,
		apply: func(in ir.Kind) (ir.Kind, error) {
			s, err := ir.AsSequence(name, in)
			if err != nil {
				return nil, err
			}
			return fn(s)
		},
	}
}

// pure lifts an infallible sequence operation.
func pure(fn func(ir.Sequence) ir.Sequence) func(ir.Sequence) (ir.Sequence, error) {
	return func(s ir.Sequence) (ir.Sequence, error) {
		return fn(s), nil
	}
}
