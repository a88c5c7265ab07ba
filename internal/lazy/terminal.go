package lazy

import (
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/seq"
)

// Type materializes the pipeline: every step is applied in registration
// order, each consuming the previous result. The chain is replayed in full
// on every call.
func (p Pipeline) Type() (ir.Kind, error) {
	var cur ir.Kind = p.origin
	for _, step := range p.steps {
		next, err := step.Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Sequence is Type for pipelines that end in a sequence.
// Returns NOT_A_SEQUENCE when the final value is an atom.
func (p Pipeline) Sequence() (ir.Sequence, error) {
	k, err := p.Type()
	if err != nil {
		return ir.Sequence{}, err
	}
	return ir.AsSequence("type", k)
}

// Size materializes the pipeline and returns seq.Size of the result.
func (p Pipeline) Size() (int, error) {
	s, err := p.Sequence()
	if err != nil {
		return 0, err
	}
	return seq.Size(s), nil
}

// Count materializes the pipeline and returns seq.Count(k).
func (p Pipeline) Count(k ir.Kind) (int, error) {
	s, err := p.Sequence()
	if err != nil {
		return 0, err
	}
	return seq.Count(s, k), nil
}

// CountIf materializes the pipeline and returns seq.CountIf(pred).
func (p Pipeline) CountIf(pred seq.Predicate) (int, error) {
	s, err := p.Sequence()
	if err != nil {
		return 0, err
	}
	return seq.CountIf(s, pred), nil
}

// AllOf materializes the pipeline and returns seq.AllOf(pred).
func (p Pipeline) AllOf(pred seq.Predicate) (bool, error) {
	s, err := p.Sequence()
	if err != nil {
		return false, err
	}
	return seq.AllOf(s, pred), nil
}

// AnyOf materializes the pipeline and returns seq.AnyOf(pred).
func (p Pipeline) AnyOf(pred seq.Predicate) (bool, error) {
	s, err := p.Sequence()
	if err != nil {
		return false, err
	}
	return seq.AnyOf(s, pred), nil
}

// NoneOf materializes the pipeline and returns seq.NoneOf(pred).
func (p Pipeline) NoneOf(pred seq.Predicate) (bool, error) {
	s, err := p.Sequence()
	if err != nil {
		return false, err
	}
	return seq.NoneOf(s, pred), nil
}
