package lazy

import (
	"slices"

	"github.com/roach88/kindseq/internal/index"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/seq"
)

// Pipeline is an originating sequence plus an ordered list of bound steps.
// The zero value is a pipeline over the empty, container-less sequence.
type Pipeline struct {
	origin ir.Sequence
	steps  []Step
}

// From starts a pipeline over s.
func From(s ir.Sequence) Pipeline {
	return Pipeline{origin: s}
}

// Origin returns the originating sequence.
func (p Pipeline) Origin() ir.Sequence {
	return p.origin
}

// Steps returns a copy of the recorded steps in registration order.
func (p Pipeline) Steps() []Step {
	return slices.Clone(p.steps)
}

// Len returns the number of recorded steps.
func (p Pipeline) Len() int {
	return len(p.steps)
}

// Then returns a new pipeline with step appended.
func (p Pipeline) Then(step Step) Pipeline {
	// Clip forces append to copy, so pipelines sharing a prefix never
	// write into each other's backing array.
	return Pipeline{origin: p.origin, steps: append(slices.Clip(p.steps), step)}
}

// Range records seq.Range(start, end, step).
func (p Pipeline) Range(start, end, step int) Pipeline {
	return p.Then(seqStep("range", func(s ir.Sequence) (ir.Sequence, error) {
		return seq.Range(s, start, end, step)
	}, start, end, step))
}

// Take records seq.Take(n).
func (p Pipeline) Take(n int) Pipeline {
	return p.Then(seqStep("take", func(s ir.Sequence) (ir.Sequence, error) {
		return seq.Take(s, n)
	}, n))
}

// Drop records seq.Drop(n).
func (p Pipeline) Drop(n int) Pipeline {
	return p.Then(seqStep("drop", func(s ir.Sequence) (ir.Sequence, error) {
		return seq.Drop(s, n)
	}, n))
}

// Fold records seq.Fold(seed, f). The pipeline value becomes the
// accumulator, which may be an atom.
func (p Pipeline) Fold(seed ir.Kind, f seq.Folder) Pipeline {
	return p.Then(kindStep("fold", func(s ir.Sequence) (ir.Kind, error) {
		return seq.Fold(s, seed, f)
	}, seed))
}

// PushBack records seq.PushBack(k).
func (p Pipeline) PushBack(k ir.Kind) Pipeline {
	return p.Then(seqStep("push_back", pure(func(s ir.Sequence) ir.Sequence {
		return seq.PushBack(s, k)
	}), k))
}

// PushFront records seq.PushFront(k).
func (p Pipeline) PushFront(k ir.Kind) Pipeline {
	return p.Then(seqStep("push_front", pure(func(s ir.Sequence) ir.Sequence {
		return seq.PushFront(s, k)
	}), k))
}

// PopBack records seq.PopBack.
func (p Pipeline) PopBack() Pipeline {
	return p.Then(seqStep("pop_back", seq.PopBack))
}

// PopFront records seq.PopFront.
func (p Pipeline) PopFront() Pipeline {
	return p.Then(seqStep("pop_front", seq.PopFront))
}

// Reverse records seq.Reverse.
func (p Pipeline) Reverse() Pipeline {
	return p.Then(seqStep("reverse", seq.Reverse))
}

// Filter records seq.Filter(pred).
func (p Pipeline) Filter(pred seq.Predicate) Pipeline {
	return p.Then(seqStep("filter", func(s ir.Sequence) (ir.Sequence, error) {
		return seq.Filter(s, pred)
	}))
}

// Transform records seq.Transform(f).
func (p Pipeline) Transform(f seq.Mapper) Pipeline {
	return p.Then(seqStep("transform", func(s ir.Sequence) (ir.Sequence, error) {
		return seq.Transform(s, f)
	}))
}

// Concat records seq.Concat with the pipeline value as the left operand.
func (p Pipeline) Concat(others ...ir.Sequence) Pipeline {
	others = slices.Clone(others)
	args := make([]any, len(others))
	for i, o := range others {
		args[i] = o
	}
	return p.Then(seqStep("concat", pure(func(s ir.Sequence) ir.Sequence {
		return seq.Concat(append([]ir.Sequence{s}, others...)...)
	}), args...))
}

// Append records seq.Append(kinds...).
func (p Pipeline) Append(kinds ...ir.Kind) Pipeline {
	kinds = slices.Clone(kinds)
	args := make([]any, len(kinds))
	for i, k := range kinds {
		args[i] = k
	}
	return p.Then(seqStep("append", pure(func(s ir.Sequence) ir.Sequence {
		return seq.Append(s, kinds...)
	}), args...))
}

// Join records seq.Join.
func (p Pipeline) Join() Pipeline {
	return p.Then(seqStep("join", seq.Join))
}

// To records seq.To(c).
func (p Pipeline) To(c ir.Container) Pipeline {
	return p.Then(seqStep("to", pure(func(s ir.Sequence) ir.Sequence {
		return seq.To(s, c)
	}), c))
}

// Head records seq.Head.
func (p Pipeline) Head() Pipeline {
	return p.Then(kindStep("head", seq.Head))
}

// Tail records seq.Tail.
func (p Pipeline) Tail() Pipeline {
	return p.Then(seqStep("tail", seq.Tail))
}

// At records seq.AtNormalized(i): negative positions count from the end.
func (p Pipeline) At(i int) Pipeline {
	return p.Then(kindStep("at", func(s ir.Sequence) (ir.Kind, error) {
		return seq.AtNormalized(s, i)
	}, i))
}

// Order records seq.Order(idx).
func (p Pipeline) Order(idx index.Seq) Pipeline {
	idx = slices.Clone(idx)
	return p.Then(seqStep("order", func(s ir.Sequence) (ir.Sequence, error) {
		return seq.Order(s, idx)
	}, []int(idx)))
}
