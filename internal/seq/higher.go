package seq

import (
	"fmt"

	"github.com/roach88/kindseq/internal/ir"
)

// Thunk is a deferred computation producing a kind.
type Thunk func() (ir.Kind, error)

// Mapped is the tagged result of a Mapper or Folder: either a kind that is
// already resolved, or a deferred computation that the engine resolves
// before inserting the result.
type Mapped struct {
	kind  ir.Kind
	thunk Thunk
}

// Resolved wraps a final kind.
func Resolved(k ir.Kind) Mapped {
	return Mapped{kind: k}
}

// Deferred wraps a computation that is run when the result is used.
func Deferred(t Thunk) Mapped {
	return Mapped{thunk: t}
}

// IsDeferred reports whether m still needs to be resolved.
func (m Mapped) IsDeferred() bool {
	return m.thunk != nil
}

// Resolve unwraps m. Deferred values run their thunk; resolved values are
// returned as is.
func (m Mapped) Resolve() (ir.Kind, error) {
	if m.thunk == nil {
		if m.kind == nil {
			return nil, fmt.Errorf("mapped value holds no kind")
		}
		return m.kind, nil
	}
	k, err := m.thunk()
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("deferred computation produced no kind")
	}
	return k, nil
}

// Mapper maps one kind.
type Mapper func(ir.Kind) Mapped

// Folder combines an accumulator with the next kind.
type Folder func(acc, k ir.Kind) Mapped

// Transform applies f to every kind of s, producing a same-length sequence
// under the same container.
//
// The form of the results is decided once for the whole call: either every
// result is Resolved or every result is Deferred (and unwrapped). A call
// whose results mix both forms is rejected with MIXED_MODES.
func Transform(s ir.Sequence, f Mapper) (ir.Sequence, error) {
	mapped := make([]Mapped, s.Len())
	deferred := 0
	for i := range mapped {
		mapped[i] = f(s.Index(i))
		if mapped[i].IsDeferred() {
			deferred++
		}
	}
	if deferred != 0 && deferred != len(mapped) {
		return ir.Sequence{}, ir.NewContractError(ir.ErrCodeMixedModes, "transform",
			"%d of %d results of %s are deferred", deferred, len(mapped), s)
	}

	kinds := make([]ir.Kind, len(mapped))
	for i, m := range mapped {
		k, err := m.Resolve()
		if err != nil {
			return ir.Sequence{}, fmt.Errorf("transform[%d]: %w", i, err)
		}
		kinds[i] = k
	}
	return ir.NewSequence(s.Container(), kinds...), nil
}

// Fold is a left fold: acc = f(acc, k) for every kind k of s, left to right,
// starting from seed. The empty sequence yields seed.
//
// Each step's result is resolved on its own, so a folder may return
// Resolved at one step and Deferred at another.
func Fold(s ir.Sequence, seed ir.Kind, f Folder) (ir.Kind, error) {
	acc := seed
	for i := range s.Len() {
		next, err := f(acc, s.Index(i)).Resolve()
		if err != nil {
			return nil, fmt.Errorf("fold[%d]: %w", i, err)
		}
		acc = next
	}
	return acc, nil
}

// AllOf reports whether every kind satisfies pred. True on the empty sequence.
func AllOf(s ir.Sequence, pred Predicate) bool {
	return CountIf(s, pred) == s.Len()
}

// AnyOf reports whether some kind satisfies pred. False on the empty sequence.
func AnyOf(s ir.Sequence, pred Predicate) bool {
	return CountIf(s, pred) > 0
}

// NoneOf is !AnyOf. True on the empty sequence.
func NoneOf(s ir.Sequence, pred Predicate) bool {
	return !AnyOf(s, pred)
}

// CountIf returns how many kinds satisfy pred. Every kind is evaluated.
func CountIf(s ir.Sequence, pred Predicate) int {
	return MaskOf(s, pred).Count()
}

// Count returns how many kinds are structurally equal to k.
func Count(s ir.Sequence, k ir.Kind) int {
	return CountIf(s, Is(k))
}
