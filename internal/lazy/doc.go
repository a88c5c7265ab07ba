// Package lazy provides a deferred pipeline builder over package seq.
//
// A [Pipeline] records an originating sequence and an ordered chain of
// bound steps. Chaining methods (Take, Reverse, Filter, ...) return a new
// Pipeline with one more step and never evaluate anything. Terminal methods
// (Type, Sequence, Size, AllOf, ...) replay the whole chain from the origin,
// left to right, every time they are called:
//
//	p := lazy.From(s).Take(2).Reverse()
//	out, err := p.Sequence() // same as seq.Reverse(seq.Take(s, 2))
//
// A Pipeline is a cheap-to-copy recipe, not a cached result. Sharing a
// prefix between pipelines is safe: appending a step always copies.
//
// Steps that need a sequence input (all but the first step may receive an
// atom, e.g. after Head or At) fail with ir.ErrCodeNotASequence.
package lazy
