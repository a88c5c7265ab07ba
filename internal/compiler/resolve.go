package compiler

import (
	"github.com/roach88/kindseq/internal/ir"
)

// Resolver turns declared names into kinds for one program. Nested
// sequence references are resolved depth-first and memoized.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	prog     *ir.Program
	resolved map[string]ir.Kind
	visiting []string
}

// NewResolver returns a resolver over prog.
func NewResolver(prog *ir.Program) *Resolver {
	return &Resolver{prog: prog, resolved: make(map[string]ir.Kind)}
}

// Kind resolves name to an atom or a fully expanded sequence.
// Returns *UnknownRefError or *CycleRefError on failure.
func (r *Resolver) Kind(name string) (ir.Kind, error) {
	if k, ok := r.resolved[name]; ok {
		return k, nil
	}
	if a, ok := r.prog.Kinds[name]; ok {
		r.resolved[name] = a
		return a, nil
	}

	decl, ok := r.prog.Sequences[name]
	if !ok {
		return nil, &UnknownRefError{Name: name}
	}

	for i, v := range r.visiting {
		if v == name {
			path := append(append([]string{}, r.visiting[i:]...), name)
			return nil, &CycleRefError{Path: path}
		}
	}
	r.visiting = append(r.visiting, name)
	defer func() { r.visiting = r.visiting[:len(r.visiting)-1] }()

	kinds := make([]ir.Kind, len(decl.Kinds))
	for i, ref := range decl.Kinds {
		k, err := r.Kind(ref)
		if err != nil {
			return nil, err
		}
		kinds[i] = k
	}

	s := ir.NewSequence(decl.Container, kinds...)
	r.resolved[name] = s
	return s, nil
}

// Sequence resolves name and requires the result to be a sequence.
func (r *Resolver) Sequence(name string) (ir.Sequence, error) {
	k, err := r.Kind(name)
	if err != nil {
		return ir.Sequence{}, err
	}
	return ir.AsSequence("resolve "+name, k)
}

// Kinds resolves every name in order.
func (r *Resolver) Kinds(names []string) ([]ir.Kind, error) {
	out := make([]ir.Kind, len(names))
	for i, n := range names {
		k, err := r.Kind(n)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}
