package engine

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/kindseq/internal/compiler"
	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/seq"
)

// Lookup resolves a kind or sequence name.
type Lookup func(name string) (ir.Kind, error)

// argShape is what follows the colon in a callable name.
type argShape int

const (
	argNone      argShape = iota
	argKind               // is:<kind>
	argContainer          // instance_of:<container>, wrap:<container>
	argInt                // size_lt:<n>
	argPredicate          // not:<predicate>
)

type entry[F any] struct {
	shape argShape
	build func(c Callable, r *Registry) (F, error)
}

// Registry maps callable names to predicates, mappers and folders.
//
// The zero value is empty; DefaultRegistry returns one with the built-in
// families. A Registry must not be modified while an engine uses it.
type Registry struct {
	predicates map[string]entry[seq.Predicate]
	mappers    map[string]entry[seq.Mapper]
	folders    map[string]entry[seq.Folder]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		predicates: make(map[string]entry[seq.Predicate]),
		mappers:    make(map[string]entry[seq.Mapper]),
		folders:    make(map[string]entry[seq.Folder]),
	}
}

// DefaultRegistry returns a registry with the built-in families:
//
//	predicates: always, never, atom, sequence, is:<kind>,
//	            instance_of:<container>, size_eq:<n>, size_lt:<n>,
//	            size_gt:<n>, not:<predicate>
//	mappers:    identity, pointer, wrap:<container>
//	folders:    keep, last, push_back, larger
//
// pointer and push_back return Deferred results; larger returns Deferred
// only when it replaces the accumulator.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.RegisterPredicate("always", seq.Always)
	r.RegisterPredicate("never", seq.Never)
	r.RegisterPredicate("atom", isAtom)
	r.RegisterPredicate("sequence", seq.Not(isAtom))
	r.predicates["is"] = entry[seq.Predicate]{argKind, func(c Callable, _ *Registry) (seq.Predicate, error) {
		return seq.Is(c.Kind), nil
	}}
	r.predicates["instance_of"] = entry[seq.Predicate]{argContainer, func(c Callable, _ *Registry) (seq.Predicate, error) {
		return seq.InstanceOf(ir.Container(c.Arg)), nil
	}}
	r.predicates["size_eq"] = sizePredicate(func(a, b int64) bool { return a == b })
	r.predicates["size_lt"] = sizePredicate(func(a, b int64) bool { return a < b })
	r.predicates["size_gt"] = sizePredicate(func(a, b int64) bool { return a > b })
	r.predicates["not"] = entry[seq.Predicate]{argPredicate, func(c Callable, r *Registry) (seq.Predicate, error) {
		inner, err := r.Predicate(*c.Inner)
		if err != nil {
			return nil, err
		}
		return seq.Not(inner), nil
	}}

	r.RegisterMapper("identity", seq.Resolved)
	r.RegisterMapper("pointer", func(k ir.Kind) seq.Mapped {
		return seq.Deferred(func() (ir.Kind, error) {
			return ir.NewAtom(k.String()+"*", ir.KindOf[uintptr]().Size), nil
		})
	})
	r.mappers["wrap"] = entry[seq.Mapper]{argContainer, func(c Callable, _ *Registry) (seq.Mapper, error) {
		container := ir.Container(c.Arg)
		return func(k ir.Kind) seq.Mapped {
			return seq.Resolved(ir.NewSequence(container, k))
		}, nil
	}}

	r.RegisterFolder("keep", func(acc, _ ir.Kind) seq.Mapped {
		return seq.Resolved(acc)
	})
	r.RegisterFolder("last", func(_, k ir.Kind) seq.Mapped {
		return seq.Resolved(k)
	})
	r.RegisterFolder("push_back", func(acc, k ir.Kind) seq.Mapped {
		return seq.Deferred(func() (ir.Kind, error) {
			s, err := ir.AsSequence("push_back", acc)
			if err != nil {
				return nil, err
			}
			return seq.PushBack(s, k), nil
		})
	})
	r.RegisterFolder("larger", func(acc, k ir.Kind) seq.Mapped {
		if seq.SizeOf(k) > seq.SizeOf(acc) {
			return seq.Deferred(func() (ir.Kind, error) { return k, nil })
		}
		return seq.Resolved(acc)
	})

	return r
}

func isAtom(k ir.Kind) bool {
	_, ok := k.(ir.Atom)
	return ok
}

func sizePredicate(cmp func(a, b int64) bool) entry[seq.Predicate] {
	return entry[seq.Predicate]{argInt, func(c Callable, _ *Registry) (seq.Predicate, error) {
		n, err := strconv.ParseInt(c.Arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("size argument %q: %w", c.Arg, err)
		}
		return func(k ir.Kind) bool { return cmp(seq.SizeOf(k), n) }, nil
	}}
}

// RegisterPredicate adds an argument-less predicate, replacing any family
// of the same name.
func (r *Registry) RegisterPredicate(name string, p seq.Predicate) {
	r.predicates[name] = entry[seq.Predicate]{argNone, func(Callable, *Registry) (seq.Predicate, error) {
		return p, nil
	}}
}

// RegisterMapper adds an argument-less mapper.
func (r *Registry) RegisterMapper(name string, m seq.Mapper) {
	r.mappers[name] = entry[seq.Mapper]{argNone, func(Callable, *Registry) (seq.Mapper, error) {
		return m, nil
	}}
}

// RegisterFolder adds an argument-less folder.
func (r *Registry) RegisterFolder(name string, f seq.Folder) {
	r.folders[name] = entry[seq.Folder]{argNone, func(Callable, *Registry) (seq.Folder, error) {
		return f, nil
	}}
}

// Names returns the registered family names of class, sorted.
func (r *Registry) Names(class compiler.NameClass) []string {
	switch class {
	case compiler.ClassPredicate:
		return slices.Sorted(maps.Keys(r.predicates))
	case compiler.ClassMapper:
		return slices.Sorted(maps.Keys(r.mappers))
	case compiler.ClassFolder:
		return slices.Sorted(maps.Keys(r.folders))
	}
	return nil
}

func (r *Registry) shape(class compiler.NameClass, family string) (argShape, bool) {
	switch class {
	case compiler.ClassPredicate:
		e, ok := r.predicates[family]
		return e.shape, ok
	case compiler.ClassMapper:
		e, ok := r.mappers[family]
		return e.shape, ok
	case compiler.ClassFolder:
		e, ok := r.folders[family]
		return e.shape, ok
	}
	return argNone, false
}

// Parse turns a name such as "not:is:int" into a Callable of class.
// Kind arguments are expanded with lookup; a nil lookup checks syntax only
// and leaves Kind unset.
//
// Errors are *RuntimeError with ErrCodeUnknownName, or
// ErrCodeUnresolvedRef when lookup fails.
func (r *Registry) Parse(class compiler.NameClass, name string, lookup Lookup) (Callable, error) {
	family, arg, hasArg := strings.Cut(name, ":")
	shape, ok := r.shape(class, family)
	if !ok {
		return Callable{}, &RuntimeError{
			Code:    ErrCodeUnknownName,
			Message: fmt.Sprintf("unknown %s %q (known: %s)", class, family, strings.Join(r.Names(class), ", ")),
		}
	}

	c := Callable{Name: family}
	if shape == argNone {
		if hasArg {
			return Callable{}, &RuntimeError{
				Code:    ErrCodeUnknownName,
				Message: fmt.Sprintf("%s %q takes no argument", class, family),
			}
		}
		return c, nil
	}
	if arg == "" {
		return Callable{}, &RuntimeError{
			Code:    ErrCodeUnknownName,
			Message: fmt.Sprintf("%s %q requires an argument (%s:<arg>)", class, family, family),
		}
	}

	switch shape {
	case argKind:
		if lookup == nil {
			c.Arg = arg
			break
		}
		k, err := lookup(arg)
		if err != nil {
			return Callable{}, &RuntimeError{
				Code:    ErrCodeUnresolvedRef,
				Message: fmt.Sprintf("%s %q", class, name),
				Err:     err,
			}
		}
		c.Kind = k
	case argContainer:
		c.Arg = arg
	case argInt:
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return Callable{}, &RuntimeError{
				Code:    ErrCodeUnknownName,
				Message: fmt.Sprintf("%s %q: argument must be an integer", class, name),
			}
		}
		c.Arg = strconv.FormatInt(n, 10)
	case argPredicate:
		inner, err := r.Parse(compiler.ClassPredicate, arg, lookup)
		if err != nil {
			return Callable{}, err
		}
		c.Inner = &inner
	}
	return c, nil
}

// CheckName implements compiler.Names.
func (r *Registry) CheckName(class compiler.NameClass, name string) error {
	_, err := r.Parse(class, name, nil)
	return err
}

// Predicate builds the predicate a parsed Callable names.
func (r *Registry) Predicate(c Callable) (seq.Predicate, error) {
	return build(r, compiler.ClassPredicate, r.predicates, c)
}

// Mapper builds the mapper a parsed Callable names.
func (r *Registry) Mapper(c Callable) (seq.Mapper, error) {
	return build(r, compiler.ClassMapper, r.mappers, c)
}

// Folder builds the folder a parsed Callable names.
func (r *Registry) Folder(c Callable) (seq.Folder, error) {
	return build(r, compiler.ClassFolder, r.folders, c)
}

func build[F any](r *Registry, class compiler.NameClass, entries map[string]entry[F], c Callable) (F, error) {
	var zero F
	e, ok := entries[c.Name]
	if !ok {
		return zero, &RuntimeError{
			Code:    ErrCodeUnknownName,
			Message: fmt.Sprintf("unknown %s %q", class, c.Name),
		}
	}
	if e.shape == argKind && c.Kind == nil {
		return zero, &RuntimeError{
			Code:    ErrCodeUnresolvedRef,
			Message: fmt.Sprintf("%s %q has an unexpanded kind argument", class, c),
		}
	}
	if e.shape == argPredicate && c.Inner == nil {
		return zero, &RuntimeError{
			Code:    ErrCodeUnknownName,
			Message: fmt.Sprintf("%s %q has no inner predicate", class, c.Name),
		}
	}
	return e.build(c, r)
}
