package ir

import (
	"reflect"
	"slices"
	"strings"
)

// Kind is a sealed interface for one slot of a sequence.
// Only Atom and Sequence implement it.
type Kind interface {
	kind() // Sealed - only these types implement it
	String() string
}

// Container names the outer shape wrapping a sequence's kinds.
type Container string

// Well-known containers. Any non-empty name is a valid container.
const (
	TypeList Container = "type_list"
	Tuple    Container = "tuple"
	Variant  Container = "variant"
)

// Atom is a leaf kind: a named descriptor with a static byte size.
type Atom struct {
	Name string `json:"atom"`
	Size int64  `json:"size"`
}

func (Atom) kind() {}

// String returns the atom name.
func (a Atom) String() string {
	return a.Name
}

// NewAtom creates an Atom.
func NewAtom(name string, size int64) Atom {
	return Atom{Name: name, Size: size}
}

// KindOf derives an Atom from a Go type.
// Example: KindOf[int32]() == Atom{Name: "int32", Size: 4}
func KindOf[T any]() Atom {
	t := reflect.TypeFor[T]()
	return Atom{Name: t.String(), Size: int64(t.Size())}
}

// Sequence is an ordered, fixed-length list of kinds tagged with a container.
// The zero value is an empty sequence with no container.
type Sequence struct {
	container Container
	kinds     []Kind
}

func (Sequence) kind() {}

// NewSequence creates a sequence. The kinds slice is copied.
func NewSequence(c Container, kinds ...Kind) Sequence {
	return Sequence{container: c, kinds: slices.Clone(kinds)}
}

// Empty returns the empty sequence with container c.
func Empty(c Container) Sequence {
	return Sequence{container: c}
}

// List is shorthand for NewSequence(TypeList, kinds...).
func List(kinds ...Kind) Sequence {
	return NewSequence(TypeList, kinds...)
}

// Container returns the container identity.
func (s Sequence) Container() Container {
	return s.container
}

// Len returns the number of slots.
func (s Sequence) Len() int {
	return len(s.kinds)
}

// Kinds returns a copy of the slots.
func (s Sequence) Kinds() []Kind {
	return slices.Clone(s.kinds)
}

// Index returns the kind at i. It panics like a slice index when i is out of
// range; bounds-checked access lives in package seq.
func (s Sequence) Index(i int) Kind {
	return s.kinds[i]
}

// String renders the sequence as container<k0, k1, ...>.
func (s Sequence) String() string {
	var b strings.Builder
	b.WriteString(string(s.container))
	b.WriteByte('<')
	for i, k := range s.kinds {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
	}
	b.WriteByte('>')
	return b.String()
}

// AsSequence returns k as a Sequence, or a NOT_A_SEQUENCE error.
func AsSequence(op string, k Kind) (Sequence, error) {
	s, ok := k.(Sequence)
	if !ok {
		return Sequence{}, &ContractError{
			Code:    ErrCodeNotASequence,
			Op:      op,
			Message: "expected a sequence, got " + describe(k),
		}
	}
	return s, nil
}

// Equal reports structural equality of two kinds.
// Sequences are equal when containers and all slots are equal.
func Equal(a, b Kind) bool {
	switch x := a.(type) {
	case Atom:
		y, ok := b.(Atom)
		return ok && x == y
	case Sequence:
		y, ok := b.(Sequence)
		if !ok || x.container != y.container || len(x.kinds) != len(y.kinds) {
			return false
		}
		for i := range x.kinds {
			if !Equal(x.kinds[i], y.kinds[i]) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

func describe(k Kind) string {
	if k == nil {
		return "<nil>"
	}
	return k.String()
}
