package engine

import (
	"fmt"

	"github.com/roach88/kindseq/internal/ir"
)

// Callable is a parsed predicate, mapper or folder reference such as
// "always", "size_lt:4", "is:int" or "not:is:int".
//
// Kind arguments are expanded at parse time, so a Callable carries its
// meaning with it: "is:int" in two programs with different int sizes gives
// two different Callables (and two different memo keys).
type Callable struct {
	Name  string    // family, e.g. "is"
	Arg   string    // raw argument for container and int families
	Kind  ir.Kind   // expanded argument for kind families
	Inner *Callable // wrapped predicate for "not"
}

// String renders the callable in name:arg form. Expanded kinds are
// rendered structurally.
func (c Callable) String() string {
	switch {
	case c.Inner != nil:
		return c.Name + ":" + c.Inner.String()
	case c.Kind != nil:
		return c.Name + ":" + c.Kind.String()
	case c.Arg != "":
		return c.Name + ":" + c.Arg
	default:
		return c.Name
	}
}

// Encode returns the canonical map form used in memo keys.
func (c Callable) Encode() map[string]any {
	m := map[string]any{"name": c.Name}
	if c.Arg != "" {
		m["arg"] = c.Arg
	}
	if c.Kind != nil {
		m["kind"] = ir.EncodeKind(c.Kind)
	}
	if c.Inner != nil {
		m["inner"] = c.Inner.Encode()
	}
	return m
}

// decodeCallable reverses Encode. raw comes from a json.Decoder with
// UseNumber enabled.
func decodeCallable(raw any) (Callable, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Callable{}, fmt.Errorf("callable must be an object, got %T", raw)
	}

	var c Callable
	if c.Name, ok = obj["name"].(string); !ok {
		return Callable{}, fmt.Errorf("callable name must be a string")
	}
	if arg, present := obj["arg"]; present {
		if c.Arg, ok = arg.(string); !ok {
			return Callable{}, fmt.Errorf("callable %s: arg must be a string", c.Name)
		}
	}
	if k, present := obj["kind"]; present {
		kind, err := ir.DecodeKindValue(k)
		if err != nil {
			return Callable{}, fmt.Errorf("callable %s: %w", c.Name, err)
		}
		c.Kind = kind
	}
	if inner, present := obj["inner"]; present {
		in, err := decodeCallable(inner)
		if err != nil {
			return Callable{}, fmt.Errorf("callable %s: %w", c.Name, err)
		}
		c.Inner = &in
	}
	return c, nil
}
