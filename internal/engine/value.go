package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/kindseq/internal/ir"
)

// ValueType discriminates Value.
type ValueType string

const (
	ValueKind  ValueType = "kind"  // type terminal
	ValueInt   ValueType = "int"   // size, count, count_if
	ValueBool  ValueType = "bool"  // all_of, any_of, none_of
	ValueError ValueType = "error" // contract violation
)

// Value is the outcome of a pipeline terminal. A contract violation is an
// outcome like any other: it is deterministic, so it is memoized and
// replayed.
type Value struct {
	Type    ValueType
	Kind    ir.Kind
	Int     int64
	Bool    bool
	Code    ir.ContractErrorCode
	Message string
}

// KindValue wraps a materialized kind.
func KindValue(k ir.Kind) Value {
	return Value{Type: ValueKind, Kind: k}
}

// IntValue wraps a count.
func IntValue(n int) Value {
	return Value{Type: ValueInt, Int: int64(n)}
}

// BoolValue wraps a predicate result.
func BoolValue(b bool) Value {
	return Value{Type: ValueBool, Bool: b}
}

// errorValue converts a contract violation into a Value. Any other error
// is returned unchanged: it is an engine failure, not an outcome.
func errorValue(err error) (Value, error) {
	var ce *ir.ContractError
	if errors.As(err, &ce) {
		return Value{Type: ValueError, Code: ce.Code, Message: err.Error()}, nil
	}
	return Value{}, err
}

// Failed reports whether the value is a contract violation.
func (v Value) Failed() bool {
	return v.Type == ValueError
}

// String renders the value for humans: a kind in container<...> form, a
// number, true/false, or the error message.
func (v Value) String() string {
	switch v.Type {
	case ValueKind:
		return v.Kind.String()
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueError:
		return v.Message
	}
	return "<invalid>"
}

// Encode returns the canonical map form stored in the memo table.
func (v Value) Encode() map[string]any {
	switch v.Type {
	case ValueKind:
		return map[string]any{"kind": ir.EncodeKind(v.Kind)}
	case ValueInt:
		return map[string]any{"int": v.Int}
	case ValueBool:
		return map[string]any{"bool": v.Bool}
	case ValueError:
		return map[string]any{"error": map[string]any{
			"code":    string(v.Code),
			"message": v.Message,
		}}
	}
	return map[string]any{}
}

// Marshal returns the canonical JSON text of the value.
func (v Value) Marshal() (string, error) {
	data, err := ir.MarshalCanonical(v.Encode())
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// DecodeValue parses text produced by Marshal.
func DecodeValue(text string) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return Value{}, fmt.Errorf("decode value: %w", err)
	}
	if len(obj) != 1 {
		return Value{}, fmt.Errorf("decode value: expected one field, got %d", len(obj))
	}

	if raw, ok := obj["kind"]; ok {
		k, err := ir.DecodeKindValue(raw)
		if err != nil {
			return Value{}, fmt.Errorf("decode value: %w", err)
		}
		return KindValue(k), nil
	}
	if raw, ok := obj["int"]; ok {
		num, ok := raw.(json.Number)
		if !ok {
			return Value{}, fmt.Errorf("decode value: int must be a number")
		}
		n, err := num.Int64()
		if err != nil {
			return Value{}, fmt.Errorf("decode value: %w", err)
		}
		return Value{Type: ValueInt, Int: n}, nil
	}
	if raw, ok := obj["bool"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("decode value: bool must be a boolean")
		}
		return BoolValue(b), nil
	}
	if raw, ok := obj["error"]; ok {
		e, ok := raw.(map[string]any)
		if !ok {
			return Value{}, fmt.Errorf("decode value: error must be an object")
		}
		code, _ := e["code"].(string)
		msg, _ := e["message"].(string)
		if code == "" {
			return Value{}, fmt.Errorf("decode value: error code missing")
		}
		return Value{Type: ValueError, Code: ir.ContractErrorCode(code), Message: msg}, nil
	}

	return Value{}, fmt.Errorf("decode value: unknown value form")
}
