package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for hashing and storage.
// CRITICAL: This is the ONLY serialization used for memo keys and stored
// results, so equal descriptors always produce identical bytes.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats and no null (returns error)
//
// Kinds are encoded structurally: an Atom as {"atom":name,"size":n}, a
// Sequence as {"container":c,"kinds":[...]}.
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v)
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case Container:
		return marshalCanonicalString(string(val))
	case int:
		return []byte(strconv.Itoa(val)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number in canonical JSON: %s", val)
		}
		return []byte(strconv.FormatInt(n, 10)), nil
	case bool:
		return []byte(strconv.FormatBool(val)), nil
	case Atom:
		return marshalCanonicalObject(EncodeKind(val))
	case Sequence:
		return marshalCanonicalObject(EncodeKind(val))
	case []int:
		arr := make([]any, len(val))
		for i, n := range val {
			arr[i] = n
		}
		return marshalCanonicalArray(arr)
	case []int64:
		arr := make([]any, len(val))
		for i, n := range val {
			arr[i] = n
		}
		return marshalCanonicalArray(arr)
	case []Kind:
		arr := make([]any, len(val))
		for i, k := range val {
			arr[i] = EncodeKind(k)
		}
		return marshalCanonicalArray(arr)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalCanonicalArray(arr)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// EncodeKind converts a kind into its structural map form.
func EncodeKind(k Kind) map[string]any {
	switch val := k.(type) {
	case Atom:
		return map[string]any{"atom": val.Name, "size": val.Size}
	case Sequence:
		kinds := make([]any, len(val.kinds))
		for i, elem := range val.kinds {
			kinds[i] = EncodeKind(elem)
		}
		return map[string]any{"container": string(val.container), "kinds": kinds}
	default:
		return nil
	}
}

// MarshalKind is MarshalCanonical specialised to kinds.
func MarshalKind(k Kind) ([]byte, error) {
	if k == nil {
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	}
	return marshalCanonicalObject(EncodeKind(k))
}

// DecodeKind parses the structural JSON form produced by MarshalKind.
func DecodeKind(data []byte) (Kind, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return decodeKind(raw)
}

// DecodeKindValue is DecodeKind for a value already parsed by a
// json.Decoder with UseNumber enabled.
func DecodeKindValue(raw any) (Kind, error) {
	return decodeKind(raw)
}

func decodeKind(raw any) (Kind, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("kind must be an object, got %T", raw)
	}

	if name, ok := obj["atom"]; ok {
		s, ok := name.(string)
		if !ok {
			return nil, fmt.Errorf("atom name must be a string")
		}
		num, ok := obj["size"].(json.Number)
		if !ok {
			return nil, fmt.Errorf("atom %q: size must be an integer", s)
		}
		size, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("atom %q: size: %w", s, err)
		}
		return Atom{Name: s, Size: size}, nil
	}

	c, ok := obj["container"].(string)
	if !ok {
		return nil, fmt.Errorf("kind must have either \"atom\" or \"container\"")
	}
	rawKinds, ok := obj["kinds"].([]any)
	if !ok {
		return nil, fmt.Errorf("sequence %q: kinds must be an array", c)
	}
	kinds := make([]Kind, len(rawKinds))
	for i, rk := range rawKinds {
		k, err := decodeKind(rk)
		if err != nil {
			return nil, fmt.Errorf("kinds[%d]: %w", i, err)
		}
		kinds[i] = k
	}
	return Sequence{container: Container(c), kinds: kinds}, nil
}

// marshalCanonicalString produces a canonical JSON string with NFC normalization.
// Only control characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // CRITICAL: <, >, & must NOT be escaped
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters, leaving escaped backslashes
// (\\u2028 as text) untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) && string(data[i+2:i+5]) == "202" {
			switch data[i+5] {
			case '8':
				out = append(out, "\u2028"...)
				i += 5
				continue
			case '9':
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		// Any other escape: copy both bytes so the escaped char is skipped.
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// marshalCanonicalArray marshals an array to canonical JSON.
func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalCanonicalObject marshals an object with RFC 8785 key ordering.
func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// compareKeysRFC8785 compares strings by UTF-16 code units as RFC 8785 requires.
// Go's default string comparison uses UTF-8 which orders some keys differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
