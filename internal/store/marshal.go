package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/kindseq/internal/ir"
)

// canonicalize parses JSON text and re-encodes it with ir.MarshalCanonical.
// Numbers are decoded as json.Number so integers above 2^53 survive.
func canonicalize(field, text string) (string, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("%s: invalid JSON: %w", field, err)
	}
	if dec.More() {
		return "", fmt.Errorf("%s: trailing data after JSON value", field)
	}

	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return string(data), nil
}
