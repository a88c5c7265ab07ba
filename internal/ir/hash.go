package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainKind     = "kindseq/kind/v1"
	DomainPipeline = "kindseq/pipeline/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// KindHash computes the structural identity of a kind.
// Structurally equal kinds always hash equal.
func KindHash(k Kind) (string, error) {
	canonical, err := MarshalKind(k)
	if err != nil {
		return "", fmt.Errorf("KindHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainKind, canonical), nil
}

// PipelineKey computes the memo key of a fully resolved pipeline.
//
// The object must already have every name reference replaced by the
// structural form of the kind it names (see EncodeKind); two pipelines that
// resolve to the same input, steps and terminal share a key regardless of
// the names used to declare them.
func PipelineKey(resolved map[string]any) (string, error) {
	canonical, err := MarshalCanonical(resolved)
	if err != nil {
		return "", fmt.Errorf("PipelineKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPipeline, canonical), nil
}

// MustKindHash is like KindHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustKindHash(k Kind) string {
	h, err := KindHash(k)
	if err != nil {
		panic(err)
	}
	return h
}
