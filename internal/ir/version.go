package ir

// Version constants for the descriptor encoding and the evaluator.
const (
	// IRVersion is the descriptor encoding version stored with memo rows.
	IRVersion = "1"

	// EngineVersion is the kindseq evaluator version.
	EngineVersion = "0.1.0"
)
