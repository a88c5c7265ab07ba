package ir

// NOTE: These are store-layer records. Spec and Result hold canonical JSON
// text so rows compare byte-for-byte across runs.

// Run identifies one evaluator session writing to the store.
type Run struct {
	ID            string `json:"id"` // UUIDv7, or fixed in tests
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// MemoEntry is one memo table row: a resolved pipeline and its outcome.
type MemoEntry struct {
	Key      string `json:"key"`      // PipelineKey of Spec
	Pipeline string `json:"pipeline"` // Declared name, informational only
	Spec     string `json:"spec"`     // Canonical resolved pipeline
	Result   string `json:"result"`   // Canonical outcome
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"` // Logical clock
}
