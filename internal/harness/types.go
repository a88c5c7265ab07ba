package harness

// Trace phases.
const (
	PhaseSetup = "setup"
	PhaseCase  = "case"
)

// TraceEvent records one pipeline evaluation of a scenario run.
type TraceEvent struct {
	Phase    string `json:"phase"` // "setup" or "case"
	Pipeline string `json:"pipeline"`
	Terminal string `json:"terminal,omitempty"`
	Value    string `json:"value,omitempty"` // rendered terminal value
	Code     string `json:"code,omitempty"`  // contract or runtime error code
	Error    string `json:"error,omitempty"` // runtime error message
	Cached   bool   `json:"cached"`
	Seq      int64  `json:"seq"`
	Key      string `json:"key,omitempty"` // memo key, not part of golden snapshots
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every case expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace lists every evaluation in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// MemoRows is the number of rows in the memo table after the run.
	MemoRows int `json:"memo_rows"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an evaluation to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
