package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// A scenario loads one CUE program, evaluates some of its pipelines and
// checks what they produced and how the memo table behaved.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory holding the CUE program.
	// Relative paths are resolved against the base path given to
	// LoadScenarioWithBasePath (the scenario's own directory for LoadScenario).
	Specs string `yaml:"specs"`

	// RunID is the fixed run ID recorded in memo rows.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Setup lists pipelines evaluated before the cases, typically to warm
	// the memo table. Their outcomes are traced but not checked; a runtime
	// error aborts the run.
	Setup []string `yaml:"setup,omitempty"`

	// Cases are evaluated in order, each against its expectation.
	Cases []Case `yaml:"cases"`

	// Assertions validate the trace and the final memo table.
	// Supported types: trace_contains, trace_order, trace_count, memo_rows,
	// cache_hits
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Case evaluates one pipeline.
type Case struct {
	// Pipeline names a pipeline of the program.
	Pipeline string `yaml:"pipeline"`

	// Expect is the expected outcome. If nil, the case only has to
	// evaluate without a runtime error.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a case. At most one of
// Type, Int, Bool and Error may be set.
type ExpectClause struct {
	// Type is the rendered kind of a type terminal, e.g. "tuple<int, char>".
	Type string `yaml:"type,omitempty"`

	// Int is the value of a size, count or count_if terminal.
	Int *int64 `yaml:"int,omitempty"`

	// Bool is the value of an all_of, any_of or none_of terminal.
	Bool *bool `yaml:"bool,omitempty"`

	// Error is the expected contract error code, e.g. "OUT_OF_BOUNDS".
	Error string `yaml:"error,omitempty"`

	// Cached, if set, requires the result to come from (or bypass) the
	// memo table.
	Cached *bool `yaml:"cached,omitempty"`
}

// Assertion validates the trace or the memo table.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": pipeline appears in the trace, optionally with value
	// - "trace_order": pipelines first appear in the given order
	// - "trace_count": pipeline appears exactly Count times
	// - "memo_rows": the memo table holds exactly Count rows
	// - "cache_hits": exactly Count evaluations were memo hits
	Type string `yaml:"type"`

	// Pipeline is the pipeline name (trace_contains, trace_count).
	Pipeline string `yaml:"pipeline,omitempty"`

	// Value is the expected rendered value (trace_contains, optional).
	Value string `yaml:"value,omitempty"`

	// Pipelines is the expected order (trace_order).
	Pipelines []string `yaml:"pipelines,omitempty"`

	// Count is the expected number (trace_count, memo_rows, cache_hits).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertMemoRows      = "memo_rows"
	AssertCacheHits     = "cache_hits"
)

// LoadScenario reads and parses a scenario YAML file. The specs path is
// resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the specs path relative to basePath.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) && basePath != "" {
		scenario.Specs = filepath.Join(basePath, scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}
	if info, err := os.Stat(s.Specs); err != nil {
		return fmt.Errorf("specs directory not found: %s", s.Specs)
	} else if !info.IsDir() {
		return fmt.Errorf("specs is not a directory: %s", s.Specs)
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, name := range s.Setup {
		if name == "" {
			return fmt.Errorf("setup[%d]: pipeline name is required", i)
		}
	}

	for i, c := range s.Cases {
		if c.Pipeline == "" {
			return fmt.Errorf("cases[%d]: pipeline is required", i)
		}
		if c.Expect != nil {
			if err := validateExpect(c.Expect); err != nil {
				return fmt.Errorf("cases[%d].expect: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateExpect(e *ExpectClause) error {
	set := 0
	if e.Type != "" {
		set++
	}
	if e.Int != nil {
		set++
	}
	if e.Bool != nil {
		set++
	}
	if e.Error != "" {
		set++
	}
	if set > 1 {
		return fmt.Errorf("at most one of type, int, bool and error may be set")
	}
	if set == 0 && e.Cached == nil {
		return fmt.Errorf("expect is empty")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Pipeline == "" {
			return fmt.Errorf("assertions[%d]: pipeline is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Pipelines) == 0 {
			return fmt.Errorf("assertions[%d]: pipelines list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Pipeline == "" {
			return fmt.Errorf("assertions[%d]: pipeline is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertMemoRows, AssertCacheHits:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
