package ir

// Program is a compiled set of kind, sequence and pipeline declarations.
type Program struct {
	Kinds     map[string]Atom         `json:"kinds"`
	Sequences map[string]SequenceDecl `json:"sequences"`
	Pipelines []PipelineSpec          `json:"pipelines"` // Declaration order (sorted by name)
}

// SequenceDecl declares a named sequence. Each entry of Kinds names either
// an atom from Program.Kinds or another declared sequence.
type SequenceDecl struct {
	Name      string    `json:"name"`
	Container Container `json:"container"`
	Kinds     []string  `json:"kinds"`
}

// PipelineSpec declares a lazy pipeline over a named input sequence.
type PipelineSpec struct {
	Name     string       `json:"name"`
	Input    string       `json:"input"`
	Steps    []StepSpec   `json:"steps"`
	Terminal TerminalSpec `json:"terminal"`
}

// StepSpec is one bound step. Args values are int64, string, []int64 or
// []string depending on the operation (see ValidOps).
type StepSpec struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
}

// TerminalSpec selects what a pipeline materializes to.
// Op is one of ValidTerminals; Arg names a kind (count) or a predicate
// (count_if, all_of, any_of, none_of).
type TerminalSpec struct {
	Op  string `json:"op"`
	Arg string `json:"arg,omitempty"`
}

// Terminal operations.
const (
	TerminalType    = "type"
	TerminalSize    = "size"
	TerminalCount   = "count"
	TerminalCountIf = "count_if"
	TerminalAllOf   = "all_of"
	TerminalAnyOf   = "any_of"
	TerminalNoneOf  = "none_of"
)

// ValidTerminals defines allowed terminal operations.
var ValidTerminals = map[string]bool{
	TerminalType:    true,
	TerminalSize:    true,
	TerminalCount:   true,
	TerminalCountIf: true,
	TerminalAllOf:   true,
	TerminalAnyOf:   true,
	TerminalNoneOf:  true,
}

// ArgType describes the shape of one step argument.
type ArgType string

const (
	ArgInt     ArgType = "int"      // int64
	ArgIntList ArgType = "int_list" // []int64
	ArgRef     ArgType = "ref"      // kind or sequence name
	ArgRefList ArgType = "ref_list" // []string of kind or sequence names
	ArgName    ArgType = "name"     // predicate, function or container name
)

// OpArg is one argument of a step operation.
type OpArg struct {
	Name     string
	Type     ArgType
	Optional bool
}

// ValidOps lists every chainable step and its arguments.
var ValidOps = map[string][]OpArg{
	"range":      {{Name: "start", Type: ArgInt}, {Name: "end", Type: ArgInt}, {Name: "step", Type: ArgInt, Optional: true}},
	"take":       {{Name: "n", Type: ArgInt}},
	"drop":       {{Name: "n", Type: ArgInt}},
	"fold":       {{Name: "fn", Type: ArgName}, {Name: "seed", Type: ArgRef}},
	"push_back":  {{Name: "kind", Type: ArgRef}},
	"push_front": {{Name: "kind", Type: ArgRef}},
	"pop_back":   {},
	"pop_front":  {},
	"reverse":    {},
	"filter":     {{Name: "pred", Type: ArgName}},
	"transform":  {{Name: "fn", Type: ArgName}},
	"concat":     {{Name: "with", Type: ArgRefList}},
	"append":     {{Name: "kinds", Type: ArgRefList}},
	"join":       {},
	"to":         {{Name: "container", Type: ArgName}},
	"head":       {},
	"tail":       {},
	"at":         {{Name: "index", Type: ArgInt}},
	"order":      {{Name: "indices", Type: ArgIntList}},
}
