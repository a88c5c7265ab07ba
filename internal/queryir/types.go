package queryir

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
//
// Query types:
//   - Select: Table access with filtering and an explicit column list
//   - Join: Inner join of two selects
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: field = literal
//   - HasPrefix: text field starts with a literal
//   - After: integer field > literal
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents a basic table access query with filtering.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <table order>
//
// Example:
//
//	Select{
//	  From:    TableMemo,
//	  Columns: []string{"key", "seq"},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "pipeline", Value: "reversed"},
//	    After{Field: "seq", Value: 10},
//	  }},
//	}
//
// Translates to SQL:
//
//	SELECT key, seq FROM memo_results
//	WHERE pipeline = ? AND seq > ?
//	ORDER BY seq ASC, key COLLATE BINARY ASC
//
// A nil Columns slice selects every column of From in schema order. An
// empty non-nil slice selects nothing, which is only useful on the right
// side of a Join.
type Select struct {
	From    Table
	Columns []string
	Filter  Predicate // nil = no filter
}

func (Select) queryNode() {}

// Join represents an inner equi-join of two selects.
//
// Semantics:
//
//	SELECT <left columns> FROM <left> JOIN <right> ON left.<on.Left> = right.<on.Right>
//	WHERE <left filter> AND <right filter>
//
// Rows carry the left columns only; the right side narrows which left rows
// are returned. Its Columns must be empty.
//
// Example (memo rows written by engine 0.1.0):
//
//	Join{
//	  Left:  MemoRows(nil),
//	  Right: Select{From: TableRuns, Columns: []string{}, Filter: Equals{Field: "engine_version", Value: "0.1.0"}},
//	  On:    On{Left: "run_id", Right: "id"},
//	}
type Join struct {
	Left  Select
	Right Select
	On    On
}

func (Join) queryNode() {}

// On is the join condition: Left names a column of the left table, Right a
// column of the right table of the same type.
type On struct {
	Left  string
	Right string
}

// Equals represents a field-equals-literal predicate.
//
// Value must be a string for text columns and an int64 (or int) for
// integer columns. nil is never valid; the fragment has no NULLs.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// HasPrefix matches text fields starting with Prefix, byte for byte.
// Unlike LIKE it treats % and _ literally.
type HasPrefix struct {
	Field  string
	Prefix string
}

func (HasPrefix) predicateNode() {}

// After matches integer fields strictly greater than Value.
type After struct {
	Field string
	Value int64
}

func (After) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
