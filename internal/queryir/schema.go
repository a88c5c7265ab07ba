package queryir

// Table names a table of the memo database.
type Table string

const (
	TableMemo Table = "memo_results"
	TableRuns Table = "runs"
)

// ColumnType is the storage class of a column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
)

func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInt:
		return "integer"
	default:
		return "unknown"
	}
}

// Column is one queryable column.
type Column struct {
	Name string
	Type ColumnType
}

// Schema lists the queryable columns of every table in declaration order.
// It mirrors store/schema.sql.
var Schema = map[Table][]Column{
	TableMemo: {
		{Name: "key", Type: TypeText},
		{Name: "pipeline", Type: TypeText},
		{Name: "spec", Type: TypeText},
		{Name: "result", Type: TypeText},
		{Name: "run_id", Type: TypeText},
		{Name: "seq", Type: TypeInt},
	},
	TableRuns: {
		{Name: "id", Type: TypeText},
		{Name: "engine_version", Type: TypeText},
		{Name: "ir_version", Type: TypeText},
	},
}

// Lookup returns the column name of table t.
func Lookup(t Table, name string) (Column, bool) {
	for _, c := range Schema[t] {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns every column name of t in schema order.
func ColumnNames(t Table) []string {
	cols := Schema[t]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// OutputColumns returns the columns a query produces, in order.
// A Select with nil Columns produces every column of its table.
// A Join produces the columns of its left side.
func OutputColumns(q Query) []string {
	switch query := q.(type) {
	case Select:
		return query.columns()
	case *Select:
		return query.columns()
	case Join:
		return query.Left.columns()
	case *Join:
		return query.Left.columns()
	default:
		return nil
	}
}

func (s Select) columns() []string {
	if s.Columns == nil {
		return ColumnNames(s.From)
	}
	return s.Columns
}

// MemoRows selects full memo rows matching filter (nil for all rows).
func MemoRows(filter Predicate) Select {
	return Select{
		From:    TableMemo,
		Columns: ColumnNames(TableMemo),
		Filter:  filter,
	}
}

// MemoRowsOfEngine selects full memo rows matching filter that were first
// written by a run of the given engine version.
func MemoRowsOfEngine(engineVersion string, filter Predicate) Join {
	return Join{
		Left: MemoRows(filter),
		Right: Select{
			From:    TableRuns,
			Columns: []string{},
			Filter:  Equals{Field: "engine_version", Value: engineVersion},
		},
		On: On{Left: "run_id", Right: "id"},
	}
}
