// Package querysql compiles queryir queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/kindseq/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// Every query gets the stable ORDER BY of its table, and every literal is a
// ? parameter. Table and column names are interpolated only after
// queryir.Validate has checked them against queryir.Schema.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error); invalid queries are refused.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if res := queryir.Validate(q); !res.Valid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(res.Errors, "; "))
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Join:
		return c.compileJoin(query)
	case *queryir.Join:
		return c.compileJoin(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(queryir.OutputColumns(q), ", "), q.From)

	var params []any
	if q.Filter != nil {
		where, p, err := c.compilePredicate("", q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE " + where)
		params = p
	}

	b.WriteString(" ORDER BY " + stableOrderKey(q.From, ""))
	return b.String(), params, nil
}

func (c *SQLCompiler) compileJoin(j queryir.Join) (string, []any, error) {
	left, right := string(j.Left.From), string(j.Right.From)

	cols := queryir.OutputColumns(j)
	qualified := make([]string, len(cols))
	for i, col := range cols {
		qualified[i] = left + "." + col
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s INNER JOIN %s ON %s.%s = %s.%s",
		strings.Join(qualified, ", "), left, right, left, j.On.Left, right, j.On.Right)

	var conds []string
	var params []any
	for _, side := range []queryir.Select{j.Left, j.Right} {
		if side.Filter == nil {
			continue
		}
		sql, p, err := c.compilePredicate(string(side.From), side.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile %s filter: %w", side.From, err)
		}
		conds = append(conds, sql)
		params = append(params, p...)
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	b.WriteString(" ORDER BY " + stableOrderKey(j.Left.From, left))
	return b.String(), params, nil
}

// stableOrderKey returns the ORDER BY clause of a table.
// COLLATE BINARY keeps text ordering identical across SQLite builds.
func stableOrderKey(t queryir.Table, qualifier string) string {
	col := func(name string) string {
		if qualifier == "" {
			return name
		}
		return qualifier + "." + name
	}

	switch t {
	case queryir.TableMemo:
		return col("seq") + " ASC, " + col("key") + " COLLATE BINARY ASC"
	default:
		return col("id") + " COLLATE BINARY ASC"
	}
}

// compilePredicate compiles a predicate to a WHERE fragment. Fields are
// prefixed with qualifier when it is set.
func (c *SQLCompiler) compilePredicate(qualifier string, p queryir.Predicate) (string, []any, error) {
	field := func(name string) string {
		if qualifier == "" {
			return name
		}
		return qualifier + "." + name
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(field(pred.Field), pred)
	case *queryir.Equals:
		return c.compileEquals(field(pred.Field), *pred)
	case queryir.HasPrefix:
		return compilePrefix(field(pred.Field), pred)
	case *queryir.HasPrefix:
		return compilePrefix(field(pred.Field), *pred)
	case queryir.After:
		return field(pred.Field) + " > ?", []any{pred.Value}, nil
	case *queryir.After:
		return field(pred.Field) + " > ?", []any{pred.Value}, nil
	case queryir.And:
		return c.compileAnd(qualifier, pred)
	case *queryir.And:
		return c.compileAnd(qualifier, *pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileEquals(field string, eq queryir.Equals) (string, []any, error) {
	param, err := literalParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value of %s: %w", eq.Field, err)
	}
	return field + " = ?", []any{param}, nil
}

// compilePrefix compares the leading bytes as BLOBs, so LIKE wildcards and
// multi-byte characters need no escaping.
func compilePrefix(field string, hp queryir.HasPrefix) (string, []any, error) {
	sql := fmt.Sprintf("substr(CAST(%s AS BLOB), 1, ?) = CAST(? AS BLOB)", field)
	return sql, []any{int64(len(hp.Prefix)), hp.Prefix}, nil
}

func (c *SQLCompiler) compileAnd(qualifier string, and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, p, err := c.compilePredicate(qualifier, pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// literalParam converts a literal to the Go type the SQLite driver binds.
func literalParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported literal type %T", v)
	}
}
