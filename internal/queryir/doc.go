// Package queryir provides a small query intermediate representation (IR)
// over the memo database.
//
// Tools that inspect a memo table (the trace command, replay, tests) build
// queries as values instead of SQL strings. A backend compiles them; the
// only backend today is querysql, which targets SQLite:
//
//	[trace flags] → [Query IR] → [SQL Backend]
//
// FRAGMENT:
//
// The IR covers what read-only inspection of the memo table needs:
//   - Select(from, columns, filter) - table access with filtering
//   - Join(left, right, on) - inner equi-join; rows carry the left columns
//   - Predicates: Equals, HasPrefix, After, And
//
// It deliberately has no NULLs, no outer joins, no aggregation and no OR.
// Every column a query names must exist in Schema, and literal values must
// match the column type (string for text, int64 for integer columns).
// Validate reports every violation; backends refuse invalid queries.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package implement them, so backends can switch
// exhaustively:
//
//	switch q := query.(type) {
//	case Select:
//	    // Handle select
//	case Join:
//	    // Handle join
//	}
//
// ORDERING:
//
// Queries carry no ORDER BY. Each table has one stable order (memo rows by
// seq then key, runs by id) and backends always apply it, so the same
// database yields the same rows in the same order on every read.
package queryir
