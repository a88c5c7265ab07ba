package queryir

import "fmt"

// ValidationResult lists every problem found in a query.
type ValidationResult struct {
	// Valid is true when Errors is empty.
	Valid bool

	// Errors describes each problem, in traversal order.
	Errors []string
}

// Validate checks a query against Schema.
//
// Rules:
//  1. Tables and columns must exist in Schema
//  2. Literals must match the column type; nil (NULL) is never allowed
//  3. HasPrefix applies to text columns, After to integer columns
//  4. A join's right side selects no columns, and its On columns exist
//     and share a type
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{errors: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		Valid:  len(v.errors) == 0,
		Errors: v.errors,
	}
}

// validator accumulates errors during traversal.
type validator struct {
	errors []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addError("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Join:
		v.validateJoin(query)
	case *Join:
		v.validateJoin(*query)
	default:
		v.addError("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if _, ok := Schema[sel.From]; !ok {
		v.addError("unknown table %q", sel.From)
		return
	}
	for _, name := range sel.Columns {
		if _, ok := Lookup(sel.From, name); !ok {
			v.addError("unknown column %s.%s", sel.From, name)
		}
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.From, sel.Filter)
	}
}

func (v *validator) validateJoin(join Join) {
	v.validateSelect(join.Left)
	v.validateSelect(join.Right)

	if len(join.Right.Columns) > 0 {
		v.addError("join right side must select no columns, got %v", join.Right.Columns)
	}

	left, lok := Lookup(join.Left.From, join.On.Left)
	if !lok {
		v.addError("unknown join column %s.%s", join.Left.From, join.On.Left)
	}
	right, rok := Lookup(join.Right.From, join.On.Right)
	if !rok {
		v.addError("unknown join column %s.%s", join.Right.From, join.On.Right)
	}
	if lok && rok && left.Type != right.Type {
		v.addError("join columns %s.%s (%s) and %s.%s (%s) differ in type",
			join.Left.From, left.Name, left.Type, join.Right.From, right.Name, right.Type)
	}
}

func (v *validator) validatePredicate(table Table, p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addError("nil predicate")
	case Equals:
		v.validateEquals(table, pred)
	case *Equals:
		v.validateEquals(table, *pred)
	case HasPrefix:
		v.requireColumn(table, pred.Field, TypeText, "has_prefix")
	case *HasPrefix:
		v.requireColumn(table, pred.Field, TypeText, "has_prefix")
	case After:
		v.requireColumn(table, pred.Field, TypeInt, "after")
	case *After:
		v.requireColumn(table, pred.Field, TypeInt, "after")
	case And:
		v.validateAnd(table, pred)
	case *And:
		v.validateAnd(table, *pred)
	default:
		v.addError("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(table Table, eq Equals) {
	col, ok := Lookup(table, eq.Field)
	if !ok {
		v.addError("unknown column %s.%s", table, eq.Field)
		return
	}

	switch eq.Value.(type) {
	case nil:
		v.addError("column %s.%s compared to NULL", table, eq.Field)
	case string:
		if col.Type != TypeText {
			v.addError("column %s.%s is %s, got string literal", table, eq.Field, col.Type)
		}
	case int64, int:
		if col.Type != TypeInt {
			v.addError("column %s.%s is %s, got integer literal", table, eq.Field, col.Type)
		}
	default:
		v.addError("column %s.%s compared to unsupported literal %T", table, eq.Field, eq.Value)
	}
}

func (v *validator) requireColumn(table Table, field string, want ColumnType, op string) {
	col, ok := Lookup(table, field)
	if !ok {
		v.addError("unknown column %s.%s", table, field)
		return
	}
	if col.Type != want {
		v.addError("%s requires column type %s, %s.%s is %s", op, want, table, field, col.Type)
	}
}

func (v *validator) validateAnd(table Table, and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(table, sub)
	}
}
