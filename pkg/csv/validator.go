package csv

// Validator checks the fields of one row and turns them into a value of type T.
//
// Parse either returns the row value or fails with a descriptive structural
// error. A parse call stops at the first failure and returns that error
// wrapped in a *ParseError.
//
// Implementations are supplied by the caller; the bundled ones are Raw, Arity,
// Tuple, Schema and Struct.
type Validator[T any] interface {
	Parse(fields []string) (T, error)
}

// ValidatorFunc is a function adapter for the Validator interface.
type ValidatorFunc[T any] func(fields []string) (T, error)

// Parse implements Validator.
func (f ValidatorFunc[T]) Parse(fields []string) (T, error) {
	return f(fields)
}

// Raw returns a validator that accepts every row unchanged.
func Raw() Validator[[]string] {
	return ValidatorFunc[[]string](func(fields []string) ([]string, error) {
		return fields, nil
	})
}

// ArityValidator accepts rows with exactly N fields and returns them unchanged.
type ArityValidator struct {
	N int
}

// Arity returns a validator enforcing exactly n fields per row.
func Arity(n int) ArityValidator {
	return ArityValidator{N: n}
}

// Parse implements Validator.
func (v ArityValidator) Parse(fields []string) ([]string, error) {
	if len(fields) != v.N {
		return nil, fieldCountError(len(fields), v.N, "")
	}
	return fields, nil
}

// Map returns a validator that runs v and then transforms its result with fn.
// An error from either step rejects the row.
//
// Example:
//
//	ages := csv.Map[[]interface{}, int64](csv.Tuple(csv.ColumnTypeString, csv.ColumnTypeInt),
//	    func(t []interface{}) (int64, error) { return t[1].(int64), nil })
func Map[T, U any](v Validator[T], fn func(T) (U, error)) Validator[U] {
	return ValidatorFunc[U](func(fields []string) (U, error) {
		t, err := v.Parse(fields)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(t)
	})
}

// TupleValidator accepts rows with exactly one field per column and returns
// the coerced values in column order.
type TupleValidator struct {
	Columns []ColumnDefinition
}

// Tuple returns a validator for a fixed-arity row of the given types.
//
// Example:
//
//	people := csv.Tuple(csv.ColumnTypeString, csv.ColumnTypeNumber)
//	rows, err := csv.ParseFileWith[[]interface{}]("people.csv", people)
func Tuple(types ...ColumnType) *TupleValidator {
	cols := make([]ColumnDefinition, len(types))
	for i, t := range types {
		cols[i] = ColumnDefinition{Type: t}
	}
	return &TupleValidator{Columns: cols}
}

// NewTuple returns a tuple validator with full column definitions.
func NewTuple(cols ...ColumnDefinition) *TupleValidator {
	return &TupleValidator{Columns: cols}
}

// Parse implements Validator.
func (v *TupleValidator) Parse(fields []string) ([]interface{}, error) {
	if len(fields) != len(v.Columns) {
		return nil, fieldCountError(len(fields), len(v.Columns), "")
	}
	out := make([]interface{}, len(fields))
	for i, col := range v.Columns {
		val, err := col.coerce(i, fields[i])
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}
