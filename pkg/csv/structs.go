package csv

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// StructValidator maps the fields of a row, by position, onto the exported
// fields of the struct type T.
//
// Struct tags:
//
//	Name  string     `csv:"name,required"` // column name "name", empty rejected
//	Age   int        `csv:"age"`           // converted with the int converter
//	Score *float64   `csv:"score"`         // pointer fields accept empty as nil
//	Born  time.Time  `csv:"born,type=date"` // time fields pick date, time or datetime
//	Notes string     `csv:"-"`             // not a column
//	Extra string                            // column named after the field
//
// Rows must have exactly one field per column.
type StructValidator[T any] struct {
	info *structInfo
}

// fieldSetter assigns an already coerced value to a struct field.
type fieldSetter func(field reflect.Value, v interface{}) error

// structInfo holds cached metadata about a struct type.
type structInfo struct {
	columns []ColumnDefinition
	// fields maps column index to struct field index
	fields  []int
	setters []fieldSetter
}

// Global cache for struct metadata
var structCache sync.Map // map[reflect.Type]*structInfo

var timeType = reflect.TypeOf(time.Time{})

// Struct returns a validator producing values of the struct type T.
func Struct[T any]() (*StructValidator[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("csv: Struct requires a struct type, got %s", t)
	}
	info, err := getStructInfo(t)
	if err != nil {
		return nil, err
	}
	return &StructValidator[T]{info: info}, nil
}

// MustStruct is like Struct but panics if T cannot be mapped.
func MustStruct[T any]() *StructValidator[T] {
	v, err := Struct[T]()
	if err != nil {
		panic(err)
	}
	return v
}

// Columns returns the column definitions derived from T, in order.
func (v *StructValidator[T]) Columns() []ColumnDefinition {
	return append([]ColumnDefinition(nil), v.info.columns...)
}

// Parse implements Validator.
func (v *StructValidator[T]) Parse(fields []string) (T, error) {
	var out T
	cols := v.info.columns
	if len(fields) != len(cols) {
		return out, fieldCountError(len(fields), len(cols), "")
	}

	rv := reflect.ValueOf(&out).Elem()
	for i, col := range cols {
		val, err := col.coerce(i, fields[i])
		if err != nil {
			var zero T
			return zero, err
		}
		if val == nil {
			continue
		}
		if err := v.info.setters[i](rv.Field(v.info.fields[i]), val); err != nil {
			var zero T
			return zero, &ValidationError{Column: i, Name: col.Name, Value: fields[i], Err: ErrCoerce, Message: err.Error()}
		}
	}
	return out, nil
}

// SchemaFromStruct creates a schema from a struct type using csv tags.
// The schema produces a Record instead of a struct value.
func SchemaFromStruct(v interface{}) (*Schema, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("SchemaFromStruct requires a struct type, got %v", t)
	}

	info, err := getStructInfo(t)
	if err != nil {
		return nil, err
	}
	schema := NewSchema()
	for _, col := range info.columns {
		schema.AddColumn(col)
	}
	return schema, nil
}

// getStructInfo retrieves or computes struct metadata for the given type.
// Results are cached for performance.
func getStructInfo(structType reflect.Type) (*structInfo, error) {
	if cached, ok := structCache.Load(structType); ok {
		return cached.(*structInfo), nil
	}

	info, err := computeStructInfo(structType)
	if err != nil {
		return nil, err
	}
	actual, _ := structCache.LoadOrStore(structType, info)
	return actual.(*structInfo), nil
}

// computeStructInfo builds the column list and setters for a struct type.
func computeStructInfo(structType reflect.Type) (*structInfo, error) {
	info := &structInfo{}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		// Skip unexported fields
		if field.PkgPath != "" {
			continue
		}
		tag := field.Tag.Get("csv")
		if tag == "-" {
			continue
		}

		parts := strings.Split(tag, ",")
		col := ColumnDefinition{Name: field.Name}
		if parts[0] != "" {
			col.Name = parts[0]
		}

		base := field.Type
		if base.Kind() == reflect.Ptr {
			base = base.Elem()
			col.Nullable = true
		}
		col.Type = goTypeToColumnType(base)
		if col.Type == ColumnTypeAny {
			return nil, fmt.Errorf("csv: unsupported field type %s for field %s", field.Type, field.Name)
		}

		for _, opt := range parts[1:] {
			switch {
			case opt == "required":
				col.Required = true
			case opt == "nullable":
				col.Nullable = true
			case strings.HasPrefix(opt, "type="):
				t, err := ParseColumnType(strings.TrimPrefix(opt, "type="))
				if err != nil {
					return nil, fmt.Errorf("csv: field %s: %w", field.Name, err)
				}
				if !compatibleColumnType(base, t) {
					return nil, fmt.Errorf("csv: field %s: type %s does not fit %s", field.Name, t, field.Type)
				}
				col.Type = t
			}
		}

		setter, err := createSetter(field.Type)
		if err != nil {
			return nil, fmt.Errorf("csv: field %s: %w", field.Name, err)
		}
		info.columns = append(info.columns, col)
		info.fields = append(info.fields, i)
		info.setters = append(info.setters, setter)
	}

	return info, nil
}

// goTypeToColumnType maps Go types to column types.
func goTypeToColumnType(t reflect.Type) ColumnType {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ColumnTypeInt
	case reflect.Float32, reflect.Float64:
		return ColumnTypeFloat
	case reflect.Bool:
		return ColumnTypeBool
	case reflect.String:
		return ColumnTypeString
	default:
		if t == timeType {
			return ColumnTypeDateTime
		}
		return ColumnTypeAny
	}
}

// compatibleColumnType reports whether a type= tag option may override the
// column type derived from the Go type.
func compatibleColumnType(t reflect.Type, colType ColumnType) bool {
	derived := goTypeToColumnType(t)
	switch derived {
	case ColumnTypeDateTime:
		return colType == ColumnTypeDate || colType == ColumnTypeTime || colType == ColumnTypeDateTime
	case ColumnTypeFloat:
		return colType == ColumnTypeFloat || colType == ColumnTypeNumber
	default:
		return colType == derived
	}
}

// createSetter returns a pre-computed setter function for the given field type.
func createSetter(fieldType reflect.Type) (fieldSetter, error) {
	if fieldType.Kind() == reflect.Ptr {
		elemType := fieldType.Elem()
		inner, err := createSetter(elemType)
		if err != nil {
			return nil, err
		}
		return func(field reflect.Value, v interface{}) error {
			p := reflect.New(elemType)
			if err := inner(p.Elem(), v); err != nil {
				return err
			}
			field.Set(p)
			return nil
		}, nil
	}

	switch fieldType.Kind() {
	case reflect.String:
		return func(field reflect.Value, v interface{}) error {
			field.SetString(v.(string))
			return nil
		}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(field reflect.Value, v interface{}) error {
			i := v.(int64)
			if field.OverflowInt(i) {
				return fmt.Errorf("value %d overflows %s", i, field.Type())
			}
			field.SetInt(i)
			return nil
		}, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(field reflect.Value, v interface{}) error {
			i := v.(int64)
			if i < 0 || field.OverflowUint(uint64(i)) {
				return fmt.Errorf("value %d overflows %s", i, field.Type())
			}
			field.SetUint(uint64(i))
			return nil
		}, nil

	case reflect.Float32, reflect.Float64:
		return func(field reflect.Value, v interface{}) error {
			f := v.(float64)
			if field.OverflowFloat(f) {
				return fmt.Errorf("value %v overflows %s", f, field.Type())
			}
			field.SetFloat(f)
			return nil
		}, nil

	case reflect.Bool:
		return func(field reflect.Value, v interface{}) error {
			field.SetBool(v.(bool))
			return nil
		}, nil

	case reflect.Struct:
		if fieldType == timeType {
			return func(field reflect.Value, v interface{}) error {
				field.Set(reflect.ValueOf(v.(time.Time)))
				return nil
			}, nil
		}
	}
	return nil, fmt.Errorf("unsupported field type %s", fieldType)
}
