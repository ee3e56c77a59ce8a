// Package csv provides column definitions and the record-of-fields validator.
package csv

import (
	"fmt"
	"strings"
)

// ColumnType represents the expected type of a column.
type ColumnType string

const (
	ColumnTypeString   ColumnType = "string"
	ColumnTypeInt      ColumnType = "int"
	ColumnTypeFloat    ColumnType = "float"
	ColumnTypeNumber   ColumnType = "number"
	ColumnTypeBool     ColumnType = "bool"
	ColumnTypeDate     ColumnType = "date"
	ColumnTypeTime     ColumnType = "time"
	ColumnTypeDateTime ColumnType = "datetime"
	ColumnTypeAny      ColumnType = "any"
)

// ParseColumnType returns the ColumnType named by s (case-insensitive).
// An empty name means ColumnTypeString.
func ParseColumnType(s string) (ColumnType, error) {
	t := ColumnType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "":
		return ColumnTypeString, nil
	case ColumnTypeString, ColumnTypeAny:
		return t, nil
	}
	if _, ok := builtinConverters.Get(string(t)); ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown column type %q", s)
}

// textual reports whether values of this type are kept as strings.
func (t ColumnType) textual() bool {
	return t == "" || t == ColumnTypeString || t == ColumnTypeAny
}

// ColumnDefinition defines the schema for a single column.
type ColumnDefinition struct {
	// Name is the column name. Schema uses it as the Record key.
	Name string
	// Type is the expected data type. Empty means ColumnTypeString.
	Type ColumnType
	// Required rejects empty values.
	Required bool
	// Nullable lets a typed column accept an empty value as nil.
	Nullable bool
	// Default replaces an empty value before any other check.
	Default string
	// Validator is an optional custom validation function run last.
	Validator func(value string) error
	// Converter overrides the built-in converter for Type.
	Converter Converter
	// AllowedValues restricts values to a specific set.
	AllowedValues []string
	// MinLength is the minimum string length (0 = no minimum).
	MinLength int
	// MaxLength is the maximum string length (0 = no maximum).
	MaxLength int
}

// Coerce checks value against the column and converts it to the column type.
//
// String and any columns produce string, int produces int64, float and number
// produce float64, bool produces bool, date/time/datetime produce time.Time.
// An empty value in a Nullable typed column produces nil.
func (c ColumnDefinition) Coerce(value string) (interface{}, error) {
	return c.coerce(-1, value)
}

func (c ColumnDefinition) coerce(index int, value string) (interface{}, error) {
	if value == "" && c.Default != "" {
		value = c.Default
	}
	fail := func(rule error, msg string) error {
		return &ValidationError{Column: index, Name: c.Name, Value: value, Err: rule, Message: msg}
	}

	if value == "" {
		switch {
		case c.Required:
			return nil, fail(ErrRequired, "")
		case c.Type.textual() && c.Converter == nil:
			return "", nil
		case c.Nullable:
			return nil, nil
		default:
			return nil, fail(ErrCoerce, fmt.Sprintf("empty value for %s column", c.Type))
		}
	}

	if len(c.AllowedValues) > 0 {
		found := false
		for _, allowed := range c.AllowedValues {
			if value == allowed {
				found = true
				break
			}
		}
		if !found {
			return nil, fail(ErrNotAllowed, fmt.Sprintf("allowed: %v", c.AllowedValues))
		}
	}

	if c.MinLength > 0 && len(value) < c.MinLength {
		return nil, fail(ErrLength, fmt.Sprintf("length %d is less than minimum %d", len(value), c.MinLength))
	}
	if c.MaxLength > 0 && len(value) > c.MaxLength {
		return nil, fail(ErrLength, fmt.Sprintf("length %d exceeds maximum %d", len(value), c.MaxLength))
	}

	var out interface{} = value
	conv := c.Converter
	if conv == nil && !c.Type.textual() {
		var ok bool
		if conv, ok = builtinConverters.Get(string(c.Type)); !ok {
			return nil, fail(ErrCoerce, fmt.Sprintf("unknown column type %q", c.Type))
		}
	}
	if conv != nil {
		v, err := conv.Convert(value)
		if err != nil {
			return nil, fail(ErrCoerce, fmt.Sprintf("not a valid %s", c.typeName()))
		}
		out = v
	}

	if c.Validator != nil {
		if err := c.Validator(value); err != nil {
			return nil, &ValidationError{Column: index, Name: c.Name, Value: value, Err: err}
		}
	}
	return out, nil
}

func (c ColumnDefinition) typeName() string {
	if c.Type == "" {
		return string(ColumnTypeString)
	}
	return string(c.Type)
}

// Record is a validated row keyed by column name.
type Record map[string]interface{}

// Schema validates rows as records of named, typed fields.
// Fields are matched to Columns by position.
type Schema struct {
	// Columns defines the expected columns in order.
	Columns []ColumnDefinition
	// AllowExtraColumns ignores fields beyond the last column instead of
	// failing with ErrFieldCount.
	AllowExtraColumns bool
	// AllowMissingColumns treats absent trailing fields as empty instead of
	// failing with ErrFieldCount.
	AllowMissingColumns bool
}

// NewSchema creates a new empty schema.
func NewSchema() *Schema {
	return &Schema{
		Columns:             make([]ColumnDefinition, 0),
		AllowExtraColumns:   false,
		AllowMissingColumns: false,
	}
}

// AddColumn adds a column definition to the schema.
func (s *Schema) AddColumn(col ColumnDefinition) *Schema {
	s.Columns = append(s.Columns, col)
	return s
}

// AddSimpleColumn adds a column with just name and type.
func (s *Schema) AddSimpleColumn(name string, colType ColumnType) *Schema {
	return s.AddColumn(ColumnDefinition{
		Name: name,
		Type: colType,
	})
}

// AddRequiredColumn adds a required column with name and type.
func (s *Schema) AddRequiredColumn(name string, colType ColumnType) *Schema {
	return s.AddColumn(ColumnDefinition{
		Name:     name,
		Type:     colType,
		Required: true,
	})
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Parse implements Validator. It stops at the first failing column.
func (s *Schema) Parse(fields []string) (Record, error) {
	n := len(s.Columns)
	if (len(fields) > n && !s.AllowExtraColumns) || (len(fields) < n && !s.AllowMissingColumns) {
		relation := ""
		switch {
		case s.AllowMissingColumns:
			relation = "at most "
		case s.AllowExtraColumns:
			relation = "at least "
		}
		return nil, fieldCountError(len(fields), n, relation)
	}

	rec := make(Record, n)
	for i, col := range s.Columns {
		var value string
		if i < len(fields) {
			value = fields[i]
		}
		v, err := col.coerce(i, value)
		if err != nil {
			return nil, err
		}
		rec[col.Name] = v
	}
	return rec, nil
}
