// Package csv provides type converters for CSV field values.
package csv

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Converter is the interface for type converters.
// Converters transform string field values into typed Go values.
type Converter interface {
	// Convert transforms a string value into the target type.
	// Returns the converted value and any error encountered.
	Convert(value string) (interface{}, error)
}

// ConverterFunc is a function adapter for the Converter interface.
type ConverterFunc func(string) (interface{}, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(value string) (interface{}, error) {
	return f(value)
}

// IntConverter converts string values to int64.
type IntConverter struct {
	// Base is the numeric base for parsing (default: 10)
	Base int
}

// Convert implements Converter for IntConverter.
func (c IntConverter) Convert(value string) (interface{}, error) {
	if value == "" {
		return int64(0), nil
	}
	base := c.Base
	if base == 0 {
		base = 10
	}
	return strconv.ParseInt(strings.TrimSpace(value), base, 64)
}

// FloatConverter converts string values to float64.
// Only finite decimal numbers are accepted: NaN, infinities and hex floats fail.
type FloatConverter struct{}

// Convert implements Converter for FloatConverter.
func (c FloatConverter) Convert(value string) (interface{}, error) {
	if value == "" {
		return float64(0), nil
	}
	v := strings.TrimSpace(value)
	digits := strings.TrimLeft(v, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return nil, fmt.Errorf("cannot convert %q to float: hex notation", value)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot convert %q to float: not a finite number", value)
	}
	return f, nil
}

// BoolConverter converts string values to bool.
// Recognizes: true/false, 1/0, yes/no, y/n, on/off, t/f (case-insensitive)
type BoolConverter struct{}

// Convert implements Converter for BoolConverter.
func (c BoolConverter) Convert(value string) (interface{}, error) {
	if value == "" {
		return false, nil
	}
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "true", "1", "yes", "y", "on", "t":
		return true, nil
	case "false", "0", "no", "n", "off", "f":
		return false, nil
	default:
		return false, fmt.Errorf("cannot convert %q to bool", value)
	}
}

// TimeLayoutConverter converts string values to time.Time using a fixed layout.
type TimeLayoutConverter struct {
	// Layout is the time.Parse layout.
	Layout string
	// Location is the timezone for parsing (default: UTC)
	Location *time.Location
}

// Convert implements Converter for TimeLayoutConverter.
func (c TimeLayoutConverter) Convert(value string) (interface{}, error) {
	if value == "" {
		return time.Time{}, nil
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(c.Layout, strings.TrimSpace(value), loc)
}

// Default layouts used by the built-in time converters.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// ConverterRegistry manages named converters.
type ConverterRegistry struct {
	converters map[string]Converter
}

// NewConverterRegistry creates a new converter registry with built-in converters.
func NewConverterRegistry() *ConverterRegistry {
	r := &ConverterRegistry{
		converters: make(map[string]Converter),
	}
	r.Register(string(ColumnTypeInt), IntConverter{})
	r.Register(string(ColumnTypeFloat), FloatConverter{})
	r.Register(string(ColumnTypeNumber), FloatConverter{})
	r.Register(string(ColumnTypeBool), BoolConverter{})
	r.Register(string(ColumnTypeDate), TimeLayoutConverter{Layout: DateLayout})
	r.Register(string(ColumnTypeTime), TimeLayoutConverter{Layout: TimeLayout})
	r.Register(string(ColumnTypeDateTime), TimeLayoutConverter{Layout: DateTimeLayout})
	return r
}

// Register adds a converter to the registry.
func (r *ConverterRegistry) Register(name string, conv Converter) {
	r.converters[name] = conv
}

// Get retrieves a converter by name.
func (r *ConverterRegistry) Get(name string) (Converter, bool) {
	conv, ok := r.converters[name]
	return conv, ok
}

// Names returns the registered converter names in sorted order.
func (r *ConverterRegistry) Names() []string {
	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtinConverters is read-only after package initialization.
var builtinConverters = NewConverterRegistry()
