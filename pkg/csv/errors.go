// Package csv provides error types for CSV parsing and row validation.
package csv

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors reported by the bundled validators. Every *ValidationError
// unwraps to exactly one of them.
var (
	// ErrFieldCount indicates a row has the wrong number of fields.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrCoerce indicates a field cannot be converted to its column type.
	ErrCoerce = errors.New("value cannot be converted")

	// ErrRequired indicates a required field is empty.
	ErrRequired = errors.New("required field is empty")

	// ErrNotAllowed indicates a field is outside its column's allowed values.
	ErrNotAllowed = errors.New("value not in allowed set")

	// ErrLength indicates a field is shorter or longer than its column permits.
	ErrLength = errors.New("value length out of range")

	// ErrNoValidator indicates a nil validator was given for a row type other than []string.
	ErrNoValidator = errors.New("validator is required for non-string rows")
)

// SourceError reports a failure to open or read the line source.
// The parser never generates it on its own; it wraps what the source returned.
type SourceError struct {
	// Path is the file name, or empty for readers and custom sources.
	Path string
	// Line is the number of lines read successfully before the failure.
	Line int
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with the source location.
func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString("source error")
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " after line %d", e.Line)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// ParseError reports a row rejected by the validator. Err is the validator's
// error exactly as returned, so errors.Is and errors.As see through ParseError.
type ParseError struct {
	// Line is the 1-indexed line the rejected row came from.
	Line int
	// Fields are the tokenized fields that were handed to the validator.
	Fields []string
	// Err is the validator's error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
}

// Unwrap returns the validator's error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is the structural error produced by the bundled validators.
type ValidationError struct {
	// Column is the 0-indexed field position, or -1 for row-level failures.
	Column int
	// Name is the column name, if the validator has one.
	Name string
	// Value is the offending field text.
	Value string
	// Err is the violated rule: ErrFieldCount, ErrCoerce, ErrRequired,
	// ErrNotAllowed, ErrLength, or an error from a custom column hook.
	Err error
	// Message adds detail to Err.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Column < 0 {
		return msg
	}
	if e.Name != "" {
		return fmt.Sprintf("column %d (%q): %s (value: %q)", e.Column, e.Name, msg, e.Value)
	}
	return fmt.Sprintf("column %d: %s (value: %q)", e.Column, msg, e.Value)
}

// Unwrap returns the violated rule.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// fieldCountError builds the row-level arity error.
func fieldCountError(got, want int, relation string) *ValidationError {
	return &ValidationError{
		Column:  -1,
		Err:     ErrFieldCount,
		Message: fmt.Sprintf("got %d, expected %s%d", got, relation, want),
	}
}
