// Package csv provides a line-oriented CSV parser with optional row validation.
//
// Every line of the input becomes one row. A line is split on every comma and
// each piece is trimmed of surrounding white space. There is no quoting: a
// comma between double quotes still separates two fields, and the quote
// characters stay in the field text.
//
//	x, "y,z"   ->   ["x", "\"y", "z\""]
//
// # Rows
//
// Without a validator each row is the []string of its fields, and rows may
// have different lengths. With a Validator[T] each row is the T the validator
// returned for that line's fields.
//
// # All or nothing
//
// A parse call either returns every row or an error and no rows. The first
// rejected row stops the call with a *ParseError wrapping the validator's
// error; a failing input stops it with a *SourceError. Rows accumulated before
// the failure are discarded.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use by multiple goroutines.
// Each call owns its input and its accumulated rows. A single LineSource must not be
// shared between concurrent calls.
//
// # Example usage with ParseFile:
//
//	rows, err := csv.ParseFile("people.csv")
//	if err != nil {
//	    // handle error
//	}
//	// rows[0] is ["name", "age"]
//
// # Example usage with a validator:
//
//	people := csv.Tuple(csv.ColumnTypeString, csv.ColumnTypeNumber)
//	rows, err := csv.ParseFileWith[[]interface{}]("people.csv", people)
//	if err != nil {
//	    var perr *csv.ParseError
//	    if errors.As(err, &perr) {
//	        // perr.Line is the rejected line
//	    }
//	}
package csv

import (
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shapestone/shape-linecsv/internal/parser"
	"github.com/shapestone/shape-linecsv/internal/tokenizer"
)

// Delimiter is the field separator. It cannot be changed.
const Delimiter = tokenizer.Comma

// SplitLine splits one line into trimmed fields.
//
// A line without a comma yields one field equal to the trimmed line; an empty
// line yields a single empty field.
func SplitLine(line string) []string {
	return tokenizer.Split(line)
}

// Parse parses CSV from a string in memory.
//
// Example:
//
//	rows, err := csv.Parse("name,age\nAlice,23")
//	// rows is [["name" "age"] ["Alice" "23"]]
func Parse(input string) ([][]string, error) {
	return ParseReader(strings.NewReader(input))
}

// ParseReader parses CSV from any io.Reader. The reader is not closed.
func ParseReader(reader io.Reader) ([][]string, error) {
	return ParseReaderWith[[]string](reader, nil)
}

// ParseFile parses the named CSV file. The file is closed before ParseFile returns.
func ParseFile(path string) ([][]string, error) {
	return ParseFileWith[[]string](path, nil)
}

// ParseLines parses CSV from a LineSource. The source is not closed.
func ParseLines(src LineSource) ([][]string, error) {
	return ParseWith[[]string](src, nil)
}

// ParseWith parses CSV from a LineSource and passes every row through v.
//
// A nil v is accepted only when T is []string, in which case rows are returned
// unvalidated; any other T fails with ErrNoValidator. A typed nil such as
// (*Schema)(nil) is treated as nil.
func ParseWith[T any](src LineSource, v Validator[T]) ([]T, error) {
	return ParseWithOptions(src, v, DefaultParseOptions())
}

// ParseReaderWith parses CSV from an io.Reader and passes every row through v.
func ParseReaderWith[T any](reader io.Reader, v Validator[T]) ([]T, error) {
	return ParseReaderWithOptions(reader, v, DefaultParseOptions())
}

// ParseFileWith parses the named CSV file and passes every row through v.
func ParseFileWith[T any](path string, v Validator[T]) ([]T, error) {
	return ParseFileWithOptions(path, v, DefaultParseOptions())
}

// ParseReaderWithOptions is ParseReaderWith with explicit options.
func ParseReaderWithOptions[T any](reader io.Reader, v Validator[T], opts ParseOptions) ([]T, error) {
	return parse("reader", "", NewLineScanner(reader), v, opts)
}

// ParseFileWithOptions is ParseFileWith with explicit options.
//
// The file is opened when the call starts and closed on every exit path.
func ParseFileWithOptions[T any](path string, v Validator[T], opts ParseOptions) ([]T, error) {
	start := time.Now()
	src, err := OpenFile(path)
	if err != nil {
		observe(opts, Stats{Source: path, Duration: time.Since(start), Err: err})
		return nil, err
	}
	defer src.Close()

	return parse(path, path, src, v, opts)
}

// ParseWithOptions is ParseWith with explicit options.
func ParseWithOptions[T any](src LineSource, v Validator[T], opts ParseOptions) ([]T, error) {
	return parse("lines", "", src, v, opts)
}

// parse runs one call and reports its outcome to the logger and observer.
func parse[T any](name, path string, src LineSource, v Validator[T], opts ParseOptions) ([]T, error) {
	start := time.Now()
	log := opts.logger().With().Str("source", name).Logger()

	validate, err := resolveValidator(v)
	if err != nil {
		observe(opts, Stats{Source: name, Duration: time.Since(start), Err: err})
		return nil, err
	}
	log.Debug().Bool("validated", !isNil(v)).Msg("Parse started")
	p := parser.New(src, validate, parser.Options{
		SkipHeader:     opts.SkipHeader,
		SkipBlankLines: opts.SkipBlankLines,
		Logger:         &log,
	})
	rows, err := p.Parse()
	err = publicError(path, err)

	stats := Stats{Source: name, Lines: p.Lines(), Rows: len(rows), Duration: time.Since(start), Err: err}
	logFinished(log, p.State(), stats)
	observe(opts, stats)

	if err != nil {
		return nil, err
	}
	return rows, nil
}

// resolveValidator returns the function the parser calls for every row.
// A nil pointer, map, slice or func behind the interface counts as no validator.
func resolveValidator[T any](v Validator[T]) (parser.ValidateFunc[T], error) {
	if !isNil(v) {
		return v.Parse, nil
	}
	raw, ok := Raw().(Validator[T])
	if !ok {
		return nil, ErrNoValidator
	}
	return raw.Parse, nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// publicError converts parser errors into the package's error types.
func publicError(path string, err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case *parser.RowError:
		return &ParseError{Line: e.Line, Fields: e.Fields, Err: e.Err}
	case *parser.ReadError:
		return &SourceError{Path: path, Line: e.Line, Err: e.Err}
	default:
		return err
	}
}

func logFinished(log zerolog.Logger, state parser.State, stats Stats) {
	event := log.Debug()
	if stats.Err != nil {
		event = event.Err(stats.Err)
	}
	event.
		Stringer("state", state).
		Int("lines", stats.Lines).
		Int("rows", stats.Rows).
		Dur("duration", stats.Duration).
		Msg("Parse finished")
}

func observe(opts ParseOptions, stats Stats) {
	if opts.Observer != nil {
		opts.Observer.ObserveParse(stats)
	}
}

// Format returns the format identifier for this parser.
func Format() string {
	return "CSV"
}
