// Package parser drives a line source through the tokenizer and an optional
// row validator, accumulating rows in input order.
//
// A Parser is single use. It starts in StateAccumulating and ends in exactly
// one of StateComplete or StateFailed:
//
//	ACCUMULATING --source exhausted--> COMPLETE
//	ACCUMULATING --read error-------> FAILED
//	ACCUMULATING --row rejected-----> FAILED
//
// A failed parse never returns rows.
package parser

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shapestone/shape-linecsv/internal/tokenizer"
)

// Lines is the input consumed by the parser, one line per successful Scan.
// *bufio.Scanner satisfies it.
type Lines interface {
	Scan() bool
	Text() string
	Err() error
}

// ValidateFunc turns the fields of one line into a row, or rejects them.
type ValidateFunc[T any] func(fields []string) (T, error)

// State is the lifecycle position of a Parser.
type State int

const (
	// StateAccumulating is the initial state; lines are still being consumed.
	StateAccumulating State = iota
	// StateComplete means the source was exhausted and all rows were accepted.
	StateComplete
	// StateFailed means a read error or a rejected row ended the parse.
	StateFailed
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// ErrReused is returned when Parse is called on a Parser that already ran.
var ErrReused = errors.New("parser already used")

// ReadError reports a failure of the line source.
type ReadError struct {
	// Line is the number of lines read before the failure.
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error after line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// RowError reports a row rejected by the validator.
type RowError struct {
	// Line is the 1-indexed line the row came from.
	Line   int
	Fields []string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Options configures the parser behavior.
type Options struct {
	// SkipHeader discards the first line without validating it.
	SkipHeader bool
	// SkipBlankLines discards lines that are empty after trimming. Skipped
	// lines still count toward line numbers.
	SkipBlankLines bool
	// Logger receives debug events. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{}
}

// Parser accumulates validated rows from a line source.
type Parser[T any] struct {
	src      Lines
	validate ValidateFunc[T]
	opts     Options
	log      zerolog.Logger
	state    State
	line     int
	rows     int
}

// New creates a parser reading from src. validate must not be nil.
func New[T any](src Lines, validate ValidateFunc[T], opts Options) *Parser[T] {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Parser[T]{
		src:      src,
		validate: validate,
		opts:     opts,
		log:      log,
		state:    StateAccumulating,
	}
}

// Parse consumes the source until it is exhausted or a row is rejected.
//
// On success the returned slice holds one row per accepted line, in input
// order, and is non-nil even for an empty source. On failure the rows already
// accumulated are discarded and the error is a *ReadError or a *RowError.
func (p *Parser[T]) Parse() ([]T, error) {
	if p.state != StateAccumulating || p.line > 0 {
		return nil, ErrReused
	}

	rows := make([]T, 0, 16)
	for p.src.Scan() {
		p.line++
		if p.opts.SkipHeader && p.line == 1 {
			continue
		}

		text := p.src.Text()
		if p.opts.SkipBlankLines && tokenizer.Trim(text) == "" {
			continue
		}

		fields := tokenizer.Split(text)
		row, err := p.validate(fields)
		if err != nil {
			p.state = StateFailed
			p.log.Debug().
				Int("line", p.line).
				Strs("fields", fields).
				Err(err).
				Msg("Row rejected")
			return nil, &RowError{Line: p.line, Fields: fields, Err: err}
		}
		rows = append(rows, row)
	}

	if err := p.src.Err(); err != nil {
		p.state = StateFailed
		p.log.Debug().Int("line", p.line).Err(err).Msg("Line source failed")
		return nil, &ReadError{Line: p.line, Err: err}
	}

	p.state = StateComplete
	p.rows = len(rows)
	return rows, nil
}

// State returns the current lifecycle state.
func (p *Parser[T]) State() State {
	return p.state
}

// Lines returns the number of lines consumed so far, including a skipped header.
func (p *Parser[T]) Lines() int {
	return p.line
}

// Rows returns the number of rows returned by a completed parse.
func (p *Parser[T]) Rows() int {
	return p.rows
}
