// Package csv provides configurable options for CSV parsing.
package csv

import (
	"time"

	"github.com/rs/zerolog"
)

// ParseOptions configures a parse call.
type ParseOptions struct {
	// SkipHeader discards the first line without validating or returning it.
	// Default: false
	SkipHeader bool

	// SkipBlankLines drops lines that contain only white space. When false,
	// a blank line becomes a row with one empty field.
	// Default: false
	SkipBlankLines bool

	// Logger receives debug events for the call. Nil disables logging.
	// Default: nil
	Logger *zerolog.Logger

	// Observer is notified once per call with its outcome.
	// Default: nil
	Observer Observer
}

// DefaultParseOptions returns the default parse configuration.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		SkipHeader:     false,
		SkipBlankLines: false,
		Logger:         nil,
		Observer:       nil,
	}
}

// Observer receives the outcome of every parse call made with it.
// Implementations must be safe for concurrent use if shared across goroutines.
type Observer interface {
	ObserveParse(stats Stats)
}

// ObserverFunc is a function adapter for the Observer interface.
type ObserverFunc func(Stats)

// ObserveParse implements Observer.
func (f ObserverFunc) ObserveParse(stats Stats) {
	f(stats)
}

// Stats summarizes one parse call.
type Stats struct {
	// Source names the input: a file path, "reader", or "lines".
	Source string
	// Lines is the number of lines consumed, including a skipped header.
	Lines int
	// Rows is the number of rows returned. Always 0 when Err is set.
	Rows int
	// Duration is the wall time of the call.
	Duration time.Duration
	// Err is the error returned to the caller, if any.
	Err error
}

// Failed reports whether the call ended in an error.
func (s Stats) Failed() bool {
	return s.Err != nil
}

func (o ParseOptions) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}
