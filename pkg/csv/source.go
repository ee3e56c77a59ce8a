package csv

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/shapestone/shape-linecsv/internal/tokenizer"
)

// MaxLineSize is the longest line, in bytes, a line scanner accepts.
// Longer lines fail the parse with a *SourceError wrapping bufio.ErrTooLong.
const MaxLineSize = 1 << 20

// LineSource is a lazy, ordered sequence of text lines.
//
// Scan advances to the next line and reports whether there is one, Text returns
// the current line without its terminator, and Err returns the error that ended
// the sequence, or nil at a clean end. *bufio.Scanner satisfies LineSource.
type LineSource interface {
	Scan() bool
	Text() string
	Err() error
}

// NewLineScanner returns a scanner that yields the lines of r.
//
// Lines may end in "\n", "\r\n" or a lone "\r", mixed freely within one input.
// A final line without a terminator is still returned; a trailing terminator
// does not produce an extra empty line.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	s.Split(ScanLines)
	return s
}

// ScanLines is a bufio.SplitFunc that accepts "\n", "\r\n" and "\r" as line
// terminators.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// A '\r' at the end of the buffer may be the first half of "\r\n".
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// FileSource is a LineSource bound to an open file.
type FileSource struct {
	*bufio.Scanner
	file *os.File
}

// OpenFile opens the named file for line-by-line reading.
// The caller must Close the returned source.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	return &FileSource{Scanner: NewLineScanner(f), file: f}, nil
}

// Name returns the path the source was opened with.
func (s *FileSource) Name() string {
	return s.file.Name()
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// SliceSource is an in-memory LineSource.
type SliceSource struct {
	lines []string
	pos   int
}

// Lines returns a LineSource yielding lines in order.
//
// Example:
//
//	rows, err := csv.ParseLines(csv.Lines("name,age", "Alice,23"))
func Lines(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

// Scan implements LineSource.
func (s *SliceSource) Scan() bool {
	if s.pos >= len(s.lines) {
		return false
	}
	s.pos++
	return true
}

// Text implements LineSource.
func (s *SliceSource) Text() string {
	if s.pos == 0 || s.pos > len(s.lines) {
		return ""
	}
	return s.lines[s.pos-1]
}

// Err implements LineSource. An in-memory source never fails.
func (s *SliceSource) Err() error {
	return nil
}

// Reset rewinds the source so it can be parsed again.
func (s *SliceSource) Reset() {
	s.pos = 0
}

type blankFilter struct {
	LineSource
}

// SkipBlank wraps src so that lines containing only white space are dropped.
func SkipBlank(src LineSource) LineSource {
	return blankFilter{LineSource: src}
}

// Scan implements LineSource.
func (f blankFilter) Scan() bool {
	for f.LineSource.Scan() {
		if tokenizer.Trim(f.LineSource.Text()) != "" {
			return true
		}
	}
	return false
}
