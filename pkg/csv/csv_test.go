package csv_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shapestone/shape-linecsv/pkg/csv"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "simple csv",
			input: "name,age\nAlice,23",
			want:  [][]string{{"name", "age"}, {"Alice", "23"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  [][]string{},
		},
		{
			name:  "single field",
			input: "value",
			want:  [][]string{{"value"}},
		},
		{
			name:  "trailing newline adds no row",
			input: "a,b\n",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "empty line is one empty field",
			input: "a\n\nb",
			want:  [][]string{{"a"}, {""}, {"b"}},
		},
		{
			name:  "whitespace only line",
			input: "   \t ",
			want:  [][]string{{""}},
		},
		{
			name:  "ragged rows",
			input: "a,b,c\nd\ne,f",
			want:  [][]string{{"a", "b", "c"}, {"d"}, {"e", "f"}},
		},
		{
			name:  "quoted comma is split",
			input: `x, "y,z"`,
			want:  [][]string{{"x", `"y`, `z"`}},
		},
		{
			name:  "only commas",
			input: ",,",
			want:  [][]string{{"", "", ""}},
		},
		{
			name:  "crlf endings",
			input: "a,b\r\nc,d\r\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "lone cr endings",
			input: "a\rb\rc",
			want:  [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name:  "byte order mark is trimmed",
			input: "\ufeffname,age",
			want:  [][]string{{"name", "age"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := csv.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got == nil {
				t.Fatal("Parse() returned nil rows on success")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseFile_Fixtures covers the files shipped in testdata.
func TestParseFile_Fixtures(t *testing.T) {
	tests := []struct {
		file string
		want [][]string
	}{
		{
			file: "people.csv",
			want: [][]string{
				{"name", "age"},
				{"Alice", "23"},
				{"Bob", "thirty"},
				{"Charlie", "25"},
				{"Nim", "22"},
			},
		},
		{
			file: "empty.csv",
			want: [][]string{},
		},
		{
			file: "commas.csv",
			want: [][]string{
				{"Caesar", "Julius", `"veni`, "vidi", `vici"`},
				{"Jaesar", "Culius", `"I came`, "I saw", `I conquered"`},
				{"Roberts", "Ella", `"live`, "laugh", `love"`},
				{"Hoberts", "Ellie", `"hi"`},
			},
		},
		{
			file: "whitespace.csv",
			want: [][]string{
				{"Tim", "Nelson", "CSCI 0320", "instructor"},
				{"Nim", "Telson", "CSCI 0320", "student"},
				{"Tim Nim", "Nelson", "CSCI 0320 and CSCI 1340", "instructor and mentor"},
			},
		},
		{
			file: "numbers.csv",
			want: [][]string{
				{"1", "2", "3"},
				{"4", "5", "6"},
				{"00", "00", "100"},
				{"-20", "19", "20.5"},
			},
		},
		{
			file: "empty_fields.csv",
			want: [][]string{
				{"name", "classes", "hobbies"},
				{"Taylor Swift", "", "singing"},
				{"Saylor Wift", "", "opera"},
				{"", "math", "dancing"},
				{"Emily", "economics", ""},
			},
		},
		{
			file: "trailing_commas.csv",
			want: [][]string{
				{"Tim", "Nelson", "CSCI 0320", "instructor", ""},
				{"Nim", "Telson", "CSCI 0320", "student", ""},
			},
		},
		{
			file: "quotes.csv",
			want: [][]string{
				{"Julius", "Caesar", `I said "veni`, "vidi", `vici" to announce my victory`},
				{"Julius", "Caesar", `"I said "veni`, "vidi", `vici" to announce my victory"`},
			},
		},
		{
			file: "missing_data.csv",
			want: [][]string{
				{"name", "age", "year"},
				{"Ella Roberts", "19"},
				{"Roberto Elliot", "20", "junior"},
				{"senior"},
			},
		},
		{
			file: "mixed_endings.csv",
			want: [][]string{
				{"name", "age"},
				{"Alice", "23"},
				{"Bob", "30"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := csv.ParseFile(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatalf("ParseFile() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_RowsAreIndependent(t *testing.T) {
	rows, err := csv.Parse("a,b\nc,d")
	if err != nil {
		t.Fatal(err)
	}
	rows[0][0] = "changed"
	if rows[1][0] != "c" {
		t.Errorf("rows share storage: %q", rows)
	}
}

func TestParseFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	rows, err := csv.ParseFile(path)
	if rows != nil {
		t.Errorf("ParseFile() rows = %q, want nil", rows)
	}

	var serr *csv.SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("ParseFile() error = %v, want *SourceError", err)
	}
	if serr.Path != path {
		t.Errorf("SourceError.Path = %q, want %q", serr.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not wrap os.ErrNotExist: %v", err)
	}
}

func TestParseFile_Directory(t *testing.T) {
	dir := t.TempDir()
	_, err := csv.ParseFile(dir)
	var serr *csv.SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("ParseFile(dir) error = %v, want *SourceError", err)
	}
}

// failingReader returns its data and then a read error.
type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		return copy(p, r.data), nil
	}
	return 0, r.err
}

func TestParseReader_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	rows, err := csv.ParseReader(&failingReader{data: "a,b\nc,d\n", err: boom})
	if rows != nil {
		t.Errorf("rows = %q, want nil after a read error", rows)
	}

	var serr *csv.SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SourceError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error does not wrap the reader's error: %v", err)
	}
	if serr.Line != 2 {
		t.Errorf("SourceError.Line = %d, want 2", serr.Line)
	}
	if serr.Path != "" {
		t.Errorf("SourceError.Path = %q, want empty for a reader", serr.Path)
	}
}

func TestParseReader_LineTooLong(t *testing.T) {
	long := strings.Repeat("x", csv.MaxLineSize+1)
	_, err := csv.ParseReader(strings.NewReader(long))
	var serr *csv.SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SourceError", err)
	}
}

// closeRecorder records whether Close was called.
type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestParseReader_DoesNotClose(t *testing.T) {
	r := &closeRecorder{Reader: strings.NewReader("a")}
	if _, err := csv.ParseReader(r); err != nil {
		t.Fatal(err)
	}
	if r.closed {
		t.Error("ParseReader closed the caller's reader")
	}
}

func TestParseWith_FailFast(t *testing.T) {
	var seen []string
	v := csv.ValidatorFunc[string](func(fields []string) (string, error) {
		seen = append(seen, fields[0])
		if fields[0] == "bad" {
			return "", errors.New("bad row")
		}
		return fields[0], nil
	})

	rows, err := csv.ParseWith[string](csv.Lines("a", "b", "bad", "c"), v)
	if rows != nil {
		t.Errorf("rows = %q, want nil", rows)
	}

	var perr *csv.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 3 {
		t.Errorf("ParseError.Line = %d, want 3", perr.Line)
	}
	if !reflect.DeepEqual(perr.Fields, []string{"bad"}) {
		t.Errorf("ParseError.Fields = %q", perr.Fields)
	}
	if !reflect.DeepEqual(seen, []string{"a", "b", "bad"}) {
		t.Errorf("validator saw %q, want lines after the failure untouched", seen)
	}
}

func TestParseWith_ValidatorErrorUnchanged(t *testing.T) {
	sentinel := errors.New("custom rule")
	v := csv.ValidatorFunc[int](func([]string) (int, error) { return 0, sentinel })

	_, err := csv.ParseWith[int](csv.Lines("x"), v)
	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is(err, sentinel) = false for %v", err)
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) && perr.Err != sentinel {
		t.Errorf("ParseError.Err = %v, want the validator's error itself", perr.Err)
	}
}

func TestParseWith_Order(t *testing.T) {
	v := csv.ValidatorFunc[string](func(fields []string) (string, error) {
		return strings.Join(fields, "|"), nil
	})
	got, err := csv.ParseWith[string](csv.Lines("a,b", " c ", "d,,e"), v)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a|b", "c", "d||e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseWith() = %q, want %q", got, want)
	}
}

func TestParseWith_EmptySource(t *testing.T) {
	calls := 0
	v := csv.ValidatorFunc[int](func([]string) (int, error) {
		calls++
		return 0, nil
	})
	got, err := csv.ParseWith[int](csv.Lines(), v)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ParseWith() = %v, want empty non-nil slice", got)
	}
	if calls != 0 {
		t.Errorf("validator called %d times on an empty source", calls)
	}
}

func TestParseWith_NilValidator(t *testing.T) {
	t.Run("raw rows", func(t *testing.T) {
		got, err := csv.ParseWith[[]string](csv.Lines("a, b"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, [][]string{{"a", "b"}}) {
			t.Errorf("got %q", got)
		}
	})

	t.Run("typed nil validators", func(t *testing.T) {
		var schema *csv.Schema
		if _, err := csv.ParseWith[csv.Record](csv.Lines("a"), schema); !errors.Is(err, csv.ErrNoValidator) {
			t.Errorf("nil *Schema: error = %v, want ErrNoValidator", err)
		}
		var tuple *csv.TupleValidator
		if _, err := csv.ParseWith[[]interface{}](csv.Lines("a"), tuple); !errors.Is(err, csv.ErrNoValidator) {
			t.Errorf("nil *TupleValidator: error = %v, want ErrNoValidator", err)
		}
		var fn csv.ValidatorFunc[[]string]
		got, err := csv.ParseWith[[]string](csv.Lines("a, b"), fn)
		if err != nil || !reflect.DeepEqual(got, [][]string{{"a", "b"}}) {
			t.Errorf("nil ValidatorFunc for raw rows = %q, %v", got, err)
		}
	})

	t.Run("typed rows", func(t *testing.T) {
		got, err := csv.ParseWith[csv.Record](csv.Lines("a"), nil)
		if !errors.Is(err, csv.ErrNoValidator) {
			t.Errorf("error = %v, want ErrNoValidator", err)
		}
		if got != nil {
			t.Errorf("rows = %v, want nil", got)
		}
	})
}

func TestParseFileWith(t *testing.T) {
	people := csv.Tuple(csv.ColumnTypeString, csv.ColumnTypeNumber)
	opts := csv.DefaultParseOptions()
	opts.SkipHeader = true

	_, err := csv.ParseFileWithOptions[[]interface{}](filepath.Join("testdata", "people.csv"), people, opts)
	var perr *csv.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError for Bob's age", err)
	}
	if perr.Line != 3 {
		t.Errorf("ParseError.Line = %d, want 3", perr.Line)
	}
	var verr *csv.ValidationError
	if !errors.As(err, &verr) || verr.Column != 1 || verr.Value != "thirty" {
		t.Errorf("ValidationError = %+v", verr)
	}
	if !errors.Is(err, csv.ErrCoerce) {
		t.Errorf("error does not match ErrCoerce: %v", err)
	}
}

func TestParseFileWith_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.csv")
	if err := os.WriteFile(path, []byte("Alice,23\nNim,22\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.ParseFileWith[[]interface{}](path, csv.Tuple(csv.ColumnTypeString, csv.ColumnTypeNumber))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]interface{}{{"Alice", float64(23)}, {"Nim", float64(22)}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestParseLines_SourceNotExhaustedTwice(t *testing.T) {
	src := csv.Lines("a", "b")
	first, err := csv.ParseLines(src)
	if err != nil || len(first) != 2 {
		t.Fatalf("first parse = %q, %v", first, err)
	}
	second, err := csv.ParseLines(src)
	if err != nil || len(second) != 0 {
		t.Errorf("second parse of a drained source = %q, %v", second, err)
	}
	src.Reset()
	third, err := csv.ParseLines(src)
	if err != nil || !reflect.DeepEqual(third, first) {
		t.Errorf("parse after Reset = %q, %v, want %q", third, err, first)
	}
}

func TestParse_Idempotent(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join("testdata", "people.csv")
		first, err := csv.ParseFile(path)
		if err != nil {
			t.Fatal(err)
		}
		second, err := csv.ParseFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("second parse = %q, want %q", second, first)
		}
	})

	t.Run("lines after reset", func(t *testing.T) {
		src := csv.Lines("name,age", " Alice , 23", "", "x, \"y,z\"", "senior")
		first, err := csv.ParseLines(src)
		if err != nil {
			t.Fatal(err)
		}
		src.Reset()
		second, err := csv.ParseLines(src)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("parse after Reset = %q, want %q", second, first)
		}
	})
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", []string{""}},
		{"  solo  ", []string{"solo"}},
		{"a , b ,c", []string{"a", "b", "c"}},
		{"a,", []string{"a", ""}},
		{",a", []string{"", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := csv.SplitLine(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}

	if n := len(csv.SplitLine("a,b,c,d")); n != strings.Count("a,b,c,d", string(csv.Delimiter))+1 {
		t.Errorf("field count %d != delimiter count + 1", n)
	}
}

func TestFormat(t *testing.T) {
	if got := csv.Format(); got != "CSV" {
		t.Errorf("Format() = %q, want %q", got, "CSV")
	}
}
