// Command linecsv parses a CSV file line by line and prints its rows as JSON.
//
// Usage:
//
//	linecsv [flags] [input]
//
// The input defaults to standard input ("-"). With -schema every row is
// validated against the schema file and printed as an object keyed by column
// name; without it every row is printed as an array of strings. The first
// rejected row aborts the run and nothing is printed.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/shapestone/shape-linecsv/internal/config"
	"github.com/shapestone/shape-linecsv/internal/metrics"
	"github.com/shapestone/shape-linecsv/internal/schemafile"
	"github.com/shapestone/shape-linecsv/pkg/csv"
)

// Exit codes.
const (
	exitOK    = 0
	exitParse = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "linecsv: %v\n", err)
		return exitUsage
	}

	log, err := cfg.Log.NewLogger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "linecsv: %v\n", err)
		return exitUsage
	}
	log = log.With().Str("run_id", uuid.NewString()).Logger()

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register metrics")
		return exitUsage
	}

	opts := csv.DefaultParseOptions()
	opts.SkipHeader = cfg.SkipHeader
	opts.SkipBlankLines = cfg.SkipBlankLines
	opts.Logger = &log
	opts.Observer = collector

	code := execute(cfg, opts, stdin, stdout, log)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			log.Error().Err(err).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics")
		}
	}
	return code
}

// loadConfig builds the configuration: defaults, then the -config file, then
// explicitly set flags, then the positional input.
func loadConfig(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("linecsv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: linecsv [flags] [input]")
		fs.PrintDefaults()
	}

	def := config.Defaults()
	var (
		flagConfig   = fs.String("config", "", "YAML config file")
		flagSchema   = fs.String("schema", "", "schema file (.yaml, .yml, .hcl, .json)")
		flagHeader   = fs.Bool("skip-header", false, "do not validate or print the first line")
		flagBlank    = fs.Bool("skip-blank", false, "drop lines containing only white space")
		flagOutput   = fs.String("output", def.Output, "output format: json or jsonl")
		flagLevel    = fs.String("log-level", def.Log.Level, "log level: debug, info, warn, error")
		flagFormat   = fs.String("log-format", def.Log.Format, "log format: console or json")
		flagTextfile = fs.String("metrics-textfile", "", "write Prometheus metrics to this file")
	)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 1 {
		return config.Config{}, fmt.Errorf("expected at most one input, got %d", fs.NArg())
	}

	cfg := def
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Load(*flagConfig); err != nil {
			return config.Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "schema":
			cfg.Schema = *flagSchema
		case "skip-header":
			cfg.SkipHeader = *flagHeader
		case "skip-blank":
			cfg.SkipBlankLines = *flagBlank
		case "output":
			cfg.Output = *flagOutput
		case "log-level":
			cfg.Log.Level = *flagLevel
		case "log-format":
			cfg.Log.Format = *flagFormat
		case "metrics-textfile":
			cfg.Metrics.Textfile = *flagTextfile
		}
	})
	if fs.NArg() == 1 {
		cfg.Input = fs.Arg(0)
	}

	return cfg, cfg.Validate()
}

// execute parses the input and prints the rows. It returns the exit code.
func execute(cfg config.Config, opts csv.ParseOptions, stdin io.Reader, stdout io.Writer, log zerolog.Logger) int {
	if cfg.Schema == "" {
		rows, err := parseInput[[]string](cfg.Input, nil, opts, stdin)
		return finish(stdout, cfg.Output, rows, err, log)
	}

	schema, err := schemafile.Load(cfg.Schema)
	if err != nil {
		log.Error().Err(err).Str("schema", cfg.Schema).Msg("Failed to load schema")
		return exitUsage
	}
	rows, err := parseInput[csv.Record](cfg.Input, schema, opts, stdin)
	return finish(stdout, cfg.Output, rows, err, log)
}

func parseInput[T any](input string, v csv.Validator[T], opts csv.ParseOptions, stdin io.Reader) ([]T, error) {
	if input == "-" {
		return csv.ParseReaderWithOptions(stdin, v, opts)
	}
	return csv.ParseFileWithOptions(input, v, opts)
}

func finish[T any](w io.Writer, format string, rows []T, err error, log zerolog.Logger) int {
	if err != nil {
		event := log.Error().Err(err)
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			event = event.Int("line", perr.Line).Strs("fields", perr.Fields)
		}
		event.Msg("Parse failed")
		return exitParse
	}
	if err := writeRows(w, format, rows); err != nil {
		log.Error().Err(err).Msg("Failed to write output")
		return exitParse
	}
	log.Info().Int("rows", len(rows)).Msg("Parse complete")
	return exitOK
}

func writeRows[T any](w io.Writer, format string, rows []T) error {
	enc := json.NewEncoder(w)
	if format == config.OutputJSONL {
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(rows)
}
