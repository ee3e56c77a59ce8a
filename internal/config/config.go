// Package config holds the settings of the linecsv command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputJSON  = "json"
	OutputJSONL = "jsonl"
)

// Log formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// Config is the complete command configuration.
type Config struct {
	// Input is the file to parse; "-" is standard input.
	Input string `yaml:"input"`
	// Schema is an optional schema file (.yaml, .yml, .hcl, .json).
	Schema         string        `yaml:"schema"`
	SkipHeader     bool          `yaml:"skip_header"`
	SkipBlankLines bool          `yaml:"skip_blank_lines"`
	Output         string        `yaml:"output"`
	Log            LogConfig     `yaml:"log"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	// Textfile, if set, receives the run's metrics in Prometheus text format.
	Textfile string `yaml:"textfile"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Input:  "-",
		Output: OutputJSON,
		Log: LogConfig{
			Level:  "warn",
			Format: LogConsole,
		},
	}
}

// Load overlays the YAML file at path onto Defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Decode(data)
}

// Decode overlays YAML data onto Defaults. Unknown keys are rejected.
func Decode(data []byte) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Input) == "" {
		errs = append(errs, errors.New("input is required"))
	}
	switch c.Output {
	case OutputJSON, OutputJSONL:
	default:
		errs = append(errs, fmt.Errorf("output must be %q or %q, got %q", OutputJSON, OutputJSONL, c.Output))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case LogConsole, LogJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be %q or %q, got %q", LogConsole, LogJSON, c.Log.Format))
	}
	return errors.Join(errs...)
}

// NewLogger builds the logger described by l, writing to w.
func (l LogConfig) NewLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if l.Format == LogConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
