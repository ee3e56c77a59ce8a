// Package metrics exports parse outcomes as Prometheus metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapestone/shape-linecsv/pkg/csv"
)

// Result and error-kind label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	KindSource     = "source"
	KindValidation = "validation"
	KindOther      = "other"
)

// Collector implements csv.Observer on top of a set of Prometheus metrics.
type Collector struct {
	Parses        *prometheus.CounterVec
	Lines         prometheus.Counter
	Rows          prometheus.Counter
	Errors        *prometheus.CounterVec
	ParseDuration prometheus.Histogram
}

var _ csv.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linecsv_parses_total",
				Help: "Number of parse calls by result",
			},
			[]string{"result"}, // result: success|failure
		),
		Lines: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "linecsv_lines_total",
				Help: "Lines consumed from line sources",
			},
		),
		Rows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "linecsv_rows_total",
				Help: "Rows returned by successful parse calls",
			},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linecsv_errors_total",
				Help: "Failed parse calls by error kind",
			},
			[]string{"kind"}, // kind: source|validation|other
		),
		ParseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linecsv_parse_duration_seconds",
				Help:    "Duration of parse calls",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8), // 0.5ms..8s
			},
		),
	}

	for _, m := range []prometheus.Collector{c.Parses, c.Lines, c.Rows, c.Errors, c.ParseDuration} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveParse implements csv.Observer.
func (c *Collector) ObserveParse(stats csv.Stats) {
	c.Lines.Add(float64(stats.Lines))
	c.ParseDuration.Observe(stats.Duration.Seconds())
	if stats.Failed() {
		c.Parses.WithLabelValues(ResultFailure).Inc()
		c.Errors.WithLabelValues(ErrorKind(stats.Err)).Inc()
		return
	}
	c.Parses.WithLabelValues(ResultSuccess).Inc()
	c.Rows.Add(float64(stats.Rows))
}

// ErrorKind classifies a parse error for the "kind" label.
func ErrorKind(err error) string {
	var srcErr *csv.SourceError
	var parseErr *csv.ParseError
	switch {
	case errors.As(err, &parseErr):
		return KindValidation
	case errors.As(err, &srcErr):
		return KindSource
	default:
		return KindOther
	}
}

// WriteTextfile writes everything g gathers to path in the Prometheus text
// format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
