// Package observe provides the OpenTelemetry metrics recorded while renaming
// recordings.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] so a running batch can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all talkytime metrics.
const meterName = "github.com/MrWong99/talkytime"

// File outcome statuses recorded on [Metrics.Files].
const (
	StatusRenamed   = "renamed"
	StatusUnchanged = "unchanged"
	StatusDryRun    = "dry_run"
	StatusFailed    = "failed"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// Files counts processed recordings. Use with attribute:
	//   attribute.String("status", ...)
	Files metric.Int64Counter

	// ParseFailures counts recordings whose stamp could not be read. Use with
	// attribute:
	//   attribute.String("kind", ...)
	ParseFailures metric.Int64Counter

	// STTDuration tracks speech-to-text transcription latency. Use with
	// attribute:
	//   attribute.String("provider", ...)
	STTDuration metric.Float64Histogram

	// SpanDuration tracks the length of the detected spoken stamp.
	SpanDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// transcription of a few seconds of speech.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

var spanBuckets = []float64{
	0.5, 1, 2, 3, 5, 8, 12, 15, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Files, err = m.Int64Counter("talkytime.files",
		metric.WithDescription("Total recordings processed by outcome status."),
	); err != nil {
		return nil, err
	}
	if met.ParseFailures, err = m.Int64Counter("talkytime.parse.failures",
		metric.WithDescription("Total recordings whose spoken stamp could not be parsed, by kind."),
	); err != nil {
		return nil, err
	}
	if met.STTDuration, err = m.Float64Histogram("talkytime.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpanDuration, err = m.Float64Histogram("talkytime.span.duration",
		metric.WithDescription("Length of the detected spoken stamp."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(spanBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordFile records one processed recording with the given status.
func (m *Metrics) RecordFile(ctx context.Context, status string) {
	m.Files.Add(ctx, 1, metric.WithAttributes(Attr("status", status)))
}

// RecordParseFailure records a recording whose stamp failed to parse.
func (m *Metrics) RecordParseFailure(ctx context.Context, kind string) {
	m.ParseFailures.Add(ctx, 1, metric.WithAttributes(Attr("kind", kind)))
}

// RecordSTT records the latency of one transcription answered by provider.
func (m *Metrics) RecordSTT(ctx context.Context, provider string, d time.Duration) {
	m.STTDuration.Record(ctx, d.Seconds(), metric.WithAttributes(Attr("provider", provider)))
}

// RecordSpan records the length of a detected span.
func (m *Metrics) RecordSpan(ctx context.Context, d time.Duration) {
	m.SpanDuration.Record(ctx, d.Seconds())
}
