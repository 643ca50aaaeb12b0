// Package observe provides application-wide observability primitives for
// voxmate: OpenTelemetry metrics, tracing, structured logging, and HTTP
// middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all voxmate metrics.
const meterName = "github.com/voxmate/voxmate"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// UtteranceDuration tracks end-to-end transcript handling latency,
	// from corrector input to session outcome.
	UtteranceDuration metric.Float64Histogram

	// EngineDuration tracks analysis-engine search latency.
	EngineDuration metric.Float64Histogram

	// ExplorerDuration tracks master-games lookup latency.
	ExplorerDuration metric.Float64Histogram

	// --- Counters ---

	// Utterances counts handled utterances. Use with attribute:
	//   attribute.String("intent", ...)
	Utterances metric.Int64Counter

	// Resolutions counts move-resolution outcomes. Use with attribute:
	//   attribute.String("outcome", ...)
	Resolutions metric.Int64Counter

	// AutoplayPicks counts autoplay move selections. Use with attribute:
	//   attribute.String("source", "book"|"engine")
	AutoplayPicks metric.Int64Counter

	// SourceErrors counts failures of the external move sources. Use with
	// attribute: attribute.String("source", "engine"|"explorer"|"archive")
	SourceErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live game sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized
// for voice-turn and analysis latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.UtteranceDuration, err = m.Float64Histogram("voxmate.utterance.duration",
		metric.WithDescription("End-to-end transcript handling latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EngineDuration, err = m.Float64Histogram("voxmate.engine.duration",
		metric.WithDescription("Analysis engine search latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExplorerDuration, err = m.Float64Histogram("voxmate.explorer.duration",
		metric.WithDescription("Master-games lookup latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Utterances, err = m.Int64Counter("voxmate.utterances",
		metric.WithDescription("Total handled utterances by intent."),
	); err != nil {
		return nil, err
	}
	if met.Resolutions, err = m.Int64Counter("voxmate.resolutions",
		metric.WithDescription("Total move resolutions by outcome."),
	); err != nil {
		return nil, err
	}
	if met.AutoplayPicks, err = m.Int64Counter("voxmate.autoplay.picks",
		metric.WithDescription("Total autoplay selections by source tier."),
	); err != nil {
		return nil, err
	}
	if met.SourceErrors, err = m.Int64Counter("voxmate.source.errors",
		metric.WithDescription("Total external source failures by source."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("voxmate.active_sessions",
		metric.WithDescription("Number of live game sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("voxmate.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
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

// RecordUtterance records one handled utterance with its intent label.
func (m *Metrics) RecordUtterance(ctx context.Context, intent string) {
	m.Utterances.Add(ctx, 1,
		metric.WithAttributes(attribute.String("intent", intent)),
	)
}

// RecordResolution records one move-resolution outcome.
func (m *Metrics) RecordResolution(ctx context.Context, outcome string) {
	m.Resolutions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordAutoplayPick records one autoplay selection with its source tier.
func (m *Metrics) RecordAutoplayPick(ctx context.Context, source string) {
	m.AutoplayPicks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("source", source)),
	)
}

// RecordSourceError records one external source failure.
func (m *Metrics) RecordSourceError(ctx context.Context, source string) {
	m.SourceErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("source", source)),
	)
}
