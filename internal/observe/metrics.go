// Package observe provides application-wide observability primitives for
// audiopilot: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
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

// meterName is the instrumentation scope name used for all audiopilot metrics.
const meterName = "github.com/tghensley/audiopilot"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// InterpretationDuration tracks end-to-end command interpretation latency,
	// including the oracle round-trip when the AI path is taken.
	InterpretationDuration metric.Float64Histogram

	// OracleDuration tracks the outbound oracle completion latency.
	OracleDuration metric.Float64Histogram

	// OracleRequests counts oracle calls. Use with attribute:
	//   attribute.String("status", "ok"|"error")
	OracleRequests metric.Int64Counter

	// FallbackTotal counts interpretations served by the rule-based fallback.
	// Use with attribute:
	//   attribute.String("reason", "unconfigured"|"oracle_error"|"unparsable")
	FallbackTotal metric.Int64Counter

	// PlanActions counts actions emitted in returned plans. Use with attribute:
	//   attribute.String("kind", ...)
	PlanActions metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// a single outbound completion call plus local processing.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.InterpretationDuration, err = m.Float64Histogram("audiopilot.interpretation.duration",
		metric.WithDescription("End-to-end command interpretation latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OracleDuration, err = m.Float64Histogram("audiopilot.oracle.duration",
		metric.WithDescription("Latency of oracle completion calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OracleRequests, err = m.Int64Counter("audiopilot.oracle.requests",
		metric.WithDescription("Total oracle completion requests by status."),
	); err != nil {
		return nil, err
	}
	if met.FallbackTotal, err = m.Int64Counter("audiopilot.fallback.total",
		metric.WithDescription("Total interpretations served by the rule-based fallback, by reason."),
	); err != nil {
		return nil, err
	}
	if met.PlanActions, err = m.Int64Counter("audiopilot.plan.actions",
		metric.WithDescription("Total plan actions emitted by action kind."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("audiopilot.http.request.duration",
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

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordOracleRequest is a convenience helper that records one oracle request
// with its status attribute.
func (m *Metrics) RecordOracleRequest(ctx context.Context, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.OracleRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
