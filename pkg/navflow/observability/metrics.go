package observability

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records navflow metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTransition records a dispatched transition of the given kind.
	RecordTransition(ctx context.Context, edgeID, kind string)

	// RecordStuck records a resolution that found no eligible edge.
	RecordStuck(ctx context.Context, nodeID string)

	// RecordRebuild records a reconciliation pass and the resulting screen count.
	RecordRebuild(ctx context.Context, screens int)

	// RecordDryRun records a finished dry run and how many hops it took.
	RecordDryRun(ctx context.Context, hops int, exceeded bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	transitions metric.Int64Counter
	stuck       metric.Int64Counter
	rebuilds    metric.Int64Counter
	stackDepth  metric.Int64Histogram
	dryRunHops  metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("navflow")

	transitions, err := meter.Int64Counter("navflow.transitions",
		metric.WithDescription("Number of dispatched transitions"),
	)
	if err != nil {
		return nil, err
	}

	stuck, err := meter.Int64Counter("navflow.stuck",
		metric.WithDescription("Number of resolutions with no eligible transition"),
	)
	if err != nil {
		return nil, err
	}

	rebuilds, err := meter.Int64Counter("navflow.rebuilds",
		metric.WithDescription("Number of stack reconciliation passes"),
	)
	if err != nil {
		return nil, err
	}

	stackDepth, err := meter.Int64Histogram("navflow.stack.depth",
		metric.WithDescription("Host screen count after reconciliation"),
	)
	if err != nil {
		return nil, err
	}

	dryRunHops, err := meter.Int64Histogram("navflow.dryrun.hops",
		metric.WithDescription("Hops taken by dry runs"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		transitions: transitions,
		stuck:       stuck,
		rebuilds:    rebuilds,
		stackDepth:  stackDepth,
		dryRunHops:  dryRunHops,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordTransition records a dispatched transition.
func (m *otelMetrics) RecordTransition(ctx context.Context, edgeID, kind string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("edge_id", edgeID),
		attribute.String("kind", kind),
	))
}

// RecordStuck records a stuck resolution.
func (m *otelMetrics) RecordStuck(ctx context.Context, nodeID string) {
	m.stuck.Add(ctx, 1, metric.WithAttributes(attribute.String("node_id", nodeID)))
}

// RecordRebuild records a reconciliation pass.
func (m *otelMetrics) RecordRebuild(ctx context.Context, screens int) {
	m.rebuilds.Add(ctx, 1)
	m.stackDepth.Record(ctx, int64(screens))
}

// RecordDryRun records a dry run.
func (m *otelMetrics) RecordDryRun(ctx context.Context, hops int, exceeded bool) {
	m.dryRunHops.Record(ctx, int64(hops), metric.WithAttributes(attribute.Bool("exceeded", exceeded)))
}
