package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDispatchSpan starts a span for one dispatched transition.
	StartDispatchSpan(ctx context.Context, sessionID, edgeID, kind string) (context.Context, trace.Span)

	// StartDryRunSpan starts a span for a whole dry run.
	StartDryRunSpan(ctx context.Context, graphName, startID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The tracer is taken from the global provider when NewSpanManager is
// called. Configure the provider first:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{tracer: otel.Tracer("navflow")}
}

// StartDispatchSpan starts a span for a dispatched transition.
func (m *otelSpanManager) StartDispatchSpan(ctx context.Context, sessionID, edgeID, kind string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "navflow.dispatch",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("edge.id", edgeID),
			attribute.String("transition.kind", kind),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartDryRunSpan starts a span for a dry run.
func (m *otelSpanManager) StartDryRunSpan(ctx context.Context, graphName, startID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "navflow.dryrun",
		trace.WithAttributes(
			attribute.String("graph.name", graphName),
			attribute.String("node.start", startID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
