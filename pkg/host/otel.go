package host

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for trinity hosts.
const defaultTracerName = "trinity"

// TraceConfig configures event tracing. A nil *TraceConfig disables
// tracing entirely.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "trinity").
	TracerName string

	// Filter determines which events to trace. Return true to trace
	// the event. If nil, all events are traced.
	Filter func(event string) bool

	// AttributeExtractor extracts custom attributes per event.
	AttributeExtractor func(event string) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures event tracing.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(event string) bool) TraceOption {
	return func(c *TraceConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(event string) []attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.AttributeExtractor = extractor
	}
}

// newTraceConfig resolves a trace config against the global tracer
// provider. Configure the provider in main() before starting the
// server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func newTraceConfig(opts ...TraceOption) *TraceConfig {
	c := &TraceConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(c)
	}
	c.tracer = otel.Tracer(c.TracerName)
	return c
}

// startEventSpan opens a span for a client event. Returns a nil span
// when tracing is disabled or the event is filtered out.
func (c *TraceConfig) startEventSpan(ctx context.Context, sessionID, event string) (context.Context, trace.Span) {
	if c == nil {
		return ctx, nil
	}
	if c.Filter != nil && !c.Filter(event) {
		return ctx, nil
	}

	attrs := []attribute.KeyValue{
		attribute.String("trinity.event", event),
		attribute.String("trinity.session_id", sessionID),
	}
	if c.AttributeExtractor != nil {
		attrs = append(attrs, c.AttributeExtractor(event)...)
	}

	return c.tracer.Start(
		ctx,
		"trinity."+event,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
}

// endEventSpan records the handler result and closes the span.
func (c *TraceConfig) endEventSpan(span trace.Span, err error) {
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
