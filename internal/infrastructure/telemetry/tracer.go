package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerInterface defines the interface for distributed tracing
type TracerInterface interface {
	StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
	StartSpanWithAttributes(ctx context.Context, spanName string, attrs map[string]interface{}, opts ...trace.SpanStartOption) (context.Context, trace.Span)
	GetSpan(ctx context.Context) trace.Span
	SetStatus(span trace.Span, code codes.Code, description string)
	RecordError(span trace.Span, err error, description string)
	AddEvent(span trace.Span, name string, attrs map[string]interface{})
	SetAttributes(span trace.Span, attrs map[string]interface{})
	GetTraceID(span trace.Span) string
	GetSpanID(span trace.Span) string
}

// OpenTelemetryTracer implements TracerInterface using OpenTelemetry
type OpenTelemetryTracer struct {
	tracer trace.Tracer
	name   string
}

// NewOpenTelemetryTracer creates a new OpenTelemetry tracer
func NewOpenTelemetryTracer(name string) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{
		tracer: otel.Tracer(name),
		name:   name,
	}
}

func (t *OpenTelemetryTracer) StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

func (t *OpenTelemetryTracer) StartSpanWithAttributes(ctx context.Context, spanName string, attrs map[string]interface{}, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	spanAttrs := t.convertAttributes(attrs)
	allOpts := append(opts, trace.WithAttributes(spanAttrs...))
	return t.tracer.Start(ctx, spanName, allOpts...)
}

func (t *OpenTelemetryTracer) GetSpan(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

func (t *OpenTelemetryTracer) SetStatus(span trace.Span, code codes.Code, description string) {
	span.SetStatus(code, description)
}

func (t *OpenTelemetryTracer) RecordError(span trace.Span, err error, description string) {
	if err != nil {
		span.RecordError(err, trace.WithAttributes(
			attribute.String("error.description", description),
		))
		span.SetStatus(codes.Error, err.Error())
	}
}

func (t *OpenTelemetryTracer) AddEvent(span trace.Span, name string, attrs map[string]interface{}) {
	eventAttrs := t.convertAttributes(attrs)
	span.AddEvent(name, trace.WithAttributes(eventAttrs...))
}

func (t *OpenTelemetryTracer) SetAttributes(span trace.Span, attrs map[string]interface{}) {
	spanAttrs := t.convertAttributes(attrs)
	span.SetAttributes(spanAttrs...)
}

func (t *OpenTelemetryTracer) GetTraceID(span trace.Span) string {
	spanCtx := span.SpanContext()
	if spanCtx.HasTraceID() {
		return spanCtx.TraceID().String()
	}
	return ""
}

func (t *OpenTelemetryTracer) GetSpanID(span trace.Span) string {
	spanCtx := span.SpanContext()
	if spanCtx.HasSpanID() {
		return spanCtx.SpanID().String()
	}
	return ""
}

func (t *OpenTelemetryTracer) convertAttributes(attrs map[string]interface{}) []attribute.KeyValue {
	var result []attribute.KeyValue
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			result = append(result, attribute.String(k, val))
		case int:
			result = append(result, attribute.Int(k, val))
		case int64:
			result = append(result, attribute.Int64(k, val))
		case float64:
			result = append(result, attribute.Float64(k, val))
		case bool:
			result = append(result, attribute.Bool(k, val))
		default:
			result = append(result, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	return result
}

// StartDecisionSpan starts the span covering one full process_decision call.
func StartDecisionSpan(ctx context.Context, tracer TracerInterface, requestID string) (context.Context, trace.Span) {
	return tracer.StartSpanWithAttributes(ctx, "decision.process", map[string]interface{}{
		"request_id": requestID,
		"span.kind":  "internal",
		"component":  "orchestrator",
	})
}

// StartPatternMatchSpan starts the span covering one pattern-matcher pass.
func StartPatternMatchSpan(ctx context.Context, tracer TracerInterface, requestID string) (context.Context, trace.Span) {
	return tracer.StartSpanWithAttributes(ctx, "pattern_matcher.match_transaction", map[string]interface{}{
		"request_id": requestID,
		"span.kind":  "internal",
		"component":  "pattern_matcher",
	})
}

// StartRuleEvaluationSpan starts the span covering one rule-set evaluation pass.
func StartRuleEvaluationSpan(ctx context.Context, tracer TracerInterface, requestID string) (context.Context, trace.Span) {
	return tracer.StartSpanWithAttributes(ctx, "rule_engine.evaluate_rules", map[string]interface{}{
		"request_id": requestID,
		"span.kind":  "internal",
		"component":  "rule_engine",
	})
}

// WithSpanError is a helper to record errors and set span status
func WithSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
