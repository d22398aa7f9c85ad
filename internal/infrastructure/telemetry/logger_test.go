package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_BuildsWithConsoleSink(t *testing.T) {
	logger, err := NewLogger("info", zapcore.AddSync(discard{}), nil, true, false)
	assert.NoError(t, err)
	assert.NotNil(t, logger)
	logger.Info("hello")
}

func TestWithTraceFields_NoSpanReturnsNil(t *testing.T) {
	fields := WithTraceFields(context.Background())
	assert.Nil(t, fields)
}

func TestWithTraceFields_ValidSpanReturnsTraceAndSpanID(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	fields := WithTraceFields(ctx)
	assert.Len(t, fields, 3)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
