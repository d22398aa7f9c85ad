// Package telemetry wires zap structured logging and OpenTelemetry tracing
// for the decision core, propagating each request's 128-bit hex trace id
// onto every log line emitted while handling it (§4.6).
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap.Logger per the logging section of the system
// configuration: JSON encoding, console and/or rotating-file output sinks
// selected by enable_console/enable_file, and a non-blocking write path so
// a slow sink degrades by dropping the oldest buffered entries rather than
// stalling the decision path (§9).
func NewLogger(level string, consoleSink, fileSink zapcore.WriteSyncer, enableConsole, enableFile bool) (*zap.Logger, error) {
	zapLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var cores []zapcore.Core
	if enableConsole && consoleSink != nil {
		cores = append(cores, zapcore.NewCore(encoder, dropOldest(consoleSink), zapLevel))
	}
	if enableFile && fileSink != nil {
		cores = append(cores, zapcore.NewCore(encoder, dropOldest(fileSink), zapLevel))
	}
	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(encoder, dropOldest(zapcore.AddSync(zapcore.Lock(zapcore.AddSync(noopWriter{})))), zapLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

const asyncQueueCapacity = 4096

// dropOldest wraps sink in a bounded, non-blocking buffer: once full, the
// oldest queued entry is discarded to make room for the newest, so logging
// backpressure never adds latency to the decision path.
func dropOldest(sink zapcore.WriteSyncer) zapcore.WriteSyncer {
	q := &dropOldestWriter{sink: sink, ch: make(chan []byte, asyncQueueCapacity)}
	go q.run()
	return q
}

type dropOldestWriter struct {
	sink zapcore.WriteSyncer
	ch   chan []byte
}

func (w *dropOldestWriter) Write(p []byte) (int, error) {
	entry := append([]byte(nil), p...)
	for {
		select {
		case w.ch <- entry:
			return len(p), nil
		default:
			select {
			case <-w.ch:
			default:
			}
		}
	}
}

func (w *dropOldestWriter) Sync() error {
	return w.sink.Sync()
}

func (w *dropOldestWriter) run() {
	for entry := range w.ch {
		_, _ = w.sink.Write(entry)
	}
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// WithTraceFields returns zap fields carrying the active span's 128-bit hex
// trace id and span id, or nil if ctx carries no valid span.
func WithTraceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return nil
	}
	fields := []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
	if sc.IsSampled() {
		fields = append(fields, zap.Bool("sampled", true))
	}
	return fields
}

// LoggerFromContext returns logger enriched with the active span's trace
// fields, for use at each log call site along the decision path.
func LoggerFromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if fields := WithTraceFields(ctx); len(fields) > 0 {
		return logger.With(fields...)
	}
	return logger
}
