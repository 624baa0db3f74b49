package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogSpanExporter implements sdktrace.SpanExporter by writing each finished
// span as one structured log record.
type LogSpanExporter struct {
	logger *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewLogSpanExporter creates an exporter writing to logger.
func NewLogSpanExporter(logger *slog.Logger) *LogSpanExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSpanExporter{logger: logger.With(slog.String("component", "tracing"))}
}

var _ sdktrace.SpanExporter = (*LogSpanExporter)(nil)

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return nil
	}

	for _, span := range spans {
		attrs := []any{
			slog.String("span", span.Name()),
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
			slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
		}
		if parent := span.Parent(); parent.IsValid() {
			attrs = append(attrs, slog.String("parent_span_id", parent.SpanID().String()))
		}

		fields := make([]any, 0, len(span.Attributes()))
		for _, kv := range span.Attributes() {
			fields = append(fields, slog.Any(string(kv.Key), kv.Value.AsInterface()))
		}
		if len(fields) > 0 {
			attrs = append(attrs, slog.Group("attributes", fields...))
		}

		level := slog.LevelDebug
		if span.Status().Code == codes.Error {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("status", span.Status().Description))
		}
		e.logger.Log(ctx, level, "span finished", attrs...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter. Later exports are dropped.
func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	return nil
}
