package telemetry

import (
	"context"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type slowTraceExporter struct {
	next      sdktrace.SpanExporter
	threshold time.Duration
}

var _ sdktrace.SpanExporter = (*slowTraceExporter)(nil)

// NewSlowTraceExporter returns an exporter forwarding to next the spans of the traces whose root
// span in the same batch lasted at least threshold. Other spans are dropped.
func NewSlowTraceExporter(next sdktrace.SpanExporter, threshold time.Duration) sdktrace.SpanExporter {
	return &slowTraceExporter{next: next, threshold: threshold}
}

func (e *slowTraceExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	slow := make(map[trace.TraceID]struct{})
	for _, span := range spans {
		if span.Parent().IsValid() {
			continue
		}
		if span.EndTime().Sub(span.StartTime()) >= e.threshold {
			slow[span.SpanContext().TraceID()] = struct{}{}
		}
	}
	if len(slow) == 0 {
		return nil
	}

	kept := make([]sdktrace.ReadOnlySpan, 0, len(spans))
	for _, span := range spans {
		if _, ok := slow[span.SpanContext().TraceID()]; ok {
			kept = append(kept, span)
		}
	}
	return e.next.ExportSpans(ctx, kept)
}

func (e *slowTraceExporter) Shutdown(ctx context.Context) error {
	return e.next.Shutdown(ctx)
}
