package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp, shutdown, err := NewTracerProvider(context.Background(),
		WithExporter(exporter),
		WithServiceName("ppbfs-test"),
		WithSamplingRatio(1),
	)
	require.NoError(t, err)
	t.Cleanup(DisableTracing)

	_, span := otel.Tracer("test").Start(context.Background(), "query")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "query", spans[0].Name)

	require.NoError(t, shutdown(context.Background()))
}

func TestSlowTraceExporter(t *testing.T) {
	now := time.Now()
	fastTrace := trace.TraceID{1}
	slowTrace := trace.TraceID{2}

	root := func(id trace.TraceID, d time.Duration) tracetest.SpanStub {
		return tracetest.SpanStub{
			Name:        "root",
			SpanContext: trace.NewSpanContext(trace.SpanContextConfig{TraceID: id, SpanID: trace.SpanID{1}}),
			StartTime:   now,
			EndTime:     now.Add(d),
		}
	}
	child := func(id trace.TraceID) tracetest.SpanStub {
		return tracetest.SpanStub{
			Name:        "child",
			SpanContext: trace.NewSpanContext(trace.SpanContextConfig{TraceID: id, SpanID: trace.SpanID{2}}),
			Parent:      trace.NewSpanContext(trace.SpanContextConfig{TraceID: id, SpanID: trace.SpanID{1}}),
			StartTime:   now,
			EndTime:     now.Add(time.Hour),
		}
	}

	exporter := tracetest.NewInMemoryExporter()
	slow := NewSlowTraceExporter(exporter, 100*time.Millisecond)

	spans := tracetest.SpanStubs{
		root(fastTrace, time.Millisecond),
		child(fastTrace),
		root(slowTrace, time.Second),
		child(slowTrace),
	}.Snapshots()
	require.NoError(t, slow.ExportSpans(context.Background(), spans))

	got := exporter.GetSpans()
	require.Len(t, got, 2)
	for _, s := range got {
		require.Equal(t, slowTrace, s.SpanContext.TraceID())
	}

	exporter.Reset()
	require.NoError(t, slow.ExportSpans(context.Background(), tracetest.SpanStubs{root(fastTrace, 0)}.Snapshots()))
	require.Empty(t, exporter.GetSpans())

	require.NoError(t, slow.Shutdown(context.Background()))
}

func TestTraceError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "failing")
	TraceError(span, context.DeadlineExceeded)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Len(t, ended[0].Events(), 1)
	require.Equal(t, context.DeadlineExceeded.Error(), ended[0].Status().Description)
}

func TestWriteMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "A test counter."})
	registry.MustRegister(counter)
	counter.Add(3)

	var buf bytes.Buffer
	require.NoError(t, WriteMetrics(&buf, registry))
	require.Contains(t, buf.String(), "# HELP test_total A test counter.")
	require.Contains(t, buf.String(), "test_total 3")
}
