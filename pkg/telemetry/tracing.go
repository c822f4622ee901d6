// Package telemetry configures the trace and metric exports of the ppbfs binary.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"

	"github.com/openfga/ppbfs/internal/build"
)

type TracerOption func(c *tracerConfig)

func WithOTLPEndpoint(endpoint string) TracerOption {
	return func(c *tracerConfig) {
		c.endpoint = endpoint
	}
}

func WithServiceName(serviceName string) TracerOption {
	return func(c *tracerConfig) {
		c.serviceName = serviceName
	}
}

func WithSamplingRatio(samplingRatio float64) TracerOption {
	return func(c *tracerConfig) {
		c.samplingRatio = samplingRatio
	}
}

// WithSlowQueryThreshold only exports the traces whose root span lasted at least threshold.
func WithSlowQueryThreshold(threshold time.Duration) TracerOption {
	return func(c *tracerConfig) {
		c.slowQueryThreshold = threshold
	}
}

// WithExporter replaces the OTLP exporter.
func WithExporter(exporter sdktrace.SpanExporter) TracerOption {
	return func(c *tracerConfig) {
		c.exporter = exporter
	}
}

type tracerConfig struct {
	endpoint           string
	serviceName        string
	samplingRatio      float64
	slowQueryThreshold time.Duration
	exporter           sdktrace.SpanExporter
}

// NewTracerProvider builds a tracer provider and installs it as the global one. The returned
// function flushes and shuts it down.
func NewTracerProvider(ctx context.Context, opts ...TracerOption) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	cfg := &tracerConfig{
		serviceName: build.ProjectName,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(cfg.serviceName),
			semconv.ServiceVersionKey.String(build.Version),
		))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	exp := cfg.exporter
	if exp == nil {
		dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		exp, err = otlptracegrpc.New(dialCtx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.endpoint),
			otlptracegrpc.WithDialOption(grpc.WithBlock()),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to establish a connection with the otlp exporter: %w", err)
		}
	}

	if cfg.slowQueryThreshold > 0 {
		exp = NewSlowTraceExporter(exp, cfg.slowQueryThreshold)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.samplingRatio)),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exp)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.ForceFlush(ctx), tp.Shutdown(ctx))
	}
	return tp, shutdown, nil
}

// DisableTracing installs a tracer provider that records nothing.
func DisableTracing() {
	otel.SetTracerProvider(noop.NewTracerProvider())
}

// TraceError marks span as failed with err.
func TraceError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
