// Package trace owns the process-wide OpenTelemetry tracer. Tracing is off
// unless LOG_TRACING_ENABLED=true; spans are then printed as JSON.
package trace

import (
	"context"
	"io"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "crypto-chart-analyzer"
	serviceVersion = "1.0.0"
)

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	enabled        bool
)

// Init reads LOG_TRACING_ENABLED and TRACE_SAMPLE_RATIO and exports spans to stderr.
func Init() error {
	return InitWithWriter(os.Stderr)
}

// InitWithWriter is Init with spans written to w.
func InitWithWriter(w io.Writer) error {
	enabled = os.Getenv("LOG_TRACING_ENABLED") == "true"
	if !enabled {
		return nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(w))
	if err != nil {
		enabled = false
		return err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		enabled = false
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio()))),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = tracerProvider.Tracer(serviceName)
	return nil
}

func sampleRatio() float64 {
	r, err := strconv.ParseFloat(os.Getenv("TRACE_SAMPLE_RATIO"), 64)
	if err != nil || r < 0 || r > 1 {
		return 1
	}
	return r
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

// StartSpan starts a child span, or returns the current one untouched when tracing is off.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

func Enabled() bool { return enabled }

// GetTraceFields returns the ids of the span in ctx for log correlation.
func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
