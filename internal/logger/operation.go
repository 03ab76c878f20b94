package logger

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"crypto-chart-analyzer/internal/trace"
)

// Operation ties a span to the log lines of one unit of work.
type Operation struct {
	ctx    context.Context
	span   oteltrace.Span
	name   string
	start  time.Time
	fields []any
}

// StartOperation opens a span named name. Log through GetContext so records
// carry the span's IDs.
func StartOperation(ctx context.Context, name string, fields ...any) *Operation {
	ctx, span := trace.StartSpan(ctx, name, oteltrace.WithAttributes(attrs(fields)...))
	Debug(ctx, "Operation started", append([]any{"operation", name}, fields...)...)
	return &Operation{ctx: ctx, span: span, name: name, start: time.Now(), fields: fields}
}

func (op *Operation) GetContext() context.Context { return op.ctx }

func (op *Operation) End(fields ...any) {
	elapsed := op.finish(nil, fields)
	if detailed.Load() {
		emit(op.ctx, slog.LevelDebug, 0, "Operation completed", op.logArgs(elapsed, nil, fields)...)
	}
}

func (op *Operation) EndWithError(err error, fields ...any) {
	elapsed := op.finish(err, fields)
	emit(op.ctx, slog.LevelError, 0, "Operation failed", op.logArgs(elapsed, err, fields)...)
}

func (op *Operation) finish(err error, fields []any) time.Duration {
	elapsed := time.Since(op.start)
	if !trace.Enabled() {
		return elapsed
	}
	op.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))
	op.span.SetAttributes(attrs(fields)...)
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	} else {
		op.span.SetStatus(codes.Ok, "")
	}
	op.span.End()
	return elapsed
}

func (op *Operation) logArgs(elapsed time.Duration, err error, extra []any) []any {
	args := make([]any, 0, len(op.fields)+len(extra)+6)
	args = append(args, "operation", op.name)
	args = append(args, op.fields...)
	args = append(args, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		args = append(args, "error", err)
	}
	return append(args, extra...)
}

// Stage marks a workflow step. Always logged at INFO.
func Stage(ctx context.Context, symbol, stage string, fields ...any) {
	event(ctx, "workflow_stage", "Workflow stage",
		[]any{"type", "STAGE", "symbol", symbol, "stage", stage}, fields)
}

// Hint records the side of a received trading hint.
func Hint(ctx context.Context, symbol, timeframe, side string, fields ...any) {
	event(ctx, "trading_hint", "Trading hint received",
		[]any{"type", "HINT", "symbol", symbol, "timeframe", timeframe, "side", side}, fields)
}

// event mirrors a log record onto the active span as a span event.
func event(ctx context.Context, name, msg string, head, tail []any) {
	if span := oteltrace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, oteltrace.WithAttributes(attrs(head)...))
	}
	emit(ctx, slog.LevelInfo, 1, msg, append(head, tail...)...)
}

// attrs converts alternating key/value pairs. Values of other types are skipped.
func attrs(kv []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			out = append(out, attribute.String(key, v))
		case int:
			out = append(out, attribute.Int(key, v))
		case int64:
			out = append(out, attribute.Int64(key, v))
		case float64:
			out = append(out, attribute.Float64(key, v))
		case bool:
			out = append(out, attribute.Bool(key, v))
		}
	}
	return out
}
