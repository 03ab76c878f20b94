// Package logger is a thin slog front end. Records carry the active trace and
// span IDs, and wrappers can skip frames so the reported source stays on the
// real caller.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"crypto-chart-analyzer/internal/trace"
)

// Options selects the handler built by Configure.
type Options struct {
	Level    string // DEBUG, INFO, WARN, ERROR
	Format   string // json or text
	Detailed bool   // debug records and caller source
	Output   io.Writer
}

var (
	current  atomic.Pointer[slog.Logger]
	detailed atomic.Bool
)

func init() {
	current.Store(slog.New(traceHandler{slog.NewTextHandler(os.Stderr, nil)}))
}

// Init configures logging from LOG_LEVEL, LOG_FORMAT and LOG_DETAILED.
func Init() error {
	return Configure(OptionsFromEnv())
}

func OptionsFromEnv() Options {
	return Options{
		Level:    envOr("LOG_LEVEL", "INFO"),
		Format:   envOr("LOG_FORMAT", "text"),
		Detailed: envOr("LOG_DETAILED", "false") == "true",
	}
}

// Configure replaces the package logger and the slog default. Output defaults
// to stderr so stdout stays free for command output.
func Configure(o Options) error {
	out := o.Output
	if out == nil {
		out = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: levelOf(o.Level), AddSource: o.Detailed}

	var h slog.Handler = slog.NewTextHandler(out, ho)
	if strings.EqualFold(o.Format, "json") {
		h = slog.NewJSONHandler(out, ho)
	}
	l := slog.New(traceHandler{h})

	detailed.Store(o.Detailed)
	current.Store(l)
	slog.SetDefault(l)
	return nil
}

func levelOf(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// traceHandler stamps trace_id and span_id onto every record.
type traceHandler struct{ slog.Handler }

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		r.AddAttrs(slog.String("trace_id", traceID), slog.String("span_id", spanID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}

// emit builds the record itself so the source position is the caller's.
// skip counts frames above emit's direct caller.
func emit(ctx context.Context, level slog.Level, skip int, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	l := current.Load()
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3+skip, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

func markSpan(ctx context.Context, err error) {
	if err == nil || !trace.Enabled() {
		return
	}
	if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Debug records are dropped unless detailed logging is on.
func Debug(ctx context.Context, msg string, args ...any) {
	if detailed.Load() {
		emit(ctx, slog.LevelDebug, 0, msg, args...)
	}
}

func Info(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, 0, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, 0, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelError, 0, msg, args...)
}

// ErrorWithErr logs err under the "error" key and fails the active span.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	markSpan(ctx, err)
	emit(ctx, slog.LevelError, 0, msg, append([]any{"error", err}, args...)...)
}

// The Skip variants are for middleware: skip is the number of wrapper frames
// between the real caller and the call into this package.

func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if detailed.Load() {
		emit(ctx, slog.LevelDebug, skip, msg, args...)
	}
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, skip, msg, args...)
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	markSpan(ctx, err)
	emit(ctx, slog.LevelError, skip, msg, append([]any{"error", err}, args...)...)
}

func IsDebugEnabled() bool {
	return detailed.Load()
}
