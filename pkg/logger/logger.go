package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	JSONLoggingFormat    = "json"
	ConsoleLoggingFormat = "console"

	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"

	ContextKeyRequestID   contextKey = "requestID"
	ContextKeyExecutionID contextKey = "executionID"
	ContextKeyNode        contextKey = "node"
)

type Logger struct {
	zerolog.Logger
}

func New(level, format string) Logger {
	return NewWithWriter(level, format, os.Stdout)
}

// NewWithWriter builds a logger writing to w. Unknown levels fall back to info.
func NewWithWriter(level, format string, w io.Writer) Logger {
	var output io.Writer = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	if strings.EqualFold(format, JSONLoggingFormat) {
		output = w
	}

	logger := zerolog.New(output).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()

	return Logger{Logger: logger}
}

func ParseLevel(level string) zerolog.Level {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == LogLevelWarning {
		normalized = LogLevelWarn
	}

	parsed, err := zerolog.ParseLevel(normalized)
	if err != nil || normalized == "" {
		return zerolog.InfoLevel
	}

	return parsed
}

// WithExecution tags ctx so every log line of a node run carries the same ids.
func WithExecution(ctx context.Context, executionID, node string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyExecutionID, executionID)

	return context.WithValue(ctx, ContextKeyNode, node)
}

func (l Logger) WithContext(ctx context.Context) zerolog.Logger {
	fields := l.Logger.With()

	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		fields = fields.Str("request_id", requestID)
	}

	if executionID, ok := ctx.Value(ContextKeyExecutionID).(string); ok && executionID != "" {
		fields = fields.Str("execution_id", executionID)
	}

	if node, ok := ctx.Value(ContextKeyNode).(string); ok && node != "" {
		fields = fields.Str("node", node)
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		fields = fields.
			Str("trace_id", spanCtx.TraceID().String()).
			Str("span_id", spanCtx.SpanID().String())
	}

	return fields.Logger()
}

// Component returns a child logger tagged with the emitting component.
func (l Logger) Component(name string) Logger {
	return Logger{Logger: l.Logger.With().Str("component", name).Logger()}
}
