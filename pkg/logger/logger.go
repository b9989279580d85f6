package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

type requestIDKey struct{}

// Logger is disabled until Init is called, which keeps tests quiet.
var Logger = zerolog.Nop()

// Init writes JSON lines to stdout, or a console format in development.
func Init(serviceName string, isDevelopment bool) {
	var output io.Writer = os.Stdout
	if isDevelopment {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	InitWithWriter(serviceName, output)
}

func InitWithWriter(serviceName string, output io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Logger = zerolog.New(output).With().Timestamp().Str("service", serviceName).Logger()
	log.Logger = Logger
}

// SetLevel sets the global log level; unknown names fall back to info
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// WithRequestID tags every line logged under ctx with the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func Info(ctx context.Context) *zerolog.Event {
	return annotate(ctx, Logger.Info())
}

func Error(ctx context.Context) *zerolog.Event {
	return annotate(ctx, Logger.Error())
}

func Debug(ctx context.Context) *zerolog.Event {
	return annotate(ctx, Logger.Debug())
}

func Warn(ctx context.Context) *zerolog.Event {
	return annotate(ctx, Logger.Warn())
}

// annotate adds the trace and request correlation fields carried by ctx.
func annotate(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e = e.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	if id := RequestID(ctx); id != "" {
		e = e.Str("request_id", id)
	}
	return e
}
