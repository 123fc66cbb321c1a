// Package observability configures the process-wide logger. By default logs
// go to stderr as text or JSON. Setting OTEL_LOGS_EXPORTER routes them through
// an OpenTelemetry pipeline instead (console or OTLP), with the service
// identity taken from the standard OTEL_* environment variables.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// name identifies the instrumentation scope of the log bridge.
const name = "github.com/freke242/fortnox-slack-bot"

// loggerProvider is set when an OpenTelemetry pipeline is installed, so
// Shutdown can flush it. Instrument is called once at startup.
var loggerProvider *sdklog.LoggerProvider

// Instrument installs the process-wide default logger.
func Instrument(level slog.Level, format string) error {
	handler, err := newHandler(level, format)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func newHandler(level slog.Level, format string) (slog.Handler, error) {
	exporter := strings.TrimSpace(os.Getenv("OTEL_LOGS_EXPORTER"))
	if exporter == "" || exporter == "none" {
		opts := &slog.HandlerOptions{Level: level}
		if format == "json" {
			return slog.NewJSONHandler(os.Stderr, opts), nil
		}
		return slog.NewTextHandler(os.Stderr, opts), nil
	}

	exp, err := newExporter(context.Background(), exporter)
	if err != nil {
		return nil, err
	}

	// The minsev processor enforces the configured level; the bridge itself
	// forwards every record.
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(
		minsev.NewLogProcessor(sdklog.NewBatchProcessor(exp), minsevSeverity(level)),
	))
	loggerProvider = provider

	return otelslog.NewHandler(name, otelslog.WithLoggerProvider(provider)), nil
}

func newExporter(ctx context.Context, kind string) (sdklog.Exporter, error) {
	switch kind {
	case "console":
		return stdoutlog.New()
	case "otlp":
		switch protocol := otlpProtocol(); protocol {
		case "grpc":
			return otlploggrpc.New(ctx)
		case "http/protobuf":
			return otlploghttp.New(ctx)
		default:
			return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
		}
	default:
		return nil, fmt.Errorf("unsupported OTEL_LOGS_EXPORTER %q", kind)
	}
}

// otlpProtocol resolves the OTLP transport following the OpenTelemetry
// environment variable convention, signal-specific variable first.
func otlpProtocol() string {
	if p := os.Getenv("OTEL_EXPORTER_OTLP_LOGS_PROTOCOL"); p != "" {
		return p
	}
	if p := os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"); p != "" {
		return p
	}
	return "http/protobuf"
}

func minsevSeverity(level slog.Level) minsev.Severity {
	switch {
	case level < slog.LevelInfo:
		return minsev.SeverityDebug
	case level < slog.LevelWarn:
		return minsev.SeverityInfo
	case level < slog.LevelError:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}

// Shutdown flushes buffered log records and stops the OpenTelemetry pipeline
// if one was installed. It is a no-op for the plain stderr handlers.
func Shutdown(ctx context.Context) error {
	if loggerProvider == nil {
		return nil
	}
	return loggerProvider.Shutdown(ctx)
}
