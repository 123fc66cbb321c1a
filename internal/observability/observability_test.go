package observability

import (
	"context"
	"log/slog"
	"testing"

	"go.opentelemetry.io/contrib/processors/minsev"
)

// restoreDefaults puts the global logger and pipeline state back after a test
// replaced them through Instrument.
func restoreDefaults(t *testing.T) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		loggerProvider = nil
	})
}

func TestInstrumentTextHandlerHonorsLevel(t *testing.T) {
	restoreDefaults(t)

	if err := Instrument(slog.LevelWarn, "text"); err != nil {
		t.Fatalf("Instrument failed: %v", err)
	}

	ctx := context.Background()
	if slog.Default().Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !slog.Default().Enabled(ctx, slog.LevelWarn) {
		t.Error("warn should be enabled at warn level")
	}
	if _, ok := slog.Default().Handler().(*slog.TextHandler); !ok {
		t.Errorf("expected *slog.TextHandler, got %T", slog.Default().Handler())
	}
}

func TestInstrumentJSONHandler(t *testing.T) {
	restoreDefaults(t)

	if err := Instrument(slog.LevelInfo, "json"); err != nil {
		t.Fatalf("Instrument failed: %v", err)
	}

	if _, ok := slog.Default().Handler().(*slog.JSONHandler); !ok {
		t.Errorf("expected *slog.JSONHandler, got %T", slog.Default().Handler())
	}
}

func TestInstrumentConsoleExporter(t *testing.T) {
	restoreDefaults(t)
	t.Setenv("OTEL_LOGS_EXPORTER", "console")

	if err := Instrument(slog.LevelInfo, "text"); err != nil {
		t.Fatalf("Instrument failed: %v", err)
	}

	if loggerProvider == nil {
		t.Fatal("expected an OpenTelemetry pipeline to be installed")
	}
	if _, ok := slog.Default().Handler().(*slog.TextHandler); ok {
		t.Error("expected the bridge handler, got the plain text handler")
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInstrumentRejectsUnknownExporter(t *testing.T) {
	restoreDefaults(t)
	t.Setenv("OTEL_LOGS_EXPORTER", "x-ray")

	err := Instrument(slog.LevelInfo, "text")
	if err == nil {
		t.Fatal("expected an error for an unknown exporter")
	}
}

func TestInstrumentRejectsUnknownOTLPProtocol(t *testing.T) {
	restoreDefaults(t)
	t.Setenv("OTEL_LOGS_EXPORTER", "otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")

	err := Instrument(slog.LevelInfo, "text")
	if err == nil {
		t.Fatal("expected an error for an unknown OTLP protocol")
	}
}

func TestOTLPProtocolResolution(t *testing.T) {
	tests := []struct {
		name         string
		logsProtocol string
		protocol     string
		wantProtocol string
	}{
		{name: "default", wantProtocol: "http/protobuf"},
		{name: "general variable", protocol: "grpc", wantProtocol: "grpc"},
		{name: "signal specific wins", logsProtocol: "http/protobuf", protocol: "grpc", wantProtocol: "http/protobuf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_EXPORTER_OTLP_LOGS_PROTOCOL", tt.logsProtocol)
			t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", tt.protocol)

			if got := otlpProtocol(); got != tt.wantProtocol {
				t.Errorf("otlpProtocol() = %q, want %q", got, tt.wantProtocol)
			}
		})
	}
}

func TestShutdownWithoutPipeline(t *testing.T) {
	loggerProvider = nil

	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestMinsevSeverity(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  minsev.Severity
	}{
		{slog.LevelDebug, minsev.SeverityDebug},
		{slog.LevelInfo, minsev.SeverityInfo},
		{slog.LevelWarn, minsev.SeverityWarn},
		{slog.LevelError, minsev.SeverityError},
		{slog.LevelError + 4, minsev.SeverityError},
	}

	for _, tt := range tests {
		if got := minsevSeverity(tt.level); got != tt.want {
			t.Errorf("minsevSeverity(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
