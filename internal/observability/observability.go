// Package observability installs the process-wide logging pipeline.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatOTel = "otel"
)

// Instrument sets the slog default logger for the whole process.
//
// text and json write handler output to stderr; stdout stays free for
// command output and the bridge message stream. otel routes records
// through the OpenTelemetry log SDK: to an OTLP endpoint when
// OTEL_EXPORTER_OTLP_ENDPOINT is set (protocol from
// OTEL_EXPORTER_OTLP_PROTOCOL, gRPC by default), else to stdout in OTLP
// JSON form. The pipeline lives for the rest of the process; there is no
// teardown hook.
func Instrument(level slog.Level, format string) error {
	switch format {
	case FormatText:
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	case FormatJSON:
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	case FormatOTel:
		exporter, err := newLogExporter(context.Background())
		if err != nil {
			return fmt.Errorf("creating log exporter: %w", err)
		}
		provider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(
				minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level)),
			),
		)
		slog.SetDefault(slog.New(otelslog.NewHandler("folio", otelslog.WithLoggerProvider(provider))))
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}
	return nil
}

// newLogExporter picks the OTel exporter from the standard OTLP environment.
func newLogExporter(ctx context.Context) (sdklog.Exporter, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return stdoutlog.New()
	}
	switch os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") {
	case "http/protobuf", "http/json":
		return otlploghttp.New(ctx)
	default:
		return otlploggrpc.New(ctx)
	}
}

// severity maps a slog level to the minimum OTel severity to emit.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level >= slog.LevelError:
		return minsev.SeverityError
	case level >= slog.LevelWarn:
		return minsev.SeverityWarn
	case level >= slog.LevelInfo:
		return minsev.SeverityInfo
	default:
		return minsev.SeverityDebug
	}
}
