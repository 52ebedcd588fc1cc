package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

func TestConfigureSlog_JSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("kept", slog.String("skill", "swap"))

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record must be dropped at warn level")
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if record["msg"] != "kept" || record["skill"] != "swap" {
		t.Errorf("unexpected record %v", record)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLogLevel(input); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestInitWithConfig_RejectsUnknownExporter(t *testing.T) {
	if _, err := InitWithConfig("agentkit", "test", Config{Exporter: "statsd"}); err == nil {
		t.Fatal("expected an error for an unknown exporter")
	}
}

func TestInitWithConfig_OTLPNeedsEndpoint(t *testing.T) {
	if _, err := InitWithConfig("agentkit", "test", Config{Exporter: "otlp"}); err == nil {
		t.Fatal("expected an error when otlp has no endpoint")
	}
}

func TestToolMetrics_RecordsWithoutProvider(t *testing.T) {
	// The default global meter provider is a no-op; recording must still
	// be safe.
	metrics, err := NewToolMetrics()
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordInvocation(ctx, "swap", "completed", 120*time.Millisecond)
	metrics.RecordFailure(ctx, "swap", agenterrors.NewValidation("bad input"))
	metrics.RecordFailure(ctx, "swap", nil)

	var nilMetrics *ToolMetrics
	nilMetrics.RecordInvocation(ctx, "swap", "completed", time.Second)
	nilMetrics.RecordFailure(ctx, "swap", agenterrors.NewValidation("x"))
}
