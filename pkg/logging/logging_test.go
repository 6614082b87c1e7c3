package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("verbose", "console"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewBuildsLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := New("debug", format)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", format, err)
		}
		if logger == nil {
			t.Fatalf("expected logger for format %q", format)
		}
	}
}

func TestTelemetryRecordsStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	telemetry := NewTelemetry(zap.New(core))

	telemetry.Record(context.Background(), "metrics.export.csv", map[string]any{
		"user_id": "admin",
		"records": 7,
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "metrics.export.csv" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["user_id"] != "admin" {
		t.Fatalf("expected user_id field, got %#v", fields)
	}
}

func TestTelemetryNilLoggerIsSafe(t *testing.T) {
	telemetry := NewTelemetry(nil)
	telemetry.Record(context.Background(), "noop", nil)
}
