package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func newJSONLogger(t *testing.T, buf *bytes.Buffer) *Logger {
	t.Helper()
	t.Setenv("LOG_FORMAT", "json")
	return New(Options{ServiceName: "test", Output: buf})
}

func TestInfoCarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := newJSONLogger(t, &buf)

	ctx := logg.WithSuite(context.Background(), "connection")
	ctx = logg.WithCheck(ctx, "db-ping")
	logg.Info(ctx, "check passed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v (%s)", err, buf.String())
	}
	if entry["suite"] != "connection" {
		t.Fatalf("expected suite field, got %v", entry["suite"])
	}
	if entry["check"] != "db-ping" {
		t.Fatalf("expected check field, got %v", entry["check"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := newJSONLogger(t, &buf)

	logg.Error(context.Background(), "boom", errors.New("db down"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v", err)
	}
	if entry["error"] != "db down" {
		t.Fatalf("expected error field, got %v", entry["error"])
	}
	if stack, _ := entry["stack"].(string); stack == "" {
		t.Fatal("expected stack field on error logs")
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel(""); got != zerolog.InfoLevel {
		t.Fatalf("empty level should default to info, got %v", got)
	}
	if got := ParseLevel("DEBUG"); got != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", got)
	}
	if got := ParseLevel("nonsense"); got != zerolog.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %v", got)
	}
}
