package sentry

import (
	"errors"
	"testing"
	"time"

	"github.com/hovergrid/preflight/pkg/config"
)

func TestInitWithoutDSNIsDisabled(t *testing.T) {
	reporter, err := Init(config.SentryConfig{}, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reporter.Enabled() {
		t.Fatal("reporter should be disabled without a DSN")
	}

	// All of these must be safe no-ops.
	reporter.CaptureError(errors.New("boom"), map[string]string{"suite": "connection"})
	reporter.Flush(time.Millisecond)
}

func TestNilReporterIsSafe(t *testing.T) {
	var reporter *Reporter
	if reporter.Enabled() {
		t.Fatal("nil reporter should report disabled")
	}
	reporter.CaptureError(errors.New("boom"), nil)
	reporter.Flush(time.Millisecond)
}

func TestInitRejectsBadDSN(t *testing.T) {
	if _, err := Init(config.SentryConfig{DSN: "not-a-dsn"}, "test"); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}
