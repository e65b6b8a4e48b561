package sentry

import (
	"fmt"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/hovergrid/preflight/pkg/config"
)

// Reporter forwards check failures to Sentry. With no DSN configured it
// degrades to a no-op so local runs work without an account.
type Reporter struct {
	enabled bool
}

// Init configures the global Sentry client from config.
func Init(cfg config.SentryConfig, release string) (*Reporter, error) {
	if cfg.DSN == "" {
		return &Reporter{enabled: false}, nil
	}

	err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing sentry: %w", err)
	}

	return &Reporter{enabled: true}, nil
}

// Enabled reports whether events actually leave the process.
func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled
}

// CaptureError forwards err with suite/check tags attached.
func (r *Reporter) CaptureError(err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	sentrygo.WithScope(func(scope *sentrygo.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentrygo.CaptureException(err)
	})
}

// Flush drains the event queue before process exit.
func (r *Reporter) Flush(timeout time.Duration) {
	if !r.Enabled() {
		return
	}
	sentrygo.Flush(timeout)
}
