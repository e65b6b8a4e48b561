package backoff

import (
	"context"
	"time"

	"github.com/hovergrid/preflight/pkg/config"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/sethvargo/go-retry"
)

// Operation is any function the helper may invoke more than once.
type Operation func(ctx context.Context) error

// Retry re-invokes fn with exponentially doubling delays starting at the
// configured base delay, up to MaxRetries retries. Errors the taxonomy marks
// non-retryable (constraint violations, policy denials) abort immediately.
func Retry(ctx context.Context, cfg config.RetryConfig, fn Operation) error {
	return run(ctx, cfg, fn, func(err error) bool {
		return pkgerrors.IsRetryable(err)
	})
}

// RetryAll re-invokes fn on every error, for callers that cannot classify
// what they are wrapping.
func RetryAll(ctx context.Context, cfg config.RetryConfig, fn Operation) error {
	return run(ctx, cfg, fn, func(error) bool { return true })
}

func run(ctx context.Context, cfg config.RetryConfig, fn Operation, retryable func(error) bool) error {
	base := cfg.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}

	b := retry.WithMaxRetries(cfg.MaxRetries, retry.NewExponential(base))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
