package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hovergrid/preflight/pkg/config"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries uint64) config.RetryConfig {
	return config.RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond}
}

func TestRetryAll_ExhaustsMaxRetries(t *testing.T) {
	calls := 0
	err := RetryAll(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return errors.New("still failing")
	})

	require.Error(t, err)
	// one initial attempt plus maxRetries retries
	require.Equal(t, 4, calls)
}

func TestRetryAll_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := RetryAll(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetry_AbortsOnNonRetryableError(t *testing.T) {
	calls := 0
	constraintErr := pkgerrors.New(pkgerrors.CodeConstraint, "price must be >= 0")
	err := Retry(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return constraintErr
	})

	require.ErrorIs(t, err, constraintErr)
	require.Equal(t, 1, calls, "constraint violations must not be retried")
}

func TestRetry_RetriesConnectionErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		return pkgerrors.New(pkgerrors.CodeConnection, "refused")
	})

	require.Error(t, err)
	require.Equal(t, 3, calls)
}

func TestRetry_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryAll(ctx, config.RetryConfig{MaxRetries: 50, BaseDelay: 10 * time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("transient")
	})

	require.Error(t, err)
	require.Less(t, calls, 50)
}

func TestRetry_DelaysDouble(t *testing.T) {
	var stamps []time.Time
	_ = RetryAll(context.Background(), config.RetryConfig{MaxRetries: 2, BaseDelay: 20 * time.Millisecond}, func(ctx context.Context) error {
		stamps = append(stamps, time.Now())
		return errors.New("transient")
	})

	require.Len(t, stamps, 3)
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	require.GreaterOrEqual(t, first, 20*time.Millisecond)
	require.GreaterOrEqual(t, second, 40*time.Millisecond)
}
