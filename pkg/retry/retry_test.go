package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDeadlock = errors.New("deadlock")

func isDeadlock(err error) bool { return errors.Is(err, errDeadlock) }

func TestWithExponentialBackoff_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	retried := 0

	err := WithExponentialBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errDeadlock
		}
		return nil
	},
		BaseDelay(time.Millisecond),
		RetryIf(isDeadlock),
		OnRetry(func(int, error) { retried++ }),
	)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retried)
}

func TestWithExponentialBackoff_PermanentErrorFailsFast(t *testing.T) {
	permanent := errors.New("not found")
	calls := 0

	err := WithExponentialBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return permanent
	}, RetryIf(isDeadlock))

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithExponentialBackoff_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0

	err := WithExponentialBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return errDeadlock
	}, MaxAttempts(4), BaseDelay(time.Millisecond), RetryIf(isDeadlock))

	assert.ErrorIs(t, err, errDeadlock)
	assert.Equal(t, 4, calls)
}

func TestWithExponentialBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithExponentialBackoff(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errDeadlock
	}, BaseDelay(time.Second), RetryIf(isDeadlock))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestOptions_Validate(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	assert.ErrorIs(t, WithExponentialBackoff(context.Background(), noop, MaxAttempts(0)), ErrInvalidMaxAttempts)
	assert.ErrorIs(t, WithExponentialBackoff(context.Background(), noop, BaseDelay(-time.Second)), ErrNegativeBaseDelay)
	assert.ErrorIs(t, WithExponentialBackoff(context.Background(), noop, JitterFactor(1.5)), ErrInvalidJitterFactor)
}
