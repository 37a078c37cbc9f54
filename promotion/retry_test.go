package promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetryConfig keeps the backoff schedule but makes delays negligible
func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		err       error
		transient bool
	}{
		{err: errors.New("connection timeout"), transient: true},
		{err: errors.New("database is locked"), transient: true},
		{err: errors.New("HTTP 503: Service Unavailable"), transient: true},
		{err: errors.New("rate-limit exceeded"), transient: true},
		{err: errors.New("context deadline exceeded"), transient: true},
		{err: errors.New("UNIQUE constraint failed: clients.client_id"), transient: false},
		{err: errors.New("invalid payload"), transient: false},
		{err: nil, transient: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.transient, IsTransientError(tt.err), "%v", tt.err)
	}
}

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "promotion", func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	}, fastRetryConfig(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttemptsAndLogsOnce(t *testing.T) {
	var logged []int
	persistent := errors.New("connection refused")

	calls := 0
	err := WithRetry(context.Background(), "promotion", func() error {
		calls++
		return persistent
	}, fastRetryConfig(), func(process string, finalErr error, attempts int) {
		logged = append(logged, attempts)
		assert.Equal(t, "promotion", process)
		assert.Equal(t, persistent, finalErr)
	})

	require.Error(t, err)
	assert.Equal(t, persistent, err)
	assert.Equal(t, 3, calls)
	// The failure is logged exactly once, on the final attempt
	assert.Equal(t, []int{3}, logged)
}

func TestWithRetryDoesNotRetryNonTransientErrors(t *testing.T) {
	var logged []int
	fatal := errors.New("UNIQUE constraint failed")

	calls := 0
	err := WithRetry(context.Background(), "promotion", func() error {
		calls++
		return fatal
	}, fastRetryConfig(), func(process string, finalErr error, attempts int) {
		logged = append(logged, attempts)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{1}, logged)
}

func TestWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := fastRetryConfig()
	config.InitialDelay = time.Second

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- WithRetry(ctx, "promotion", func() error {
			calls++
			return errors.New("timeout")
		}, config, func(string, error, int) {})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("WithRetry did not return after context cancellation")
	}
}
