package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}

	t.Run("returns first success without retrying", func(t *testing.T) {
		t.Parallel()

		calls := 0
		v, err := audit.Retry(context.Background(), delays, func(context.Context) (string, error) {
			calls++
			return "ok", nil
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failures until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var attempts []int
		v, err := audit.Retry(context.Background(), delays, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("connection reset")
			}
			return 42, nil
		}, func(attempt int, _ error) {
			attempts = append(attempts, attempt)
		})

		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{2, 3}, attempts)
	})

	t.Run("gives up after every delay is used", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := audit.Retry(context.Background(), delays, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("unavailable")
		}, nil)

		require.EqualError(t, err, "unavailable")
		assert.Equal(t, len(delays)+1, calls)
	})

	t.Run("does not retry invalid input", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := audit.Retry(context.Background(), delays, func(context.Context) (int, error) {
			calls++
			return 0, docgap.Errorf(docgap.EINVALID, "bad sitemap URL")
		}, nil)

		require.Error(t, err)
		assert.Equal(t, docgap.EINVALID, docgap.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		_, err := audit.Retry(ctx, []time.Duration{time.Hour}, func(context.Context) (int, error) {
			cancel()
			return 0, errors.New("unavailable")
		}, nil)

		assert.Error(t, err)
	})

	t.Run("provides exponential default delays", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, audit.DefaultRetryDelays())
	})
}
