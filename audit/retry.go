package audit

import (
	"context"
	"time"

	"github.com/fwojciec/docgap"
)

// DefaultRetryDelays returns the backoff delays between job attempts: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry calls fn until it succeeds, returns an EINVALID error, or every
// delay has been waited out. onRetry, if set, is called before each wait.
func Retry[T any](ctx context.Context, delays []time.Duration, fn func(context.Context) (T, error), onRetry func(attempt int, err error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= len(delays) || docgap.ErrorCode(err) == docgap.EINVALID || ctx.Err() != nil {
			return zero, err
		}

		if onRetry != nil {
			onRetry(attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
}
