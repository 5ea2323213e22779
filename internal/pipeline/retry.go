package pipeline

import (
	"context"
	"time"
)

// RetryPolicy bounds the attempts made at one transform call.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	// Sleep waits between attempts; nil means a real, cancellable sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy makes 3 attempts with 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2,
	}
}

// Delay is the wait before the given 1-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := float64(p.InitialDelay)
	for i := 2; i < attempt; i++ {
		d *= p.Multiplier
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds or the attempts run out. onRetry, if set, is
// told about each failure that will be retried. It returns the number of
// attempts made and the last error.
func (p RetryPolicy) Do(
	ctx context.Context,
	fn func(ctx context.Context) error,
	onRetry func(attempt int, delay time.Duration, err error),
) (int, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := p.Delay(attempt)
			if onRetry != nil {
				onRetry(attempt-1, delay, err)
			}
			if serr := sleep(ctx, delay); serr != nil {
				return attempt - 1, serr
			}
		}

		if err = fn(ctx); err == nil {
			return attempt, nil
		}
		if ctx.Err() != nil {
			return attempt, err
		}
	}
	return attempts, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
