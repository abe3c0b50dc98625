package etherscan

import (
	"context"
	"strings"
	"time"
)

// isRateLimited reports whether err is the explorer's throttling rejection
// ("Max rate limit reached" behind a NOTOK status).
func isRateLimited(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

// withRetry runs fn up to maxRetries+1 times with doubling backoff between
// attempts. Rate-limited attempts wait twice the current backoff, since the
// throttle window is per elapsed time, not per attempt.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	var err error
	delay := baseDelay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}

		wait := delay
		if isRateLimited(err) {
			wait *= 2
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
