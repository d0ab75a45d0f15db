// Package retry runs RPC reads with exponential backoff.
package retry

import (
	"context"
	"time"
)

// DefaultBackoff is used when a non-positive base delay is given.
const DefaultBackoff = 100 * time.Millisecond

// Do calls fn until it succeeds, maxRetries retries are spent, or ctx ends.
// The delay starts at baseDelay and doubles after every failed attempt.
func Do(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBackoff
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
