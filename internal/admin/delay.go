package admin

import (
	"context"
	"time"
)

// Delay runs before a submission is processed. It returns early with the
// context's error when the request is cancelled.
type Delay func(ctx context.Context) error

// NoDelay returns immediately.
func NoDelay(ctx context.Context) error {
	return ctx.Err()
}

// Sleep waits d before every submission.
func Sleep(d time.Duration) Delay {
	if d <= 0 {
		return NoDelay
	}

	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
