package attackchain

import (
	"context"
	"time"
)

// sleepDelayer waits a fixed duration, or returns early when the context is
// cancelled
type sleepDelayer struct {
	d time.Duration
}

// NewSleepDelayer creates a Delayer pausing for the given duration. A zero or
// negative duration never waits, which is how delays are globally disabled.
func NewSleepDelayer(d time.Duration) Delayer {
	return &sleepDelayer{d: d}
}

// NoDelay returns a Delayer that never waits
func NoDelay() Delayer {
	return &sleepDelayer{}
}

// Wait implements Delayer.Wait
func (s *sleepDelayer) Wait(ctx context.Context) error {
	if s.d <= 0 {
		return nil
	}

	timer := time.NewTimer(s.d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
