package chat

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultCaptureTimeout bounds how long a caller waits for a roll-bearing
// message before treating the execution as roll-less
const DefaultCaptureTimeout = 5 * time.Second

// ErrCaptureTimeout is returned when no matching message arrived in time.
// Callers treat this as a valid degraded path for items that never roll.
var ErrCaptureTimeout = errors.New("timed out waiting for roll message")

// Capture is a one-shot subscription for the first message matching a source
// item. Subscribing happens at construction so a message published between
// construction and Wait is not lost.
type Capture struct {
	bus      *Bus
	handle   int
	resultCh chan *Message
	once     sync.Once
	closed   sync.Once
}

// NewCapture subscribes for the first message whose SourceItemID matches
func NewCapture(bus *Bus, sourceItemID string) *Capture {
	c := &Capture{
		bus:      bus,
		resultCh: make(chan *Message, 1),
	}

	c.handle = bus.Subscribe(func(msg *Message) {
		if msg.SourceItemID != sourceItemID {
			return
		}
		c.once.Do(func() {
			c.resultCh <- msg
		})
	})

	return c
}

// Wait blocks for the captured message, the timeout, or context
// cancellation, whichever comes first. The listener is unsubscribed on every
// exit path; Wait must not be called twice.
func (c *Capture) Wait(ctx context.Context, timeout time.Duration) (*Message, error) {
	defer c.Cancel()

	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-c.resultCh:
		return msg, nil
	case <-timer.C:
		return nil, ErrCaptureTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel unsubscribes the listener. Safe to call more than once.
func (c *Capture) Cancel() {
	c.closed.Do(func() {
		c.bus.Unsubscribe(c.handle)
	})
}

// CaptureRoll is the single-call form: subscribe, wait, unsubscribe
func CaptureRoll(ctx context.Context, bus *Bus, sourceItemID string, timeout time.Duration) (*Message, error) {
	return NewCapture(bus, sourceItemID).Wait(ctx, timeout)
}
