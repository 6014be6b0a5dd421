package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var seen []string
	id := bus.Subscribe(func(msg *Message) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, msg.ID)
	})

	bus.Publish(&Message{ID: "m1"})
	bus.Publish(&Message{ID: "m2"})

	bus.Unsubscribe(id)
	bus.Publish(&Message{ID: "m3"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"m1", "m2"}, seen)
}

func TestCapture(t *testing.T) {
	t.Run("receives a message published before Wait", func(t *testing.T) {
		bus := NewBus()
		capture := NewCapture(bus, "item-1")

		bus.Publish(&Message{
			ID:           "m1",
			SourceItemID: "item-1",
			Roll:         &dice.RollResult{Total: 17},
		})

		msg, err := capture.Wait(context.Background(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, 17, msg.Roll.Total)
	})

	t.Run("ignores messages for other items", func(t *testing.T) {
		bus := NewBus()
		capture := NewCapture(bus, "item-1")

		bus.Publish(&Message{ID: "m1", SourceItemID: "other"})

		_, err := capture.Wait(context.Background(), 20*time.Millisecond)
		assert.ErrorIs(t, err, ErrCaptureTimeout)
	})

	t.Run("only the first match resolves", func(t *testing.T) {
		bus := NewBus()
		capture := NewCapture(bus, "item-1")

		bus.Publish(&Message{ID: "first", SourceItemID: "item-1"})
		bus.Publish(&Message{ID: "second", SourceItemID: "item-1"})

		msg, err := capture.Wait(context.Background(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, "first", msg.ID)
	})

	t.Run("times out when nothing arrives", func(t *testing.T) {
		bus := NewBus()
		capture := NewCapture(bus, "item-1")

		start := time.Now()
		_, err := capture.Wait(context.Background(), 20*time.Millisecond)
		assert.ErrorIs(t, err, ErrCaptureTimeout)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("context cancellation beats the timeout", func(t *testing.T) {
		bus := NewBus()
		capture := NewCapture(bus, "item-1")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := capture.Wait(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unsubscribes on every exit path", func(t *testing.T) {
		bus := NewBus()

		resolved := NewCapture(bus, "item-1")
		bus.Publish(&Message{ID: "m1", SourceItemID: "item-1"})
		_, err := resolved.Wait(context.Background(), time.Second)
		require.NoError(t, err)

		timedOut := NewCapture(bus, "item-2")
		_, err = timedOut.Wait(context.Background(), 10*time.Millisecond)
		require.ErrorIs(t, err, ErrCaptureTimeout)

		cancelled := NewCapture(bus, "item-3")
		cancelled.Cancel()
		cancelled.Cancel() // idempotent

		bus.mu.RLock()
		defer bus.mu.RUnlock()
		assert.Empty(t, bus.listeners)
	})

	t.Run("concurrent publishers resolve exactly once", func(t *testing.T) {
		bus := NewBus()
		capture := NewCapture(bus, "item-1")

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bus.Publish(&Message{ID: "m", SourceItemID: "item-1"})
			}()
		}

		msg, err := capture.Wait(context.Background(), time.Second)
		wg.Wait()
		require.NoError(t, err)
		assert.NotNil(t, msg)
	})
}

func TestCaptureRoll(t *testing.T) {
	bus := NewBus()

	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Publish(&Message{
			ID:           "m1",
			SourceItemID: "item-1",
			Roll:         &dice.RollResult{Total: 9},
		})
	}()

	msg, err := CaptureRoll(context.Background(), bus, "item-1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 9, msg.Roll.Total)
}
