package chat

import (
	"log"
	"sync"

	"github.com/tidewater-games/actioncard-bot/internal/dice"
)

// Message is a chat-pipeline message. Roll-bearing messages are how roll
// results travel out-of-band from item execution back to waiting callers.
type Message struct {
	ID           string
	SpeakerID    string
	SourceItemID string
	Content      string
	Roll         *dice.RollResult
}

// Listener receives every created message
type Listener func(msg *Message)

// Bus distributes message-created events to subscribed listeners
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

// NewBus creates a new message bus
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its handle for Unsubscribe
func (b *Bus) Subscribe(fn Listener) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	return id
}

// Unsubscribe removes a listener; unknown handles are ignored
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, id)
}

// Publish delivers a message to all current listeners
func (b *Bus) Publish(msg *Message) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	log.Printf("chat: publishing message %s to %d listeners", msg.ID, len(listeners))

	for _, fn := range listeners {
		fn(msg)
	}
}
