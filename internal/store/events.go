package store

import (
	"sync"

	"artisanmarket/internal/domain/entity"
)

type EventType string

const (
	EventNegotiationCreated EventType = "negotiation-created"
	EventNegotiationUpdated EventType = "negotiation-updated"
)

// Event is one inbound push-channel message: a lifecycle event carrying the
// summary projection of the negotiation it concerns.
type Event struct {
	Type    EventType                 `json:"type"`
	Summary entity.NegotiationSummary `json:"payload"`
}

// Bus fans negotiation events out to the session bridges. Dispatch is
// synchronous; handlers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]func(Event)),
	}
}

// Subscribe registers a handler and returns its disposable handle.
func (b *Bus) Subscribe(handler func(Event)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = handler

	return &Subscription{bus: b, id: id}
}

// Publish delivers the event to every live subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Subscription is the disposable handle returned by Subscribe. Unsubscribe
// is idempotent.
type Subscription struct {
	bus  *Bus
	id   int
	once sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
	})
}
