// Package events broadcasts change signals so that open storefront views can
// refresh. Events carry no payload; subscribers re-read what they display.
package events

import (
	"context"
	"sync"
)

// Name identifies a change signal.
type Name string

const (
	// CartUpdated fires after any cart mutation; Scope holds the client key.
	CartUpdated Name = "cart-updated"
	// ProductsUpdated fires after any owner edit of the catalog.
	ProductsUpdated Name = "products-updated"
)

// Event is a single change signal.
type Event struct {
	Name  Name   `json:"name"`
	Scope string `json:"scope,omitempty"`
}

// Publisher is implemented by anything that can announce a change.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Filter selects the events delivered to a subscriber.
type Filter func(Event) bool

// ForClient passes global events plus events scoped to clientKey.
func ForClient(clientKey string) Filter {
	return func(evt Event) bool {
		return evt.Scope == "" || evt.Scope == clientKey
	}
}

type subscriber struct {
	ch     chan Event
	filter Filter
}

// Bus fans events out to in-process subscribers. Slow subscribers miss
// events rather than block publishers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscriber
	buffer int
	closed bool
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{subs: make(map[int]subscriber), buffer: buffer}
}

// Publish delivers evt to every matching subscriber without blocking.
func (b *Bus) Publish(_ context.Context, evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Subscribe registers a listener. The returned cancel func closes the channel.
// Subscribing to a closed bus yields an already closed channel.
func (b *Bus) Subscribe(filter Filter) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{ch: ch, filter: filter}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// Close ends every subscription so open streams return. Later publishes are
// dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
