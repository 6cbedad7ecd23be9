// Package bus is an in-process broadcast channel between dashboard cards.
//
// Delivery is synchronous on the publisher's goroutine, at most once per
// listener, with no queue: a listener registered after a publish never sees
// it.
package bus

import (
	"sync"
)

// Listener receives a broadcast payload.
type Listener func(payload any)

// Publisher broadcasts payloads on named channels.
type Publisher interface {
	Publish(channel string, payload any)
}

// Subscriber registers listeners on named channels. The returned function
// removes the listener and is safe to call more than once.
type Subscriber interface {
	Subscribe(channel string, fn Listener) (unsubscribe func())
}

type entry struct {
	id uint64
	fn Listener
}

// Bus implements Publisher and Subscriber.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]entry
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{listeners: make(map[string][]entry)}
}

// Subscribe registers fn on channel.
func (b *Bus) Subscribe(channel string, fn Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[channel] = append(b.listeners[channel], entry{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(channel, id) })
	}
}

func (b *Bus) remove(channel string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.listeners[channel]
	for i, e := range list {
		if e.id == id {
			next := make([]entry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.listeners, channel)
			} else {
				b.listeners[channel] = next
			}
			return
		}
	}
}

// Publish calls every listener currently registered on channel, in
// registration order. Listeners run outside the bus lock and may
// subscribe or unsubscribe.
func (b *Bus) Publish(channel string, payload any) {
	b.mu.RLock()
	list := b.listeners[channel]
	b.mu.RUnlock()

	for _, e := range list {
		e.fn(payload)
	}
}

// Len returns the number of listeners on channel.
func (b *Bus) Len(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[channel])
}
