package service

import "sync"

// Event kinds.
const (
	EventRender     = "render"      // session state changed, re-render
	EventOfferAdded = "offer-added" // a submission was accepted
)

// Event announces a change. Session is empty for changes that concern
// every session.
type Event struct {
	Kind    string
	Session string
	ID      string
}

// EventBus is a simple fan-out pub/sub for change events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]string
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]string)}
}

// Publish sends an event to every matching subscriber (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, session := range b.subs {
		if session != "" && e.Session != "" && session != e.Session {
			continue
		}
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel receiving broadcast events and the
// events of session. An empty session receives everything.
func (b *EventBus) Subscribe(session string) chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = session
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// DefaultBus is the package-level event bus.
var DefaultBus = NewEventBus()
