package session

import (
	"context"
	"sync"
)

// EventType describes what changed.
type EventType int

const (
	// EventSession signals a change to identity, contexts, collections or
	// status.
	EventSession EventType = iota
	// EventResult signals a new record result.
	EventResult
	// EventProjects signals a new project listing.
	EventProjects
	// EventForms signals a form field changed without the user typing it.
	EventForms
)

func (t EventType) String() string {
	switch t {
	case EventSession:
		return "session"
	case EventResult:
		return "result"
	case EventProjects:
		return "projects"
	case EventForms:
		return "forms"
	default:
		return "unknown"
	}
}

// Event is published after every state change. Session is a copy taken at
// publish time.
type Event struct {
	Type    EventType
	Session Session
	Result  Result
}

const subscriberBuffer = 16

// Hub fans events out to subscribers. Publish never blocks; a subscriber that
// falls behind misses events and re-reads state on the next one it gets.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe streams events until ctx is cancelled, then closes the channel.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		close(ch)
		h.mu.Unlock()
	}()
	return ch
}

// Publish delivers ev to every subscriber that has room.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
