package backend

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const subscriptionBuffer = 8

// AuthSubscription is one consumer's handle on the session-change stream.
type AuthSubscription struct {
	id     string
	events chan AuthEvent
	hub    *AuthStateHub
	once   sync.Once
}

// Events is the stream of session-change notifications for this
// subscription. The channel is closed by Unsubscribe.
func (s *AuthSubscription) Events() <-chan AuthEvent {
	return s.events
}

// Unsubscribe releases the subscription. Safe to call more than once and
// from any goroutine.
func (s *AuthSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s.id)
		close(s.events)
	})
}

// AuthStateHub fans session-change events out to subscribers. Slow
// consumers never block a publish: when a subscriber's buffer is full the
// event is dropped for that subscriber.
type AuthStateHub struct {
	mu              sync.Mutex
	subscribers     map[string]*AuthSubscription
	eventsPublished int64
	eventsDropped   int64
}

func NewAuthStateHub() *AuthStateHub {
	return &AuthStateHub{
		subscribers: make(map[string]*AuthSubscription),
	}
}

func (h *AuthStateHub) Subscribe() *AuthSubscription {
	sub := &AuthSubscription{
		id:     uuid.New().String(),
		events: make(chan AuthEvent, subscriptionBuffer),
		hub:    h,
	}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()
	return sub
}

func (h *AuthStateHub) remove(id string) {
	h.mu.Lock()
	delete(h.subscribers, id)
	h.mu.Unlock()
}

func (h *AuthStateHub) Publish(event AuthEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.eventsPublished++
	for _, sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			h.eventsDropped++
			slog.Warn("auth event dropped for slow subscriber",
				"subscription", sub.id,
				"event", event.Type,
			)
		}
	}
}

// Metrics returns publish counters for the hub.
func (h *AuthStateHub) Metrics() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return map[string]any{
		"subscribers":      len(h.subscribers),
		"events_published": h.eventsPublished,
		"events_dropped":   h.eventsDropped,
	}
}
