// Package realtime fans notification changes out to a user's open streams.
package realtime

import (
	"sync"

	"walletpalz/internal/logger"
	"walletpalz/internal/metrics"
	"walletpalz/internal/models"
)

// EventType names the kind of row change.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event describes one change to a user's notifications. New is set for
// inserts and updates, Old for updates and deletes.
type Event struct {
	Event EventType            `json:"event"`
	New   *models.Notification `json:"new,omitempty"`
	Old   *models.Notification `json:"old,omitempty"`
}

// Publisher accepts notification changes for a user.
type Publisher interface {
	Publish(userID string, ev Event)
}

// Subscription receives a user's events until Close is called.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	userID string
	hub    *Hub
	once   sync.Once
}

// Close detaches the subscription from the hub and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub routes events to per-user subscribers. A subscriber whose buffer is
// full misses the event; publishers never block.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new stream for userID.
func (h *Hub) Subscribe(userID string) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, userID: userID, hub: h}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	metrics.RealtimeSubscribers.Inc()
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
	close(sub.ch)
	h.mu.Unlock()

	metrics.RealtimeSubscribers.Dec()
}

// Publish delivers ev to every open subscription of userID.
func (h *Hub) Publish(userID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[userID] {
		select {
		case sub.ch <- ev:
		default:
			logger.Get().Warnw("Dropping realtime event for slow subscriber", "user_id", userID, "event", ev.Event)
		}
	}
}

// Subscribers returns the number of open subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
