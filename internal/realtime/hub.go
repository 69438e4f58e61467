// Package realtime fans database change events out to dashboard subscribers.
package realtime

import (
	"sync"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/models"

	"go.uber.org/zap"
)

const defaultBuffer = 64

// Hub is an in-process change feed. Publish never blocks: a subscriber whose
// buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	log    *zap.SugaredLogger
	buffer int
	now    func() time.Time
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		log:    log.Named("realtime"),
		buffer: defaultBuffer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Subscription receives the events visible to one user.
type Subscription struct {
	hub    *Hub
	userID string
	tables map[string]bool
	ch     chan models.ChangeEvent
	once   sync.Once
}

// Subscribe registers a subscriber for userID. With no tables every table is delivered.
func (h *Hub) Subscribe(userID string, tables ...string) *Subscription {
	s := &Subscription{
		hub:    h,
		userID: userID,
		ch:     make(chan models.ChangeEvent, h.buffer),
	}
	if len(tables) > 0 {
		s.tables = make(map[string]bool, len(tables))
		for _, t := range tables {
			s.tables[t] = true
		}
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	h.log.Debugw("subscriber added", "user_id", userID, "subscribers", n)
	return s
}

// C is closed when the subscription is closed.
func (s *Subscription) C() <-chan models.ChangeEvent {
	return s.ch
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
	})
}

func (s *Subscription) wants(ev models.ChangeEvent) bool {
	if ev.UserID != "" && ev.UserID != s.userID {
		return false
	}
	return s.tables == nil || s.tables[ev.Table]
}

// Publish delivers ev to every matching subscriber and returns how many received it.
func (h *Hub) Publish(ev models.ChangeEvent) int {
	if ev.At.IsZero() {
		ev.At = h.now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.subs {
		if !s.wants(ev) {
			continue
		}
		select {
		case s.ch <- ev:
			delivered++
		default:
			h.log.Warnw("subscriber buffer full, event dropped",
				"user_id", s.userID, "table", ev.Table, "type", ev.Type)
		}
	}
	return delivered
}

// Emit is shorthand for publishing a row change.
func (h *Hub) Emit(table, typ, userID string, record any) {
	h.Publish(models.ChangeEvent{Table: table, Type: typ, UserID: userID, Record: record})
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
