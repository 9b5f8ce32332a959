package ws

import (
	"sync"

	"github.com/rentnest/rentnest-server/internal/models"
)

const subscriptionBuffer = 64

// Subscription is a cancellable stream of messages inserted into one
// conversation after the subscription started. Close is idempotent and safe
// to call from any goroutine; it must run on every exit path of the viewer.
type Subscription struct {
	C <-chan *models.Message

	hub    *Hub
	convID string
	ch     chan *models.Message
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.convID, s)
		close(s.ch)
	})
}

// Hub fans appended messages out to conversation subscribers on this
// instance. Cross-instance delivery arrives through the Kafka consumer
// calling Deliver.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(convID string) *Subscription {
	ch := make(chan *models.Message, subscriptionBuffer)
	sub := &Subscription{C: ch, hub: h, convID: convID, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		// a closed hub hands out an already-terminated stream; callers fall
		// back to re-listing after send
		sub.once.Do(func() { close(ch) })
		return sub
	}
	if _, ok := h.subs[convID]; !ok {
		h.subs[convID] = make(map[*Subscription]struct{})
	}
	h.subs[convID][sub] = struct{}{}
	return sub
}

// Deliver pushes m to every subscriber of its conversation. A subscriber that
// cannot keep up is dropped rather than blocking the append path; duplicates
// across instances are fine since viewers de-duplicate by message ID.
func (h *Hub) Deliver(m *models.Message) {
	h.mu.RLock()
	set, ok := h.subs[m.ConversationID]
	var stalled []*Subscription
	if ok {
		for sub := range set {
			select {
			case sub.ch <- m:
			default:
				stalled = append(stalled, sub)
			}
		}
	}
	h.mu.RUnlock()

	for _, sub := range stalled {
		sub.Close()
	}
}

// SubscriberCount reports active subscriptions for a conversation.
func (h *Hub) SubscriberCount(convID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[convID])
}

func (h *Hub) remove(convID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[convID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, convID)
		}
	}
}

// Close terminates every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.subs = make(map[string]map[*Subscription]struct{})
	h.mu.Unlock()

	for _, sub := range all {
		sub.once.Do(func() { close(sub.ch) })
	}
}
