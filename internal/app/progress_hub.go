package app

import (
	"sync"

	"mcq-assessment-service/internal/domain"
)

// ProgressHub fans progress events out to the live subscribers of each user.
type ProgressHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.ProgressEvent]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subscribers: make(map[string]map[chan domain.ProgressEvent]struct{}),
	}
}

// Subscribe returns a channel of events for userID.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *ProgressHub) Subscribe(userID string) (<-chan domain.ProgressEvent, func()) {
	ch := make(chan domain.ProgressEvent, 8)

	h.mu.Lock()
	subs, ok := h.subscribers[userID]
	if !ok {
		subs = make(map[chan domain.ProgressEvent]struct{})
		h.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[userID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, userID)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of ev.UserID without blocking.
func (h *ProgressHub) Publish(ev domain.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[ev.UserID] {
		select {
		case ch <- ev:
		default:
			// Full buffer: drop the oldest event so slow readers never block scoring.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Subscribers reports how many live subscribers userID has.
func (h *ProgressHub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[userID])
}
