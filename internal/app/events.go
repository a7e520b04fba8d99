package app

import (
	"sync"

	"lyric-quiz-service/internal/domain"
)

const subscriberBuffer = 16

// eventHub fans channel events out to subscribers.
type eventHub struct {
	mu          sync.Mutex
	subscribers map[chan domain.Event]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[chan domain.Event]struct{})}
}

// subscribe registers a buffered channel. The caller must invoke the
// returned cancel function to avoid leaks.
func (h *eventHub) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *eventHub) publish(ev domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event rather than block the game.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (h *eventHub) empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers) == 0
}
