package app

import (
	"log/slog"
	"strconv"
	"sync"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventHub fans order/inventory events out to SSE subscribers.
type EventHub struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{} // topic -> set(ch)
}

func NewEventHub(logger *slog.Logger) *EventHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHub{
		log:  logger,
		subs: map[string]map[chan Event]struct{}{},
	}
}

func (h *EventHub) Subscribe(topics []string, buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)

	h.mu.Lock()
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = map[chan Event]struct{}{}
		}
		h.subs[t][ch] = struct{}{}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		for _, t := range topics {
			if set, ok := h.subs[t]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, t)
				}
			}
		}
		h.mu.Unlock()
		// Safe to close here: sends happen under the read lock, and the
		// channel is already out of every topic set.
		close(ch)
	}
	return ch, cancel
}

func (h *EventHub) Broadcast(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[topic] {
		select {
		case ch <- ev:
		default:
			// drop if slow consumer
		}
	}
}

/* ---- topic helpers ---- */

func TopicUser(userID int64) string { return "user:" + strconv.FormatInt(userID, 10) }
func TopicOrders() string           { return "orders:global" }
func TopicInventory() string        { return "inventory:global" }

func (h *EventHub) BroadcastUser(userID int64, ev Event) { h.Broadcast(TopicUser(userID), ev) }
func (h *EventHub) BroadcastOrders(ev Event)             { h.Broadcast(TopicOrders(), ev) }
func (h *EventHub) BroadcastInventory(ev Event)          { h.Broadcast(TopicInventory(), ev) }
