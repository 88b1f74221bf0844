package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Message is an encoded event as seen by subscribers.
type Message struct {
	Topic   string
	Payload []byte
}

type subscription struct {
	topics map[string]struct{}
	ch     chan Message
}

// Hub is an in-process Publisher that fans events out to subscribers.
// A subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*subscription
	buffer int
	logger *slog.Logger
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]*subscription),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers interest in topics. The returned cancel func must be
// called to release the subscription; it closes the channel.
func (h *Hub) Subscribe(topics ...string) (<-chan Message, func()) {
	sub := &subscription{
		topics: make(map[string]struct{}, len(topics)),
		ch:     make(chan Message, h.buffer),
	}
	for _, t := range topics {
		sub.topics[t] = struct{}{}
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish encodes payload as JSON and delivers it to matching subscribers.
func (h *Hub) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	h.Deliver(topic, data)
	return nil
}

// Deliver hands an already encoded event to matching subscribers.
func (h *Hub) Deliver(topic string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.subs {
		if _, ok := sub.topics[topic]; !ok {
			continue
		}
		select {
		case sub.ch <- Message{Topic: topic, Payload: data}:
		default:
			h.logger.Warn("dropping event for slow subscriber", "topic", topic, "subscriber", id)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
