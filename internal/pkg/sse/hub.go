// Package sse fans payroll audit changes out to server-sent event streams.
package sse

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
)

// AllTopics subscribes to every published event.
const AllTopics = "*"

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      16,
	}
}

// Subscribe registers a subscriber for topic and returns the event channel and cleanup function
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[topic], ch)
			close(ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
		})
	}

	return ch, cleanup
}

// Publish sends event to the topic's subscribers and to AllTopics subscribers.
// Slow subscribers miss events instead of blocking the publisher.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(subs map[chan Event]struct{}) {
		for ch := range subs {
			select {
			case ch <- event:
			default:
			}
		}
	}
	deliver(h.subscribers[event.Topic])
	if event.Topic != AllTopics {
		deliver(h.subscribers[AllTopics])
	}
}

// TotalSubscribers returns the total number of active subscribers across all topics
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// ChangeEvent is the payload streamed for an audit change.
type ChangeEvent struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
}

// RecordChange implements audit.Sink by publishing under the change's action.
func (h *Hub) RecordChange(ctx context.Context, change audit.RecordChange) error {
	h.Publish(Event{
		Topic: string(change.Action),
		Event: string(change.Action),
		Data: ChangeEvent{
			ID:         change.ID,
			Action:     string(change.Action),
			EntityType: change.EntityType,
			EntityID:   change.EntityID,
			OccurredAt: change.OccurredAt.UTC().Format(time.RFC3339),
		},
	})
	return nil
}
