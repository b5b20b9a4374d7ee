// Package realtime carries task mutation events between connected clients
// over a WebSocket relay.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sundowners/taskhub/internal/model"
)

const EventTaskUpdated = "taskUpdated"

// Envelope is the frame exchanged with the relay.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func TaskEnvelope(t model.Task) (Envelope, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode task: %w", err)
	}
	return Envelope{Event: EventTaskUpdated, Data: b}, nil
}

type Handler func(model.Task)

// Subscription is a scoped handler registration.
type Subscription struct {
	bus  *Bus
	id   int
	once sync.Once
}

// Unsubscribe removes the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}

// Bus invokes every registered handler, in registration order, for each
// delivered task.
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers []entry
}

type entry struct {
	id int
	fn Handler
}

func (b *Bus) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers = append(b.handlers, entry{id, h})
	return &Subscription{bus: b, id: id}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.handlers {
		if e.id == id {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return
		}
	}
}

func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

func (b *Bus) Deliver(t model.Task) {
	b.mu.Lock()
	hs := make([]Handler, len(b.handlers))
	for i, e := range b.handlers {
		hs[i] = e.fn
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(t)
	}
}

// DeliverEnvelope decodes a taskUpdated frame and delivers it. Other events
// are ignored.
func (b *Bus) DeliverEnvelope(env Envelope) error {
	if env.Event != EventTaskUpdated {
		return nil
	}
	var t model.Task
	if err := json.Unmarshal(env.Data, &t); err != nil {
		return fmt.Errorf("decode %s: %w", env.Event, err)
	}
	b.Deliver(t)
	return nil
}
