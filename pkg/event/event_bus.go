package event

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/safe"
)

// Bus is a process-wide publish/subscribe channel keyed by dataset name.
// Delivery is synchronous and carries no ordering guarantee between
// subscribers of the same dataset.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]map[string]Handler),
	}
}

// Subscribe registers a handler for a dataset and returns an unsubscribe
// function. Unsubscribing is safe at any time, including from inside a
// handler, so views can tear down without being notified afterwards.
func (b *Bus) Subscribe(dataset string, handler Handler) func() {
	token := uuid.NewString()

	b.mu.Lock()
	if _, ok := b.handlers[dataset]; !ok {
		b.handlers[dataset] = make(map[string]Handler)
	}
	b.handlers[dataset][token] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[dataset], token)
	}
}

// Publish synchronously notifies all current subscribers of the event's
// dataset. A panicking handler is recovered so it cannot break the
// publisher or the remaining subscribers.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	subs := make([]Handler, 0, len(b.handlers[e.Dataset]))
	for _, h := range b.handlers[e.Dataset] {
		subs = append(subs, h)
	}
	b.mu.RUnlock()

	for _, h := range subs {
		h := h
		safe.Do(func() { h(e) })
	}
}

// SubscriberCount reports the number of active subscriptions for a dataset.
func (b *Bus) SubscriberCount(dataset string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[dataset])
}
