package events

import (
	"sync"
	"sync/atomic"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/models"
)

// EventBus fans events out to buffered subscriber channels. A full
// subscriber drops the event rather than blocking the publisher.
type EventBus struct {
	subscribers map[models.EventType][]chan *models.Event
	// every subscription once, whatever its type filter
	channels []chan *models.Event

	mu         sync.RWMutex
	bufferSize int
	closed     bool
	dropped    atomic.Uint64
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBus{
		subscribers: make(map[models.EventType][]chan *models.Event),
		bufferSize:  bufferSize,
	}
}

func (b *EventBus) Subscribe(eventTypes ...models.EventType) <-chan *models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *models.Event, b.bufferSize)
	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	b.channels = append(b.channels, ch)
	return ch
}

func (b *EventBus) SubscribeAll() <-chan *models.Event {
	return b.Subscribe(models.AllEventTypes()...)
}

func (b *EventBus) Publish(event *models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
			logger.Warnf("Event channel full, dropping event: %s", event.Type)
		}
	}
}

func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close ends every subscription. Subscribers see their channel closed once
// the events already queued for them are read.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, ch := range b.channels {
		close(ch)
	}
	b.channels = nil
	b.subscribers = make(map[models.EventType][]chan *models.Event)
}
