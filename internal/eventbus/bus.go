// Package eventbus provides an in-memory, asynchronous event bus for
// notification lifecycle events. Events are dispatched through a buffered
// channel and processed by a worker pool.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWorkers    = 3
	defaultBufferSize = 100
)

// EventBus is the interface for publishing events and managing subscribers.
type EventBus interface {
	// Publish enqueues an event with the given type and payload.
	// It never blocks: if the buffer is full or the bus is closed, the event
	// is dropped and a warning is logged.
	Publish(eventType string, payload map[string]string)

	// Subscribe registers a listener that will be called for every published event.
	// All listeners are invoked for each event (broadcast).
	Subscribe(listener Listener)

	// Close stops accepting new events and waits for all pending events to be processed.
	// It is safe to call more than once.
	Close()
}

// Option configures the in-memory bus.
type Option func(*inMemoryBus)

// WithBufferSize sets the capacity of the event queue.
func WithBufferSize(n int) Option {
	return func(b *inMemoryBus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithLogger sets the logger used for dropped events and listener panics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *inMemoryBus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type inMemoryBus struct {
	ch         chan Event
	listeners  []Listener
	mu         sync.RWMutex
	wg         sync.WaitGroup
	workers    int
	bufferSize int
	closed     bool
	logger     *slog.Logger
}

// New creates a new in-memory EventBus with the specified number of worker goroutines.
// If workers is <= 0, defaultWorkers (3) is used.
func New(workers int, opts ...Option) EventBus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	b := &inMemoryBus{
		workers:    workers,
		bufferSize: defaultBufferSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ch = make(chan Event, b.bufferSize)
	b.startWorkers()
	return b
}

func (b *inMemoryBus) startWorkers() {
	for range b.workers {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for e := range b.ch {
				b.dispatch(e)
			}
		}()
	}
}

// dispatch calls all registered listeners for the given event, recovering
// from listener panics.
func (b *inMemoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("eventbus listener panicked", "event", e.Type, "panic", r)
				}
			}()
			l(e)
		}()
	}
}

// Publish enqueues an event. If the buffer is full the event is dropped.
func (b *inMemoryBus) Publish(eventType string, payload map[string]string) {
	e := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	// The read lock keeps Close from closing the channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("eventbus closed, dropping event", "event", eventType)
		return
	}

	select {
	case b.ch <- e:
	default:
		b.logger.Warn("eventbus buffer full, dropping event", "event", eventType)
	}
}

// Subscribe adds a listener to receive all future events.
func (b *inMemoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Close drains and closes the event channel, then waits for all workers to finish.
func (b *inMemoryBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.ch)
	b.mu.Unlock()
	b.wg.Wait()
}
