package mqtt

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// DefaultQueueSize is the number of events Async holds before dropping.
const DefaultQueueSize = 64

var (
	// ErrQueueFull means an event was dropped because the publisher is behind.
	ErrQueueFull = errors.New("mqtt publish queue full")

	// ErrClosed means the publisher has been closed.
	ErrClosed = errors.New("mqtt publisher closed")
)

type queued struct {
	level  *logic.LevelEvent
	system *SystemEvent
}

// Async hands events to a wrapped Publisher on its own goroutine. Publish
// and PublishSystem never wait on the broker; errors from the wrapped
// publisher are logged.
type Async struct {
	next   Publisher
	logger *slog.Logger
	queue  chan queued
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewAsync starts the forwarding goroutine. size < 1 uses DefaultQueueSize.
func NewAsync(next Publisher, size int, logger *slog.Logger) *Async {
	if size < 1 {
		size = DefaultQueueSize
	}
	a := &Async{
		next:   next,
		logger: logger,
		queue:  make(chan queued, size),
		done:   make(chan struct{}),
	}
	go a.forward()
	return a
}

func (a *Async) Publish(event logic.LevelEvent) error {
	return a.enqueue(queued{level: &event})
}

func (a *Async) PublishSystem(event SystemEvent) error {
	return a.enqueue(queued{system: &event})
}

func (a *Async) enqueue(q queued) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- q:
		return nil
	default:
		a.dropped++
		return ErrQueueFull
	}
}

func (a *Async) forward() {
	defer close(a.done)
	for q := range a.queue {
		if q.level != nil {
			if err := a.next.Publish(*q.level); err != nil {
				a.logger.Warn("publish error", "error", err)
			}
			continue
		}
		if err := a.next.PublishSystem(*q.system); err != nil {
			a.logger.Warn("system publish error", "event", q.system.Event, "error", err)
		}
	}
}

// Dropped returns how many events were refused because the queue was full.
func (a *Async) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Close sends whatever is queued, then closes the wrapped publisher.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	return a.next.Close()
}
