// Package dispatch runs completion work on a single goroutine that owns the application's visible state.
package dispatch

import (
	"sync"

	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
)

// SerialQueue executes posted functions one at a time, in post order, on its own goroutine.
// The queue is unbounded so a task may post further tasks without blocking.
type SerialQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	done    chan struct{}
	logger  logger.Logger
}

// NewSerialQueue starts the queue's goroutine
func NewSerialQueue(log logger.Logger) *SerialQueue {
	q := &SerialQueue{
		done:   make(chan struct{}),
		logger: logger.Component(log, "serial_queue"),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Post schedules fn. After Close, fn runs on the caller's goroutine instead.
func (q *SerialQueue) Post(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.execute(fn)
		return
	}
	q.pending = append(q.pending, fn)
	q.cond.Signal()
	q.mu.Unlock()
}

// Close stops accepting work and waits for already posted tasks to finish.
// It must not be called from a task running on the queue.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}

func (q *SerialQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.execute(fn)
	}
}

func (q *SerialQueue) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Queued task panicked", map[string]interface{}{
				"panic": r,
			})
		}
	}()
	fn()
}

// Inline runs every posted function immediately on the caller's goroutine.
type Inline struct{}

// Post runs fn
func (Inline) Post(fn func()) { fn() }
