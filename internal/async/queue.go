package async

import (
	"context"
	"sync"
)

// Scheduler decides where completion callbacks run.
type Scheduler interface {
	Post(fn func())
}

// Inline runs posted callbacks immediately on the posting goroutine.
// Useful in tests and for futures that are already resolved.
type Inline struct{}

// Post runs fn.
func (Inline) Post(fn func()) { fn() }

// Queue holds callbacks for a single consumer, typically the Bubble Tea
// update loop, which reads them with Next and runs them in order. It is
// unbounded: Post never blocks, so a callback running on the consumer may
// post again without deadlocking the loop.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	// ready holds a token while pending is non-empty.
	ready chan struct{}
	done  chan struct{}
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Post enqueues fn. It never blocks and drops fn once the queue is closed.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop removes the oldest callback, if any.
func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.pending) == 0 {
		return nil, false
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	if len(q.pending) > 0 {
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return fn, true
}

// Next blocks until a callback is available, the queue is closed, or ctx
// is cancelled. ok is false in the latter two cases.
func (q *Queue) Next(ctx context.Context) (fn func(), ok bool) {
	for {
		if fn, ok := q.pop(); ok {
			return fn, true
		}
		select {
		case <-q.ready:
		case <-q.done:
			return nil, false
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Drain runs every callback queued when it is called, plus any those
// callbacks post, and returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		fn, ok := q.pop()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Len returns the number of queued callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops delivery. Pending callbacks are discarded.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.pending = nil
	close(q.done)
}
