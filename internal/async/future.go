// Package async provides single-shot futures whose completion callbacks are
// handed to a Scheduler, so continuations run on the UI loop rather than on
// the worker goroutine that produced the value.
package async

import (
	"context"
	"sync"
)

// Result is the final value of a Future. A non-nil Err is the failure sentinel.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries a successful value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Future is the handle for one asynchronous request. It accepts exactly one
// completion callback, which is posted to the scheduler once the result is known.
type Future[T any] struct {
	sched Scheduler

	mu       sync.Mutex
	done     bool
	fired    bool
	result   Result[T]
	callback func(Result[T])
}

// Go runs fn on a new goroutine and returns a Future for its result.
func Go[T any](ctx context.Context, sched Scheduler, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{sched: sched}
	go func() {
		v, err := fn(ctx)
		f.resolve(Result[T]{Value: v, Err: err})
	}()
	return f
}

// Resolved returns a Future already completed with v.
func Resolved[T any](sched Scheduler, v T) *Future[T] {
	f := &Future[T]{sched: sched}
	f.resolve(Result[T]{Value: v})
	return f
}

// Failed returns a Future already completed with err.
func Failed[T any](sched Scheduler, err error) *Future[T] {
	f := &Future[T]{sched: sched}
	f.resolve(Result[T]{Err: err})
	return f
}

// OnDone registers the completion callback. If the result is already known
// the callback is posted immediately. Panics if a callback was already
// registered (programmer error).
func (f *Future[T]) OnDone(cb func(Result[T])) {
	if cb == nil {
		panic("async: OnDone called with nil callback")
	}
	f.mu.Lock()
	if f.callback != nil {
		f.mu.Unlock()
		panic("async: completion callback already registered")
	}
	f.callback = cb
	ready := f.done
	f.mu.Unlock()

	if ready {
		f.fire()
	}
}

func (f *Future[T]) resolve(r Result[T]) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.done = true
	f.result = r
	hasCallback := f.callback != nil
	f.mu.Unlock()

	if hasCallback {
		f.fire()
	}
}

// fire posts the callback at most once.
func (f *Future[T]) fire() {
	f.mu.Lock()
	if f.fired {
		f.mu.Unlock()
		return
	}
	f.fired = true
	cb, r := f.callback, f.result
	f.mu.Unlock()

	f.sched.Post(func() { cb(r) })
}
