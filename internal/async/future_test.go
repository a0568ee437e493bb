package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult_OK(t *testing.T) {
	if !(Result[int]{Value: 1}).OK() {
		t.Error("result without error should be OK")
	}
	if (Result[int]{Err: errors.New("boom")}).OK() {
		t.Error("result with error should not be OK")
	}
}

func TestResolved_CallbackRunsInline(t *testing.T) {
	// Given: an already-resolved future on the inline scheduler
	f := Resolved(Inline{}, "value")

	// When: a callback is registered
	var got Result[string]
	calls := 0
	f.OnDone(func(r Result[string]) {
		calls++
		got = r
	})

	// Then: it ran exactly once with the value
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !got.OK() || got.Value != "value" {
		t.Errorf("got %+v, want OK value", got)
	}
}

func TestFailed_CarriesError(t *testing.T) {
	sentinel := errors.New("login failed")
	f := Failed[bool](Inline{}, sentinel)

	var got Result[bool]
	f.OnDone(func(r Result[bool]) { got = r })

	if got.OK() {
		t.Fatal("failed future should not be OK")
	}
	if !errors.Is(got.Err, sentinel) {
		t.Errorf("Err = %v, want %v", got.Err, sentinel)
	}
}

func TestGo_CallbackRegisteredBeforeCompletion(t *testing.T) {
	// Given: a worker blocked until released
	release := make(chan struct{})
	q := NewQueue()
	f := Go(context.Background(), q, func(context.Context) (int, error) {
		<-release
		return 42, nil
	})

	var got atomic.Int64
	f.OnDone(func(r Result[int]) { got.Store(int64(r.Value)) })

	// Then: nothing is queued before the work finishes
	if q.Len() != 0 {
		t.Fatalf("queue has %d callbacks before completion", q.Len())
	}

	// When: the work finishes and the loop takes the continuation
	close(release)
	fn := nextWithin(t, q, time.Second)
	fn()

	if got.Load() != 42 {
		t.Errorf("callback value = %d, want 42", got.Load())
	}
}

func TestGo_CallbackRegisteredAfterCompletion(t *testing.T) {
	q := NewQueue()
	f := Go(context.Background(), q, func(context.Context) (string, error) {
		return "", errors.New("offline")
	})
	waitDone(t, f)

	var got Result[string]
	f.OnDone(func(r Result[string]) { got = r })
	fn := nextWithin(t, q, time.Second)
	fn()

	if got.OK() {
		t.Error("expected failure result")
	}
}

func TestFuture_CallbackFiresOnce(t *testing.T) {
	q := NewQueue()
	f := Resolved(q, 1)
	calls := 0
	f.OnDone(func(Result[int]) { calls++ })

	// A second resolve attempt is ignored.
	f.resolve(Result[int]{Value: 2})

	if n := q.Drain(); n != 1 {
		t.Fatalf("drained %d callbacks, want 1", n)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFuture_SecondOnDonePanics(t *testing.T) {
	f := Resolved(Inline{}, 1)
	f.OnDone(func(Result[int]) {})

	defer func() {
		if recover() == nil {
			t.Error("second OnDone should panic")
		}
	}()
	f.OnDone(func(Result[int]) {})
}

func TestFuture_NilCallbackPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("OnDone(nil) should panic")
		}
	}()
	Resolved(Inline{}, 1).OnDone(nil)
}

func TestGo_PassesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	q := NewQueue()

	f := Go(ctx, q, func(ctx context.Context) (string, error) {
		v, _ := ctx.Value(ctxKey{}).(string)
		return v, nil
	})
	var got string
	f.OnDone(func(r Result[string]) { got = r.Value })
	nextWithin(t, q, time.Second)()

	if got != "req-1" {
		t.Errorf("got %q, want req-1", got)
	}
}

func waitDone[T any](t *testing.T, f *Future[T]) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		f.mu.Lock()
		done := f.done
		f.mu.Unlock()
		if done {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("future did not complete")
		}
		time.Sleep(time.Millisecond)
	}
}

func nextWithin(t *testing.T, q *Queue, d time.Duration) func() {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	fn, ok := q.Next(ctx)
	if !ok {
		t.Fatal("no callback posted in time")
	}
	return fn
}
