package stream

import (
	"sync"
	"sync/atomic"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
)

// Stream is a push-based sequence of values of type T. Observing a
// stream registers a callback that receives every value the stream
// produces, delivered through an execution context, and returns a
// Disposable that cancels the registration.
//
// Streams come in two semantic flavors. A cold stream (built with New)
// invokes its producer once per Observe call, so every observer gets
// an independent production. A hot stream (see ActiveStream) has a
// single internal producer fanning out to all observers.
type Stream[T any] struct {
	observe func(ec execution.Context, next func(T)) Disposable
}

// New creates a cold stream from a producer function. Each call to
// Observe invokes the producer exactly once with a sink that feeds the
// new observer. The producer may return a Disposable holding whatever
// resources production acquired (timers, connections, goroutines); it
// is disposed when the observation is cancelled. Returning nil is
// allowed for producers with nothing to release.
func New[T any](producer func(next func(T)) Disposable) Stream[T] {
	return Stream[T]{observe: func(ec execution.Context, next func(T)) Disposable {
		obs := newObservation(ec, next)
		obs.attach(producer(obs.deliver))
		return obs
	}}
}

// FromObserve creates a stream directly from an observe function. It
// is the escape hatch used by combinators and hot streams; the
// function is responsible for routing delivery through the context.
func FromObserve[T any](observe func(ec execution.Context, next func(T)) Disposable) Stream[T] {
	return Stream[T]{observe: observe}
}

// Just creates a cold stream that synchronously emits the given values
// to each new observer.
func Just[T any](values ...T) Stream[T] {
	return New(func(next func(T)) Disposable {
		for _, v := range values {
			next(v)
		}
		return nil
	})
}

// Never creates a stream that emits nothing.
func Never[T any]() Stream[T] {
	return New(func(func(T)) Disposable {
		return nil
	})
}

// Observe registers next as an observer of the stream. Every value is
// delivered by scheduling a callback on ec, never by calling next
// directly, so the caller controls where side-effects run (the
// immediate context collapses scheduling to an inline call). For a
// single observer, values scheduled on a FIFO context are delivered in
// emission order.
//
// The returned Disposable cancels the observation: no value is
// delivered after disposal completes, even if the producer keeps
// emitting from another goroutine.
func (s Stream[T]) Observe(ec execution.Context, next func(T)) Disposable {
	return s.observe(ec, next)
}

// observation gates delivery for a single observer: it carries the
// active flag consulted on both sides of the scheduling boundary and
// owns the producer's work disposable.
type observation[T any] struct {
	ec     execution.Context
	next   func(T)
	active atomic.Bool

	mu   sync.Mutex
	work Disposable
}

func newObservation[T any](ec execution.Context, next func(T)) *observation[T] {
	o := &observation[T]{ec: ec, next: next}
	o.active.Store(true)
	return o
}

// deliver routes one value to the observer through the context. The
// active flag is re-checked inside the scheduled closure so that a
// disposal racing with an in-flight dispatch suppresses delivery.
func (o *observation[T]) deliver(v T) {
	if !o.active.Load() {
		return
	}
	o.ec.Schedule(func() {
		if o.active.Load() {
			o.next(v)
		}
	})
}

// attach records the producer's work disposable. If the observation
// was disposed before the producer returned, the work is released
// immediately.
func (o *observation[T]) attach(work Disposable) {
	if work == nil {
		return
	}
	o.mu.Lock()
	if !o.active.Load() {
		o.mu.Unlock()
		work.Dispose()
		return
	}
	o.work = work
	o.mu.Unlock()
}

// Dispose implements Disposable.
func (o *observation[T]) Dispose() {
	if !o.active.CompareAndSwap(true, false) {
		return
	}
	o.mu.Lock()
	work := o.work
	o.work = nil
	o.mu.Unlock()

	if work != nil {
		work.Dispose()
	}
}

// IsDisposed implements Disposable.
func (o *observation[T]) IsDisposed() bool {
	return !o.active.Load()
}
