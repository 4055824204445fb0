package operation

import (
	"sync"
	"sync/atomic"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Sink is the producer's side of one operation run. Methods may be
// called from any goroutine; after a terminal method (Fail or Succeed)
// has been accepted, or the run has been cancelled, every further call
// is a silent no-op. Producers do not need their own termination
// bookkeeping.
type Sink[T any] interface {
	// Next emits an intermediate value.
	Next(v T)
	// Fail terminates the run with err.
	Fail(err error)
	// Succeed terminates the run successfully.
	Succeed()
}

// Operation is a cold descriptor of cancellable asynchronous work: a
// sequence of next values ended by exactly one terminal event (failure
// or success). The descriptor itself is stateless; each Observe call
// invokes the producer once and tracks that run's state independently.
type Operation[T any] struct {
	observe func(ec execution.Context, onEvent func(Event[T])) stream.Disposable
}

// New creates an operation from a producer. The producer receives the
// run's sink and may emit synchronously before returning or hand the
// sink to other goroutines for later emission. The Disposable it
// returns holds the work behind the run (timers, requests, goroutines);
// it is disposed when the run reaches a terminal event or is cancelled.
// Returning nil is allowed.
func New[T any](producer func(Sink[T]) stream.Disposable) Operation[T] {
	return Operation[T]{observe: func(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
		r := newRun(ec, onEvent)
		r.attach(producer(r))
		return r
	}}
}

// Succeeded creates an operation that emits v and succeeds as soon as
// it is observed.
func Succeeded[T any](v T) Operation[T] {
	return New(func(s Sink[T]) stream.Disposable {
		s.Next(v)
		s.Succeed()
		return nil
	})
}

// Failed creates an operation that fails with err as soon as it is
// observed.
func Failed[T any](err error) Operation[T] {
	return New(func(s Sink[T]) stream.Disposable {
		s.Fail(err)
		return nil
	})
}

// FromObserve creates an operation directly from an observe function.
// It is the escape hatch used by combinators; the function is
// responsible for enforcing terminal semantics, usually by delegating
// to an operation built with New.
func FromObserve[T any](observe func(ec execution.Context, onEvent func(Event[T])) stream.Disposable) Operation[T] {
	return Operation[T]{observe: observe}
}

// Observe starts one run of the operation: the producer is invoked
// with a fresh sink and every accepted event is delivered to onEvent
// through ec. At most one terminal event is ever delivered, and no
// event follows it.
//
// Disposing the returned Disposable while the run is live cancels it:
// the producer's work disposable is disposed and no further event
// reaches onEvent. Disposal after a terminal event is a no-op.
func (o Operation[T]) Observe(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
	return o.observe(ec, onEvent)
}

// Events exposes one observation path of the operation as a plain
// stream of events, for composition with the generic stream
// combinators. The stream is as cold as the operation: each Observe
// starts an independent run.
func (o Operation[T]) Events() stream.Stream[Event[T]] {
	return stream.FromObserve(o.observe)
}

// runState tracks a single observation through its lifecycle.
type runState int

const (
	stateRunning runState = iota
	stateSucceeded
	stateFailed
	stateCancelled
)

// run is the per-observation state machine. It is both the producer's
// Sink and the observer's Disposable: the mutex serializes state
// transitions, and the suppressed flag is re-checked inside scheduled
// closures so cancellation stops even in-flight dispatches.
type run[T any] struct {
	ec      execution.Context
	onEvent func(Event[T])

	suppressed atomic.Bool // set on cancellation
	terminated atomic.Bool // set once a terminal event is dispatched

	mu    sync.Mutex
	state runState
	work  stream.Disposable
}

func newRun[T any](ec execution.Context, onEvent func(Event[T])) *run[T] {
	return &run[T]{ec: ec, onEvent: onEvent}
}

// dispatch routes one accepted event to the observer through the
// context. Non-terminal events are dropped if a terminal overtook them
// on a concurrent context; every event is dropped after cancellation.
func (r *run[T]) dispatch(ev Event[T]) {
	r.ec.Schedule(func() {
		if r.suppressed.Load() {
			return
		}
		if ev.IsTerminal() {
			r.terminated.Store(true)
		} else if r.terminated.Load() {
			return
		}
		r.onEvent(ev)
	})
}

// Next implements Sink.
func (r *run[T]) Next(v T) {
	r.mu.Lock()
	live := r.state == stateRunning
	r.mu.Unlock()
	if live {
		r.dispatch(nextEvent(v))
	}
}

// Fail implements Sink.
func (r *run[T]) Fail(err error) {
	r.terminate(stateFailed, failedEvent[T](err))
}

// Succeed implements Sink.
func (r *run[T]) Succeed() {
	r.terminate(stateSucceeded, succeededEvent[T]())
}

func (r *run[T]) terminate(s runState, ev Event[T]) {
	r.mu.Lock()
	if r.state != stateRunning {
		r.mu.Unlock()
		return
	}
	r.state = s
	work := r.work
	r.work = nil
	r.mu.Unlock()

	r.dispatch(ev)
	if work != nil {
		work.Dispose()
	}
}

// attach records the producer's work disposable. If the run reached a
// terminal state or was cancelled before the producer returned, the
// work is released immediately.
func (r *run[T]) attach(work stream.Disposable) {
	if work == nil {
		return
	}
	r.mu.Lock()
	if r.state != stateRunning {
		r.mu.Unlock()
		work.Dispose()
		return
	}
	r.work = work
	r.mu.Unlock()
}

// Dispose implements Disposable: it cancels a live run. After Dispose
// returns, no event reaches the observer even if the producer keeps
// calling the sink from another goroutine.
func (r *run[T]) Dispose() {
	r.mu.Lock()
	if r.state != stateRunning {
		r.mu.Unlock()
		return
	}
	r.state = stateCancelled
	r.suppressed.Store(true)
	work := r.work
	r.work = nil
	r.mu.Unlock()

	if work != nil {
		work.Dispose()
	}
}

// IsDisposed implements Disposable. A run counts as disposed once it
// left the running state, whether by terminal event or cancellation.
func (r *run[T]) IsDisposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != stateRunning
}
