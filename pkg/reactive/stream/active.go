package stream

import (
	"sync"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
)

// ActiveStream is a hot fan-out hub: one internal producer pushes
// values with Send, and every registered observer receives them.
// Observing never triggers production; a new observer first receives
// the currently buffered value (last-1 by default), then live values.
//
// The observer set is guarded by a mutex and snapshotted before each
// fan-out, so observers added during a fan-out do not receive that
// value and re-entrant sends cannot corrupt the set.
type ActiveStream[T any] struct {
	mu        sync.Mutex
	observers map[uint64]func(T)
	nextID    uint64
	hasLast   bool
	last      T
	replay    func() (T, bool)
}

// NewActiveStream creates an ActiveStream with an empty buffer that
// replays the most recently sent value to new observers.
func NewActiveStream[T any]() *ActiveStream[T] {
	return &ActiveStream[T]{observers: make(map[uint64]func(T))}
}

// NewActiveStreamWithReplay creates an ActiveStream whose replay value
// for new observers is computed by the given function instead of being
// the last sent value. Specializations that buffer structured state
// (a collection snapshot plus its change-set) use this to synthesize
// the initial-population event.
func NewActiveStreamWithReplay[T any](replay func() (T, bool)) *ActiveStream[T] {
	return &ActiveStream[T]{observers: make(map[uint64]func(T)), replay: replay}
}

// Send buffers v and dispatches it to every observer registered at the
// time of the call.
func (a *ActiveStream[T]) Send(v T) {
	a.mu.Lock()
	a.hasLast = true
	a.last = v
	snapshot := make([]func(T), 0, len(a.observers))
	for _, deliver := range a.observers {
		snapshot = append(snapshot, deliver)
	}
	a.mu.Unlock()

	// Delivery happens outside the lock: an immediate-context observer
	// may re-enter Send from its callback.
	for _, deliver := range snapshot {
		deliver(v)
	}
}

// Observe registers next as an observer. The buffered value, if any,
// is dispatched to the new observer through ec as its first scheduled
// item, before the observer joins the live set; values sent while the
// replay is in flight are not delivered to it.
func (a *ActiveStream[T]) Observe(ec execution.Context, next func(T)) Disposable {
	obs := newObservation(ec, next)

	if v, ok := a.replayValue(); ok {
		obs.deliver(v)
	}

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.observers[id] = obs.deliver
	a.mu.Unlock()

	obs.attach(NewDisposable(func() {
		a.mu.Lock()
		delete(a.observers, id)
		a.mu.Unlock()
	}))
	return obs
}

// AsStream exposes the hub as a Stream value for use with combinators.
func (a *ActiveStream[T]) AsStream() Stream[T] {
	return FromObserve(a.Observe)
}

// ObserverCount returns the number of registered observers.
func (a *ActiveStream[T]) ObserverCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.observers)
}

func (a *ActiveStream[T]) replayValue() (T, bool) {
	if a.replay != nil {
		return a.replay()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.hasLast
}
