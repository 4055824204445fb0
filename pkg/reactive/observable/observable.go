package observable

import (
	"sync"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Observable is a hot stream buffering exactly one value: the current
// one. Reading Value always returns the latest write; writing emits
// one event carrying the new value to every live observer before Set
// returns, and a newly registered observer first receives the current
// value.
//
// The value is stored under a short lock and fan-out happens outside
// of it, so an immediate-context observer may write back into the
// Observable from its callback without deadlocking.
type Observable[T any] struct {
	mu    sync.RWMutex
	value T

	active *stream.ActiveStream[T]
}

// New creates an Observable holding initial.
func New[T any](initial T) *Observable[T] {
	o := &Observable[T]{value: initial}
	o.active = stream.NewActiveStreamWithReplay(func() (T, bool) {
		// Replay reads the live value rather than the fan-out buffer so
		// a new observer always starts from the latest write.
		return o.Value(), true
	})
	return o
}

// Value returns the current value.
func (o *Observable[T]) Value() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set stores v as the current value and dispatches it to every
// observer registered at the time of the call.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	o.value = v
	o.mu.Unlock()

	o.active.Send(v)
}

// Update sets the value to f applied to the current value, as a single
// atomic read-modify-write.
func (o *Observable[T]) Update(f func(T) T) {
	o.mu.Lock()
	v := f(o.value)
	o.value = v
	o.mu.Unlock()

	o.active.Send(v)
}

// Observe registers next as an observer. The current value is
// dispatched to it through ec as its first scheduled item, then every
// subsequent write follows.
func (o *Observable[T]) Observe(ec execution.Context, next func(T)) stream.Disposable {
	return o.active.Observe(ec, next)
}

// AsStream exposes the observable as a hot Stream for composition.
func (o *Observable[T]) AsStream() stream.Stream[T] {
	return stream.FromObserve(o.Observe)
}

// ObserverCount returns the number of registered observers.
func (o *Observable[T]) ObserverCount() int {
	return o.active.ObserverCount()
}
