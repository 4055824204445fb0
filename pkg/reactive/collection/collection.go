package collection

import (
	"fmt"
	"sync"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// View is the read side of an observable collection: a hot stream of
// collection events plus snapshot accessors. Both Observable and the
// derived views returned by Map, Filter and Sort implement it, so
// derivations compose.
type View[T any] interface {
	// Observe registers an observer. Its first event, dispatched
	// through ec at registration, is the current snapshot with a
	// full-insert change-set representing initial population.
	Observe(ec execution.Context, next func(Event[T])) stream.Disposable

	// Items returns a copy of the current collection.
	Items() []T

	// Len returns the current collection length.
	Len() int
}

// Observable is a hot stream buffering a collection value. In-place
// mutators compute and emit a change-set per mutation; derived views
// (Map, Filter, Sort) recompute their own change-sets incrementally
// from it.
//
// All mutations are serialized through a single writer lock, so
// concurrent mutation behaves as sequential and observers receive
// change-sets in mutation order. Mutating the collection from one of
// its own observer callbacks on the immediate context is not
// supported.
type Observable[T any] struct {
	writeMu sync.Mutex // serializes mutation plus fan-out

	mu    sync.RWMutex
	items []T

	active *stream.ActiveStream[Event[T]]
}

// New creates an Observable holding a copy of initial.
func New[T any](initial []T) *Observable[T] {
	o := &Observable[T]{items: append([]T(nil), initial...)}
	o.active = stream.NewActiveStreamWithReplay(func() (Event[T], bool) {
		items := o.Items()
		return Event[T]{Items: items, Changes: initialChangeSet(len(items))}, true
	})
	return o
}

// Items returns a copy of the current collection.
func (o *Observable[T]) Items() []T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]T(nil), o.items...)
}

// Len returns the current collection length.
func (o *Observable[T]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.items)
}

// Get returns the element at position i.
func (o *Observable[T]) Get(i int) T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if i < 0 || i >= len(o.items) {
		panic(fmt.Sprintf("collection: index %d out of range [0,%d)", i, len(o.items)))
	}
	return o.items[i]
}

// Append adds v at the end of the collection.
func (o *Observable[T]) Append(v T) {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	o.mu.Lock()
	o.items = append(o.items, v)
	ev := Event[T]{
		Items:   append([]T(nil), o.items...),
		Changes: ChangeSet{Inserts: []int{len(o.items) - 1}},
	}
	o.mu.Unlock()

	o.active.Send(ev)
}

// InsertAt inserts v at position i, shifting later elements up.
func (o *Observable[T]) InsertAt(i int, v T) {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	o.mu.Lock()
	if i < 0 || i > len(o.items) {
		n := len(o.items)
		o.mu.Unlock()
		panic(fmt.Sprintf("collection: insert index %d out of range [0,%d]", i, n))
	}
	o.items = append(o.items, *new(T))
	copy(o.items[i+1:], o.items[i:])
	o.items[i] = v
	ev := Event[T]{
		Items:   append([]T(nil), o.items...),
		Changes: ChangeSet{Inserts: []int{i}},
	}
	o.mu.Unlock()

	o.active.Send(ev)
}

// RemoveAt removes and returns the element at position i.
func (o *Observable[T]) RemoveAt(i int) T {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	o.mu.Lock()
	if i < 0 || i >= len(o.items) {
		n := len(o.items)
		o.mu.Unlock()
		panic(fmt.Sprintf("collection: remove index %d out of range [0,%d)", i, n))
	}
	removed := o.items[i]
	o.items = append(o.items[:i], o.items[i+1:]...)
	ev := Event[T]{
		Items:   append([]T(nil), o.items...),
		Changes: ChangeSet{Deletes: []int{i}},
	}
	o.mu.Unlock()

	o.active.Send(ev)
	return removed
}

// UpdateAt replaces the element at position i with v.
func (o *Observable[T]) UpdateAt(i int, v T) {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	o.mu.Lock()
	if i < 0 || i >= len(o.items) {
		n := len(o.items)
		o.mu.Unlock()
		panic(fmt.Sprintf("collection: update index %d out of range [0,%d)", i, n))
	}
	o.items[i] = v
	ev := Event[T]{
		Items:   append([]T(nil), o.items...),
		Changes: ChangeSet{Updates: []int{i}},
	}
	o.mu.Unlock()

	o.active.Send(ev)
}

// Replace swaps the entire collection for a copy of items, emitting a
// change-set that deletes every previous position and inserts every
// resulting one.
func (o *Observable[T]) Replace(items []T) {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	o.mu.Lock()
	oldLen := len(o.items)
	o.items = append([]T(nil), items...)
	deletes := make([]int, oldLen)
	for i := range deletes {
		deletes[i] = i
	}
	inserts := make([]int, len(o.items))
	for i := range inserts {
		inserts[i] = i
	}
	ev := Event[T]{
		Items:   append([]T(nil), o.items...),
		Changes: ChangeSet{Inserts: inserts, Deletes: deletes},
	}
	o.mu.Unlock()

	o.active.Send(ev)
}

// Observe implements View. Registration is serialized with mutation,
// so the replayed snapshot and the first live change-set never
// overlap: an observer that replays state S receives only change-sets
// produced after S.
func (o *Observable[T]) Observe(ec execution.Context, next func(Event[T])) stream.Disposable {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()
	return o.active.Observe(ec, next)
}

// AsStream exposes the collection's event stream for composition with
// generic stream combinators.
func (o *Observable[T]) AsStream() stream.Stream[Event[T]] {
	return stream.FromObserve(o.Observe)
}

// ObserverCount returns the number of registered observers.
func (o *Observable[T]) ObserverCount() int {
	return o.active.ObserverCount()
}
