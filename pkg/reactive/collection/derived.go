package collection

import (
	"sort"
	"sync"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Derived is a view computed incrementally from an upstream View. It
// owns no independent truth: its cache is a function of the upstream's
// current state, updated per upstream change-set rather than re-diffed
// from full snapshots. Derived views are hot: a new observer first
// receives the current cache with a full-insert change-set.
//
// A derived view subscribes to its upstream at construction and stays
// subscribed until Detach is called.
type Derived[T any] struct {
	// observeMu serializes observer registration with cache updates so
	// a replayed snapshot never overlaps the change-set that produced
	// it. The upstream handler holds it across update plus emit.
	observeMu sync.Mutex

	mu     sync.RWMutex
	items  []T
	active *stream.ActiveStream[Event[T]]

	upstream stream.Disposable
}

func newDerived[T any]() *Derived[T] {
	d := &Derived[T]{}
	d.active = stream.NewActiveStreamWithReplay(func() (Event[T], bool) {
		items := d.Items()
		return Event[T]{Items: items, Changes: initialChangeSet(len(items))}, true
	})
	return d
}

// Observe implements View.
func (d *Derived[T]) Observe(ec execution.Context, next func(Event[T])) stream.Disposable {
	d.observeMu.Lock()
	defer d.observeMu.Unlock()
	return d.active.Observe(ec, next)
}

// Items returns a copy of the view's current collection.
func (d *Derived[T]) Items() []T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]T(nil), d.items...)
}

// Len returns the view's current length.
func (d *Derived[T]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.items)
}

// AsStream exposes the view's event stream for composition with
// generic stream combinators.
func (d *Derived[T]) AsStream() stream.Stream[Event[T]] {
	return stream.FromObserve(d.Observe)
}

// Detach cancels the upstream subscription. The view stops updating
// but retains its last computed state.
func (d *Derived[T]) Detach() {
	d.upstream.Dispose()
}

func (d *Derived[T]) emit(ev Event[T]) {
	d.active.Send(ev)
}

// snapshotLocked returns a copy of the cache; callers hold d.mu.
func (d *Derived[T]) snapshotLocked() []T {
	return append([]T(nil), d.items...)
}

// Map derives a view whose elements are f applied to the upstream
// elements, positions preserved 1:1. f is invoked only for inserted
// and updated elements; cached results are reused for untouched
// positions. The upstream change-set is re-emitted unchanged.
func Map[T, U any](src View[T], f func(T) U) *Derived[U] {
	d := newDerived[U]()
	d.upstream = src.Observe(execution.Immediate(), func(ev Event[T]) {
		cs := ev.Changes
		cs.validate(len(ev.Items)+len(cs.Deletes)-len(cs.Inserts), len(ev.Items))

		d.observeMu.Lock()
		defer d.observeMu.Unlock()

		d.mu.Lock()
		for _, u := range cs.Updates {
			d.items[u] = f(ev.Items[cs.resultingPosition(u)])
		}
		deletes := sortedCopy(cs.Deletes)
		for i := len(deletes) - 1; i >= 0; i-- {
			dd := deletes[i]
			d.items = append(d.items[:dd], d.items[dd+1:]...)
		}
		inserts := sortedCopy(cs.Inserts)
		for _, ins := range inserts {
			d.items = append(d.items, *new(U))
			copy(d.items[ins+1:], d.items[ins:])
			d.items[ins] = f(ev.Items[ins])
		}
		out := Event[U]{Items: d.snapshotLocked(), Changes: ChangeSet{
			Inserts: sortedCopy(cs.Inserts),
			Updates: sortedCopy(cs.Updates),
			Deletes: sortedCopy(cs.Deletes),
		}}
		d.mu.Unlock()

		if !out.Changes.IsEmpty() {
			d.emit(out)
		}
	})
	return d
}

// Filter derives a view containing the upstream elements for which
// predicate returns true. It maintains a pass table translating
// upstream positions into derived positions; an upstream update
// becomes a derived insert, delete or update depending on whether the
// element's pass status changed.
func Filter[T any](src View[T], predicate func(T) bool) *Derived[T] {
	d := newDerived[T]()
	var passes []bool

	// rank is the derived position of upstream position idx: the number
	// of passing elements before it.
	rank := func(table []bool, idx int) int {
		r := 0
		for i := 0; i < idx; i++ {
			if table[i] {
				r++
			}
		}
		return r
	}

	d.upstream = src.Observe(execution.Immediate(), func(ev Event[T]) {
		cs := ev.Changes
		cs.validate(len(ev.Items)+len(cs.Deletes)-len(cs.Inserts), len(ev.Items))

		d.observeMu.Lock()
		defer d.observeMu.Unlock()

		d.mu.Lock()

		var derDel, derUpd, derIns []int
		var updValues []T   // parallel to derUpd
		var insUpstream []int // resulting upstream positions of new derived elements

		for _, dd := range cs.Deletes {
			if passes[dd] {
				derDel = append(derDel, rank(passes, dd))
			}
		}

		for _, u := range cs.Updates {
			wasPassing := passes[u]
			newValue := ev.Items[cs.resultingPosition(u)]
			nowPassing := predicate(newValue)
			switch {
			case wasPassing && nowPassing:
				derUpd = append(derUpd, rank(passes, u))
				updValues = append(updValues, newValue)
			case wasPassing && !nowPassing:
				derDel = append(derDel, rank(passes, u))
			case !wasPassing && nowPassing:
				insUpstream = append(insUpstream, cs.resultingPosition(u))
			}
		}

		// Advance the pass table to the resulting upstream state.
		next := append([]bool(nil), passes...)
		for _, u := range cs.Updates {
			next[u] = predicate(ev.Items[cs.resultingPosition(u)])
		}
		deletes := sortedCopy(cs.Deletes)
		for i := len(deletes) - 1; i >= 0; i-- {
			dd := deletes[i]
			next = append(next[:dd], next[dd+1:]...)
		}
		inserts := sortedCopy(cs.Inserts)
		for _, ins := range inserts {
			next = append(next, false)
			copy(next[ins+1:], next[ins:])
			next[ins] = predicate(ev.Items[ins])
			if next[ins] {
				insUpstream = append(insUpstream, ins)
			}
		}
		passes = next

		sort.Ints(insUpstream)
		insValues := make([]T, 0, len(insUpstream))
		for _, ui := range insUpstream {
			derIns = append(derIns, rank(passes, ui))
			insValues = append(insValues, ev.Items[ui])
		}

		// Patch the derived cache: updates at previous positions,
		// deletes descending, inserts ascending.
		for i, p := range derUpd {
			d.items[p] = updValues[i]
		}
		sortedDel := sortedCopy(derDel)
		for i := len(sortedDel) - 1; i >= 0; i-- {
			p := sortedDel[i]
			d.items = append(d.items[:p], d.items[p+1:]...)
		}
		for i, p := range derIns {
			d.items = append(d.items, *new(T))
			copy(d.items[p+1:], d.items[p:])
			d.items[p] = insValues[i]
		}

		out := Event[T]{Items: d.snapshotLocked(), Changes: ChangeSet{
			Inserts: derIns,
			Updates: sortedCopy(derUpd),
			Deletes: sortedDel,
		}}
		d.mu.Unlock()

		if !out.Changes.IsEmpty() {
			d.emit(out)
		}
	})
	return d
}

// Sort derives a view maintaining the upstream elements in the order
// given by cmp (negative when a sorts before b). Affected elements are
// removed from the derived order and re-inserted by ordered insertion,
// so mutations emit minimal change-sets rather than a full replace.
// Ties are broken by upstream position (stable).
func Sort[T any](src View[T], cmp func(a, b T) int) *Derived[T] {
	d := newDerived[T]()
	var order []int // derived position -> upstream position

	posInOrder := func(upstream int) int {
		for k, o := range order {
			if o == upstream {
				return k
			}
		}
		panic("collection: sorted view lost track of an upstream position")
	}

	// insertionPoint locates where the element at upstream position ui
	// of items belongs, keeping the order stable by upstream position.
	insertionPoint := func(items []T, ui int) int {
		v := items[ui]
		return sort.Search(len(order), func(k int) bool {
			c := cmp(v, items[order[k]])
			return c < 0 || (c == 0 && ui < order[k])
		})
	}

	d.upstream = src.Observe(execution.Immediate(), func(ev Event[T]) {
		cs := ev.Changes
		cs.validate(len(ev.Items)+len(cs.Deletes)-len(cs.Inserts), len(ev.Items))

		d.observeMu.Lock()
		defer d.observeMu.Unlock()

		d.mu.Lock()

		var derDel, derUpd, derIns []int

		// Deletes: derived positions are collected against the previous
		// order before anything is removed.
		deletes := sortedCopy(cs.Deletes)
		if len(deletes) > 0 {
			removed := make(map[int]bool, len(deletes))
			for _, dd := range deletes {
				derDel = append(derDel, posInOrder(dd))
				removed[dd] = true
			}
			sort.Ints(derDel)
			kept := order[:0]
			for _, o := range order {
				if !removed[o] {
					kept = append(kept, o)
				}
			}
			order = kept
		}

		// Re-index surviving entries into resulting upstream positions,
		// then insert the new elements by ordered insertion.
		if len(deletes) > 0 || len(cs.Inserts) > 0 {
			for k, o := range order {
				order[k] = cs.resultingPosition(o)
			}
			inserted := make(map[int]bool, len(cs.Inserts))
			for _, ins := range sortedCopy(cs.Inserts) {
				p := insertionPoint(ev.Items, ins)
				order = append(order, 0)
				copy(order[p+1:], order[p:])
				order[p] = ins
				inserted[ins] = true
			}
			// Insert positions refer to the resulting derived state,
			// read after all insertions have settled.
			for k, o := range order {
				if inserted[o] {
					derIns = append(derIns, k)
				}
			}
		}

		// Updates: remove the affected element and re-insert it with
		// its new value; a stable position degrades to an update.
		for _, u := range cs.Updates {
			ui := cs.resultingPosition(u)
			prev := posInOrder(ui)
			order = append(order[:prev], order[prev+1:]...)
			np := insertionPoint(ev.Items, ui)
			order = append(order, 0)
			copy(order[np+1:], order[np:])
			order[np] = ui
			if np == prev {
				derUpd = append(derUpd, prev)
			} else {
				derDel = append(derDel, prev)
				derIns = append(derIns, np)
			}
		}

		// The value cache follows the order directly.
		items := make([]T, len(order))
		for k, o := range order {
			items[k] = ev.Items[o]
		}
		d.items = items

		sort.Ints(derDel)
		sort.Ints(derUpd)
		sort.Ints(derIns)
		out := Event[T]{Items: d.snapshotLocked(), Changes: ChangeSet{
			Inserts: derIns,
			Updates: derUpd,
			Deletes: derDel,
		}}
		d.mu.Unlock()

		if !out.Changes.IsEmpty() {
			d.emit(out)
		}
	})
	return d
}
