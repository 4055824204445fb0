package collection

import (
	"fmt"
	"sort"
)

// ChangeSet describes a collection transition as three position lists.
// Deletes and Updates refer to positions in the previous collection
// state; Inserts refer to positions in the resulting state. For a
// single atomic mutation the three sets are mutually exclusive in what
// they describe.
type ChangeSet struct {
	Inserts []int
	Updates []int
	Deletes []int
}

// IsEmpty reports whether the change-set describes no transition.
func (c ChangeSet) IsEmpty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// initialChangeSet is the full-insert change-set representing the
// initial population of a collection of n elements.
func initialChangeSet(n int) ChangeSet {
	if n == 0 {
		return ChangeSet{}
	}
	inserts := make([]int, n)
	for i := range inserts {
		inserts[i] = i
	}
	return ChangeSet{Inserts: inserts}
}

// validate panics when an index falls outside the collection bounds it
// refers to. Out-of-range indices indicate a broken incremental-diff
// invariant, which is a programmer error and must fail loudly rather
// than propagate silently.
func (c ChangeSet) validate(prevLen, newLen int) {
	for _, d := range c.Deletes {
		if d < 0 || d >= prevLen {
			panic(fmt.Sprintf("collection: delete index %d out of range [0,%d)", d, prevLen))
		}
	}
	for _, u := range c.Updates {
		if u < 0 || u >= prevLen {
			panic(fmt.Sprintf("collection: update index %d out of range [0,%d)", u, prevLen))
		}
	}
	for _, i := range c.Inserts {
		if i < 0 || i >= newLen {
			panic(fmt.Sprintf("collection: insert index %d out of range [0,%d)", i, newLen))
		}
	}
	if newLen != prevLen+len(c.Inserts)-len(c.Deletes) {
		panic(fmt.Sprintf("collection: change-set of %d inserts and %d deletes cannot transition length %d to %d",
			len(c.Inserts), len(c.Deletes), prevLen, newLen))
	}
}

// resultingPosition translates a previous-state position into the
// resulting-state position after the change-set's deletes and inserts
// are applied.
func (c ChangeSet) resultingPosition(old int) int {
	pos := old
	for _, d := range c.Deletes {
		if d < old {
			pos--
		}
	}
	inserts := sortedCopy(c.Inserts)
	for _, i := range inserts {
		if i <= pos {
			pos++
		}
	}
	return pos
}

// Event is one emission of an observable collection: the resulting
// snapshot plus the change-set that produced it.
type Event[T any] struct {
	// Items is a snapshot of the resulting collection.
	Items []T

	// Changes describes the transition from the previous state.
	Changes ChangeSet
}

// Apply replays the event's change-set against prev, the previous
// collection state, and returns the resulting collection. Replaying
// every emitted event in order against the initial collection
// reproduces the observable's current state; UI adapters use the same
// arithmetic to patch their views.
func (e Event[T]) Apply(prev []T) []T {
	e.Changes.validate(len(prev), len(e.Items))

	out := make([]T, len(prev))
	copy(out, prev)

	for _, u := range e.Changes.Updates {
		out[u] = e.Items[e.Changes.resultingPosition(u)]
	}

	deletes := sortedCopy(e.Changes.Deletes)
	for i := len(deletes) - 1; i >= 0; i-- {
		d := deletes[i]
		out = append(out[:d], out[d+1:]...)
	}

	inserts := sortedCopy(e.Changes.Inserts)
	for _, ins := range inserts {
		out = append(out, *new(T))
		copy(out[ins+1:], out[ins:])
		out[ins] = e.Items[ins]
	}

	return out
}

func sortedCopy(indices []int) []int {
	out := make([]int, len(indices))
	copy(out, indices)
	sort.Ints(out)
	return out
}
