/*
Package collection provides an observable collection: a hot stream
buffering a slice plus the structural change-set of each mutation, and
derived views (Map, Filter, Sort) that recompute minimal change-sets
incrementally instead of re-diffing full snapshots.

Change-set index semantics follow batch-update arithmetic: delete and
update indices refer to the previous collection state, insert indices
to the resulting state.

Basic Usage:

	users := collection.New([]string{"kirk", "spock"})

	sub := users.Observe(execution.Immediate(), func(ev collection.Event[string]) {
		fmt.Println(ev.Items, ev.Changes)
	})
	defer sub.Dispose()

	users.Append("uhura")        // Inserts=[2]
	users.UpdateAt(0, "james")   // Updates=[0]
	users.RemoveAt(1)            // Deletes=[1]

Derived Views:

	evens := collection.Filter(numbers, func(v int) bool { return v%2 == 0 })
	labels := collection.Map(users, strings.ToUpper)
	ranked := collection.Sort(scores, func(a, b int) int { return b - a })

Derived views are themselves observable and compose: a new observer
first receives the current derived snapshot as a full-insert
change-set, then incremental change-sets per upstream mutation. An
upstream update can surface as a derived insert, delete or update
depending on how it affects the view (a filtered element starting to
pass the predicate inserts, for example).

Replaying the emitted events in order with Event.Apply reproduces the
collection's state exactly, which is the contract UI adapters rely on
to patch table or list views without reloading.

Mutations are serialized through a writer lock; mutating a collection
from one of its own immediate-context observer callbacks is not
supported.
*/
package collection
