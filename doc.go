/*
Package goflux provides a Go library for reactive push streams with
hot and cold sources, incremental collection observables, and
cancellable asynchronous operations.

Reactive Core (pkg/reactive):
  - execution: execution contexts controlling where observers run
  - stream: base push streams, Disposable cancellation, combinators
  - observable: single-value hot stream with latest-value replay
  - collection: observable slices emitting positional change-sets,
    with incremental map/filter/sort derivation
  - operation: cold asynchronous work with at-most-once termination
  - timer: interval, delay, and cron-scheduled sources

Bridges (pkg/bridge):
  - redisbridge: Redis Pub/Sub subscriptions as streams, publishes
    as operations

Observability (pkg/metrics):
  - Prometheus instrumentation for streams, operations, and
    collections

Example usage:

	import (
		"github.com/vnykmshr/goflux/pkg/reactive/execution"
		"github.com/vnykmshr/goflux/pkg/reactive/observable"
	)

	name := observable.New("Jim")
	sub := name.Observe(execution.Immediate(), func(v string) {
		fmt.Println("name is now", v)
	})
	defer sub.Dispose()

	name.Set("Jim Kirk") // observer runs once with the new value
*/
package goflux
