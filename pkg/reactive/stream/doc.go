/*
Package stream provides the base push-stream abstraction for goflux:
streams of values over time, observer registration with explicit
execution-context dispatch, and one-shot cancellation via Disposable.

Core Concepts:

A Stream[T] is observed rather than iterated: Observe registers a
callback and returns a Disposable that cancels the registration.
Where the callback runs is controlled by the execution.Context passed
to Observe; the engine never calls an observer directly.

Streams are either cold or hot:
  - Cold (stream.New): each Observe invokes the producer once, so every
    observer triggers an independent production.
  - Hot (stream.ActiveStream): a single producer pushes values with
    Send; observers share the production and a new observer first
    receives the currently buffered value.

Basic Usage:

	ticks := stream.New(func(next func(int)) stream.Disposable {
		stop := make(chan struct{})
		go func() {
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				case <-time.After(time.Second):
					next(i)
				}
			}
		}()
		return stream.NewDisposable(func() { close(stop) })
	})

	sub := ticks.Observe(execution.Immediate(), func(i int) {
		fmt.Println("tick", i)
	})
	defer sub.Dispose()

Combinators:

	evens := stream.Filter(ticks, func(i int) bool { return i%2 == 0 })
	labels := stream.Map(evens, func(i int) string { return fmt.Sprintf("t%d", i) })
	latest := stream.FlatMapLatest(queries, search)
	all := stream.Merge(a, b, c)

Combinators preserve stream temperature: mapping a cold stream yields a
cold stream, mapping a hot one stays hot.

Disposal:

Every Observe returns a Disposable. Disposal is idempotent, safe from
any goroutine, and guarantees that no value reaches the observer after
it completes. Composite and SerialDisposable aggregate handles for
multi-subscription operators.
*/
package stream
