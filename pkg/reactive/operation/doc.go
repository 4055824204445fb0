/*
Package operation provides goflux's model of cancellable asynchronous
work: a cold stream of next values ended by exactly one terminal event,
either a failure or a success.

Core Concepts:

An Operation[T] is a stateless descriptor wrapping a producer function.
Each Observe call invokes the producer once with a Sink and tracks that
run independently through the state machine Running -> {Succeeded,
Failed, Cancelled}. The wrapper enforces terminal exclusivity: once a
terminal event is accepted, every further sink call is a silent no-op,
regardless of what the producer does. Reaching a terminal event (or
being cancelled) automatically disposes the producer's work disposable.

Basic Usage:

	fetch := operation.New(func(sink operation.Sink[string]) stream.Disposable {
		req := startRequest(url, func(body string, err error) {
			if err != nil {
				sink.Fail(err)
				return
			}
			sink.Next(body)
			sink.Succeed()
		})
		return stream.NewDisposable(req.Cancel)
	})

	sub := fetch.Observe(execution.Goroutine(), func(ev operation.Event[string]) {
		switch ev.Kind {
		case operation.KindNext:
			fmt.Println("body:", ev.Value)
		case operation.KindFailed:
			fmt.Println("error:", ev.Err)
		case operation.KindSucceeded:
			fmt.Println("done")
		}
	})
	defer sub.Dispose()

Combinators:

	lengths := operation.Map(fetch, func(s string) int { return len(s) })
	cached := operation.FlatMapError(fetch, func(error) operation.Operation[string] {
		return operation.Succeeded(cachedBody)
	})
	latest := operation.FlatMap(queries, operation.Latest, search)
	shared := operation.Share(fetch)
	robust := operation.WithTimeout(operation.Retry(fetch, 3), 5*time.Second)

Failure is data, not control flow: producer errors surface as failure
events and propagate through combinators until intercepted by
FlatMapError. There is no implicit retry; Retry composes a new
operation that re-invokes the failed one.

Blocking Bridge:

	body, err := operation.Result(ctx, fetch, execution.Goroutine())

Result waits for the terminal event and honors context cancellation by
disposing the observation.
*/
package operation
