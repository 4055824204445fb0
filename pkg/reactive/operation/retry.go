package operation

import (
	"time"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Retry returns an operation that re-invokes op on failure until it
// succeeds or attempts runs out. attempts counts total invocations, so
// Retry(op, 1) is op itself; the last attempt's failure propagates.
// There is no implicit retry anywhere else in this package: callers
// opt in by composing with this combinator.
func Retry[T any](op Operation[T], attempts int) Operation[T] {
	if attempts <= 1 {
		return op
	}
	return FlatMapError(op, func(error) Operation[T] {
		return Retry(op, attempts-1)
	})
}

// RetryBackoff is Retry with a fixed delay inserted before each
// re-invocation. The delay timer counts as the retried run's work, so
// cancelling the observation during the wait stops the retry.
func RetryBackoff[T any](op Operation[T], attempts int, delay time.Duration) Operation[T] {
	if attempts <= 1 {
		return op
	}
	return FlatMapError(op, func(error) Operation[T] {
		return after(delay, RetryBackoff(op, attempts-1, delay))
	})
}

// after defers observing the wrapped operation until d has elapsed.
// Disposal during the wait stops the timer; if the timer fires
// concurrently with disposal, the freshly started run is cancelled by
// the serial holder.
func after[T any](d time.Duration, op Operation[T]) Operation[T] {
	return FromObserve(func(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
		sub := stream.NewSerialDisposable()
		timer := time.AfterFunc(d, func() {
			sub.Set(op.observe(ec, onEvent))
		})
		return stream.NewComposite(stream.NewDisposable(func() { timer.Stop() }), sub)
	})
}
