package operation

import (
	"context"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
)

// Result bridges an operation into ordinary blocking Go code: it
// observes op on ec, waits for the terminal event, and returns the last
// next value on success or the failure error. If ctx is cancelled
// first, the observation is disposed and ctx.Err() is returned.
//
// A success without any next value returns the zero value of T and a
// nil error.
func Result[T any](ctx context.Context, op Operation[T], ec execution.Context) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	done := make(chan outcome, 1)
	var last T
	sub := op.Observe(ec, func(ev Event[T]) {
		switch ev.Kind {
		case KindNext:
			last = ev.Value
		case KindFailed:
			done <- outcome{err: ev.Err}
		case KindSucceeded:
			done <- outcome{value: last}
		}
	})

	select {
	case <-ctx.Done():
		sub.Dispose()
		var zero T
		return zero, ctx.Err()
	case out := <-done:
		sub.Dispose()
		return out.value, out.err
	}
}
