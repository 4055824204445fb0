package operation

import (
	"time"

	gferrors "github.com/vnykmshr/goflux/pkg/common/errors"
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// WithTimeout returns an operation that fails with gferrors.ErrTimeout
// if op does not reach a terminal event within d. When the timeout
// fires, the underlying run is cancelled; next values emitted before
// the deadline pass through unchanged.
func WithTimeout[T any](op Operation[T], d time.Duration) Operation[T] {
	return New(func(sink Sink[T]) stream.Disposable {
		sub := stream.NewSerialDisposable()
		timer := time.AfterFunc(d, func() {
			sink.Fail(gferrors.ErrTimeout)
			sub.Dispose()
		})
		sub.Set(op.observe(execution.Immediate(), func(ev Event[T]) {
			switch ev.Kind {
			case KindNext:
				sink.Next(ev.Value)
			case KindFailed:
				timer.Stop()
				sink.Fail(ev.Err)
			case KindSucceeded:
				timer.Stop()
				sink.Succeed()
			}
		}))
		return stream.NewComposite(stream.NewDisposable(func() { timer.Stop() }), sub)
	})
}
