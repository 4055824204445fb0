package stream

import (
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
)

// Map returns a stream emitting f applied to each value of s. The
// temperature of s is preserved: observing the mapped stream observes
// s, so a cold source still produces per observer and a hot source
// still fans out.
func Map[T, U any](s Stream[T], f func(T) U) Stream[U] {
	return FromObserve(func(ec execution.Context, next func(U)) Disposable {
		return s.Observe(ec, func(v T) {
			next(f(v))
		})
	})
}

// Filter returns a stream emitting only the values of s for which
// predicate returns true.
func Filter[T any](s Stream[T], predicate func(T) bool) Stream[T] {
	return FromObserve(func(ec execution.Context, next func(T)) Disposable {
		return s.Observe(ec, func(v T) {
			if predicate(v) {
				next(v)
			}
		})
	})
}

// FlatMapLatest maps each value of s to an inner stream and forwards
// values from the most recent inner stream only. The previous inner
// subscription is cancelled before the next inner stream starts, so a
// slow inner stream superseded by a fast one never reaches the
// observer.
func FlatMapLatest[T, U any](s Stream[T], f func(T) Stream[U]) Stream[U] {
	return FromObserve(func(ec execution.Context, next func(U)) Disposable {
		inner := NewSerialDisposable()
		outer := s.Observe(ec, func(v T) {
			// Cancel the previous inner subscription first, then start
			// the new one.
			inner.Set(nil)
			inner.Set(f(v).Observe(ec, next))
		})
		return NewComposite(outer, inner)
	})
}

// Merge returns a stream forwarding the values of all given streams.
// Disposing the merged observation disposes every upstream
// subscription.
func Merge[T any](streams ...Stream[T]) Stream[T] {
	return FromObserve(func(ec execution.Context, next func(T)) Disposable {
		composite := NewComposite()
		for _, s := range streams {
			composite.Add(s.Observe(ec, next))
		}
		return composite
	})
}
