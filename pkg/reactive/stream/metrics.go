package stream

import (
	"github.com/vnykmshr/goflux/pkg/metrics"
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
)

// Instrumented wraps s so that every observation and delivery is
// recorded in the Prometheus registry under name: the observer gauge
// tracks live registrations and the dispatch counter every value
// delivered. A nil registry uses metrics.DefaultRegistry. The wrapper
// preserves stream temperature and disposal semantics.
func Instrumented[T any](s Stream[T], name string, reg *metrics.Registry) Stream[T] {
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	return FromObserve(func(ec execution.Context, next func(T)) Disposable {
		reg.StreamObservers.WithLabelValues(name).Inc()
		sub := s.Observe(ec, func(v T) {
			reg.EventsDispatched.WithLabelValues(name).Inc()
			next(v)
		})
		return NewComposite(sub, NewDisposable(func() {
			reg.StreamObservers.WithLabelValues(name).Dec()
		}))
	})
}
