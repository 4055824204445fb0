package operation

import (
	"sync"
	"time"

	"github.com/vnykmshr/goflux/pkg/metrics"
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// WithMetrics returns an operation that records Prometheus metrics for
// every run of op under the given name: observations started, the
// outcome (succeeded, failed, or cancelled), and the duration from
// start to that outcome. A nil registry uses metrics.DefaultRegistry.
//
// The wrapper is transparent: events, terminal semantics, and
// cancellation behave exactly as on op.
func WithMetrics[T any](op Operation[T], name string, reg *metrics.Registry) Operation[T] {
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	return FromObserve(func(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
		reg.OperationsStarted.WithLabelValues(name).Inc()
		start := time.Now()

		// Exactly one outcome is recorded per run; a disposal arriving
		// after the terminal event does not count as a cancellation.
		var once sync.Once
		record := func(outcome string) {
			once.Do(func() {
				switch outcome {
				case "succeeded":
					reg.OperationsSucceeded.WithLabelValues(name).Inc()
				case "failed":
					reg.OperationsFailed.WithLabelValues(name).Inc()
				case "cancelled":
					reg.OperationsCancelled.WithLabelValues(name).Inc()
				}
				reg.OperationDuration.WithLabelValues(name, outcome).Observe(time.Since(start).Seconds())
			})
		}

		sub := op.observe(ec, func(ev Event[T]) {
			switch ev.Kind {
			case KindFailed:
				record("failed")
			case KindSucceeded:
				record("succeeded")
			}
			onEvent(ev)
		})
		return stream.NewComposite(sub, stream.NewDisposable(func() {
			record("cancelled")
		}))
	})
}
