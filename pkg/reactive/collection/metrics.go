package collection

import (
	"github.com/vnykmshr/goflux/pkg/metrics"
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Instrument observes v and records every emitted change-set in the
// Prometheus registry under name: mutation counters by kind and a
// histogram of change-set sizes. The replayed initial population is
// counted like any other insert batch. A nil registry uses
// metrics.DefaultRegistry.
//
// Disposing the returned handle stops the instrumentation.
func Instrument[T any](v View[T], name string, reg *metrics.Registry) stream.Disposable {
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	return v.Observe(execution.Immediate(), func(ev Event[T]) {
		c := ev.Changes
		if n := len(c.Inserts); n > 0 {
			reg.CollectionMutations.WithLabelValues(name, "insert").Add(float64(n))
		}
		if n := len(c.Updates); n > 0 {
			reg.CollectionMutations.WithLabelValues(name, "update").Add(float64(n))
		}
		if n := len(c.Deletes); n > 0 {
			reg.CollectionMutations.WithLabelValues(name, "delete").Add(float64(n))
		}
		reg.ChangeSetSize.WithLabelValues(name).Observe(float64(len(c.Inserts) + len(c.Updates) + len(c.Deletes)))
	})
}
