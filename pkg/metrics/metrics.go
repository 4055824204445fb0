package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for goflux components.
type Registry struct {
	// Stream Metrics
	StreamObservers  *prometheus.GaugeVec
	EventsDispatched *prometheus.CounterVec

	// Operation Metrics
	OperationsStarted   *prometheus.CounterVec
	OperationsSucceeded *prometheus.CounterVec
	OperationsFailed    *prometheus.CounterVec
	OperationsCancelled *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec

	// Collection Metrics
	CollectionMutations *prometheus.CounterVec
	ChangeSetSize       *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by goflux components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistryWithConfig creates a metrics registry from a Config.
// Labels are attached to every metric via the registerer. A disabled
// config yields a registry whose metrics work but are registered
// nowhere, so instrumented components need no enabled check.
func NewRegistryWithConfig(cfg Config) *Registry {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if !cfg.Enabled {
		reg = nil
	} else if len(cfg.Labels) > 0 {
		reg = prometheus.WrapRegistererWith(cfg.Labels, reg)
	}
	return NewRegistry(reg)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Stream Metrics
		StreamObservers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goflux",
				Subsystem: "stream",
				Name:      "observers",
				Help:      "Number of observers currently registered on a stream",
			},
			[]string{"stream_name"},
		),

		EventsDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goflux",
				Subsystem: "stream",
				Name:      "events_dispatched_total",
				Help:      "Total number of events dispatched to observers",
			},
			[]string{"stream_name"},
		),

		// Operation Metrics
		OperationsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goflux",
				Subsystem: "operation",
				Name:      "started_total",
				Help:      "Total number of operation observations started",
			},
			[]string{"operation_name"},
		),

		OperationsSucceeded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goflux",
				Subsystem: "operation",
				Name:      "succeeded_total",
				Help:      "Total number of operations that completed successfully",
			},
			[]string{"operation_name"},
		),

		OperationsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goflux",
				Subsystem: "operation",
				Name:      "failed_total",
				Help:      "Total number of operations that terminated with a failure",
			},
			[]string{"operation_name"},
		),

		OperationsCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goflux",
				Subsystem: "operation",
				Name:      "cancelled_total",
				Help:      "Total number of operations cancelled before a terminal event",
			},
			[]string{"operation_name"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goflux",
				Subsystem: "operation",
				Name:      "duration_seconds",
				Help:      "Time from observation start to terminal event or cancellation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation_name", "outcome"},
		),

		// Collection Metrics
		CollectionMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goflux",
				Subsystem: "collection",
				Name:      "mutations_total",
				Help:      "Total number of collection mutations by kind",
			},
			[]string{"collection_name", "mutation"},
		),

		ChangeSetSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goflux",
				Subsystem: "collection",
				Name:      "changeset_size",
				Help:      "Number of positions touched per emitted change-set",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"collection_name"},
		),
	}
}
