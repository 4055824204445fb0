// Package metrics provides Prometheus instrumentation for goflux components.
//
// This package enables monitoring and observability for goflux's streams,
// operations, and collection observables through Prometheus metrics.
//
// # Overview
//
// The metrics package provides instrumentation for:
//   - Stream fan-out (registered observers, dispatched events)
//   - Operations (started, succeeded, failed, cancelled, duration)
//   - Collection observables (mutations by kind, change-set sizes)
//
// # Quick Start
//
// Wrap an operation with metrics and expose them via HTTP:
//
//	fetch := operation.WithMetrics(fetchUser, "fetch_user", metrics.DefaultRegistry)
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	reg := metrics.NewRegistry(registry)
//	fetch := operation.WithMetrics(fetchUser, "fetch_user", reg)
//
// # Configuration
//
// NewRegistryWithConfig builds a registry from a Config, which can
// disable collection entirely or attach constant labels to every
// series:
//
//	reg := metrics.NewRegistryWithConfig(metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//		Labels:   prometheus.Labels{"service": "quotes"},
//	})
package metrics
