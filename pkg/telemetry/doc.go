// Package telemetry holds the observability surface shared by the store,
// the persistence backends, the broadcast bus and the reactive runtime.
//
// Three independent channels are exposed:
//
//   - Prometheus collectors (Metrics), registered on a caller-chosen
//     registry and safe to use through a nil pointer.
//   - An OpenTelemetry tracer (Tracer) resolved from the global provider.
//   - capitan signals (PersistSet, PersistRemoved, BusDispatched) that audit
//     hooks can subscribe to with capitan.Hook.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	st := store.New(store.WithMetrics(m))
package telemetry
