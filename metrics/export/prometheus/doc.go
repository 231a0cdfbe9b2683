// Package prometheus exposes authgate engine counters as a
// prometheus.Collector built on client_golang.
//
// [NewCollector] reads [authgate.Engine.MetricsSnapshot] on every scrape and
// emits one const counter per engine metric, plus authgate_audit_dropped_total
// for dispatcher backpressure. [Handler] wraps the collector in its own
// registry so nothing leaks into the global default registry.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
