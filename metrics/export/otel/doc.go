// Package otel provides OpenTelemetry metric bindings for authgate counters.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine metric.
// A single callback reads [authgate.Engine.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
