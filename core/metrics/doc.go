// Package metrics defines the sinks that record solve outcomes. Sinks like
// PromSink and InfluxSink live in infra/metrics and register themselves by
// type name; NewMetricsSink builds the configured sinks and returns a
// MultiSink automatically when more than one is configured.
package metrics
