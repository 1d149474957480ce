// Package infra contains the adapters behind the core interfaces: the
// branch-and-bound backend, metrics sinks, the run log, data loading and
// error monitoring. Packages here depend on core, never the reverse.
package infra
