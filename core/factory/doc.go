// Package factory provides a generic registry used to build pluggable
// backends from configuration. Solver backends and metrics sinks register
// themselves under a type name and are instantiated from a ModuleConfig.
package factory
