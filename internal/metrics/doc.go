// Package metrics exposes Prometheus instrumentation for the sync daemon:
// sync attempts and their outcome, phase durations, queue depth, token
// refreshes, backoff state and control API traffic.
//
// Collectors are registered on the default registry at init through
// promauto and served by the control API under /metrics.
package metrics
