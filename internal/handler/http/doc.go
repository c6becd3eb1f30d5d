// Package http implements the local control API of the sync daemon.
//
// The API lets a UI or an operator inspect and drive the sync subsystem:
// read the sync status, trigger a user sync, enable or disable sync with
// credentials handed over by the login flow, cancel queued requests and run
// a health check. Prometheus metrics are served on /metrics. Request tracing,
// access logging, request metrics and response compression are handled by
// middleware before requests reach the [service.SyncController].
package http
