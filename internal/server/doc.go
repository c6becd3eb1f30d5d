// Package server runs the local control API of the sync daemon.
//
// It owns the HTTP server lifecycle: startup, blocking until the caller's
// context is cancelled, and graceful shutdown bounded by a timeout.
package server
