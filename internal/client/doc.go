// Package client implements the sync daemon runtime.
//
// It wires local storage, the sync server transport, the sync service and
// the optional control API into a single process lifecycle, and provides a
// one-shot mode that runs a single sync and prints a styled report.
package client
