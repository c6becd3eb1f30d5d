// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

// Client is a runnable daemon process.
type Client interface {
	// Run blocks until the process is asked to stop, or until the single
	// sync of one-shot mode has finished.
	Run() error
}
