package service

import (
	"context"
	"sync"
)

// job is the start/stop plumbing shared by the background workers: one
// goroutine per Start, cancelled and awaited by Stop.
type job struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// start stops any previously running loop, then runs loop in a new goroutine
// with a context that Stop cancels.
func (j *job) start(ctx context.Context, loop func(ctx context.Context)) {
	j.stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		loop(jobCtx)
	}()
}

// stop cancels the loop and blocks until it has exited. Safe to call when
// nothing is running.
func (j *job) stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// running reports whether a loop has been started and not stopped.
func (j *job) running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.cancel != nil
}
