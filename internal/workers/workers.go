package workers

import (
	"context"
	"sync"
)

// Workers runs a fixed set of workers as one unit. Workers are started in
// the order given and stopped in reverse order.
type Workers struct {
	workers []Worker

	mu      sync.Mutex
	started bool
}

// NewWorkers groups the given workers. Nil entries are ignored.
func NewWorkers(workers ...Worker) *Workers {
	ws := make([]Worker, 0, len(workers))
	for _, w := range workers {
		if w != nil {
			ws = append(ws, w)
		}
	}
	return &Workers{workers: ws}
}

// Start starts every worker. A second call without Stop is a no-op.
func (w *Workers) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}
	w.started = true

	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops every worker in reverse start order and waits for each.
func (w *Workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.started = false

	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// Len returns the number of managed workers.
func (w *Workers) Len() int {
	return len(w.workers)
}
