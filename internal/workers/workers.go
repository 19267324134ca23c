package workers

// Workers starts a fixed set of background workers in registration order.
type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers. Order is preserved: Run starts
// them in the order they were registered.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
