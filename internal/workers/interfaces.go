// Package workers runs the daemon's long-lived background workers behind a
// single aggregate, so the application wires and starts them in one place.
package workers

// Worker is a long-lived background component of the daemon. Run starts
// the worker; implementations either block for the duration of their work
// or arm internal goroutines and return.
type Worker interface {
	Run()
}
