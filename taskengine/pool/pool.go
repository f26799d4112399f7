// Package pool recycles the worker goroutine-state objects a Workers
// instance hands to in-flight tasks, so a busy engine doesn't allocate a
// fresh worker per task.
package pool

// Pool hands out and reclaims interchangeable worker instances. Get never
// returns the zero value; Put accepts back only what a prior Get produced.
type Pool interface {
	// Get returns a worker, creating one if none is free.
	Get() interface{}

	// Put returns a worker to the pool for reuse.
	Put(interface{})
}
