package pool

import "sync"

// NewDynamic returns a Pool with no fixed worker cap, backed by sync.Pool:
// it grows under load and lets the garbage collector reclaim idle workers
// between batches.
func NewDynamic(newFn func() interface{}) Pool {
	return &sync.Pool{New: newFn}
}
