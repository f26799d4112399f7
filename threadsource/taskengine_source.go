package threadsource

import (
	"context"
	"fmt"
	"sync"

	"github.com/opsfleet/iofio/taskengine"
)

// taggedResult carries the caller-assigned correlation id alongside a
// callable's outcome. The wrapped task never itself returns a non-nil
// error to the engine -- the error travels inside the value -- so every
// submission lands on the results channel and nothing needs the engine's
// own error-tagging machinery for correlation.
type taggedResult struct {
	id  uint64
	val any
	err error
}

// TaskEngine adapts taskengine's dynamic/fixed pool (a general-purpose
// task-queue engine) to the Source contract, as a richer alternative to
// Fixed: a dynamically sized pool, or a fixed one reusing the engine's own
// buffering and options instead of Fixed's bespoke channel loop.
type TaskEngine struct {
	eng    taskengine.Workers[taggedResult]
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[uint64]chan Result
	nextID  uint64
	closed  bool

	workers int
	done    sync.WaitGroup
	stopped chan struct{}
}

// NewTaskEngine wraps a taskengine.Workers pool as a Source. workers <= 0
// selects the engine's dynamic pool; otherwise a fixed pool of that size.
// Extra opts are passed through to taskengine.NewOptions.
func NewTaskEngine(workers int, opts ...taskengine.Option) *TaskEngine {
	ctx, cancel := context.WithCancel(context.Background())

	all := make([]taskengine.Option, 0, len(opts)+2)
	if workers > 0 {
		all = append(all, taskengine.WithFixedPool(uint(workers)))
	}
	all = append(all, opts...)
	all = append(all, taskengine.WithStartImmediately())

	t := &TaskEngine{
		eng:     taskengine.NewOptions[taggedResult](ctx, all...),
		cancel:  cancel,
		pending: make(map[uint64]chan Result),
		workers: workers,
		stopped: make(chan struct{}),
	}
	t.done.Add(1)
	go t.demux()
	return t
}

func (t *TaskEngine) demux() {
	defer t.done.Done()
	results := t.eng.GetResults()
	errs := t.eng.GetErrors()
	for {
		select {
		case r := <-results:
			t.deliver(r.id, Result{Value: r.val, Err: r.err})
		case <-errs:
			// tasks submitted through Submit never return an error to the
			// engine directly (see taggedResult), so anything arriving here
			// is the engine's own error for a task cut off by context
			// cancellation; it carries no correlation id and is dropped.
		case <-t.stopped:
			return
		}
	}
}

func (t *TaskEngine) deliver(id uint64, res Result) {
	t.mu.Lock()
	ch, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()
	if ok {
		ch <- res
	}
}

// Submit enqueues fn on the underlying engine.
func (t *TaskEngine) Submit(fn func() (any, error)) <-chan Result {
	out := make(chan Result, 1)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		out <- Result{Err: fmt.Errorf("threadsource: pool is closed")}
		return out
	}
	t.nextID++
	id := t.nextID
	t.pending[id] = out
	t.mu.Unlock()

	task := func(context.Context) (tr taggedResult, _ error) {
		tr.id = id
		defer func() {
			if r := recover(); r != nil {
				tr.err = fmt.Errorf("threadsource: task panicked: %v", r)
			}
		}()
		tr.val, tr.err = fn()
		return tr, nil
	}
	if err := t.eng.AddTask(task); err != nil {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		out <- Result{Err: err}
	}
	return out
}

// WorkerCount reports the configured fixed worker count, or 0 for a
// dynamically sized pool.
func (t *TaskEngine) WorkerCount() int { return t.workers }

// Close cancels the underlying engine's context, stops the demux goroutine
// and waits for it to exit.
func (t *TaskEngine) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()
	t.cancel()
	close(t.stopped)
	t.done.Wait()
}
