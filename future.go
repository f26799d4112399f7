package iofio

import "sync"

// Future is a read-only, copy-shared view of a value that will eventually
// be resolved to either a value or an error. All copies of a Future observe
// the same eventual outcome.
type Future[T any] struct {
	state *futureState[T]
}

type futureState[T any] struct {
	mu        sync.Mutex
	done      bool
	val       T
	err       error
	waiters   []chan struct{}
	callbacks []func(T, error)
}

// Promise is the write side of a Future. A Promise may be resolved exactly
// once; subsequent resolutions are no-ops. This mirrors the "enqueued task"
// early-completion override: a third party may call SetValue/SetError before
// the callable that logically owns the promise returns, and the callable's
// own eventual result is then silently discarded.
type Promise[T any] struct {
	state *futureState[T]
}

// NewPromise creates a fresh, unresolved Promise and its paired Future.
func NewPromise[T any]() (Promise[T], Future[T]) {
	s := &futureState[T]{}
	return Promise[T]{state: s}, Future[T]{state: s}
}

// Resolved returns a Future that is already resolved to val.
func Resolved[T any](val T) Future[T] {
	p, f := NewPromise[T]()
	p.SetValue(val)
	return f
}

// Failed returns a Future that is already resolved to err.
func Failed[T any](err error) Future[T] {
	p, f := NewPromise[T]()
	p.SetError(err)
	return f
}

// SetValue resolves the promise with val. If the promise was already
// resolved (by this call, a prior SetError, or a racing early-completion
// setter), this is a no-op: the loser of the race is silently discarded,
// per the enqueued-task contract.
func (p Promise[T]) SetValue(val T) bool {
	return p.resolve(val, nil)
}

// SetError resolves the promise with err.
func (p Promise[T]) SetError(err error) bool {
	var zero T
	return p.resolve(zero, err)
}

// SetResult resolves the promise with either val or err, whichever a verb
// adapter naturally produces together.
func (p Promise[T]) SetResult(val T, err error) bool {
	return p.resolve(val, err)
}

func (p Promise[T]) resolve(val T, err error) bool {
	s := p.state
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return false
	}
	s.val, s.err, s.done = val, err, true
	waiters := s.waiters
	callbacks := s.callbacks
	s.waiters = nil
	s.callbacks = nil
	s.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
	for _, cb := range callbacks {
		cb(val, err)
	}
	return true
}

// Done reports whether the future has been resolved.
func (f Future[T]) Done() bool {
	s := f.state
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Peek returns the current value/error without blocking, and whether the
// future was already resolved.
func (f Future[T]) Peek() (val T, err error, ok bool) {
	s := f.state
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val, s.err, s.done
}

// Wait blocks until the future resolves and returns its outcome.
func (f Future[T]) Wait() (T, error) {
	s := f.state
	s.mu.Lock()
	if s.done {
		val, err := s.val, s.err
		s.mu.Unlock()
		return val, err
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	<-ch
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val, s.err
}

// Notify arranges for fn to be invoked exactly once, when the future
// resolves. If it is already resolved, fn runs synchronously on the calling
// goroutine; otherwise it runs on whichever goroutine resolves the future
// (this is what lets the completion engine's "immediate" flag avoid a trip
// through the thread source: the resolving goroutine simply keeps going).
func (f Future[T]) Notify(fn func(T, error)) {
	s := f.state
	s.mu.Lock()
	if s.done {
		val, err := s.val, s.err
		s.mu.Unlock()
		fn(val, err)
		return
	}
	s.callbacks = append(s.callbacks, fn)
	s.mu.Unlock()
}
