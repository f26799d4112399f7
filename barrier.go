package iofio

import "sync/atomic"

// Settled is one slot of a WhenAllSettled result: exactly one of Value/Err
// is meaningful, distinguished by Ok.
type Settled struct {
	Value *Handle
	Err   error
	Ok    bool // true if the op fulfilled, false if it failed
}

// WhenAll returns a Future that resolves once every op in ids has resolved,
// with its value the list of their results in the same order. It rejects
// with the first op to fail; later results/failures are ignored.
func (d *Dispatcher) WhenAll(ids []OpID) Future[[]*Handle] {
	p, f := NewPromise[[]*Handle]()
	if len(ids) == 0 {
		p.SetValue(nil)
		return f
	}

	values := make([]*Handle, len(ids))
	var completed atomic.Int32
	var failed atomic.Bool

	for i, id := range ids {
		idx := i
		d.futureFor(id).Notify(func(h *Handle, err error) {
			if err != nil {
				if failed.CompareAndSwap(false, true) {
					p.SetError(err)
				}
				return
			}
			values[idx] = h
			if completed.Add(1) == int32(len(ids)) && !failed.Load() {
				p.SetValue(values)
			}
		})
	}
	return f
}

// WhenAny returns a Future that settles with the first op in ids to settle,
// ignoring the rest.
func (d *Dispatcher) WhenAny(ids []OpID) Future[*Handle] {
	p, f := NewPromise[*Handle]()
	if len(ids) == 0 {
		return f // never settles, matching the empty-Race convention
	}
	var settled atomic.Bool
	for _, id := range ids {
		d.futureFor(id).Notify(func(h *Handle, err error) {
			if !settled.CompareAndSwap(false, true) {
				return
			}
			if err != nil {
				p.SetError(err)
				return
			}
			p.SetValue(h)
		})
	}
	return f
}

// WhenAllSettled returns a Future that resolves once every op in ids has
// settled, successfully or not, with one Settled slot per op in the same
// order. It never fails.
func (d *Dispatcher) WhenAllSettled(ids []OpID) Future[[]Settled] {
	p, f := NewPromise[[]Settled]()
	if len(ids) == 0 {
		p.SetValue(nil)
		return f
	}

	results := make([]Settled, len(ids))
	var completed atomic.Int32

	for i, id := range ids {
		idx := i
		d.futureFor(id).Notify(func(h *Handle, err error) {
			if err != nil {
				results[idx] = Settled{Err: err}
			} else {
				results[idx] = Settled{Value: h, Ok: true}
			}
			if completed.Add(1) == int32(len(ids)) {
				p.SetValue(results)
			}
		})
	}
	return f
}

// Barrier submits a no-op Completion that fires once every op in ids has
// resolved, returning its OpID so it can itself be named as a precondition
// -- the classic fan-in-then-fan-out join.
func (d *Dispatcher) Barrier(ids []OpID) OpID {
	id := OpID(d.nextID.Add(1))
	o := newOp(id, VerbBarrier, flagImmediate)
	d.table.insert(o)
	d.opsSubmitted.Add(1)
	d.opsInFlight.Add(1)

	d.WhenAllSettled(ids).Notify(func(_ []Settled, _ error) {
		d.resolveOp(o, nil, nil)
	})
	return id
}

// futureFor returns the Future for an op id, whether or not it is still
// resident in the table (an already-resolved op's Future is still reachable
// through its record; see opTable's doc comment).
func (d *Dispatcher) futureFor(id OpID) Future[*Handle] {
	o, ok := d.table.get(id)
	if ok {
		return o.future
	}
	// not found via the public (unresolved-only) view: either truly unknown
	// or already resolved. table.outcome reads the record directly.
	h, err, done := d.table.outcome(id)
	if done {
		if err != nil {
			return Failed[*Handle](err)
		}
		return Resolved(h)
	}
	return Failed[*Handle](ErrOpNotFound)
}
