package iofio

import "sync"

// OpID is a monotone, non-zero op identifier. Zero means "no precondition".
type OpID uint64

// opFlags are the per-op flags recognised by the completion engine.
type opFlags uint8

const (
	flagImmediate opFlags = 1 << iota
	flagDetached
)

// completionFunc is the bound function registered behind a precondition.
// It receives the precondition's resulting handle (nil on failure) and its
// error (nil on success), and reports whether the downstream op is done:
// if not, the op stays pending and the function is expected to arrange for
// the op's promise to be resolved later (deferred completion).
type completionFunc func(h *Handle, err error) (done bool, result *Handle, resultErr error)

type pendingCompletion struct {
	downstream OpID
	fn         completionFunc
}

// op is the per-operation record. Fields below the dashed
// line are owned by opTable's lock; the promise/future pair is safe for
// concurrent use on its own (see future.go).
type op struct {
	id      OpID
	verb    Verb
	flags   opFlags
	promise Promise[*Handle]
	future  Future[*Handle]

	// --- owned by opTable.mu ---
	completions []pendingCompletion
	resolved    bool
}

func newOp(id OpID, verb Verb, flags opFlags) *op {
	p, f := NewPromise[*Handle]()
	return &op{id: id, verb: verb, flags: flags, promise: p, future: f}
}

// opTable is the concurrent map from id to record. All mutation of a
// record's completion list happens under the table's single lock; critical
// sections never perform I/O.
//
// Resolved records are NOT deleted from the underlying map by drain: a new
// op may be in the middle of chaining against a precondition at the exact
// moment that precondition resolves, and the only safe way to let it read
// the already-resolved outcome without a race is to keep the record
// reachable. opTable.get, used by OpFromID, instead reports resolved
// records as not-found -- an op id fails lookup once it has completed and
// been drained -- while opTable.chain still finds them internally. Compact
// reclaims resolved, childless records for callers who want to bound memory
// on long-running dispatchers (see DESIGN.md).
type opTable struct {
	mu sync.Mutex
	m  map[OpID]*op
}

func newOpTable() *opTable {
	return &opTable{m: make(map[OpID]*op)}
}

func (t *opTable) insert(o *op) {
	t.mu.Lock()
	t.m[o.id] = o
	t.mu.Unlock()
}

// get returns the op for id, but only if it is still unresolved -- this is
// the public-facing view used by OpFromID: an id fails lookup once its op
// has completed and been drained.
func (t *opTable) get(id OpID) (*op, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.m[id]
	if !ok || o.resolved {
		return nil, false
	}
	return o, true
}

// chain implements the middle steps of the precondition-resolution
// algorithm: insertion of the new op already happened via insert(); here
// we attempt to append fn to the precondition's completion list while it is
// still unresolved. If the precondition has already resolved (or was never
// valid), chained=false and the caller falls back to resolving against its
// current outcome directly.
func (t *opTable) chain(precondition OpID, downstream OpID, fn completionFunc) (chained bool) {
	if precondition == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.m[precondition]
	if !ok || o.resolved {
		return false
	}
	o.completions = append(o.completions, pendingCompletion{downstream: downstream, fn: fn})
	return true
}

// outcome returns the already-resolved handle/error for precondition,
// assuming the caller already knows (from a failed chain()) that it is
// resolved. Used by the "not chained" fallback path.
func (t *opTable) outcome(precondition OpID) (*Handle, error, bool) {
	t.mu.Lock()
	o, ok := t.m[precondition]
	t.mu.Unlock()
	if !ok {
		return nil, nil, false
	}
	h, err, done := o.future.Peek()
	return h, err, done
}

// drain implements the first step of the completion-dispatch algorithm:
// mark the op resolved and snapshot its completion list under the lock, so
// the caller can invoke completions without holding it.
func (t *opTable) drain(id OpID) []pendingCompletion {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.m[id]
	if !ok {
		return nil
	}
	o.resolved = true
	list := o.completions
	o.completions = nil
	return list
}

// Compact deletes resolved, childless records from the table, bounding the
// memory a long-running dispatcher retains. It is safe to call at any time;
// it never touches unresolved records.
func (t *opTable) Compact() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, o := range t.m {
		if o.resolved && len(o.completions) == 0 {
			delete(t.m, id)
		}
	}
}
