package iofio

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opsfleet/iofio/internal/logging"
	"github.com/opsfleet/iofio/metrics"
	"github.com/opsfleet/iofio/threadsource"
)

// config holds Dispatcher configuration assembled by Option, a
// functional-options-over-a-struct shape.
type config struct {
	threads  threadsource.Source
	workers  int
	forceOn  FileFlags
	forceOff FileFlags
	logger   *slog.Logger
	metrics  metrics.Provider
}

func defaultConfig() config {
	return config{
		workers: threadsource.DefaultWorkers,
		logger:  logging.Discard(),
		metrics: metrics.NewNoopProvider(),
	}
}

// Option configures a Dispatcher. An option given an invalid value (a
// non-positive worker count, or a nil thread source, logger or provider)
// panics at New time.
type Option func(*config)

// WithWorkerCount sets the size of the dispatcher's default Fixed thread
// source. Ignored if WithThreadSource is also given.
func WithWorkerCount(n int) Option {
	return func(c *config) {
		if n <= 0 {
			panic("iofio: WithWorkerCount requires n > 0")
		}
		c.workers = n
	}
}

// WithThreadSource supplies a caller-owned thread source (e.g.
// threadsource.NewTaskEngine). The dispatcher never closes a thread source
// it did not create itself.
func WithThreadSource(s threadsource.Source) Option {
	return func(c *config) {
		if s == nil {
			panic("iofio: WithThreadSource requires a non-nil Source")
		}
		c.threads = s
	}
}

// WithForceFlags sets masks applied to every FileFlags an open request
// carries: on is OR'd in first, then off is AND-NOT'd, so off wins a direct
// conflict.
func WithForceFlags(on, off FileFlags) Option {
	return func(c *config) { c.forceOn, c.forceOff = on, off }
}

// WithLogger sets the diagnostic logger; the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l == nil {
			panic("iofio: WithLogger requires a non-nil logger")
		}
		c.logger = l
	}
}

// WithMetrics sets the metrics provider; the default is a no-op.
func WithMetrics(p metrics.Provider) Option {
	return func(c *config) {
		if p == nil {
			panic("iofio: WithMetrics requires a non-nil Provider")
		}
		c.metrics = p
	}
}

// Dispatcher is the operation-graph scheduler. It owns the op
// table, handle registry and directory-handle cache, and dispatches verb
// adapters against a backend either inline on the resolving goroutine
// (immediate completion) or via its thread source (deferred completion).
type Dispatcher struct {
	backend  backend
	threads  threadsource.Source
	ownsPool bool

	table    *opTable
	registry *handleRegistry
	dirs     *dirCache

	forceOn  FileFlags
	forceOff FileFlags

	logger  *slog.Logger
	metrics metrics.Provider

	opsSubmitted metrics.Counter
	opsCompleted metrics.Counter
	opsFailed    metrics.Counter
	opsInFlight  metrics.UpDownCounter

	nextID atomic.Uint64
	closed atomic.Bool
	once   sync.Once
}

// New constructs a Dispatcher backed by the host's native backend.
func New(opts ...Option) *Dispatcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("iofio: nil Option")
		}
		opt(&cfg)
	}

	d := &Dispatcher{
		backend:  newBackend(),
		table:    newOpTable(),
		registry: newHandleRegistry(),
		dirs:     newDirCache(),
		forceOn:  cfg.forceOn,
		forceOff: cfg.forceOff,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}

	if cfg.threads != nil {
		d.threads = cfg.threads
		d.ownsPool = false
	} else {
		d.threads = threadsource.NewFixed(cfg.workers)
		d.ownsPool = true
	}

	d.opsSubmitted = d.metrics.Counter("iofio.ops.submitted")
	d.opsCompleted = d.metrics.Counter("iofio.ops.completed")
	d.opsFailed = d.metrics.Counter("iofio.ops.failed")
	d.opsInFlight = d.metrics.UpDownCounter("iofio.ops.in_flight")

	d.logger.Info("dispatcher started", "workers", d.threads.WorkerCount())
	return d
}

// Shutdown stops accepting the dispatcher's own thread source from taking
// new work and joins it, if the dispatcher created it itself (a caller-
// supplied thread source via WithThreadSource is left running). Safe to
// call more than once.
func (d *Dispatcher) Shutdown() error {
	d.once.Do(func() {
		d.closed.Store(true)
		d.logger.Info("dispatcher shutting down", "owns_pool", d.ownsPool)
		if d.ownsPool {
			d.threads.Close()
		}
	})
	return nil
}

// OpFromID looks up an extant (not yet completed-and-drained) op by id.
func (d *Dispatcher) OpFromID(id OpID) (OpID, Verb, bool) {
	o, ok := d.table.get(id)
	if !ok {
		return 0, "", false
	}
	return o.id, o.verb, true
}

// Completion registers fn to run when precondition resolves, producing a
// new op whose own future is fn's outcome. fn always runs on the thread
// source, even when precondition has already resolved.
func (d *Dispatcher) Completion(precondition OpID, fn func(h *Handle, err error) (*Handle, error)) OpID {
	return d.submit(precondition, VerbCompletion, 0, func(h *Handle, err error) (bool, *Handle, error) {
		res, resErr := fn(h, err)
		return true, res, resErr
	})
}

// Call is Completion's convenience form: submit fn with no precondition and
// get back its Future directly instead of an OpID. Unlike
// submit, this keeps o in hand so the Future is always the one actually
// resolved, even though flagImmediate means it may already be done (and
// drained out of the table) by the time this function returns.
func (d *Dispatcher) Call(fn func() (*Handle, error)) Future[*Handle] {
	id := OpID(d.nextID.Add(1))
	o := newOp(id, VerbCall, flagImmediate)
	d.table.insert(o)
	d.opsSubmitted.Add(1)
	d.opsInFlight.Add(1)

	d.runCompletion(o, func(*Handle, error) (bool, *Handle, error) {
		h, err := fn()
		return true, h, err
	}, nil, nil)

	return o.future
}

// Adopt wraps an externally produced Future as an op in the table, so it
// can be named as a precondition like any other.
func (d *Dispatcher) Adopt(f Future[*Handle]) OpID {
	id := OpID(d.nextID.Add(1))
	o := newOp(id, VerbAdopt, flagImmediate)
	d.table.insert(o)
	d.opsSubmitted.Add(1)
	d.opsInFlight.Add(1)
	f.Notify(func(h *Handle, err error) {
		d.resolveOp(o, h, err)
	})
	return id
}

// submit implements the precondition-resolution algorithm:
// insert the new op, try to chain behind precondition, and if that fails
// (no precondition, or precondition already resolved) run fn against the
// precondition's current outcome right away.
func (d *Dispatcher) submit(precondition OpID, verb Verb, extra opFlags, fn completionFunc) OpID {
	id := OpID(d.nextID.Add(1))
	flags := extra
	o := newOp(id, verb, flags)
	d.table.insert(o)
	d.opsSubmitted.Add(1)
	d.opsInFlight.Add(1)

	if d.table.chain(precondition, id, fn) {
		return id
	}

	var h *Handle
	var err error
	if precondition != 0 {
		h, err, _ = d.table.outcome(precondition)
	}
	d.runCompletion(o, fn, h, err)
	return id
}

// runCompletion invokes fn either inline (flagImmediate) or via the thread
// source, then feeds its outcome back into the op's own resolution.
func (d *Dispatcher) runCompletion(o *op, fn completionFunc, h *Handle, err error) {
	run := func() {
		done, result, resultErr := fn(h, err)
		if !done {
			// fn is responsible for resolving o.promise itself later
			// (deferred completion); nothing more to do here.
			return
		}
		d.resolveOp(o, result, resultErr)
	}

	if o.flags&flagImmediate != 0 {
		run()
		return
	}
	resCh := d.threads.Submit(func() (any, error) {
		run()
		return nil, nil
	})
	go func() { <-resCh }()
}

// resolveOp sets o's own future/promise, tags a failure with o's identity
// for downstream propagation, drains its completion list, and schedules
// each downstream completion.
func (d *Dispatcher) resolveOp(o *op, h *Handle, err error) {
	if err != nil {
		err = taggedWithOp(err, o.id, o.verb)
		d.opsFailed.Add(1)
		d.logger.Debug("op failed", "id", o.id, "verb", o.verb, "err", err)
	}
	if !o.promise.SetResult(h, err) {
		// lost an early-completion race (e.g. Adopt's wrapped future was
		// also resolved by someone else); nothing further to do.
		if h != nil {
			h.release()
		}
		return
	}
	d.opsCompleted.Add(1)
	d.opsInFlight.Add(-1)

	for _, pc := range d.table.drain(o.id) {
		down, ok := d.table.get(pc.downstream)
		if !ok {
			continue
		}
		d.runCompletion(down, pc.fn, h, err)
	}
}

// --- per-verb request methods ---

func (d *Dispatcher) effective(flags FileFlags) FileFlags {
	return effectiveFlags(applyForceMasks(flags, d.forceOn, d.forceOff))
}

// Dir creates and/or opens a directory, consulting and populating the
// directory-handle cache unless UniqueDirectoryHandle is set.
func (d *Dispatcher) Dir(req DirRequest) OpID {
	return d.submit(req.Precondition, VerbDir, 0, func(*Handle, error) (bool, *Handle, error) {
		return true, d.doDir(req)
	})
}

func (d *Dispatcher) doDir(req DirRequest) (*Handle, error) {
	if req.Path == "" {
		return nil, invalidArgument("dir", req.Path, fmt.Errorf("empty path"))
	}
	path := filepath.Clean(req.Path)
	flags := d.effective(req.Flags)

	if !flags.Has(UniqueDirectoryHandle) {
		if h, ok := d.dirs.lookup(path); ok {
			return h, nil
		}
	}

	native, err := d.backend.mkdir(path, flags)
	if err != nil {
		return nil, osError("dir", path, err)
	}
	h := d.newHandle(native, path, flags, nil)
	d.registry.insert(native, h)
	if !flags.Has(UniqueDirectoryHandle) {
		d.dirs.insert(path, h)
	}
	return h, nil
}

// RmDir removes an empty directory, producing a tombstone Handle.
func (d *Dispatcher) RmDir(req RmDirRequest) OpID {
	return d.submit(req.Precondition, VerbRmDir, 0, func(*Handle, error) (bool, *Handle, error) {
		path := filepath.Clean(req.Path)
		if err := d.backend.rmdir(path); err != nil {
			return true, nil, osError("rmdir", path, err)
		}
		d.dirs.evict(path)
		h := d.newTombstone(path)
		return true, h, nil
	})
}

// File creates/opens a file.
func (d *Dispatcher) File(req FileRequest) OpID {
	return d.submit(req.Precondition, VerbFile, 0, func(*Handle, error) (bool, *Handle, error) {
		return true, d.doFile(req)
	})
}

func (d *Dispatcher) doFile(req FileRequest) (*Handle, error) {
	if req.Path == "" {
		return nil, invalidArgument("file", req.Path, fmt.Errorf("empty path"))
	}
	path := filepath.Clean(req.Path)
	flags := d.effective(req.Flags)
	native, err := d.backend.openFile(path, flags)
	if err != nil {
		return nil, osError("file", path, err)
	}
	h := d.newHandle(native, path, flags, nil)
	d.registry.insert(native, h)
	return h, nil
}

// RmFile unlinks a file, producing a tombstone Handle.
func (d *Dispatcher) RmFile(req RmFileRequest) OpID {
	return d.submit(req.Precondition, VerbRmFile, 0, func(*Handle, error) (bool, *Handle, error) {
		path := filepath.Clean(req.Path)
		if err := d.backend.unlink(path); err != nil {
			return true, nil, osError("rmfile", path, err)
		}
		return true, d.newTombstone(path), nil
	})
}

// Symlink creates a symbolic link pointing at the precondition op's path.
func (d *Dispatcher) Symlink(req SymlinkRequest) OpID {
	return d.submit(req.Precondition, VerbSymlink, 0, func(targetHandle *Handle, err error) (bool, *Handle, error) {
		if err != nil {
			return true, nil, preconditionFailed("symlink", err)
		}
		if targetHandle == nil {
			return true, nil, invalidArgument("symlink", req.LinkPath, fmt.Errorf("precondition produced no handle"))
		}
		linkPath := filepath.Clean(req.LinkPath)
		if err := d.backend.symlink(targetHandle.Path(), linkPath); err != nil {
			return true, nil, osError("symlink", linkPath, err)
		}
		return true, d.newTombstone(linkPath), nil
	})
}

// RmSymlink unlinks a symbolic link.
func (d *Dispatcher) RmSymlink(req RmSymlinkRequest) OpID {
	return d.submit(req.Precondition, VerbRmSymlink, 0, func(*Handle, error) (bool, *Handle, error) {
		path := filepath.Clean(req.Path)
		if err := d.backend.rmsymlink(path); err != nil {
			return true, nil, osError("rmsymlink", path, err)
		}
		return true, d.newTombstone(path), nil
	})
}

// Sync forces durability of all writes made through the precondition's
// handle.
func (d *Dispatcher) Sync(req SyncRequest) OpID {
	return d.submit(req.Precondition, VerbSync, 0, func(h *Handle, err error) (bool, *Handle, error) {
		if err != nil {
			return true, nil, preconditionFailed("sync", err)
		}
		if h == nil || h.IsTombstone() {
			return true, nil, invalidArgument("sync", "", fmt.Errorf("precondition handle is not open"))
		}
		if err := d.backend.sync(h.native); err != nil {
			return true, nil, osError("sync", h.Path(), err)
		}
		h.bytesAtLastFsync.Store(h.bytesWritten.Load())
		return true, h, nil
	})
}

// Close releases the precondition's handle (one reference). The resulting
// Handle is a tombstone naming the same path.
func (d *Dispatcher) Close(req CloseRequest) OpID {
	return d.submit(req.Precondition, VerbClose, 0, func(h *Handle, err error) (bool, *Handle, error) {
		if err != nil {
			return true, nil, preconditionFailed("close", err)
		}
		if h == nil {
			return true, nil, invalidArgument("close", "", fmt.Errorf("precondition produced no handle"))
		}
		path := h.Path()
		h.release()
		return true, d.newTombstone(path), nil
	})
}

// Read scatter-reads into req.Buffers from the precondition's handle,
// starting at req.Offset.
func (d *Dispatcher) Read(req ReadRequest) OpID {
	return d.submit(req.Precondition, VerbRead, 0, func(h *Handle, err error) (bool, *Handle, error) {
		if err != nil {
			return true, nil, preconditionFailed("read", err)
		}
		if h == nil || h.IsTombstone() {
			return true, nil, invalidArgument("read", "", fmt.Errorf("precondition handle is not open"))
		}
		bufs, verr := vectors(req.Buffers)
		if verr != nil {
			return true, nil, invalidArgument("read", h.Path(), verr)
		}
		n, rerr := d.backend.pread(h.native, bufs, req.Offset, h.flags.Has(OSDirect))
		h.bytesRead.Add(uint64(n))
		if rerr != nil && rerr != io.EOF {
			return true, nil, osError("read", h.Path(), rerr)
		}
		if rerr == io.EOF {
			return true, h, &Error{Kind: KindOS, Op: "read", Path: h.Path(), Err: ErrEndOfFile}
		}
		return true, h, nil
	})
}

// Write gather-writes req.Buffers to the precondition's handle, starting at
// req.Offset. Writing past the handle's current length is rejected unless
// the handle was opened with Append or the offset equals the current length.
func (d *Dispatcher) Write(req WriteRequest) OpID {
	return d.submit(req.Precondition, VerbWrite, 0, func(h *Handle, err error) (bool, *Handle, error) {
		if err != nil {
			return true, nil, preconditionFailed("write", err)
		}
		if h == nil || h.IsTombstone() {
			return true, nil, invalidArgument("write", "", fmt.Errorf("precondition handle is not open"))
		}
		bufs, verr := vectors(req.Buffers)
		if verr != nil {
			return true, nil, invalidArgument("write", h.Path(), verr)
		}
		if !h.flags.Has(Append) {
			info, statErr := d.backend.stat(h.native, MetaSize)
			if statErr == nil && req.Offset != info.size {
				var total int64
				for _, b := range bufs {
					total += int64(len(b))
				}
				if req.Offset+total > info.size {
					return true, nil, &Error{Kind: KindInvalidArgument, Op: "write", Path: h.Path(), Err: ErrWouldExtend}
				}
			}
		}
		n, err := d.backend.pwrite(h.native, bufs, req.Offset, h.flags.Has(OSDirect))
		if err != nil {
			return true, nil, osError("write", h.Path(), err)
		}
		h.bytesWritten.Add(uint64(n))
		if h.flags.Has(AlwaysSync) {
			if err := d.backend.sync(h.native); err != nil {
				return true, nil, osError("write", h.Path(), err)
			}
			h.bytesAtLastFsync.Store(h.bytesWritten.Load())
		}
		return true, h, nil
	})
}

// Truncate sets the precondition's handle's length to exactly req.Size.
func (d *Dispatcher) Truncate(req TruncateRequest) OpID {
	return d.submit(req.Precondition, VerbTruncate, 0, func(h *Handle, err error) (bool, *Handle, error) {
		if err != nil {
			return true, nil, preconditionFailed("truncate", err)
		}
		if h == nil || h.IsTombstone() {
			return true, nil, invalidArgument("truncate", "", fmt.Errorf("precondition handle is not open"))
		}
		if err := d.backend.truncate(h.native, req.Size); err != nil {
			return true, nil, osError("truncate", h.Path(), err)
		}
		return true, h, nil
	})
}

// Enumerate produces up to req.MaxItems directory entries from the
// precondition's (directory) handle and returns its Future directly, since
// its real result shape (entries + more) doesn't fit the homogeneous
// Future[*Handle] op table.
func (d *Dispatcher) Enumerate(req EnumerateRequest) (Future[EnumerateResult], OpID) {
	p, f := NewPromise[EnumerateResult]()
	id := d.submit(req.Precondition, VerbEnumerate, 0, func(h *Handle, err error) (bool, *Handle, error) {
		res, rerr := d.doEnumerate(h, err, req)
		p.SetResult(res, rerr)
		return true, h, nil
	})
	return f, id
}

func (d *Dispatcher) doEnumerate(h *Handle, err error, req EnumerateRequest) (EnumerateResult, error) {
	if err != nil {
		return EnumerateResult{}, preconditionFailed("enumerate", err)
	}
	if h == nil || h.IsTombstone() {
		return EnumerateResult{}, invalidArgument("enumerate", "", fmt.Errorf("precondition handle is not open"))
	}
	if req.MaxItems <= 0 {
		return EnumerateResult{}, &Error{Kind: KindInvalidArgument, Op: "enumerate", Path: h.Path(), Err: ErrInvalidMaxItems}
	}

	h.dirMu.Lock()
	defer h.dirMu.Unlock()

	if h.dirCursor == nil || req.Restart {
		cur, err := d.backend.enumerate(h.native, h.Path())
		if err != nil {
			return EnumerateResult{}, osError("enumerate", h.Path(), err)
		}
		h.dirCursor = cur
	}
	entries, more, err := h.dirCursor.next(req.MaxItems, false, req.Glob)
	if err != nil {
		return EnumerateResult{}, osError("enumerate", h.Path(), err)
	}
	if req.Want != 0 {
		for i := range entries {
			_ = entries[i].Fill(h, req.Want)
		}
	}
	return EnumerateResult{Entries: entries, More: more}, nil
}

func vectors(bufs []Buffer) ([][]byte, error) {
	if len(bufs) == 0 {
		return nil, fmt.Errorf("empty gather/scatter vector")
	}
	out := make([][]byte, len(bufs))
	for i, b := range bufs {
		if len(b.Data) == 0 {
			return nil, ErrEmptyBuffer
		}
		out[i] = b.Data
	}
	return out, nil
}

func (d *Dispatcher) newHandle(native nativeHandle, path string, flags FileFlags, parent *Handle) *Handle {
	h := &Handle{
		dispatcher: d,
		parent:     parent,
		path:       path,
		flags:      flags,
		native:     native,
		openedAt:   time.Now(),
	}
	h.refs.Store(1)
	return h
}

func (d *Dispatcher) newTombstone(path string) *Handle {
	h := &Handle{dispatcher: d, path: path}
	h.refs.Store(1)
	h.makeTombstone()
	return h
}
