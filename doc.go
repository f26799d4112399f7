// Package iofio provides an asynchronous, dependency-chained dispatcher for
// batch filesystem operations.
//
// Operations
// Every call (Dir, File, Read, Write, Truncate, Sync, Enumerate, Symlink,
// Close, and their removal counterparts) is submitted against a Dispatcher
// and returns an OpID immediately. The operation itself runs once its
// Precondition OpID has resolved, either inline on the resolving goroutine
// or on the worker pool, depending on the verb.
//
// Results
//   - OpFromID reports the id and verb of an op that has not yet resolved; a resolved op is not found.
//   - Completion attaches a callback to an OpID without blocking the caller.
//   - WhenAll, WhenAny, and WhenAllSettled fan a slice of OpIDs into a single Future.
//
// Handles
// A Handle wraps a native file or directory descriptor plus byte counters
// and a reference count. Directory handles are cached by path so that
// concurrent operations under the same directory share one native
// descriptor; the handle closes only once its last reference is released.
//
// Backends
// Filesystem access goes through a small backend interface with a
// platform-specific implementation selected at build time (unix, windows,
// or an unsupported fallback that fails loudly rather than silently).
package iofio
