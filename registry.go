package iofio

import (
	"sync"
	"weak"
)

// handleRegistry is the weak-map from native handle value to live Handle
// object. It never keeps a Handle alive: entries are weak
// pointers, and a lookup that finds a collected entry behaves as a miss.
type handleRegistry struct {
	mu sync.Mutex
	m  map[nativeHandle]weak.Pointer[Handle]
}

func newHandleRegistry() *handleRegistry {
	return &handleRegistry{m: make(map[nativeHandle]weak.Pointer[Handle])}
}

func (r *handleRegistry) insert(native nativeHandle, h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[native] = weak.Make(h)
}

// lookup returns the live Handle for native, if it still exists.
func (r *handleRegistry) lookup(native nativeHandle) (*Handle, bool) {
	r.mu.Lock()
	wp, ok := r.m[native]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	h := wp.Value()
	if h == nil {
		r.mu.Lock()
		delete(r.m, native)
		r.mu.Unlock()
		return nil, false
	}
	return h, true
}

func (r *handleRegistry) remove(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for native, wp := range r.m {
		if v := wp.Value(); v == h || v == nil {
			delete(r.m, native)
		}
	}
}

// dirCache is the weak-map from canonical directory path to a shared
// directory Handle. A hit produces a shared clone (the
// caller acquires its own reference); a miss opens and inserts. Bypassed
// when a caller requests UniqueDirectoryHandle.
type dirCache struct {
	mu sync.Mutex
	m  map[string]weak.Pointer[Handle]
}

func newDirCache() *dirCache {
	return &dirCache{m: make(map[string]weak.Pointer[Handle])}
}

// lookup returns a shared Handle for path with an extra reference already
// acquired on the caller's behalf, or ok=false on a miss or expired entry
// (which is evicted).
func (c *dirCache) lookup(path string) (h *Handle, ok bool) {
	c.mu.Lock()
	wp, present := c.m[path]
	c.mu.Unlock()
	if !present {
		return nil, false
	}
	h = wp.Value()
	if h == nil {
		c.mu.Lock()
		delete(c.m, path)
		c.mu.Unlock()
		return nil, false
	}
	return h.acquire(), true
}

func (c *dirCache) insert(path string, h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[path] = weak.Make(h)
}

func (c *dirCache) evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, path)
}
