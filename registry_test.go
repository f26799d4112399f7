package iofio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleRegistry_InsertLookup(t *testing.T) {
	r := newHandleRegistry()
	h := &Handle{path: "/a"}
	r.insert(1, h)

	got, ok := r.lookup(1)
	require.True(t, ok)
	require.Same(t, h, got)
}

func TestHandleRegistry_LookupMiss(t *testing.T) {
	r := newHandleRegistry()
	_, ok := r.lookup(99)
	require.False(t, ok)
}

func TestHandleRegistry_Remove(t *testing.T) {
	r := newHandleRegistry()
	h := &Handle{path: "/a"}
	r.insert(1, h)
	r.remove(h)

	_, ok := r.lookup(1)
	require.False(t, ok)
}

func TestDirCache_LookupAcquiresExtraReference(t *testing.T) {
	c := newDirCache()
	h := &Handle{path: "/dir"}
	h.refs.Store(1)
	c.insert("/dir", h)

	got, ok := c.lookup("/dir")
	require.True(t, ok)
	require.Same(t, h, got)
	require.EqualValues(t, 2, h.refs.Load())
}

func TestDirCache_Evict(t *testing.T) {
	c := newDirCache()
	h := &Handle{path: "/dir"}
	c.insert("/dir", h)
	c.evict("/dir")

	_, ok := c.lookup("/dir")
	require.False(t, ok)
}

func TestDirCache_LookupMiss(t *testing.T) {
	c := newDirCache()
	_, ok := c.lookup("/nope")
	require.False(t, ok)
}
