package iofio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandle_AcquireRelease_ClosesOnLastRef(t *testing.T) {
	d := newTestDispatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "refcount.txt")

	fileID := d.File(FileRequest{Path: path, Flags: Create | Write})
	h, err := d.futureFor(fileID).Wait()
	require.NoError(t, err)

	h.acquire()
	require.False(t, h.IsTombstone())

	h.release()
	require.False(t, h.IsTombstone(), "handle with an outstanding reference must stay open")

	h.release()
	require.True(t, h.IsTombstone(), "last release must close the native resource")
}

func TestHandle_Release_IsIdempotentOnceTombstoned(t *testing.T) {
	d := newTestDispatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "once.txt")

	fileID := d.File(FileRequest{Path: path, Flags: Create | Write})
	h, err := d.futureFor(fileID).Wait()
	require.NoError(t, err)

	h.release()
	require.True(t, h.IsTombstone())
	require.NotPanics(t, func() { h.release() })
}

func TestHandle_ByteCounters_TrackReadsAndWrites(t *testing.T) {
	d := newTestDispatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "counters.txt")

	fileID := d.File(FileRequest{Path: path, Flags: Create | Read | Write})
	writeID := d.Write(WriteRequest{Precondition: fileID, Buffers: []Buffer{{Data: []byte("abcdef")}}})
	h, err := d.futureFor(writeID).Wait()
	require.NoError(t, err)
	require.EqualValues(t, 6, h.BytesWritten())

	buf := make([]byte, 3)
	readID := d.Read(ReadRequest{Precondition: writeID, Buffers: []Buffer{{Data: buf}}})
	h2, err := d.futureFor(readID).Wait()
	require.NoError(t, err)
	require.EqualValues(t, 3, h2.BytesRead())
}

func TestHandle_Sync_UpdatesBytesAtLastSync(t *testing.T) {
	d := newTestDispatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "synced.txt")

	fileID := d.File(FileRequest{Path: path, Flags: Create | Write})
	writeID := d.Write(WriteRequest{Precondition: fileID, Buffers: []Buffer{{Data: []byte("x")}}})
	syncID := d.Sync(SyncRequest{Precondition: writeID})

	h, err := d.futureFor(syncID).Wait()
	require.NoError(t, err)
	require.Equal(t, h.BytesWritten(), h.BytesWrittenAtLastSync())
}

func TestHandle_Flags_EnforceDependencyWriteOrder_SequentialGetsAlwaysSync(t *testing.T) {
	f := effectiveFlags(EnforceDependencyWriteOrder | WillBeSequentiallyAccessed)
	require.True(t, f.Has(AlwaysSync))
	require.False(t, f.Has(SyncOnClose))
}

func TestHandle_Flags_EnforceDependencyWriteOrder_RandomGetsSyncOnClose(t *testing.T) {
	f := effectiveFlags(EnforceDependencyWriteOrder)
	require.True(t, f.Has(SyncOnClose))
	require.False(t, f.Has(AlwaysSync))
}

func TestApplyForceMasks_OffWinsOverOn(t *testing.T) {
	got := applyForceMasks(0, AlwaysSync, AlwaysSync)
	require.False(t, got.Has(AlwaysSync))
}

func TestApplyForceMasks_OnAppliesWhenNoConflict(t *testing.T) {
	got := applyForceMasks(0, AlwaysSync, 0)
	require.True(t, got.Has(AlwaysSync))
}
