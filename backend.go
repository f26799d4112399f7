package iofio

import "time"

// nativeHandle is the platform-specific open-file/open-directory value. On
// POSIX it is an fd; on Windows, a windows.Handle. It is also the key used
// by the handle registry.
type nativeHandle = uintptr

// nativeDir is a platform-specific enumeration cursor bound to an open
// directory handle.
type nativeDir interface {
	// next returns up to n entries, and whether more remain. Passing
	// restart=true rewinds the cursor to the beginning first.
	next(n int, restart bool, glob string) ([]DirEntry, bool, error)
	close()
}

// statInfo is the platform-neutral result of a metadata query, along with
// the mask of which fields the platform actually populated.
type statInfo struct {
	mask  MetaFlags
	dev   uint64
	ino   uint64
	typ   EntryType
	perms uint32
	nlink uint64
	uid   uint32
	gid   uint32
	rdev  uint64
	atim  time.Time
	mtim  time.Time
	ctim  time.Time
	size  int64
	// allocated/blocks/blksize describe the native backing store; gen and
	// birthtim are only available on platforms that track them.
	allocated int64
	blocks    int64
	blksize   int64
	flags     uint32
	gen       uint64
	birthtim  time.Time
}

// backend is the platform-neutral contract the dispatcher's verb adapters
// are written against; backend_unix.go, backend_windows.go and
// backend_other.go each provide one implementation, selected at compile
// time by build tags.
type backend interface {
	pageSize() int

	mkdir(path string, flags FileFlags) (nativeHandle, error)
	rmdir(path string) error

	openFile(path string, flags FileFlags) (nativeHandle, error)
	unlink(path string) error

	symlink(target, linkPath string) error
	rmsymlink(path string) error
	readlink(path string) (string, error)

	closeNative(h nativeHandle)
	sync(h nativeHandle) error

	// mmap attempts a read-only mapping of the file's full extent. Returns
	// ok=false (not an error) when mmap isn't applicable, e.g. zero length.
	mmap(h nativeHandle) (data []byte, ok bool, err error)
	munmap(data []byte)

	// pread/pwrite implement the scatter/gather vectors. direct indicates
	// OSDirect is set, which backend_unix.go uses to validate alignment.
	pread(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error)
	pwrite(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error)

	truncate(h nativeHandle, size int64) error

	stat(h nativeHandle, want MetaFlags) (statInfo, error)
	statPath(path string, want MetaFlags) (statInfo, error)

	enumerate(h nativeHandle, path string) (nativeDir, error)
}

// EntryType classifies a directory entry.
type EntryType int

const (
	EntryUnknown EntryType = iota
	EntryFile
	EntryDirectory
	EntrySymlink
	EntryOther
)
