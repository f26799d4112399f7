//go:build linux

package iofio

import (
	"os"
	"runtime"
	"time"
	"unsafe"

	fallocate "github.com/detailyang/go-fallocate"
	"golang.org/x/sys/unix"
)

func newBackend() backend { return unixBackend{} }

// unixBackend implements backend on POSIX systems via golang.org/x/sys/unix,
// with github.com/detailyang/go-fallocate used to eagerly allocate disk
// blocks when a truncate grows a file, rather than leaving a sparse hole.
type unixBackend struct{}

func (unixBackend) pageSize() int { return unix.Getpagesize() }

func openFlags(flags FileFlags) int {
	var o int
	switch {
	case flags.Has(Read) && flags.Has(Write):
		o = unix.O_RDWR
	case flags.Has(Write):
		o = unix.O_WRONLY
	default:
		o = unix.O_RDONLY
	}
	if flags.Has(Append) {
		o |= unix.O_APPEND
	}
	if flags.Has(Truncate) {
		o |= unix.O_TRUNC
	}
	if flags.Has(Create) {
		o |= unix.O_CREAT
	}
	if flags.Has(CreateOnlyIfNotExist) {
		o |= unix.O_CREAT | unix.O_EXCL
	}
	if flags.Has(OSDirect) {
		o |= odirectFlag
	}
	return o
}

func (b unixBackend) mkdir(path string, flags FileFlags) (nativeHandle, error) {
	if err := unix.Mkdir(path, 0o755); err != nil && err != unix.EEXIST {
		return 0, err
	} else if err == unix.EEXIST && flags.Has(CreateOnlyIfNotExist) {
		return 0, err
	}
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return 0, err
	}
	return nativeHandle(fd), nil
}

func (unixBackend) rmdir(path string) error { return unix.Rmdir(path) }

func (b unixBackend) openFile(path string, flags FileFlags) (nativeHandle, error) {
	fd, err := unix.Open(path, openFlags(flags), 0o644)
	if err != nil {
		return 0, err
	}
	if flags.Has(WillBeSequentiallyAccessed) {
		_ = unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL)
	} else if flags.Has(WillBeRandomlyAccessed) {
		_ = unix.Fadvise(fd, 0, 0, unix.FADV_RANDOM)
	}
	return nativeHandle(fd), nil
}

func (unixBackend) unlink(path string) error { return unix.Unlink(path) }

func (unixBackend) symlink(target, linkPath string) error { return unix.Symlink(target, linkPath) }

func (unixBackend) rmsymlink(path string) error { return unix.Unlink(path) }

func (unixBackend) readlink(path string) (string, error) {
	buf := make([]byte, 256)
	for {
		n, err := unix.Readlink(path, buf)
		if err != nil {
			return "", err
		}
		if n < len(buf) {
			return string(buf[:n]), nil
		}
		buf = make([]byte, len(buf)*2)
	}
}

func (unixBackend) closeNative(h nativeHandle) { _ = unix.Close(int(h)) }

func (unixBackend) sync(h nativeHandle) error { return unix.Fsync(int(h)) }

func (b unixBackend) mmap(h nativeHandle) ([]byte, bool, error) {
	st, err := b.stat(h, MetaSize)
	if err != nil {
		return nil, false, err
	}
	if st.size == 0 {
		return nil, false, nil
	}
	data, err := unix.Mmap(int(h), 0, int(st.size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (unixBackend) munmap(data []byte) { _ = unix.Munmap(data) }

func (unixBackend) pread(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error) {
	if direct {
		for _, b := range bufs {
			if uintptr(unsafe.Pointer(&b[0]))%alignment != 0 || len(b)%alignment != 0 {
				return 0, ErrMisaligned
			}
		}
	}
	n, err := unix.Preadv(int(h), bufs, offset)
	return int64(n), err
}

func (unixBackend) pwrite(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error) {
	if direct {
		for _, b := range bufs {
			if uintptr(unsafe.Pointer(&b[0]))%alignment != 0 || len(b)%alignment != 0 {
				return 0, ErrMisaligned
			}
		}
	}
	n, err := unix.Pwritev(int(h), bufs, offset)
	return int64(n), err
}

func (b unixBackend) truncate(h nativeHandle, size int64) error {
	st, err := b.stat(h, MetaSize)
	if err != nil {
		return err
	}
	if err := unix.Ftruncate(int(h), size); err != nil {
		return err
	}
	if size <= st.size {
		return nil
	}
	// os.NewFile wraps the fd we already own without duplicating it, so the
	// wrapper must never be Closed: that would close the real fd out from
	// under the Handle. Clear its finalizer instead of calling Close.
	f := os.NewFile(uintptr(h), "")
	err = fallocate.Fallocate(f, st.size, size-st.size)
	runtime.SetFinalizer(f, nil)

	return ignoreUnsupported(err)
}

// ignoreUnsupported treats fallocate's ENOTSUP/EOPNOTSUPP (e.g. tmpfs, some
// network filesystems) as success: Ftruncate already grew the file, eager
// allocation is strictly an optimization.
func ignoreUnsupported(err error) error {
	if err == unix.ENOTSUP || err == unix.EOPNOTSUPP {
		return nil
	}
	return err
}

func (unixBackend) stat(h nativeHandle, want MetaFlags) (statInfo, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(h), &st); err != nil {
		return statInfo{}, err
	}
	return statFromUnix(st, want), nil
}

func (unixBackend) statPath(path string, want MetaFlags) (statInfo, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return statInfo{}, err
	}
	return statFromUnix(st, want), nil
}

func entryTypeFromMode(mode uint32) EntryType {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return EntryFile
	case unix.S_IFDIR:
		return EntryDirectory
	case unix.S_IFLNK:
		return EntrySymlink
	default:
		return EntryOther
	}
}

type unixDir struct {
	fd      int
	path    string
	buf     []byte
	off     int
	end     int
	restart bool
}

func (b unixBackend) enumerate(h nativeHandle, path string) (nativeDir, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, err
	}
	return &unixDir{fd: fd, path: path, buf: make([]byte, 64*1024)}, nil
}

func (d *unixDir) close() { _ = unix.Close(d.fd) }

func (d *unixDir) next(n int, restart bool, glob string) ([]DirEntry, bool, error) {
	if restart {
		if _, err := unix.Seek(d.fd, 0, 0); err != nil {
			return nil, false, err
		}
		d.off, d.end = 0, 0
	}

	var out []DirEntry
	for len(out) < n {
		if d.off >= d.end {
			nread, err := unix.ReadDirent(d.fd, d.buf)
			if err != nil {
				return out, false, err
			}
			if nread == 0 {
				return out, false, nil
			}
			d.off, d.end = 0, nread
		}
		var names []string
		var consumed int
		consumed, _, names = unix.ParseDirent(d.buf[d.off:d.end], n-len(out), nil)
		if consumed == 0 {
			d.off = d.end
			continue
		}
		d.off += consumed
		for _, name := range names {
			if name == "." || name == ".." {
				continue
			}
			if glob != "" {
				if ok, _ := matchGlob(glob, name); !ok {
					continue
				}
			}
			out = append(out, DirEntry{Name: name})
		}
	}
	return out, true, nil
}

func statFromUnix(st unix.Stat_t, want MetaFlags) statInfo {
	info := statInfo{mask: want & (MetaAll &^ (MetaFlagsBit | MetaGen | MetaBirthtim))}
	if want.Has(MetaDev) {
		info.dev = uint64(st.Dev)
	}
	if want.Has(MetaIno) {
		info.ino = uint64(st.Ino)
	}
	if want.Has(MetaType) {
		info.typ = entryTypeFromMode(uint32(st.Mode))
	}
	if want.Has(MetaPerms) {
		info.perms = uint32(st.Mode) & 0o7777
	}
	if want.Has(MetaNlink) {
		info.nlink = uint64(st.Nlink)
	}
	if want.Has(MetaUID) {
		info.uid = st.Uid
	}
	if want.Has(MetaGID) {
		info.gid = st.Gid
	}
	if want.Has(MetaRdev) {
		info.rdev = uint64(st.Rdev)
	}
	if want.Has(MetaAtim) {
		info.atim = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	if want.Has(MetaMtim) {
		info.mtim = time.Unix(st.Mtim.Sec, st.Mtim.Nsec)
	}
	if want.Has(MetaCtim) {
		info.ctim = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	if want.Has(MetaSize) {
		info.size = st.Size
	}
	if want.Has(MetaBlocks) {
		info.blocks = st.Blocks
	}
	if want.Has(MetaBlksize) {
		info.blksize = int64(st.Blksize)
	}
	if want.Has(MetaAllocated) {
		info.allocated = st.Blocks * 512
	}
	return info
}
