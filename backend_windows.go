//go:build windows

package iofio

import (
	"time"

	"golang.org/x/sys/windows"
)

func newBackend() backend { return windowsBackend{} }

// windowsBackend implements backend on Windows via golang.org/x/sys/windows,
// using positional ReadFile/WriteFile (through an OVERLAPPED's Offset
// fields) in place of POSIX pread/pwrite, since Windows has no vectored
// positional I/O syscall equivalent to preadv/pwritev.
type windowsBackend struct{}

func (windowsBackend) pageSize() int {
	var si windows.SystemInfo
	windows.GetSystemInfo(&si)
	return int(si.PageSize)
}

func (windowsBackend) mkdir(path string, flags FileFlags) (nativeHandle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	if err := windows.CreateDirectory(p, nil); err != nil {
		if err != windows.ERROR_ALREADY_EXISTS || flags.Has(CreateOnlyIfNotExist) {
			return 0, err
		}
	}
	h, err := windows.CreateFile(p,
		windows.GENERIC_READ, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return 0, err
	}
	return nativeHandle(h), nil
}

func (windowsBackend) rmdir(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	return windows.RemoveDirectory(p)
}

func (windowsBackend) openFile(path string, flags FileFlags) (nativeHandle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	var access uint32
	if flags.Has(Read) {
		access |= windows.GENERIC_READ
	}
	if flags.Has(Write) || flags.Has(Append) {
		access |= windows.GENERIC_WRITE
	}
	var mode uint32 = windows.OPEN_EXISTING
	switch {
	case flags.Has(CreateOnlyIfNotExist):
		mode = windows.CREATE_NEW
	case flags.Has(Create) && flags.Has(Truncate):
		mode = windows.CREATE_ALWAYS
	case flags.Has(Create):
		mode = windows.OPEN_ALWAYS
	case flags.Has(Truncate):
		mode = windows.TRUNCATE_EXISTING
	}
	var attrs uint32 = windows.FILE_ATTRIBUTE_NORMAL
	if flags.Has(WillBeSequentiallyAccessed) {
		attrs |= windows.FILE_FLAG_SEQUENTIAL_SCAN
	} else if flags.Has(WillBeRandomlyAccessed) {
		attrs |= windows.FILE_FLAG_RANDOM_ACCESS
	}
	if flags.Has(OSDirect) {
		attrs |= windows.FILE_FLAG_NO_BUFFERING
	}
	h, err := windows.CreateFile(p, access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, mode, attrs, 0)
	if err != nil {
		return 0, err
	}
	return nativeHandle(h), nil
}

func (windowsBackend) unlink(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	return windows.DeleteFile(p)
}

func (windowsBackend) symlink(target, linkPath string) error {
	t, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return err
	}
	l, err := windows.UTF16PtrFromString(linkPath)
	if err != nil {
		return err
	}
	return windows.CreateSymbolicLink(l, t, 0)
}

func (b windowsBackend) rmsymlink(path string) error { return b.unlink(path) }

func (windowsBackend) readlink(path string) (string, error) {
	return "", ErrUnsupported
}

func (windowsBackend) closeNative(h nativeHandle) { _ = windows.CloseHandle(windows.Handle(h)) }

func (windowsBackend) sync(h nativeHandle) error { return windows.FlushFileBuffers(windows.Handle(h)) }

func (windowsBackend) mmap(h nativeHandle) ([]byte, bool, error) { return nil, false, nil }

func (windowsBackend) munmap(data []byte) {}

func (windowsBackend) pread(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error) {
	var total int64
	for _, buf := range bufs {
		if len(buf) == 0 {
			continue
		}
		var n uint32
		ov := windows.Overlapped{Offset: uint32(offset), OffsetHigh: uint32(offset >> 32)}
		if err := windows.ReadFile(windows.Handle(h), buf, &n, &ov); err != nil {
			if err == windows.ERROR_HANDLE_EOF {
				return total, nil
			}
			return total, err
		}
		total += int64(n)
		offset += int64(n)
		if int(n) < len(buf) {
			break
		}
	}
	return total, nil
}

func (windowsBackend) pwrite(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error) {
	var total int64
	for _, buf := range bufs {
		if len(buf) == 0 {
			continue
		}
		var n uint32
		ov := windows.Overlapped{Offset: uint32(offset), OffsetHigh: uint32(offset >> 32)}
		if err := windows.WriteFile(windows.Handle(h), buf, &n, &ov); err != nil {
			return total, err
		}
		total += int64(n)
		offset += int64(n)
	}
	return total, nil
}

func (windowsBackend) truncate(h nativeHandle, size int64) error {
	if err := windows.SetFilePointerEx(windows.Handle(h), size, nil, windows.FILE_BEGIN); err != nil {
		return err
	}
	return windows.SetEndOfFile(windows.Handle(h))
}

func (b windowsBackend) stat(h nativeHandle, want MetaFlags) (statInfo, error) {
	var fi windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(windows.Handle(h), &fi); err != nil {
		return statInfo{}, err
	}
	return statFromWindows(fi, want), nil
}

func (b windowsBackend) statPath(path string, want MetaFlags) (statInfo, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return statInfo{}, err
	}
	h, err := windows.CreateFile(p, windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return statInfo{}, err
	}
	defer windows.CloseHandle(h)
	var fi windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &fi); err != nil {
		return statInfo{}, err
	}
	return statFromWindows(fi, want), nil
}

func statFromWindows(fi windows.ByHandleFileInformation, want MetaFlags) statInfo {
	info := statInfo{mask: want & (MetaType | MetaPerms | MetaNlink | MetaAtim | MetaMtim | MetaCtim | MetaSize)}
	if want.Has(MetaType) {
		if fi.FileAttributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0 {
			info.typ = EntryDirectory
		} else if fi.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 {
			info.typ = EntrySymlink
		} else {
			info.typ = EntryFile
		}
	}
	if want.Has(MetaPerms) {
		if fi.FileAttributes&windows.FILE_ATTRIBUTE_READONLY != 0 {
			info.perms = 0o444
		} else {
			info.perms = 0o666
		}
	}
	if want.Has(MetaNlink) {
		info.nlink = uint64(fi.NumberOfLinks)
	}
	if want.Has(MetaAtim) {
		info.atim = time.Unix(0, fi.LastAccessTime.Nanoseconds())
	}
	if want.Has(MetaMtim) {
		info.mtim = time.Unix(0, fi.LastWriteTime.Nanoseconds())
	}
	if want.Has(MetaCtim) {
		info.ctim = time.Unix(0, fi.CreationTime.Nanoseconds())
	}
	if want.Has(MetaSize) {
		info.size = int64(fi.FileSizeHigh)<<32 | int64(fi.FileSizeLow)
	}
	return info
}

type windowsDir struct {
	handle  windows.Handle
	path    string
	pattern string
	started bool
}

func (windowsBackend) enumerate(h nativeHandle, path string) (nativeDir, error) {
	return &windowsDir{path: path}, nil
}

func (d *windowsDir) close() {
	if d.handle != 0 && d.handle != windows.InvalidHandle {
		windows.FindClose(d.handle)
	}
}

func (d *windowsDir) next(n int, restart bool, glob string) ([]DirEntry, bool, error) {
	if restart && d.started {
		d.close()
		d.handle = 0
		d.started = false
	}

	var out []DirEntry
	var data windows.Win32finddata

	if !d.started {
		pattern := d.path + `\*`
		p, err := windows.UTF16PtrFromString(pattern)
		if err != nil {
			return nil, false, err
		}
		h, err := windows.FindFirstFile(p, &data)
		if err != nil {
			return nil, false, err
		}
		d.handle = h
		d.started = true
		if name := windows.UTF16ToString(data.FileName[:]); name != "." && name != ".." {
			if ok, _ := matchGlob(glob, name); glob == "" || ok {
				out = append(out, DirEntry{Name: name})
			}
		}
	}

	for len(out) < n {
		err := windows.FindNextFile(d.handle, &data)
		if err != nil {
			if err == windows.ERROR_NO_MORE_FILES {
				return out, false, nil
			}
			return out, false, err
		}
		name := windows.UTF16ToString(data.FileName[:])
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
	return out, true, nil
}
