//go:build !linux && !windows

package iofio

// otherBackend backs platforms without a dedicated backend (e.g. darwin,
// freebsd, plan9, js/wasm): every call fails with ErrUnsupported rather
// than silently doing nothing, so a misconfigured build fails loudly at
// first use instead of pretending to work.
func newBackend() backend { return otherBackend{} }

type otherBackend struct{}

func (otherBackend) pageSize() int { return 4096 }

func (otherBackend) mkdir(path string, flags FileFlags) (nativeHandle, error) {
	return 0, ErrUnsupported
}
func (otherBackend) rmdir(path string) error { return ErrUnsupported }

func (otherBackend) openFile(path string, flags FileFlags) (nativeHandle, error) {
	return 0, ErrUnsupported
}
func (otherBackend) unlink(path string) error { return ErrUnsupported }

func (otherBackend) symlink(target, linkPath string) error { return ErrUnsupported }
func (otherBackend) rmsymlink(path string) error            { return ErrUnsupported }
func (otherBackend) readlink(path string) (string, error)   { return "", ErrUnsupported }

func (otherBackend) closeNative(h nativeHandle) {}
func (otherBackend) sync(h nativeHandle) error  { return ErrUnsupported }

func (otherBackend) mmap(h nativeHandle) ([]byte, bool, error) { return nil, false, nil }
func (otherBackend) munmap(data []byte)                        {}

func (otherBackend) pread(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error) {
	return 0, ErrUnsupported
}
func (otherBackend) pwrite(h nativeHandle, bufs [][]byte, offset int64, direct bool) (int64, error) {
	return 0, ErrUnsupported
}

func (otherBackend) truncate(h nativeHandle, size int64) error { return ErrUnsupported }

func (otherBackend) stat(h nativeHandle, want MetaFlags) (statInfo, error) {
	return statInfo{}, ErrUnsupported
}
func (otherBackend) statPath(path string, want MetaFlags) (statInfo, error) {
	return statInfo{}, ErrUnsupported
}

func (otherBackend) enumerate(h nativeHandle, path string) (nativeDir, error) {
	return nil, ErrUnsupported
}
