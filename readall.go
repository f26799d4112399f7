package iofio

import "io"

// ReadAll opens path for reading, reads its entire contents in one shot
// once its size is known, and closes it -- a File(read) -> read -> Close
// chain in the op graph. The middle step is an internal VerbRead op that
// stats the file and reads it through the backend directly, not the public
// Read verb.
func (d *Dispatcher) ReadAll(path string) Future[[]byte] {
	p, f := NewPromise[[]byte]()

	fileID := d.File(FileRequest{Path: path, Flags: Read})
	readID := d.submit(fileID, VerbRead, 0, func(h *Handle, err error) (bool, *Handle, error) {
		if err != nil {
			werr := preconditionFailed("readall", err)
			p.SetError(werr)
			return true, nil, werr
		}
		if h == nil || h.IsTombstone() {
			werr := invalidArgument("readall", path, io.ErrClosedPipe)
			p.SetError(werr)
			return true, nil, werr
		}

		info, statErr := d.backend.stat(h.native, MetaSize)
		if statErr != nil {
			werr := osError("stat", h.Path(), statErr)
			p.SetError(werr)
			return true, nil, werr
		}

		buf := make([]byte, info.size)
		if info.size > 0 {
			n, rerr := d.backend.pread(h.native, [][]byte{buf}, 0, false)
			if rerr != nil && rerr != io.EOF {
				werr := osError("read", h.Path(), rerr)
				p.SetError(werr)
				return true, nil, werr
			}
			buf = buf[:n]
			h.bytesRead.Add(uint64(n))
		}
		p.SetValue(buf)
		return true, h, nil
	})

	d.Close(CloseRequest{Precondition: readID})
	return f
}
