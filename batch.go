package iofio

// batch submits one op per request via submit and returns their ids in the
// same order, letting a caller fire a set of independent or
// precondition-chained requests without a manual loop.
func batch[Req any](submit func(Req) OpID, reqs []Req) []OpID {
	ids := make([]OpID, len(reqs))
	for i, r := range reqs {
		ids[i] = submit(r)
	}
	return ids
}

// DirBatch submits one Dir op per request.
func (d *Dispatcher) DirBatch(reqs []DirRequest) []OpID { return batch(d.Dir, reqs) }

// RmDirBatch submits one RmDir op per request.
func (d *Dispatcher) RmDirBatch(reqs []RmDirRequest) []OpID { return batch(d.RmDir, reqs) }

// FileBatch submits one File op per request.
func (d *Dispatcher) FileBatch(reqs []FileRequest) []OpID { return batch(d.File, reqs) }

// RmFileBatch submits one RmFile op per request.
func (d *Dispatcher) RmFileBatch(reqs []RmFileRequest) []OpID { return batch(d.RmFile, reqs) }

// SymlinkBatch submits one Symlink op per request.
func (d *Dispatcher) SymlinkBatch(reqs []SymlinkRequest) []OpID { return batch(d.Symlink, reqs) }

// RmSymlinkBatch submits one RmSymlink op per request.
func (d *Dispatcher) RmSymlinkBatch(reqs []RmSymlinkRequest) []OpID {
	return batch(d.RmSymlink, reqs)
}

// SyncBatch submits one Sync op per request.
func (d *Dispatcher) SyncBatch(reqs []SyncRequest) []OpID { return batch(d.Sync, reqs) }

// CloseBatch submits one Close op per request.
func (d *Dispatcher) CloseBatch(reqs []CloseRequest) []OpID { return batch(d.Close, reqs) }

// ReadBatch submits one Read op per request.
func (d *Dispatcher) ReadBatch(reqs []ReadRequest) []OpID { return batch(d.Read, reqs) }

// WriteBatch submits one Write op per request.
func (d *Dispatcher) WriteBatch(reqs []WriteRequest) []OpID { return batch(d.Write, reqs) }

// TruncateBatch submits one Truncate op per request.
func (d *Dispatcher) TruncateBatch(reqs []TruncateRequest) []OpID { return batch(d.Truncate, reqs) }

// EnumerateBatch submits one Enumerate op per request and returns their
// futures and ids in the same order (Enumerate's result shape doesn't fit
// the homogeneous OpID-returning batch helper above).
func (d *Dispatcher) EnumerateBatch(reqs []EnumerateRequest) ([]Future[EnumerateResult], []OpID) {
	futs := make([]Future[EnumerateResult], len(reqs))
	ids := make([]OpID, len(reqs))
	for i, r := range reqs {
		futs[i], ids[i] = d.Enumerate(r)
	}
	return futs, ids
}
