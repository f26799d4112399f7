package iofio

import "time"

// DirEntry is one result of Enumerate: a leaf name plus whichever stat-like
// fields the platform returned for free, with Have recording which are
// valid.
type DirEntry struct {
	Name string
	Have MetaFlags

	Dev, Ino   uint64
	Type       EntryType
	Perms      uint32
	Nlink      uint64
	UID, GID   uint32
	Rdev       uint64
	Atim, Mtim time.Time
	Ctim       time.Time
	Size       int64
	Allocated  int64
	Blocks     int64
	Blksize    int64
	Flags      uint32
	Gen        uint64
	Birthtim   time.Time
}

// Fill performs a lazy fill of any metadata fields not already valid on the
// entry, given a handle to the containing directory.
func (e *DirEntry) Fill(dirHandle *Handle, want MetaFlags) error {
	missing := want &^ e.Have
	if missing == 0 {
		return nil
	}
	path := dirHandle.path + "/" + e.Name
	info, err := dirHandle.dispatcher.backend.statPath(path, missing)
	if err != nil {
		return osError("stat", path, err)
	}
	e.mergeFrom(info)
	return nil
}

func (e *DirEntry) mergeFrom(info statInfo) {
	if info.mask.Has(MetaDev) {
		e.Dev = info.dev
	}
	if info.mask.Has(MetaIno) {
		e.Ino = info.ino
	}
	if info.mask.Has(MetaType) {
		e.Type = info.typ
	}
	if info.mask.Has(MetaPerms) {
		e.Perms = info.perms
	}
	if info.mask.Has(MetaNlink) {
		e.Nlink = info.nlink
	}
	if info.mask.Has(MetaUID) {
		e.UID = info.uid
	}
	if info.mask.Has(MetaGID) {
		e.GID = info.gid
	}
	if info.mask.Has(MetaRdev) {
		e.Rdev = info.rdev
	}
	if info.mask.Has(MetaAtim) {
		e.Atim = info.atim
	}
	if info.mask.Has(MetaMtim) {
		e.Mtim = info.mtim
	}
	if info.mask.Has(MetaCtim) {
		e.Ctim = info.ctim
	}
	if info.mask.Has(MetaSize) {
		e.Size = info.size
	}
	if info.mask.Has(MetaAllocated) {
		e.Allocated = info.allocated
	}
	if info.mask.Has(MetaBlocks) {
		e.Blocks = info.blocks
	}
	if info.mask.Has(MetaBlksize) {
		e.Blksize = info.blksize
	}
	if info.mask.Has(MetaFlagsBit) {
		e.Flags = info.flags
	}
	if info.mask.Has(MetaGen) {
		e.Gen = info.gen
	}
	if info.mask.Has(MetaBirthtim) {
		e.Birthtim = info.birthtim
	}
	e.Have |= info.mask
}
