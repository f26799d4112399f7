package iofio

// FileFlags is the bitmap of file/directory open flags.
type FileFlags uint32

const (
	Read FileFlags = 1 << iota
	Write
	Append
	Truncate
	Create
	CreateOnlyIfNotExist
	WillBeSequentiallyAccessed
	WillBeRandomlyAccessed
	FastDirEnumeration
	UniqueDirectoryHandle
	OSDirect
	OSMmap
	AlwaysSync
	SyncOnClose
	EnforceDependencyWriteOrder
)

// Has reports whether all bits in want are set in f.
func (f FileFlags) Has(want FileFlags) bool { return f&want == want }

// applyForceMasks implements the dispatcher's force-on/force-off mask
// adjustment: force-on bits are set, then force-off bits are
// cleared, so force-off wins a direct conflict.
func applyForceMasks(f, forceOn, forceOff FileFlags) FileFlags {
	f |= forceOn
	f &^= forceOff
	return f
}

// effectiveFlags implements the close/sync ordering upgrade: a handle
// opened with EnforceDependencyWriteOrder gets AlwaysSync added
// when it will be accessed sequentially, or SyncOnClose added otherwise.
func effectiveFlags(f FileFlags) FileFlags {
	if !f.Has(EnforceDependencyWriteOrder) {
		return f
	}
	if f.Has(WillBeSequentiallyAccessed) {
		return f | AlwaysSync
	}
	return f | SyncOnClose
}

// MetaFlags is the bitmap of which Stat-like fields a DirEntry carries.
type MetaFlags uint32

const (
	MetaDev MetaFlags = 1 << iota
	MetaIno
	MetaType
	MetaPerms
	MetaNlink
	MetaUID
	MetaGID
	MetaRdev
	MetaAtim
	MetaMtim
	MetaCtim
	MetaSize
	MetaAllocated
	MetaBlocks
	MetaBlksize
	MetaFlagsBit
	MetaGen
	MetaBirthtim

	// MetaAll requests every bit above.
	MetaAll = MetaDev | MetaIno | MetaType | MetaPerms | MetaNlink | MetaUID |
		MetaGID | MetaRdev | MetaAtim | MetaMtim | MetaCtim | MetaSize |
		MetaAllocated | MetaBlocks | MetaBlksize | MetaFlagsBit | MetaGen |
		MetaBirthtim
)

func (m MetaFlags) Has(want MetaFlags) bool { return m&want == want }
