package iofio

// Verb identifies which filesystem action an op performs.
type Verb string

const (
	VerbDir       Verb = "dir"
	VerbRmDir     Verb = "rmdir"
	VerbFile      Verb = "file"
	VerbRmFile    Verb = "rmfile"
	VerbSymlink   Verb = "symlink"
	VerbRmSymlink Verb = "rmsymlink"
	VerbSync      Verb = "sync"
	VerbClose     Verb = "close"
	VerbRead      Verb = "read"
	VerbWrite     Verb = "write"
	VerbTruncate  Verb = "truncate"
	VerbEnumerate Verb = "enumerate"
	VerbCompletion Verb = "completion"
	VerbCall      Verb = "call"
	VerbAdopt     Verb = "adopt"
	VerbBarrier   Verb = "barrier"
)

// Buffer is one fragment of a gather/scatter vector: Data is read into (for
// Read) or written from (for Write), starting at the request's Offset plus
// the sum of the lengths of prior fragments in the same request.
type Buffer struct {
	Data []byte
}

// DirRequest creates and/or opens a directory.
type DirRequest struct {
	Precondition OpID
	Path         string
	Flags        FileFlags
}

// RmDirRequest removes an empty directory.
type RmDirRequest struct {
	Precondition OpID
	Path         string
}

// FileRequest creates/opens a file.
type FileRequest struct {
	Precondition OpID
	Path         string
	Flags        FileFlags
}

// RmFileRequest unlinks a file.
type RmFileRequest struct {
	Precondition OpID
	Path         string
}

// SymlinkRequest creates a symbolic link; Target is resolved from the
// precondition op's resulting Handle path.
type SymlinkRequest struct {
	Precondition OpID
	LinkPath     string
}

// RmSymlinkRequest unlinks a symlink.
type RmSymlinkRequest struct {
	Precondition OpID
	Path         string
}

// SyncRequest forces durability of all writes on the precondition's handle.
type SyncRequest struct {
	Precondition OpID
}

// CloseRequest releases the precondition's handle.
type CloseRequest struct {
	Precondition OpID
}

// ReadRequest scatter-reads from the precondition's handle.
type ReadRequest struct {
	Precondition OpID
	Buffers      []Buffer
	Offset       int64
}

// WriteRequest gather-writes to the precondition's handle.
type WriteRequest struct {
	Precondition OpID
	Buffers      []Buffer
	Offset       int64
}

// TruncateRequest sets the precondition's handle's length to exactly Size.
type TruncateRequest struct {
	Precondition OpID
	Size         int64
}

// EnumerateRequest produces up to MaxItems directory entries from the
// precondition's (directory) handle.
type EnumerateRequest struct {
	Precondition OpID
	MaxItems     int
	Restart      bool
	Glob         string
	Want         MetaFlags
}

// EnumerateResult is the future value produced by Enumerate.
type EnumerateResult struct {
	Entries []DirEntry
	More    bool
}
