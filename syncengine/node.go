// Package syncengine implements the L4 one-way recursive copy engine
// (spec.md §4.4): a hash-aware sync between two trees, either side of
// which may live on the host filesystem or on the board. Both sides
// are addressed through the Node interface so the same algorithm
// drives push, pull, and local-to-local copies alike.
package syncengine

// Stat is the subset of file metadata SyncFile/SyncDirectory need.
type Stat struct {
	Exists bool
	IsDir  bool
	Size   int64
}

// Node is one endpoint of a sync: a local filesystem path or a
// board-bound remotefs.Path, named identically by the caller so the
// algorithm never needs to know which.
type Node interface {
	// Path is a human-readable identifier for logging, not necessarily
	// resolvable by any other Node implementation.
	Path() string
	Name() string
	Join(name string) Node

	Stat() (Stat, error)
	ReadBytes() ([]byte, error)
	WriteBytes(data []byte) error
	Sha256() (string, error)

	Mkdir(parents, existOK bool) error
	Rmdir() error
	Unlink() error

	// IterDir lists immediate children. Only valid when Stat().IsDir.
	IterDir() ([]Node, error)
}
