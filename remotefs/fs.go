// Package remotefs is the L3 façade of spec.md: a path-object model
// bound to a transport.Transport, whose operations synthesize short
// programs, run them through the transport, and parse the printed
// literal back into a host-side value.
package remotefs

import (
	"time"

	"github.com/mpytool/there/transport"
)

// execer is the subset of *transport.Transport remotefs needs. Path
// objects hold this, not a concrete *transport.Transport, so tests can
// substitute a fake without touching the link layer.
type execer interface {
	Exec(program string, timeout time.Duration) (string, error)
	BaudRate() int
}

// defaultTimeout is used by operations that don't have a more specific
// one of their own, matching spec.md §5's "default 3-5s depending on
// operation".
const defaultTimeout = 5 * time.Second

// FS is a handle on the board's filesystem. It is cheap to copy and
// holds no state of its own beyond the transport reference — per
// spec.md §3, binding a Path is a weak reference: constructing one
// never touches the device.
type FS struct {
	t execer
}

// New wraps a transport in a filesystem façade.
func New(t execer) *FS {
	return &FS{t: t}
}

// Path constructs a path bound to fs. It performs no I/O. A relative
// path is re-anchored to "/", per spec.md §3's invariant that operations
// receiving a relative path must reject it or re-anchor it — this
// façade re-anchors, matching the forgiving style of the original
// tool's path handling.
func (fs *FS) Path(p string) *Path {
	return &Path{fs: fs, segs: splitPosix(p)}
}
