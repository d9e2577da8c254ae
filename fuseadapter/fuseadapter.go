// Package fuseadapter exposes a remotefs.FS as a mountable FUSE tree,
// the named-but-out-of-core-scope external collaborator from spec.md
// §6. It is intentionally thin: every operation delegates straight
// through to remotefs, with no caching of its own beyond what
// remotefs's stat cache already does.
package fuseadapter

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/mpytool/there/remotefs"
	"github.com/mpytool/there/transport"
)

// Node wraps a *remotefs.Path as a go-fuse inode. Every child Lookup
// returns another Node anchored at the looked-up remotefs.Path, so the
// FUSE tree's shape always mirrors the board's directory structure
// exactly.
type Node struct {
	fs.Inode
	path *remotefs.Path
}

var (
	_ fs.InodeEmbedder = (*Node)(nil)
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
	_ fs.NodeWriter    = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
)

// Root builds the FUSE root node for the board rooted at "/".
func Root(rfs *remotefs.FS) *Node {
	return &Node{path: rfs.Path("/")}
}

func attrFromStat(out *fuse.Attr, st remotefs.Stat) {
	out.Mode = st.Mode
	out.Size = uint64(st.Size)
	sec := uint64(st.Mtime.Unix())
	out.Mtime = sec
	out.Atime = sec
	out.Ctime = sec
}

func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	st, err := n.path.Stat()
	if err != nil {
		return errnoFor(err)
	}
	attrFromStat(&out.Attr, st)
	return 0
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child := n.path.Child(name)
	st, err := child.Stat()
	if err != nil {
		return nil, errnoFor(err)
	}
	attrFromStat(&out.Attr, st)
	mode := uint32(syscall.S_IFREG)
	if st.IsDir() {
		mode = syscall.S_IFDIR
	}
	childNode := &Node{path: child}
	return n.NewInode(ctx, childNode, fs.StableAttr{Mode: mode}), 0
}

func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := n.path.IterDir()
	if err != nil {
		return nil, errnoFor(err)
	}
	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(syscall.S_IFREG)
		if e.Stat.IsDir() {
			mode = syscall.S_IFDIR
		}
		list = append(list, fuse.DirEntry{Name: e.Name, Mode: mode})
	}
	return fs.NewListDirStream(list), 0
}

func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, 0, 0
}

func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.path.ReadBytes()
	if err != nil {
		return nil, errnoFor(err)
	}
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	// remotefs has no partial-write primitive; a FUSE write always
	// rewrites the whole file, which is acceptable for this adapter's
	// role as a thin demo boundary rather than a POSIX-complete mount.
	if off != 0 {
		existing, err := n.path.ReadBytes()
		if err != nil {
			return 0, errnoFor(err)
		}
		if int64(len(existing)) < off {
			pad := make([]byte, off-int64(len(existing)))
			existing = append(existing, pad...)
		}
		data = append(existing[:off], data...)
	}
	if err := n.path.WriteBytes(data); err != nil {
		return 0, errnoFor(err)
	}
	return uint32(len(data)), 0
}

func errnoFor(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var terr *transport.Error
	if errors.As(err, &terr) {
		switch terr.Kind {
		case transport.KindFileNotFound:
			return syscall.ENOENT
		case transport.KindPermissionDenied:
			return syscall.EACCES
		case transport.KindFileExists:
			return syscall.EEXIST
		}
	}
	return syscall.EIO
}

// MountOptions returns default fs.Options for mounting a Root node:
// other uids may not access the mount (AllowOther is false), and the
// kernel caches entries and attributes for one second.
func MountOptions(debug bool) *fs.Options {
	return &fs.Options{
		MountOptions: fuse.MountOptions{
			Debug:      debug,
			AllowOther: false,
		},
		EntryTimeout: durationPtr(time.Second),
		AttrTimeout:  durationPtr(time.Second),
	}
}

func durationPtr(d time.Duration) *time.Duration { return &d }
