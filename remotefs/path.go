package remotefs

import (
	"strings"
	"sync"
)

// Path is an immutable POSIX-style absolute path bound at runtime to a
// transport handle (spec.md §3). All paths are absolute: splitPosix
// re-anchors anything relative to "/".
type Path struct {
	fs   *FS
	segs []string // path segments, never including "" or "."

	mu        sync.Mutex
	statCache *Stat // nil when not cached
}

// splitPosix splits a path into clean segments, dropping "." and ""
// components the way POSIX path joining does, and re-anchoring
// relative paths to root (spec.md §3 Invariants).
func splitPosix(p string) []string {
	parts := strings.Split(p, "/")
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		segs = append(segs, part)
	}
	return segs
}

// String renders the path in POSIX form, always absolute.
func (p *Path) String() string {
	if len(p.segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.segs, "/")
}

// Name is the last path segment, or "" for the root.
func (p *Path) Name() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

// Suffix is the extension of Name, including the leading dot, or ""
// if there is none.
func (p *Path) Suffix() string {
	name := p.Name()
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 { // leading dot ("dotfiles") doesn't count as a suffix
		return ""
	}
	return name[idx:]
}

// Parent is the containing directory. The root's parent is itself.
func (p *Path) Parent() *Path {
	if len(p.segs) == 0 {
		return p
	}
	return &Path{fs: p.fs, segs: p.segs[:len(p.segs)-1]}
}

// Join returns a new path with child appended as a further segment.
// child may itself contain slashes.
func (p *Path) Join(child string) *Path {
	segs := append(append([]string{}, p.segs...), splitPosix(child)...)
	return &Path{fs: p.fs, segs: segs}
}

// WithName returns a sibling path with the last segment replaced.
// Per spec.md §9's Open Question, this is the primitive that makes
// same-parent rename possible without a general move.
func (p *Path) WithName(name string) *Path {
	cut := len(p.segs) - 1
	if cut < 0 {
		cut = 0
	}
	segs := append([]string{}, p.segs[:cut]...)
	segs = append(segs, name)
	return &Path{fs: p.fs, segs: segs}
}

// SameParent reports whether p and other live in the same directory.
func (p *Path) SameParent(other *Path) bool {
	return p.Parent().String() == other.Parent().String()
}

// clearCache invalidates any cached stat for this path, per spec.md §3:
// "After a successful mkdir, unlink, rmdir, rename, or write_bytes, any
// cached stat on the affected path is invalidated."
func (p *Path) clearCache() {
	p.mu.Lock()
	p.statCache = nil
	p.mu.Unlock()
}

func (p *Path) cachedStat() (Stat, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statCache == nil {
		return Stat{}, false
	}
	return *p.statCache, true
}

func (p *Path) setCachedStat(s Stat) {
	p.mu.Lock()
	p.statCache = &s
	p.mu.Unlock()
}
