package syncengine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	stdpath "path"
	"strings"
)

// fakeTree is an in-memory Node implementation used to exercise
// Sync's algorithm without touching the real filesystem or a board,
// mirroring remotefs's own fakeBoard test double one layer up.
type fakeTree struct {
	dirs  map[string]bool
	files map[string][]byte
}

func newFakeTree() *fakeTree {
	return &fakeTree{dirs: map[string]bool{"/": true}, files: map[string][]byte{}}
}

func (t *fakeTree) node(path string) *fakeNode { return &fakeNode{tree: t, path: path} }

func (t *fakeTree) mkdir(path string) { t.dirs[path] = true }
func (t *fakeTree) put(path string, data []byte) {
	t.files[path] = data
	t.dirs[stdpath.Dir(path)] = true
}

type fakeNode struct {
	tree *fakeTree
	path string
}

func (n *fakeNode) Path() string { return n.path }
func (n *fakeNode) Name() string { return stdpath.Base(n.path) }
func (n *fakeNode) Join(name string) Node {
	return n.tree.node(stdpath.Join(n.path, name))
}

func (n *fakeNode) Stat() (Stat, error) {
	if n.tree.dirs[n.path] {
		return Stat{Exists: true, IsDir: true}, nil
	}
	if data, ok := n.tree.files[n.path]; ok {
		return Stat{Exists: true, Size: int64(len(data))}, nil
	}
	return Stat{}, nil
}

func (n *fakeNode) ReadBytes() ([]byte, error) {
	data, ok := n.tree.files[n.path]
	if !ok {
		return nil, fmt.Errorf("fakeNode: %s not found", n.path)
	}
	return data, nil
}

func (n *fakeNode) WriteBytes(data []byte) error {
	n.tree.put(n.path, append([]byte{}, data...))
	return nil
}

func (n *fakeNode) Sha256() (string, error) {
	sum := sha256.Sum256(n.tree.files[n.path])
	return hex.EncodeToString(sum[:]), nil
}

func (n *fakeNode) Mkdir(parents, existOK bool) error {
	if n.tree.dirs[n.path] {
		if existOK {
			return nil
		}
		return fmt.Errorf("fakeNode: %s exists", n.path)
	}
	n.tree.dirs[n.path] = true
	return nil
}

func (n *fakeNode) Rmdir() error {
	delete(n.tree.dirs, n.path)
	return nil
}

func (n *fakeNode) Unlink() error {
	delete(n.tree.files, n.path)
	return nil
}

func (n *fakeNode) IterDir() ([]Node, error) {
	prefix := n.path
	if prefix != "/" {
		prefix += "/"
	}
	seen := map[string]bool{}
	var out []Node
	add := func(full string) {
		if full == n.path || !strings.HasPrefix(full, prefix) {
			return
		}
		rest := full[len(prefix):]
		if rest == "" || strings.Contains(rest, "/") {
			return
		}
		if seen[rest] {
			return
		}
		seen[rest] = true
		out = append(out, n.Join(rest))
	}
	for d := range n.tree.dirs {
		add(d)
	}
	for f := range n.tree.files {
		add(f)
	}
	return out, nil
}
