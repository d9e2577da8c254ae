package syncengine

import (
	"github.com/mpytool/there/remotefs"
)

// RemoteNode adapts a *remotefs.Path to Node.
type RemoteNode struct {
	p *remotefs.Path
}

// NewRemoteNode wraps a board-bound path.
func NewRemoteNode(p *remotefs.Path) *RemoteNode {
	return &RemoteNode{p: p}
}

func (n *RemoteNode) Path() string { return n.p.String() }
func (n *RemoteNode) Name() string { return n.p.Name() }
func (n *RemoteNode) Join(name string) Node {
	return &RemoteNode{p: n.p.Join(name)}
}

func (n *RemoteNode) Stat() (Stat, error) {
	st, err := n.p.Stat()
	if err != nil {
		if isNotFound(err) {
			return Stat{}, nil
		}
		return Stat{}, err
	}
	return Stat{Exists: true, IsDir: st.IsDir(), Size: st.Size}, nil
}

func (n *RemoteNode) ReadBytes() ([]byte, error)       { return n.p.ReadBytes() }
func (n *RemoteNode) WriteBytes(data []byte) error     { return n.p.WriteBytes(data) }
func (n *RemoteNode) Sha256() (string, error)          { return n.p.Sha256() }
func (n *RemoteNode) Mkdir(parents, existOK bool) error { return n.p.Mkdir(parents, existOK) }
func (n *RemoteNode) Rmdir() error                     { return n.p.Rmdir() }
func (n *RemoteNode) Unlink() error                    { return n.p.Unlink() }

func (n *RemoteNode) IterDir() ([]Node, error) {
	entries, err := n.p.IterDir()
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(entries))
	for _, e := range entries {
		out = append(out, n.Join(e.Name))
	}
	return out, nil
}
