package syncengine

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalNode adapts an absolute host filesystem path to Node, mirroring
// backend/local's direct os.* calls rather than introducing an
// intermediate abstraction the teacher doesn't have.
type LocalNode struct {
	path string
}

// NewLocalNode wraps an absolute or relative host path.
func NewLocalNode(path string) *LocalNode {
	return &LocalNode{path: path}
}

func (n *LocalNode) Path() string { return n.path }
func (n *LocalNode) Name() string { return filepath.Base(n.path) }
func (n *LocalNode) Join(name string) Node {
	return &LocalNode{path: filepath.Join(n.path, name)}
}

func (n *LocalNode) Stat() (Stat, error) {
	fi, err := os.Stat(n.path)
	if os.IsNotExist(err) {
		return Stat{}, nil
	}
	if err != nil {
		return Stat{}, errors.Wrapf(err, "syncengine: stat %s", n.path)
	}
	return Stat{Exists: true, IsDir: fi.IsDir(), Size: fi.Size()}, nil
}

func (n *LocalNode) ReadBytes() ([]byte, error) {
	data, err := os.ReadFile(n.path)
	return data, errors.Wrapf(err, "syncengine: read %s", n.path)
}

func (n *LocalNode) WriteBytes(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(n.path), 0o755); err != nil {
		return errors.Wrapf(err, "syncengine: mkdir parent of %s", n.path)
	}
	return errors.Wrapf(os.WriteFile(n.path, data, 0o644), "syncengine: write %s", n.path)
}

func (n *LocalNode) Sha256() (string, error) {
	f, err := os.Open(n.path)
	if err != nil {
		if os.IsNotExist(err) {
			sum := sha256.Sum256(nil)
			return hex.EncodeToString(sum[:]), nil
		}
		return "", errors.Wrapf(err, "syncengine: open %s", n.path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "syncengine: hash %s", n.path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (n *LocalNode) Mkdir(parents, existOK bool) error {
	var err error
	if parents {
		err = os.MkdirAll(n.path, 0o755)
	} else {
		err = os.Mkdir(n.path, 0o755)
		if existOK && os.IsExist(err) {
			err = nil
		}
	}
	return errors.Wrapf(err, "syncengine: mkdir %s", n.path)
}

func (n *LocalNode) Rmdir() error {
	return errors.Wrapf(os.Remove(n.path), "syncengine: rmdir %s", n.path)
}

func (n *LocalNode) Unlink() error {
	return errors.Wrapf(os.Remove(n.path), "syncengine: unlink %s", n.path)
}

func (n *LocalNode) IterDir() ([]Node, error) {
	entries, err := os.ReadDir(n.path)
	if err != nil {
		return nil, errors.Wrapf(err, "syncengine: readdir %s", n.path)
	}
	out := make([]Node, 0, len(entries))
	for _, e := range entries {
		out = append(out, n.Join(e.Name()))
	}
	return out, nil
}
