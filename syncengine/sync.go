package syncengine

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mpytool/there/internal/xlog"
)

// defaultExclude is pruned from every recursive walk, per spec.md
// §4.4.
var defaultExclude = map[string]bool{
	"__pycache__": true,
	".git":        true,
}

// Sync drives one-way recursive copies between two Node trees,
// skipping files that are already up to date (spec.md §4.4).
type Sync struct {
	DryRun    bool // log the intended action, touch nothing
	Force     bool // copy even when sizes (and hashes) already match
	HashCheck bool // compare SHA-256 digests, not just size
	Exclude   map[string]bool

	Copied  int
	Skipped int
}

// New returns a Sync with the default exclude set (__pycache__, .git)
// merged with any additional names the caller supplies.
func New(extraExclude ...string) *Sync {
	exclude := make(map[string]bool, len(defaultExclude)+len(extraExclude))
	for k := range defaultExclude {
		exclude[k] = true
	}
	for _, e := range extraExclude {
		exclude[e] = true
	}
	return &Sync{Exclude: exclude}
}

// SyncFile copies src to dst if they differ (or Force is set). If dst
// already exists and is a directory, it is retargeted to dst/src.Name()
// first, matching the "cp INTO a directory" convention.
func (s *Sync) SyncFile(src, dst Node) error {
	dstStat, err := dst.Stat()
	if err != nil {
		return err
	}
	if dstStat.Exists && dstStat.IsDir {
		dst = dst.Join(src.Name())
		dstStat, err = dst.Stat()
		if err != nil {
			return err
		}
	}

	different := !dstStat.Exists
	if !different {
		srcStat, err := src.Stat()
		if err != nil {
			return err
		}
		if srcStat.Size != dstStat.Size {
			different = true
		} else if s.HashCheck {
			srcSum, err := src.Sha256()
			if err != nil {
				return err
			}
			dstSum, err := dst.Sha256()
			if err != nil {
				return err
			}
			different = srcSum != dstSum
		}
	}

	if s.DryRun {
		xlog.Logf(s, "would copy %s -> %s", src.Path(), dst.Path())
		s.Skipped++
		return nil
	}

	if !s.Force && !different {
		s.Skipped++
		return nil
	}

	data, err := src.ReadBytes()
	if err != nil {
		return errors.Wrapf(err, "syncengine: reading %s", src.Path())
	}
	if err := dst.WriteBytes(data); err != nil {
		return errors.Wrapf(err, "syncengine: writing %s", dst.Path())
	}
	s.Copied++
	return nil
}

// SyncDirectory recursively copies src into dst, creating dst's
// subdirectories as needed (spec.md §4.4). src must already be a
// directory; dst must already exist and be a directory unless DryRun
// is set.
func (s *Sync) SyncDirectory(src, dst Node, recursive bool) error {
	srcStat, err := src.Stat()
	if err != nil {
		return err
	}
	if !srcStat.IsDir {
		return fmt.Errorf("syncengine: %s is not a directory", src.Path())
	}
	if !s.DryRun {
		dstStat, err := dst.Stat()
		if err != nil {
			return err
		}
		if !dstStat.Exists || !dstStat.IsDir {
			return fmt.Errorf("syncengine: destination %s must already exist as a directory", dst.Path())
		}
	}
	return s.copyTree(src, dst, recursive)
}

// copyTree maps src onto dst/src.Name(), descending recursively. This
// directly implements "dst / src_dir.relative_to(src.parent)" from
// spec.md §4.4: each recursive call appends exactly one more path
// component, so the accumulated Join chain equals that relative path.
func (s *Sync) copyTree(src, dstParent Node, recursive bool) error {
	target := dstParent.Join(src.Name())
	if s.DryRun {
		xlog.Logf(s, "would mkdir %s", target.Path())
	} else if err := target.Mkdir(true, true); err != nil {
		return errors.Wrapf(err, "syncengine: mkdir %s", target.Path())
	}

	children, err := src.IterDir()
	if err != nil {
		return errors.Wrapf(err, "syncengine: listing %s", src.Path())
	}

	for _, child := range children {
		if s.Exclude[child.Name()] {
			continue
		}
		st, err := child.Stat()
		if err != nil {
			return err
		}
		if st.IsDir {
			if !recursive {
				continue
			}
			if err := s.copyTree(child, target, recursive); err != nil {
				return err
			}
			continue
		}
		if err := s.SyncFile(child, target.Join(child.Name())); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFile unlinks p.
func RemoveFile(p Node) error {
	return p.Unlink()
}

// RemoveDirectory removes p. If recursive, its contents are removed
// bottom-up first; otherwise p must already be empty.
func RemoveDirectory(p Node, recursive bool) error {
	if !recursive {
		return p.Rmdir()
	}
	children, err := p.IterDir()
	if err != nil {
		return err
	}
	for _, child := range children {
		st, err := child.Stat()
		if err != nil {
			return err
		}
		if st.IsDir {
			if err := RemoveDirectory(child, true); err != nil {
				return err
			}
			continue
		}
		if err := child.Unlink(); err != nil {
			return err
		}
	}
	return p.Rmdir()
}
