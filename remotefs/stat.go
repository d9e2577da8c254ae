package remotefs

import (
	"fmt"
	"time"

	"github.com/mpytool/there/remotefs/literal"
)

// POSIX file-type bits within Stat.Mode, used by IsDir/IsRegular.
const (
	modeTypeMask = 0o170000
	modeDir      = 0o040000
	modeRegular  = 0o100000
)

// Stat is the stat record described in spec.md §3. Every field,
// Uid/Gid/Nlink included, is copied from the tuple the board prints
// (where the board typically reports zero for Uid/Gid/Nlink); no
// attributes are synthesized on the host.
type Stat struct {
	Mode  uint32
	Size  int64
	Mtime time.Time
	Uid   uint32
	Gid   uint32
	Nlink uint32
}

// IsDir reports whether Mode names a directory.
func (s Stat) IsDir() bool { return s.Mode&modeTypeMask == modeDir }

// IsRegular reports whether Mode names a regular file.
func (s Stat) IsRegular() bool { return s.Mode&modeTypeMask == modeRegular }

// VFSStat is the statvfs(2)-shaped block-device summary used for the
// "df" CLI verb (SPEC_FULL.md's supplemented statvfs feature).
type VFSStat struct {
	BlockSize      int64
	FragmentSize   int64
	Blocks         int64
	BlocksFree     int64
	BlocksAvail    int64
	Files          int64
	FilesFree      int64
	FilesAvail     int64
	MountFlags     int64
	MaxNameLength  int64
}

// Stat returns the path's stat record, using the cache if present.
func (p *Path) Stat() (Stat, error) {
	if s, ok := p.cachedStat(); ok {
		return s, nil
	}
	out, err := p.fs.t.Exec(fmt.Sprintf(
		"import os\nprint(os.stat(%s))\n", literal.Quote(p.String())), defaultTimeout)
	if err != nil {
		return Stat{}, err
	}
	v, err := literal.Parse(out)
	if err != nil {
		return Stat{}, fmt.Errorf("remotefs: parsing stat response: %w", err)
	}
	s, err := statFromTuple(v)
	if err != nil {
		return Stat{}, err
	}
	p.setCachedStat(s)
	return s, nil
}

// statFromTuple decodes the 10-tuple os.stat() prints: (mode, ino,
// dev, nlink, uid, gid, size, atime, mtime, ctime).
func statFromTuple(v literal.Value) (Stat, error) {
	if v.Kind != literal.KindTuple || len(v.Items) < 9 {
		return Stat{}, fmt.Errorf("remotefs: unexpected stat shape")
	}
	return Stat{
		Mode:  uint32(v.Items[0].Int),
		Nlink: uint32(v.Items[3].Int),
		Uid:   uint32(v.Items[4].Int),
		Gid:   uint32(v.Items[5].Int),
		Size:  v.Items[6].Int,
		Mtime: time.Unix(v.Items[8].Int, 0).UTC(),
	}, nil
}

// StatVFS returns the block-device usage summary for the filesystem
// containing p.
func (p *Path) StatVFS() (VFSStat, error) {
	out, err := p.fs.t.Exec(fmt.Sprintf(
		"import os\nprint(os.statvfs(%s))\n", literal.Quote(p.String())), defaultTimeout)
	if err != nil {
		return VFSStat{}, err
	}
	v, err := literal.Parse(out)
	if err != nil {
		return VFSStat{}, fmt.Errorf("remotefs: parsing statvfs response: %w", err)
	}
	if v.Kind != literal.KindTuple || len(v.Items) < 10 {
		return VFSStat{}, fmt.Errorf("remotefs: unexpected statvfs shape")
	}
	return VFSStat{
		BlockSize:     v.Items[0].Int,
		FragmentSize:  v.Items[1].Int,
		Blocks:        v.Items[2].Int,
		BlocksFree:    v.Items[3].Int,
		BlocksAvail:   v.Items[4].Int,
		Files:         v.Items[5].Int,
		FilesFree:     v.Items[6].Int,
		FilesAvail:    v.Items[7].Int,
		MountFlags:    v.Items[8].Int,
		MaxNameLength: v.Items[9].Int,
	}, nil
}
