package remotefs

import (
	"fmt"

	"github.com/mpytool/there/remotefs/literal"
)

// DirEntry is one (name, stat) pair from a single iterdir round trip.
type DirEntry struct {
	Name string
	Stat Stat
}

// IterDir lists the directory's immediate children in one remote call,
// so that listing a directory never pays one round trip per entry
// (spec.md §4.3's "iterdir optimization"). The path is pre-anchored
// with a trailing slash before concatenation on the board side to
// avoid the double-join bug when the parent is exactly "/".
func (p *Path) IterDir() ([]DirEntry, error) {
	dir := p.String()
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	program := fmt.Sprintf(`import os
_r = []
for _n in os.listdir(%s):
    _r.append([_n, os.stat(%s + _n)])
print(_r)
`, literal.Quote(dir), literal.Quote(prefix))

	out, err := p.fs.t.Exec(program, defaultTimeout)
	if err != nil {
		return nil, err
	}
	v, err := literal.Parse(out)
	if err != nil {
		return nil, fmt.Errorf("remotefs: parsing iterdir response: %w", err)
	}
	if v.Kind != literal.KindList {
		return nil, fmt.Errorf("remotefs: unexpected iterdir shape")
	}
	entries := make([]DirEntry, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Kind != literal.KindList && item.Kind != literal.KindTuple {
			return nil, fmt.Errorf("remotefs: unexpected iterdir entry shape")
		}
		if len(item.Items) != 2 {
			return nil, fmt.Errorf("remotefs: unexpected iterdir entry arity")
		}
		s, err := statFromTuple(item.Items[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, DirEntry{Name: item.Items[0].Str, Stat: s})
	}
	return entries, nil
}

// Child returns the Path for a name yielded by IterDir.
func (p *Path) Child(name string) *Path {
	return p.Join(name)
}
