package remotefs

import (
	"path"
	"strings"
)

// Glob returns every path under fs's root matching pattern, a
// POSIX-style wildcard expression supporting *, ?, [...] and the
// recursive **, per spec.md §4.3. Matching always starts at "/": a
// pattern without a leading "/" is anchored at the root the same way
// (remote paths are always absolute); a trailing "/" restricts the match to
// directories. Errors reading any one directory terminate that branch
// silently — the overall glob never fails because of a permission
// error partway through the tree.
func (fs *FS) Glob(pattern string) []*Path {
	dirOnly := strings.HasSuffix(pattern, "/")
	segs := splitPosix(pattern)
	root := fs.Path("/")
	return globSegments(root, segs, dirOnly)
}

func globSegments(base *Path, segs []string, dirOnly bool) []*Path {
	if len(segs) == 0 {
		if dirOnly {
			st, err := base.Stat()
			if err != nil || !st.IsDir() {
				return nil
			}
		}
		return []*Path{base}
	}

	seg := segs[0]
	rest := segs[1:]

	if seg == "**" {
		var out []*Path
		out = append(out, globSegments(base, rest, dirOnly)...)

		entries, err := base.IterDir()
		if err != nil {
			return out
		}
		for _, e := range entries {
			if e.Stat.IsDir() {
				out = append(out, globSegments(base.Child(e.Name), segs, dirOnly)...)
			}
		}
		return out
	}

	entries, err := base.IterDir()
	if err != nil {
		return nil
	}

	var out []*Path
	for _, e := range entries {
		ok, merr := path.Match(seg, e.Name)
		if merr != nil || !ok {
			continue
		}
		child := base.Child(e.Name)
		if len(rest) == 0 {
			if dirOnly && !e.Stat.IsDir() {
				continue
			}
			out = append(out, child)
			continue
		}
		if e.Stat.IsDir() {
			out = append(out, globSegments(child, rest, dirOnly)...)
		}
	}
	return out
}
