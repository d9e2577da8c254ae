package remotefs

// WalkEntry is one level yielded by Walk: the directory path and its
// immediate directory/file children, matching os.walk's shape.
type WalkEntry struct {
	Dir   *Path
	Dirs  []DirEntry
	Files []DirEntry
}

// WalkFunc is called once per directory. In topdown mode it may mutate
// e.Dirs in place to prune which subdirectories get recursed into,
// exactly like os.walk (spec.md §4.3).
type WalkFunc func(e *WalkEntry) error

// Walk recurses p, calling fn once per directory, in topdown or
// bottom-up order (spec.md §4.3). A directory that can't be listed
// terminates that branch silently and does not fail the overall walk,
// mirroring Glob's error policy.
func Walk(p *Path, topdown bool, fn WalkFunc) error {
	entries, err := p.IterDir()
	if err != nil {
		return nil //nolint:nilerr // unreadable directory: prune silently
	}

	var dirs, files []DirEntry
	for _, e := range entries {
		if e.Stat.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	we := &WalkEntry{Dir: p, Dirs: dirs, Files: files}

	if topdown {
		if err := fn(we); err != nil {
			return err
		}
		for _, d := range we.Dirs {
			if err := Walk(p.Child(d.Name), topdown, fn); err != nil {
				return err
			}
		}
		return nil
	}

	for _, d := range dirs {
		if err := Walk(p.Child(d.Name), topdown, fn); err != nil {
			return err
		}
	}
	return fn(we)
}
