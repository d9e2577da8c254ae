package remotefs

import (
	"errors"
	"fmt"

	"github.com/mpytool/there/remotefs/literal"
	"github.com/mpytool/there/transport"
)

// ErrCrossDirectoryRename is returned by Rename when dst isn't in the
// same directory as the receiver — per spec.md §9's Open Question,
// same-parent is enforced because that's what a single os.rename call
// on the board can actually do.
var ErrCrossDirectoryRename = errors.New("remotefs: rename across directories requires MoveAcrossDirs")

// Unlink removes a regular file.
func (p *Path) Unlink() error {
	_, err := p.fs.t.Exec(fmt.Sprintf(
		"import os\nprint(os.remove(%s))\n", literal.Quote(p.String())), defaultTimeout)
	if err != nil {
		return err
	}
	p.clearCache()
	return nil
}

// Mkdir creates a directory. If parents is true and the parent
// doesn't exist, it is created recursively; FileExists is swallowed
// when exist_ok is true, matching spec.md §7's recovery policy.
func (p *Path) Mkdir(parents, existOK bool) error {
	if parents {
		if parent := p.Parent(); parent.String() != "/" {
			if _, err := parent.Stat(); err != nil {
				var terr *transport.Error
				if errors.As(err, &terr) && terr.Kind == transport.KindFileNotFound {
					if err := parent.Mkdir(true, true); err != nil {
						return err
					}
				} else if err != nil {
					return err
				}
			}
		}
	}
	_, err := p.fs.t.Exec(fmt.Sprintf(
		"import os\nprint(os.mkdir(%s))\n", literal.Quote(p.String())), defaultTimeout)
	if err != nil {
		var terr *transport.Error
		if existOK && errors.As(err, &terr) && terr.Kind == transport.KindFileExists {
			return nil
		}
		return err
	}
	p.clearCache()
	return nil
}

// Rmdir removes an empty directory.
func (p *Path) Rmdir() error {
	_, err := p.fs.t.Exec(fmt.Sprintf(
		"import os\nprint(os.rmdir(%s))\n", literal.Quote(p.String())), defaultTimeout)
	if err != nil {
		return err
	}
	p.clearCache()
	return nil
}

// Rename moves the receiver to dst, which must be in the same
// directory (spec.md §9's Open Question decision: enforced
// same-parent, since a single os.rename is all the board offers
// atomically).
func (p *Path) Rename(dst *Path) error {
	if !p.SameParent(dst) {
		return ErrCrossDirectoryRename
	}
	_, err := p.fs.t.Exec(fmt.Sprintf(
		"import os\nprint(os.rename(%s, %s))\n", literal.Quote(p.String()), literal.Quote(dst.String())),
		defaultTimeout)
	if err != nil {
		return err
	}
	p.clearCache()
	dst.clearCache()
	return nil
}

// MoveAcrossDirs is the explicit, opt-in, non-atomic fallback for
// moving a file between directories: read it whole, write it to dst,
// unlink the source. It is not used by Rename because spec.md §9
// flags it as unsafe to apply silently (a crash mid-move loses data).
func (p *Path) MoveAcrossDirs(dst *Path) error {
	data, err := p.ReadBytes()
	if err != nil {
		return err
	}
	if err := dst.WriteBytes(data); err != nil {
		return err
	}
	return p.Unlink()
}

// Truncate sets the file's size, returning the resulting size per
// spec.md §4.3's Parse column. MicroPython 1.9.3 has no
// file.truncate(), so this uses the same workaround
// original_source/there/repl_connection.py documents: open "ab", seek
// to n (which extends the file with zero bytes if n is past the
// current end), write an empty string, close.
func (p *Path) Truncate(n int64) (int64, error) {
	program := fmt.Sprintf(`_f = open(%s, 'ab')
print(_f.seek(%d))
_f.write(b'')
_f.close()
del _f
`, literal.Quote(p.String()), n)
	out, err := p.fs.t.Exec(program, defaultTimeout)
	if err != nil {
		return 0, err
	}
	v, err := literal.Parse(out)
	if err != nil {
		return 0, fmt.Errorf("remotefs: parsing truncate response: %w", err)
	}
	if v.Kind != literal.KindInt {
		return 0, fmt.Errorf("remotefs: unexpected truncate response shape")
	}
	p.clearCache()
	return v.Int, nil
}
