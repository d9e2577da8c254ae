// Package terminal implements the raw passthrough mode spec.md §6
// names as the board's last external collaborator: once a transport
// has surrendered its link via Transport.Stop, this package puts the
// local terminal into raw mode and copies bytes both ways until either
// side closes or the interrupt sequence is seen.
package terminal

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// exitSequence is CTRL-] (0x1d), the escape this package recognizes on
// stdin to leave passthrough mode without needing a second terminal.
const exitSequence = 0x1d

// Passthrough puts the local terminal (os.Stdin) into raw mode and
// copies bytes bidirectionally between it and rw, the handle a
// Transport.Stop call surrendered. It returns when rw is closed, an
// I/O error occurs, or the user types CTRL-].
func Passthrough(rw io.ReadWriteCloser) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("terminal: stdin is not a tty")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "terminal: enter raw mode")
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	errc := make(chan error, 2)

	go func() {
		errc <- copyUntilExit(rw, os.Stdin)
	}()
	go func() {
		_, err := io.Copy(os.Stdout, rw)
		errc <- err
	}()

	err = <-errc
	_ = rw.Close()
	return err
}

// copyUntilExit mirrors io.Copy(dst, src) but stops, without error,
// the moment it sees exitSequence on src.
func copyUntilExit(dst io.Writer, src io.Reader) error {
	buf := make([]byte, 1)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if buf[0] == exitSequence {
				return nil
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
