package syncengine

import (
	"errors"

	"github.com/mpytool/there/transport"
)

// isNotFound reports whether err is the board's FileNotFound, so
// Stat() can report Stat{Exists: false} instead of propagating an
// error for the common "does the destination exist yet" check.
func isNotFound(err error) bool {
	var terr *transport.Error
	return errors.As(err, &terr) && terr.Kind == transport.KindFileNotFound
}
