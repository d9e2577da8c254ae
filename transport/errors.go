package transport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies the taxonomy a remote or local failure belongs to,
// per spec.md §7.
type Kind int

const (
	// KindUnknown is never produced by the classifier; it's the zero value.
	KindUnknown Kind = iota
	KindTimeout
	KindProtocolDesync
	KindNotAccepted
	KindFileNotFound
	KindFileExists
	KindPermissionDenied
	KindNoSuchDevice
	KindOsError
	KindValueError
	KindKeyError
	KindImportError
	KindRemoteException
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "Timeout"
	case KindProtocolDesync:
		return "ProtocolDesync"
	case KindNotAccepted:
		return "NotAccepted"
	case KindFileNotFound:
		return "FileNotFound"
	case KindFileExists:
		return "FileExists"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindNoSuchDevice:
		return "NoSuchDevice"
	case KindOsError:
		return "OsError"
	case KindValueError:
		return "ValueError"
	case KindKeyError:
		return "KeyError"
	case KindImportError:
		return "ImportError"
	case KindRemoteException:
		return "RemoteException"
	default:
		return "Unknown"
	}
}

// Error is the typed error surfaced by Exec/ExecRaw and propagated
// unchanged by remotefs/syncengine.
type Error struct {
	Kind   Kind
	Errno  int    // populated for kinds decoded from an OSError
	Detail string // raw traceback text or diagnostic payload
}

func (e *Error) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("%s(%d): %s", e.Kind, e.Errno, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is lets errors.Is(err, &Error{Kind: KindFileNotFound}) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(kind Kind, detail string) error {
	return errors.WithStack(&Error{Kind: kind, Detail: detail})
}

func newOsErr(errno int, detail string) error {
	kind := KindOsError
	switch errno {
	case 2:
		kind = KindFileNotFound
	case 13:
		kind = KindPermissionDenied
	case 17:
		kind = KindFileExists
	case 19:
		kind = KindNoSuchDevice
	}
	return errors.WithStack(&Error{Kind: kind, Errno: errno, Detail: detail})
}

// classify turns the stderr text of a failed exec into a typed error,
// per spec.md §4.2's error classifier and §7's taxonomy table.
func classify(stderr string) error {
	stderr = strings.TrimRight(stderr, "\n")
	if !strings.HasPrefix(stderr, "Traceback") {
		return errors.WithStack(&Error{Kind: KindRemoteException, Detail: stderr})
	}

	lines := strings.Split(stderr, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])

	if rest, ok := cut(last, "OSError:"); ok {
		rest = strings.TrimSpace(rest)
		if errno, detail, ok := parseErrno(rest); ok {
			return newOsErr(errno, detail)
		}
		return newOsErr(0, rest)
	}
	if rest, ok := cut(last, "ValueError:"); ok {
		return newErr(KindValueError, strings.TrimSpace(rest))
	}
	if rest, ok := cut(last, "KeyError:"); ok {
		return newErr(KindKeyError, strings.TrimSpace(rest))
	}
	if rest, ok := cut(last, "ImportError:"); ok {
		return newErr(KindImportError, strings.TrimSpace(rest))
	}
	return errors.WithStack(&Error{Kind: KindRemoteException, Detail: stderr})
}

func cut(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

// parseErrno parses "[Errno 2] ENOENT" into (2, "ENOENT") and a bare
// "2" into (2, "").
func parseErrno(s string) (errno int, detail string, ok bool) {
	if strings.HasPrefix(s, "[Errno ") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return 0, s, false
		}
		n, err := strconv.Atoi(s[len("[Errno "):end])
		if err != nil {
			return 0, s, false
		}
		return n, strings.TrimSpace(s[end+1:]), true
	}
	// "OSError: 19"
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, s, false
	}
	return n, "", true
}
