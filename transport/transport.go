// Package transport implements the raw-REPL exec protocol (spec.md
// §4.2): submitting a program to the board and getting back its
// stdout/stderr, with remote tracebacks decoded into the typed error
// taxonomy in errors.go.
package transport

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mpytool/there/internal/xlog"
)

// packetLink is the subset of *link.Link that transport needs. Defined
// here (not imported from link) so transport can be tested against a
// fake without round-tripping through a real serial port.
type packetLink interface {
	Write(p []byte) error
	ReadPacket(timeout time.Duration) ([]byte, error)
}

// baudRater is implemented by *link.Link; Transport forwards it so
// remotefs can size its streaming batches without importing link
// directly (spec.md §4.3's "max(1, baud/5120)" heuristic).
type baudRater interface {
	BaudRate() int
}

// stopper is implemented by *link.Link; Transport forwards it so the
// terminal package can get at the raw handle without importing link
// directly.
type stopper interface {
	Stop() (io.ReadWriteCloser, error)
}

// state tracks whether the transport is known to be in sync with the
// board, per spec.md §3's "any exec timeout places the transport in
// UNKNOWN state" invariant.
type state int

const (
	stateOK state = iota
	stateUnknown
)

// Transport drives one board over one Link. Exactly one exec may be
// in flight at a time (spec.md §9); execMu enforces that for callers
// sharing a Transport across goroutines.
type Transport struct {
	link packetLink

	execMu sync.Mutex
	state  state

	// Interrupted is checked between issuing a request and waiting for
	// its response; if it returns true, a CTRL-C is forwarded to the
	// board before resuming the wait (spec.md §4.2 step 5, §5
	// Cancellation). Nil means interrupts are never delivered.
	Interrupted func() bool

	LogProgram bool // mirrors spec.md §4.2 step 1: optionally log the program
}

// New wraps an already-open link.
func New(l packetLink) *Transport {
	return &Transport{link: l}
}

// unknown reports whether the transport is in the UNKNOWN state, i.e.
// no longer known to be synchronized with the board.
func (t *Transport) unknown() bool { return t.state == stateUnknown }

// BaudRate reports the link's configured baud rate, or 115200 if the
// underlying link doesn't expose one (e.g. a test fake).
func (t *Transport) BaudRate() int {
	if br, ok := t.link.(baudRater); ok {
		return br.BaudRate()
	}
	return 115200
}

// ExecRaw submits program to the board and returns its raw stdout and
// stderr, exactly as spec.md §4.2 describes. A timeout of 0 is
// fire-and-forget: the program is sent and ExecRaw returns immediately
// without waiting for (or discarding) the response.
func (t *Transport) ExecRaw(program string, timeout time.Duration) (stdout, stderr string, err error) {
	t.execMu.Lock()
	defer t.execMu.Unlock()

	if t.LogProgram {
		xlog.Debugf(t, "exec: %s", program)
	}

	// Step 2: drain any stray packet left over from a prior desync.
	if stray, err := t.link.ReadPacket(0); err == nil {
		xlog.Logf(t, "discarding stray packet before exec: %q", stray)
	}

	if err := t.link.Write([]byte(program)); err != nil {
		t.state = stateUnknown
		return "", "", errors.Wrap(err, "transport: write program")
	}
	if err := t.link.Write([]byte{0x04}); err != nil {
		t.state = stateUnknown
		return "", "", errors.Wrap(err, "transport: write soft-eot")
	}

	if timeout == 0 {
		return "", "", nil
	}

	packet, err := t.waitForPacket(timeout)
	if err != nil {
		t.state = stateUnknown
		return "", "", err
	}

	out, errOut, err := splitPacket(packet)
	if err != nil {
		t.state = stateUnknown
		return "", "", err
	}
	return out, errOut, nil
}

// waitForPacket waits for one response packet, forwarding a CTRL-C and
// waiting again if an interrupt is pending (spec.md §4.2 step 5).
func (t *Transport) waitForPacket(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		if t.Interrupted != nil && t.Interrupted() {
			_ = t.link.Write([]byte{0x03, 0x03})
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			remaining = time.Millisecond
		}
		packet, err := t.link.ReadPacket(remaining)
		if err == nil {
			return packet, nil
		}
		if time.Now().After(deadline) {
			return nil, newErr(KindTimeout, "no response within timeout")
		}
	}
}

// splitPacket implements spec.md §4.2 steps 6-8: split at the first
// 0x04, require an OK prefix on stdout, strip it.
func splitPacket(packet []byte) (stdout, stderr string, err error) {
	idx := indexByte(packet, 0x04)
	if idx < 0 {
		return "", "", newErr(KindProtocolDesync, "no 0x04 separator in response")
	}
	out, errOut := packet[:idx], packet[idx+1:]
	if !strings.HasPrefix(string(out), "OK") {
		return "", "", newErr(KindNotAccepted, string(packet))
	}
	return string(out[2:]), string(errOut), nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// Exec is ExecRaw with stderr classified into a typed error on
// failure, per spec.md §4.2's Exec description. program is given a
// trailing newline if it lacks one.
func (t *Transport) Exec(program string, timeout time.Duration) (string, error) {
	if !strings.HasSuffix(program, "\n") {
		program += "\n"
	}
	stdout, stderr, err := t.ExecRaw(program, timeout)
	if err != nil {
		return "", err
	}
	if stderr != "" {
		return "", classify(stderr)
	}
	return stdout, nil
}

// Stop hands the underlying link's raw handle to the caller (the
// terminal passthrough) by delegating to the link's own Stop. The
// transport records no state of its own for this; no further Exec call
// should be made on it afterward.
func (t *Transport) Stop() (io.ReadWriteCloser, error) {
	s, ok := t.link.(stopper)
	if !ok {
		return nil, errors.New("transport: underlying link does not support Stop")
	}
	return s.Stop()
}

// Interrupt asynchronously stops a running program (spec.md §4.2,
// §5 Cancellation).
func (t *Transport) Interrupt() error {
	return errors.Wrap(t.link.Write([]byte{0x03, 0x03}), "transport: interrupt")
}

// SoftReset triggers a board reset, per spec.md §4.2. When runMain is
// true, raw mode is left before reset (so main.py executes), then
// re-entered; when false, autostart is suppressed and the boot banner
// is consumed with a single-space exec.
func (t *Transport) SoftReset(runMain bool) error {
	if runMain {
		t.execMu.Lock()
		defer t.execMu.Unlock()
		return errors.Wrap(t.link.Write([]byte{0x03, 0x03, 0x02, 0x04, 0x01}), "transport: soft reset (run main)")
	}

	t.execMu.Lock()
	err := t.link.Write([]byte{0x03, 0x03, 0x04})
	t.execMu.Unlock()
	if err != nil {
		return errors.Wrap(err, "transport: soft reset (no autostart)")
	}
	_, err = t.Exec(" ", 3*time.Second)
	return err
}

// Resynchronize is the recovery spec.md §3/§5 requires after a timeout
// leaves the transport in UNKNOWN state: interrupt, drain, and mark
// the transport healthy again. Callers must still re-enter raw mode at
// the link level if the desync was severe; this clears transport-level
// bookkeeping only.
func (t *Transport) Resynchronize() error {
	if err := t.Interrupt(); err != nil {
		return err
	}
	for {
		if _, err := t.link.ReadPacket(200 * time.Millisecond); err != nil {
			break
		}
	}
	t.state = stateOK
	return nil
}
