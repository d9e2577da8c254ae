// Package link owns the raw byte connection to the board: opening the
// serial port (or a socket:// tunnel), the login sub-protocol, raw-REPL
// mode entry/exit, and framing the incoming byte stream into response
// packets terminated by "\x04>".
package link

import (
	"bufio"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/mpytool/there/internal/xlog"
)

// Control bytes recognized by the board's raw REPL, per spec.md §6.
const (
	CtrlA byte = 0x01 // enter raw REPL
	CtrlB byte = 0x02 // leave raw REPL
	CtrlC byte = 0x03 // interrupt
	CtrlD byte = 0x04 // end-of-code / run now
)

// terminator is the two-byte sequence "\x04>" the board prints at the
// end of every response while in raw mode.
var terminator = []byte{CtrlD, '>'}

// Config describes how to reach the board.
type Config struct {
	Port     string // device path, hwgrep pattern, or socket://host:port
	Baud     int
	User     string // login sub-protocol, socket-tunneled boards only
	Password string
	Timeout  time.Duration // floor is 1s, enforced by Open
}

const minTimeout = 1 * time.Second

// rawPort is the minimal surface Link needs from either a real serial
// port or a socket:// TCP connection.
type rawPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
}

// Link owns the port, a dedicated reader goroutine, and the packet
// channel it feeds. Exactly one exec may be in flight at a time;
// enforcing that is transport's job, not link's.
type Link struct {
	port     rawPort
	isSocket bool
	baud     int

	packets chan []byte // depth 1: a second packet before the first is drained means desync
	reads   chan []byte // allocated by Open; nothing sends on or receives from it
	done    chan struct{}
}

// Open opens the port, runs the login sub-protocol if a user is given,
// and drives raw-REPL mode entry.
func Open(cfg Config) (*Link, error) {
	if cfg.Timeout < minTimeout {
		cfg.Timeout = minTimeout
	}

	port, isSocket, err := dial(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "link: open")
	}

	l := &Link{
		port:     port,
		isSocket: isSocket,
		baud:     cfg.Baud,
		packets:  make(chan []byte, 1),
		reads:    make(chan []byte),
		done:     make(chan struct{}),
	}

	if cfg.User != "" {
		if err := l.login(cfg.User, cfg.Password); err != nil {
			_ = l.Close()
			return nil, errors.Wrap(err, "link: login")
		}
	}

	go l.readLoop()

	if err := l.enterRawMode(isSocket); err != nil {
		_ = l.Close()
		return nil, errors.Wrap(err, "link: enter raw mode")
	}

	return l, nil
}

func dial(cfg Config) (rawPort, bool, error) {
	if strings.HasPrefix(cfg.Port, "socket://") {
		u, err := url.Parse(cfg.Port)
		if err != nil {
			return nil, false, errors.Wrap(err, "parse socket:// url")
		}
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, false, errors.Wrap(err, "dial socket")
		}
		return &socketPort{conn: conn}, true, nil
	}

	mode := &serial.Mode{BaudRate: cfg.Baud}
	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, false, errors.Wrap(err, "open serial port")
	}
	return &serialPort{Port: p}, false, nil
}

// BaudRate used for the streaming block-size heuristic in remotefs.
func (l *Link) BaudRate() int {
	if l.baud <= 0 {
		return 115200
	}
	return l.baud
}

// login waits for the literal prompts "Login as: " and "Password: " and
// answers them, for socket-tunneled boards (spec.md §4.1, §6).
func (l *Link) login(user, password string) error {
	if err := l.waitFor("Login as: "); err != nil {
		return err
	}
	if err := l.Write([]byte(user + "\r\n")); err != nil {
		return err
	}
	if err := l.waitFor("Password: "); err != nil {
		return err
	}
	return l.Write([]byte(password + "\r\n"))
}

// waitFor reads raw bytes (bypassing the packet framer, which isn't
// running yet in any meaningful way before raw mode) until prompt has
// been seen verbatim or the read times out.
func (l *Link) waitFor(prompt string) error {
	deadline := time.Now().Add(10 * time.Second)
	var buf strings.Builder
	tmp := make([]byte, 1)
	for time.Now().Before(deadline) {
		_ = l.port.SetReadTimeout(200 * time.Millisecond)
		n, err := l.port.Read(tmp)
		if n > 0 {
			buf.WriteByte(tmp[0])
			if strings.HasSuffix(buf.String(), prompt) {
				return nil
			}
		}
		if err != nil && !isTimeout(err) {
			return err
		}
	}
	return errors.Errorf("link: timed out waiting for prompt %q", prompt)
}

// enterRawMode drives the CTRL-C/CTRL-B/CTRL-A sequence described in
// spec.md §4.1, and, on socket:// connections, drains with a raw
// nonblocking read instead of resetting the input buffer (the
// socket-tunnel quirk spec.md calls out).
func (l *Link) enterRawMode(isSocket bool) error {
	if err := l.Write([]byte{CtrlC, CtrlB}); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	if err := l.Write([]byte{CtrlC, CtrlA}); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)

	if isSocket {
		l.rawDrain(100 * time.Millisecond)
	} else {
		l.drainPackets()
	}
	return nil
}

// rawDrain reads and discards whatever is on the wire for dur, used
// instead of ResetInputBuffer on socket:// links.
func (l *Link) rawDrain(dur time.Duration) {
	deadline := time.Now().Add(dur)
	buf := make([]byte, 256)
	for time.Now().Before(deadline) {
		_ = l.port.SetReadTimeout(20 * time.Millisecond)
		_, err := l.port.Read(buf)
		if err != nil && !isTimeout(err) {
			return
		}
	}
}

// drainPackets discards any packet that had already queued up.
func (l *Link) drainPackets() {
	select {
	case p := <-l.packets:
		xlog.Debugf(l, "drained stray packet on mode entry: %q", p)
	default:
	}
}

// Write sends raw bytes to the board.
func (l *Link) Write(p []byte) error {
	_, err := l.port.Write(p)
	return errors.Wrap(err, "link: write")
}

// ReadPacket waits up to timeout for exactly one complete response
// packet. A timeout of 0 means "don't wait" and always times out
// immediately unless one is already queued.
func (l *Link) ReadPacket(timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		select {
		case p := <-l.packets:
			return p, nil
		default:
			return nil, ErrTimeout
		}
	}
	select {
	case p := <-l.packets:
		return p, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	case <-l.done:
		return nil, errors.New("link: closed while waiting for packet")
	}
}

// ErrTimeout is returned by ReadPacket when no packet arrives in time.
var ErrTimeout = errors.New("link: read timeout")

// readLoop accumulates bytes from the port and emits a packet every
// time the "\x04>" terminator is seen, per spec.md §4.1's framing rule.
// There are no escape sequences.
func (l *Link) readLoop() {
	r := bufio.NewReaderSize(&portReader{port: l.port}, 4096)
	var buf []byte
	tmp := make([]byte, 1024)
	for {
		_ = l.port.SetReadTimeout(500 * time.Millisecond)
		n, err := r.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				idx := indexTerminator(buf)
				if idx < 0 {
					break
				}
				packet := append([]byte(nil), buf[:idx]...)
				buf = buf[idx+len(terminator):]
				select {
				case l.packets <- packet:
				case <-l.done:
					return
				}
			}
		}
		if err != nil && !isTimeout(err) {
			select {
			case <-l.done:
			default:
				xlog.Errorf(l, "read loop ended: %v", err)
			}
			return
		}
		select {
		case <-l.done:
			return
		default:
		}
	}
}

func indexTerminator(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == terminator[0] && buf[i+1] == terminator[1] {
			return i
		}
	}
	return -1
}

// Close interrupts any running code, leaves raw mode, and releases the
// port.
func (l *Link) Close() error {
	_ = l.Write([]byte{CtrlC, CtrlB})
	close(l.done)
	return l.port.Close()
}

// Stop detaches the reader but leaves the port open, handing the raw
// handle to a caller (the terminal passthrough) that wants to reuse it.
// Unlike Close, it only sends CTRL-B so no running program is
// interrupted.
func (l *Link) Stop() (io.ReadWriteCloser, error) {
	_ = l.Write([]byte{CtrlB})
	close(l.done)
	return l.port, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if t, ok := err.(timeouter); ok {
		return t.Timeout()
	}
	return false
}

// portReader adapts rawPort.Read into io.Reader for bufio, swallowing
// timeout errors as zero-byte reads so the caller's poll loop keeps
// going instead of bufio treating it as EOF.
type portReader struct {
	port rawPort
}

func (r *portReader) Read(p []byte) (int, error) {
	n, err := r.port.Read(p)
	if err != nil && isTimeout(err) {
		return n, nil
	}
	return n, err
}

// serialPort adapts go.bug.st/serial.Port to rawPort.
type serialPort struct {
	serial.Port
}

func (p *serialPort) SetReadTimeout(d time.Duration) error {
	return p.Port.SetReadTimeout(d)
}

// socketPort adapts a net.Conn (socket:// tunnels) to rawPort.
type socketPort struct {
	conn net.Conn
}

func (p *socketPort) Read(b []byte) (int, error)  { return p.conn.Read(b) }
func (p *socketPort) Write(b []byte) (int, error) { return p.conn.Write(b) }
func (p *socketPort) Close() error                { return p.conn.Close() }
func (p *socketPort) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return p.conn.SetReadDeadline(time.Time{})
	}
	return p.conn.SetReadDeadline(time.Now().Add(d))
}

// ParseHostPort splits a "host:port" string and parses the port as a
// decimal number.
func ParseHostPort(hostport string) (host string, port int, err error) {
	h, p, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, errors.Wrap(err, "invalid port")
	}
	return h, n, nil
}
