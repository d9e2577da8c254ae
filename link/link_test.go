package link

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFakeBoard listens on an ephemeral TCP port and, for each
// accepted connection, first swallows the CTRL-C/B + CTRL-C/A raw-mode
// entry sequence, then replies with each of responses in turn every
// time it sees a 0x04 (end-of-code) byte on the wire.
func startFakeBoard(t *testing.T, responses []string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		entry := make([]byte, 4) // CtrlC,CtrlB,CtrlC,CtrlA
		if _, err := fillFull(conn, entry); err != nil {
			return
		}

		r := bufio.NewReader(conn)
		for _, resp := range responses {
			for {
				b, err := r.ReadByte()
				if err != nil {
					return
				}
				if b == CtrlD {
					break
				}
			}
			if _, err := conn.Write([]byte(resp)); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String()
}

func fillFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func TestOpenEntersRawModeOverSocket(t *testing.T) {
	addr := startFakeBoard(t, nil)

	l, err := Open(Config{Port: "socket://" + addr})
	require.NoError(t, err)
	defer l.Close()
}

func TestWriteAndReadPacketFraming(t *testing.T) {
	addr := startFakeBoard(t, []string{"OK hello world\x04\x04>"})

	l, err := Open(Config{Port: "socket://" + addr})
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Write([]byte("pass")))
	require.NoError(t, l.Write([]byte{CtrlD}))

	packet, err := l.ReadPacket(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "OK hello world\x04", string(packet))
}

func TestReadPacketTimesOutWithNoData(t *testing.T) {
	addr := startFakeBoard(t, nil)

	l, err := Open(Config{Port: "socket://" + addr})
	require.NoError(t, err)
	defer l.Close()

	_, err = l.ReadPacket(100 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestMultipleSequentialPackets(t *testing.T) {
	addr := startFakeBoard(t, []string{"OK1\x04\x04>", "OK2\x04\x04>"})

	l, err := Open(Config{Port: "socket://" + addr})
	require.NoError(t, err)
	defer l.Close()

	for _, want := range []string{"OK1\x04", "OK2\x04"} {
		require.NoError(t, l.Write([]byte{CtrlD}))
		packet, err := l.ReadPacket(2 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, string(packet))
	}
}

func TestBaudRateDefaultsWhenUnset(t *testing.T) {
	addr := startFakeBoard(t, nil)
	l, err := Open(Config{Port: "socket://" + addr})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 115200, l.BaudRate())
}

func TestParseHostPort(t *testing.T) {
	host, port, err := ParseHostPort("192.168.1.5:8023")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5", host)
	assert.Equal(t, 8023, port)

	_, _, err = ParseHostPort("not-a-hostport")
	assert.Error(t, err)
}
