package remotefs

import (
	"encoding/base64"
	"fmt"
	"io"

	"github.com/mpytool/there/remotefs/literal"
)

// blockSize is the board-side read chunk, fixed per spec.md §4.3.
const blockSize = 512

// ByteStream is a pull-based, single-pass iterator over a remote
// file's contents, 512 bytes at a time (spec.md §9's "generator
// semantics": a finite lazy producer the caller must drain or close).
// The zero value is not usable; obtain one from Path.ReadAsStream.
type ByteStream struct {
	p       *Path
	blocks  int
	pending [][]byte
	atEOF   bool
	done    bool
	closed  bool
}

// ReadAsStream opens p for streamed reading. The per-call batch size
// is chosen so that one round trip moves roughly a second's worth of
// bytes at the link's baud rate (spec.md §4.3: max(1, baud/5120)).
func (p *Path) ReadAsStream() (*ByteStream, error) {
	program := fmt.Sprintf(`import ubinascii as _ub
f = open(%s, 'rb')
_mv = memoryview(bytearray(%d))
def _b(n):
    r = []
    for _ in range(n):
        k = f.readinto(_mv)
        if not k:
            break
        r.append(_ub.b2a_base64(_mv[:k]).decode().strip())
    print(r)
`, literal.Quote(p.String()), blockSize)
	if _, err := p.fs.t.Exec(program, defaultTimeout); err != nil {
		return nil, err
	}

	blocks := p.fs.t.BaudRate() / (blockSize * 10)
	if blocks < 1 {
		blocks = 1
	}
	return &ByteStream{p: p, blocks: blocks}, nil
}

// Next returns the next 512-byte block (the final block of a file may
// be shorter), io.EOF when the file is exhausted, or any remote error.
// Next must not be called again after it returns io.EOF or an error.
// Internally, blocks are fetched from the board a batch at a time and
// queued, so the board round trip and the caller's chunk granularity
// are independent (spec.md §4.3, §8 scenario S3).
func (s *ByteStream) Next() ([]byte, error) {
	if len(s.pending) == 0 {
		if s.done {
			return nil, io.EOF
		}
		if err := s.fetchBatch(); err != nil {
			s.done = true
			return nil, err
		}
		if len(s.pending) == 0 {
			s.done = true
			return nil, io.EOF
		}
	}
	chunk := s.pending[0]
	s.pending = s.pending[1:]
	if len(s.pending) == 0 && s.atEOF {
		s.done = true
	}
	return chunk, nil
}

func (s *ByteStream) fetchBatch() error {
	out, err := s.p.fs.t.Exec(fmt.Sprintf("_b(%d)\n", s.blocks), defaultTimeout)
	if err != nil {
		return err
	}
	v, err := literal.Parse(out)
	if err != nil {
		return fmt.Errorf("remotefs: parsing stream batch: %w", err)
	}
	if v.Kind != literal.KindList {
		return fmt.Errorf("remotefs: unexpected stream batch shape")
	}
	for _, item := range v.Items {
		chunk, err := base64.StdEncoding.DecodeString(item.Str)
		if err != nil {
			return fmt.Errorf("remotefs: decoding stream batch: %w", err)
		}
		s.pending = append(s.pending, chunk)
	}
	if len(v.Items) < s.blocks {
		s.atEOF = true
	}
	return nil
}

// Close tears down the remote file handle and buffer. Safe to call
// even after Next has already returned io.EOF; safe to call more than
// once.
func (s *ByteStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_, err := s.p.fs.t.Exec("f.close()\ndel f, _mv, _b\n", defaultTimeout)
	return err
}

// ReadBytes reads the entire file in one call, draining ReadAsStream
// to completion.
func (p *Path) ReadBytes() ([]byte, error) {
	s, err := p.ReadAsStream()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var out []byte
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
}

// WriteBytes writes data to p in its entirety, overwriting any
// existing content, streamed in 512-byte base64 chunks so no single
// exec call carries more than one block's worth of literal text
// (spec.md §4.3's streaming write).
func (p *Path) WriteBytes(data []byte) error {
	preamble := fmt.Sprintf("import ubinascii as _ub\nf = open(%s, 'wb')\n", literal.Quote(p.String()))
	if _, err := p.fs.t.Exec(preamble, defaultTimeout); err != nil {
		return err
	}

	for off := 0; off < len(data); off += blockSize {
		end := off + blockSize
		if end > len(data) {
			end = len(data)
		}
		chunk := base64.StdEncoding.EncodeToString(data[off:end])
		program := fmt.Sprintf("f.write(_ub.a2b_base64(%s))\n", literal.Quote(chunk))
		if _, err := p.fs.t.Exec(program, defaultTimeout); err != nil {
			_, _ = p.fs.t.Exec("f.close()\ndel f, _ub\n", defaultTimeout)
			return err
		}
	}

	if _, err := p.fs.t.Exec("f.close()\ndel f, _ub\n", defaultTimeout); err != nil {
		return err
	}
	p.clearCache()
	return nil
}

// DumpBlockDevice streams the raw contents of a block device (e.g.
// "/dev/flash") to w, 512 bytes at a time. This is SPEC_FULL.md's
// supplemented low-level dump feature, used by the CLI's "save" verb
// to pull a full-image backup off the board's internal flash.
func (p *Path) DumpBlockDevice(w io.Writer, device string) error {
	preamble := fmt.Sprintf(`import os
_bd = os.AbstractBlockDev if hasattr(os, 'AbstractBlockDev') else None
_f = open(%s, 'rb')
`, literal.Quote(device))
	if _, err := p.fs.t.Exec(preamble, defaultTimeout); err != nil {
		return err
	}
	defer func() {
		_, _ = p.fs.t.Exec("_f.close()\ndel _f\n", defaultTimeout)
	}()

	for {
		out, err := p.fs.t.Exec(fmt.Sprintf(`import ubinascii as _ub
_c = _f.read(%d)
print(_ub.b2a_base64(_c).decode().strip() if _c else '')
`, blockSize), defaultTimeout)
		if err != nil {
			return err
		}
		v, err := literal.Parse(out)
		if err != nil {
			return fmt.Errorf("remotefs: parsing block-device chunk: %w", err)
		}
		if v.Kind != literal.KindString || v.Str == "" {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(v.Str)
		if err != nil {
			return fmt.Errorf("remotefs: decoding block-device chunk: %w", err)
		}
		if _, err := w.Write(decoded); err != nil {
			return err
		}
	}
}
