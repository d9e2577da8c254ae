package remotefs

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/mpytool/there/remotefs/literal"
	"github.com/mpytool/there/transport"
)

func sha256Of(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// fakeBoard is a minimal stand-in for a real transport: it recognizes
// the exact program shapes this package generates and answers them
// against an in-memory tree, without interpreting arbitrary Python.
// It exists so remotefs's code-generation and response-parsing can be
// tested without a real board or link.
type fakeBoard struct {
	dirs   map[string]bool
	files  map[string][]byte
	rtcRaw [8]int
	baud   int

	readOffset int
	readPath   string
	writeBuf   []byte
	writePath  string

	forceImportError bool
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		dirs:  map[string]bool{"/": true},
		files: map[string][]byte{},
		baud:  115200,
	}
}

func (b *fakeBoard) mkdir(p string) { b.dirs[p] = true }
func (b *fakeBoard) put(p string, data []byte) {
	b.files[p] = data
	b.dirs[path.Dir(p)] = true
}

func (b *fakeBoard) BaudRate() int { return b.baud }

func quotedArg(program, marker string) string {
	idx := strings.Index(program, marker)
	if idx < 0 {
		return ""
	}
	rest := program[idx+len(marker):]
	parts := strings.SplitN(rest, "'", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func (b *fakeBoard) statLiteral(p string) (string, error) {
	if b.dirs[p] {
		return "(16877, 0, 0, 0, 0, 0, 0, 0, 0, 0)\n", nil
	}
	if data, ok := b.files[p]; ok {
		return fmt.Sprintf("(33188, 0, 0, 0, 0, 0, %d, 0, 0, 0)\n", len(data)), nil
	}
	return "", &transport.Error{Kind: transport.KindFileNotFound, Errno: 2, Detail: p}
}

// Exec pattern-matches the generated program against the shapes
// produced by stat.go/iterdir.go/ops.go/io.go/hash.go/rtc.go.
func (b *fakeBoard) Exec(program string, timeout time.Duration) (string, error) {
	trimmed := strings.TrimSpace(program)

	switch {
	case strings.Contains(program, "os.listdir("):
		dir := quotedArg(program, "os.listdir(")
		prefix := dir
		if prefix != "/" {
			prefix += "/"
		}
		var items []string
		seen := map[string]bool{}
		add := func(full string) {
			if full == dir || !strings.HasPrefix(full, prefix) {
				return
			}
			rest := full[len(prefix):]
			if rest == "" || strings.Contains(rest, "/") {
				return
			}
			if seen[rest] {
				return
			}
			seen[rest] = true
			stat, _ := b.statLiteral(full)
			items = append(items, fmt.Sprintf("[%s, %s]", literal.Quote(rest), strings.TrimSpace(stat)))
		}
		for d := range b.dirs {
			add(d)
		}
		for f := range b.files {
			add(f)
		}
		return "[" + strings.Join(items, ", ") + "]\n", nil

	case strings.Contains(program, "os.stat("):
		p := quotedArg(program, "os.stat(")
		return b.statLiteral(p)

	case strings.Contains(program, "os.remove("):
		p := quotedArg(program, "os.remove(")
		if _, ok := b.files[p]; !ok {
			return "", &transport.Error{Kind: transport.KindFileNotFound, Errno: 2, Detail: p}
		}
		delete(b.files, p)
		return "None\n", nil

	case strings.Contains(program, "os.rename("):
		idx := strings.Index(program, "os.rename(")
		rest := program[idx+len("os.rename("):]
		parts := strings.SplitN(rest, "'", 5)
		from, to := parts[1], parts[3]
		data, ok := b.files[from]
		if !ok {
			return "", &transport.Error{Kind: transport.KindFileNotFound, Errno: 2, Detail: from}
		}
		delete(b.files, from)
		b.files[to] = data
		return "None\n", nil

	case strings.Contains(program, "os.mkdir("):
		p := quotedArg(program, "os.mkdir(")
		if b.dirs[p] {
			return "", &transport.Error{Kind: transport.KindFileExists, Errno: 17, Detail: p}
		}
		b.dirs[p] = true
		return "None\n", nil

	case strings.Contains(program, "os.rmdir("):
		p := quotedArg(program, "os.rmdir(")
		delete(b.dirs, p)
		return "None\n", nil

	case strings.Contains(program, "uhashlib"):
		p := quotedArg(program, "open(")
		if b.forceImportError {
			return "", &transport.Error{Kind: transport.KindImportError, Detail: "no module named 'uhashlib'"}
		}
		data, ok := b.files[p]
		if !ok {
			return "", &transport.Error{Kind: transport.KindFileNotFound, Errno: 2, Detail: p}
		}
		sum := sha256Of(data)
		return "b" + literal.Quote(string(sum)) + "\n", nil

	case strings.Contains(program, "def _b("):
		p := quotedArg(program, "open(")
		if _, ok := b.files[p]; !ok {
			return "", &transport.Error{Kind: transport.KindFileNotFound, Errno: 2, Detail: p}
		}
		b.readPath = p
		b.readOffset = 0
		return "\n", nil

	case strings.HasPrefix(trimmed, "_b("):
		n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(trimmed, "_b("), ")"))
		data := b.files[b.readPath]
		var chunks []string
		for i := 0; i < n; i++ {
			if b.readOffset >= len(data) {
				break
			}
			end := b.readOffset + blockSize
			if end > len(data) {
				end = len(data)
			}
			chunks = append(chunks, literal.Quote(base64.StdEncoding.EncodeToString(data[b.readOffset:end])))
			b.readOffset = end
		}
		return "[" + strings.Join(chunks, ", ") + "]\n", nil

	case strings.Contains(program, "f.close()") && strings.Contains(program, "_mv"):
		b.readPath = ""
		return "\n", nil

	case strings.Contains(program, "import ubinascii") && strings.Contains(program, "'wb'"):
		p := quotedArg(program, "open(")
		b.writePath = p
		b.writeBuf = nil
		return "\n", nil

	case strings.HasPrefix(trimmed, "f.write(_ub.a2b_base64("):
		enc := quotedArg(program, "a2b_base64(")
		chunk, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return "", err
		}
		b.writeBuf = append(b.writeBuf, chunk...)
		return "\n", nil

	case strings.Contains(program, "f.close()") && strings.Contains(program, "_ub"):
		if b.writePath != "" {
			b.put(b.writePath, b.writeBuf)
		}
		b.writePath = ""
		return "\n", nil

	case strings.Contains(program, "'ab')") && strings.Contains(program, ".seek("):
		p := quotedArg(program, "open(")
		seekIdx := strings.Index(program, ".seek(")
		rest := program[seekIdx+len(".seek("):]
		end := strings.Index(rest, ")")
		n, _ := strconv.Atoi(strings.TrimSpace(rest[:end]))
		data := b.files[p]
		if n > len(data) {
			padded := make([]byte, n)
			copy(padded, data)
			data = padded
		} else {
			data = data[:n]
		}
		b.put(p, data)
		return fmt.Sprintf("%d\n", n), nil

	case strings.Contains(program, "pyb.RTC().datetime(("):
		idx := strings.Index(program, "datetime((")
		rest := program[idx+len("datetime(("):]
		end := strings.Index(rest, ")")
		fields := strings.Split(rest[:end], ",")
		for i, f := range fields {
			b.rtcRaw[i], _ = strconv.Atoi(strings.TrimSpace(f))
		}
		return "None\n", nil

	case strings.Contains(program, "pyb.RTC().datetime()"):
		v := b.rtcRaw
		return fmt.Sprintf("(%d, %d, %d, %d, %d, %d, %d, %d)\n",
			v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7]), nil
	}

	return "", fmt.Errorf("fakeBoard: unrecognized program: %s", program)
}
