package remotefs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mpytool/there/remotefs/literal"
	"github.com/mpytool/there/transport"
)

// Sha256 returns the SHA-256 digest of p's contents, hex-encoded.
// Preferred path: the board hashes its own file with uhashlib,
// avoiding a full streamed transfer. When uhashlib is unavailable
// (ImportError, caught via the typed classifier), the file is
// streamed to the host and hashed locally instead. A missing file
// yields "" (the empty-digest sentinel b'' that
// original_source/there/repl_connection.py returns for the same case,
// not sha256 of the empty string, which is a real file's possible
// digest), so that sync treats it as "must copy" rather than erroring
// (spec.md §4.3, §7 recovery policy 2 treats any OsError/FileNotFound
// the same way for this purpose) without colliding with a genuinely
// empty file's digest.
func (p *Path) Sha256() (string, error) {
	digest, err := p.remoteSha256()
	if err == nil {
		return digest, nil
	}

	var terr *transport.Error
	if errors.As(err, &terr) {
		switch terr.Kind {
		case transport.KindImportError:
			return p.hostSha256()
		case transport.KindFileNotFound, transport.KindOsError:
			return emptySha256(), nil
		}
	}
	return "", err
}

func (p *Path) remoteSha256() (string, error) {
	program := fmt.Sprintf(`import uhashlib
_h = uhashlib.sha256()
_f = open(%s, 'rb')
_mv = memoryview(bytearray(%d))
while True:
    _k = _f.readinto(_mv)
    if not _k:
        break
    _h.update(_mv[:_k])
_f.close()
print(_h.digest())
`, literal.Quote(p.String()), blockSize)
	out, err := p.fs.t.Exec(program, defaultTimeout)
	if err != nil {
		return "", err
	}
	v, err := literal.Parse(out)
	if err != nil {
		return "", fmt.Errorf("remotefs: parsing digest response: %w", err)
	}
	if v.Kind != literal.KindBytes {
		return "", fmt.Errorf("remotefs: unexpected digest shape")
	}
	return hex.EncodeToString(v.Bytes), nil
}

func (p *Path) hostSha256() (string, error) {
	s, err := p.ReadAsStream()
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && (terr.Kind == transport.KindFileNotFound || terr.Kind == transport.KindOsError) {
			return emptySha256(), nil
		}
		return "", err
	}
	defer s.Close()

	h := sha256.New()
	for {
		chunk, err := s.Next()
		if err != nil {
			break
		}
		h.Write(chunk)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// emptySha256 is the sentinel digest for a missing file: the empty
// byte string b'', not the digest of zero bytes (which is a real,
// distinct value any empty-but-present file would also produce).
func emptySha256() string {
	return ""
}
