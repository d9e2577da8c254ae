package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapedBasics(t *testing.T) {
	assert.Equal(t, `\ `, Escaped(" "))
	assert.Equal(t, `\n`, Escaped("\n"))
	assert.Equal(t, `\\`, Escaped("\\"))
	assert.Equal(t, `\x01`, Escaped("\x01"))
	assert.Equal(t, "plain", Escaped("plain"))
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"plain.txt",
		"has space.txt",
		"has\ttab.txt",
		"has\x01control.txt",
		"trailing\\backslash",
	} {
		got, err := Unescape(Escaped(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestUnescapeInvalid(t *testing.T) {
	_, err := Unescape(`bad\`)
	assert.Error(t, err)
	_, err = Unescape(`bad\q`)
	assert.Error(t, err)
}
