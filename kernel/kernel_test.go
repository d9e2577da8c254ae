package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteDelegatesToExecFunc(t *testing.T) {
	var gotCode string
	k := New(func(code string) (string, string, error) {
		gotCode = code
		return "out", "", nil
	})

	stdout, stderr, err := k.Execute("print(1)")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", gotCode)
	assert.Equal(t, "out", stdout)
	assert.Empty(t, stderr)
}
