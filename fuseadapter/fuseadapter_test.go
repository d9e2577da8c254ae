package fuseadapter

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpytool/there/transport"
)

func TestErrnoForMapsKnownKinds(t *testing.T) {
	assert.Equal(t, syscall.Errno(0), errnoFor(nil))
	assert.Equal(t, syscall.ENOENT, errnoFor(&transport.Error{Kind: transport.KindFileNotFound}))
	assert.Equal(t, syscall.EACCES, errnoFor(&transport.Error{Kind: transport.KindPermissionDenied}))
	assert.Equal(t, syscall.EEXIST, errnoFor(&transport.Error{Kind: transport.KindFileExists}))
	assert.Equal(t, syscall.EIO, errnoFor(&transport.Error{Kind: transport.KindOsError}))
	assert.Equal(t, syscall.EIO, errnoFor(assert.AnError))
}
