package syncengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncDirectoryIsIdempotent(t *testing.T) {
	// spec.md §8 scenario S4.
	tree := newFakeTree()
	tree.mkdir("/src")
	tree.put("/src/a.txt", []byte("one"))
	tree.mkdir("/src/sub")
	tree.put("/src/sub/b.txt", []byte("two"))
	tree.mkdir("/dst")

	s := New()
	require.NoError(t, s.SyncDirectory(tree.node("/src"), tree.node("/dst"), true))
	assert.Equal(t, 2, s.Copied)
	assert.Equal(t, 0, s.Skipped)

	s2 := New()
	require.NoError(t, s2.SyncDirectory(tree.node("/src"), tree.node("/dst"), true))
	assert.Equal(t, 0, s2.Copied)
	assert.Equal(t, 2, s2.Skipped)
}

func TestSyncDirectoryRequiresExistingDestination(t *testing.T) {
	tree := newFakeTree()
	tree.mkdir("/src")
	tree.put("/src/a.txt", []byte("one"))

	s := New()
	err := s.SyncDirectory(tree.node("/src"), tree.node("/dst"), true)
	assert.Error(t, err)
}

func TestSyncDirectoryPrunesExcludedNames(t *testing.T) {
	tree := newFakeTree()
	tree.mkdir("/src")
	tree.put("/src/a.txt", []byte("one"))
	tree.mkdir("/src/__pycache__")
	tree.put("/src/__pycache__/a.pyc", []byte("junk"))
	tree.mkdir("/dst")

	s := New()
	require.NoError(t, s.SyncDirectory(tree.node("/src"), tree.node("/dst"), true))
	assert.Equal(t, 1, s.Copied)

	_, err := tree.node("/dst/src/__pycache__").ReadBytes()
	assert.Error(t, err)
}

func TestSyncFileRetargetsIntoExistingDirectory(t *testing.T) {
	tree := newFakeTree()
	tree.put("/src/a.txt", []byte("contents"))
	tree.mkdir("/dst")

	s := New()
	require.NoError(t, s.SyncFile(tree.node("/src/a.txt"), tree.node("/dst")))
	assert.Equal(t, 1, s.Copied)

	got, err := tree.node("/dst/a.txt").ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("contents"), got)
}

func TestSyncFileDryRunTouchesNothing(t *testing.T) {
	tree := newFakeTree()
	tree.put("/src/a.txt", []byte("contents"))

	s := New()
	s.DryRun = true
	require.NoError(t, s.SyncFile(tree.node("/src/a.txt"), tree.node("/dst/a.txt")))
	assert.Equal(t, 0, s.Copied)
	assert.Equal(t, 1, s.Skipped)

	_, err := tree.node("/dst/a.txt").ReadBytes()
	assert.Error(t, err)
}

func TestSyncFileHashCheckDetectsSameSizeDifferentContent(t *testing.T) {
	tree := newFakeTree()
	tree.put("/src/a.txt", []byte("aaa"))
	tree.put("/dst/a.txt", []byte("bbb"))

	s := New()
	s.HashCheck = true
	require.NoError(t, s.SyncFile(tree.node("/src/a.txt"), tree.node("/dst/a.txt")))
	assert.Equal(t, 1, s.Copied)

	got, _ := tree.node("/dst/a.txt").ReadBytes()
	assert.Equal(t, []byte("aaa"), got)
}

func TestSyncFileSkipsWhenSizeMatchesAndNoHashCheck(t *testing.T) {
	tree := newFakeTree()
	tree.put("/src/a.txt", []byte("aaa"))
	tree.put("/dst/a.txt", []byte("zzz"))

	s := New()
	require.NoError(t, s.SyncFile(tree.node("/src/a.txt"), tree.node("/dst/a.txt")))
	assert.Equal(t, 0, s.Copied)
	assert.Equal(t, 1, s.Skipped)

	got, _ := tree.node("/dst/a.txt").ReadBytes()
	assert.Equal(t, []byte("zzz"), got)
}

func TestRemoveDirectoryRecursive(t *testing.T) {
	tree := newFakeTree()
	tree.mkdir("/d")
	tree.put("/d/a.txt", []byte("x"))
	tree.mkdir("/d/sub")
	tree.put("/d/sub/b.txt", []byte("y"))

	require.NoError(t, RemoveDirectory(tree.node("/d"), true))

	st, err := tree.node("/d").Stat()
	require.NoError(t, err)
	assert.False(t, st.Exists)
}
