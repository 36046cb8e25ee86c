package zipkit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddIterateExtractRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.zip")

	sess, err := Open(path, CreateNew)
	require.NoError(t, err)

	require.NoError(t, sess.Add("docs/", nil, func(o *AddOptions) {
		o.Permissions = os.ModeDir | 0o755
	}))
	require.NoError(t, sess.Add("docs/readme.md", bytes.NewReader([]byte("hello world")), func(o *AddOptions) {
		o.Compression = Deflate
	}))
	require.NoError(t, sess.Add("raw.bin", bytes.NewReader([]byte{1, 2, 3, 4}), func(o *AddOptions) {
		o.Compression = Store
	}))
	require.NoError(t, sess.Close())

	sess, err = Open(path, Update)
	require.NoError(t, err)

	var paths []string
	for entry, err := range sess.Iterate() {
		require.NoError(t, err)
		paths = append(paths, entry.Path())
	}
	assert.ElementsMatch(t, []string{"docs/", "docs/readme.md", "raw.bin"}, paths)

	entry, ok, err := sess.Lookup("docs/readme.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindFile, entry.Kind())

	var buf bytes.Buffer
	n, err := sess.Extract(entry, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("hello world")), n)
	assert.Equal(t, "hello world", buf.String())

	folders := sess.Preview()
	require.Len(t, folders, 1)
	assert.Equal(t, "docs", folders[0].Path)
	require.Len(t, folders[0].Files, 1)
	assert.Equal(t, "docs/readme.md", folders[0].Files[0].Path)

	rawEntry, ok, err := sess.Lookup("raw.bin")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, sess.Remove(rawEntry))

	paths = paths[:0]
	for entry, err := range sess.Iterate() {
		require.NoError(t, err)
		paths = append(paths, entry.Path())
	}
	assert.ElementsMatch(t, []string{"docs/", "docs/readme.md"}, paths)

	require.NoError(t, sess.Close())
}

func TestSession_ExtractToPath(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "archive.zip")
	sess, err := Open(archivePath, CreateNew)
	require.NoError(t, err)
	require.NoError(t, sess.Add("a.txt", bytes.NewReader([]byte("abc"))))
	require.NoError(t, sess.Close())

	sess, err = Open(archivePath, ReadOnly)
	require.NoError(t, err)
	defer sess.Close()

	entry, ok, err := sess.Lookup("a.txt")
	require.NoError(t, err)
	require.True(t, ok)

	dest := filepath.Join(t.TempDir(), "out", "a.txt")
	require.NoError(t, sess.ExtractToPath(entry, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
