package zipwalk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestZipDirectory_UnzipArchive_RoundTrip(t *testing.T) {
	srcDir := filepath.Join(t.TempDir(), "myproject")
	writeFile(t, filepath.Join(srcDir, "readme.md"), "hello")
	writeFile(t, filepath.Join(srcDir, "pkg", "main.go"), "package main")

	archivePath := filepath.Join(t.TempDir(), "out.zip")
	err := ZipDirectory(context.Background(), srcDir, archivePath, func(o *ZipDirectoryOptions) {
		o.ProgressReporter = NoOpProgressReporter
	})
	require.NoError(t, err)

	extractDir := t.TempDir()
	dir, err := UnzipArchive(context.Background(), archivePath, extractDir, func(o *UnzipArchiveOptions) {
		o.ProgressReporter = NoOpProgressReporter
	})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = os.ReadFile(filepath.Join(dir, "pkg", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main", string(got))
}
