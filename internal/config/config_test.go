package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FindsConfigInParentDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".zipkit"), []byte("[add]\nmethod = store\npermissions = 644\n"), 0o644))

	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(sub))

	path, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".zipkit"), path)

	cfg := ForAdd()
	assert.Equal(t, "store", cfg.Method)
	assert.Equal(t, os.FileMode(0o644), cfg.Permissions)
}
