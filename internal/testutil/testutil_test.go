package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRootValidated()
	require.NoError(t, err)
	assert.True(t, FileExists(filepath.Join(root, "go.mod")))
	assert.True(t, DirExists(filepath.Join(root, "internal", "warp")))
}

func TestValidateProjectRoot(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, ValidateProjectRoot(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o600))
	err := ValidateProjectRoot(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal/warp")
}

func TestGetFixturePathSkipsMissing(t *testing.T) {
	var path string
	t.Run("missing", func(t *testing.T) {
		path = GetFixturePath(t, "does-not-exist.pgm")
	})
	assert.Empty(t, path, "GetFixturePath must skip before returning")
}

func TestEnsureDir(t *testing.T) {
	testDir := filepath.Join(CreateTempDir(t), "test", "nested", "dir")

	require.NoError(t, EnsureDir(testDir))
	assert.True(t, DirExists(testDir))
	assert.False(t, DirExists(filepath.Join(testDir, "missing")))
}

func TestFileExists(t *testing.T) {
	assert.False(t, FileExists("/non/existent/file"))
}
