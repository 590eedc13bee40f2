// Package testutil provides fixtures and helpers shared by the gridwarp tests:
// project root discovery, synthetic rasters and grid tables written to temp dirs.
package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var projectRoot = sync.OnceValues(func() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}

	// Walk up from this file until a go.mod appears
	for dir := filepath.Dir(filename); ; dir = filepath.Dir(dir) {
		if FileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("could not find go.mod file starting from %s", filepath.Dir(filename))
		}
	}
})

// GetProjectRoot returns the directory holding go.mod.
func GetProjectRoot() (string, error) {
	return projectRoot()
}

// GetProjectRootValidated returns the project root after checking that it is the
// gridwarp module and not some enclosing one.
func GetProjectRootValidated() (string, error) {
	root, err := GetProjectRoot()
	if err != nil {
		return "", err
	}
	if err := ValidateProjectRoot(root); err != nil {
		return "", fmt.Errorf("invalid project root %s: %w", root, err)
	}
	return root, nil
}

// ValidateProjectRoot ensures root contains go.mod and the gridwarp sources.
func ValidateProjectRoot(root string) error {
	if !FileExists(filepath.Join(root, "go.mod")) {
		return fmt.Errorf("go.mod not found at %s", root)
	}
	for _, dir := range []string{"internal/warp", "cmd/gridwarp"} {
		if !DirExists(filepath.Join(root, dir)) {
			return fmt.Errorf("required project directory %s not found", dir)
		}
	}
	return nil
}

// GetTestDataDir returns the path to the testdata directory.
func GetTestDataDir(t *testing.T) string {
	t.Helper()

	root, err := GetProjectRoot()
	require.NoError(t, err, "Failed to find project root")
	return filepath.Join(root, "testdata")
}

// GetFixturePath returns the path of a file written by cmd/generate-test-data and
// skips the test when it has not been generated yet.
func GetFixturePath(t *testing.T, filename string) string {
	t.Helper()

	path := filepath.Join(GetTestDataDir(t), "fixtures", filename)
	if !FileExists(path) {
		t.Skipf("fixture %s not generated (run go run ./cmd/generate-test-data)", filename)
	}
	return path
}

// CreateTempDir creates a temporary directory for testing.
func CreateTempDir(t *testing.T) string {
	t.Helper()

	return t.TempDir()
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o750)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists reports whether path is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
