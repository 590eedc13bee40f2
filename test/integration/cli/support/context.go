// Package support holds the godog step definitions for the gridwarp CLI features.
package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/gridwarp/internal/testutil"
)

// TestContext is the per-scenario state: the last command's outcome and a scratch
// directory that every relative path in a feature resolves against.
type TestContext struct {
	LastCommand   string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// ProjectRoot is substituted for {root}; TempDir for {tmp} and is the command cwd.
	ProjectRoot string
	TempDir     string
	EnvVars     []string
}

// NewTestContext creates the scratch directory and isolates commands from user and
// system configuration files by pointing HOME and XDG_CONFIG_HOME into it.
func NewTestContext() (*TestContext, error) {
	root, err := testutil.GetProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	tempDir, err := os.MkdirTemp("", "gridwarp-feature-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	tc := &TestContext{ProjectRoot: root, TempDir: tempDir}
	tc.AddEnvVar("HOME", tempDir)
	tc.AddEnvVar("XDG_CONFIG_HOME", filepath.Join(tempDir, ".config"))
	return tc, nil
}

// Cleanup removes the scratch directory with everything the scenario wrote.
func (testCtx *TestContext) Cleanup() error {
	if err := os.RemoveAll(testCtx.TempDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for later commands.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, name+"="+value)
}

func (testCtx *TestContext) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}

func (testCtx *TestContext) substituteCommandVariables(command string) string {
	return strings.NewReplacer("{tmp}", testCtx.TempDir, "{root}", testCtx.ProjectRoot).Replace(command)
}
