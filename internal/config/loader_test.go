package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridwarp.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoaderUsesGivenViper(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "error")
	cfg, err := NewLoader(v).Load(writeConfig(t, "log_level: debug\n"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("Expected explicit setting to win over the file, got %s", cfg.LogLevel)
	}
}

func TestDefaultSettingsCoverEveryKey(t *testing.T) {
	flat, err := defaultSettings()
	if err != nil {
		t.Fatalf("defaultSettings() error: %v", err)
	}
	for _, key := range []string{"log_level", "grid.rows", "warp.out_of_bounds", "output.metrics_file", "batch.exclude"} {
		if _, ok := flat[key]; !ok {
			t.Errorf("Missing default for %s", key)
		}
	}
	if flat["warp.singular"] != DefaultConfig().Warp.Singular {
		t.Errorf("Unexpected singular default %v", flat["warp.singular"])
	}
}

func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Warp.OutOfBounds != "clamp" {
		t.Errorf("Expected default policy 'clamp', got %s", cfg.Warp.OutOfBounds)
	}
}

func TestLoadWithValidYAMLFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
verbose: true
grid:
  reference: ref.yaml
  observed: obs.yaml
warp:
  out_of_bounds: fill
  fill_value: 128
  singular: skip
batch:
  workers: 2
  include: ["*.pgm"]
`)

	cfg, err := NewLoader(nil).Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != debugLevel {
		t.Errorf("Expected log level '%s', got %s", debugLevel, cfg.LogLevel)
	}
	if !cfg.Verbose {
		t.Error("Expected verbose to be true")
	}
	if cfg.Grid.Reference != "ref.yaml" || cfg.Grid.Observed != "obs.yaml" {
		t.Errorf("Unexpected grid tables: %+v", cfg.Grid)
	}
	if cfg.Warp.OutOfBounds != "fill" || cfg.Warp.FillValue != 128 || cfg.Warp.Singular != "skip" {
		t.Errorf("Unexpected warp settings: %+v", cfg.Warp)
	}
	if cfg.Batch.Workers != 2 {
		t.Errorf("Expected 2 batch workers, got %d", cfg.Batch.Workers)
	}
	if len(cfg.Batch.Include) != 1 || cfg.Batch.Include[0] != "*.pgm" {
		t.Errorf("Unexpected include patterns: %v", cfg.Batch.Include)
	}
	// untouched keys keep their defaults
	if cfg.Grid.Rows != DefaultGridSize {
		t.Errorf("Expected default grid rows, got %d", cfg.Grid.Rows)
	}
}

func TestLoadWithInvalidYAMLFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
  invalid indentation
    more bad indentation
`)
	if _, err := NewLoader(nil).Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoadWithNonExistentFile(t *testing.T) {
	if _, err := NewLoader(nil).Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Error("Load() expected error for non-existent file, got nil")
	}
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, `
log_level: invalid_level
warp:
  out_of_bounds: wrap
`)

	if _, err := NewLoader(nil).Load(path); err == nil {
		t.Error("Load() expected validation error, got nil")
	}

	cfg, err := NewLoader(nil).LoadRaw(path)
	if err != nil {
		t.Fatalf("LoadRaw() unexpected error: %v", err)
	}
	if cfg.Warp.OutOfBounds != "wrap" {
		t.Errorf("Expected raw value 'wrap', got %s", cfg.Warp.OutOfBounds)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GRIDWARP_LOG_LEVEL", "warn")
	t.Setenv("GRIDWARP_WARP_OUT_OF_BOUNDS", "skip")
	t.Setenv("GRIDWARP_BATCH_WORKERS", "7")

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level 'warn', got %s", cfg.LogLevel)
	}
	if cfg.Warp.OutOfBounds != "skip" {
		t.Errorf("Expected policy 'skip', got %s", cfg.Warp.OutOfBounds)
	}
	if cfg.Batch.Workers != 7 {
		t.Errorf("Expected 7 workers, got %d", cfg.Batch.Workers)
	}
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridwarp.yaml")
	if err := GenerateDefaultConfigFile(path); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() error: %v", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: test file in temp dir
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Generated file is not valid YAML: %v", err)
	}
	if _, ok := raw["warp"]; !ok {
		t.Error("Generated file has no warp section")
	}

	cfg, err := NewLoader(nil).Load(path)
	if err != nil {
		t.Fatalf("Generated file does not load: %v", err)
	}
	if cfg.Warp.Singular != DefaultConfig().Warp.Singular {
		t.Errorf("Expected default singular policy, got %s", cfg.Warp.Singular)
	}
}

func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := GetConfigSearchPaths()
	if paths[0] != "." {
		t.Errorf("Expected current directory first, got %s", paths[0])
	}
	if paths[len(paths)-1] != "/etc/gridwarp" {
		t.Errorf("Expected /etc/gridwarp last, got %s", paths[len(paths)-1])
	}
	found := false
	for _, p := range paths {
		if p == "/xdg/gridwarp" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected XDG path in %v", paths)
	}
}
