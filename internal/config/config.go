package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/MeKo-Tech/gridwarp/internal/warp"
)

const (
	// DefaultGridSize is the number of lines per axis of a generated reference lattice.
	DefaultGridSize = 17
	// DefaultBatchSuffix is appended to batch output file names.
	DefaultBatchSuffix = "_warped"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	w := warp.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Grid: GridConfig{
			Rows: DefaultGridSize,
			Cols: DefaultGridSize,
		},
		Warp: WarpConfig{
			OutOfBounds: string(w.OutOfBounds),
			FillValue:   w.FillValue,
			Singular:    string(w.Singular),
			Workers:     0,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Batch: BatchConfig{
			Workers:         4,
			Suffix:          DefaultBatchSuffix,
			ContinueOnError: false,
			Recursive:       false,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Grid.Reference == "" && (c.Grid.Rows < 2 || c.Grid.Cols < 2) {
		return fmt.Errorf("invalid grid size: %dx%d (need at least 2x2 when no reference table is given)", c.Grid.Rows, c.Grid.Cols)
	}

	if err := c.ToWarpConfig().Validate(); err != nil {
		return err
	}
	if c.Warp.FillValue > pgm.MaxSupportedValue {
		return fmt.Errorf("invalid fill value: %d (must be at most %d)", c.Warp.FillValue, pgm.MaxSupportedValue)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	return nil
}

// ToWarpConfig converts the config to the warp engine configuration.
func (c *Config) ToWarpConfig() warp.Config {
	cfg := warp.DefaultConfig()
	cfg.OutOfBounds = warp.OutOfBoundsPolicy(c.Warp.OutOfBounds)
	cfg.Singular = warp.SingularPolicy(c.Warp.Singular)
	cfg.FillValue = c.Warp.FillValue
	cfg.DebugDir = c.Warp.DebugDir
	if c.Warp.Workers != 0 {
		cfg.Workers = c.Warp.Workers
	}
	return cfg
}
