package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/gridwarp/internal/config"
	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/metrics"
)

// loadPair reads the observed table and either the reference table or a regular
// grid.rows x grid.cols lattice spanning a width x height raster.
func loadPair(cfg *config.Config, width, height int) (*grid.Pair, error) {
	if cfg.Grid.Observed == "" {
		return nil, errors.New("an observed grid table is required (--observed)")
	}
	observed, err := grid.LoadTable(cfg.Grid.Observed)
	if err != nil {
		return nil, fmt.Errorf("failed to load observed grid: %w", err)
	}

	var reference *grid.ControlGrid
	if cfg.Grid.Reference != "" {
		reference, err = grid.LoadTable(cfg.Grid.Reference)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference grid: %w", err)
		}
	} else {
		reference, err = grid.Regular(cfg.Grid.Rows, cfg.Grid.Cols, height, width)
		if err != nil {
			return nil, fmt.Errorf("failed to generate reference grid: %w", err)
		}
	}

	pair, err := grid.NewPair(reference, observed)
	if err != nil {
		return nil, fmt.Errorf("invalid grid pair: %w", err)
	}
	return pair, nil
}

// newRecorder returns a metrics recorder when a metrics file is configured.
func newRecorder(cfg *config.Config) *metrics.Recorder {
	if cfg.Output.MetricsFile == "" {
		return nil
	}
	return metrics.New()
}

func writeMetrics(cfg *config.Config, rec *metrics.Recorder) error {
	if rec == nil {
		return nil
	}
	if err := rec.WriteTextfile(cfg.Output.MetricsFile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	slog.Debug("wrote metrics", "path", cfg.Output.MetricsFile)
	return nil
}
