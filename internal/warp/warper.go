// Package warp implements the grid-based piecewise-bilinear warp: a 4x4 transform
// per grid cell, a dense coordinate field over the reference extent, and bilinear
// resampling of the observed raster through that field.
package warp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/metrics"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
)

// Stage names reported to the metrics recorder.
const (
	StageField    = "field"
	StageResample = "resample"
	StageDebug    = "debug"
)

// Warper maps rasters from observed space to reference space for one grid pair.
// The coordinate field is built on first use and shared by every later Warp call.
type Warper struct {
	cfg     Config
	pair    *grid.Pair
	metrics *metrics.Recorder

	mu         sync.Mutex
	field      *CoordinateField
	fieldStats FieldStats
}

// New creates a warper. rec may be nil.
func New(pair *grid.Pair, cfg Config, rec *metrics.Recorder) (*Warper, error) {
	if pair == nil {
		return nil, errors.New("grid pair is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid warp config: %w", err)
	}
	return &Warper{cfg: cfg, pair: pair, metrics: rec}, nil
}

// Config returns the warper configuration.
func (w *Warper) Config() Config { return w.cfg }

// Pair returns the grid pair.
func (w *Warper) Pair() *grid.Pair { return w.pair }

// Field returns the coordinate field, building it on the first call. A failed build
// is not cached.
func (w *Warper) Field(ctx context.Context) (*CoordinateField, FieldStats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.field != nil {
		return w.field, w.fieldStats, nil
	}

	timer := metrics.StartStage(w.metrics, StageField)
	field, stats, err := BuildField(ctx, w.pair, FieldOptions{
		Workers:  w.cfg.workers(),
		Singular: w.cfg.Singular,
		Metrics:  w.metrics,
	})
	timer.Stop()
	if err != nil {
		return nil, stats, fmt.Errorf("failed to build coordinate field: %w", err)
	}
	slog.Debug("coordinate field built",
		"extent", field.Extent.String(),
		"cells", stats.Cells,
		"singular", stats.Singular,
		"pixels", stats.Pixels,
		"duration", timer.Duration())

	w.field, w.fieldStats = field, stats
	return field, stats, nil
}

// Warp resamples src through the coordinate field.
func (w *Warper) Warp(ctx context.Context, src *pgm.Raster) (*Result, error) {
	res, err := w.warp(ctx, src)
	w.metrics.RecordRaster(err)
	return res, err
}

func (w *Warper) warp(ctx context.Context, src *pgm.Raster) (*Result, error) {
	if src == nil {
		return nil, errors.New("source raster is nil")
	}
	field, _, err := w.Field(ctx)
	if err != nil {
		return nil, err
	}

	timer := metrics.StartStage(w.metrics, StageResample)
	res, err := Resample(ctx, field, src, ResampleOptions{
		Policy:    w.cfg.OutOfBounds,
		FillValue: w.cfg.FillValue,
		Workers:   w.cfg.workers(),
		Metrics:   w.metrics,
	})
	timer.Stop()
	if err != nil {
		return nil, fmt.Errorf("resampling failed: %w", err)
	}
	slog.Debug("raster resampled",
		"rows", res.Rows,
		"cols", res.Cols,
		"interpolated", res.Stats.Interpolated,
		"clamped", res.Stats.Clamped,
		"filled", res.Stats.Filled,
		"skipped", res.Stats.Skipped,
		"duration", timer.Duration())

	if w.cfg.DebugDir != "" {
		dt := metrics.StartStage(w.metrics, StageDebug)
		if path, derr := dumpComparePNG(w.cfg.DebugDir, src, w.pair, field.Extent, res.Raster); derr != nil {
			slog.Warn("failed to write debug image", "dir", w.cfg.DebugDir, "error", derr)
		} else {
			slog.Debug("wrote debug image", "path", path)
		}
		dt.Stop()
	}
	return res, nil
}
