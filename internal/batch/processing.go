package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/MeKo-Tech/gridwarp/internal/warp"
)

// OutputPath returns where the warped version of input is written: inside outputDir
// (or next to input when empty) with suffix appended to the base name. The input
// extension, and with it the encoding, is kept.
func OutputPath(input, outputDir, suffix string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+suffix+ext)
}

// processFile loads, warps and saves one raster.
func processFile(ctx context.Context, w *warp.Warper, path string, cfg *Config) Item {
	start := time.Now()
	item := Item{Input: path}

	src, err := pgm.LoadAny(path)
	if err != nil {
		item.Err = fmt.Errorf("failed to load %s: %w", path, err)
		return item
	}

	res, err := w.Warp(ctx, src)
	if err != nil {
		item.Err = fmt.Errorf("warp failed for %s: %w", path, err)
		return item
	}
	item.Rows, item.Cols, item.Stats = res.Rows, res.Cols, res.Stats
	if err := res.ShapeErr(); err != nil {
		item.Err = fmt.Errorf("%s: %w", path, err)
		return item
	}

	out := OutputPath(path, cfg.OutputDir, cfg.Suffix)
	if filepath.Clean(out) == filepath.Clean(path) {
		item.Err = fmt.Errorf("refusing to overwrite input %s (set an output directory or suffix)", path)
		return item
	}
	if err := pgm.SaveAny(out, res.Raster); err != nil {
		item.Err = fmt.Errorf("failed to save %s: %w", out, err)
		return item
	}
	item.Output = out
	item.Duration = time.Since(start)

	slog.Debug("warped raster", "input", path, "output", out,
		"rows", res.Rows, "cols", res.Cols, "duration", item.Duration)
	return item
}
