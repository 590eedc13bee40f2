// Package batch warps many rasters through one grid pair.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/gridwarp/internal/warp"
	"golang.org/x/sync/errgroup"
)

// Config holds all configuration for batch processing.
type Config struct {
	Workers         int
	OutputDir       string
	Suffix          string
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// Item is the outcome of warping one file.
type Item struct {
	Input    string           `json:"input"`
	Output   string           `json:"output,omitempty"`
	Rows     int              `json:"rows"`
	Cols     int              `json:"cols"`
	Stats    warp.SampleStats `json:"stats"`
	Duration time.Duration    `json:"duration_ns"`
	Err      error            `json:"-"`
}

// Failed reports whether the item could not be warped.
func (i *Item) Failed() bool { return i.Err != nil }

// Result holds the result of batch processing.
type Result struct {
	Items       []Item
	Duration    time.Duration
	WorkerCount int
}

// Failed counts the failed items.
func (r *Result) Failed() int {
	n := 0
	for i := range r.Items {
		if r.Items[i].Failed() {
			n++
		}
	}
	return n
}

// Process discovers the rasters under paths and warps each one with w, writing the
// output into OutputDir, or next to each input when it is empty. Without ContinueOnError the first failure cancels the
// remaining files and is returned.
func Process(ctx context.Context, w *warp.Warper, paths []string, cfg *Config) (*Result, error) {
	files, err := Discover(paths, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no input files found")
	}
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	workers := max(1, cfg.Workers)
	items := make([]Item, len(files))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i] = Item{Input: path, Err: err}
				return err
			}
			items[i] = processFile(gctx, w, path, cfg)
			if items[i].Failed() && !cfg.ContinueOnError {
				return items[i].Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	return &Result{Items: items, Duration: time.Since(start), WorkerCount: workers}, nil
}
