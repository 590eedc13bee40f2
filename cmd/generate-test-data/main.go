package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/MeKo-Tech/gridwarp/internal/testutil"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generateImages = flag.Bool("images", true, "Generate synthetic rasters")
		generateGrids  = flag.Bool("grids", true, "Generate control-point grid tables")
		size           = flag.Int("size", 128, "Raster width and height in pixels")
		gridSize       = flag.Int("grid", 9, "Grid rows and columns")
		amplitude      = flag.Float64("amplitude", 3, "Displacement of the perturbed observed grid in pixels")
		verbose        = flag.Bool("v", false, "Verbose output")
		help           = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate test data for gridwarp testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                 # Generate all test data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -grids=false    # Generate only rasters\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -size 512       # Larger rasters\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	slog.Info("Starting test data generation...")

	if *verbose {
		slog.Info("Options", "images", *generateImages, "grids", *generateGrids,
			"size", *size, "grid", *gridSize, "amplitude", *amplitude)
	}

	root, err := testutil.GetProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}
	fixturesDir := filepath.Join(root, "testdata", "fixtures")
	if err := testutil.EnsureDir(fixturesDir); err != nil {
		slog.Error("Failed to create fixtures directory", "error", err)
		os.Exit(1)
	}

	if *generateImages {
		if err := generateRasters(fixturesDir, *size); err != nil {
			slog.Error("Failed to generate rasters", "error", err)
			os.Exit(1)
		}
		slog.Info("✓ Generated synthetic rasters", "dir", fixturesDir)
	}

	if *generateGrids {
		if err := generateGridTables(fixturesDir, *gridSize, *size, *amplitude); err != nil {
			slog.Error("Failed to generate grid tables", "error", err)
			os.Exit(1)
		}
		slog.Info("✓ Generated grid tables", "dir", fixturesDir)
	}

	slog.Info("Test data generation completed successfully!")
}

// generateRasters writes a checkerboard and a gradient as PGM, plus a PNG copy of
// the checkerboard for the format conversion paths.
func generateRasters(dir string, size int) error {
	checker := testutil.Checkerboard(size, size, max(1, size/16), 255)
	rasters := map[string]*pgm.Raster{
		"checkerboard.pgm": checker,
		"checkerboard.png": checker,
		"gradient.pgm":     testutil.Gradient(size, size, 255),
	}
	for name, r := range rasters {
		if err := pgm.SaveAny(filepath.Join(dir, name), r); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
	}
	return nil
}

// generateGridTables writes a regular reference grid, a sinusoidally perturbed
// observed grid and a one-row translation of the reference.
func generateGridTables(dir string, n, size int, amplitude float64) error {
	ref, err := grid.Regular(n, n, size, size)
	if err != nil {
		return fmt.Errorf("failed to build reference grid: %w", err)
	}
	perturbed, err := testutil.SinePerturbed(ref, amplitude)
	if err != nil {
		return fmt.Errorf("failed to build perturbed grid: %w", err)
	}

	tables := []struct {
		name string
		g    *grid.ControlGrid
	}{
		{"reference.yaml", ref},
		{"observed.yaml", perturbed},
		{"shifted.yaml", ref.Translate(grid.Point{X: 1})},
	}
	for _, tbl := range tables {
		if err := grid.SaveTable(filepath.Join(dir, tbl.name), tbl.g); err != nil {
			return fmt.Errorf("failed to save %s: %w", tbl.name, err)
		}
	}
	return nil
}
