package testutil

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/stretchr/testify/require"
)

// Gradient returns a raster whose samples rise diagonally from 0 to maxValue.
func Gradient(width, height, maxValue int) *pgm.Raster {
	r := &pgm.Raster{Width: width, Height: height, MaxValue: maxValue, Pix: make([]int, width*height)}
	span := max(1, width+height-2)
	for x := range height {
		for y := range width {
			r.Set(x, y, (x+y)*maxValue/span)
		}
	}
	return r
}

// Checkerboard returns a raster of square alternating black and white tiles.
func Checkerboard(width, height, tile, maxValue int) *pgm.Raster {
	r := &pgm.Raster{Width: width, Height: height, MaxValue: maxValue, Pix: make([]int, width*height)}
	tile = max(1, tile)
	for x := range height {
		for y := range width {
			if (x/tile+y/tile)%2 == 1 {
				r.Set(x, y, maxValue)
			}
		}
	}
	return r
}

// SinePerturbed returns ref with every interior point displaced by a smooth sine
// field of the given amplitude. Border points stay put so the warp keeps the frame.
func SinePerturbed(ref *grid.ControlGrid, amplitude float64) (*grid.ControlGrid, error) {
	pts := ref.Points()
	for i := 1; i < ref.Rows-1; i++ {
		for j := 1; j < ref.Cols-1; j++ {
			k := i*ref.Cols + j
			pts[k] = pts[k].Add(grid.Point{
				X: amplitude * math.Sin(float64(j)*math.Pi/float64(ref.Cols-1)),
				Y: amplitude * math.Sin(float64(i)*math.Pi/float64(ref.Rows-1)),
			})
		}
	}
	return grid.New(ref.Rows, ref.Cols, pts)
}

// WritePGM saves r as name inside dir and returns the path.
func WritePGM(t *testing.T, dir, name string, r *pgm.Raster) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, pgm.Save(path, r), "Failed to write raster %s", path)
	return path
}

// WriteGridTable saves g as name inside dir and returns the path.
func WriteGridTable(t *testing.T, dir, name string, g *grid.ControlGrid) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, grid.SaveTable(path, g), "Failed to write grid table %s", path)
	return path
}

// RegularPair writes a regular reference grid for a width x height raster and an
// observed grid shifted by d, returning both table paths.
func RegularPair(t *testing.T, dir string, rows, cols, width, height int, d grid.Point) (string, string) {
	t.Helper()

	ref, err := grid.Regular(rows, cols, height, width)
	require.NoError(t, err)
	return WriteGridTable(t, dir, "reference.yaml", ref), WriteGridTable(t, dir, "observed.yaml", ref.Translate(d))
}
