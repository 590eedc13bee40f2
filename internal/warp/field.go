package warp

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// CoordinateField holds, for every reference pixel of Extent, the fractional
// coordinate it samples in observed space. Unmapped entries are NaN.
type CoordinateField struct {
	Extent grid.Rect
	Points []grid.Point
}

// NewCoordinateField allocates a field over ext with every entry unmapped.
func NewCoordinateField(ext grid.Rect) *CoordinateField {
	pts := make([]grid.Point, ext.Rows()*ext.Cols())
	for i := range pts {
		pts[i] = grid.Point{X: math.NaN(), Y: math.NaN()}
	}
	return &CoordinateField{Extent: ext, Points: pts}
}

// Rows returns the number of field rows.
func (f *CoordinateField) Rows() int { return f.Extent.Rows() }

// Cols returns the number of field columns.
func (f *CoordinateField) Cols() int { return f.Extent.Cols() }

// At returns the entry for reference pixel (x, y).
func (f *CoordinateField) At(x, y int) grid.Point {
	return f.Points[f.index(x, y)]
}

func (f *CoordinateField) index(x, y int) int {
	return (x-f.Extent.XStart)*f.Extent.Cols() + (y - f.Extent.YStart)
}

// Mapped reports whether entry (x, y) was written by a cell.
func (f *CoordinateField) Mapped(x, y int) bool {
	return f.At(x, y).IsFinite()
}

// FillCell writes the mapped coordinate of every pixel inside the cell's bounds and
// returns how many entries it wrote. Bounds outside the field extent are ignored.
func FillCell(f *CoordinateField, c grid.Cell, m Mapping) int {
	n := 0
	for x := max(c.Bounds.XStart, f.Extent.XStart); x <= min(c.Bounds.XEnd, f.Extent.XEnd); x++ {
		for y := max(c.Bounds.YStart, f.Extent.YStart); y <= min(c.Bounds.YEnd, f.Extent.YEnd); y++ {
			f.Points[f.index(x, y)] = m.Apply(grid.Point{X: float64(x), Y: float64(y)})
			n++
		}
	}
	return n
}

// FieldOptions configures BuildField.
type FieldOptions struct {
	Workers  int
	Singular SingularPolicy
	Metrics  *metrics.Recorder
}

// FieldStats summarizes a field build.
type FieldStats struct {
	Cells    int
	Solved   int
	Singular int
	Pixels   int
}

// BuildField solves every cell of pair and assembles the coordinate field. Cells are
// processed concurrently; each writes a disjoint part of the field, so the result is
// identical to a sequential row-major pass. With SingularAbort the first singular cell
// in row-major order is returned as a *SingularCellError.
func BuildField(ctx context.Context, pair *grid.Pair, opts FieldOptions) (*CoordinateField, FieldStats, error) {
	if pair == nil {
		return nil, FieldStats{}, errors.New("grid pair is nil")
	}
	if opts.Singular == "" {
		opts.Singular = SingularAbort
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}

	cells := slices.Collect(pair.Cells())
	field := NewCoordinateField(pair.Extent())
	cellErrs := make([]error, len(cells))
	pixels := make([]int, len(cells))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, c := range cells {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := SolveCell(c)
			if err != nil {
				cellErrs[k] = err
				return nil
			}
			pixels[k] = FillCell(field, c, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, FieldStats{}, err
	}

	stats := FieldStats{Cells: len(cells)}
	var firstErr error
	for k, err := range cellErrs {
		if err == nil {
			stats.Solved++
			stats.Pixels += pixels[k]
			continue
		}
		stats.Singular++
		if firstErr == nil {
			firstErr = err
		}
		if opts.Singular == SingularSkip {
			slog.Warn("skipping singular cell", "row", cells[k].Row, "col", cells[k].Col,
				"bounds", cells[k].Bounds.String(), "error", err)
		}
	}
	opts.Metrics.RecordCells(stats.Solved, stats.Singular)

	if firstErr != nil && opts.Singular == SingularAbort {
		return nil, stats, firstErr
	}
	opts.Metrics.SetFieldPixels(len(field.Points))
	return field, stats, nil
}
