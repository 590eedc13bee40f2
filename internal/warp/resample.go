package warp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/mempool"
	"github.com/MeKo-Tech/gridwarp/internal/metrics"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"golang.org/x/sync/errgroup"
)

// ErrShapeMismatch is reported when skipped samples leave fewer values than the
// output raster needs.
var ErrShapeMismatch = errors.New("output sample count does not match raster shape")

// Sample reconstructs the source value at p by bilinear interpolation of the four
// surrounding lattice samples. It reports false when floor(p) lies outside the raster
// or p is not finite. The neighbours past the last row or column are clamped to the
// edge, and the result is rounded half to even.
func Sample(src *pgm.Raster, p grid.Point) (int, bool) {
	if !p.IsFinite() {
		return 0, false
	}
	fx0, fy0 := math.Floor(p.X), math.Floor(p.Y)
	if fx0 < 0 || fx0 >= float64(src.Height) || fy0 < 0 || fy0 >= float64(src.Width) {
		return 0, false
	}
	return interpolate(src, int(fx0), int(fy0), p.X-fx0, p.Y-fy0), true
}

func interpolate(src *pgm.Raster, x0, y0 int, fx, fy float64) int {
	x1 := min(x0+1, src.Height-1)
	y1 := min(y0+1, src.Width-1)

	s00 := float64(src.At(x0, y0))
	s10 := float64(src.At(x1, y0))
	s01 := float64(src.At(x0, y1))
	s11 := float64(src.At(x1, y1))

	a := s10 - s00
	b := s01 - s00
	c := s11 + s00 - s01 - s10
	d := s00
	return int(math.RoundToEven(a*fx + b*fy + c*fx*fy + d))
}

// clampPoint moves p onto the nearest point of [0,H-1] x [0,W-1].
func clampPoint(src *pgm.Raster, p grid.Point) grid.Point {
	return grid.Point{
		X: math.Max(0, math.Min(p.X, float64(src.Height-1))),
		Y: math.Max(0, math.Min(p.Y, float64(src.Width-1))),
	}
}

// ResampleOptions configures Resample.
type ResampleOptions struct {
	Policy    OutOfBoundsPolicy
	FillValue int
	Workers   int
	Metrics   *metrics.Recorder
}

// SampleStats counts output samples by outcome.
type SampleStats struct {
	Interpolated int `json:"interpolated"`
	Clamped      int `json:"clamped"`
	Filled       int `json:"filled"`
	Skipped      int `json:"skipped"`
}

func (s *SampleStats) add(o SampleStats) {
	s.Interpolated += o.Interpolated
	s.Clamped += o.Clamped
	s.Filled += o.Filled
	s.Skipped += o.Skipped
}

// Result is the output of Resample.
type Result struct {
	// Raster has the field's shape. It is nil when samples were skipped.
	Raster *pgm.Raster
	// Samples holds the produced samples in row-major field order, without skipped ones.
	Samples []int
	Rows    int
	Cols    int
	Stats   SampleStats
}

// ShapeErr reports ErrShapeMismatch when skipped samples prevented building Raster.
func (r *Result) ShapeErr() error {
	if r.Raster != nil {
		return nil
	}
	return fmt.Errorf("%w: %d of %d samples skipped (%d x %d field)",
		ErrShapeMismatch, r.Stats.Skipped, r.Rows*r.Cols, r.Rows, r.Cols)
}

// Resample produces one output sample per field entry from src. Rows are resampled
// concurrently; each worker owns its row's output.
//
// Entries that are out of bounds follow opts.Policy. Unmapped entries (from skipped
// singular cells) are filled with opts.FillValue, or skipped under OutOfBoundsSkip.
func Resample(ctx context.Context, field *CoordinateField, src *pgm.Raster, opts ResampleOptions) (*Result, error) {
	if field == nil {
		return nil, errors.New("coordinate field is nil")
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if opts.Policy == "" {
		opts.Policy = OutOfBoundsClamp
	}
	if opts.FillValue < 0 || opts.FillValue > src.MaxValue {
		return nil, fmt.Errorf("fill value %d outside [0,%d]", opts.FillValue, src.MaxValue)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}

	rows, cols := field.Rows(), field.Cols()
	rowSamples := make([][]int, rows)
	rowStats := make([]SampleStats, rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for r := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rowSamples[r], rowStats[r] = resampleRow(field.Points[r*cols:(r+1)*cols], src, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Rows: rows, Cols: cols, Samples: make([]int, 0, rows*cols)}
	for r := range rows {
		res.Samples = append(res.Samples, rowSamples[r]...)
		res.Stats.add(rowStats[r])
		mempool.PutInts(rowSamples[r])
	}

	opts.Metrics.RecordSamples(metrics.OutcomeInterpolated, res.Stats.Interpolated)
	opts.Metrics.RecordSamples(metrics.OutcomeClamped, res.Stats.Clamped)
	opts.Metrics.RecordSamples(metrics.OutcomeFilled, res.Stats.Filled)
	opts.Metrics.RecordSamples(metrics.OutcomeSkipped, res.Stats.Skipped)

	if res.Stats.Skipped == 0 {
		res.Raster = &pgm.Raster{Width: cols, Height: rows, MaxValue: src.MaxValue, Pix: res.Samples}
	}
	return res, nil
}

func resampleRow(entries []grid.Point, src *pgm.Raster, opts ResampleOptions) ([]int, SampleStats) {
	out := mempool.GetInts(len(entries))[:0]
	var stats SampleStats
	for _, p := range entries {
		if v, ok := Sample(src, p); ok {
			out = append(out, v)
			stats.Interpolated++
			continue
		}
		switch {
		case opts.Policy == OutOfBoundsSkip:
			stats.Skipped++
		case opts.Policy == OutOfBoundsClamp && p.IsFinite():
			v, _ := Sample(src, clampPoint(src, p))
			out = append(out, v)
			stats.Clamped++
		default:
			out = append(out, opts.FillValue)
			stats.Filled++
		}
	}
	return out, stats
}
