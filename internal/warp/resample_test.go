package warp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raster(t *testing.T, rows [][]int) *pgm.Raster {
	t.Helper()
	r, err := pgm.FromRows(rows, 255)
	require.NoError(t, err)
	return r
}

func fieldOf(rows, cols int, pts ...grid.Point) *CoordinateField {
	return &CoordinateField{Extent: grid.Rect{XEnd: rows - 1, YEnd: cols - 1}, Points: pts}
}

func TestSample_LatticePointsAreExact(t *testing.T) {
	src := raster(t, [][]int{
		{0, 17, 255},
		{3, 128, 64},
	})
	for x := range src.Height {
		for y := range src.Width {
			v, ok := Sample(src, grid.Point{X: float64(x), Y: float64(y)})
			require.True(t, ok)
			assert.Equal(t, src.At(x, y), v, "(%d,%d)", x, y)
		}
	}
}

func TestSample_Interpolates(t *testing.T) {
	src := raster(t, [][]int{
		{10, 20},
		{30, 40},
	})
	tests := []struct {
		name string
		p    grid.Point
		want int
	}{
		{"centre", grid.Point{X: 0.5, Y: 0.5}, 25},
		{"row midpoint", grid.Point{X: 0.5, Y: 0}, 20},
		{"column quarter", grid.Point{X: 0, Y: 0.25}, 12},
		{"bottom edge clamps row neighbour", grid.Point{X: 1, Y: 0.5}, 35},
		{"right edge clamps column neighbour", grid.Point{X: 0.5, Y: 1}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Sample(src, tt.p)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestSample_RoundsHalfToEven(t *testing.T) {
	src := raster(t, [][]int{{0, 1, 4}})

	v, ok := Sample(src, grid.Point{X: 0, Y: 0.5})
	require.True(t, ok)
	assert.Equal(t, 0, v, "0.5 rounds to 0")

	v, ok = Sample(src, grid.Point{X: 0, Y: 1.5})
	require.True(t, ok)
	assert.Equal(t, 2, v, "2.5 rounds to 2")

	v, ok = Sample(src, grid.Point{X: 0, Y: 1.25})
	require.True(t, ok)
	assert.Equal(t, 2, v, "1.75 rounds to 2")
}

func TestSample_LastRowHalfPixel(t *testing.T) {
	src := raster(t, [][]int{
		{1, 2},
		{3, 4},
		{5, 6},
	})
	v, ok := Sample(src, grid.Point{X: float64(src.Height) - 0.5, Y: 0})
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestSample_OutOfBounds(t *testing.T) {
	src := raster(t, [][]int{{1, 2}, {3, 4}})
	for _, p := range []grid.Point{
		{X: -0.01, Y: 0},
		{X: 0, Y: -1},
		{X: 2, Y: 0},
		{X: 0, Y: 2.5},
		{X: math.NaN(), Y: 0},
		{X: 0, Y: math.Inf(1)},
		{X: 1e30, Y: 0},
	} {
		_, ok := Sample(src, p)
		assert.False(t, ok, "%v", p)
	}
}

func TestResample_Policies(t *testing.T) {
	src := raster(t, [][]int{
		{10, 20},
		{30, 40},
	})
	// one in bounds, one below the raster, one unmapped
	field := fieldOf(1, 3,
		grid.Point{X: 0, Y: 1},
		grid.Point{X: 2.5, Y: 0},
		grid.Point{X: math.NaN(), Y: math.NaN()},
	)

	t.Run("clamp", func(t *testing.T) {
		res, err := Resample(context.Background(), field, src, ResampleOptions{Policy: OutOfBoundsClamp, FillValue: 9})
		require.NoError(t, err)
		require.NotNil(t, res.Raster)
		assert.Equal(t, []int{20, 30, 9}, res.Raster.Pix)
		assert.Equal(t, SampleStats{Interpolated: 1, Clamped: 1, Filled: 1}, res.Stats)
		assert.NoError(t, res.ShapeErr())
	})

	t.Run("fill", func(t *testing.T) {
		res, err := Resample(context.Background(), field, src, ResampleOptions{Policy: OutOfBoundsFill, FillValue: 7})
		require.NoError(t, err)
		assert.Equal(t, []int{20, 7, 7}, res.Raster.Pix)
		assert.Equal(t, SampleStats{Interpolated: 1, Filled: 2}, res.Stats)
	})

	t.Run("skip", func(t *testing.T) {
		res, err := Resample(context.Background(), field, src, ResampleOptions{Policy: OutOfBoundsSkip})
		require.NoError(t, err)
		assert.Nil(t, res.Raster)
		assert.Equal(t, []int{20}, res.Samples)
		assert.Equal(t, 2, res.Stats.Skipped)
		assert.True(t, errors.Is(res.ShapeErr(), ErrShapeMismatch))
	})
}

func TestResample_FillValueOutOfRange(t *testing.T) {
	src, err := pgm.FromRows([][]int{{1}}, 15)
	require.NoError(t, err)
	_, err = Resample(context.Background(), fieldOf(1, 1, grid.Point{}), src, ResampleOptions{Policy: OutOfBoundsFill, FillValue: 16})
	assert.Error(t, err)
}

func TestResample_InvalidSource(t *testing.T) {
	_, err := Resample(context.Background(), fieldOf(1, 1, grid.Point{}), &pgm.Raster{Width: 1, Height: 1, MaxValue: 255}, ResampleOptions{})
	var ferr *pgm.FormatError
	assert.ErrorAs(t, err, &ferr)
}

func TestResample_ParallelMatchesSequential(t *testing.T) {
	rows := make([][]int, 20)
	for x := range rows {
		rows[x] = make([]int, 30)
		for y := range rows[x] {
			rows[x][y] = (x*13 + y*7) % 256
		}
	}
	src := raster(t, rows)
	pts := make([]grid.Point, 0, 20*30)
	for x := range 20 {
		for y := range 30 {
			pts = append(pts, grid.Point{X: float64(x)*0.97 + 0.3, Y: float64(y)*1.01 - 0.2})
		}
	}
	field := fieldOf(20, 30, pts...)

	seq, err := Resample(context.Background(), field, src, ResampleOptions{Workers: 1})
	require.NoError(t, err)
	par, err := Resample(context.Background(), field, src, ResampleOptions{Workers: 6})
	require.NoError(t, err)
	assert.Equal(t, seq.Samples, par.Samples)
	assert.Equal(t, seq.Stats, par.Stats)
}
