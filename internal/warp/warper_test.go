package warp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitPair(t *testing.T, shift grid.Point) *grid.Pair {
	t.Helper()
	ref := lattice(t, []float64{0, 1}, []float64{0, 1})
	return mustPair(t, ref, ref.Translate(shift))
}

func TestWarp_TwoByTwoIdentity(t *testing.T) {
	w, err := New(unitPair(t, grid.Point{}), DefaultConfig(), nil)
	require.NoError(t, err)

	res, err := w.Warp(context.Background(), raster(t, [][]int{{10, 20}, {30, 40}}))
	require.NoError(t, err)
	require.NotNil(t, res.Raster)
	assert.Equal(t, [][]int{{10, 20}, {30, 40}}, res.Raster.Rows())
}

func TestWarp_OutputTakesFieldShape(t *testing.T) {
	ref, err := grid.Regular(3, 3, 5, 5)
	require.NoError(t, err)
	w, err := New(mustPair(t, ref, ref), DefaultConfig(), nil)
	require.NoError(t, err)

	large := raster(t, testRows(10, 10))
	res, err := w.Warp(context.Background(), large)
	require.NoError(t, err)
	require.NotNil(t, res.Raster)
	assert.Equal(t, 5, res.Raster.Width)
	assert.Equal(t, 5, res.Raster.Height)
	assert.Equal(t, large.At(4, 4), res.Raster.At(4, 4))
	assert.Zero(t, res.Stats.Clamped)

	// a smaller source keeps the field shape; the uncovered part follows the policy
	small := raster(t, testRows(3, 3))
	res, err = w.Warp(context.Background(), small)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Raster.Width)
	assert.Equal(t, 5, res.Raster.Height)
	assert.Equal(t, 16, res.Stats.Clamped)
	assert.Equal(t, small.At(2, 2), res.Raster.At(4, 4))
}

func testRows(height, width int) [][]int {
	rows := make([][]int, height)
	for x := range rows {
		rows[x] = make([]int, width)
		for y := range rows[x] {
			rows[x][y] = (x*width + y) % 256
		}
	}
	return rows
}

func TestWarp_RowShiftClampsAtEdge(t *testing.T) {
	w, err := New(unitPair(t, grid.Point{X: 1}), DefaultConfig(), nil)
	require.NoError(t, err)

	res, err := w.Warp(context.Background(), raster(t, [][]int{{10, 20}, {30, 40}}))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{30, 40}, {30, 40}}, res.Raster.Rows())
	assert.Equal(t, 2, res.Stats.Clamped)
}

func TestWarp_RowShiftSkipShrinksOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutOfBounds = OutOfBoundsSkip
	w, err := New(unitPair(t, grid.Point{X: 1}), cfg, nil)
	require.NoError(t, err)

	res, err := w.Warp(context.Background(), raster(t, [][]int{{10, 20}, {30, 40}}))
	require.NoError(t, err)
	assert.Equal(t, []int{30, 40}, res.Samples)
	assert.ErrorIs(t, res.ShapeErr(), ErrShapeMismatch)
}

func TestWarp_ReusesField(t *testing.T) {
	rec := metrics.New()
	w, err := New(unitPair(t, grid.Point{}), DefaultConfig(), rec)
	require.NoError(t, err)

	f1, _, err := w.Field(context.Background())
	require.NoError(t, err)
	_, err = w.Warp(context.Background(), raster(t, [][]int{{1, 2}, {3, 4}}))
	require.NoError(t, err)
	f2, _, err := w.Field(context.Background())
	require.NoError(t, err)
	assert.Same(t, f1, f2)
}

func TestWarp_FailedFieldIsNotCached(t *testing.T) {
	w, err := New(unitPair(t, grid.Point{}), DefaultConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = w.Field(ctx)
	require.Error(t, err)

	f, _, err := w.Field(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestWarp_SingularAbortFails(t *testing.T) {
	w, err := New(singularPair(t), DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = w.Warp(context.Background(), raster(t, [][]int{{1}}))
	var serr *SingularCellError
	assert.ErrorAs(t, err, &serr)
}

func TestWarp_DebugDump(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DebugDir = filepath.Join(dir, "debug")
	w, err := New(unitPair(t, grid.Point{}), cfg, nil)
	require.NoError(t, err)

	_, err = w.Warp(context.Background(), raster(t, [][]int{{10, 20}, {30, 40}}))
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(cfg.DebugDir, "warp_compare_*.png"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	info, err := os.Stat(matches[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.OutOfBounds = "wrap"
	_, err = New(unitPair(t, grid.Point{}), cfg, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Singular = "ignore"
	_, err = New(unitPair(t, grid.Point{}), cfg, nil)
	assert.Error(t, err)
}
