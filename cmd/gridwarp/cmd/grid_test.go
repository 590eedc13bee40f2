package cmd

import (
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridRegularStdout(t *testing.T) {
	out, _, err := execute(t, "grid", "regular", "--rows", "3", "--cols", "4", "--height", "9", "--width", "13")
	require.NoError(t, err)

	g, err := grid.ParseTable([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Rows)
	assert.Equal(t, 4, g.Cols)
	assert.Equal(t, grid.Point{X: 8, Y: 12}, g.At(2, 3))
}

func TestGridRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.yaml")
	_, _, err := execute(t, "grid", "regular", "--height", "64", "--width", "64", "-o", path)
	require.NoError(t, err)

	g, err := grid.LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 17, g.Rows)
}

func TestGridRegularRequiresSize(t *testing.T) {
	_, _, err := execute(t, "grid", "regular", "--rows", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestGridCheck(t *testing.T) {
	dir := t.TempDir()
	ref, obs := testutil.RegularPair(t, dir, 3, 3, 9, 9, grid.Point{X: 0.5, Y: -0.5})

	out, _, err := execute(t, "grid", "check", ref, obs)
	require.NoError(t, err)
	assert.Contains(t, out, "grid 3x3, 4 cells, extent [0..8]x[0..8]")
	assert.Contains(t, out, "cell (0,0) [0..3]x[0..3]: ok")
	assert.Contains(t, out, "cell (1,1) [4..8]x[4..8]: ok")
}

func TestGridCheckSingular(t *testing.T) {
	dir := t.TempDir()
	ref, err := grid.Regular(3, 3, 9, 9)
	require.NoError(t, err)
	pts := ref.Points()
	pts[8] = grid.Point{X: 1e308, Y: 8}
	obs, err := grid.New(3, 3, pts)
	require.NoError(t, err)

	out, _, err := execute(t, "grid", "check",
		testutil.WriteGridTable(t, dir, "ref.yaml", ref), testutil.WriteGridTable(t, dir, "obs.yaml", obs))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 singular cells")
	assert.Contains(t, out, "cell (1,1) [4..8]x[4..8]: singular")
}

func TestGridCheckShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	ref, err := grid.Regular(3, 3, 9, 9)
	require.NoError(t, err)
	obs, err := grid.Regular(2, 2, 9, 9)
	require.NoError(t, err)

	_, _, err = execute(t, "grid", "check",
		testutil.WriteGridTable(t, dir, "ref.yaml", ref), testutil.WriteGridTable(t, dir, "obs.yaml", obs))
	require.ErrorIs(t, err, grid.ErrShapeMismatch)
}
