package testutil

import (
	"testing"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradient(t *testing.T) {
	r := Gradient(5, 4, 255)
	require.NoError(t, r.Validate())
	assert.Equal(t, 0, r.At(0, 0))
	assert.Equal(t, 255, r.At(3, 4))
}

func TestCheckerboard(t *testing.T) {
	r := Checkerboard(4, 4, 2, 200)
	require.NoError(t, r.Validate())
	assert.Equal(t, 0, r.At(0, 0))
	assert.Equal(t, 200, r.At(0, 2))
	assert.Equal(t, 200, r.At(2, 0))
	assert.Equal(t, 0, r.At(3, 3))
}

func TestSinePerturbed_KeepsBorder(t *testing.T) {
	ref, err := grid.Regular(5, 5, 64, 64)
	require.NoError(t, err)
	obs, err := SinePerturbed(ref, 2)
	require.NoError(t, err)

	assert.Equal(t, ref.At(0, 2), obs.At(0, 2))
	assert.Equal(t, ref.At(4, 4), obs.At(4, 4))
	assert.NotEqual(t, ref.At(2, 2), obs.At(2, 2))
}

func TestWriteHelpers(t *testing.T) {
	dir := CreateTempDir(t)

	path := WritePGM(t, dir, "g.pgm", Gradient(3, 2, 255))
	r, err := pgm.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Width)

	refPath, obsPath := RegularPair(t, dir, 2, 2, 3, 2, grid.Point{X: 1})
	ref, err := grid.LoadTable(refPath)
	require.NoError(t, err)
	obs, err := grid.LoadTable(obsPath)
	require.NoError(t, err)
	assert.Equal(t, ref.At(0, 0).X+1, obs.At(0, 0).X)
}
