package pgm

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImage_Gray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(0, 0, color.Gray{Y: 10})
	img.SetGray(2, 1, color.Gray{Y: 200})

	r := FromImage(img)
	assert.Equal(t, 3, r.Width)
	assert.Equal(t, 2, r.Height)
	// image.Image is (column, row); rasters are (row, column).
	assert.Equal(t, 10, r.At(0, 0))
	assert.Equal(t, 200, r.At(1, 2))
}

func TestToImage_RescalesMaxValue(t *testing.T) {
	r, err := FromRows([][]int{{0, 15}}, 15)
	require.NoError(t, err)
	img := r.ToImage()
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(1, 0).Y)
}

func TestSaveAnyLoadAny_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	r, err := FromRows([][]int{{0, 64}, {128, 255}}, 255)
	require.NoError(t, err)

	require.NoError(t, SaveAny(path, r))
	back, err := LoadAny(path)
	require.NoError(t, err)
	assert.Equal(t, r.Pix, back.Pix)
}

func TestSaveAnyLoadAny_PGM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.PGM")
	r, err := FromRows([][]int{{3, 4}}, 255)
	require.NoError(t, err)
	require.NoError(t, SaveAny(path, r))
	back, err := LoadAny(path)
	require.NoError(t, err)
	assert.Equal(t, r.Pix, back.Pix)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.pgm"))
	assert.True(t, IsSupported("a.PNG"))
	assert.True(t, IsSupported("a.tiff"))
	assert.False(t, IsSupported("a.txt"))

	_, err := LoadAny("a.txt")
	assert.Error(t, err)
}
