package batch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	testCases := []struct {
		input, dir, suffix, expected string
	}{
		{"/data/scan.pgm", "/out", "_warped", "/out/scan_warped.pgm"},
		{"/data/scan.png", "", "_warped", "/data/scan_warped.png"},
		{"/data/scan.pgm", "/out", "", "/out/scan.pgm"},
		{"rel/img.tif", "o", "-x", filepath.Join("o", "img-x.tif")},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, OutputPath(tc.input, tc.dir, tc.suffix), "input=%s", tc.input)
	}
}
