package warp

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/disintegration/imaging"
)

const debugGap = 10

var (
	observedColor  = color.NRGBA{R: 255, A: 255}
	referenceColor = color.NRGBA{G: 255, A: 255}
	debugBG        = color.NRGBA{R: 32, G: 32, B: 32, A: 255}
)

// dumpComparePNG writes the source raster with the observed grid on the left and
// the warped raster with the reference grid on the right. dst may be nil when the
// output was not assembled.
func dumpComparePNG(dir string, src *pgm.Raster, pair *grid.Pair, ext grid.Rect, dst *pgm.Raster) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("warp_compare_%d.png", time.Now().UnixNano()))

	outW, outH := src.Width, src.Height
	if dst != nil {
		outW += debugGap + dst.Width
		outH = max(outH, dst.Height)
	}
	canvas := imaging.New(outW, outH, debugBG)
	canvas = imaging.Paste(canvas, src.ToImage(), image.Pt(0, 0))
	drawGrid(canvas, pair.Observed, image.Pt(0, 0), observedColor)

	if dst != nil {
		xoff := src.Width + debugGap
		canvas = imaging.Paste(canvas, dst.ToImage(), image.Pt(xoff, 0))
		// reference coordinates are relative to the extent origin in the output
		drawGrid(canvas, pair.Reference, image.Pt(xoff-ext.YStart, -ext.XStart), referenceColor)
	}
	return path, imaging.Save(canvas, path)
}

// drawGrid marks every control point with a small cross. Point.X is the row and
// Point.Y the column, so they map to image y and x respectively.
func drawGrid(canvas *image.NRGBA, g *grid.ControlGrid, off image.Point, c color.NRGBA) {
	for _, p := range g.Points() {
		px := off.X + int(math.Round(p.Y))
		py := off.Y + int(math.Round(p.X))
		for d := -2; d <= 2; d++ {
			setIfInside(canvas, px+d, py, c)
			setIfInside(canvas, px, py+d, c)
		}
	}
}

func setIfInside(canvas *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(canvas.Bounds()) {
		canvas.SetNRGBA(x, y, c)
	}
}
