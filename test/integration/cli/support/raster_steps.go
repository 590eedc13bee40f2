package support

import (
	"fmt"
	"os"
	"slices"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/MeKo-Tech/gridwarp/internal/testutil"
	"github.com/cucumber/godog"
)

// saveRaster writes r into the scratch directory.
func (testCtx *TestContext) saveRaster(name string, r *pgm.Raster) error {
	if err := pgm.SaveAny(testCtx.path(name), r); err != nil {
		return fmt.Errorf("failed to write raster %s: %w", name, err)
	}
	return nil
}

// aGradientRaster creates a width x height diagonal gradient.
func (testCtx *TestContext) aGradientRaster(width, height int, name string) error {
	return testCtx.saveRaster(name, testutil.Gradient(width, height, 255))
}

// aCheckerboardRaster creates a width x height checkerboard with 2-pixel tiles.
func (testCtx *TestContext) aCheckerboardRaster(width, height int, name string) error {
	return testCtx.saveRaster(name, testutil.Checkerboard(width, height, 2, 255))
}

// aRegularGridPairShifted writes reference.yaml and observed.yaml for a raster,
// the observed grid translated by the given number of rows.
func (testCtx *TestContext) aRegularGridPairShifted(rows, cols, width, height, shift int) error {
	ref, err := grid.Regular(rows, cols, height, width)
	if err != nil {
		return err
	}
	return testCtx.saveGrids(ref, ref.Translate(grid.Point{X: float64(shift)}))
}

func (testCtx *TestContext) aRegularGridPair(rows, cols, width, height int) error {
	return testCtx.aRegularGridPairShifted(rows, cols, width, height, 0)
}

// aSinePerturbedGridPair writes a regular reference and a smoothly bent observed grid.
func (testCtx *TestContext) aSinePerturbedGridPair(rows, cols, width, height int) error {
	ref, err := grid.Regular(rows, cols, height, width)
	if err != nil {
		return err
	}
	obs, err := testutil.SinePerturbed(ref, 2)
	if err != nil {
		return err
	}
	return testCtx.saveGrids(ref, obs)
}

// aGridPairWithAnOverflowingCorner moves the last observed point far enough that
// the last cell's transform overflows.
func (testCtx *TestContext) aGridPairWithAnOverflowingCorner(rows, cols, width, height int) error {
	ref, err := grid.Regular(rows, cols, height, width)
	if err != nil {
		return err
	}
	pts := ref.Points()
	pts[len(pts)-1].X = 1e308
	obs, err := grid.New(rows, cols, pts)
	if err != nil {
		return err
	}
	return testCtx.saveGrids(ref, obs)
}

func (testCtx *TestContext) saveGrids(ref, obs *grid.ControlGrid) error {
	for name, g := range map[string]*grid.ControlGrid{"reference.yaml": ref, "observed.yaml": obs} {
		if err := grid.SaveTable(testCtx.path(name), g); err != nil {
			return fmt.Errorf("failed to write grid %s: %w", name, err)
		}
	}
	return nil
}

// aFileContaining writes raw content, e.g. a corrupt raster.
func (testCtx *TestContext) aFileContaining(name, content string) error {
	return os.WriteFile(testCtx.path(name), []byte(content), 0o600)
}

// aDirectory creates a directory in the scratch area.
func (testCtx *TestContext) aDirectory(name string) error {
	return testutil.EnsureDir(testCtx.path(name))
}

func (testCtx *TestContext) loadRaster(name string) (*pgm.Raster, error) {
	r, err := pgm.LoadAny(testCtx.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to load raster %s: %w", name, err)
	}
	return r, nil
}

// theRasterShouldEqual compares two rasters sample by sample.
func (testCtx *TestContext) theRasterShouldEqual(a, b string) error {
	ra, err := testCtx.loadRaster(a)
	if err != nil {
		return err
	}
	rb, err := testCtx.loadRaster(b)
	if err != nil {
		return err
	}
	if ra.Width != rb.Width || ra.Height != rb.Height {
		return fmt.Errorf("%s is %dx%d, %s is %dx%d", a, ra.Width, ra.Height, b, rb.Width, rb.Height)
	}
	if !slices.Equal(ra.Pix, rb.Pix) {
		return fmt.Errorf("rasters %s and %s differ", a, b)
	}
	return nil
}

// theRasterShouldBeSized checks raster dimensions.
func (testCtx *TestContext) theRasterShouldBeSized(name string, width, height int) error {
	r, err := testCtx.loadRaster(name)
	if err != nil {
		return err
	}
	if r.Width != width || r.Height != height {
		return fmt.Errorf("%s is %dx%d, want %dx%d", name, r.Width, r.Height, width, height)
	}
	return nil
}

// rowShouldEqualRow compares one raster row against a row of another raster.
func (testCtx *TestContext) rowShouldEqualRow(rowA int, a string, rowB int, b string) error {
	ra, err := testCtx.loadRaster(a)
	if err != nil {
		return err
	}
	rb, err := testCtx.loadRaster(b)
	if err != nil {
		return err
	}
	if rowA >= ra.Height || rowB >= rb.Height || ra.Width != rb.Width {
		return fmt.Errorf("rows %d of %s and %d of %s are not comparable", rowA, a, rowB, b)
	}
	got := ra.Rows()[rowA]
	want := rb.Rows()[rowB]
	if !slices.Equal(got, want) {
		return fmt.Errorf("row %d of %s = %v, row %d of %s = %v", rowA, a, got, rowB, b, want)
	}
	return nil
}

// RegisterRasterSteps registers raster and grid fixture steps.
func (testCtx *TestContext) RegisterRasterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a (\d+)x(\d+) gradient raster "([^"]*)"$`, testCtx.aGradientRaster)
	sc.Step(`^a (\d+)x(\d+) checkerboard raster "([^"]*)"$`, testCtx.aCheckerboardRaster)
	sc.Step(`^a regular (\d+)x(\d+) grid pair for a (\d+)x(\d+) raster$`, testCtx.aRegularGridPair)
	sc.Step(`^a regular (\d+)x(\d+) grid pair for a (\d+)x(\d+) raster shifted by (-?\d+) rows?$`,
		testCtx.aRegularGridPairShifted)
	sc.Step(`^a sine-perturbed (\d+)x(\d+) grid pair for a (\d+)x(\d+) raster$`, testCtx.aSinePerturbedGridPair)
	sc.Step(`^a (\d+)x(\d+) grid pair for a (\d+)x(\d+) raster with an overflowing corner$`,
		testCtx.aGridPairWithAnOverflowingCorner)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
	sc.Step(`^a directory "([^"]*)"$`, testCtx.aDirectory)
	sc.Step(`^the raster "([^"]*)" should equal the raster "([^"]*)"$`, testCtx.theRasterShouldEqual)
	sc.Step(`^the raster "([^"]*)" should be (\d+)x(\d+)$`, testCtx.theRasterShouldBeSized)
	sc.Step(`^row (\d+) of "([^"]*)" should equal row (\d+) of "([^"]*)"$`, testCtx.rowShouldEqualRow)
}
