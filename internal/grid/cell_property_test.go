package grid

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genLines generates n strictly increasing, possibly fractional, line positions.
func genLines(n int) gopter.Gen {
	return gen.SliceOfN(n, gen.Float64Range(0.05, 7.5)).Map(func(steps []float64) []float64 {
		lines := make([]float64, len(steps))
		pos := 0.0
		for k, s := range steps {
			if k > 0 {
				pos += s
			}
			lines[k] = pos
		}
		return lines
	})
}

func rectilinearPair(rowLines, colLines []float64) *Pair {
	pts := make([]Point, 0, len(rowLines)*len(colLines))
	for _, x := range rowLines {
		for _, y := range colLines {
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	g, err := New(len(rowLines), len(colLines), pts)
	if err != nil {
		return nil
	}
	p, err := NewPair(g, g)
	if err != nil {
		return nil
	}
	return p
}

// TestCells_TileExtentExactlyOnce verifies every pixel of the extent is claimed by one cell.
func TestCells_TileExtentExactlyOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cell bounds partition the extent", prop.ForAll(
		func(rowLines, colLines []float64) bool {
			if !sort.Float64sAreSorted(rowLines) || !sort.Float64sAreSorted(colLines) {
				return true
			}
			p := rectilinearPair(rowLines, colLines)
			if p == nil {
				// Lines closer than a pixel overall; nothing to tile.
				return true
			}
			ext := p.Extent()
			claims := make(map[[2]int]int)
			for c := range p.Cells() {
				for x := c.Bounds.XStart; x <= c.Bounds.XEnd; x++ {
					for y := c.Bounds.YStart; y <= c.Bounds.YEnd; y++ {
						if !ext.Contains(x, y) {
							return false
						}
						claims[[2]int{x, y}]++
					}
				}
			}
			if len(claims) != ext.Rows()*ext.Cols() {
				return false
			}
			for _, n := range claims {
				if n != 1 {
					return false
				}
			}
			return true
		},
		genLines(4),
		genLines(5),
	))

	properties.TestingRun(t)
}
