// Package grid models the reference and observed control-point lattices and the
// quadrilateral cells they partition a raster into.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when two grids that must correspond have different shapes.
var ErrShapeMismatch = errors.New("control grids have different shapes")

// Point is a coordinate pair in raster space: X is the row, Y is the column.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// IsFinite reports whether both components are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// ControlGrid is an R x C lattice of control points stored row-major.
type ControlGrid struct {
	Rows   int
	Cols   int
	points []Point
}

// pointCount returns rows*cols for a valid grid shape.
func pointCount(rows, cols int) (int, error) {
	if rows < 2 || cols < 2 {
		return 0, fmt.Errorf("grid must have at least 2x2 points, got %dx%d", rows, cols)
	}
	if cols > math.MaxInt/rows {
		return 0, fmt.Errorf("grid %dx%d overflows the point count", rows, cols)
	}
	return rows * cols, nil
}

// New builds a grid from row-major points. The slice is copied.
func New(rows, cols int, points []Point) (*ControlGrid, error) {
	n, err := pointCount(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(points) != n {
		return nil, fmt.Errorf("grid %dx%d needs %d points, got %d", rows, cols, n, len(points))
	}
	for k, p := range points {
		if !p.IsFinite() {
			return nil, fmt.Errorf("point (%d,%d) is not finite: %v", k/cols, k%cols, p)
		}
	}
	return &ControlGrid{Rows: rows, Cols: cols, points: append([]Point(nil), points...)}, nil
}

// FromRows builds a grid from a slice of point rows.
func FromRows(rows [][]Point) (*ControlGrid, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty grid")
	}
	cols := len(rows[0])
	flat := make([]Point, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("grid row %d has %d points, expected %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	return New(len(rows), cols, flat)
}

// Regular returns an evenly spaced reference lattice covering a height x width raster.
// The first and last lines sit on rows 0 and height-1 and columns 0 and width-1.
func Regular(rows, cols, height, width int) (*ControlGrid, error) {
	n, err := pointCount(rows, cols)
	if err != nil {
		return nil, err
	}
	if height < rows || width < cols {
		return nil, fmt.Errorf("raster %dx%d too small for a %dx%d grid", height, width, rows, cols)
	}
	pts := make([]Point, 0, n)
	for i := range rows {
		x := math.Round(float64(i) * float64(height-1) / float64(rows-1))
		for j := range cols {
			y := math.Round(float64(j) * float64(width-1) / float64(cols-1))
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	return New(rows, cols, pts)
}

// At returns the point at grid indices (i, j).
func (g *ControlGrid) At(i, j int) Point {
	return g.points[i*g.Cols+j]
}

// Points returns a copy of the row-major points.
func (g *ControlGrid) Points() []Point {
	return append([]Point(nil), g.points...)
}

// Translate returns a copy of g with every point shifted by d.
func (g *ControlGrid) Translate(d Point) *ControlGrid {
	out := &ControlGrid{Rows: g.Rows, Cols: g.Cols, points: make([]Point, len(g.points))}
	for k, p := range g.points {
		out.points[k] = p.Add(d)
	}
	return out
}

// SameShape reports whether g and o have identical dimensions.
func (g *ControlGrid) SameShape(o *ControlGrid) bool {
	return g != nil && o != nil && g.Rows == o.Rows && g.Cols == o.Cols
}
