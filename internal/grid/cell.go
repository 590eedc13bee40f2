package grid

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// Rect is an inclusive integer pixel rectangle in reference space.
type Rect struct {
	XStart, XEnd int
	YStart, YEnd int
}

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool { return r.XEnd < r.XStart || r.YEnd < r.YStart }

// Rows returns the number of pixel rows covered.
func (r Rect) Rows() int { return max(0, r.XEnd-r.XStart+1) }

// Cols returns the number of pixel columns covered.
func (r Rect) Cols() int { return max(0, r.YEnd-r.YStart+1) }

// Contains reports whether pixel (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.XStart && x <= r.XEnd && y >= r.YStart && y <= r.YEnd
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", r.XStart, r.XEnd, r.YStart, r.YEnd)
}

// Cell is one quadrilateral patch of a grid pair. Corners are ordered
// (i,j), (i,j+1), (i+1,j), (i+1,j+1).
type Cell struct {
	Row, Col int
	Ref      [4]Point
	Obs      [4]Point
	Bounds   Rect
}

// Pair holds corresponding reference and observed grids.
type Pair struct {
	Reference *ControlGrid
	Observed  *ControlGrid

	rowLines []float64
	colLines []float64
}

// NewPair validates that the grids correspond and that the reference grid is a
// rectilinear lattice with strictly increasing lines.
func NewPair(reference, observed *ControlGrid) (*Pair, error) {
	if reference == nil || observed == nil {
		return nil, errors.New("reference and observed grids are required")
	}
	if !reference.SameShape(observed) {
		return nil, fmt.Errorf("%w: reference %dx%d, observed %dx%d",
			ErrShapeMismatch, reference.Rows, reference.Cols, observed.Rows, observed.Cols)
	}

	rowLines := make([]float64, reference.Rows)
	for i := range reference.Rows {
		rowLines[i] = reference.At(i, 0).X
		for j := 1; j < reference.Cols; j++ {
			if reference.At(i, j).X != rowLines[i] {
				return nil, fmt.Errorf("reference row %d is not straight: x=%g at column 0, x=%g at column %d",
					i, rowLines[i], reference.At(i, j).X, j)
			}
		}
		if i > 0 && rowLines[i] <= rowLines[i-1] {
			return nil, fmt.Errorf("reference rows must be strictly increasing: row %d x=%g, row %d x=%g",
				i-1, rowLines[i-1], i, rowLines[i])
		}
	}

	colLines := make([]float64, reference.Cols)
	for j := range reference.Cols {
		colLines[j] = reference.At(0, j).Y
		for i := 1; i < reference.Rows; i++ {
			if reference.At(i, j).Y != colLines[j] {
				return nil, fmt.Errorf("reference column %d is not straight: y=%g at row 0, y=%g at row %d",
					j, colLines[j], reference.At(i, j).Y, i)
			}
		}
		if j > 0 && colLines[j] <= colLines[j-1] {
			return nil, fmt.Errorf("reference columns must be strictly increasing: column %d y=%g, column %d y=%g",
				j-1, colLines[j-1], j, colLines[j])
		}
	}

	p := &Pair{Reference: reference, Observed: observed, rowLines: rowLines, colLines: colLines}
	if p.Extent().Empty() {
		return nil, errors.New("reference grid covers no whole pixel")
	}
	return p, nil
}

// Extent is the integer rectangle covered by the reference grid.
func (p *Pair) Extent() Rect {
	return Rect{
		XStart: int(math.Ceil(p.rowLines[0])),
		XEnd:   int(math.Floor(p.rowLines[len(p.rowLines)-1])),
		YStart: int(math.Ceil(p.colLines[0])),
		YEnd:   int(math.Floor(p.colLines[len(p.colLines)-1])),
	}
}

// NumCells returns the number of cells, (R-1)*(C-1).
func (p *Pair) NumCells() int {
	return (p.Reference.Rows - 1) * (p.Reference.Cols - 1)
}

// Cell returns cell (i, j).
func (p *Pair) Cell(i, j int) Cell {
	ref, obs := p.Reference, p.Observed
	return Cell{
		Row: i,
		Col: j,
		Ref: [4]Point{ref.At(i, j), ref.At(i, j+1), ref.At(i+1, j), ref.At(i+1, j+1)},
		Obs: [4]Point{obs.At(i, j), obs.At(i, j+1), obs.At(i+1, j), obs.At(i+1, j+1)},
		Bounds: Rect{
			XStart: lineStart(p.rowLines, i),
			XEnd:   lineEnd(p.rowLines, i),
			YStart: lineStart(p.colLines, j),
			YEnd:   lineEnd(p.colLines, j),
		},
	}
}

// Cells yields every cell in row-major order.
func (p *Pair) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for i := range p.Reference.Rows - 1 {
			for j := range p.Reference.Cols - 1 {
				if !yield(p.Cell(i, j)) {
					return
				}
			}
		}
	}
}

// A shared line belongs to the band that starts on it; only the last band also
// owns its closing line.
func lineStart(lines []float64, k int) int {
	return int(math.Ceil(lines[k]))
}

func lineEnd(lines []float64, k int) int {
	if k == len(lines)-2 {
		return int(math.Floor(lines[k+1]))
	}
	return int(math.Ceil(lines[k+1])) - 1
}
