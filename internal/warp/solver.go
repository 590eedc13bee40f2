package warp

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/gridwarp/internal/grid"
	"gonum.org/v1/gonum/mat"
)

// maxCondition bounds the condition number of the normalized basis matrix. Above it the
// corners are treated as degenerate.
const maxCondition = 1e12

// Mapping is a bilinear coordinate transform over the basis {x, y, xy, 1}:
//
//	x' = X[0]*x + X[1]*y + X[2]*x*y + X[3]
//	y' = Y[0]*x + Y[1]*y + Y[2]*x*y + Y[3]
type Mapping struct {
	X [4]float64
	Y [4]float64
}

// Identity returns the mapping x' = x, y' = y.
func Identity() Mapping {
	return Mapping{X: [4]float64{1, 0, 0, 0}, Y: [4]float64{0, 1, 0, 0}}
}

// Apply maps a reference point into observed space.
func (m Mapping) Apply(p grid.Point) grid.Point {
	xy := p.X * p.Y
	return grid.Point{
		X: m.X[0]*p.X + m.X[1]*p.Y + m.X[2]*xy + m.X[3],
		Y: m.Y[0]*p.X + m.Y[1]*p.Y + m.Y[2]*xy + m.Y[3],
	}
}

// SingularCellError reports a cell whose reference corners do not determine a mapping.
type SingularCellError struct {
	Row, Col int
	Cond     float64
	Err      error
}

func (e *SingularCellError) Error() string {
	msg := fmt.Sprintf("cell (%d,%d): basis matrix is singular (condition number %g)", e.Row, e.Col, e.Cond)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SingularCellError) Unwrap() error {
	return e.Err
}

// SolveCell fits the mapping that takes the cell's four reference corners exactly onto
// its four observed corners. Both axes share one LU factorization of the basis matrix.
//
// The system is solved in cell-local coordinates u = (x-x0)/sx, v = (y-y0)/sy so the
// conditioning does not depend on where the cell sits in the raster; the local
// coefficients are then expanded back to the global basis.
func SolveCell(c grid.Cell) (Mapping, error) {
	x0, sx := span(c.Ref, func(p grid.Point) float64 { return p.X })
	y0, sy := span(c.Ref, func(p grid.Point) float64 { return p.Y })
	if sx == 0 || sy == 0 {
		return Mapping{}, &SingularCellError{Row: c.Row, Col: c.Col, Cond: math.Inf(1)}
	}

	a := mat.NewDense(4, 4, nil)
	b := mat.NewDense(4, 2, nil)
	for k, p := range c.Ref {
		u := (p.X - x0) / sx
		v := (p.Y - y0) / sy
		a.SetRow(k, []float64{u, v, u * v, 1})
		b.Set(k, 0, c.Obs[k].X)
		b.Set(k, 1, c.Obs[k].Y)
	}

	var lu mat.LU
	lu.Factorize(a)
	cond := lu.Cond()
	if math.IsNaN(cond) || cond > maxCondition {
		return Mapping{}, &SingularCellError{Row: c.Row, Col: c.Col, Cond: cond}
	}

	var sol mat.Dense
	if err := lu.SolveTo(&sol, false, b); err != nil {
		return Mapping{}, &SingularCellError{Row: c.Row, Col: c.Col, Cond: cond, Err: err}
	}

	var m Mapping
	for axis, dst := range []*[4]float64{&m.X, &m.Y} {
		*dst = expand(sol.At(0, axis), sol.At(1, axis), sol.At(2, axis), sol.At(3, axis), x0, sx, y0, sy)
		for _, v := range dst {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Mapping{}, &SingularCellError{Row: c.Row, Col: c.Col, Cond: cond}
			}
		}
	}
	return m, nil
}

// expand rewrites a0*u + a1*v + a2*u*v + a3 in terms of x and y.
func expand(a0, a1, a2, a3, x0, sx, y0, sy float64) [4]float64 {
	sxy := sx * sy
	return [4]float64{
		a0/sx - a2*y0/sxy,
		a1/sy - a2*x0/sxy,
		a2 / sxy,
		a3 - a0*x0/sx - a1*y0/sy + a2*x0*y0/sxy,
	}
}

func span(pts [4]grid.Point, coord func(grid.Point) float64) (lo, size float64) {
	lo, hi := coord(pts[0]), coord(pts[0])
	for _, p := range pts[1:] {
		v := coord(p)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi - lo
}
