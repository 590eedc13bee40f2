// Package pgm reads and writes binary grayscale rasters (netpbm P5).
package pgm

import (
	"errors"
	"fmt"
)

// MaxSupportedValue is the largest maximum sample value that fits the one-byte-per-sample
// layout handled by this package.
const MaxSupportedValue = 255

// Raster is a single-channel image backed by a row-major grid of integer samples.
// Samples are addressed as (x, y) where x is the row (0..Height-1) and y is the
// column (0..Width-1).
type Raster struct {
	Width    int
	Height   int
	MaxValue int
	Pix      []int
}

// New allocates a zeroed raster.
func New(width, height, maxValue int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster dimensions %dx%d", width, height)
	}
	if maxValue <= 0 || maxValue > MaxSupportedValue {
		return nil, fmt.Errorf("invalid max value %d (must be between 1 and %d)", maxValue, MaxSupportedValue)
	}
	return &Raster{
		Width:    width,
		Height:   height,
		MaxValue: maxValue,
		Pix:      make([]int, width*height),
	}, nil
}

// FromRows builds a raster from a slice of rows. All rows must have the same length.
func FromRows(rows [][]int, maxValue int) (*Raster, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("empty rows")
	}
	r, err := New(len(rows[0]), len(rows), maxValue)
	if err != nil {
		return nil, err
	}
	for x, row := range rows {
		if len(row) != r.Width {
			return nil, fmt.Errorf("row %d has %d samples, expected %d", x, len(row), r.Width)
		}
		copy(r.Pix[x*r.Width:], row)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// At returns the sample at row x, column y.
func (r *Raster) At(x, y int) int {
	return r.Pix[x*r.Width+y]
}

// Set stores v at row x, column y.
func (r *Raster) Set(x, y, v int) {
	r.Pix[x*r.Width+y] = v
}

// Rows returns a copy of the samples as a slice of rows.
func (r *Raster) Rows() [][]int {
	out := make([][]int, r.Height)
	for x := range r.Height {
		out[x] = append([]int(nil), r.Pix[x*r.Width:(x+1)*r.Width]...)
	}
	return out
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	c := *r
	c.Pix = append([]int(nil), r.Pix...)
	return &c
}

// Validate checks the shape and sample range invariants.
func (r *Raster) Validate() error {
	if r == nil {
		return &FormatError{Op: "validate", Err: errors.New("nil raster")}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return &FormatError{Op: "validate", Err: fmt.Errorf("invalid dimensions %dx%d", r.Width, r.Height)}
	}
	if r.MaxValue <= 0 || r.MaxValue > MaxSupportedValue {
		return &FormatError{Op: "validate", Err: fmt.Errorf("max value %d out of range", r.MaxValue)}
	}
	if len(r.Pix) != r.Width*r.Height {
		return &FormatError{
			Op:  "validate",
			Err: fmt.Errorf("have %d samples, want %d", len(r.Pix), r.Width*r.Height),
		}
	}
	for i, v := range r.Pix {
		if v < 0 || v > r.MaxValue {
			return &FormatError{
				Op:  "validate",
				Err: fmt.Errorf("sample %d at (%d,%d) outside [0,%d]", v, i/r.Width, i%r.Width, r.MaxValue),
			}
		}
	}
	return nil
}

// FormatError reports a malformed raster container or an invalid raster.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("pgm format error in %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
