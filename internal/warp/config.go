package warp

import (
	"fmt"
	"runtime"
)

// OutOfBoundsPolicy selects what happens to an output pixel whose mapped coordinate
// falls outside the source raster.
type OutOfBoundsPolicy string

const (
	// OutOfBoundsClamp clamps the coordinate onto the nearest edge and interpolates there.
	OutOfBoundsClamp OutOfBoundsPolicy = "clamp"
	// OutOfBoundsFill writes Config.FillValue.
	OutOfBoundsFill OutOfBoundsPolicy = "fill"
	// OutOfBoundsSkip omits the sample, shrinking the output sequence.
	OutOfBoundsSkip OutOfBoundsPolicy = "skip"
)

// SingularPolicy selects what happens when a cell's mapping cannot be solved.
type SingularPolicy string

const (
	// SingularAbort fails the field build with the first singular cell in row-major order.
	SingularAbort SingularPolicy = "abort"
	// SingularSkip leaves the cell's pixels unmapped.
	SingularSkip SingularPolicy = "skip"
)

// Config holds configuration for the warp process.
type Config struct {
	Workers     int               // parallel workers for field build and resampling (0 = runtime.NumCPU())
	OutOfBounds OutOfBoundsPolicy // out-of-bounds sample policy
	FillValue   int               // sample written by OutOfBoundsFill and for unmapped pixels
	Singular    SingularPolicy    // singular cell policy
	// Debug dumping
	DebugDir string // if non-empty, writes a source/output comparison PNG here
}

// DefaultConfig returns sensible defaults for warping.
func DefaultConfig() Config {
	return Config{
		Workers:     runtime.NumCPU(),
		OutOfBounds: OutOfBoundsClamp,
		FillValue:   0,
		Singular:    SingularAbort,
		DebugDir:    "",
	}
}

// Validate checks the policies and numeric settings.
func (c Config) Validate() error {
	switch c.OutOfBounds {
	case OutOfBoundsClamp, OutOfBoundsFill, OutOfBoundsSkip:
	default:
		return fmt.Errorf("invalid out-of-bounds policy: %q (must be one of: clamp, fill, skip)", c.OutOfBounds)
	}
	switch c.Singular {
	case SingularAbort, SingularSkip:
	default:
		return fmt.Errorf("invalid singular cell policy: %q (must be one of: abort, skip)", c.Singular)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d (must not be negative)", c.Workers)
	}
	if c.FillValue < 0 {
		return fmt.Errorf("invalid fill value: %d (must not be negative)", c.FillValue)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
